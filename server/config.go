/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package server

import (
	"github.com/sabouaram/logship/channel"
	"github.com/sabouaram/logship/protocol"
)

// DefaultAddress is the loopback endpoint the acceptor binds absent an
// explicit address.
const DefaultAddress = "127.0.0.1:6500"

// Handler processes one parsed line (a Command or an Issue) arriving on an
// accepted channel. It runs on the channel's dispatch goroutine, off any
// internal lock, the same contract Channel.OnLineReceived documents.
type Handler func(ch *channel.Channel, item protocol.Item)

// Config holds the acceptor's tunables. There is no file-backed loader:
// callers build one as a struct literal.
type Config struct {
	// Address is the "host:port" the listener binds. Empty is invalid.
	Address string

	// Backlog bounds the number of connections handled concurrently; zero
	// means unbounded. Go's net package does not expose the OS-level SYN
	// backlog, so this is an application-level admission limit rather than
	// a kernel listen() queue size.
	Backlog int

	// Channel is passed unchanged to channel.New for every accepted
	// connection: its LocalName and LocalInfo form the server's own
	// greeting, and its DrainTimeout is the grace period Shutdown gives
	// each channel (five seconds when zero or negative).
	Channel channel.Config

	// Handler processes accepted channels' lines in normal operation.
	// At least one of Handler, EchoReceivedData, or DiscardReceivedData
	// must be set; when several are, DiscardReceivedData takes precedence
	// over EchoReceivedData, which takes precedence over Handler.
	Handler Handler

	// EchoReceivedData is a test toggle: every received WRITE is decoded
	// and re-sent back to its sender as a new WRITE, instead of invoking
	// Handler.
	EchoReceivedData bool

	// DiscardReceivedData is a test toggle: received lines are accepted
	// and silently dropped, instead of invoking Handler.
	DiscardReceivedData bool
}

// DefaultConfig returns a configuration listening on DefaultAddress with no
// backlog limit and the channel package's own defaults.
func DefaultConfig() Config {
	return Config{
		Address: DefaultAddress,
		Channel: channel.DefaultConfig(),
	}
}
