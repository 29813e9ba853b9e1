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

package client

import (
	"time"

	"github.com/sabouaram/logship/channel"
	"github.com/sabouaram/logship/duration"
)

// Config holds a dialer's tunables. There is no file-backed loader:
// callers build one as a struct literal.
type Config struct {
	// Address is the "host:port" to dial. Empty is invalid.
	Address string

	// Channel is passed through to channel.New for the dialed connection.
	Channel channel.Config
}

// ReconnectConfig adds the auto-reconnect facade's own tunables on top of
// Config.
type ReconnectConfig struct {
	Config

	// RetryInterval is the delay between a failed or dropped connection
	// and the next reconnect attempt.
	RetryInterval duration.Duration
}

// DefaultReconnectConfig returns a five second retry interval over the
// channel package's own defaults.
func DefaultReconnectConfig(address string) ReconnectConfig {
	return ReconnectConfig{
		Config: Config{
			Address: address,
			Channel: channel.DefaultConfig(),
		},
		RetryInterval: duration.Duration(5 * time.Second),
	}
}
