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

package channel

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sabouaram/logship/duration"
)

// Config holds the tunables a channel needs at construction time. There is
// no file-backed loader: callers build one as a struct literal, matching
// the teacher's plain-config-object style rather than a viper binding.
type Config struct {
	// LocalName is sent as this side's HELLO argument.
	LocalName string
	// LocalInfo is zero or more INFO lines sent right after HELLO.
	LocalInfo []string

	// SendQueueSize bounds the number of pending outbound frames.
	SendQueueSize int
	// BlockOnFull selects backpressure policy: true blocks Send, false
	// fails fast with ErrQueueFull.
	BlockOnFull bool

	// HeartbeatInterval is zero to disable heartbeats, or the interval at
	// which a HEARTBEAT is emitted absent other outbound traffic; missed
	// peer traffic for three times this interval is a transport failure.
	HeartbeatInterval duration.Duration

	// DrainTimeout is the grace period a server passes to Close when it
	// shuts its channels down; Channel.Close itself uses the timeout given
	// as its argument, not this field.
	DrainTimeout time.Duration

	// Log receives lifecycle diagnostics; nil silences them.
	Log *logrus.Entry
}

// DefaultConfig returns the configuration used when a caller supplies none:
// a modestly sized queue, blocking backpressure, heartbeats disabled, and a
// five second drain grace period.
func DefaultConfig() Config {
	return Config{
		SendQueueSize: 64,
		BlockOnFull:   true,
		DrainTimeout:  5 * time.Second,
	}
}

func logDebug(e *logrus.Entry, msg string) {
	if e != nil {
		e.Debug(msg)
	}
}

func logInfo(e *logrus.Entry, msg string) {
	if e != nil {
		e.Info(msg)
	}
}

func logError(e *logrus.Entry, err error, msg string) {
	if e == nil {
		return
	}
	if err != nil {
		e = e.WithError(err)
	}
	e.Error(msg)
}
