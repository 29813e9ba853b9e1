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

// Package message defines the immutable log-message snapshot shared by the
// wire protocol, the message collection, and the selectable filter engine.
package message

import "time"

// Message is an immutable snapshot of one log event.
//
// A Message is produced once (by the protocol codec when decoding a WRITE
// command, or by an application writing to the facade) and never mutated
// afterward; every field that looks mutable on a *Builder becomes a plain
// value the moment Build() returns.
type Message struct {
	// Timestamp is the wall-clock instant the event occurred, with its
	// original timezone offset preserved.
	Timestamp time.Time

	// HighPrecisionTimestamp is a monotonic, source-local nanosecond
	// counter. It is non-decreasing for messages produced by a single
	// source; it carries no meaning across sources.
	HighPrecisionTimestamp uint64

	// LostMessageCount counts predecessor events dropped before this one
	// reached the writer.
	LostMessageCount uint32

	LogWriterName   string
	LogLevelName    string
	ApplicationName string
	ProcessName     string
	ProcessId       int64

	// Tags is the deterministic, duplicate-free set of tags attached to
	// this message.
	Tags Tags

	// Text is the, possibly multi-line, UTF-8 message body.
	Text string
}

// DefaultWriterName is substituted for the writer field when a WRITE
// command omits it.
const DefaultWriterName = "Default"

// DefaultLevelName is substituted for the level field when a WRITE command
// omits it.
const DefaultLevelName = "Note"
