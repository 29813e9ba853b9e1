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

package protocol

import (
	"strconv"
	"time"

	"github.com/sabouaram/logship/message"
)

// EncodeCommand renders cmd as its wire lines, ready to be joined with "\n"
// and sent one logical line at a time through a LineReader-compatible peer.
func EncodeCommand(cmd Command) []string {
	first := "[" + cmd.Id + "] " + string(cmd.Verb)
	if cmd.Arg != "" {
		first += " " + cmd.Arg
	}
	out := []string{first}

	for _, h := range cmd.Headers {
		out = append(out, h.Key+": "+h.Value)
	}

	if !cmd.HasBody {
		return out
	}

	if n := len(cmd.Headers); n > 0 && cmd.Headers[n-1].Key == textHeaderKey && cmd.Headers[n-1].Value != "" {
		return out
	}

	return append(out, EncodeBody(cmd.Body)...)
}

// EncodeHello builds the greeting HELLO command both sides send on connect.
func EncodeHello(id, name string) Command {
	return Command{Id: id, Verb: VerbHello, Arg: name}
}

// EncodeInfo builds a greeting INFO line.
func EncodeInfo(id, text string) Command {
	return Command{Id: id, Verb: VerbInfo, Arg: text}
}

// SetKey names the recognized SET targets.
type SetKey string

const (
	SetProcessName     SetKey = "PROCESS_NAME"
	SetProcessId       SetKey = "PROCESS_ID"
	SetApplicationName SetKey = "APPLICATION_NAME"
)

// EncodeSet builds a client-to-server SET command.
func EncodeSet(id string, key SetKey, value string) Command {
	return Command{Id: id, Verb: VerbSet, Arg: string(key) + " " + value}
}

// EncodeHeartbeat builds a keepalive command.
func EncodeHeartbeat(id string) Command {
	return Command{Id: id, Verb: VerbHeartbeat}
}

// EncodeWrite builds a WRITE command from a log message, using the header
// defaults and terminator rules of §4.2: writer/level are only emitted
// when they diverge from the protocol defaults, timestamp uses RFC 3339
// with nanoseconds, and text always closes the header block.
func EncodeWrite(id string, m message.Message) Command {
	var headers []Header

	headers = append(headers, Header{Key: "timestamp", Value: m.Timestamp.Format(time.RFC3339Nano)})

	if m.HighPrecisionTimestamp != 0 {
		headers = append(headers, Header{Key: "ticks", Value: strconv.FormatUint(m.HighPrecisionTimestamp, 10)})
	}
	if m.LostMessageCount != 0 {
		headers = append(headers, Header{Key: "lost", Value: strconv.FormatUint(uint64(m.LostMessageCount), 10)})
	}
	if m.LogWriterName != "" && m.LogWriterName != message.DefaultWriterName {
		headers = append(headers, Header{Key: "writer", Value: m.LogWriterName})
	}
	if m.LogLevelName != "" && m.LogLevelName != message.DefaultLevelName {
		headers = append(headers, Header{Key: "level", Value: m.LogLevelName})
	}
	for _, tag := range m.Tags.Slice() {
		headers = append(headers, Header{Key: "tag", Value: tag})
	}

	headers = append(headers, Header{Key: textHeaderKey, Value: ""})

	return Command{Id: id, Verb: VerbWrite, Headers: headers, Body: m.Text, HasBody: true}
}

// DecodeWrite converts a parsed WRITE command back into a log message,
// applying the defaults and substitutions §4.2 specifies for a missing
// timestamp, writer, or level.
func DecodeWrite(cmd Command, receiveTime time.Time) message.Message {
	b := message.NewBuilder().SetTimestamp(receiveTime)

	if v, ok := cmd.Get("timestamp"); ok && v != "" {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			b.SetTimestamp(t)
		}
	}
	if v, ok := cmd.Get("ticks"); ok {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			b.SetHighPrecisionTimestamp(n)
		}
	}
	if v, ok := cmd.Get("lost"); ok {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			b.SetLostMessageCount(uint32(n))
		}
	}
	if v, ok := cmd.Get("writer"); ok {
		b.SetLogWriterName(v)
	}
	if v, ok := cmd.Get("level"); ok {
		b.SetLogLevelName(v)
	}
	for _, tag := range cmd.All("tag") {
		b.AddTag(tag)
	}
	b.SetText(cmd.Body)

	return b.Build()
}
