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

package message

import (
	"bytes"
	"encoding/json"
	"io"
	"time"
)

// FieldMapping names the JSON key used for each logical Message field. The
// zero value is not usable; use DefaultFieldMapping.
type FieldMapping struct {
	Timestamp               string
	HighPrecisionTimestamp   string
	LostMessageCount         string
	LogWriter                string
	LogLevel                 string
	Tags                     string
	ApplicationName          string
	ProcessName              string
	ProcessId                string
	Text                     string
}

// DefaultFieldMapping returns the mapping used when none is supplied.
func DefaultFieldMapping() FieldMapping {
	return FieldMapping{
		Timestamp:              "Timestamp",
		HighPrecisionTimestamp: "HighPrecisionTimestamp",
		LostMessageCount:       "LostMessageCount",
		LogWriter:              "LogWriter",
		LogLevel:               "LogLevel",
		Tags:                   "Tags",
		ApplicationName:        "ApplicationName",
		ProcessName:            "ProcessName",
		ProcessId:              "ProcessId",
		Text:                   "Text",
	}
}

// Style selects the layout a Formatter produces.
type Style uint8

const (
	// StyleCompact produces the smallest possible encoding: no
	// indentation, no trailing newline.
	StyleCompact Style = iota
	// StyleOneLine is StyleCompact plus a single trailing "\n", suitable
	// for newline-delimited JSON streams.
	StyleOneLine
	// StyleBeautified indents with two spaces per level.
	StyleBeautified
)

// Formatter renders Message values as JSON according to a FieldMapping.
type Formatter struct {
	mapping       FieldMapping
	style         Style
	escapeSolidus bool
}

// NewFormatter builds a Formatter. escapeSolidus controls whether literal
// '/' bytes in the output are rewritten as "\/", a toggle some downstream
// JSON consumers (older JS engines embedding the output in a <script> tag)
// expect.
func NewFormatter(mapping FieldMapping, style Style, escapeSolidus bool) *Formatter {
	return &Formatter{mapping: mapping, style: style, escapeSolidus: escapeSolidus}
}

func (f *Formatter) toDoc(m Message) map[string]interface{} {
	return map[string]interface{}{
		f.mapping.Timestamp:              m.Timestamp.Format(time.RFC3339Nano),
		f.mapping.HighPrecisionTimestamp:  m.HighPrecisionTimestamp,
		f.mapping.LostMessageCount:        m.LostMessageCount,
		f.mapping.LogWriter:               m.LogWriterName,
		f.mapping.LogLevel:                m.LogLevelName,
		f.mapping.Tags:                    m.Tags.Slice(),
		f.mapping.ApplicationName:         m.ApplicationName,
		f.mapping.ProcessName:             m.ProcessName,
		f.mapping.ProcessId:               m.ProcessId,
		f.mapping.Text:                    m.Text,
	}
}

// Format renders m as a single JSON document.
func (f *Formatter) Format(m Message) ([]byte, error) {
	doc := f.toDoc(m)

	var (
		out []byte
		err error
	)

	switch f.style {
	case StyleBeautified:
		out, err = json.MarshalIndent(doc, "", "  ")
	default:
		out, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, err
	}

	if f.escapeSolidus {
		out = bytes.ReplaceAll(out, []byte("/"), []byte(`\/`))
	}

	if f.style == StyleOneLine {
		out = append(out, '\n')
	}

	return out, nil
}

// Reader is a streaming tokenizer: it accepts chunked JSON input over
// repeated Feed calls, returns every Message completed by the chunk just
// fed, and retains any trailing partial document for the next call.
type Reader struct {
	mapping FieldMapping
	buf     []byte
}

// NewReader builds a Reader for a stream of concatenated JSON documents
// (optionally newline- or whitespace-separated) encoded with mapping.
func NewReader(mapping FieldMapping) *Reader {
	return &Reader{mapping: mapping}
}

// Feed appends chunk to the internal buffer and decodes every complete
// document it can find. A malformed document surfaces as *ParseError with
// a 1-based line/column pointing at the offending byte; messages decoded
// before the error are still returned.
func (r *Reader) Feed(chunk []byte) ([]Message, error) {
	r.buf = append(r.buf, chunk...)

	var out []Message

	for {
		r.buf = bytes.TrimLeft(r.buf, " \t\r\n")
		if len(r.buf) == 0 {
			break
		}

		dec := json.NewDecoder(bytes.NewReader(r.buf))
		var raw map[string]json.RawMessage

		err := dec.Decode(&raw)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			if se, ok := err.(*json.SyntaxError); ok {
				line, col := position(r.buf, int(se.Offset)-1)
				return out, &ParseError{Line: line, Column: col, Err: se}
			}
			line, col := position(r.buf, int(dec.InputOffset()))
			return out, &ParseError{Line: line, Column: col, Err: err}
		}

		m, convErr := r.toMessage(raw)
		if convErr != nil {
			line, col := position(r.buf, 0)
			return out, &ParseError{Line: line, Column: col, Err: convErr}
		}
		out = append(out, m)

		consumed := int(dec.InputOffset())
		r.buf = r.buf[consumed:]
	}

	return out, nil
}

func (r *Reader) toMessage(raw map[string]json.RawMessage) (Message, error) {
	b := NewBuilder()

	if v, ok := raw[r.mapping.Timestamp]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return Message{}, err
		}
		if s != "" {
			t, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return Message{}, err
			}
			b.SetTimestamp(t)
		}
	}
	if v, ok := raw[r.mapping.HighPrecisionTimestamp]; ok {
		var n uint64
		if err := json.Unmarshal(v, &n); err != nil {
			return Message{}, err
		}
		b.SetHighPrecisionTimestamp(n)
	}
	if v, ok := raw[r.mapping.LostMessageCount]; ok {
		var n uint32
		if err := json.Unmarshal(v, &n); err != nil {
			return Message{}, err
		}
		b.SetLostMessageCount(n)
	}
	if v, ok := raw[r.mapping.LogWriter]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return Message{}, err
		}
		b.SetLogWriterName(s)
	}
	if v, ok := raw[r.mapping.LogLevel]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return Message{}, err
		}
		b.SetLogLevelName(s)
	}
	if v, ok := raw[r.mapping.Tags]; ok {
		var tags []string
		if err := json.Unmarshal(v, &tags); err != nil {
			return Message{}, err
		}
		for _, t := range tags {
			b.AddTag(t)
		}
	}
	if v, ok := raw[r.mapping.ApplicationName]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return Message{}, err
		}
		b.SetApplicationName(s)
	}
	if v, ok := raw[r.mapping.ProcessName]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return Message{}, err
		}
		b.SetProcessName(s)
	}
	if v, ok := raw[r.mapping.ProcessId]; ok {
		var n int64
		if err := json.Unmarshal(v, &n); err != nil {
			return Message{}, err
		}
		b.SetProcessId(n)
	}
	if v, ok := raw[r.mapping.Text]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return Message{}, err
		}
		b.SetText(s)
	}

	return b.Build(), nil
}

// position converts a byte offset into a 1-based (line, column) pair.
func position(buf []byte, offset int) (line, col int) {
	if offset > len(buf) {
		offset = len(buf)
	}
	line = 1
	col = 1
	for i := 0; i < offset; i++ {
		if buf[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
