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
	"bytes"
	"strings"
	"unicode/utf8"
)

// MaxLineLength is the ceiling, in characters, a single physical line may
// reach, trailing continuation backslash included. A reassembled logical
// line may exceed it once multiple continued physical lines are joined;
// only each physical piece is bound by it.
const MaxLineLength = 32768

// BodyTerminator is the line that closes a WRITE body.
const BodyTerminator = "."

// LineReader reassembles a byte stream into logical lines: it resolves
// backslash continuations, accepts either LF or CRLF, and enforces
// MaxLineLength per physical line. It is fed incrementally as bytes arrive
// off the wire, mirroring the push-style Reader used by the message
// package's JSON codec.
type LineReader struct {
	buf     []byte
	pending string
}

// NewLineReader returns a LineReader ready to accept bytes.
func NewLineReader() *LineReader {
	return &LineReader{}
}

// Feed appends chunk to the internal buffer and returns every logical line
// completed by it, in stream order. A framing error is returned alongside
// whatever lines were already completed; the reader should not be reused
// past that point.
func (r *LineReader) Feed(chunk []byte) ([]string, error) {
	r.buf = append(r.buf, chunk...)

	var lines []string

	for {
		idx := bytes.IndexByte(r.buf, '\n')
		if idx < 0 {
			break
		}

		raw := r.buf[:idx]
		r.buf = r.buf[idx+1:]
		if len(raw) > 0 && raw[len(raw)-1] == '\r' {
			raw = raw[:len(raw)-1]
		}

		if !utf8.Valid(raw) {
			return lines, ErrInvalidUtf8.Error()
		}

		text := string(raw)
		if utf8.RuneCountInString(text) > MaxLineLength {
			return lines, ErrLineTooLong.Error()
		}

		// A trailing backslash only marks a continuation when it is the
		// odd one out: encode always escapes a genuine trailing run of
		// literal backslashes to an even count first, then appends the
		// continuation marker on top when splitting, so an odd count here
		// can only be that marker.
		continued := trailingBackslashRun(text)%2 == 1
		content := text
		if continued {
			content = text[:len(text)-1]
		}
		content = unescapeTrailingBackslashes(content)

		if continued {
			r.pending += content
			continue
		}

		full := r.pending + content
		r.pending = ""

		lines = append(lines, full)
	}

	return lines, nil
}

// Finish reports whether the stream ended cleanly: a dangling continuation
// (a trailing backslash line with no following physical line) is a framing
// error, not a silent truncation.
func (r *LineReader) Finish() error {
	if r.pending != "" {
		return ErrInvalidContinuation.Error()
	}
	return nil
}

// StuffLine dot-stuffs a single body line for the wire: a leading '.' is
// duplicated so it is not mistaken for the body terminator.
func StuffLine(line string) string {
	if strings.HasPrefix(line, ".") {
		return "." + line
	}
	return line
}

// UnstuffLine reverses StuffLine.
func UnstuffLine(line string) string {
	if strings.HasPrefix(line, "..") {
		return line[1:]
	}
	return line
}

// trailingBackslashRun counts the literal backslash characters s ends
// with.
func trailingBackslashRun(s string) int {
	n := 0
	for n < len(s) && s[len(s)-1-n] == '\\' {
		n++
	}
	return n
}

// escapeTrailingBackslashes doubles a literal trailing run of backslashes
// so a continuation marker appended on top (a single backslash) can
// always be told apart from payload content: a wire line's trailing
// backslash count is odd only when a marker is present.
func escapeTrailingBackslashes(s string) string {
	if n := trailingBackslashRun(s); n > 0 {
		return s + strings.Repeat(`\`, n)
	}
	return s
}

// unescapeTrailingBackslashes reverses escapeTrailingBackslashes.
func unescapeTrailingBackslashes(s string) string {
	if n := trailingBackslashRun(s); n > 0 {
		return s[:len(s)-n/2]
	}
	return s
}

// splitContinuation breaks s into physical-line-sized pieces joined by
// backslash continuation whenever s would reach MaxLineLength on one
// physical line, escaping any genuine trailing backslash run at each
// piece boundary so it is never confused with the continuation marker.
// It never cuts inside a UTF-8 rune.
func splitContinuation(s string) []string {
	var out []string
	for {
		final := escapeTrailingBackslashes(s)
		if len(final) < MaxLineLength {
			return append(out, final)
		}

		cut := MaxLineLength - 1
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		piece := escapeTrailingBackslashes(s[:cut])
		for cut > 0 && len(piece)+1 > MaxLineLength {
			cut--
			for cut > 0 && !utf8.RuneStart(s[cut]) {
				cut--
			}
			piece = escapeTrailingBackslashes(s[:cut])
		}

		out = append(out, piece+`\`)
		s = s[cut:]
	}
}

// EncodeBody splits text into wire-ready body lines: each line dot-stuffed
// and, if it would reach MaxLineLength bytes, further split across
// backslash continuations, followed by the terminator line. An empty text
// produces one empty body line followed by the terminator.
func EncodeBody(text string) []string {
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts)+1)
	for _, p := range parts {
		out = append(out, splitContinuation(StuffLine(p))...)
	}
	out = append(out, BodyTerminator)
	return out
}

// DecodeBody reassembles the original text from a sequence of body lines
// (not including the terminator line).
func DecodeBody(lines []string) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = UnstuffLine(l)
	}
	return strings.Join(parts, "\n")
}
