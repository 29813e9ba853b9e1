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

import "strings"

// Verb identifies a recognized command keyword.
type Verb string

const (
	VerbHello           Verb = "HELLO"
	VerbInfo            Verb = "INFO"
	VerbSet             Verb = "SET"
	VerbWrite           Verb = "WRITE"
	VerbHeartbeat       Verb = "HEARTBEAT"
	VerbClearLogViewer  Verb = "CLEAR_LOG_VIEWER"
	VerbSaveSnapshot    Verb = "SAVE_SNAPSHOT"
)

// knownVerbs is the set the core codec recognizes; anything else parses to
// a Command but is rejected by whatever layer evaluates it, per §4.2's
// "Unrecognized verbs must be answered with NOK (unknown_verb)" rule.
var knownVerbs = map[Verb]struct{}{
	VerbHello:          {},
	VerbInfo:           {},
	VerbSet:            {},
	VerbWrite:          {},
	VerbHeartbeat:      {},
	VerbClearLogViewer: {},
	VerbSaveSnapshot:   {},
}

// IsKnownVerb reports whether v is part of the recognized verb table.
func IsKnownVerb(v Verb) bool {
	_, ok := knownVerbs[v]
	return ok
}

// Header is one key/value pair; a value of "" on the terminator header
// marks the start of a multi-line body.
type Header struct {
	Key   string
	Value string
}

// Command is one parsed protocol-level record: an id (possibly empty),
// a verb, an optional single-line argument (HELLO's name, INFO's text,
// SET's "key value"), its headers in wire order, and an optional
// multi-line body.
type Command struct {
	Id      string
	Verb    Verb
	Arg     string
	Headers []Header
	Body    string
	HasBody bool
}

// Get returns the last occurrence of key (last-one-wins per §4.2's
// duplicate-header tie-break), and whether it was present at all.
func (c Command) Get(key string) (string, bool) {
	val, found := "", false
	for _, h := range c.Headers {
		if h.Key == key {
			val, found = h.Value, true
		}
	}
	return val, found
}

// All returns every value recorded for key in wire order — used for
// repeating headers such as "tag".
func (c Command) All(key string) []string {
	var out []string
	for _, h := range c.Headers {
		if h.Key == key {
			out = append(out, h.Value)
		}
	}
	return out
}

// ResponseKind distinguishes the three response shapes the codec emits.
type ResponseKind uint8

const (
	ResponseOK ResponseKind = iota
	ResponseNOK
	ResponseError
)

// Response is one wire-level reply: success, failure (with a short code
// and free-text message), or a framing-level error carrying no id.
type Response struct {
	Kind    ResponseKind
	Id      string
	Code    string
	Message string
	Echoed  string
}

// FormatOK renders "[<id>] OK".
func FormatOK(id string) string {
	return "[" + id + "] OK"
}

// FormatNOK renders "[<id>] NOK (<code> <message>)".
func FormatNOK(id, code, message string) string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(id)
	b.WriteString("] NOK (")
	b.WriteString(code)
	if message != "" {
		b.WriteByte(' ')
		b.WriteString(message)
	}
	b.WriteByte(')')
	return b.String()
}

// FormatError renders "ERROR <message> (<echoed-line>)".
func FormatError(message, echoed string) string {
	var b strings.Builder
	b.WriteString("ERROR ")
	b.WriteString(message)
	b.WriteString(" (")
	b.WriteString(echoed)
	b.WriteByte(')')
	return b.String()
}

// Common NOK codes named by §4.2's tie-break table.
const (
	CodeMissingBody  = "missing_body"
	CodeUnknownVerb  = "unknown_verb"
	CodeParseError   = "parse_error"
	CodeMalformedId  = "malformed_id"
	CodeLineTooLong  = "line_too_long"
)
