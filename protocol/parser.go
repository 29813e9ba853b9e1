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

// textHeaderKey is the one header name §4.2 designates as a body
// terminator: an empty value opens a multi-line body, a non-empty value
// closes the command with that value as its single-line body.
const textHeaderKey = "text"

// Issue reports a malformed line the parser could not fold into a Command.
// HasId distinguishes a mid-command parse failure (reply NOK against the
// command's own id) from a framing-level failure (reply ERROR, no id).
type Issue struct {
	HasId  bool
	Id     string
	Code   string
	Detail string
	Echoed string
}

// Item is one unit produced by the parser: exactly one of Command or Issue
// is set, in the order the underlying lines arrived.
type Item struct {
	Command *Command
	Issue   *Issue
}

type parserPhase uint8

const (
	phaseIdle parserPhase = iota
	phaseHeaders
	phaseBody
)

// CommandParser turns a stream of logical lines (as produced by LineReader)
// into a stream of Commands, interleaved with Issues for malformed input.
// It never blocks or loses data: a line that looks like the start of a new
// command while a WRITE's headers are mid-flight closes out the previous
// command as a parse failure before reprocessing the new line.
type CommandParser struct {
	phase   parserPhase
	id      string
	verb    Verb
	arg     string
	headers []Header
	body    []string
}

// NewCommandParser returns a parser ready to accept logical lines.
func NewCommandParser() *CommandParser {
	return &CommandParser{}
}

// IsIdle reports whether the parser is between commands — i.e. the next
// line could equally be a new command or, on a symmetric channel, a
// response line instead. It is false while a WRITE's headers or body are
// still being collected.
func (p *CommandParser) IsIdle() bool {
	return p.phase == phaseIdle
}

// FeedLines folds a batch of logical lines (typically the output of one
// LineReader.Feed call) into parsed Items.
func (p *CommandParser) FeedLines(lines []string) []Item {
	var out []Item
	for _, line := range lines {
		out = append(out, p.feedLine(line)...)
	}
	return out
}

func (p *CommandParser) feedLine(line string) []Item {
	switch p.phase {
	case phaseBody:
		if line == BodyTerminator {
			cmd := &Command{Id: p.id, Verb: p.verb, Arg: p.arg, Headers: p.headers, Body: DecodeBody(p.body), HasBody: true}
			p.reset()
			return []Item{{Command: cmd}}
		}
		p.body = append(p.body, line)
		return nil

	case phaseHeaders:
		if looksLikeCommandStart(line) {
			issue := &Issue{HasId: true, Id: p.id, Code: CodeMissingBody, Detail: "missing text header", Echoed: line}
			p.reset()
			items := []Item{{Issue: issue}}
			return append(items, p.feedLine(line)...)
		}

		key, value, ok := splitHeader(line)
		if !ok {
			issue := &Issue{HasId: true, Id: p.id, Code: CodeParseError, Detail: "malformed header", Echoed: line}
			p.reset()
			return []Item{{Issue: issue}}
		}

		p.headers = append(p.headers, Header{Key: key, Value: value})

		if p.verb == VerbWrite && key == textHeaderKey {
			if value == "" {
				p.phase = phaseBody
				return nil
			}
			cmd := &Command{Id: p.id, Verb: p.verb, Arg: p.arg, Headers: p.headers, Body: value, HasBody: true}
			p.reset()
			return []Item{{Command: cmd}}
		}
		return nil

	default:
		id, verb, arg, ok := splitCommandLine(line)
		if !ok {
			return []Item{{Issue: &Issue{HasId: false, Code: CodeMalformedId, Detail: "malformed command prefix", Echoed: line}}}
		}

		p.id, p.verb, p.arg = id, verb, arg

		if verb == VerbWrite {
			p.phase = phaseHeaders
			return nil
		}

		cmd := &Command{Id: id, Verb: verb, Arg: arg}
		p.reset()
		return []Item{{Command: cmd}}
	}
}

func (p *CommandParser) reset() {
	p.phase = phaseIdle
	p.id = ""
	p.verb = ""
	p.arg = ""
	p.headers = nil
	p.body = nil
}

func looksLikeCommandStart(line string) bool {
	if !strings.HasPrefix(line, "[") {
		return false
	}
	return strings.IndexByte(line, ']') >= 0
}

// splitCommandLine parses "[<id>] <VERB> <arg>" into its parts.
func splitCommandLine(line string) (id string, verb Verb, arg string, ok bool) {
	if !strings.HasPrefix(line, "[") {
		return "", "", "", false
	}
	end := strings.IndexByte(line, ']')
	if end < 0 {
		return "", "", "", false
	}

	id = line[1:end]
	rest := strings.TrimSpace(line[end+1:])
	if rest == "" {
		return "", "", "", false
	}

	parts := strings.SplitN(rest, " ", 2)
	verb = Verb(parts[0])
	if len(parts) == 2 {
		arg = strings.TrimSpace(parts[1])
	}
	return id, verb, arg, true
}

// splitHeader parses "key: value" into its parts.
func splitHeader(line string) (key, value string, ok bool) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:idx])
	if key == "" {
		return "", "", false
	}
	value = strings.TrimSpace(line[idx+1:])
	return key, value, true
}
