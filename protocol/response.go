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

// ParseResponse recognizes one of the three response shapes §4.2 defines.
// It returns ok=false for anything else (the line should be tried as a
// Command instead).
func ParseResponse(line string) (Response, bool) {
	if strings.HasPrefix(line, "ERROR ") {
		rest := line[len("ERROR "):]
		idx := strings.LastIndex(rest, " (")
		if idx < 0 || !strings.HasSuffix(rest, ")") {
			return Response{}, false
		}
		return Response{
			Kind:    ResponseError,
			Message: rest[:idx],
			Echoed:  rest[idx+2 : len(rest)-1],
		}, true
	}

	if !strings.HasPrefix(line, "[") {
		return Response{}, false
	}
	end := strings.IndexByte(line, ']')
	if end < 0 {
		return Response{}, false
	}

	id := line[1:end]
	rest := strings.TrimSpace(line[end+1:])

	if rest == "OK" {
		return Response{Kind: ResponseOK, Id: id}, true
	}

	if strings.HasPrefix(rest, "NOK (") && strings.HasSuffix(rest, ")") {
		inner := rest[len("NOK (") : len(rest)-1]
		parts := strings.SplitN(inner, " ", 2)
		resp := Response{Kind: ResponseNOK, Id: id, Code: parts[0]}
		if len(parts) == 2 {
			resp.Message = parts[1]
		}
		return resp, true
	}

	return Response{}, false
}

// FormatResponse renders r back to its wire line.
func FormatResponse(r Response) string {
	switch r.Kind {
	case ResponseOK:
		return FormatOK(r.Id)
	case ResponseNOK:
		return FormatNOK(r.Id, r.Code, r.Message)
	default:
		return FormatError(r.Message, r.Echoed)
	}
}
