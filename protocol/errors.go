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

// Package protocol implements the log-service wire protocol: a line framer
// (reassembling a byte stream into logical lines under a length ceiling and
// continuation rules) and a command codec (parsing and formatting the
// HELLO/INFO/SET/WRITE/HEARTBEAT command set and their responses).
package protocol

import (
	liberr "github.com/sabouaram/logship/errors"
)

const (
	ErrLineTooLong liberr.CodeError = iota + liberr.MinPkgProtocol
	ErrInvalidContinuation
	ErrInvalidUtf8
	ErrMissingBody
	ErrUnknownVerb
	ErrMalformedId
	ErrParse
)

func init() {
	liberr.RegisterIdFctMessage(ErrLineTooLong, getMessage)
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrLineTooLong:
		return "line exceeds the maximum length"
	case ErrInvalidContinuation:
		return "continuation line followed by end of stream"
	case ErrInvalidUtf8:
		return "invalid utf-8 in line"
	case ErrMissingBody:
		return "write command is missing its text body"
	case ErrUnknownVerb:
		return "unrecognized command verb"
	case ErrMalformedId:
		return "malformed command id prefix"
	case ErrParse:
		return "command parse error"
	}
	return ""
}
