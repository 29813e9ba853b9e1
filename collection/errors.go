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

// Package collection holds an append-only sequence of log messages plus the
// per-field "used value" overview sets derived from it, and notifies
// observers of additions, prune-driven removals, and resets.
package collection

import (
	liberr "github.com/sabouaram/logship/errors"
)

const (
	ErrInvalidMaxCount liberr.CodeError = iota + liberr.MinPkgCollection
	ErrIndexOutOfRange
)

func init() {
	liberr.RegisterIdFctMessage(ErrInvalidMaxCount, getMessage)
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrInvalidMaxCount:
		return "prune max_count must be -1 (disabled) or a positive integer"
	case ErrIndexOutOfRange:
		return "index out of range"
	}
	return ""
}
