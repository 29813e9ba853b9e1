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

// Package view implements the filtered view (C8): a read-only projection
// of a collection through a filter engine, kept current by subscribing to
// both, plus a non-materialized filtering accessor for forward/backward
// navigation and range queries against the unfiltered collection.
package view

import (
	liberr "github.com/sabouaram/logship/errors"
)

const (
	ErrIndexOutOfRange liberr.CodeError = iota + liberr.MinPkgView
	ErrDisposed
)

func init() {
	liberr.RegisterIdFctMessage(ErrIndexOutOfRange, getMessage)
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrIndexOutOfRange:
		return "index out of range"
	case ErrDisposed:
		return "accessor used after disposal"
	}
	return ""
}
