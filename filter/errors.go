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

// Package filter implements the selectable log-message filter engine (C7):
// a composite of interval, item-set, and full-text sub-filters evaluated as
// an AND over the enabled ones, attached to a collection to track its
// used-value overviews.
package filter

import (
	liberr "github.com/sabouaram/logship/errors"
)

const (
	ErrUnknownItem liberr.CodeError = iota + liberr.MinPkgFilter
)

func init() {
	liberr.RegisterIdFctMessage(ErrUnknownItem, getMessage)
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrUnknownItem:
		return "item value is not known to this sub-filter"
	}
	return ""
}
