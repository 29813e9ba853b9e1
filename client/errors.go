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

// Package client implements the log-service TCP dialer: a single-attempt
// connect with cancellation, and an auto-reconnect facade built on top of
// it.
package client

import (
	liberr "github.com/sabouaram/logship/errors"
)

const (
	ErrInvalidAddress liberr.CodeError = iota + liberr.MinPkgClient
	ErrNotConnected
	ErrAlreadyConnected
	ErrStopped
)

func init() {
	liberr.RegisterIdFctMessage(ErrInvalidAddress, getMessage)
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrInvalidAddress:
		return "invalid or empty dial address"
	case ErrNotConnected:
		return "client is not connected"
	case ErrAlreadyConnected:
		return "client is already connected"
	case ErrStopped:
		return "client was stopped"
	}
	return ""
}
