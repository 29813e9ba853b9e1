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

package view

import (
	"sync"

	"github.com/sabouaram/logship/collection"
	"github.com/sabouaram/logship/filter"
	"github.com/sabouaram/logship/message"
)

// FilteringAccessor is a cheap, non-materialized companion to View: it
// never builds or caches an index, instead re-scanning the collection on
// every call. It is safe to create and discard at will, and becomes
// unusable once Dispose is called.
type FilteringAccessor struct {
	mu       sync.Mutex
	f        *filter.Filter
	col      *collection.Collection
	disposed bool
}

// NewFilteringAccessor returns an accessor navigating col through f.
func NewFilteringAccessor(f *filter.Filter, col *collection.Collection) *FilteringAccessor {
	return &FilteringAccessor{f: f, col: col}
}

// Dispose marks the accessor unusable. Further calls return ErrDisposed.
func (a *FilteringAccessor) Dispose() {
	a.mu.Lock()
	a.disposed = true
	a.mu.Unlock()
}

// NextMatchingFrom returns the first message at or after collection index
// i that matches the filter, together with its collection index. found is
// false if no such message exists; it is not an error.
func (a *FilteringAccessor) NextMatchingFrom(i int) (m message.Message, index int, found bool, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.disposed {
		return message.Message{}, 0, false, ErrDisposed.Error()
	}
	n := a.col.Len()
	if i < 0 || i > n {
		return message.Message{}, 0, false, ErrIndexOutOfRange.Error()
	}
	for ; i < n; i++ {
		cand, cerr := a.col.At(i)
		if cerr != nil {
			break
		}
		if a.f.Matches(cand) {
			return cand, i, true, nil
		}
	}
	return message.Message{}, 0, false, nil
}

// PreviousMatchingFrom returns the first message at or before collection
// index i (scanning backward) that matches the filter, together with its
// collection index. found is false if no such message exists.
func (a *FilteringAccessor) PreviousMatchingFrom(i int) (m message.Message, index int, found bool, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.disposed {
		return message.Message{}, 0, false, ErrDisposed.Error()
	}
	n := a.col.Len()
	if i < -1 || i >= n {
		return message.Message{}, 0, false, ErrIndexOutOfRange.Error()
	}
	for ; i >= 0; i-- {
		cand, cerr := a.col.At(i)
		if cerr != nil {
			break
		}
		if a.f.Matches(cand) {
			return cand, i, true, nil
		}
	}
	return message.Message{}, 0, false, nil
}

// RangeBetween returns every message matching the filter within
// collection indices [i, j), together with their collection indices.
func (a *FilteringAccessor) RangeBetween(i, j int) (msgs []message.Message, indices []int, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.disposed {
		return nil, nil, ErrDisposed.Error()
	}
	n := a.col.Len()
	if i < 0 || j < i || j > n {
		return nil, nil, ErrIndexOutOfRange.Error()
	}
	for k := i; k < j; k++ {
		cand, cerr := a.col.At(k)
		if cerr != nil {
			break
		}
		if a.f.Matches(cand) {
			msgs = append(msgs, cand)
			indices = append(indices, k)
		}
	}
	return msgs, indices, nil
}
