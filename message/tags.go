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

package message

// Tags is an ordered set of non-empty strings: membership is set semantics
// (no duplicates) but iteration order is deterministic, first-seen order.
type Tags struct {
	ordered []string
	seen    map[string]struct{}
}

// NewTags builds a Tags set from values, dropping empties and duplicates
// while keeping first-seen order.
func NewTags(values ...string) Tags {
	t := Tags{seen: make(map[string]struct{}, len(values))}
	for _, v := range values {
		t.add(v)
	}
	return t
}

func (t *Tags) add(v string) {
	if v == "" {
		return
	}
	if t.seen == nil {
		t.seen = make(map[string]struct{})
	}
	if _, ok := t.seen[v]; ok {
		return
	}
	t.seen[v] = struct{}{}
	t.ordered = append(t.ordered, v)
}

// Has reports whether v is a member of the set.
func (t Tags) Has(v string) bool {
	if t.seen == nil {
		return false
	}
	_, ok := t.seen[v]
	return ok
}

// Len returns the number of distinct tags.
func (t Tags) Len() int {
	return len(t.ordered)
}

// Slice returns the tags in first-seen order. The caller must not mutate
// the returned slice.
func (t Tags) Slice() []string {
	return t.ordered
}
