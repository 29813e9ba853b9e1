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

package filter

import "strings"

// TextFilter selects messages whose body contains Query as a substring.
type TextFilter struct {
	enabled       bool
	query         string
	caseSensitive bool
}

// newTextFilter returns a sub-filter that starts disabled: until a caller
// opts it in with SetEnabled(true), it matches every body unconditionally.
func newTextFilter() *TextFilter {
	return &TextFilter{}
}

// Enabled reports whether this sub-filter currently restricts matches.
func (f *TextFilter) Enabled() bool { return f.enabled }

// SetEnabled toggles whether this sub-filter restricts matches.
func (f *TextFilter) SetEnabled(v bool) { f.enabled = v }

// Query returns the current search string.
func (f *TextFilter) Query() string { return f.query }

// SetQuery sets the search string.
func (f *TextFilter) SetQuery(q string) { f.query = q }

// CaseSensitive reports whether Query is matched case-sensitively.
func (f *TextFilter) CaseSensitive() bool { return f.caseSensitive }

// SetCaseSensitive toggles case sensitivity.
func (f *TextFilter) SetCaseSensitive(v bool) { f.caseSensitive = v }

// Matches reports whether text contains Query. A disabled sub-filter, or
// one with an empty Query, always matches.
func (f *TextFilter) Matches(text string) bool {
	if !f.enabled || f.query == "" {
		return true
	}
	if f.caseSensitive {
		return strings.Contains(text, f.query)
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(f.query))
}

// reset clears the query back to empty. Enabled is untouched: an empty
// query already matches everything, so there is nothing destructive about
// keeping the sub-filter on.
func (f *TextFilter) reset() {
	f.query = ""
}
