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

import "time"

// IntervalFilter selects messages whose timestamp falls within [From, To].
// From and To default to tracking the oldest and newest message timestamp
// seen since the last reset, unless pinned by an explicit SetFrom/SetTo
// call, in which case that bound stops following the collection.
type IntervalFilter struct {
	enabled bool

	min, max   time.Time
	from, to   time.Time
	fromPinned bool
	toPinned   bool
}

// newIntervalFilter returns a sub-filter that starts disabled: until a
// caller opts it in with SetEnabled(true), it imposes no bound on Matches.
func newIntervalFilter() *IntervalFilter {
	return &IntervalFilter{}
}

// Enabled reports whether this sub-filter currently restricts matches.
func (f *IntervalFilter) Enabled() bool { return f.enabled }

// SetEnabled toggles whether this sub-filter restricts matches.
func (f *IntervalFilter) SetEnabled(v bool) { f.enabled = v }

// Bounds returns the current [From, To] window.
func (f *IntervalFilter) Bounds() (from, to time.Time) { return f.from, f.to }

// Observed returns the oldest and newest message timestamp seen since the
// last reset, regardless of pinning.
func (f *IntervalFilter) Observed() (min, max time.Time) { return f.min, f.max }

// SetFrom pins the lower bound explicitly; it stops auto-tracking the
// collection's oldest timestamp.
func (f *IntervalFilter) SetFrom(t time.Time) {
	f.from = t
	f.fromPinned = true
}

// SetTo pins the upper bound explicitly; it stops auto-tracking the
// collection's newest timestamp.
func (f *IntervalFilter) SetTo(t time.Time) {
	f.to = t
	f.toPinned = true
}

// Matches reports whether ts falls in [From, To]. A disabled sub-filter
// always matches. An inverted window (From after To) matches nothing,
// regardless of ts.
func (f *IntervalFilter) Matches(ts time.Time) bool {
	if !f.enabled {
		return true
	}
	if f.from.After(f.to) {
		return false
	}
	return !ts.Before(f.from) && !ts.After(f.to)
}

// reset drops every observed bound and unpins From/To.
func (f *IntervalFilter) reset() {
	f.min, f.max = time.Time{}, time.Time{}
	f.from, f.to = time.Time{}, time.Time{}
	f.fromPinned, f.toPinned = false, false
}

// onAdded widens the observed [min, max] to include ts and, for each bound
// that is not pinned, widens [From, To] to match. It reports whether an
// unpinned bound actually moved, since that can change which already-held
// messages fall inside the window.
func (f *IntervalFilter) onAdded(ts time.Time) (boundsChanged bool) {
	if f.min.IsZero() || ts.Before(f.min) {
		f.min = ts
		if !f.fromPinned {
			f.from = ts
			boundsChanged = true
		}
	}
	if f.max.IsZero() || ts.After(f.max) {
		f.max = ts
		if !f.toPinned {
			f.to = ts
			boundsChanged = true
		}
	}
	return boundsChanged
}
