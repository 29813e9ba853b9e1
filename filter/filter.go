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

import (
	"strconv"
	"sync"
	"time"

	"github.com/sabouaram/logship/collection"
	"github.com/sabouaram/logship/message"
)

// Filter is the composite selectable filter engine: an AND over its
// sub-filters' predicates, optionally attached to a Collection whose
// used-value overviews seed and keep the item sub-filters current.
type Filter struct {
	mu      sync.Mutex
	enabled bool

	Interval    *IntervalFilter
	Writer      *ItemFilter
	Level       *ItemFilter
	Tag         *ItemFilter
	Application *ItemFilter
	ProcessName *ItemFilter
	ProcessId   *ItemFilter
	Text        *TextFilter

	col        *collection.Collection
	generation uint64

	onChangedMu sync.Mutex
	onChanged   []func(affectsResult bool)

	suspendDepth int
	suspendedHit bool
}

// New returns a detached, empty Filter. The engine itself is enabled, but
// every sub-filter starts disabled (opt-in): with nothing turned on,
// Matches accepts every message, per the AND-over-enabled-sub-filters
// composition rule.
func New() *Filter {
	return &Filter{
		enabled:     true,
		Interval:    newIntervalFilter(),
		Writer:      newItemFilter(nil),
		Level:       newItemFilter(staticLogLevels()),
		Tag:         newItemFilter(nil),
		Application: newItemFilter(nil),
		ProcessName: newItemFilter(nil),
		ProcessId:   newItemFilter(nil),
		Text:        newTextFilter(),
	}
}

// Enabled reports whether the engine currently restricts matches at all.
func (f *Filter) Enabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled
}

// SetEnabled toggles the whole engine. A disabled engine's Matches always
// returns true, regardless of sub-filter state.
func (f *Filter) SetEnabled(v bool) {
	f.mu.Lock()
	changed := f.enabled != v
	f.enabled = v
	f.mu.Unlock()
	if changed {
		f.fireChanged(true)
	}
}

// OnChanged registers a callback invoked, off the engine's internal lock,
// whenever the filter's configuration changes.
func (f *Filter) OnChanged(cb func(affectsResult bool)) {
	f.onChangedMu.Lock()
	f.onChanged = append(f.onChanged, cb)
	f.onChangedMu.Unlock()
}

func (f *Filter) fireChanged(affectsResult bool) {
	f.mu.Lock()
	if f.suspendDepth > 0 {
		f.suspendedHit = f.suspendedHit || affectsResult
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()

	f.onChangedMu.Lock()
	cbs := append([]func(bool){}, f.onChanged...)
	f.onChangedMu.Unlock()
	for _, cb := range cbs {
		cb(affectsResult)
	}
}

// Suspend begins a batch: filter_changed notifications are coalesced until
// a matching Resume, which fires at most one composite notification.
// Suspend/Resume pairs may nest.
func (f *Filter) Suspend() {
	f.mu.Lock()
	f.suspendDepth++
	f.mu.Unlock()
}

// Resume ends one level of suspension. At depth zero, it replays a single
// composite notification if anything suspended would have fired one.
func (f *Filter) Resume() {
	f.mu.Lock()
	if f.suspendDepth == 0 {
		f.mu.Unlock()
		return
	}
	f.suspendDepth--
	fire := false
	if f.suspendDepth == 0 {
		fire = f.suspendedHit
		f.suspendedHit = false
	}
	f.mu.Unlock()
	if fire {
		f.fireChanged(true)
	}
}

// Attach binds the engine to col: it detaches any previous collection,
// resets every sub-filter to defaults, seeds the item sub-filters from
// col's used-value overviews, and seeds the interval bounds from col's
// oldest and newest message (or the zero instant if col is empty). The
// engine keeps tracking col's subsequent changes until Detach or a further
// Attach.
func (f *Filter) Attach(col *collection.Collection) {
	f.mu.Lock()
	f.generation++
	gen := f.generation
	f.col = col

	f.Interval.reset()
	f.Writer.reset()
	f.Level.reset()
	f.Tag.reset()
	f.Application.reset()
	f.ProcessName.reset()
	f.ProcessId.reset()

	for _, v := range col.UsedWriters().Values() {
		f.Writer.onAdded(v)
	}
	for _, v := range col.UsedLevels().Values() {
		f.Level.onAdded(v)
	}
	for _, v := range col.UsedTags().Values() {
		f.Tag.onAdded(v)
	}
	for _, v := range col.UsedApplicationNames().Values() {
		f.Application.onAdded(v)
	}
	for _, v := range col.UsedProcessNames().Values() {
		f.ProcessName.onAdded(v)
	}
	for _, v := range col.UsedProcessIds().Values() {
		f.ProcessId.onAdded(v)
	}

	if n := col.Len(); n > 0 {
		first, _ := col.At(0)
		last, _ := col.At(n - 1)
		f.Interval.onAdded(first.Timestamp)
		f.Interval.onAdded(last.Timestamp)
	}
	f.mu.Unlock()

	col.OnChange(func(ev collection.ChangeEvent) {
		f.onCollectionChange(gen, ev)
	})

	f.fireChanged(true)
}

// Detach stops tracking the currently attached collection, if any. Sub-filter
// state (selections, bounds, query) is left as-is.
func (f *Filter) Detach() {
	f.mu.Lock()
	f.col = nil
	f.generation++
	f.mu.Unlock()
}

func (f *Filter) onCollectionChange(gen uint64, ev collection.ChangeEvent) {
	f.mu.Lock()
	if gen != f.generation {
		f.mu.Unlock()
		return
	}

	affects := false
	switch ev.Kind {
	case collection.Added:
		for _, m := range ev.Items {
			if f.Interval.onAdded(m.Timestamp) && f.Interval.enabled {
				affects = true
			}
			f.Writer.onAdded(m.LogWriterName)
			f.Level.onAdded(m.LogLevelName)
			f.Application.onAdded(m.ApplicationName)
			f.ProcessName.onAdded(m.ProcessName)
			f.ProcessId.onAdded(strconv.FormatInt(m.ProcessId, 10))
			for _, tag := range m.Tags.Slice() {
				f.Tag.onAdded(tag)
			}
		}
	case collection.Removed:
		col := f.col
		for _, m := range ev.Items {
			if f.Writer.onRemoved(m.LogWriterName, col.UsedWriters().Contains(m.LogWriterName)) {
				affects = true
			}
			if f.Level.onRemoved(m.LogLevelName, col.UsedLevels().Contains(m.LogLevelName)) {
				affects = true
			}
			if f.Application.onRemoved(m.ApplicationName, col.UsedApplicationNames().Contains(m.ApplicationName)) {
				affects = true
			}
			if f.ProcessName.onRemoved(m.ProcessName, col.UsedProcessNames().Contains(m.ProcessName)) {
				affects = true
			}
			pid := strconv.FormatInt(m.ProcessId, 10)
			if f.ProcessId.onRemoved(pid, col.UsedProcessIds().Contains(pid)) {
				affects = true
			}
			for _, tag := range m.Tags.Slice() {
				if f.Tag.onRemoved(tag, col.UsedTags().Contains(tag)) {
					affects = true
				}
			}
		}
	case collection.Reset:
		f.Interval.reset()
		f.Writer.dropDynamic()
		f.Level.dropDynamic()
		f.Tag.dropDynamic()
		f.Application.dropDynamic()
		f.ProcessName.dropDynamic()
		f.ProcessId.dropDynamic()
		affects = true
	}
	f.mu.Unlock()

	if affects {
		f.fireChanged(true)
	}
}

// Matches reports whether m satisfies every enabled sub-filter. A disabled
// engine matches everything.
func (f *Filter) Matches(m message.Message) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.enabled {
		return true
	}
	if !f.Interval.Matches(m.Timestamp) {
		return false
	}
	if !f.Writer.Matches(m.LogWriterName) {
		return false
	}
	if !f.Level.Matches(m.LogLevelName) {
		return false
	}
	if !f.Tag.Matches(m.Tags.Slice()...) {
		return false
	}
	if !f.Application.Matches(m.ApplicationName) {
		return false
	}
	if !f.ProcessName.Matches(m.ProcessName) {
		return false
	}
	if !f.ProcessId.Matches(strconv.FormatInt(m.ProcessId, 10)) {
		return false
	}
	return f.Text.Matches(m.Text)
}

// SelectItem sets value's Selected flag on sub and fires a filter_changed
// event if sub is enabled.
func (f *Filter) SelectItem(sub *ItemFilter, value string, selected bool) error {
	f.mu.Lock()
	err := sub.Select(value, selected)
	enabled := sub.Enabled()
	f.mu.Unlock()
	if err != nil {
		return err
	}
	if enabled {
		f.fireChanged(true)
	}
	return nil
}

// SetAccumulateItems toggles sub's accumulate_items flag. The true→false
// transition is a cosmetic rebuild (affects_result=false); the reverse
// direction never drops an item, so it never fires at all.
func (f *Filter) SetAccumulateItems(sub *ItemFilter, v bool) {
	f.mu.Lock()
	was := sub.accumulateItems
	sub.SetAccumulateItems(v)
	f.mu.Unlock()
	if was && !v {
		f.fireChanged(false)
	}
}

// ResetItemFilter returns sub to its initial state per its own reset flags
// and fires a filter_changed event.
func (f *Filter) ResetItemFilter(sub *ItemFilter) {
	f.mu.Lock()
	sub.reset()
	f.mu.Unlock()
	f.fireChanged(true)
}

// SetItemFilterEnabled toggles sub.Enabled and fires a filter_changed
// event.
func (f *Filter) SetItemFilterEnabled(sub *ItemFilter, v bool) {
	f.mu.Lock()
	changed := sub.enabled != v
	sub.SetEnabled(v)
	f.mu.Unlock()
	if changed {
		f.fireChanged(true)
	}
}

// SetIntervalEnabled toggles the interval sub-filter and fires a
// filter_changed event.
func (f *Filter) SetIntervalEnabled(v bool) {
	f.mu.Lock()
	changed := f.Interval.enabled != v
	f.Interval.SetEnabled(v)
	f.mu.Unlock()
	if changed {
		f.fireChanged(true)
	}
}

// SetIntervalFrom pins the interval's lower bound and fires a
// filter_changed event if the interval sub-filter is enabled.
func (f *Filter) SetIntervalFrom(t time.Time) {
	f.mu.Lock()
	f.Interval.SetFrom(t)
	enabled := f.Interval.Enabled()
	f.mu.Unlock()
	if enabled {
		f.fireChanged(true)
	}
}

// SetIntervalTo pins the interval's upper bound and fires a filter_changed
// event if the interval sub-filter is enabled.
func (f *Filter) SetIntervalTo(t time.Time) {
	f.mu.Lock()
	f.Interval.SetTo(t)
	enabled := f.Interval.Enabled()
	f.mu.Unlock()
	if enabled {
		f.fireChanged(true)
	}
}

// ResetInterval returns the interval sub-filter to its default,
// fully-unpinned state and fires a filter_changed event.
func (f *Filter) ResetInterval() {
	f.mu.Lock()
	f.Interval.reset()
	f.mu.Unlock()
	f.fireChanged(true)
}

// SetTextEnabled toggles the full-text sub-filter and fires a
// filter_changed event.
func (f *Filter) SetTextEnabled(v bool) {
	f.mu.Lock()
	changed := f.Text.enabled != v
	f.Text.SetEnabled(v)
	f.mu.Unlock()
	if changed {
		f.fireChanged(true)
	}
}

// SetTextQuery sets the full-text sub-filter's search string and fires a
// filter_changed event if it is enabled.
func (f *Filter) SetTextQuery(q string) {
	f.mu.Lock()
	f.Text.SetQuery(q)
	enabled := f.Text.Enabled()
	f.mu.Unlock()
	if enabled {
		f.fireChanged(true)
	}
}

// SetTextCaseSensitive toggles case sensitivity on the full-text
// sub-filter and fires a filter_changed event if it is enabled.
func (f *Filter) SetTextCaseSensitive(v bool) {
	f.mu.Lock()
	f.Text.SetCaseSensitive(v)
	enabled := f.Text.Enabled()
	f.mu.Unlock()
	if enabled {
		f.fireChanged(true)
	}
}

// ResetText clears the full-text sub-filter's query and fires a
// filter_changed event.
func (f *Filter) ResetText() {
	f.mu.Lock()
	f.Text.reset()
	f.mu.Unlock()
	f.fireChanged(true)
}
