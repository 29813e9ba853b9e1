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
	"sort"
	"sync"

	"github.com/sabouaram/logship/collection"
	"github.com/sabouaram/logship/filter"
	"github.com/sabouaram/logship/message"
)

// ChangeKind identifies the shape of a view ChangeEvent.
type ChangeKind uint8

const (
	// Added reports one or more messages entering the view at Start.
	Added ChangeKind = iota
	// Removed reports one or more messages leaving the view at Start.
	Removed
	// Reset reports the view was rebuilt or cleared in one step; Start and
	// Items are not meaningful.
	Reset
)

// ChangeEvent describes one notification, in view-local indices.
type ChangeEvent struct {
	Kind  ChangeKind
	Start int
	Items []message.Message
}

type entry struct {
	srcIndex int
	msg      message.Message
}

// View is a read-only, materialized projection of a Collection through a
// Filter: the ordered subsequence of messages currently matching the
// filter. It tracks both the filter's filter_changed event and the
// collection's own change event to stay current without the caller
// re-querying either.
type View struct {
	mu      sync.Mutex
	f       *filter.Filter
	col     *collection.Collection
	entries []entry

	onChangeMu sync.Mutex
	onChange   []func(ChangeEvent)
}

// New builds a View over col as seen through f, already populated with
// every currently-matching message, and subscribes to keep it current.
func New(f *filter.Filter, col *collection.Collection) *View {
	v := &View{f: f, col: col}
	v.rebuildLocked()

	f.OnChanged(v.onFilterChanged)
	col.OnChange(v.onCollectionChanged)
	return v
}

// Len returns the number of messages currently in the view.
func (v *View) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.entries)
}

// At returns the message at view-local index i.
func (v *View) At(i int) (message.Message, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if i < 0 || i >= len(v.entries) {
		return message.Message{}, ErrIndexOutOfRange.Error()
	}
	return v.entries[i].msg, nil
}

// Snapshot returns a copy of every message currently in the view, in
// order.
func (v *View) Snapshot() []message.Message {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]message.Message, len(v.entries))
	for i, e := range v.entries {
		out[i] = e.msg
	}
	return out
}

// CopyTo copies as many view messages as fit into dst, starting from the
// head of the view, and returns the number copied.
func (v *View) CopyTo(dst []message.Message) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := len(dst)
	if n > len(v.entries) {
		n = len(v.entries)
	}
	for i := 0; i < n; i++ {
		dst[i] = v.entries[i].msg
	}
	return n
}

// Contains reports whether the underlying collection message at
// sourceIndex currently appears in the view.
func (v *View) Contains(sourceIndex int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.indexOfSourceLocked(sourceIndex) >= 0
}

// IndexOf returns the view-local index of the underlying collection
// message at sourceIndex, or -1 if it is not currently in the view.
func (v *View) IndexOf(sourceIndex int) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.indexOfSourceLocked(sourceIndex)
}

func (v *View) indexOfSourceLocked(sourceIndex int) int {
	i := sort.Search(len(v.entries), func(i int) bool {
		return v.entries[i].srcIndex >= sourceIndex
	})
	if i < len(v.entries) && v.entries[i].srcIndex == sourceIndex {
		return i
	}
	return -1
}

// OnChange registers a callback invoked, off the view's internal lock, for
// every ChangeEvent.
func (v *View) OnChange(cb func(ChangeEvent)) {
	v.onChangeMu.Lock()
	v.onChange = append(v.onChange, cb)
	v.onChangeMu.Unlock()
}

func (v *View) dispatch(ev ChangeEvent) {
	v.onChangeMu.Lock()
	cbs := append([]func(ChangeEvent){}, v.onChange...)
	v.onChangeMu.Unlock()
	for _, cb := range cbs {
		cb(ev)
	}
}

// rebuildLocked performs a full rescan of col, recomputing entries from
// scratch. Caller holds v.mu.
func (v *View) rebuildLocked() {
	n := v.col.Len()
	entries := make([]entry, 0, n)
	for i := 0; i < n; i++ {
		m, err := v.col.At(i)
		if err != nil {
			break
		}
		if v.f.Matches(m) {
			entries = append(entries, entry{srcIndex: i, msg: m})
		}
	}
	v.entries = entries
}

// onFilterChanged reacts to the filter engine's filter_changed event. A
// cosmetic change (affects_result=false) never alters which messages
// match, so it is ignored; an actual predicate change triggers one full
// rescan, reported as a single Reset.
func (v *View) onFilterChanged(affectsResult bool) {
	if !affectsResult {
		return
	}
	v.mu.Lock()
	v.rebuildLocked()
	v.mu.Unlock()
	v.dispatch(ChangeEvent{Kind: Reset})
}

// onCollectionChanged reacts to the unfiltered collection's change event:
// additions are filtered and appended in place, prune removals shift the
// remaining source indices down, and a Reset is forwarded as-is.
func (v *View) onCollectionChanged(ev collection.ChangeEvent) {
	switch ev.Kind {
	case collection.Added:
		v.onCollectionAdded(ev)
	case collection.Removed:
		v.onCollectionRemoved(ev)
	case collection.Reset:
		v.mu.Lock()
		v.entries = nil
		v.mu.Unlock()
		v.dispatch(ChangeEvent{Kind: Reset})
	}
}

func (v *View) onCollectionAdded(ev collection.ChangeEvent) {
	v.mu.Lock()
	start := len(v.entries)
	var matched []message.Message
	for i, m := range ev.Items {
		srcIndex := ev.Start + i
		if v.indexOfSourceLocked(srcIndex) >= 0 {
			continue
		}
		if v.f.Matches(m) {
			v.entries = append(v.entries, entry{srcIndex: srcIndex, msg: m})
			matched = append(matched, m)
		}
	}
	v.mu.Unlock()

	if len(matched) > 0 {
		v.dispatch(ChangeEvent{Kind: Added, Start: start, Items: matched})
	}
}

// onCollectionRemoved handles a head-prune of the unfiltered collection.
// Collection.Prune only ever removes a contiguous prefix of the source
// indexing, whether reported as one aggregated event or one event per
// removed message; either way, by the time this notification fires, the
// current head of the source indexing has shrunk by exactly len(ev.Items).
// Any view entry addressing one of those now-gone source indices (always
// a prefix of entries, since entries is kept sorted by source index) is
// dropped, and every surviving entry's source index is shifted down by
// the same count.
func (v *View) onCollectionRemoved(ev collection.ChangeEvent) {
	removedCount := len(ev.Items)
	if removedCount == 0 {
		return
	}

	v.mu.Lock()
	cut := 0
	for cut < len(v.entries) && v.entries[cut].srcIndex < removedCount {
		cut++
	}
	removed := make([]message.Message, cut)
	for i := 0; i < cut; i++ {
		removed[i] = v.entries[i].msg
	}
	rest := v.entries[cut:]
	kept := make([]entry, len(rest))
	for i, e := range rest {
		kept[i] = entry{srcIndex: e.srcIndex - removedCount, msg: e.msg}
	}
	v.entries = kept
	v.mu.Unlock()

	if cut > 0 {
		v.dispatch(ChangeEvent{Kind: Removed, Start: 0, Items: removed})
	}
}
