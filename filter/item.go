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
	"sort"
	"strings"
)

// SelectableItem is one entry in an item sub-filter: a value the sub-filter
// can be told to select, plus the bookkeeping the engine maintains for it.
type SelectableItem struct {
	Value string
	Group string

	Selected  bool
	ValueUsed bool
	IsStatic  bool
}

// staticLogLevels lists the log-level item sub-filter's predefined entries,
// in the fixed severity order a syslog-style level set is conventionally
// presented in.
func staticLogLevels() []string {
	return []string{
		"Emergency", "Alert", "Critical", "Error", "Warning",
		"Note", "Informational", "Debug", "Trace",
	}
}

// ItemFilter selects messages by membership of one or more field values in
// a set of currently-selected items.
type ItemFilter struct {
	enabled              bool
	accumulateItems      bool
	disableFilterOnReset bool
	unselectItemsOnReset bool
	items                []SelectableItem
	staticCount          int
}

// newItemFilter returns a sub-filter that starts disabled: until a caller
// opts it in with SetEnabled(true), it contributes nothing to the
// composite predicate, regardless of the selections later made on it.
func newItemFilter(staticValues []string) *ItemFilter {
	f := &ItemFilter{}
	for _, v := range staticValues {
		f.items = append(f.items, SelectableItem{Value: v, IsStatic: true})
	}
	f.staticCount = len(f.items)
	return f
}

// Enabled reports whether this sub-filter currently restricts matches.
func (f *ItemFilter) Enabled() bool { return f.enabled }

// SetEnabled toggles whether this sub-filter restricts matches.
func (f *ItemFilter) SetEnabled(v bool) { f.enabled = v }

// SetAccumulateItems toggles whether items that stop being used are kept
// in the list (true) or pruned back out (false, the default). Turning it
// off rebuilds the list immediately, dropping unused dynamic items while
// preserving the selection state of whatever remains.
func (f *ItemFilter) SetAccumulateItems(v bool) {
	wasOn := f.accumulateItems
	f.accumulateItems = v
	if wasOn && !v {
		f.pruneUnused()
	}
}

// SetDisableFilterOnReset controls whether Reset also clears Enabled.
func (f *ItemFilter) SetDisableFilterOnReset(v bool) { f.disableFilterOnReset = v }

// SetUnselectItemsOnReset controls whether Reset clears every item's
// Selected flag.
func (f *ItemFilter) SetUnselectItemsOnReset(v bool) { f.unselectItemsOnReset = v }

// Items returns a copy of the current item list, static entries first in
// their original order followed by dynamic entries in ordinal,
// case-insensitive order.
func (f *ItemFilter) Items() []SelectableItem {
	out := make([]SelectableItem, len(f.items))
	copy(out, f.items)
	return out
}

// Select sets the Selected flag of the item carrying value. It returns
// ErrUnknownItem if no such item exists.
func (f *ItemFilter) Select(value string, selected bool) error {
	i := f.indexOf(value)
	if i < 0 {
		return ErrUnknownItem.Error()
	}
	f.items[i].Selected = selected
	return nil
}

// Matches reports whether any of values is currently selected. A disabled
// sub-filter always matches. An enabled sub-filter with no selected item
// matches nothing.
func (f *ItemFilter) Matches(values ...string) bool {
	if !f.enabled {
		return true
	}
	for _, v := range values {
		if i := f.indexOf(v); i >= 0 && f.items[i].Selected {
			return true
		}
	}
	return false
}

// dropDynamic discards every dynamic item and clears ValueUsed on the
// statics that remain, without touching Selected or Enabled. It is what an
// attached collection being cleared does to this sub-filter's bookkeeping.
func (f *ItemFilter) dropDynamic() {
	statics := f.items[:f.staticCount]
	kept := make([]SelectableItem, len(statics))
	copy(kept, statics)
	for i := range kept {
		kept[i].ValueUsed = false
	}
	f.items = kept
}

// reset is the sub-filter's own user-triggered reset: it drops dynamic
// items like dropDynamic, then — depending on the reset flags configured
// on this sub-filter — also clears every remaining item's Selected flag
// and/or clears Enabled.
func (f *ItemFilter) reset() {
	f.dropDynamic()
	if f.unselectItemsOnReset {
		for i := range f.items {
			f.items[i].Selected = false
		}
	}
	if f.disableFilterOnReset {
		f.enabled = false
	}
}

// onAdded records value as currently used, inserting a new dynamic item if
// it is not already known. It never changes the selected set, so it never
// affects the composite predicate's result on its own.
func (f *ItemFilter) onAdded(value string) {
	if value == "" {
		return
	}
	if i := f.indexOf(value); i >= 0 {
		f.items[i].ValueUsed = true
		return
	}
	f.insertDynamic(SelectableItem{Value: value, ValueUsed: true})
}

// onRemoved re-evaluates value against stillUsed (whether any remaining
// message still carries it). It reports whether a selected item was
// dropped while this sub-filter participates in the predicate, which does
// change the composite predicate's result.
func (f *ItemFilter) onRemoved(value string, stillUsed bool) (affectsResult bool) {
	i := f.indexOf(value)
	if i < 0 {
		return false
	}
	if stillUsed {
		f.items[i].ValueUsed = true
		return false
	}
	f.items[i].ValueUsed = false
	if f.items[i].IsStatic || f.accumulateItems {
		return false
	}
	wasSelected := f.items[i].Selected && f.enabled
	f.items = append(f.items[:i], f.items[i+1:]...)
	return wasSelected
}

func (f *ItemFilter) pruneUnused() {
	kept := f.items[:0:0]
	for _, it := range f.items {
		if it.IsStatic || it.ValueUsed {
			kept = append(kept, it)
		}
	}
	f.items = kept
}

func (f *ItemFilter) indexOf(value string) int {
	for i, it := range f.items {
		if it.Value == value {
			return i
		}
	}
	return -1
}

// insertDynamic inserts it after the static run, keeping the dynamic
// portion sorted in ordinal, case-insensitive order.
func (f *ItemFilter) insertDynamic(it SelectableItem) {
	dyn := f.items[f.staticCount:]
	key := strings.ToLower(it.Value)
	pos := sort.Search(len(dyn), func(i int) bool {
		return strings.ToLower(dyn[i].Value) >= key
	})
	idx := f.staticCount + pos
	f.items = append(f.items, SelectableItem{})
	copy(f.items[idx+1:], f.items[idx:])
	f.items[idx] = it
}
