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

package collection

import (
	"strconv"
	"sync"
	"time"

	"github.com/sabouaram/logship/message"
)

// ChangeKind identifies the shape of a ChangeEvent.
type ChangeKind uint8

const (
	// Added reports one or more messages appended at the tail.
	Added ChangeKind = iota
	// Removed reports one or more messages pruned from the head.
	Removed
	// Reset reports the collection was cleared in one step.
	Reset
)

// ChangeEvent describes one notification. For Added/Removed, Start is the
// index (in the collection as it existed before this change, for Removed;
// after, for Added) of the first affected message, and Items holds the
// affected messages in collection order. Reset carries neither.
type ChangeEvent struct {
	Kind  ChangeKind
	Start int
	Items []message.Message
}

// Collection is an append-only sequence of log messages plus six derived
// overview sets (used writers, levels, tags, application names, process
// names, process ids). It is not sorted: order is strictly insertion order.
type Collection struct {
	mu       sync.Mutex
	messages []message.Message

	writers   *Overview
	levels    *Overview
	tags      *Overview
	apps      *Overview
	procNames *Overview
	procIds   *Overview

	multiItemNotifications bool

	onChangeMu sync.Mutex
	onChange   []func(ChangeEvent)
}

// New returns an empty Collection. multiItemNotifications selects whether a
// batch operation (AppendRange, or a Prune removing more than one message)
// emits one aggregated ChangeEvent or one per affected message.
func New(multiItemNotifications bool) *Collection {
	return &Collection{
		writers:                newOverview(),
		levels:                 newOverview(),
		tags:                   newOverview(),
		apps:                   newOverview(),
		procNames:              newOverview(),
		procIds:                newOverview(),
		multiItemNotifications: multiItemNotifications,
	}
}

// OnChange registers a callback invoked, off the collection's internal
// lock, for every ChangeEvent.
func (c *Collection) OnChange(cb func(ChangeEvent)) {
	c.onChangeMu.Lock()
	c.onChange = append(c.onChange, cb)
	c.onChangeMu.Unlock()
}

func (c *Collection) dispatch(ev ChangeEvent) {
	c.onChangeMu.Lock()
	cbs := append([]func(ChangeEvent){}, c.onChange...)
	c.onChangeMu.Unlock()

	for _, cb := range cbs {
		cb(ev)
	}
}

// Len returns the number of messages currently held.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// At returns the message at index i, where 0 is the oldest.
func (c *Collection) At(i int) (message.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.messages) {
		return message.Message{}, ErrIndexOutOfRange.Error()
	}
	return c.messages[i], nil
}

// Snapshot returns a copy of every message currently held, oldest first.
func (c *Collection) Snapshot() []message.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]message.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// UsedWriters returns the overview of currently used log writer names.
func (c *Collection) UsedWriters() *Overview { return c.writers }

// UsedLevels returns the overview of currently used log level names.
func (c *Collection) UsedLevels() *Overview { return c.levels }

// UsedTags returns the overview of currently used tags.
func (c *Collection) UsedTags() *Overview { return c.tags }

// UsedApplicationNames returns the overview of currently used application
// names.
func (c *Collection) UsedApplicationNames() *Overview { return c.apps }

// UsedProcessNames returns the overview of currently used process names.
func (c *Collection) UsedProcessNames() *Overview { return c.procNames }

// UsedProcessIds returns the overview of currently used process ids,
// rendered as decimal strings.
func (c *Collection) UsedProcessIds() *Overview { return c.procIds }

// Append inserts m at the tail and emits one Added event.
func (c *Collection) Append(m message.Message) {
	c.AppendRange([]message.Message{m})
}

// AppendRange inserts ms, in order, at the tail. It emits one aggregated
// Added event when multiItemNotifications is set, else one Added event per
// message.
func (c *Collection) AppendRange(ms []message.Message) {
	if len(ms) == 0 {
		return
	}

	c.mu.Lock()
	start := len(c.messages)
	for _, m := range ms {
		c.observeAdd(m)
	}
	c.messages = append(c.messages, ms...)
	c.mu.Unlock()

	if c.multiItemNotifications {
		c.dispatch(ChangeEvent{Kind: Added, Start: start, Items: append([]message.Message{}, ms...)})
		return
	}
	for i, m := range ms {
		c.dispatch(ChangeEvent{Kind: Added, Start: start + i, Items: []message.Message{m}})
	}
}

// Prune removes messages from the head satisfying either bound: any
// message older than minTimestamp, or the oldest excess once the
// collection holds more than maxCount messages. maxCount of -1 disables
// the count bound; a zero time.Time disables the timestamp bound. maxCount
// of 0 or less than -1 is invalid.
func (c *Collection) Prune(maxCount int, minTimestamp time.Time) error {
	if maxCount == 0 || maxCount < -1 {
		return ErrInvalidMaxCount.Error()
	}

	c.mu.Lock()
	cut := 0
	if maxCount != -1 && len(c.messages) > maxCount {
		cut = len(c.messages) - maxCount
	}
	if !minTimestamp.IsZero() {
		for cut < len(c.messages) && c.messages[cut].Timestamp.Before(minTimestamp) {
			cut++
		}
	}
	if cut == 0 {
		c.mu.Unlock()
		return nil
	}

	removed := append([]message.Message{}, c.messages[:cut]...)
	for _, m := range removed {
		c.observeRemove(m)
	}
	c.messages = append([]message.Message{}, c.messages[cut:]...)
	c.mu.Unlock()

	if c.multiItemNotifications {
		c.dispatch(ChangeEvent{Kind: Removed, Start: 0, Items: removed})
		return nil
	}
	for i, m := range removed {
		c.dispatch(ChangeEvent{Kind: Removed, Start: i, Items: []message.Message{m}})
	}
	return nil
}

// Clear removes every message in one step and emits a single Reset event.
func (c *Collection) Clear() {
	c.mu.Lock()
	c.messages = nil
	c.writers = newOverview()
	c.levels = newOverview()
	c.tags = newOverview()
	c.apps = newOverview()
	c.procNames = newOverview()
	c.procIds = newOverview()
	c.mu.Unlock()

	c.dispatch(ChangeEvent{Kind: Reset})
}

// observeAdd updates every overview for m becoming present; caller holds
// c.mu.
func (c *Collection) observeAdd(m message.Message) {
	c.writers.add(m.LogWriterName)
	c.levels.add(m.LogLevelName)
	c.apps.add(m.ApplicationName)
	c.procNames.add(m.ProcessName)
	c.procIds.add(strconv.FormatInt(m.ProcessId, 10))
	for _, tag := range m.Tags.Slice() {
		c.tags.add(tag)
	}
}

// observeRemove updates every overview for m leaving the collection;
// caller holds c.mu.
func (c *Collection) observeRemove(m message.Message) {
	c.writers.remove(m.LogWriterName)
	c.levels.remove(m.LogLevelName)
	c.apps.remove(m.ApplicationName)
	c.procNames.remove(m.ProcessName)
	c.procIds.remove(strconv.FormatInt(m.ProcessId, 10))
	for _, tag := range m.Tags.Slice() {
		c.tags.remove(tag)
	}
}
