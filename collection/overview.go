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

// Overview is a "used value" set backed by a reference count per value: a
// value is present iff at least one message currently in the owning
// collection carries it. It is the HashMap<V, count> with 0<->1 transition
// events the data model calls for, specialized to string keys since every
// field it tracks (writer, level, tag, application name, process name, and
// a stringified process id) is a string on the wire.
type Overview struct {
	counts map[string]int
	order  []string
}

func newOverview() *Overview {
	return &Overview{counts: make(map[string]int)}
}

// add increments value's reference count, reporting true the instant the
// count transitions 0->1 (the value becomes used).
func (o *Overview) add(value string) (becameUsed bool) {
	if o.counts[value] == 0 {
		o.order = append(o.order, value)
	}
	o.counts[value]++
	return o.counts[value] == 1
}

// remove decrements value's reference count, reporting true the instant the
// count transitions 1->0 (the value becomes unused and leaves the order).
func (o *Overview) remove(value string) (becameUnused bool) {
	n, ok := o.counts[value]
	if !ok || n <= 0 {
		return false
	}
	n--
	if n == 0 {
		delete(o.counts, value)
		for i, v := range o.order {
			if v == value {
				o.order = append(o.order[:i], o.order[i+1:]...)
				break
			}
		}
		return true
	}
	o.counts[value] = n
	return false
}

// Values returns the currently used values in first-seen order. The caller
// must not mutate the returned slice.
func (o *Overview) Values() []string {
	return o.order
}

// Len returns the number of distinct used values.
func (o *Overview) Len() int {
	return len(o.order)
}

// Contains reports whether value is currently used.
func (o *Overview) Contains(value string) bool {
	return o.counts[value] > 0
}
