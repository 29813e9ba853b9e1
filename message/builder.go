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

import "time"

// Builder accumulates the fields of a Message progressively — the protocol
// codec parses WRITE headers one at a time and a Builder is the natural
// accumulator for that, in the same fluent, self-returning style as the
// teacher's logger entry builder.
type Builder struct {
	msg  Message
	tags []string
}

// NewBuilder returns a Builder seeded with the protocol defaults: writer
// "Default", level "Note", zero lost count, receive-time timestamp.
func NewBuilder() *Builder {
	return &Builder{
		msg: Message{
			Timestamp:       time.Now(),
			LogWriterName:   DefaultWriterName,
			LogLevelName:    DefaultLevelName,
			LostMessageCount: 0,
		},
	}
}

func (b *Builder) SetTimestamp(t time.Time) *Builder {
	b.msg.Timestamp = t
	return b
}

func (b *Builder) SetHighPrecisionTimestamp(ticks uint64) *Builder {
	b.msg.HighPrecisionTimestamp = ticks
	return b
}

func (b *Builder) SetLostMessageCount(n uint32) *Builder {
	b.msg.LostMessageCount = n
	return b
}

func (b *Builder) SetLogWriterName(name string) *Builder {
	if name != "" {
		b.msg.LogWriterName = name
	}
	return b
}

func (b *Builder) SetLogLevelName(name string) *Builder {
	if name != "" {
		b.msg.LogLevelName = name
	}
	return b
}

func (b *Builder) SetApplicationName(name string) *Builder {
	b.msg.ApplicationName = name
	return b
}

func (b *Builder) SetProcessName(name string) *Builder {
	b.msg.ProcessName = name
	return b
}

func (b *Builder) SetProcessId(pid int64) *Builder {
	b.msg.ProcessId = pid
	return b
}

// AddTag appends a tag occurrence; duplicates collapse under set semantics.
func (b *Builder) AddTag(tag string) *Builder {
	if tag != "" {
		b.tags = append(b.tags, tag)
	}
	return b
}

func (b *Builder) SetText(text string) *Builder {
	b.msg.Text = text
	return b
}

// Build finalizes the Message snapshot.
func (b *Builder) Build() Message {
	m := b.msg
	m.Tags = NewTags(b.tags...)
	return m
}
