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

package channel_test

import (
	"bufio"
	"net"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sabouaram/logship/channel"
	"github.com/sabouaram/logship/duration"
	"github.com/sabouaram/logship/message"
	"github.com/sabouaram/logship/protocol"
)

func newPair(cfgA, cfgB channel.Config) (*channel.Channel, *channel.Channel) {
	a, b := net.Pipe()
	ca := channel.New(a, cfgA)
	cb := channel.New(b, cfgB)
	return ca, cb
}

var _ = Describe("Channel greeting", func() {
	It("both sides reach Operational after exchanging HELLO", func() {
		ca, cb := newPair(
			channel.Config{LocalName: "client", SendQueueSize: 8, BlockOnFull: true},
			channel.Config{LocalName: "server", SendQueueSize: 8, BlockOnFull: true},
		)
		defer func() { _ = ca.Close(time.Second) }()
		defer func() { _ = cb.Close(time.Second) }()

		Eventually(ca.State).Should(Equal(channel.Operational))
		Eventually(cb.State).Should(Equal(channel.Operational))
	})

	It("consumes INFO lines during greeting without surfacing them as data", func() {
		ca, cb := newPair(
			channel.Config{LocalName: "client", LocalInfo: []string{"build 1", "build 2"}, SendQueueSize: 8, BlockOnFull: true},
			channel.Config{LocalName: "server", SendQueueSize: 8, BlockOnFull: true},
		)
		defer func() { _ = ca.Close(time.Second) }()
		defer func() { _ = cb.Close(time.Second) }()

		var received []protocol.Item
		cb.OnLineReceived(func(item protocol.Item) {
			received = append(received, item)
		})

		Eventually(cb.State).Should(Equal(channel.Operational))
		Consistently(func() int { return len(received) }, 200*time.Millisecond, 20*time.Millisecond).Should(Equal(0))
	})
})

var _ = Describe("Channel round trip", func() {
	It("delivers a SET command and its OK response (scenario 1)", func() {
		ca, cb := newPair(
			channel.Config{LocalName: "client", SendQueueSize: 8, BlockOnFull: true},
			channel.Config{LocalName: "server", SendQueueSize: 8, BlockOnFull: true},
		)
		defer func() { _ = ca.Close(time.Second) }()
		defer func() { _ = cb.Close(time.Second) }()

		Eventually(ca.State).Should(Equal(channel.Operational))
		Eventually(cb.State).Should(Equal(channel.Operational))

		cb.OnLineReceived(func(item protocol.Item) {
			if item.Command != nil && item.Command.Verb == protocol.VerbSet {
				_ = cb.Send(protocol.Command{Id: item.Command.Id, Verb: "OK"})
			}
		})

		id, respCh := ca.AllocateId()
		Expect(ca.Send(protocol.EncodeSet(id, protocol.SetProcessId, "1234"))).ToNot(HaveOccurred())

		Eventually(respCh, time.Second).Should(Receive())
	})

	It("delivers a WRITE command to the peer with matching fields (scenario 2)", func() {
		ca, cb := newPair(
			channel.Config{LocalName: "client", SendQueueSize: 8, BlockOnFull: true},
			channel.Config{LocalName: "server", SendQueueSize: 8, BlockOnFull: true},
		)
		defer func() { _ = ca.Close(time.Second) }()
		defer func() { _ = cb.Close(time.Second) }()

		Eventually(ca.State).Should(Equal(channel.Operational))
		Eventually(cb.State).Should(Equal(channel.Operational))

		received := make(chan protocol.Command, 1)
		cb.OnLineReceived(func(item protocol.Item) {
			if item.Command != nil && item.Command.Verb == protocol.VerbWrite {
				received <- *item.Command
			}
		})

		m := message.NewBuilder().SetLogWriterName("demo").SetText("hello world").Build()
		Expect(ca.SendMessage(m)).ToNot(HaveOccurred())

		var got protocol.Command
		Eventually(received, time.Second).Should(Receive(&got))
		Expect(got.Body).To(Equal("hello world"))
		v, _ := got.Get("writer")
		Expect(v).To(Equal("demo"))
	})

	It("fails fast with QueueFull when the queue is saturated and blocking is disabled", func() {
		a, b := net.Pipe()
		defer func() { _ = b.Close() }()

		ca := channel.New(a, channel.Config{LocalName: "client", SendQueueSize: 1, BlockOnFull: false})
		defer func() { _ = ca.Close(100 * time.Millisecond) }()

		huge := message.NewBuilder().SetText("x").Build()
		var lastErr error
		for i := 0; i < 64; i++ {
			lastErr = ca.SendMessage(huge)
			if lastErr != nil {
				break
			}
		}
		Expect(lastErr).To(HaveOccurred())
	})
})

var _ = Describe("Channel shutdown", func() {
	It("transitions to ShutdownCompleted and notifies observers", func() {
		a, b := net.Pipe()
		defer func() { _ = b.Close() }()

		ca := channel.New(a, channel.Config{LocalName: "client", SendQueueSize: 8, BlockOnFull: true})

		done := make(chan struct{})
		ca.OnShutdownCompleted(func(err error) {
			close(done)
		})

		Expect(ca.Close(time.Second)).ToNot(HaveOccurred())
		Eventually(done, time.Second).Should(BeClosed())
		Expect(ca.State()).To(Equal(channel.ShutdownCompleted))
	})
})

var _ = Describe("Channel heartbeat", func() {
	It("emits a HEARTBEAT to the peer after the configured interval with no other traffic", func() {
		ca, cb := newPair(
			channel.Config{LocalName: "client", SendQueueSize: 8, BlockOnFull: true, HeartbeatInterval: duration.Duration(40 * time.Millisecond)},
			channel.Config{LocalName: "server", SendQueueSize: 8, BlockOnFull: true},
		)
		defer func() { _ = ca.Close(time.Second) }()
		defer func() { _ = cb.Close(time.Second) }()

		Eventually(ca.State).Should(Equal(channel.Operational))
		Eventually(cb.State).Should(Equal(channel.Operational))

		seen := make(chan struct{}, 4)
		cb.OnLineReceived(func(item protocol.Item) {
			if item.Command != nil && item.Command.Verb == protocol.VerbHeartbeat {
				select {
				case seen <- struct{}{}:
				default:
				}
			}
		})

		Eventually(seen, time.Second).Should(Receive())
	})
})

var _ = Describe("Channel failure semantics", func() {
	// newRawPeer wraps one end of a net.Pipe in a Channel (the side under
	// test) and leaves the other end raw, so the test can write malformed
	// wire bytes directly and read the channel's own auto-replies. The
	// channel's own greeting lines are drained before the test begins.
	newRawPeer := func() (*channel.Channel, *bufio.Reader, net.Conn) {
		raw, wrapped := net.Pipe()
		cb := channel.New(wrapped, channel.Config{LocalName: "server", SendQueueSize: 8, BlockOnFull: true})

		r := bufio.NewReader(raw)
		_, err := r.ReadString('\n') // drain the channel's own HELLO
		Expect(err).ToNot(HaveOccurred())

		return cb, r, raw
	}

	It("replies ERROR malformed_id for a line with no command prefix and keeps running", func() {
		cb, r, raw := newRawPeer()
		defer func() { _ = cb.Close(time.Second) }()
		defer func() { _ = raw.Close() }()

		_, err := raw.Write([]byte("garbage\n"))
		Expect(err).ToNot(HaveOccurred())

		line, err := r.ReadString('\n')
		Expect(err).ToNot(HaveOccurred())
		Expect(strings.TrimSuffix(line, "\n")).To(Equal("ERROR malformed_id (garbage)"))

		Consistently(cb.State, 100*time.Millisecond, 10*time.Millisecond).ShouldNot(Equal(channel.ShutdownCompleted))
	})

	It("replies NOK(missing_body) when a new command interrupts a WRITE's headers", func() {
		cb, r, raw := newRawPeer()
		defer func() { _ = cb.Close(time.Second) }()
		defer func() { _ = raw.Close() }()

		_, err := raw.Write([]byte("[abc] WRITE\n[xyz] HEARTBEAT\n"))
		Expect(err).ToNot(HaveOccurred())

		line, err := r.ReadString('\n')
		Expect(err).ToNot(HaveOccurred())
		Expect(strings.TrimSuffix(line, "\n")).To(Equal("[abc] NOK (missing_body missing text header)"))
	})

	It("replies NOK(parse_error) for a malformed header inside a WRITE", func() {
		cb, r, raw := newRawPeer()
		defer func() { _ = cb.Close(time.Second) }()
		defer func() { _ = raw.Close() }()

		_, err := raw.Write([]byte("[abc] WRITE\nnot a header\n"))
		Expect(err).ToNot(HaveOccurred())

		line, err := r.ReadString('\n')
		Expect(err).ToNot(HaveOccurred())
		Expect(strings.TrimSuffix(line, "\n")).To(Equal("[abc] NOK (parse_error malformed header)"))
	})

	It("replies ERROR line_too_long for an oversized line and keeps running", func() {
		cb, r, raw := newRawPeer()
		defer func() { _ = cb.Close(time.Second) }()
		defer func() { _ = raw.Close() }()

		_, err := raw.Write([]byte(strings.Repeat("x", protocol.MaxLineLength+1) + "\n"))
		Expect(err).ToNot(HaveOccurred())

		line, err := r.ReadString('\n')
		Expect(err).ToNot(HaveOccurred())
		Expect(strings.TrimSuffix(line, "\n")).To(Equal("ERROR line_too_long ()"))

		Consistently(cb.State, 100*time.Millisecond, 10*time.Millisecond).ShouldNot(Equal(channel.ShutdownCompleted))

		received := make(chan protocol.Item, 1)
		cb.OnLineReceived(func(item protocol.Item) { received <- item })
		_, err = raw.Write([]byte("[abc] HEARTBEAT\n"))
		Expect(err).ToNot(HaveOccurred())

		var item protocol.Item
		Eventually(received, time.Second).Should(Receive(&item))
		Expect(item.Command).ToNot(BeNil())
		Expect(item.Command.Verb).To(Equal(protocol.VerbHeartbeat))
	})
})
