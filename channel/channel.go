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

package channel

import (
	"bufio"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	libatm "github.com/sabouaram/logship/atomic"
	liberr "github.com/sabouaram/logship/errors"
	"github.com/sabouaram/logship/message"
	"github.com/sabouaram/logship/protocol"
)

// Channel represents one end of a TCP connection speaking the log-service
// wire protocol: greeting, operational command exchange, draining, and
// shutdown. Construction immediately starts its background reader, writer,
// and (if configured) heartbeat goroutines.
type Channel struct {
	conn net.Conn
	cfg  Config

	mu    sync.Mutex
	state State

	sendCh chan []byte
	doneCh chan struct{}
	closed sync.Once

	pendingMu sync.Mutex
	pending   map[string]chan protocol.Response

	lastSendNano libatm.Value[int64]
	lastRecvNano libatm.Value[int64]

	onLineMu sync.Mutex
	onLine   []func(protocol.Item)

	onShutdownMu sync.Mutex
	onShutdown   []func(error)

	wg sync.WaitGroup
}

// New wraps conn in a Channel, sends the local greeting, and starts the
// background read/write/heartbeat loops.
func New(conn net.Conn, cfg Config) *Channel {
	if cfg.SendQueueSize <= 0 {
		cfg.SendQueueSize = DefaultConfig().SendQueueSize
	}

	c := &Channel{
		conn:         conn,
		cfg:          cfg,
		state:        Connecting,
		sendCh:       make(chan []byte, cfg.SendQueueSize),
		doneCh:       make(chan struct{}),
		pending:      make(map[string]chan protocol.Response),
		lastSendNano: libatm.NewValue[int64](),
		lastRecvNano: libatm.NewValue[int64](),
	}

	now := time.Now().UnixNano()
	c.lastSendNano.Store(now)
	c.lastRecvNano.Store(now)

	c.wg.Add(2)
	go c.writeLoop()
	go c.readLoop()

	c.sendGreeting()

	if iv := cfg.HeartbeatInterval.Time(); iv > 0 {
		c.wg.Add(1)
		go c.heartbeatLoop(iv)
	}

	return c
}

func (c *Channel) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// State returns the channel's current lifecycle state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Channel) sendGreeting() {
	lines := protocol.EncodeCommand(protocol.EncodeHello("", c.cfg.LocalName))
	for _, info := range c.cfg.LocalInfo {
		lines = append(lines, protocol.EncodeCommand(protocol.EncodeInfo("", info))...)
	}
	c.writeRaw(lines)
	c.mu.Lock()
	if c.state < GreetingSent {
		c.state = GreetingSent
	}
	c.mu.Unlock()
	logDebug(c.cfg.Log, "local greeting sent")
}

func (c *Channel) writeRaw(lines []string) {
	if len(lines) == 0 {
		return
	}
	payload := []byte(strings.Join(lines, "\n") + "\n")
	select {
	case c.sendCh <- payload:
	case <-c.doneCh:
	}
}

// Send enqueues cmd for transmission. In blocking mode it blocks the
// caller when the queue is full; in fail-fast mode it returns ErrQueueFull
// immediately instead.
func (c *Channel) Send(cmd protocol.Command) error {
	payload := []byte(strings.Join(protocol.EncodeCommand(cmd), "\n") + "\n")
	return c.enqueue(payload)
}

// SendMessage formats msg as a WRITE command with a freshly allocated id
// and enqueues it.
func (c *Channel) SendMessage(m message.Message) error {
	id := protocol.NewCommandId()
	return c.Send(protocol.EncodeWrite(id, m))
}

// SendResponse enqueues resp's wire line. A response (OK/NOK/ERROR) is not
// itself a Command, so it bypasses EncodeCommand entirely; this is how a
// verb handler (see server.NewCollectionHandler) answers a received
// Command.
func (c *Channel) SendResponse(resp protocol.Response) error {
	return c.enqueue([]byte(protocol.FormatResponse(resp) + "\n"))
}

func (c *Channel) enqueue(payload []byte) error {
	if c.cfg.BlockOnFull {
		select {
		case c.sendCh <- payload:
			return nil
		case <-c.doneCh:
			return ErrClosed.Error()
		}
	}

	select {
	case c.sendCh <- payload:
		return nil
	case <-c.doneCh:
		return ErrClosed.Error()
	default:
		return ErrQueueFull.Error()
	}
}

// AllocateId reserves a fresh command id for an outbound request and
// returns a channel that receives the correlated response. The id must
// not be reused by the caller until that channel yields a value.
func (c *Channel) AllocateId() (string, <-chan protocol.Response) {
	id := protocol.NewCommandId()
	ch := make(chan protocol.Response, 1)

	c.pendingMu.Lock()
	for {
		if _, exists := c.pending[id]; !exists {
			break
		}
		id = protocol.NewCommandId()
	}
	c.pending[id] = ch
	c.pendingMu.Unlock()

	return id, ch
}

// ReleaseId drops a reserved id without waiting for its response, e.g.
// after a caller-side timeout.
func (c *Channel) ReleaseId(id string) {
	c.pendingMu.Lock()
	delete(c.pending, id)
	c.pendingMu.Unlock()
}

func (c *Channel) completeResponse(resp protocol.Response) {
	c.pendingMu.Lock()
	ch, ok := c.pending[resp.Id]
	if ok {
		delete(c.pending, resp.Id)
	}
	c.pendingMu.Unlock()

	if ok {
		ch <- resp
	}
}

// HeartbeatInterval returns the heartbeat interval the channel was built
// with; it is fixed at construction and there is no setter.
func (c *Channel) HeartbeatInterval() time.Duration {
	return c.cfg.HeartbeatInterval.Time()
}

// OnLineReceived registers a callback invoked, off the channel's internal
// locks, for every parsed Item (Command or Issue).
func (c *Channel) OnLineReceived(cb func(protocol.Item)) {
	c.onLineMu.Lock()
	c.onLine = append(c.onLine, cb)
	c.onLineMu.Unlock()
}

// OnShutdownCompleted registers a callback invoked once, with the cause
// (nil for a clean shutdown), when the channel reaches ShutdownCompleted.
func (c *Channel) OnShutdownCompleted(cb func(error)) {
	c.onShutdownMu.Lock()
	c.onShutdown = append(c.onShutdown, cb)
	c.onShutdownMu.Unlock()
}

func (c *Channel) dispatchLine(item protocol.Item) {
	c.onLineMu.Lock()
	cbs := append([]func(protocol.Item){}, c.onLine...)
	c.onLineMu.Unlock()

	for _, cb := range cbs {
		cb(item)
	}
}

// replyIssue answers a malformed-input Issue per §4.3's channel-level
// failure semantics: a framing-level issue (no id) gets an ERROR line
// echoing the offending line, a mid-command issue gets a NOK against the
// command's own id. Either way the channel keeps reading.
func (c *Channel) replyIssue(issue *protocol.Issue) {
	if issue.HasId {
		c.writeRaw([]string{protocol.FormatResponse(protocol.Response{
			Kind:    protocol.ResponseNOK,
			Id:      issue.Id,
			Code:    issue.Code,
			Message: issue.Detail,
		})})
		return
	}

	c.writeRaw([]string{protocol.FormatResponse(protocol.Response{
		Kind:    protocol.ResponseError,
		Message: issue.Code,
		Echoed:  issue.Echoed,
	})})
}

func (c *Channel) dispatchShutdown(cause error) {
	c.onShutdownMu.Lock()
	cbs := append([]func(error){}, c.onShutdown...)
	c.onShutdownMu.Unlock()

	for _, cb := range cbs {
		cb(cause)
	}
}

// Close initiates a graceful shutdown: the send queue is allowed to drain
// up to graceTimeout, after which pending commands are dropped and the
// socket is closed regardless.
func (c *Channel) Close(graceTimeout time.Duration) error {
	c.mu.Lock()
	if c.state < Draining {
		c.state = Draining
	}
	c.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		for len(c.sendCh) > 0 {
			time.Sleep(time.Millisecond)
		}
		close(drained)
	}()

	select {
	case <-drained:
	case <-time.After(graceTimeout):
		logDebug(c.cfg.Log, "drain timeout exceeded, forcing shutdown")
	}

	err := c.shutdown(nil)
	c.wg.Wait()
	return err
}

// Wait blocks until the channel's background loops have exited, i.e. some
// time after shutdown was triggered (by Close, a transport failure, or the
// peer closing the connection).
func (c *Channel) Wait() {
	c.wg.Wait()
}

func (c *Channel) shutdown(cause error) error {
	var err error
	c.closed.Do(func() {
		close(c.doneCh)
		err = c.conn.Close()
		c.setState(ShutdownCompleted)
		logInfo(c.cfg.Log, "channel shutdown completed")
		c.dispatchShutdown(cause)
	})
	return err
}

func (c *Channel) writeLoop() {
	defer c.wg.Done()
	w := bufio.NewWriter(c.conn)

	for {
		select {
		case payload, ok := <-c.sendCh:
			if !ok {
				return
			}
			if _, err := w.Write(payload); err != nil {
				logError(c.cfg.Log, err, "transport write failure")
				_ = c.shutdown(ErrTransport.Error(err))
				return
			}
			if err := w.Flush(); err != nil {
				logError(c.cfg.Log, err, "transport flush failure")
				_ = c.shutdown(ErrTransport.Error(err))
				return
			}
			c.lastSendNano.Store(time.Now().UnixNano())
		case <-c.doneCh:
			return
		}
	}
}

func (c *Channel) readLoop() {
	defer c.wg.Done()

	lr := protocol.NewLineReader()
	parser := protocol.NewCommandParser()
	buf := make([]byte, 4096)

	sawHello := false
	greetingDone := false

	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			c.lastRecvNano.Store(time.Now().UnixNano())

			lines, ferr := lr.Feed(buf[:n])
			for _, line := range lines {
				if parser.IsIdle() {
					if resp, ok := protocol.ParseResponse(line); ok {
						c.completeResponse(resp)
						continue
					}
				}

				for _, item := range parser.FeedLines([]string{line}) {
					if !greetingDone {
						if item.Command != nil && !sawHello && item.Command.Verb == protocol.VerbHello {
							sawHello = true
							c.mu.Lock()
							if c.state < Operational {
								c.state = Operational
							}
							c.mu.Unlock()
							logDebug(c.cfg.Log, "peer greeting received, channel operational")
							continue
						}
						if item.Command != nil && sawHello && item.Command.Verb == protocol.VerbInfo {
							continue
						}
						if sawHello {
							greetingDone = true
						}
					}

					c.dispatchLine(item)
					if item.Issue != nil {
						c.replyIssue(item.Issue)
					}
				}
			}

			if ferr != nil && liberr.IsCode(ferr, protocol.ErrLineTooLong) {
				c.writeRaw([]string{protocol.FormatResponse(protocol.Response{
					Kind:    protocol.ResponseError,
					Message: protocol.CodeLineTooLong,
				})})
				ferr = nil
			}

			if ferr != nil {
				logError(c.cfg.Log, ferr, "framing error")
				_ = c.shutdown(ferr)
				return
			}
		}

		if err != nil {
			if err == io.EOF {
				_ = c.shutdown(nil)
			} else {
				logError(c.cfg.Log, err, "transport read failure")
				_ = c.shutdown(ErrTransport.Error(err))
			}
			return
		}
	}
}

func (c *Channel) heartbeatLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.doneCh:
			return
		case <-ticker.C:
			last := c.lastRecvNano.Load()
			if time.Since(time.Unix(0, last)) > 3*interval {
				logError(c.cfg.Log, nil, "heartbeat timeout, no peer traffic")
				_ = c.shutdown(ErrHeartbeatTimeout.Error())
				return
			}

			sinceSend := time.Since(time.Unix(0, c.lastSendNano.Load()))
			if sinceSend >= interval {
				c.writeRaw(protocol.EncodeCommand(protocol.EncodeHeartbeat(protocol.NewCommandId())))
			}
		}
	}
}
