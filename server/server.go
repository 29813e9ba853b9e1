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

package server

import (
	"context"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sabouaram/logship/channel"
	"github.com/sabouaram/logship/errors/pool"
	"github.com/sabouaram/logship/protocol"
)

// Server is the log-service TCP acceptor (C4): it binds a listen socket,
// accepts connections up to cfg.Backlog, and hands each one to a freshly
// constructed channel. The acceptor owns every accepted channel's lifetime
// and joins all of them before Shutdown/Close return.
type Server struct {
	cfg Config

	mu      sync.Mutex
	ln      net.Listener
	running bool
	doneCh  chan struct{}
	cancel  context.CancelFunc
	conns   map[int64]*channel.Channel

	nextID int64
	wg     sync.WaitGroup
}

// New validates cfg and returns a Server ready to Listen. It does not bind a
// socket yet.
func New(cfg Config) (*Server, error) {
	if strings.TrimSpace(cfg.Address) == "" {
		return nil, ErrInvalidAddress.Error()
	}
	if cfg.Handler == nil && !cfg.EchoReceivedData && !cfg.DiscardReceivedData {
		return nil, ErrInvalidHandler.Error()
	}

	return &Server{
		cfg:    cfg,
		doneCh: make(chan struct{}),
		conns:  make(map[int64]*channel.Channel),
	}, nil
}

// IsRunning reports whether the listen socket is currently bound and
// accepting.
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// IsGone is the complement of IsRunning, matching the teacher's accessor
// pair.
func (s *Server) IsGone() bool {
	return !s.IsRunning()
}

// OpenConnections reports the number of currently accepted channels.
func (s *Server) OpenConnections() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.conns))
}

// Done returns a channel closed once the acceptor and every accepted
// channel it spawned have fully stopped.
func (s *Server) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doneCh
}

// Listen binds the listen socket and starts accepting in the background.
// It returns once the socket is bound; ctx cancellation (or a later call to
// Shutdown/Close) stops the acceptor.
func (s *Server) Listen(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning.Error()
	}

	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.ln = ln
	s.running = true
	s.doneCh = make(chan struct{})
	s.cancel = cancel
	s.mu.Unlock()

	eg, egCtx := errgroup.WithContext(runCtx)
	eg.Go(func() error {
		<-egCtx.Done()
		return s.ln.Close()
	})
	eg.Go(func() error {
		return s.acceptLoop(egCtx)
	})

	go func() {
		_ = eg.Wait()
		s.wg.Wait()

		s.mu.Lock()
		s.running = false
		close(s.doneCh)
		s.mu.Unlock()
	}()

	return nil
}

func (s *Server) acceptLoop(ctx context.Context) error {
	var sem chan struct{}
	if s.cfg.Backlog > 0 {
		sem = make(chan struct{}, s.cfg.Backlog)
	}

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}

		if sem != nil {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				_ = conn.Close()
				return nil
			}
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if sem != nil {
				defer func() { <-sem }()
			}
			s.handleConn(conn)
		}()
	}
}

func (s *Server) handleConn(conn net.Conn) {
	id := atomic.AddInt64(&s.nextID, 1)

	ch := channel.New(conn, s.cfg.Channel)

	s.mu.Lock()
	s.conns[id] = ch
	s.mu.Unlock()

	shutdown := make(chan struct{})
	ch.OnShutdownCompleted(func(error) { close(shutdown) })

	switch {
	case s.cfg.DiscardReceivedData:
		ch.OnLineReceived(func(protocol.Item) {})
	case s.cfg.EchoReceivedData:
		ch.OnLineReceived(func(item protocol.Item) {
			if item.Command == nil || item.Command.Verb != protocol.VerbWrite {
				return
			}
			m := protocol.DecodeWrite(*item.Command, time.Now())
			_ = ch.SendMessage(m)
		})
	default:
		handler := s.cfg.Handler
		ch.OnLineReceived(func(item protocol.Item) {
			handler(ch, item)
		})
	}

	<-shutdown

	s.mu.Lock()
	delete(s.conns, id)
	s.mu.Unlock()
}

// Shutdown stops accepting, closes every currently accepted channel
// (allowing each its configured drain grace period), and waits for the
// acceptor to fully stop or ctx to expire, whichever comes first.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrNotRunning.Error()
	}
	cancel := s.cancel
	doneCh := s.doneCh
	conns := make([]*channel.Channel, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	cancel()

	grace := s.cfg.Channel.DrainTimeout
	if grace <= 0 {
		grace = 5 * time.Second
	}

	closeErrs := pool.New()
	var wg sync.WaitGroup
	wg.Add(len(conns))
	for _, c := range conns {
		go func(c *channel.Channel) {
			defer wg.Done()
			closeErrs.Add(c.Close(grace))
		}(c)
	}
	wg.Wait()

	select {
	case <-doneCh:
		return closeErrs.Error()
	case <-ctx.Done():
		closeErrs.Add(ErrShutdownTimeout.Error())
		return closeErrs.Error()
	}
}

// Close shuts the server down with a fixed five second grace period,
// matching the teacher's no-argument Close convenience wrapper around
// Shutdown.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}
