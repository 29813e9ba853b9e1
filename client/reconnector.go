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

package client

import (
	"context"
	"sync"
	"time"

	"github.com/sabouaram/logship/channel"
)

// Reconnector is the auto-reconnect facade over Dial: it keeps attempting
// to (re)establish a channel to cfg.Address, spaced by cfg.RetryInterval,
// for as long as it has not been stopped. The initial attempt runs on a
// background worker so Start returns without blocking on the network.
type Reconnector struct {
	cfg ReconnectConfig
	ctx context.Context

	mu      sync.Mutex
	ch      *channel.Channel
	timer   *time.Timer
	stopped bool

	onConnect []func(*channel.Channel)

	wg sync.WaitGroup
}

// NewReconnector returns a Reconnector that has not yet started dialing.
func NewReconnector(cfg ReconnectConfig) *Reconnector {
	return &Reconnector{cfg: cfg}
}

// OnConnected registers a callback invoked, off any internal lock, every
// time a new channel is established (the first connect and every
// reconnect).
func (r *Reconnector) OnConnected(cb func(*channel.Channel)) {
	r.mu.Lock()
	r.onConnect = append(r.onConnect, cb)
	r.mu.Unlock()
}

// Start schedules the initial connect attempt on a background goroutine
// and returns immediately. ctx bounds every dial attempt; it is not
// consulted between retries, only Stop ends the reconnect loop.
func (r *Reconnector) Start(ctx context.Context) {
	r.mu.Lock()
	r.ctx = ctx
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.connectOnce()
	}()
}

func (r *Reconnector) connectOnce() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	ctx := r.ctx
	r.mu.Unlock()

	ch, err := Dial(ctx, r.cfg.Config)
	if err != nil {
		r.scheduleReconnect()
		return
	}

	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		_ = ch.Close(time.Second)
		return
	}
	r.ch = ch
	r.mu.Unlock()

	ch.OnShutdownCompleted(func(error) {
		r.scheduleReconnect()
	})

	r.notifyConnected(ch)
}

func (r *Reconnector) scheduleReconnect() {
	delay := r.cfg.RetryInterval.Time()

	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.wg.Add(1)
	r.timer = time.AfterFunc(delay, func() {
		defer r.wg.Done()
		r.connectOnce()
	})
	r.mu.Unlock()
}

// Stop prevents any future reconnect attempt and closes the current
// channel, if any. A reconnect timer already pending is cancelled and its
// callback, even if it had already begun running, observes stopped and
// does not dial.
func (r *Reconnector) Stop() error {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return ErrStopped.Error()
	}
	r.stopped = true

	if r.timer != nil && r.timer.Stop() {
		r.wg.Done()
	}
	ch := r.ch
	r.mu.Unlock()

	if ch != nil {
		_ = ch.Close(time.Second)
	}
	r.wg.Wait()
	return nil
}

// IsConnected reports whether a current channel exists and has not yet
// reached ShutdownCompleted; it does not wait for the peer's greeting.
func (r *Reconnector) IsConnected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ch != nil && r.ch.State() != channel.ShutdownCompleted
}

// Channel returns the current channel, or nil if none is established.
func (r *Reconnector) Channel() *channel.Channel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ch
}

func (r *Reconnector) notifyConnected(ch *channel.Channel) {
	r.mu.Lock()
	cbs := append([]func(*channel.Channel){}, r.onConnect...)
	r.mu.Unlock()

	for _, cb := range cbs {
		cb(ch)
	}
}
