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
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sabouaram/logship/channel"
	"github.com/sabouaram/logship/collection"
	"github.com/sabouaram/logship/message"
	"github.com/sabouaram/logship/protocol"
)

// connMeta holds the per-channel SET metadata §4.2 describes: PROCESS_NAME,
// PROCESS_ID, and APPLICATION_NAME arrive as separate SET commands and
// apply to every WRITE the same connection sends afterward.
type connMeta struct {
	mu              sync.Mutex
	processName     string
	processId       int64
	applicationName string
}

func (m *connMeta) apply(arg string) {
	key, value, ok := splitSetArg(arg)
	if !ok {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch protocol.SetKey(key) {
	case protocol.SetProcessName:
		m.processName = value
	case protocol.SetApplicationName:
		m.applicationName = value
	case protocol.SetProcessId:
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			m.processId = n
		}
	}
}

func (m *connMeta) fill(msg *message.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if msg.ProcessName == "" {
		msg.ProcessName = m.processName
	}
	if msg.ApplicationName == "" {
		msg.ApplicationName = m.applicationName
	}
	if msg.ProcessId == 0 {
		msg.ProcessId = m.processId
	}
}

func splitSetArg(arg string) (key, value string, ok bool) {
	parts := strings.SplitN(arg, " ", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// NewCollectionHandler returns the reference §4.2/§4.6 verb dispatch that
// Config.Handler expects: HEARTBEAT and the client-only extensions are
// acknowledged, SET records per-channel metadata, WRITE validates and
// appends to col, and any verb outside the recognized table is refused
// with NOK(unknown_verb). This is the ingestion path spec.md §2 describes
// as "server application" — a caller wires it in with
// `cfg.Handler = server.NewCollectionHandler(col)`.
func NewCollectionHandler(col *collection.Collection) Handler {
	var metaMu sync.Mutex
	meta := make(map[*channel.Channel]*connMeta)

	metaFor := func(ch *channel.Channel) *connMeta {
		metaMu.Lock()
		defer metaMu.Unlock()

		m, ok := meta[ch]
		if ok {
			return m
		}

		m = &connMeta{}
		meta[ch] = m
		ch.OnShutdownCompleted(func(error) {
			metaMu.Lock()
			delete(meta, ch)
			metaMu.Unlock()
		})
		return m
	}

	return func(ch *channel.Channel, item protocol.Item) {
		if item.Command == nil {
			return
		}
		cmd := *item.Command

		switch cmd.Verb {
		case protocol.VerbSet:
			metaFor(ch).apply(cmd.Arg)
			_ = ch.SendResponse(protocol.Response{Kind: protocol.ResponseOK, Id: cmd.Id})

		case protocol.VerbWrite:
			if !cmd.HasBody {
				_ = ch.SendResponse(protocol.Response{Kind: protocol.ResponseNOK, Id: cmd.Id, Code: protocol.CodeMissingBody})
				return
			}
			m := protocol.DecodeWrite(cmd, time.Now())
			metaFor(ch).fill(&m)
			col.Append(m)
			_ = ch.SendResponse(protocol.Response{Kind: protocol.ResponseOK, Id: cmd.Id})

		case protocol.VerbHeartbeat, protocol.VerbHello, protocol.VerbInfo,
			protocol.VerbClearLogViewer, protocol.VerbSaveSnapshot:
			_ = ch.SendResponse(protocol.Response{Kind: protocol.ResponseOK, Id: cmd.Id})

		default:
			_ = ch.SendResponse(protocol.Response{Kind: protocol.ResponseNOK, Id: cmd.Id, Code: protocol.CodeUnknownVerb})
		}
	}
}
