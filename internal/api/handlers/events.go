// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ruangustavo/workspace-launcher/internal/events"
)

const (
	streamQueue  = 100
	pongWait     = 60 * time.Second
	pingInterval = pongWait * 9 / 10
	writeWait    = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// EventHandler serves the event history and the live event stream.
type EventHandler struct {
	bus events.EventBus
}

// NewEventHandler creates a new event handler.
func NewEventHandler(bus events.EventBus) *EventHandler {
	return &EventHandler{bus: bus}
}

// History returns retained events, oldest first.
//
//	type       pattern, repeatable
//	workspace  workspace id
//	attempt    launch attempt id
//	since      RFC 3339 timestamp, inclusive
//	until      RFC 3339 timestamp, inclusive
//	limit      newest N matches
func (h *EventHandler) History(w http.ResponseWriter, r *http.Request) {
	filter, err := parseEventFilter(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, err.Error())
		return
	}

	list, err := h.bus.History(filter)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, ErrInternalError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

func parseEventFilter(r *http.Request) (events.EventFilter, error) {
	q := r.URL.Query()
	filter := events.EventFilter{
		Types:     q["type"],
		Workspace: q.Get("workspace"),
		Attempt:   q.Get("attempt"),
	}
	for _, p := range filter.Types {
		if _, err := events.ParsePattern(p); err != nil {
			return filter, err
		}
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, fmt.Errorf("invalid limit %q", v)
		}
		filter.Limit = n
	}

	var err error
	if filter.Since, err = parseTime(q.Get("since")); err != nil {
		return filter, fmt.Errorf("invalid since: %v", err)
	}
	if filter.Until, err = parseTime(q.Get("until")); err != nil {
		return filter, fmt.Errorf("invalid until: %v", err)
	}
	return filter, nil
}

func parseTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, v)
}

// WebSocket upgrades the connection and streams live events as JSON text
// frames. Query parameters: pattern (default "*") and workspace. An invalid
// pattern is rejected with 400 before the upgrade.
func (h *EventHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	pattern := r.URL.Query().Get("pattern")
	if pattern == "" {
		pattern = "*"
	}
	if _, err := events.ParsePattern(pattern); err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, err.Error())
		return
	}
	workspaceID := r.URL.Query().Get("workspace")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	s := &stream{conn: conn, queue: make(chan events.Event, streamQueue), closed: make(chan struct{})}
	subID, err := h.bus.SubscribeAsync(pattern, func(_ context.Context, ev events.Event) error {
		if workspaceID == "" || ev.Workspace == workspaceID {
			s.offer(ev)
		}
		return nil
	}, streamQueue)
	if err != nil {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error()))
		return
	}
	defer h.bus.Unsubscribe(subID)

	go s.readUntilClosed()
	s.writeLoop()
}

// stream pumps events from a bus subscription to one websocket client.
type stream struct {
	conn    *websocket.Conn
	queue   chan events.Event
	closed  chan struct{}
	dropped int
}

func (s *stream) offer(ev events.Event) {
	select {
	case s.queue <- ev:
	case <-s.closed:
	default:
		s.dropped++
		if s.dropped == 1 || s.dropped%100 == 0 {
			log.Printf("API: websocket %s slow, %d events dropped", s.conn.RemoteAddr(), s.dropped)
		}
	}
}

// readUntilClosed discards client frames; it exists to process control
// frames and notice the client going away.
func (s *stream) readUntilClosed() {
	defer close(s.closed)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *stream) writeLoop() {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case ev := <-s.queue:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ping.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-s.closed:
			return
		}
	}
}
