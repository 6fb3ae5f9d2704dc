// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// EventClient provides access to the event log.
//
// Events track workspace changes and launch activity: workspace.created,
// launch.started, launch.progress, launch.outcome and so on.
//
// Access this client through [Client.Events]:
//
//	events, err := client.Events.List(ctx, &client.ListOptions{Limit: 50})
type EventClient struct {
	c *Client
}

// ListOptions configures event listing.
type ListOptions struct {
	// Limit is the maximum number of events to return.
	Limit int

	// Types filters to only these event types (e.g., "launch.outcome").
	Types []string

	// Workspace filters to events of this workspace.
	Workspace string

	// Attempt filters to the events of one launch attempt.
	Attempt string

	// Since filters to events after this time.
	Since time.Time

	// Until filters to events before this time.
	Until time.Time
}

// List returns recent events from the event log.
//
// Events are returned oldest first; with a Limit, the newest Limit matches.
func (e *EventClient) List(ctx context.Context, opts *ListOptions) ([]Event, error) {
	path := "/api/v1/events"

	if opts != nil {
		params := url.Values{}
		if opts.Limit > 0 {
			params.Set("limit", fmt.Sprintf("%d", opts.Limit))
		}
		for _, t := range opts.Types {
			params.Add("type", t)
		}
		if opts.Workspace != "" {
			params.Set("workspace", opts.Workspace)
		}
		if opts.Attempt != "" {
			params.Set("attempt", opts.Attempt)
		}
		if !opts.Since.IsZero() {
			params.Set("since", opts.Since.Format(time.RFC3339Nano))
		}
		if !opts.Until.IsZero() {
			params.Set("until", opts.Until.Format(time.RFC3339Nano))
		}
		if len(params) > 0 {
			path += "?" + params.Encode()
		}
	}

	var list []Event
	if err := e.c.call(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// StreamOptions configures [EventClient.Stream].
type StreamOptions struct {
	// Pattern selects event types, e.g. "launch.*". Empty means all.
	Pattern string

	// Workspace restricts the stream to one workspace.
	Workspace string
}

// Stream follows live events over a WebSocket and calls fn for each one
// until ctx is cancelled, the connection drops, or fn returns an error.
// A cancelled ctx returns nil.
func (e *EventClient) Stream(ctx context.Context, opts StreamOptions, fn func(Event) error) error {
	u, err := url.Parse(e.c.baseURL + "/api/v1/events/ws")
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	params := url.Values{}
	if opts.Pattern != "" {
		params.Set("pattern", opts.Pattern)
	}
	if opts.Workspace != "" {
		params.Set("workspace", opts.Workspace)
	}
	u.RawQuery = params.Encode()

	header := http.Header{}
	header.Set(VersionHeader, e.c.version)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil && resp.StatusCode >= http.StatusBadRequest {
			var env envelope
			if json.NewDecoder(resp.Body).Decode(&env) == nil && env.Error != nil {
				env.Error.StatusCode = resp.StatusCode
				return env.Error
			}
		}
		return fmt.Errorf("connect event stream: %w", err)
	}
	defer conn.Close()

	// Unblock ReadJSON when the caller gives up.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		var evt Event
		if err := conn.ReadJSON(&evt); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
				strings.Contains(err.Error(), "use of closed network connection") {
				return nil
			}
			return fmt.Errorf("read event: %w", err)
		}
		if err := fn(evt); err != nil {
			return err
		}
	}
}
