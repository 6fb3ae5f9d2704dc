// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package client is a Go client for the workspace launcher HTTP API.
//
//	c := client.New("http://127.0.0.1:4646")
//	ws, err := c.Workspaces.Create(ctx, client.WorkspaceDefinition{
//	    Name: "Dev",
//	    Apps: []client.App{{Name: "Editor", Path: "code"}},
//	})
//	res, err := c.Launch.Workspace(ctx, ws.ID, true)
//	fmt.Println(res.Outcome.Message)
//
// Requests carry the Launcher-Version header; pin it with [WithVersion].
// Failed requests return an *[APIError]:
//
//	if client.IsNotFound(err) { ... }
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client talks to one launcher. It is safe for concurrent use.
type Client struct {
	baseURL    string
	version    string
	httpClient *http.Client
	onWarning  func(method, path, warning string)

	Workspaces *WorkspaceClient // workspace definitions
	Launch     *LaunchClient    // launch, stop and status
	Events     *EventClient     // event history and live stream
	Apps       *AppInfoClient   // executable lookup on the launcher host
}

// Option configures a [Client].
type Option func(*Client)

// New returns a client for the launcher at baseURL, e.g.
// "http://127.0.0.1:4646". It uses [LatestVersion] and a 30 second timeout
// unless options say otherwise.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		version:    LatestVersion,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Workspaces = &WorkspaceClient{c: c}
	c.Launch = &LaunchClient{c: c}
	c.Events = &EventClient{c: c}
	c.Apps = &AppInfoClient{c: c}
	return c
}

// WithVersion pins the API version (a date such as "2026-10-16").
func WithVersion(v string) Option {
	return func(c *Client) { c.version = v }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the request timeout. Launches with wait=true block until
// every app was handled, so workspaces with long delays need more than the
// default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithWarningHandler registers fn for responses that succeeded with a
// warning, such as a workspace change that was applied but could not be
// saved.
func WithWarningHandler(fn func(method, path, warning string)) Option {
	return func(c *Client) { c.onWarning = fn }
}

// Version returns the API version sent with each request.
func (c *Client) Version() string { return c.version }

// BaseURL returns the launcher URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// APIError is an error answered by the launcher.
//
// Codes: NOT_FOUND, BAD_REQUEST (invalid request or definition, with
// per-field Details), CONFLICT (already launching), LAUNCH_ERROR (launcher
// unreachable or timed out) and INTERNAL_ERROR.
type APIError struct {
	StatusCode int                    `json:"-"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

// IsNotFound reports whether err is a NOT_FOUND APIError.
func IsNotFound(err error) bool { return hasCode(err, "NOT_FOUND") }

// IsConflict reports whether err is a CONFLICT APIError.
func IsConflict(err error) bool { return hasCode(err, "CONFLICT") }

func hasCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *APIError       `json:"error"`
	Meta  struct {
		Warning string `json:"warning"`
	} `json:"meta"`
}

// call sends in (JSON encoded, when non-nil) and decodes the envelope's
// data into out (when non-nil).
func (c *Client) call(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set(VersionHeader, c.version)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", method, path, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	if env.Error != nil {
		env.Error.StatusCode = resp.StatusCode
		return env.Error
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	if env.Meta.Warning != "" && c.onWarning != nil {
		c.onWarning(method, path, env.Meta.Warning)
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s %s: decode data: %w", method, path, err)
	}
	return nil
}
