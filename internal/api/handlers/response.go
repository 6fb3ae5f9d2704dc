// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package handlers implements the HTTP API endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ruangustavo/workspace-launcher/internal/appinfo"
	"github.com/ruangustavo/workspace-launcher/internal/orchestrator"
	"github.com/ruangustavo/workspace-launcher/internal/plan"
	"github.com/ruangustavo/workspace-launcher/internal/workspace"
)

// Response is the standard API response wrapper.
type Response struct {
	Data  interface{} `json:"data,omitempty"`
	Error *ErrorInfo  `json:"error,omitempty"`
	Meta  *MetaInfo   `json:"meta,omitempty"`
}

// ErrorInfo contains error details.
type ErrorInfo struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// MetaInfo contains response metadata.
type MetaInfo struct {
	Timestamp time.Time `json:"timestamp"`
	// Warning is set when the request succeeded but something degraded,
	// e.g. a mutation that could not be saved.
	Warning string `json:"warning,omitempty"`
}

// Error codes
const (
	ErrNotFound      = "NOT_FOUND"
	ErrBadRequest    = "BAD_REQUEST"
	ErrInternalError = "INTERNAL_ERROR"
	ErrConflict      = "CONFLICT"
	ErrLaunchError   = "LAUNCH_ERROR"
	ErrCanceled      = "CANCELED"
)

// StatusClientClosedRequest is sent when the caller cancelled the request.
const StatusClientClosedRequest = 499

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, Response{Data: data, Meta: &MetaInfo{Timestamp: time.Now()}})
}

// WriteJSONWithWarning writes a successful response carrying a warning.
func WriteJSONWithWarning(w http.ResponseWriter, status int, data interface{}, warning string) {
	write(w, status, Response{Data: data, Meta: &MetaInfo{Timestamp: time.Now(), Warning: warning}})
}

// WriteError writes an error response.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteErrorWithDetails(w, status, code, message, nil)
}

// WriteErrorWithDetails writes an error response with details.
func WriteErrorWithDetails(w http.ResponseWriter, status int, code, message string, details map[string]interface{}) {
	write(w, status, Response{
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
			Details: details,
		},
		Meta: &MetaInfo{Timestamp: time.Now()},
	})
}

// WriteDomainError maps a domain error to its status and code.
func WriteDomainError(w http.ResponseWriter, err error) {
	var verr *workspace.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteErrorWithDetails(w, http.StatusBadRequest, ErrBadRequest, err.Error(),
			map[string]interface{}{"errors": verr.Errors})
	case errors.Is(err, workspace.ErrValidationFailed), errors.Is(err, plan.ErrEmptyPlan):
		WriteError(w, http.StatusBadRequest, ErrBadRequest, err.Error())
	case errors.Is(err, workspace.ErrNotFound), errors.Is(err, appinfo.ErrNotExist):
		WriteError(w, http.StatusNotFound, ErrNotFound, err.Error())
	case errors.Is(err, orchestrator.ErrAlreadyRunning), errors.Is(err, orchestrator.ErrAttemptAbandoned):
		WriteError(w, http.StatusConflict, ErrConflict, err.Error())
	case errors.Is(err, orchestrator.ErrLaunchDispatchFailed):
		WriteError(w, http.StatusBadGateway, ErrLaunchError, err.Error())
	case errors.Is(err, orchestrator.ErrLaunchTimedOut), errors.Is(err, context.DeadlineExceeded):
		WriteError(w, http.StatusGatewayTimeout, ErrLaunchError, err.Error())
	case errors.Is(err, context.Canceled):
		WriteError(w, StatusClientClosedRequest, ErrCanceled, err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, ErrInternalError, err.Error())
	}
}

func write(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}
