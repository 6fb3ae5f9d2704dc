// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidationFailed is wrapped by every rejected definition or patch.
	ErrValidationFailed = errors.New("workspace validation failed")

	// ErrNotFound is returned when no workspace has the requested id.
	ErrNotFound = errors.New("workspace not found")

	// ErrLoadFailed is returned when the stored collection cannot be read or decoded.
	ErrLoadFailed = errors.New("failed to load workspaces")

	// ErrPersistFailed accompanies a mutation that was applied in memory but not saved.
	ErrPersistFailed = errors.New("failed to persist workspaces")
)

// ValidationError contains multiple validation failures.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

// FieldError represents a single field validation error.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	var msgs []string
	for _, fe := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "workspace validation failed: " + strings.Join(msgs, "; ")
}

// Unwrap lets errors.Is match ErrValidationFailed.
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// IsEmpty returns true if there are no validation errors.
func (e *ValidationError) IsEmpty() bool {
	return len(e.Errors) == 0
}

// Add adds a field error.
func (e *ValidationError) Add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}
