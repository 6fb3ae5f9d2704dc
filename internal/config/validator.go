// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"net"
	"strings"
	"time"
)

// FieldError is one invalid setting, named by its dotted path.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every invalid setting of a config.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "invalid config: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, format string, args ...interface{}) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// storageSchemes are the accepted storage.url prefixes and whether they
// need a path after the colon.
var storageSchemes = map[string]bool{
	"file":   true,
	"sqlite": true,
	"mem":    false,
	"memory": false,
}

// Validate checks cfg after defaults were applied and reports all problems
// at once.
func Validate(cfg *Config) error {
	errs := &ValidationError{}

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		errs.add("server.port", "%d is outside 0-65535", cfg.Server.Port)
	}
	if h := cfg.Server.Host; h != "" && h != "localhost" && net.ParseIP(h) == nil {
		errs.add("server.host", "%q is not an IP address or localhost", h)
	}

	if u := cfg.Storage.URL; u != "" {
		scheme, rest, ok := strings.Cut(u, ":")
		needsPath, known := storageSchemes[scheme]
		switch {
		case !ok || !known:
			errs.add("storage.url", "unsupported scheme in %q (use file:, sqlite: or mem:)", u)
		case needsPath && strings.TrimSpace(rest) == "":
			errs.add("storage.url", "%s: needs a path", scheme)
		}
	}

	for _, d := range []struct{ field, value string }{
		{"launch.completion_timeout", cfg.Launch.CompletionTimeout},
		{"launch.default_delay", cfg.Launch.DefaultDelay},
		{"watch.debounce", cfg.Watch.Debounce},
		{"events.history.max_age", cfg.Events.History.MaxAge},
	} {
		if d.value == "" || d.value == "0" {
			continue
		}
		v, err := time.ParseDuration(d.value)
		switch {
		case err != nil:
			errs.add(d.field, "%q is not a duration (e.g. 500ms, 10m)", d.value)
		case v < 0:
			errs.add(d.field, "must not be negative")
		}
	}

	if cfg.Events.History.MaxEvents < 0 {
		errs.add("events.history.max_events", "must not be negative")
	}

	if len(errs.Errors) == 0 {
		return nil
	}
	return errs
}
