// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package version implements date-based API versioning.
//
// Clients send the Launcher-Version header to pin a version; without it the
// latest version is used. A breaking change adds a new dated constant and
// moves LatestVersion.
package version

import "context"

// Version constants.
const (
	// Version20261016 is the initial API version.
	Version20261016 = "2026-10-16"
)

// LatestVersion is the current default API version.
var LatestVersion = Version20261016

// Supported lists the versions the server accepts.
var Supported = []string{Version20261016}

// Header is the HTTP header used to specify the API version.
const Header = "Launcher-Version"

type contextKey string

const versionKey contextKey = "api-version"

// FromContext returns the API version from the context.
// Returns LatestVersion if not set.
func FromContext(ctx context.Context) string {
	v, ok := ctx.Value(versionKey).(string)
	if !ok || v == "" {
		return LatestVersion
	}
	return v
}

// WithContext returns a new context with the API version set.
func WithContext(ctx context.Context, version string) context.Context {
	return context.WithValue(ctx, versionKey, version)
}

// IsSupported reports whether v is a known version.
func IsSupported(v string) bool {
	for _, s := range Supported {
		if s == v {
			return true
		}
	}
	return false
}
