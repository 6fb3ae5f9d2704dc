// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

// API version constants.
//
// Each version represents the API as it existed on that date. Clients can
// pin to a specific version to keep working as the API evolves.
//
// When making a request, the client sends the version via the
// Launcher-Version header. If no version is specified, the latest version
// is used.
const (
	// LatestVersion is the current API version.
	LatestVersion = "2026-10-16"

	// Version20261016 is the initial API version.
	Version20261016 = "2026-10-16"
)

// VersionHeader is the HTTP header used to specify the API version.
const VersionHeader = "Launcher-Version"
