// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"net/http"
	"net/url"
)

// AppInfoClient looks up executables on the launcher's host, e.g. to fill
// in a name when a user picks a path.
type AppInfoClient struct {
	c *Client
}

// Info describes the executable at path. A missing path is NOT_FOUND.
func (a *AppInfoClient) Info(ctx context.Context, path string) (*AppInfo, error) {
	var info AppInfo
	if err := a.c.call(ctx, http.MethodGet, "/api/v1/appinfo?path="+url.QueryEscape(path), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
