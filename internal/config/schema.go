// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config loads the launcher configuration.
package config

import "time"

// Config is the root configuration.
type Config struct {
	Server  ServerConfig  `json:"server"`
	DataDir string        `json:"data_dir"`
	Storage StorageConfig `json:"storage"`
	Launch  LaunchConfig  `json:"launch"`
	Events  EventsConfig  `json:"events"`
	Watch   WatchConfig   `json:"watch"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int    `json:"port"`
	Host string `json:"host"`
}

// StorageConfig selects the workspace store.
type StorageConfig struct {
	// URL is "file:<path>", "sqlite:<path>" or "mem:". Empty means the
	// default file under data_dir.
	URL string `json:"url"`
}

// LaunchConfig configures launches.
type LaunchConfig struct {
	// CompletionTimeout bounds how long an attempt waits for the launcher's
	// completion. "0" disables the limit.
	CompletionTimeout string `json:"completion_timeout"`
	// DefaultDelay is applied before apps that have no delay of their own.
	DefaultDelay string `json:"default_delay"`
}

// EventsConfig configures the event system.
type EventsConfig struct {
	History HistoryConfig `json:"history"`
}

// HistoryConfig configures event history retention.
type HistoryConfig struct {
	MaxEvents int    `json:"max_events"`
	MaxAge    string `json:"max_age"`
}

// WatchConfig configures reloading when the storage file changes on disk.
type WatchConfig struct {
	Enabled  *bool  `json:"enabled"`
	Debounce string `json:"debounce"`
}

// IsEnabled returns whether the storage file is watched. Defaults to true.
func (w *WatchConfig) IsEnabled() bool {
	if w.Enabled == nil {
		return true
	}
	return *w.Enabled
}

// ParseDuration parses a duration string, returning defaultVal if empty or invalid.
func ParseDuration(s string, defaultVal time.Duration) time.Duration {
	if s == "" {
		return defaultVal
	}
	if s == "0" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// CompletionTimeout returns the parsed launch watchdog timeout.
func (c *Config) CompletionTimeout() time.Duration {
	return ParseDuration(c.Launch.CompletionTimeout, DefaultCompletionTimeout)
}

// DefaultDelay returns the parsed default launch delay.
func (c *Config) DefaultDelay() time.Duration {
	return ParseDuration(c.Launch.DefaultDelay, 0)
}
