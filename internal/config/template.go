// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
)

// TemplateContext is the data available to config templates.
type TemplateContext struct {
	DataDir string
	Home    string
}

// TemplateExpander handles Go text/template variable expansion in config values.
type TemplateExpander struct {
	funcMap template.FuncMap
}

// NewTemplateExpander creates a new template expander with built-in functions.
func NewTemplateExpander() *TemplateExpander {
	return &TemplateExpander{
		funcMap: template.FuncMap{
			"env":     os.Getenv,
			"default": Default,
		},
	}
}

// Expand expands template variables in a string value.
func (e *TemplateExpander) Expand(value string, ctx *TemplateContext) (string, error) {
	if !strings.Contains(value, "{{") {
		return value, nil
	}

	tmpl, err := template.New("value").Funcs(e.funcMap).Option("missingkey=error").Parse(value)
	if err != nil {
		return "", fmt.Errorf("parse template %q: %w", value, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("expand template %q: %w", value, err)
	}
	return buf.String(), nil
}

// Default returns val unless it is empty.
func Default(def, val string) string {
	if val == "" {
		return def
	}
	return val
}

// expandTemplates expands data_dir first, then values that may refer to it.
func expandTemplates(cfg *Config) error {
	home, _ := os.UserHomeDir()
	e := NewTemplateExpander()
	ctx := &TemplateContext{Home: home}

	dataDir, err := e.Expand(cfg.DataDir, ctx)
	if err != nil {
		return fmt.Errorf("data_dir: %w", err)
	}
	cfg.DataDir = dataDir

	ctx.DataDir = cfg.DataDir
	if ctx.DataDir == "" {
		ctx.DataDir = DefaultDataDir()
	}
	url, err := e.Expand(cfg.Storage.URL, ctx)
	if err != nil {
		return fmt.Errorf("storage.url: %w", err)
	}
	cfg.Storage.URL = url
	return nil
}
