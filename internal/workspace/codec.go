// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Codec converts the workspace collection to and from its stored form.
type Codec interface {
	Encode(items []*Workspace) ([]byte, error)
	Decode(data []byte) ([]*Workspace, error)
}

// Format names a stored document format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// CodecFor returns the codec for the given format. Unknown formats use JSON.
func CodecFor(f Format) Codec {
	if f == FormatYAML {
		return YAMLCodec{}
	}
	return JSONCodec{}
}

// record is the stored shape of a workspace. Timestamps are RFC 3339 strings
// with nanosecond precision.
type record struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Apps        []App  `json:"apps" yaml:"apps"`
	CreatedAt   string `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   string `json:"updatedAt" yaml:"updatedAt"`
}

func toRecords(items []*Workspace) []record {
	out := make([]record, 0, len(items))
	for _, w := range items {
		apps := w.Apps
		if apps == nil {
			apps = []App{}
		}
		out = append(out, record{
			ID:          w.ID,
			Name:        w.Name,
			Description: w.Description,
			Icon:        w.Icon,
			Apps:        apps,
			CreatedAt:   w.CreatedAt.UTC().Format(time.RFC3339Nano),
			UpdatedAt:   w.UpdatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return out
}

func fromRecords(recs []record) ([]*Workspace, error) {
	out := make([]*Workspace, 0, len(recs))
	for i, r := range recs {
		if r.ID == "" {
			return nil, fmt.Errorf("record %d: missing id", i)
		}
		created, err := parseTime(r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("record %d (%s): createdAt: %w", i, r.ID, err)
		}
		updated, err := parseTime(r.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("record %d (%s): updatedAt: %w", i, r.ID, err)
		}
		out = append(out, &Workspace{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			Icon:        r.Icon,
			Apps:        append([]App(nil), r.Apps...),
			CreatedAt:   created,
			UpdatedAt:   updated,
		})
	}
	return out, nil
}

// parseTime accepts RFC 3339 with or without fractional seconds.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// JSONCodec stores the collection as a pretty-printed JSON array.
type JSONCodec struct{}

func (JSONCodec) Encode(items []*Workspace) ([]byte, error) {
	return json.MarshalIndent(toRecords(items), "", "  ")
}

func (JSONCodec) Decode(data []byte) ([]*Workspace, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []*Workspace{}, nil
	}
	var recs []record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, err
	}
	return fromRecords(recs)
}

// YAMLCodec stores the collection as a YAML sequence.
type YAMLCodec struct{}

func (YAMLCodec) Encode(items []*Workspace) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(toRecords(items)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (YAMLCodec) Decode(data []byte) ([]*Workspace, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []*Workspace{}, nil
	}
	var recs []record
	if err := yaml.Unmarshal(data, &recs); err != nil {
		return nil, err
	}
	return fromRecords(recs)
}
