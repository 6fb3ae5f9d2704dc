// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPattern is returned for patterns that cannot be parsed.
var ErrInvalidPattern = errors.New("invalid event pattern")

// Pattern selects event types. It is a comma separated list of
// alternatives; each alternative is an exact type, "*", a prefix form
// ("launch.*") or a suffix form ("*.deleted").
//
//	launch.*                      every launch event
//	launch.outcome,launch.failed  terminal launch events
//	*.deleted                     workspace.deleted
type Pattern struct {
	raw  string
	alts []alternative
}

type alternative struct {
	any    bool
	exact  string
	prefix string // "launch." for "launch.*"
	suffix string // ".deleted" for "*.deleted"
}

// ParsePattern parses s. Whitespace around alternatives is ignored.
func ParsePattern(s string) (Pattern, error) {
	p := Pattern{raw: s}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return Pattern{}, fmt.Errorf("%w: empty alternative in %q", ErrInvalidPattern, s)
		}

		var alt alternative
		switch {
		case part == "*":
			alt.any = true
		case strings.HasSuffix(part, ".*") && !strings.Contains(part[:len(part)-2], "*"):
			alt.prefix = part[:len(part)-1]
		case strings.HasPrefix(part, "*.") && !strings.Contains(part[2:], "*"):
			alt.suffix = part[1:]
		case strings.Contains(part, "*"):
			return Pattern{}, fmt.Errorf("%w: %q (wildcards only as a whole first or last segment)", ErrInvalidPattern, part)
		default:
			alt.exact = part
		}
		p.alts = append(p.alts, alt)
	}
	return p, nil
}

// MustParsePattern is like ParsePattern but panics on error.
func MustParsePattern(s string) Pattern {
	p, err := ParsePattern(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Match reports whether eventType is selected by the pattern.
func (p Pattern) Match(eventType string) bool {
	if eventType == "" {
		return false
	}
	for _, alt := range p.alts {
		switch {
		case alt.any:
			return true
		case alt.prefix != "":
			if strings.HasPrefix(eventType, alt.prefix) {
				return true
			}
		case alt.suffix != "":
			if strings.HasSuffix(eventType, alt.suffix) {
				return true
			}
		case alt.exact == eventType:
			return true
		}
	}
	return false
}

// String returns the pattern as written.
func (p Pattern) String() string {
	return p.raw
}

// matchAny reports whether eventType matches any of the patterns. Patterns
// that fail to parse match nothing.
func matchAny(eventType string, patterns []string) bool {
	for _, s := range patterns {
		if p, err := ParsePattern(s); err == nil && p.Match(eventType) {
			return true
		}
	}
	return false
}
