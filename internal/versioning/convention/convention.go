// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

// Package convention classifies commit messages into version increments.
package convention

import (
	"slices"
	"strings"
)

// Level is the version part a message asks to increment.
type Level int

// Increment levels in ascending order.
const (
	None Level = iota
	Patch
	Minor
	Major
)

func (l Level) String() string {
	switch l {
	case Patch:
		return "patch"
	case Minor:
		return "minor"
	case Major:
		return "major"
	default:
		return "none"
	}
}

// Convention maps a commit message to an increment level.
type Convention interface {
	Name() string
	Classify(message string) Level
}

// Conventional follows the conventional-commits specification.
type Conventional struct {
	MinorTypes []string
	PatchTypes []string
}

// NewConventional creates the default conventional-commits classifier:
// feat bumps minor, fix and perf bump patch.
func NewConventional() *Conventional {
	return &Conventional{
		MinorTypes: []string{"feat"},
		PatchTypes: []string{"fix", "perf"},
	}
}

// Name returns "conventional".
func (c *Conventional) Name() string { return "conventional" }

// Classify returns Major for a "!" marker or a BREAKING CHANGE footer,
// otherwise the level of the header type. Messages that are not
// conventional commits yield None.
func (c *Conventional) Classify(message string) Level {
	subject, body, _ := strings.Cut(message, "\n")
	header, err := ParseHeader(subject)
	if err != nil {
		return None
	}
	switch {
	case header.Breaking || hasBreakingFooter(body):
		return Major
	case slices.Contains(c.MinorTypes, header.Type):
		return Minor
	case slices.Contains(c.PatchTypes, header.Type):
		return Patch
	default:
		return None
	}
}

// Continuous treats every non-empty message as a patch.
type Continuous struct{}

// Name returns "continuous".
func (Continuous) Name() string { return "continuous" }

// Classify returns Patch for any non-blank message.
func (Continuous) Classify(message string) Level {
	if strings.TrimSpace(message) == "" {
		return None
	}
	return Patch
}

// Manual never increments from messages.
type Manual struct{}

// Name returns "manual".
func (Manual) Name() string { return "manual" }

// Classify always returns None.
func (Manual) Classify(string) Level { return None }

// ByName looks up a convention by its case-insensitive name.
func ByName(name string) (Convention, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "conventional", "conventionalcommits":
		return NewConventional(), true
	case "continuous":
		return Continuous{}, true
	case "manual", "":
		return Manual{}, true
	default:
		return nil, false
	}
}
