// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

// Package presentation renders a calculated version in the requested kind,
// parts and view.
package presentation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/vernuntii/vernuntii/internal/versioning"
)

// CodeInvalidPresentation is returned for unknown or inconsistent options.
const CodeInvalidPresentation = "INVALID_PRESENTATION"

// Kind selects how many parts are presented.
type Kind string

// Presentation kinds.
const (
	// KindValue presents exactly one part as a plain value.
	KindValue Kind = "value"
	// KindComplex presents one or more parts as named values.
	KindComplex Kind = "complex"
)

// Part names one presentable property of a result.
type Part string

// Presentable parts.
const (
	PartMajor       Part = "Major"
	PartMinor       Part = "Minor"
	PartPatch       Part = "Patch"
	PartVersionCore Part = "VersionCore"
	PartPreRelease  Part = "PreRelease"
	PartBuild       Part = "Build"
	PartVersion     Part = "Version"
	PartBranch      Part = "Branch"
	PartCommitSha   Part = "CommitSha"
)

// AllParts lists every part in presentation order.
var AllParts = []Part{
	PartMajor, PartMinor, PartPatch, PartVersionCore, PartPreRelease,
	PartBuild, PartVersion, PartBranch, PartCommitSha,
}

// View selects the output format.
type View string

// Presentation views.
const (
	ViewText View = "text"
	ViewJSON View = "json"
	ViewYAML View = "yaml"
)

// Options selects what and how to present.
type Options struct {
	Kind  Kind
	Parts []Part
	View  View
}

// DefaultOptions presents the full version as text.
func DefaultOptions() Options {
	return Options{Kind: KindValue, Parts: []Part{PartVersion}, View: ViewText}
}

func invalid(field, value string) error {
	return oops.In("presentation").
		Code(CodeInvalidPresentation).
		With(field, value).
		Errorf("unknown presentation %s %q", field, value)
}

// ParseKind parses a case-insensitive kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindValue, "":
		return KindValue, nil
	case KindComplex:
		return KindComplex, nil
	default:
		return "", invalid("kind", s)
	}
}

// ParseView parses a case-insensitive view.
func ParseView(s string) (View, error) {
	switch View(strings.ToLower(strings.TrimSpace(s))) {
	case ViewText, "":
		return ViewText, nil
	case ViewJSON:
		return ViewJSON, nil
	case ViewYAML, "yml":
		return ViewYAML, nil
	default:
		return "", invalid("view", s)
	}
}

// ParsePart parses a case-insensitive part name.
func ParsePart(s string) (Part, error) {
	name := strings.TrimSpace(s)
	for _, p := range AllParts {
		if strings.EqualFold(string(p), name) {
			return p, nil
		}
	}
	return "", invalid("part", s)
}

// ParseParts parses a comma separated list of parts. Duplicates are kept
// once, in first-seen order.
func ParseParts(list []string) ([]Part, error) {
	var parts []Part
	seen := make(map[Part]bool)
	for _, item := range list {
		for _, raw := range strings.Split(item, ",") {
			if strings.TrimSpace(raw) == "" {
				continue
			}
			p, err := ParsePart(raw)
			if err != nil {
				return nil, err
			}
			if !seen[p] {
				seen[p] = true
				parts = append(parts, p)
			}
		}
	}
	return parts, nil
}

// Validate checks that the part count fits the kind.
func (o Options) Validate() error {
	switch o.Kind {
	case KindValue:
		if len(o.Parts) != 1 {
			return oops.In("presentation").
				Code(CodeInvalidPresentation).
				With("parts", len(o.Parts)).
				Hint("use --presentation-kind complex to present several parts").
				Errorf("kind value presents exactly one part, got %d", len(o.Parts))
		}
	case KindComplex:
		if len(o.Parts) == 0 {
			return oops.In("presentation").
				Code(CodeInvalidPresentation).
				Errorf("kind complex needs at least one part")
		}
	default:
		return invalid("kind", string(o.Kind))
	}
	switch o.View {
	case ViewText, ViewJSON, ViewYAML:
		return nil
	default:
		return invalid("view", string(o.View))
	}
}

// Value returns the value of part in r. Numbers stay numeric.
func Value(r *versioning.Result, part Part) any {
	v := r.Version
	switch part {
	case PartMajor:
		return v.Major()
	case PartMinor:
		return v.Minor()
	case PartPatch:
		return v.Patch()
	case PartVersionCore:
		return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
	case PartPreRelease:
		return v.Prerelease()
	case PartBuild:
		return v.Metadata()
	case PartVersion:
		return v.String()
	case PartBranch:
		return r.Branch
	case PartCommitSha:
		return r.CommitSha
	default:
		return nil
	}
}

func text(value any) string {
	switch v := value.(type) {
	case uint64:
		return strconv.FormatUint(v, 10)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Present writes r to w.
func Present(w io.Writer, r *versioning.Result, opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	var (
		out []byte
		err error
	)
	if opts.Kind == KindValue {
		out, err = renderValue(Value(r, opts.Parts[0]), opts.View)
	} else {
		out, err = renderComplex(r, opts.Parts, opts.View)
	}
	if err != nil {
		return oops.In("presentation").Wrapf(err, "render %s view", opts.View)
	}
	_, err = w.Write(out)
	return err
}

func renderValue(value any, view View) ([]byte, error) {
	switch view {
	case ViewJSON:
		b, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case ViewYAML:
		return yaml.Marshal(value)
	default:
		return []byte(text(value) + "\n"), nil
	}
}

func renderComplex(r *versioning.Result, parts []Part, view View) ([]byte, error) {
	var buf bytes.Buffer
	switch view {
	case ViewJSON:
		buf.WriteByte('{')
		for i, p := range parts {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, _ := json.Marshal(string(p))
			val, err := json.Marshal(Value(r, p))
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteString("}\n")
	case ViewYAML:
		node := &yaml.Node{Kind: yaml.MappingNode}
		for _, p := range parts {
			var val yaml.Node
			if err := val.Encode(Value(r, p)); err != nil {
				return nil, err
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(p)}, &val)
		}
		return yaml.Marshal(node)
	default:
		for _, p := range parts {
			fmt.Fprintf(&buf, "%s=%s\n", p, text(Value(r, p)))
		}
	}
	return buf.Bytes(), nil
}
