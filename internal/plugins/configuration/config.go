// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package configuration

import (
	"path/filepath"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/gobwas/glob"
	"github.com/invopop/jsonschema"

	"github.com/vernuntii/vernuntii/internal/versioning"
	"github.com/vernuntii/vernuntii/internal/versioning/convention"
)

// DefaultCacheRetention is how long a cached version stays valid.
const DefaultCacheRetention = 15 * time.Minute

// Config is the configuration file merged with command-line overrides.
type Config struct {
	GitDirectory     string         `koanf:"gitDirectory" json:"gitDirectory,omitempty" jsonschema:"description=Repository directory; relative paths start at the config file"`
	StartVersion     string         `koanf:"startVersion" json:"startVersion,omitempty" jsonschema:"description=Version used when no tag qualifies"`
	VersioningMode   VersioningMode `koanf:"versioningMode" json:"versioningMode,omitempty"`
	PreRelease       *string        `koanf:"preRelease" json:"preRelease,omitempty" jsonschema:"description=Pre-release of the next version; empty for a release; {branch} expands to the branch name"`
	SearchPreRelease *string        `koanf:"searchPreRelease" json:"searchPreRelease,omitempty" jsonschema:"description=Pre-release of tags that qualify as start version"`
	Branches         []BranchCase   `koanf:"branches" json:"branches,omitempty"`
	Hook             Hook           `koanf:"hook" json:"hook,omitempty"`
	Cache            Cache          `koanf:"cache" json:"cache,omitempty"`

	// Path is the loaded file, empty when only defaults apply.
	Path string `koanf:"-" json:"-"`

	branchGlobs []glob.Glob
}

// BranchCase overlays settings when the active branch matches Branch.
type BranchCase struct {
	Branch           string          `koanf:"branch" json:"branch" jsonschema:"description=Glob matched against the branch name; ** crosses slashes"`
	PreRelease       *string         `koanf:"preRelease" json:"preRelease,omitempty"`
	SearchPreRelease *string         `koanf:"searchPreRelease" json:"searchPreRelease,omitempty"`
	VersioningMode   *VersioningMode `koanf:"versioningMode" json:"versioningMode,omitempty"`
}

// Hook configures the script hook.
type Hook struct {
	Script string `koanf:"script" json:"script,omitempty" jsonschema:"description=Lua script defining on_next_version"`
}

// Cache configures the version cache.
type Cache struct {
	Retention string `koanf:"retention" json:"retention,omitempty" jsonschema:"description=Duration a cached version stays valid,example=15m"`
}

// VersioningMode is a preset name or a preset with overrides.
type VersioningMode struct {
	Preset            string `koanf:"preset" json:"preset,omitempty"`
	MessageConvention string `koanf:"messageConvention" json:"messageConvention,omitempty"`
	IncrementMode     string `koanf:"incrementMode" json:"incrementMode,omitempty"`
}

// JSONSchema accepts either form.
func (VersioningMode) JSONSchema() *jsonschema.Schema {
	props := jsonschema.NewProperties()
	props.Set("preset", &jsonschema.Schema{Type: "string", Enum: presetEnum()})
	props.Set("messageConvention", &jsonschema.Schema{Type: "string"})
	props.Set("incrementMode", &jsonschema.Schema{Type: "string"})
	return &jsonschema.Schema{
		Description: "Preset name or object with preset, messageConvention and incrementMode",
		OneOf: []*jsonschema.Schema{
			{Type: "string", Enum: presetEnum()},
			{Type: "object", Properties: props, AdditionalProperties: jsonschema.FalseSchema},
		},
	}
}

func presetEnum() []any {
	out := make([]any, len(versioning.PresetNames))
	for i, name := range versioning.PresetNames {
		out[i] = name
	}
	return out
}

// Resolve builds the preset the mode describes.
func (m VersioningMode) Resolve() (versioning.Preset, error) {
	preset, err := versioning.LookupPreset(m.Preset)
	if err != nil {
		return versioning.Preset{}, err
	}
	if m.MessageConvention != "" {
		c, ok := convention.ByName(m.MessageConvention)
		if !ok {
			return versioning.Preset{}, invalidf("", "unknown message convention %q", m.MessageConvention)
		}
		preset.Convention = c
	}
	if m.IncrementMode != "" {
		mode, err := versioning.ParseIncrementMode(m.IncrementMode)
		if err != nil {
			return versioning.Preset{}, err
		}
		preset.IncrementMode = mode
	}
	return preset, nil
}

// Retention returns the cache retention, DefaultCacheRetention when unset.
func (c *Config) Retention() (time.Duration, error) {
	if c.Cache.Retention == "" {
		return DefaultCacheRetention, nil
	}
	d, err := time.ParseDuration(c.Cache.Retention)
	if err != nil {
		return 0, errInvalid(c.Path, err, "invalid cache retention %q", c.Cache.Retention)
	}
	return d, nil
}

// Validate checks the values the schema cannot express and compiles the
// branch globs.
func (c *Config) Validate() error {
	if c.StartVersion != "" {
		if _, err := semver.NewVersion(c.StartVersion); err != nil {
			return errInvalid(c.Path, err, "invalid start version %q", c.StartVersion)
		}
	}
	if _, err := c.VersioningMode.Resolve(); err != nil {
		return errInvalid(c.Path, err, "invalid versioning mode")
	}
	if _, err := c.Retention(); err != nil {
		return err
	}

	c.branchGlobs = make([]glob.Glob, len(c.Branches))
	for i, bc := range c.Branches {
		if bc.Branch == "" {
			return invalidf(c.Path, "branch case %d has no branch pattern", i)
		}
		g, err := glob.Compile(bc.Branch, '/')
		if err != nil {
			return errInvalid(c.Path, err, "invalid branch pattern %q", bc.Branch)
		}
		c.branchGlobs[i] = g
		if bc.VersioningMode != nil {
			if _, err := bc.VersioningMode.Resolve(); err != nil {
				return errInvalid(c.Path, err, "invalid versioning mode for branch %q", bc.Branch)
			}
		}
	}
	return nil
}

// BranchCase returns the first case matching branch.
func (c *Config) BranchCase(branch string) (*BranchCase, bool) {
	if len(c.branchGlobs) != len(c.Branches) {
		if err := c.Validate(); err != nil {
			return nil, false
		}
	}
	for i, g := range c.branchGlobs {
		if g.Match(branch) {
			return &c.Branches[i], true
		}
	}
	return nil, false
}

// VersioningOptions returns the calculation options for branch, with the
// first matching branch case laid over the top-level settings.
func (c *Config) VersioningOptions(branch string) (versioning.Options, error) {
	mode := c.VersioningMode
	preRelease := c.PreRelease
	searchPreRelease := c.SearchPreRelease
	if bc, ok := c.BranchCase(branch); ok {
		if bc.VersioningMode != nil {
			mode = *bc.VersioningMode
		}
		if bc.PreRelease != nil {
			preRelease = bc.PreRelease
		}
		if bc.SearchPreRelease != nil {
			searchPreRelease = bc.SearchPreRelease
		}
	}

	preset, err := mode.Resolve()
	if err != nil {
		return versioning.Options{}, errInvalid(c.Path, err, "invalid versioning mode")
	}
	opts := versioning.Options{
		Preset:           preset,
		PreRelease:       preRelease,
		SearchPreRelease: searchPreRelease,
	}
	if c.StartVersion != "" {
		v, err := semver.NewVersion(c.StartVersion)
		if err != nil {
			return versioning.Options{}, errInvalid(c.Path, err, "invalid start version %q", c.StartVersion)
		}
		opts.StartVersion = v
	}
	return opts, nil
}

// ResolveGitDirectory makes GitDirectory absolute against base.
func (c *Config) ResolveGitDirectory(base string) {
	switch {
	case c.GitDirectory == "":
		c.GitDirectory = base
	case !filepath.IsAbs(c.GitDirectory):
		c.GitDirectory = filepath.Join(base, c.GitDirectory)
	}
}
