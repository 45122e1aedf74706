// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

// Package versioning calculates the next semantic version from the tags and
// commit messages of a repository.
package versioning

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"

	"github.com/vernuntii/vernuntii/internal/git"
	"github.com/vernuntii/vernuntii/internal/versioning/convention"
)

// DefaultStartVersion is used when no tag qualifies as start version.
const DefaultStartVersion = "0.1.0-alpha"

// BranchPlaceholder in a pre-release is replaced by the sanitized branch name.
const BranchPlaceholder = "{branch}"

// Options controls one calculation.
type Options struct {
	Preset Preset
	// StartVersion is used when no reachable tag qualifies. Nil means
	// DefaultStartVersion.
	StartVersion *semver.Version
	// PreRelease of the next version. Nil keeps the pre-release of the
	// start version; an empty string asks for a release.
	PreRelease *string
	// SearchPreRelease selects which pre-release tags qualify as start
	// version next to release tags. Nil means the target pre-release.
	SearchPreRelease *string
}

// Result is the outcome of a calculation.
type Result struct {
	Version      *semver.Version
	StartVersion *semver.Version
	// StartTag is the tag the calculation started from, empty when none.
	StartTag  string
	Branch    string
	CommitSha string
	// Height is the number of commits since the last core change, zero when
	// no height is written.
	Height  uint64
	Commits int
	Preset  string
}

type versionCore struct {
	major, minor, patch uint64
}

func coreOf(v *semver.Version) versionCore {
	return versionCore{v.Major(), v.Minor(), v.Patch()}
}

// bump increments level. An unreleased core absorbs increments it already
// contains: a patch never moves it, a minor only when the patch is set and
// a major only when minor or patch is set.
func (c versionCore) bump(level convention.Level, unreleased bool) versionCore {
	switch level {
	case convention.Major:
		if unreleased && c.minor == 0 && c.patch == 0 {
			return c
		}
		return versionCore{c.major + 1, 0, 0}
	case convention.Minor:
		if unreleased && c.patch == 0 {
			return c
		}
		return versionCore{c.major, c.minor + 1, 0}
	case convention.Patch:
		if unreleased {
			return c
		}
		return versionCore{c.major, c.minor, c.patch + 1}
	default:
		return c
	}
}

// gate tracks which increments the mode still allows.
type gate struct {
	mode    IncrementMode
	highest convention.Level
	applied map[convention.Level]bool
}

func (g *gate) allow(level convention.Level) bool {
	switch g.mode {
	case IncrementConsecutive:
		return true
	case IncrementSuccessive:
		if g.applied[level] {
			return false
		}
		g.applied[level] = true
		for lower := convention.Patch; lower < level; lower++ {
			g.applied[lower] = false
		}
		return true
	default:
		if level <= g.highest {
			return false
		}
		g.highest = level
		return true
	}
}

// Calculate computes the next version of repo.
func Calculate(ctx context.Context, repo git.Repository, opts Options) (*Result, error) {
	preset := opts.Preset
	if preset.Convention == nil {
		p, err := LookupPreset(PresetDefault)
		if err != nil {
			return nil, err
		}
		preset = p
	}

	branch, err := repo.ActiveBranch(ctx)
	if err != nil {
		return nil, err
	}

	configuredStart := opts.StartVersion
	if configuredStart == nil {
		configuredStart = semver.MustParse(DefaultStartVersion)
	}

	target := baseOf(configuredStart.Prerelease())
	if opts.PreRelease != nil {
		target = ExpandPreRelease(*opts.PreRelease, branch.Name)
	}
	search := target
	if opts.SearchPreRelease != nil {
		search = ExpandPreRelease(*opts.SearchPreRelease, branch.Name)
	}

	tags, err := repo.Tags(ctx)
	if err != nil {
		return nil, err
	}
	start, startTag := latestTag(tags, search)
	sinceSha := ""
	if startTag != nil {
		sinceSha = startTag.Sha
	} else {
		start = configuredStart
	}
	if opts.PreRelease == nil && startTag != nil {
		// Without an explicit pre-release the start version decides.
		target = baseOf(start.Prerelease())
	}

	commits, err := repo.CommitsSince(ctx, sinceSha)
	if err != nil {
		return nil, err
	}

	startCore := coreOf(start)
	released := startTag != nil && start.Prerelease() == ""

	var height uint64
	if base, h, ok := SplitHeight(start.Prerelease()); ok && base == target && preset.HeightPosition == HeightInPreRelease {
		height = h
	} else if preset.HeightPosition == HeightInBuild {
		if h, err := strconv.ParseUint(start.Metadata(), 10, 64); err == nil {
			height = h
		}
	}

	g := &gate{mode: preset.IncrementMode, applied: make(map[convention.Level]bool)}
	current := startCore
	for _, commit := range commits {
		level := preset.Convention.Classify(commit.Message)
		if level != convention.None && g.allow(level) {
			next := current.bump(level, !released && current == startCore)
			if next != current {
				current = next
				height = 0
				continue
			}
		}
		height++
	}

	if len(commits) == 0 {
		return &Result{
			Version:      start,
			StartVersion: start,
			StartTag:     tagName(startTag),
			Branch:       branch.Name,
			CommitSha:    branch.Sha,
			Preset:       preset.Name,
		}, nil
	}

	if released && current == startCore {
		current = current.bump(convention.Patch, false)
	}

	version, err := assemble(current, target, height, preset.HeightPosition)
	if err != nil {
		return nil, err
	}
	if target == "" && preset.HeightPosition == HeightInPreRelease {
		height = 0
	}

	return &Result{
		Version:      version,
		StartVersion: start,
		StartTag:     tagName(startTag),
		Branch:       branch.Name,
		CommitSha:    branch.Sha,
		Height:       height,
		Commits:      len(commits),
		Preset:       preset.Name,
	}, nil
}

func assemble(c versionCore, preRelease string, height uint64, position HeightPosition) (*semver.Version, error) {
	raw := fmt.Sprintf("%d.%d.%d", c.major, c.minor, c.patch)
	switch {
	case position == HeightInBuild:
		if preRelease != "" {
			raw += "-" + preRelease
		}
		if height > 0 {
			raw += "+" + strconv.FormatUint(height, 10)
		}
	case preRelease != "":
		raw += "-" + preRelease
		if height > 0 {
			raw += "." + strconv.FormatUint(height, 10)
		}
	}

	v, err := semver.StrictNewVersion(raw)
	if err != nil {
		return nil, oops.In("versioning").
			Code(CodeInvalidVersion).
			With("version", raw).
			Wrapf(err, "calculated version %s is not a valid semantic version", raw)
	}
	return v, nil
}

// latestTag returns the highest reachable tag that is a release or carries
// the searched pre-release.
func latestTag(tags []git.Tag, search string) (*semver.Version, *git.Tag) {
	var (
		best    *semver.Version
		bestTag *git.Tag
	)
	for i := range tags {
		tag := &tags[i]
		if !tag.Reachable {
			continue
		}
		v, err := semver.NewVersion(tag.Name)
		if err != nil {
			continue
		}
		if pre := v.Prerelease(); pre != "" && (search == "" || baseOf(pre) != search) {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best, bestTag = v, tag
		}
	}
	return best, bestTag
}

// VersionExists reports whether any tag names v.
func VersionExists(tags []git.Tag, v *semver.Version) bool {
	for _, tag := range tags {
		tv, err := semver.NewVersion(tag.Name)
		if err == nil && tv.Equal(v) && tv.Metadata() == v.Metadata() {
			return true
		}
	}
	return false
}

// SplitHeight splits a trailing numeric identifier off a pre-release:
// "alpha.3" yields ("alpha", 3, true). A lone identifier has no height.
func SplitHeight(preRelease string) (string, uint64, bool) {
	idx := strings.LastIndex(preRelease, ".")
	if idx < 0 {
		return preRelease, 0, false
	}
	h, err := strconv.ParseUint(preRelease[idx+1:], 10, 64)
	if err != nil {
		return preRelease, 0, false
	}
	return preRelease[:idx], h, true
}

func baseOf(preRelease string) string {
	base, _, _ := SplitHeight(preRelease)
	return base
}

var invalidIdentifierChars = regexp.MustCompile(`[^0-9A-Za-z.-]+`)

// SanitizeBranch turns a branch name into pre-release identifiers.
func SanitizeBranch(branch string) string {
	s := invalidIdentifierChars.ReplaceAllString(branch, "-")
	s = strings.Trim(s, ".-")
	for strings.Contains(s, "..") {
		s = strings.ReplaceAll(s, "..", ".")
	}
	return s
}

// ExpandPreRelease substitutes BranchPlaceholder with the sanitized branch.
func ExpandPreRelease(preRelease, branch string) string {
	if !strings.Contains(preRelease, BranchPlaceholder) {
		return preRelease
	}
	return strings.ReplaceAll(preRelease, BranchPlaceholder, SanitizeBranch(branch))
}

func tagName(tag *git.Tag) string {
	if tag == nil {
		return ""
	}
	return tag.Name
}
