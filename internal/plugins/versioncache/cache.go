// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package versioncache

import (
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"
	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"

	"github.com/vernuntii/vernuntii/internal/plugins/configuration"
	"github.com/vernuntii/vernuntii/internal/versioning"
	"github.com/vernuntii/vernuntii/internal/xdg"
)

// Entry is one cached calculation.
type Entry struct {
	Version           string    `yaml:"version"`
	StartVersion      string    `yaml:"startVersion"`
	StartTag          string    `yaml:"startTag,omitempty"`
	Branch            string    `yaml:"branch"`
	CommitSha         string    `yaml:"commitSha"`
	Height            uint64    `yaml:"height"`
	Commits           int       `yaml:"commits"`
	Preset            string    `yaml:"preset"`
	ConfigFingerprint string    `yaml:"configFingerprint"`
	CreatedAt         time.Time `yaml:"createdAt"`
}

// Result rebuilds the calculation result.
func (e *Entry) Result() (*versioning.Result, error) {
	v, err := semver.StrictNewVersion(e.Version)
	if err != nil {
		return nil, oops.In("versioncache").With("version", e.Version).Wrapf(err, "cached version")
	}
	start, err := semver.NewVersion(e.StartVersion)
	if err != nil {
		return nil, oops.In("versioncache").With("start_version", e.StartVersion).Wrapf(err, "cached start version")
	}
	return &versioning.Result{
		Version:      v,
		StartVersion: start,
		StartTag:     e.StartTag,
		Branch:       e.Branch,
		CommitSha:    e.CommitSha,
		Height:       e.Height,
		Commits:      e.Commits,
		Preset:       e.Preset,
	}, nil
}

func newEntry(r *versioning.Result, fingerprint string, now time.Time) *Entry {
	return &Entry{
		Version:           r.Version.String(),
		StartVersion:      r.StartVersion.String(),
		StartTag:          r.StartTag,
		Branch:            r.Branch,
		CommitSha:         r.CommitSha,
		Height:            r.Height,
		Commits:           r.Commits,
		Preset:            r.Preset,
		ConfigFingerprint: fingerprint,
		CreatedAt:         now.UTC(),
	}
}

// ID derives the cache id of a repository and configuration path.
func ID(gitDirectory, configPath string) string {
	h := blake3.New()
	_, _ = h.Write([]byte(gitDirectory))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(configPath))
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint hashes the configuration file. No file yields "".
func Fingerprint(configPath string) (string, error) {
	if configPath == "" {
		return "", nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", oops.In("versioncache").With("path", configPath).Wrapf(err, "fingerprint configuration")
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// SettingsFingerprint hashes the configuration file together with the
// settings command-line flags can override and the active branch.
func SettingsFingerprint(cfg *configuration.Config, branch string) (string, error) {
	file, err := Fingerprint(cfg.Path)
	if err != nil {
		return "", err
	}
	h := blake3.New()
	for _, part := range []string{
		file,
		branch,
		cfg.GitDirectory,
		cfg.StartVersion,
		cfg.VersioningMode.Preset,
		cfg.VersioningMode.MessageConvention,
		cfg.VersioningMode.IncrementMode,
		optional(cfg.PreRelease),
		optional(cfg.SearchPreRelease),
	} {
		_, _ = h.Write([]byte(part))
		_, _ = h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// optional keeps an unset value apart from an empty one.
func optional(s *string) string {
	if s == nil {
		return ""
	}
	return "=" + *s
}

// Store keeps cache entries as YAML files in one directory.
type Store struct {
	dir string
}

// DefaultDir is the store directory below the user cache directory.
func DefaultDir() (string, error) {
	base, err := xdg.CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "version-cache"), nil
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".yml")
}

// Load reads the entry with id. A missing entry yields nil.
func (s *Store) Load(id string) (*Entry, error) {
	data, err := os.ReadFile(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.In("versioncache").With("id", id).Wrapf(err, "read cache entry")
	}
	var e Entry
	if err := yaml.Unmarshal(data, &e); err != nil {
		return nil, oops.In("versioncache").With("id", id).Wrapf(err, "decode cache entry")
	}
	return &e, nil
}

// Save writes the entry with id through a temporary file so readers never
// see a partial entry.
func (s *Store) Save(id string, e *Entry) error {
	if err := xdg.EnsureDir(s.dir); err != nil {
		return err
	}
	data, err := yaml.Marshal(e)
	if err != nil {
		return oops.In("versioncache").With("id", id).Wrapf(err, "encode cache entry")
	}

	tmp, err := os.CreateTemp(s.dir, id+".*.tmp")
	if err != nil {
		return oops.In("versioncache").With("id", id).Wrapf(err, "create cache file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return oops.In("versioncache").With("id", id).Wrapf(err, "write cache file")
	}
	if err := tmp.Close(); err != nil {
		return oops.In("versioncache").With("id", id).Wrapf(err, "close cache file")
	}
	if err := os.Rename(tmp.Name(), s.path(id)); err != nil {
		return oops.In("versioncache").With("id", id).Wrapf(err, "replace cache file")
	}
	return nil
}

// Empty deletes every entry.
func (s *Store) Empty() error {
	if err := os.RemoveAll(s.dir); err != nil {
		return oops.In("versioncache").With("dir", s.dir).Wrapf(err, "empty caches")
	}
	return nil
}
