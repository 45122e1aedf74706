// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package git

import (
	"context"
	"fmt"
	"time"
)

// MemoryRepository is an in-memory linear history for testing.
type MemoryRepository struct {
	gitDir  string
	branch  string
	commits []Commit
	tags    []Tag
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty repository on branch.
func NewMemoryRepository(gitDir, branch string) *MemoryRepository {
	return &MemoryRepository{gitDir: gitDir, branch: branch}
}

// Commit appends a commit with message and returns its sha.
func (m *MemoryRepository) Commit(message string) string {
	sha := fmt.Sprintf("%040x", len(m.commits)+1)
	m.commits = append(m.commits, Commit{
		Sha:     sha,
		Message: message,
		When:    time.Unix(int64(1700000000+len(m.commits)*60), 0).UTC(),
	})
	return sha
}

// Tag tags the current head commit.
func (m *MemoryRepository) Tag(name string) {
	if len(m.commits) == 0 {
		return
	}
	m.tags = append(m.tags, Tag{Name: name, Sha: m.commits[len(m.commits)-1].Sha, Reachable: true})
}

// TagUnreachable adds a tag pointing outside the history of HEAD.
func (m *MemoryRepository) TagUnreachable(name, sha string) {
	m.tags = append(m.tags, Tag{Name: name, Sha: sha})
}

// Checkout switches the branch name.
func (m *MemoryRepository) Checkout(branch string) {
	m.branch = branch
}

// GitDirectory returns the configured git directory.
func (m *MemoryRepository) GitDirectory() string {
	return m.gitDir
}

// ActiveBranch returns the current branch.
func (m *MemoryRepository) ActiveBranch(ctx context.Context) (Branch, error) {
	head, err := m.HeadCommit(ctx)
	if err != nil {
		return Branch{}, err
	}
	return Branch{Name: m.branch, Sha: head.Sha}, nil
}

// HeadCommit returns the last commit.
func (m *MemoryRepository) HeadCommit(_ context.Context) (Commit, error) {
	if len(m.commits) == 0 {
		return Commit{}, ErrNoHead(m.gitDir)
	}
	return m.commits[len(m.commits)-1], nil
}

// Tags returns a copy of the tags.
func (m *MemoryRepository) Tags(_ context.Context) ([]Tag, error) {
	out := make([]Tag, len(m.tags))
	copy(out, m.tags)
	return out, nil
}

// CommitsSince returns the commits after sha, oldest first.
func (m *MemoryRepository) CommitsSince(_ context.Context, sha string) ([]Commit, error) {
	start := 0
	if sha != "" {
		for i, c := range m.commits {
			if c.Sha == sha {
				start = i + 1
				break
			}
		}
	}
	out := make([]Commit, len(m.commits)-start)
	copy(out, m.commits[start:])
	return out, nil
}
