// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

// Package git reads the repository facts version calculation needs: the
// active branch, the head commit, tags and commit messages.
package git

import (
	"context"
	"strings"
	"time"
)

// Commit is a single commit of the history.
type Commit struct {
	Sha     string
	Message string
	When    time.Time
}

// Subject returns the first line of the commit message.
func (c Commit) Subject() string {
	subject, _, _ := strings.Cut(c.Message, "\n")
	return strings.TrimSpace(subject)
}

// Tag is a tag and the commit it points to.
type Tag struct {
	Name string
	Sha  string
	// Reachable reports whether the tagged commit is an ancestor of HEAD.
	Reachable bool
}

// Branch describes the checked out branch.
type Branch struct {
	// Name is the short branch name, or "HEAD" when detached.
	Name     string
	Sha      string
	Detached bool
}

// Repository is the read-only view of a git repository.
type Repository interface {
	// GitDirectory returns the absolute path of the .git directory.
	GitDirectory() string

	// ActiveBranch returns the checked out branch.
	ActiveBranch(ctx context.Context) (Branch, error)

	// HeadCommit returns the commit HEAD points to.
	HeadCommit(ctx context.Context) (Commit, error)

	// Tags returns every tag of the repository.
	Tags(ctx context.Context) ([]Tag, error)

	// CommitsSince returns the commits reachable from HEAD but not from sha,
	// oldest first. An empty sha returns the whole history of HEAD.
	CommitsSince(ctx context.Context, sha string) ([]Commit, error)
}
