// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package git

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
	// logFormat: sha, committer time, raw body.
	logFormat = "--format=%H%x1f%ct%x1f%B%x1e"
)

// CLIRepository reads a repository through the git executable.
type CLIRepository struct {
	runner  Runner
	workDir string
	gitDir  string
}

var _ Repository = (*CLIRepository)(nil)

// Open locates the repository containing dir.
func Open(ctx context.Context, runner Runner, dir string) (*CLIRepository, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, ErrNotRepository(dir, err)
	}
	out, err := runner.Run(ctx, abs, "rev-parse", "--absolute-git-dir", "--show-toplevel")
	if err != nil {
		return nil, ErrNotRepository(abs, err)
	}
	lines := splitLines(out)
	if len(lines) < 1 {
		return nil, ErrNotRepository(abs, errors.New("rev-parse printed nothing"))
	}
	workDir := abs
	if len(lines) > 1 {
		workDir = lines[1]
	}
	return &CLIRepository{runner: runner, workDir: workDir, gitDir: lines[0]}, nil
}

// GitDirectory returns the absolute .git directory.
func (r *CLIRepository) GitDirectory() string {
	return r.gitDir
}

// WorkingDirectory returns the top-level directory of the working tree.
func (r *CLIRepository) WorkingDirectory() string {
	return r.workDir
}

// ActiveBranch returns the checked out branch.
func (r *CLIRepository) ActiveBranch(ctx context.Context) (Branch, error) {
	sha, err := r.git(ctx, "rev-parse", "HEAD")
	if err != nil {
		return Branch{}, ErrNoHead(r.gitDir)
	}
	name, err := r.git(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return Branch{}, err
	}
	name = strings.TrimSpace(name)
	return Branch{
		Name:     name,
		Sha:      strings.TrimSpace(sha),
		Detached: name == "HEAD",
	}, nil
}

// HeadCommit returns the commit HEAD points to.
func (r *CLIRepository) HeadCommit(ctx context.Context) (Commit, error) {
	out, err := r.git(ctx, "log", "-1", logFormat, "HEAD")
	if err != nil {
		return Commit{}, ErrNoHead(r.gitDir)
	}
	commits := parseLog(out)
	if len(commits) == 0 {
		return Commit{}, ErrNoHead(r.gitDir)
	}
	return commits[0], nil
}

// Tags returns every tag; annotated tags are peeled to their commit.
func (r *CLIRepository) Tags(ctx context.Context) ([]Tag, error) {
	out, err := r.git(ctx, "for-each-ref",
		"--format=%(refname:short)%1f%(objectname)%1f%(*objectname)", "refs/tags")
	if err != nil {
		return nil, err
	}

	merged, err := r.git(ctx, "tag", "--merged", "HEAD")
	if err != nil {
		return nil, err
	}
	reachable := make(map[string]bool)
	for _, name := range splitLines(merged) {
		reachable[name] = true
	}

	var tags []Tag
	for _, line := range splitLines(out) {
		fields := strings.Split(line, fieldSep)
		if len(fields) < 2 {
			continue
		}
		sha := fields[1]
		if len(fields) > 2 && fields[2] != "" {
			sha = fields[2]
		}
		tags = append(tags, Tag{Name: fields[0], Sha: sha, Reachable: reachable[fields[0]]})
	}
	return tags, nil
}

// CommitsSince returns commits in sha..HEAD, oldest first.
func (r *CLIRepository) CommitsSince(ctx context.Context, sha string) ([]Commit, error) {
	rng := "HEAD"
	if sha != "" {
		rng = sha + "..HEAD"
	}
	out, err := r.git(ctx, "log", "--reverse", logFormat, rng)
	if err != nil {
		return nil, err
	}
	return parseLog(out), nil
}

func (r *CLIRepository) git(ctx context.Context, args ...string) (string, error) {
	return r.runner.Run(ctx, r.workDir, args...)
}

func parseLog(out string) []Commit {
	var commits []Commit
	for _, record := range strings.Split(out, recordSep) {
		record = strings.TrimLeft(record, "\r\n")
		if record == "" {
			continue
		}
		fields := strings.SplitN(record, fieldSep, 3)
		if len(fields) < 3 {
			continue
		}
		commit := Commit{
			Sha:     fields[0],
			Message: strings.TrimRight(fields[2], "\r\n"),
		}
		if secs, err := strconv.ParseInt(fields[1], 10, 64); err == nil {
			commit.When = time.Unix(secs, 0).UTC()
		}
		commits = append(commits, commit)
	}
	return commits
}

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
