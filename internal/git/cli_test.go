// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package git_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vernuntii/vernuntii/internal/git"
	"github.com/vernuntii/vernuntii/pkg/errutil"
)

// scriptedRunner answers git invocations from a table keyed by the joined args.
type scriptedRunner struct {
	responses map[string]string
	calls     []string
}

func (s *scriptedRunner) Run(_ context.Context, _ string, args ...string) (string, error) {
	key := strings.Join(args, " ")
	s.calls = append(s.calls, key)
	out, ok := s.responses[key]
	if !ok {
		return "", errors.New("unexpected git " + key)
	}
	return out, nil
}

func TestOpen_ResolvesDirectories(t *testing.T) {
	runner := &scriptedRunner{responses: map[string]string{
		"rev-parse --absolute-git-dir --show-toplevel": "/repo/.git\n/repo\n",
	}}

	repo, err := git.Open(context.Background(), runner, "/repo/sub")
	require.NoError(t, err)
	assert.Equal(t, "/repo/.git", repo.GitDirectory())
	assert.Equal(t, "/repo", repo.WorkingDirectory())
}

func TestOpen_NotARepository(t *testing.T) {
	runner := &scriptedRunner{responses: map[string]string{}}

	_, err := git.Open(context.Background(), runner, t.TempDir())
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, git.CodeNotRepository)
}

func TestCLIRepository_ParsesLogAndTags(t *testing.T) {
	runner := &scriptedRunner{responses: map[string]string{
		"rev-parse --absolute-git-dir --show-toplevel":                                      "/repo/.git\n/repo\n",
		"log --reverse --format=%H%x1f%ct%x1f%B%x1e aaa..HEAD":                              "bbb\x1f1700000000\x1ffeat: add x\n\nbody\n\x1e\nccc\x1f1700000060\x1ffix: y\n\x1e\n",
		"for-each-ref --format=%(refname:short)%1f%(objectname)%1f%(*objectname) refs/tags": "v1.0.0\x1faaa\x1f\nv1.1.0\x1ftagobj\x1fbbb\nv9.0.0\x1fzzz\x1f\n",
		"tag --merged HEAD":           "v1.0.0\nv1.1.0\n",
		"rev-parse HEAD":              "ccc\n",
		"rev-parse --abbrev-ref HEAD": "feature/x\n",
	}}
	repo, err := git.Open(context.Background(), runner, "/repo")
	require.NoError(t, err)
	ctx := context.Background()

	commits, err := repo.CommitsSince(ctx, "aaa")
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "bbb", commits[0].Sha)
	assert.Equal(t, "feat: add x\n\nbody", commits[0].Message)
	assert.Equal(t, "feat: add x", commits[0].Subject())
	assert.Equal(t, int64(1700000060), commits[1].When.Unix())

	tags, err := repo.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []git.Tag{
		{Name: "v1.0.0", Sha: "aaa", Reachable: true},
		{Name: "v1.1.0", Sha: "bbb", Reachable: true},
		{Name: "v9.0.0", Sha: "zzz", Reachable: false},
	}, tags)

	branch, err := repo.ActiveBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, git.Branch{Name: "feature/x", Sha: "ccc"}, branch)
}

func TestCLIRepository_RealGit(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	t.Setenv("GIT_AUTHOR_NAME", "test")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "test")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@example.com")
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("HOME", dir)

	ctx := context.Background()
	runner := &git.ExecRunner{}
	run := func(args ...string) {
		t.Helper()
		_, err := runner.Run(ctx, dir, args...)
		require.NoError(t, err)
	}

	run("init", "-q", "-b", "main")
	require.NoError(t, os.WriteFile(dir+"/a.txt", []byte("a"), 0o600))
	run("add", "a.txt")
	run("commit", "-q", "-m", "feat: initial")
	run("tag", "-a", "v0.1.0", "-m", "release")
	run("commit", "-q", "--allow-empty", "-m", "fix: second\n\nBREAKING CHANGE: nope")

	repo, err := git.Open(ctx, runner, dir)
	require.NoError(t, err)

	branch, err := repo.ActiveBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "main", branch.Name)

	tags, err := repo.Tags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.True(t, tags[0].Reachable)

	commits, err := repo.CommitsSince(ctx, tags[0].Sha)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "fix: second", commits[0].Subject())
	assert.Contains(t, commits[0].Message, "BREAKING CHANGE: nope")

	head, err := repo.HeadCommit(ctx)
	require.NoError(t, err)
	assert.Equal(t, branch.Sha, head.Sha)
}
