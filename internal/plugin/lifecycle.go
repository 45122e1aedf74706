// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package plugin

import (
	"github.com/oklog/ulid/v2"

	"github.com/vernuntii/vernuntii/internal/events"
)

// RunInfo is the payload of BeforeEveryRun.
type RunInfo struct {
	ID   ulid.ULID
	Args []string
}

// Invocation is the payload of InvokeCommand. The handler of the selected
// command stores its exit code here.
type Invocation struct {
	ExitCode int
	invoked  bool
}

// SetExitCode records the exit code of the invoked command.
func (i *Invocation) SetExitCode(code int) {
	i.ExitCode = code
	i.invoked = true
}

// Invoked reports whether a command handler recorded an outcome.
func (i *Invocation) Invoked() bool {
	return i.invoked
}

// RunResult is the payload of AfterEveryRun.
type RunResult struct {
	ExitCode int
}

// Lifecycle holds the channels the host fires during a run, in firing order.
type Lifecycle struct {
	BeforeEveryRun       *events.Every[RunInfo]
	ParseCommandLineArgs *events.Next[[]string]
	InvokeCommand        *events.Next[*Invocation]
	AfterEveryRun        *events.Every[RunResult]
}

// NewLifecycle creates a fresh set of lifecycle channels.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{
		BeforeEveryRun:       events.NewEvery[RunInfo]("lifecycle.before-every-run"),
		ParseCommandLineArgs: events.NewNext[[]string]("lifecycle.parse-command-line-args"),
		InvokeCommand:        events.NewNext[*Invocation]("lifecycle.invoke-command"),
		AfterEveryRun:        events.NewEvery[RunResult]("lifecycle.after-every-run"),
	}
}
