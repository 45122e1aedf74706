// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

// Package events is the typed publish/subscribe bus plugins use to
// coordinate one command run.
//
// A channel is either recurring (Every) or single-shot (Next). Firing a
// channel visits its subscribers in registration order: unschedulable
// subscribers run inline, schedulable ones are appended to the run's
// emission Context and executed when the context is drained. Once a context
// is completing, schedulable subscribers are skipped and only inline
// subscribers observe emissions.
//
// Dispatch is single-threaded. A Context and the channels fired against it
// belong to one goroutine; none of the types here are safe for concurrent
// use.
//
//	parsed := events.NewNext[[]string]("commandline.parsed")
//	parsed.Subscribe(func(args []string) error {
//		return nil
//	}, events.Unschedulable())
//
//	ec := events.NewContext()
//	if err := parsed.Fire(ec, os.Args[1:]); err != nil {
//		return err
//	}
//	return ec.Drain()
package events
