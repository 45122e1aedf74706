// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package plugin

import (
	"github.com/oklog/ulid/v2"

	"github.com/vernuntii/vernuntii/internal/events"
)

// Run is handed to every Executor at the start of a run.
type Run struct {
	ID        ulid.ULID
	Bus       *events.Bus
	Registry  *Registry
	Lifecycle *Lifecycle
}
