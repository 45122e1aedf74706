// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package plugin

import (
	"context"
	"log/slog"
	"reflect"
	"sync"

	"github.com/vernuntii/vernuntii/internal/events"
)

// completion is posted by a registration goroutine once Init returned.
type completion struct {
	task *Task
	err  error
}

// resolver is a pending lazy handle waiting for a matching registration.
type resolver interface {
	tryResolve(reg Registration) (bool, error)
	fail(err error)
	awaited() bool
	targetType() reflect.Type
}

// Registry holds the plugins registered for a run. All state is owned by
// one goroutine; registration goroutines only post completions, which are
// applied when the owner pumps the registry through Task.Await,
// Registry.Settle or Lazy.Await.
type Registry struct {
	ec            *events.Context
	registrations []Registration
	nextOrder     uint64
	tasks         []*Task
	pending       []resolver
	inflight      int
	completed     bool

	completions chan completion
	closed      chan struct{}
	closeOnce   sync.Once
	wg          sync.WaitGroup
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		ec:          events.NewContext(),
		completions: make(chan completion),
		closed:      make(chan struct{}),
	}
}

// RegisterAsync starts registering p under capability. When p implements
// Initializer, Init runs on its own goroutine and the registration is
// applied once its completion is pumped; otherwise it is applied right
// away. The returned task reports the outcome.
func (r *Registry) RegisterAsync(ctx context.Context, capability reflect.Type, p Plugin) *Task {
	task := &Task{registry: r, capability: capability, plugin: p}
	r.tasks = append(r.tasks, task)

	name := pluginName(p)
	switch {
	case r.completed:
		task.finish(Registration{}, ErrRegistryCompleted("register "+name))
		return task
	case !satisfies(p, capability):
		task.finish(Registration{}, ErrInvalidCapability(name, capability))
		return task
	}

	init, ok := p.(Initializer)
	if !ok {
		r.inflight++
		if err := r.apply(completion{task: task}); err != nil {
			task.err = err
		}
		return task
	}

	r.inflight++
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		err := init.Init(ctx)
		select {
		case r.completions <- completion{task: task, err: err}:
		case <-r.closed:
		}
	}()
	return task
}

// Register is the generic form of RegisterAsync using T as capability.
func Register[T any](ctx context.Context, r *Registry, p Plugin) *Task {
	return r.RegisterAsync(ctx, reflect.TypeFor[T](), p)
}

// Registrations returns the applied registrations in order.
func (r *Registry) Registrations() []Registration {
	out := make([]Registration, len(r.registrations))
	copy(out, r.registrations)
	return out
}

// Tasks returns every task started on this registry, in call order.
func (r *Registry) Tasks() []*Task {
	out := make([]*Task, len(r.tasks))
	copy(out, r.tasks)
	return out
}

// Inflight returns the number of registrations whose completion was not
// applied yet.
func (r *Registry) Inflight() int {
	return r.inflight
}

// Completed reports whether Complete was called.
func (r *Registry) Completed() bool {
	return r.completed
}

// Settle pumps completions until no registration is in flight.
func (r *Registry) Settle(ctx context.Context) error {
	for r.inflight > 0 {
		if err := r.pump(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Complete closes the registry. Pending lazy handles fail with
// UNMET_DEPENDENCY and later registrations are rejected. Registration
// goroutines still running are released; Complete waits for them to
// return, so callers must cancel the context passed to RegisterAsync
// first when Init may block.
func (r *Registry) Complete() {
	_ = r.Close()
	r.wg.Wait()
}

// Close is Complete without waiting for registration goroutines. It
// returns the UNMET_DEPENDENCY error of the first pending handle someone
// subscribed to through OnResolved or OnUnmet. Closing twice returns nil.
func (r *Registry) Close() error {
	if r.completed {
		return nil
	}
	r.completed = true
	r.closeOnce.Do(func() { close(r.closed) })

	pending := r.pending
	r.pending = nil
	var unmet error
	for _, l := range pending {
		slog.Debug("lazy plugin handle unresolved at completion",
			"capability", l.targetType().String(),
			"awaited", l.awaited())
		err := ErrUnmetDependency(l.targetType())
		l.fail(err)
		if unmet == nil && l.awaited() {
			unmet = err
		}
	}
	return unmet
}

// pump blocks until one completion arrives and applies it.
func (r *Registry) pump(ctx context.Context) error {
	if r.completed {
		return ErrRegistryCompleted("await registration")
	}
	select {
	case c := <-r.completions:
		return r.apply(c)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// apply records a completion on the owning goroutine. A successful
// registration resolves pending lazy handles in creation order.
func (r *Registry) apply(c completion) error {
	r.inflight--
	t := c.task
	name := pluginName(t.plugin)

	if c.err != nil {
		slog.Warn("plugin registration failed",
			"plugin", name,
			"capability", t.capability.String(),
			"error", c.err)
		t.finish(Registration{}, ErrRegistrationFailed(name, t.capability, c.err))
		return nil
	}

	r.nextOrder++
	reg := Registration{
		Capability: t.capability,
		Plugin:     t.plugin,
		Order:      r.nextOrder,
	}
	r.registrations = append(r.registrations, reg)
	t.finish(reg, nil)

	slog.Debug("plugin registered",
		"plugin", name,
		"capability", t.capability.String(),
		"order", reg.Order)

	return r.resolvePending(reg)
}

func (r *Registry) resolvePending(reg Registration) error {
	pending := r.pending
	r.pending = nil

	var kept []resolver
	var firstErr error
	for i, l := range pending {
		resolved, err := l.tryResolve(reg)
		if err != nil {
			// The remaining handles stay pending.
			kept = append(kept, pending[i+1:]...)
			firstErr = err
			break
		}
		if !resolved {
			kept = append(kept, l)
		}
	}

	// Handles created by resolution handlers were appended meanwhile.
	r.pending = append(kept, r.pending...)
	return firstErr
}

func (r *Registry) addPending(l resolver) {
	r.pending = append(r.pending, l)
}

func satisfies(p Plugin, capability reflect.Type) bool {
	if p == nil || capability == nil {
		return false
	}
	return reflect.TypeOf(p).AssignableTo(capability)
}

func pluginName(p Plugin) string {
	if p == nil {
		return "<nil>"
	}
	return p.Name()
}
