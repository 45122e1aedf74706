// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package plugin

import (
	"context"
	"log/slog"
	"reflect"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vernuntii/vernuntii/internal/events"
	"github.com/vernuntii/vernuntii/pkg/errutil"
)

// Host drives exactly one command run over the registered plugins.
type Host struct {
	registry  *Registry
	lifecycle *Lifecycle
	tracer    trace.Tracer
	exitCodes errutil.ExitCodes
	ran       bool
}

// HostOption configures the Host.
type HostOption func(*Host)

// WithRegistry makes the host run over r instead of a fresh registry.
func WithRegistry(r *Registry) HostOption {
	return func(h *Host) {
		h.registry = r
	}
}

// WithTracer sets the tracer used for lifecycle spans.
func WithTracer(t trace.Tracer) HostOption {
	return func(h *Host) {
		h.tracer = t
	}
}

// WithExitCode maps an error code to a process exit code.
func WithExitCode(code string, exit int) HostOption {
	return func(h *Host) {
		h.exitCodes[code] = exit
	}
}

// NewHost creates a host.
func NewHost(opts ...HostOption) *Host {
	h := &Host{
		lifecycle: NewLifecycle(),
		exitCodes: errutil.ExitCodes{
			CodeUnmetDependency: errutil.ExitUnmetDependency,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.registry == nil {
		h.registry = NewRegistry()
	}
	if h.tracer == nil {
		h.tracer = otel.Tracer("vernuntii/plugin")
	}
	return h
}

// Registry returns the registry plugins are registered with.
func (h *Host) Registry() *Registry {
	return h.registry
}

// Lifecycle returns the lifecycle channels of the run.
func (h *Host) Lifecycle() *Lifecycle {
	return h.lifecycle
}

// Add registers p under capability T.
func Add[T any](ctx context.Context, h *Host, p Plugin) *Task {
	return Register[T](ctx, h.registry, p)
}

// Run awaits all registrations, lets every Executor subscribe, fires the
// lifecycle channels in order and completes. It returns the exit code of
// the run; a non-nil error is already mapped into the exit code.
func (h *Host) Run(ctx context.Context, args []string) (int, error) {
	if h.ran {
		return errutil.ExitFailure, ErrRunStarted()
	}
	h.ran = true

	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		h.registry.Complete()
	}()

	code, err := h.run(ctx, args)
	if err != nil {
		return errutil.ExitCode(err, h.exitCodes), err
	}
	return code, nil
}

func (h *Host) run(ctx context.Context, args []string) (int, error) {
	for _, task := range h.registry.Tasks() {
		if _, err := task.Await(ctx); err != nil {
			return errutil.ExitFailure, err
		}
	}

	ec := events.NewContext()
	run := &Run{
		ID:        ec.ID(),
		Bus:       events.NewBus(ec),
		Registry:  h.registry,
		Lifecycle: h.lifecycle,
	}

	ctx, span := h.tracer.Start(ctx, "plugin.run",
		trace.WithAttributes(attribute.String("run.id", run.ID.String())))
	defer span.End()

	slog.DebugContext(ctx, "starting run", "run", run.ID.String(), "args", args)

	if err := h.execute(ctx, run); err != nil {
		return h.fail(span, err)
	}

	lc := h.lifecycle
	if err := h.step(ctx, ec, lc.BeforeEveryRun.Name(), func() error {
		return lc.BeforeEveryRun.Fire(ec, RunInfo{ID: run.ID, Args: args})
	}); err != nil {
		return h.fail(span, err)
	}

	if err := h.step(ctx, ec, lc.ParseCommandLineArgs.Name(), func() error {
		return lc.ParseCommandLineArgs.Fire(ec, args)
	}); err != nil {
		return h.fail(span, err)
	}

	invocation := &Invocation{}
	if err := h.step(ctx, ec, lc.InvokeCommand.Name(), func() error {
		return lc.InvokeCommand.Fire(ec, invocation)
	}); err != nil {
		return h.fail(span, err)
	}

	if err := h.step(ctx, ec, lc.AfterEveryRun.Name(), func() error {
		return lc.AfterEveryRun.Fire(ec, RunResult{ExitCode: invocation.ExitCode})
	}); err != nil {
		return h.fail(span, err)
	}

	ec.BeginCompleting()
	if err := h.registry.Close(); err != nil {
		return h.fail(span, err)
	}
	if err := ec.Drain(); err != nil {
		return h.fail(span, err)
	}

	span.SetAttributes(attribute.Int("run.exit_code", invocation.ExitCode))
	slog.DebugContext(ctx, "run completed", "run", run.ID.String(), "exit_code", invocation.ExitCode)
	return invocation.ExitCode, nil
}

// execute calls OnExecution once per plugin in registration order.
func (h *Host) execute(ctx context.Context, run *Run) error {
	seen := make(map[any]bool)
	for _, reg := range h.registry.Registrations() {
		if v := reflect.ValueOf(reg.Plugin); v.Comparable() {
			if seen[reg.Plugin] {
				continue
			}
			seen[reg.Plugin] = true
		}
		ex, ok := reg.Plugin.(Executor)
		if !ok {
			continue
		}
		if err := ex.OnExecution(ctx, run); err != nil {
			return ErrExecutionFailed(reg.Plugin.Name(), err)
		}
	}
	return nil
}

// step fires one lifecycle channel and drains the context inside a span.
func (h *Host) step(ctx context.Context, ec *events.Context, name string, fire func() error) error {
	_, span := h.tracer.Start(ctx, name)
	defer span.End()

	err := fire()
	if err == nil {
		err = ec.Drain()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (h *Host) fail(span trace.Span, err error) (int, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return errutil.ExitFailure, err
}
