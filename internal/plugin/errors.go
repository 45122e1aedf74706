// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package plugin

import (
	"reflect"

	"github.com/samber/oops"
)

// Error codes for registry and host operations.
const (
	CodeUnmetDependency    = "UNMET_DEPENDENCY"
	CodeRegistrationFailed = "REGISTRATION_FAILED"
	CodeInvalidCapability  = "INVALID_CAPABILITY"
	CodeRegistryCompleted  = "REGISTRY_COMPLETED"
	CodeExecutionFailed    = "EXECUTION_FAILED"
	CodeRunStarted         = "RUN_STARTED"
)

// ErrUnmetDependency creates an error for a lazy handle that was never resolved.
func ErrUnmetDependency(capability reflect.Type) error {
	return oops.In("plugin").
		Code(CodeUnmetDependency).
		With("capability", capability.String()).
		Hint("register a plugin providing the capability").
		Errorf("no plugin provides %s", capability)
}

// ErrRegistrationFailed wraps an Init failure.
func ErrRegistrationFailed(name string, capability reflect.Type, err error) error {
	return oops.In("plugin").
		Code(CodeRegistrationFailed).
		With("plugin", name).
		With("capability", capability.String()).
		Wrapf(err, "plugin %s failed to initialize", name)
}

// ErrInvalidCapability creates an error for a plugin that does not satisfy
// the capability it is registered under.
func ErrInvalidCapability(name string, capability reflect.Type) error {
	return oops.In("plugin").
		Code(CodeInvalidCapability).
		With("plugin", name).
		With("capability", fmtType(capability)).
		Errorf("plugin %s cannot be registered as %s", name, fmtType(capability))
}

// ErrRegistryCompleted creates an error for operations on a completed registry.
func ErrRegistryCompleted(op string) error {
	return oops.In("plugin").
		Code(CodeRegistryCompleted).
		With("operation", op).
		Errorf("registry already completed: cannot %s", op)
}

// ErrExecutionFailed wraps a failing OnExecution.
func ErrExecutionFailed(name string, err error) error {
	return oops.In("plugin").
		Code(CodeExecutionFailed).
		With("plugin", name).
		Wrapf(err, "plugin %s failed to execute", name)
}

// ErrRunStarted creates an error for a second Run on the same host.
func ErrRunStarted() error {
	return oops.In("plugin").
		Code(CodeRunStarted).
		Errorf("host already ran")
}

func fmtType(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
