// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package events

import (
	"fmt"

	"github.com/samber/oops"
)

// Error codes raised by channel dispatch and context draining.
const (
	CodeHandlerFault  = "HANDLER_FAULT"
	CodeHandlerPanic  = "HANDLER_PANIC"
	CodeContextClosed = "CONTEXT_CLOSED"
)

// faultTag marks errors raised for failing handlers. Codes cannot serve
// here because oops reports the deepest code of a chain.
const faultTag = "handler-fault"

// ErrContextClosed creates the error returned when work is scheduled on a
// context that already entered its completing phase.
func ErrContextClosed(contextID, channel string) error {
	return oops.In("events").
		Code(CodeContextClosed).
		With("context", contextID).
		With("channel", channel).
		Errorf("emission context %s is completing: cannot schedule %s", contextID, channel)
}

// IsFault reports whether err is, or wraps, a handler fault. Faults bubbling
// through nested emissions are not wrapped twice.
func IsFault(err error) bool {
	oopsErr, ok := oops.AsOops(err)
	return ok && oopsErr.HasTag(faultTag)
}

func handlerFault(w Work, err error) error {
	if IsFault(err) {
		return err
	}
	return oops.In("events").
		Code(CodeHandlerFault).
		Tags(faultTag).
		With("channel", w.Channel).
		With("subscription", w.Subscription).
		With("plugin", w.Owner).
		Wrapf(err, "handler for %s failed", w.Channel)
}

func handlerPanic(w Work, recovered any) error {
	return oops.In("events").
		Code(CodeHandlerPanic).
		Tags(faultTag).
		With("channel", w.Channel).
		With("subscription", w.Subscription).
		With("plugin", w.Owner).
		Errorf("handler for %s panicked: %s", w.Channel, fmt.Sprint(recovered))
}
