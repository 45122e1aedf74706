// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package events

// Where returns a recurring channel that re-emits the payloads of src that
// satisfy pred. The derived channel forwards inline, so its own subscribers
// decide whether they run inline or deferred.
func Where[T any](src Channel[T], pred func(T) bool) *Every[T] {
	derived := NewEvery(src.Name()+".where", WithInspector(func(payload T) (T, bool) {
		return payload, pred(payload)
	}))
	src.subscribeEmitter(derived.Fire, Unschedulable())
	return derived
}

// Map returns a recurring channel that re-emits every payload of src
// transformed by fn.
func Map[T, U any](src Channel[T], fn func(T) U) *Every[U] {
	derived := NewEvery[U](src.Name() + ".map")
	src.subscribeEmitter(func(ec *Context, payload T) error {
		return derived.Fire(ec, fn(payload))
	}, Unschedulable())
	return derived
}
