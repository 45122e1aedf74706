// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package events

// Bus binds the emission context of one run to the plugins taking part in
// it. Plugins fire through the bus and never see the context directly.
type Bus struct {
	ctx *Context
}

// NewBus creates a bus for ec.
func NewBus(ec *Context) *Bus {
	return &Bus{ctx: ec}
}

// Context returns the emission context of the run.
func (b *Bus) Context() *Context {
	return b.ctx
}

// Fire dispatches payload on ch through the run's emission context.
func Fire[T any](b *Bus, ch Channel[T], payload T) error {
	return ch.Fire(b.ctx, payload)
}

// OnEveryEvent subscribes h to every emission of ch.
func OnEveryEvent[T any](ch Channel[T], h Handler[T], opts ...SubscribeOption) Subscription {
	return ch.Subscribe(h, opts...)
}

// OnNextEvent subscribes h to the next emission of ch only. The
// subscription removes itself on first delivery; an entry that was already
// queued for a later emission runs but does not call h again.
func OnNextEvent[T any](ch Channel[T], h Handler[T], opts ...SubscribeOption) Subscription {
	var (
		sub  Subscription
		done bool
	)
	sub = ch.Subscribe(func(payload T) error {
		if done {
			return nil
		}
		done = true
		sub.Unsubscribe()
		return h(payload)
	}, opts...)
	return sub
}
