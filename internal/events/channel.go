// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package events

// Handler reacts to a payload delivered through a channel. A returned error
// is a handler fault and aborts the current dispatch.
type Handler[T any] func(payload T) error

// Channel is a named, typed slot that plugins subscribe to and fire into.
// Implementations live in this package: Every, Next and the derived
// channels returned by Where and Map.
type Channel[T any] interface {
	// Name identifies the channel in logs, metrics and faults.
	Name() string

	// Subscribe registers h and returns the token that removes it.
	Subscribe(h Handler[T], opts ...SubscribeOption) Subscription

	// Fire dispatches payload against ec.
	Fire(ec *Context, payload T) error

	subscribeEmitter(e emitter[T], opts ...SubscribeOption) Subscription
}

// ChannelOption configures a channel at construction.
type ChannelOption[T any] func(*inspection[T])

// Inspector decides whether a payload is accepted and may transform it.
type Inspector[T any] func(payload T) (T, bool)

// WithInspector installs an inspection step that runs before delivery.
// Rejected payloads make Fire a no-op.
func WithInspector[T any](inspect Inspector[T]) ChannelOption[T] {
	return func(i *inspection[T]) {
		i.inspect = inspect
	}
}

type inspection[T any] struct {
	inspect Inspector[T]
}

func (i inspection[T]) accept(payload T) (T, bool) {
	if i.inspect == nil {
		return payload, true
	}
	return i.inspect(payload)
}

func adapt[T any](h Handler[T]) emitter[T] {
	return func(_ *Context, payload T) error {
		return h(payload)
	}
}

// emit visits subs in ascending id order. Unschedulable subscribers run
// inline; schedulable ones are queued on ec, or skipped once ec is
// completing.
func emit[T any](ec *Context, channel string, subs []*subscription[T], payload T) error {
	recordEmission(channel)

	for _, sub := range subs {
		w := Work{
			Channel:      channel,
			Subscription: sub.id,
			Owner:        sub.owner,
		}
		deliver := sub.emit
		w.Run = func() error { return deliver(ec, payload) }

		if !sub.schedulable {
			recordDelivery(channel, ModeInline)
			if err := w.invoke(); err != nil {
				return err
			}
			continue
		}

		if ec.Completing() {
			recordDelivery(channel, ModeSkipped)
			continue
		}

		recordDelivery(channel, ModeScheduled)
		if err := ec.Schedule(w); err != nil {
			return err
		}
	}

	return nil
}

// Every is a recurring channel: every accepted Fire reaches the current
// subscribers and subscriptions persist across firings.
type Every[T any] struct {
	name       string
	inspection inspection[T]
	subs       subscriptionSet[T]
}

// NewEvery creates a recurring channel.
func NewEvery[T any](name string, opts ...ChannelOption[T]) *Every[T] {
	c := &Every[T]{name: name}
	for _, opt := range opts {
		opt(&c.inspection)
	}
	return c
}

// Name returns the channel name.
func (c *Every[T]) Name() string {
	return c.name
}

// Subscribe registers h. Subscribers added while this channel is being
// dispatched are first visited by the next Fire.
func (c *Every[T]) Subscribe(h Handler[T], opts ...SubscribeOption) Subscription {
	return c.subscribeEmitter(adapt(h), opts...)
}

func (c *Every[T]) subscribeEmitter(e emitter[T], opts ...SubscribeOption) Subscription {
	cfg := defaultSubscribeConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return c.subs.add(e, cfg)
}

// Fire dispatches payload to the current subscribers.
func (c *Every[T]) Fire(ec *Context, payload T) error {
	payload, ok := c.inspection.accept(payload)
	if !ok {
		return nil
	}
	return emit(ec, c.name, c.subs.snapshot(), payload)
}

// Subscribers returns the number of live subscriptions.
func (c *Every[T]) Subscribers() int {
	return c.subs.len()
}

// Next is a single-shot channel: the first accepted Fire is delivered to the
// subscribers present at that moment, after which the channel retires.
// Later Fire calls are no-ops and later subscribers receive nothing.
type Next[T any] struct {
	name       string
	inspection inspection[T]
	subs       subscriptionSet[T]
	fired      bool
	value      T
}

// NewNext creates a single-shot channel.
func NewNext[T any](name string, opts ...ChannelOption[T]) *Next[T] {
	c := &Next[T]{name: name}
	for _, opt := range opts {
		opt(&c.inspection)
	}
	return c
}

// Name returns the channel name.
func (c *Next[T]) Name() string {
	return c.name
}

// Subscribe registers h. Once the channel fired, the returned subscription
// is inert and h is never called.
func (c *Next[T]) Subscribe(h Handler[T], opts ...SubscribeOption) Subscription {
	return c.subscribeEmitter(adapt(h), opts...)
}

func (c *Next[T]) subscribeEmitter(e emitter[T], opts ...SubscribeOption) Subscription {
	if c.fired {
		return inert
	}
	cfg := defaultSubscribeConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return c.subs.add(e, cfg)
}

// Fire delivers payload once. The payload is recorded and all subscriptions
// are released.
func (c *Next[T]) Fire(ec *Context, payload T) error {
	if c.fired {
		return nil
	}
	payload, ok := c.inspection.accept(payload)
	if !ok {
		return nil
	}

	c.fired = true
	c.value = payload
	subs := c.subs.snapshot()
	c.subs.clear()

	return emit(ec, c.name, subs, payload)
}

// Fired reports whether the channel already fired.
func (c *Next[T]) Fired() bool {
	return c.fired
}

// Value returns the recorded payload and whether the channel fired.
func (c *Next[T]) Value() (T, bool) {
	return c.value, c.fired
}

// Subscribers returns the number of subscriptions still waiting.
func (c *Next[T]) Subscribers() int {
	return c.subs.len()
}
