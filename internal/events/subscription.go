// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package events

// Subscription is the token returned by Subscribe. Unsubscribe removes
// exactly the subscription that produced it and is safe to call repeatedly.
type Subscription interface {
	Unsubscribe()
}

type subscriptionToken struct {
	remove func()
	done   bool
}

func (t *subscriptionToken) Unsubscribe() {
	if t.done {
		return
	}
	t.done = true
	if t.remove != nil {
		t.remove()
	}
}

// inert is returned for subscriptions that can never receive anything.
var inert Subscription = &subscriptionToken{done: true}

// Subscriptions collects tokens so a plugin can release them together.
type Subscriptions []Subscription

// Add appends sub and returns it.
func (s *Subscriptions) Add(sub Subscription) Subscription {
	*s = append(*s, sub)
	return sub
}

// UnsubscribeAll releases every collected subscription in reverse order.
func (s *Subscriptions) UnsubscribeAll() {
	for i := len(*s) - 1; i >= 0; i-- {
		(*s)[i].Unsubscribe()
	}
	*s = nil
}

// SubscribeOption configures a subscription.
type SubscribeOption func(*subscribeConfig)

type subscribeConfig struct {
	schedulable bool
	owner       string
}

func defaultSubscribeConfig() subscribeConfig {
	return subscribeConfig{schedulable: true}
}

// Unschedulable makes the handler run inline while Fire executes instead of
// being deferred to the context queue. Unschedulable handlers also observe
// emissions during the completing phase.
func Unschedulable() SubscribeOption {
	return func(c *subscribeConfig) {
		c.schedulable = false
	}
}

// Owner tags the subscription with the name of the plugin that created it.
// The name is reported in handler faults.
func Owner(name string) SubscribeOption {
	return func(c *subscribeConfig) {
		c.owner = name
	}
}

// emitter delivers a payload with access to the emission context. Public
// handlers are adapted to it; derived channels use it to re-emit.
type emitter[T any] func(ec *Context, payload T) error

type subscription[T any] struct {
	id          uint64
	emit        emitter[T]
	schedulable bool
	owner       string
}

// subscriptionSet keeps subscriptions in ascending id order. Mutations
// replace or extend the backing slice without touching elements a running
// dispatch already holds, so a pass only ever sees the entries that existed
// when it started.
type subscriptionSet[T any] struct {
	nextID  uint64
	entries []*subscription[T]
}

func (s *subscriptionSet[T]) add(e emitter[T], cfg subscribeConfig) Subscription {
	s.nextID++
	sub := &subscription[T]{
		id:          s.nextID,
		emit:        e,
		schedulable: cfg.schedulable,
		owner:       cfg.owner,
	}
	s.entries = append(s.entries, sub)
	return &subscriptionToken{remove: func() { s.remove(sub.id) }}
}

func (s *subscriptionSet[T]) remove(id uint64) {
	for i, sub := range s.entries {
		if sub.id != id {
			continue
		}
		next := make([]*subscription[T], 0, len(s.entries)-1)
		next = append(next, s.entries[:i]...)
		next = append(next, s.entries[i+1:]...)
		s.entries = next
		return
	}
}

// snapshot returns the current entries. The caller must not modify the slice.
func (s *subscriptionSet[T]) snapshot() []*subscription[T] {
	return s.entries[:len(s.entries):len(s.entries)]
}

func (s *subscriptionSet[T]) clear() {
	s.entries = nil
}

func (s *subscriptionSet[T]) len() int {
	return len(s.entries)
}
