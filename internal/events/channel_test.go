// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package events

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvery_DeliversInRegistrationOrder(t *testing.T) {
	ch := NewEvery[int]("test.order")
	ec := NewContext()

	var got []string
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		ch.Subscribe(func(int) error {
			got = append(got, name)
			return nil
		}, Unschedulable())
	}

	require.NoError(t, ch.Fire(ec, 1))
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, got)
}

func TestEvery_MixedSchedulingScenario(t *testing.T) {
	ch := NewEvery[string]("test.mixed")
	ec := NewContext()

	var calls []string
	ch.Subscribe(func(v string) error {
		calls = append(calls, "H1:"+v)
		return nil
	})
	ch.Subscribe(func(v string) error {
		calls = append(calls, "H2:"+v)
		return nil
	}, Unschedulable())
	ch.Subscribe(func(v string) error {
		calls = append(calls, "H3:"+v)
		return nil
	})

	require.NoError(t, ch.Fire(ec, "v1"))
	assert.Equal(t, []string{"H2:v1"}, calls, "only the unschedulable handler runs during Fire")
	assert.Equal(t, 2, ec.Pending())

	require.NoError(t, ec.Drain())
	assert.Equal(t, []string{"H2:v1", "H1:v1", "H3:v1"}, calls)
	assert.Equal(t, 0, ec.Pending())
}

func TestEvery_SubscribeDuringDispatchSeesOnlyLaterEmissions(t *testing.T) {
	ch := NewEvery[int]("test.nested-subscribe")
	ec := NewContext()

	var late []int
	subscribed := false
	ch.Subscribe(func(int) error {
		if !subscribed {
			subscribed = true
			ch.Subscribe(func(v int) error {
				late = append(late, v)
				return nil
			}, Unschedulable())
		}
		return nil
	}, Unschedulable())

	require.NoError(t, ch.Fire(ec, 1))
	assert.Empty(t, late, "subscriber added mid-dispatch must not see the in-flight payload")

	require.NoError(t, ch.Fire(ec, 2))
	assert.Equal(t, []int{2}, late)
}

func TestEvery_SubscribeDuringDrainSeesOnlyLaterEmissions(t *testing.T) {
	ch := NewEvery[int]("test.drain-subscribe")
	ec := NewContext()

	var late []int
	once := false
	ch.Subscribe(func(int) error {
		if !once {
			once = true
			ch.Subscribe(func(v int) error {
				late = append(late, v)
				return nil
			})
		}
		return nil
	})

	require.NoError(t, ch.Fire(ec, 1))
	require.NoError(t, ec.Drain())
	assert.Empty(t, late)

	require.NoError(t, ch.Fire(ec, 2))
	require.NoError(t, ec.Drain())
	assert.Equal(t, []int{2}, late)
}

func TestEvery_UnsubscribeStopsFutureDelivery(t *testing.T) {
	ch := NewEvery[int]("test.unsubscribe")
	ec := NewContext()

	var got []int
	sub := ch.Subscribe(func(v int) error {
		got = append(got, v)
		return nil
	}, Unschedulable())

	require.NoError(t, ch.Fire(ec, 1))
	sub.Unsubscribe()
	sub.Unsubscribe()
	require.NoError(t, ch.Fire(ec, 2))

	assert.Equal(t, []int{1}, got)
	assert.Equal(t, 0, ch.Subscribers())
}

func TestEvery_UnsubscribeDoesNotRetractQueuedWork(t *testing.T) {
	ch := NewEvery[int]("test.queued-unsubscribe")
	ec := NewContext()

	var got []int
	sub := ch.Subscribe(func(v int) error {
		got = append(got, v)
		return nil
	})

	require.NoError(t, ch.Fire(ec, 7))
	sub.Unsubscribe()
	require.NoError(t, ch.Fire(ec, 8))
	require.NoError(t, ec.Drain())

	assert.Equal(t, []int{7}, got, "queued entry executes, later emission does not reach the handler")
}

func TestEvery_UnsubscribeOneOfManyKeepsOrder(t *testing.T) {
	ch := NewEvery[int]("test.unsubscribe-middle")
	ec := NewContext()

	var got []string
	ch.Subscribe(func(int) error { got = append(got, "a"); return nil }, Unschedulable())
	b := ch.Subscribe(func(int) error { got = append(got, "b"); return nil }, Unschedulable())
	ch.Subscribe(func(int) error { got = append(got, "c"); return nil }, Unschedulable())

	b.Unsubscribe()
	ch.Subscribe(func(int) error { got = append(got, "d"); return nil }, Unschedulable())

	require.NoError(t, ch.Fire(ec, 0))
	assert.Equal(t, []string{"a", "c", "d"}, got)
}

func TestEvery_CompletingSkipsSchedulableHandlers(t *testing.T) {
	ch := NewEvery[int]("test.completing")
	ec := NewContext()

	var inline, deferred []int
	ch.Subscribe(func(v int) error { deferred = append(deferred, v); return nil })
	ch.Subscribe(func(v int) error { inline = append(inline, v); return nil }, Unschedulable())

	ec.BeginCompleting()
	require.NoError(t, ch.Fire(ec, 3))

	assert.Equal(t, []int{3}, inline)
	assert.Equal(t, 0, ec.Pending(), "nothing may be enqueued while completing")
	require.NoError(t, ec.Drain())
	assert.Empty(t, deferred)
	assert.InDelta(t, 1, testutil.ToFloat64(HandlerDeliveries.WithLabelValues("test.completing", ModeSkipped)), 0)
}

func TestEvery_InlineFaultStopsPass(t *testing.T) {
	ch := NewEvery[int]("test.inline-fault")
	ec := NewContext()

	var after bool
	ch.Subscribe(func(int) error { return errors.New("boom") }, Unschedulable(), Owner("faulty"))
	ch.Subscribe(func(int) error { after = true; return nil }, Unschedulable())

	err := ch.Fire(ec, 1)
	require.Error(t, err)
	assert.False(t, after)

	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, CodeHandlerFault, oopsErr.Code())
	assert.Equal(t, "faulty", oopsErr.Context()["plugin"])
	assert.Equal(t, "test.inline-fault", oopsErr.Context()["channel"])
	assert.InDelta(t, 1, testutil.ToFloat64(HandlerFaults.WithLabelValues("test.inline-fault")), 0)
}

func TestEvery_InlinePanicBecomesFault(t *testing.T) {
	ch := NewEvery[int]("test.inline-panic")
	ec := NewContext()

	ch.Subscribe(func(int) error { panic("kaput") }, Unschedulable())

	err := ch.Fire(ec, 1)
	require.Error(t, err)
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, CodeHandlerPanic, oopsErr.Code())
	assert.Contains(t, err.Error(), "kaput")
}

func TestEvery_InspectorGatesAndTransforms(t *testing.T) {
	ch := NewEvery("test.inspect", WithInspector(func(v int) (int, bool) {
		return v * 10, v > 0
	}))
	ec := NewContext()

	var got []int
	ch.Subscribe(func(v int) error { got = append(got, v); return nil }, Unschedulable())

	require.NoError(t, ch.Fire(ec, -1))
	require.NoError(t, ch.Fire(ec, 2))
	assert.Equal(t, []int{20}, got)
}

func TestEvery_IdsArePerChannel(t *testing.T) {
	a := NewEvery[int]("test.ids-a")
	b := NewEvery[int]("test.ids-b")

	a.Subscribe(func(int) error { return nil })
	a.Subscribe(func(int) error { return nil })
	b.Subscribe(func(int) error { return nil })

	assert.Equal(t, uint64(2), a.subs.nextID)
	assert.Equal(t, uint64(1), b.subs.nextID)
}

func TestNext_FiresOnlyOnce(t *testing.T) {
	ch := NewNext[string]("test.next")
	ec := NewContext()

	var got []string
	ch.Subscribe(func(v string) error { got = append(got, v); return nil })

	require.NoError(t, ch.Fire(ec, "a"))
	require.NoError(t, ch.Fire(ec, "b"))
	require.NoError(t, ec.Drain())

	assert.Equal(t, []string{"a"}, got)
	value, fired := ch.Value()
	assert.True(t, fired)
	assert.Equal(t, "a", value)
	assert.Equal(t, 0, ch.Subscribers())
}

func TestNext_LateSubscriberReceivesNothing(t *testing.T) {
	ch := NewNext[int]("test.next-late")
	ec := NewContext()

	require.NoError(t, ch.Fire(ec, 1))

	called := false
	sub := ch.Subscribe(func(int) error { called = true; return nil }, Unschedulable())
	require.NoError(t, ch.Fire(ec, 2))
	require.NoError(t, ec.Drain())

	assert.False(t, called)
	assert.NotPanics(t, sub.Unsubscribe)
}

func TestNext_RejectedPayloadDoesNotRetire(t *testing.T) {
	ch := NewNext("test.next-reject", WithInspector(func(v int) (int, bool) {
		return v, v%2 == 0
	}))
	ec := NewContext()

	var got []int
	ch.Subscribe(func(v int) error { got = append(got, v); return nil }, Unschedulable())

	require.NoError(t, ch.Fire(ec, 1))
	assert.False(t, ch.Fired())
	require.NoError(t, ch.Fire(ec, 2))
	assert.Equal(t, []int{2}, got)
}

func TestNext_SelfRefireFromHandlerIsNoop(t *testing.T) {
	ch := NewNext[int]("test.next-refire")
	ec := NewContext()

	var got []int
	ch.Subscribe(func(v int) error {
		got = append(got, v)
		return ch.Fire(ec, v+1)
	}, Unschedulable())

	require.NoError(t, ch.Fire(ec, 1))
	assert.Equal(t, []int{1}, got)
}
