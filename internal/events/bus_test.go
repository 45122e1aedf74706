// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package events

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFire_UsesBusContext(t *testing.T) {
	bus := NewBus(NewContext())
	ch := NewEvery[string]("test.bus")

	var got []string
	OnEveryEvent(ch, func(v string) error { got = append(got, v); return nil })

	require.NoError(t, Fire(bus, ch, "x"))
	assert.Empty(t, got)
	assert.Equal(t, 1, bus.Context().Pending())

	require.NoError(t, bus.Context().Drain())
	assert.Equal(t, []string{"x"}, got)
}

func TestOnNextEvent_OnlyFirstEmission(t *testing.T) {
	bus := NewBus(NewContext())
	ch := NewEvery[int]("test.on-next")

	var got []int
	OnNextEvent(ch, func(v int) error { got = append(got, v); return nil })

	require.NoError(t, Fire(bus, ch, 1))
	require.NoError(t, Fire(bus, ch, 2))
	require.NoError(t, bus.Context().Drain())
	require.NoError(t, Fire(bus, ch, 3))
	require.NoError(t, bus.Context().Drain())

	assert.Equal(t, []int{1}, got)
	assert.Equal(t, 0, ch.Subscribers())
}

func TestOnNextEvent_InlineUnsubscribesImmediately(t *testing.T) {
	bus := NewBus(NewContext())
	ch := NewEvery[int]("test.on-next-inline")

	var got []int
	OnNextEvent(ch, func(v int) error { got = append(got, v); return nil }, Unschedulable())

	require.NoError(t, Fire(bus, ch, 1))
	assert.Equal(t, 0, ch.Subscribers())
	require.NoError(t, Fire(bus, ch, 2))
	assert.Equal(t, []int{1}, got)
}

func TestWhere_FiltersPayloads(t *testing.T) {
	bus := NewBus(NewContext())
	src := NewEvery[int]("test.where")
	even := Where(src, func(v int) bool { return v%2 == 0 })

	var got []int
	OnEveryEvent(even, func(v int) error { got = append(got, v); return nil })

	for i := 1; i <= 4; i++ {
		require.NoError(t, Fire(bus, src, i))
	}
	require.NoError(t, bus.Context().Drain())

	assert.Equal(t, []int{2, 4}, got)
	assert.Equal(t, "test.where.where", even.Name())
}

func TestMap_TransformsPayloads(t *testing.T) {
	bus := NewBus(NewContext())
	src := NewNext[int]("test.map")
	doubled := Map(src, func(v int) string { return string(rune('a' + v)) })

	var got []string
	OnEveryEvent(doubled, func(v string) error { got = append(got, v); return nil }, Unschedulable())

	require.NoError(t, Fire(bus, src, 2))
	require.NoError(t, Fire(bus, src, 3))
	assert.Equal(t, []string{"c"}, got)
}

func TestSubscriptions_UnsubscribeAll(t *testing.T) {
	ch := NewEvery[int]("test.subscriptions")

	var subs Subscriptions
	subs.Add(ch.Subscribe(func(int) error { return nil }))
	subs.Add(ch.Subscribe(func(int) error { return nil }))
	require.Equal(t, 2, ch.Subscribers())

	subs.UnsubscribeAll()
	assert.Equal(t, 0, ch.Subscribers())
	assert.Empty(t, subs)
}

func TestRegisterMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	RegisterMetrics(reg)

	bus := NewBus(NewContext())
	ch := NewEvery[int]("test.metrics")
	ch.Subscribe(func(int) error { return nil })
	require.NoError(t, Fire(bus, ch, 1))

	assert.InDelta(t, 1, testutil.ToFloat64(EmissionsTotal.WithLabelValues("test.metrics")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(HandlerDeliveries.WithLabelValues("test.metrics", ModeScheduled)), 0)

	count, err := testutil.GatherAndCount(reg, "vernuntii_events_fired_total")
	require.NoError(t, err)
	assert.Positive(t, count)
}
