// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package events

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Delivery modes used as metric label values.
const (
	ModeInline    = "inline"
	ModeScheduled = "scheduled"
	ModeSkipped   = "skipped"
)

// EmissionsTotal counts accepted emissions per channel.
// Use RegisterMetrics to register this with a Prometheus registry.
var EmissionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "vernuntii_events_fired_total",
		Help: "Total number of accepted channel emissions",
	},
	[]string{"channel"},
)

// HandlerDeliveries counts handler deliveries per channel and delivery mode.
// Use RegisterMetrics to register this with a Prometheus registry.
var HandlerDeliveries = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "vernuntii_event_handlers_total",
		Help: "Total number of handler deliveries by mode (inline, scheduled, skipped)",
	},
	[]string{"channel", "mode"},
)

// HandlerFaults counts handlers that returned an error or panicked.
// Use RegisterMetrics to register this with a Prometheus registry.
var HandlerFaults = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "vernuntii_event_handler_faults_total",
		Help: "Total number of handler faults",
	},
	[]string{"channel"},
)

// RegisterMetrics registers event bus metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(EmissionsTotal)
	reg.MustRegister(HandlerDeliveries)
	reg.MustRegister(HandlerFaults)
}

func recordEmission(channel string) {
	EmissionsTotal.WithLabelValues(channel).Inc()
}

func recordDelivery(channel, mode string) {
	HandlerDeliveries.WithLabelValues(channel, mode).Inc()
}

func recordFault(channel string) {
	HandlerFaults.WithLabelValues(channel).Inc()
}
