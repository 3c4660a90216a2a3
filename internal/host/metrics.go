// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package host

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Status constants for dispatch metrics.
const (
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusNotFound = "not_found"
)

// Dispatches is the counter for dispatched host commands.
// Use RegisterMetrics to register this with a Prometheus registry.
var Dispatches = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "deskauth_host_dispatch_total",
		Help: "Total number of host commands dispatched by command and status",
	},
	[]string{"command", "status"},
)

// RegisterMetrics registers host package metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Dispatches)
}

// unknownCommandLabel bounds label cardinality for names nobody registered.
const unknownCommandLabel = "unknown"

func recordDispatch(command, status string) {
	Dispatches.WithLabelValues(command, status).Inc()
}
