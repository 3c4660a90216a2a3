// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Status constants for auth operation metrics.
const (
	StatusSuccess  = "success"
	StatusRejected = "rejected"
	StatusError    = "error"
)

// Operation names used as metric labels and span names.
const (
	OperationRegister            = "register"
	OperationVerify              = "verify"
	OperationLogin               = "login"
	OperationLoginWithCredential = "login_with_credential"
	OperationLogout              = "logout"
	OperationWhoAmI              = "whoami"
)

const (
	kdfOperationHash   = "hash"
	kdfOperationVerify = "verify"
)

// Operations is the counter for auth service operations.
// Use RegisterMetrics to register this with a Prometheus registry.
var Operations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "deskauth_auth_operations_total",
		Help: "Total number of auth operations by operation and status",
	},
	[]string{"operation", "status"},
)

// PolicyRejections is the counter for password policy rejections.
// Use RegisterMetrics to register this with a Prometheus registry.
var PolicyRejections = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "deskauth_password_policy_rejections_total",
		Help: "Total number of passwords rejected by the policy, by reason",
	},
	[]string{"reason"},
)

// KDFDuration is the histogram for argon2id key derivation time.
// Use RegisterMetrics to register this with a Prometheus registry.
var KDFDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "deskauth_kdf_duration_seconds",
		Help:    "Argon2id key derivation duration in seconds",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	},
	[]string{"operation"},
)

// RegisterMetrics registers auth package metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Operations)
	reg.MustRegister(PolicyRejections)
	reg.MustRegister(KDFDuration)
}

func recordOperation(operation, status string) {
	Operations.WithLabelValues(operation, status).Inc()
}

func recordPolicyRejection(reason Reason) {
	PolicyRejections.WithLabelValues(reason.String()).Inc()
}

func observeKDF(operation string, d time.Duration) {
	KDFDuration.WithLabelValues(operation).Observe(d.Seconds())
}
