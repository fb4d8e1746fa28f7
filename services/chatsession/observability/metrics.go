// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for chat sessions.
//
// # Description
//
// SessionMetrics implements chatsession.MetricsRecorder. Metrics include:
//   - Submission counters and latency by outcome (success, error, discarded)
//   - Clear counter
//   - Analysis panel transitions by tab and direction
//   - Turns per session gauge
//   - Presentation API request counter
//
// # Integration
//
// Metrics are exposed on the presentation API's /metrics endpoint.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const metricsNamespace = "aleutian"

// Subsystem for session metrics
const sessionSubsystem = "ask_session"

// SessionMetrics holds all Prometheus metrics for chat sessions.
//
// # Fields
//
//   - SubmissionsTotal: submissions by outcome
//   - SubmitDurationSeconds: answering round-trip latency by outcome
//   - ClearsTotal: conversation clears
//   - PanelTransitionsTotal: panel toggles by tab and resulting state
//   - Turns: current number of turns per session
//   - APIRequestsTotal: presentation API requests by route and status
type SessionMetrics struct {
	SubmissionsTotal      *prometheus.CounterVec
	SubmitDurationSeconds *prometheus.HistogramVec
	ClearsTotal           prometheus.Counter
	PanelTransitionsTotal *prometheus.CounterVec
	Turns                 *prometheus.GaugeVec
	APIRequestsTotal      *prometheus.CounterVec
}

// NewSessionMetrics creates and registers the metrics with reg.
//
// # Inputs
//
//   - reg: registry to register with. Nil means prometheus.DefaultRegisterer.
//
// # Examples
//
//	metrics := observability.NewSessionMetrics(nil)
//	sess := chatsession.NewSession(client, chatsession.Config{Metrics: metrics})
//
// # Limitations
//
//   - Panics if called twice with the same registry (duplicate registration).
func NewSessionMetrics(reg prometheus.Registerer) *SessionMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &SessionMetrics{
		SubmissionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: sessionSubsystem,
				Name:      "submissions_total",
				Help:      "Total number of questions submitted by outcome",
			},
			[]string{"outcome"},
		),

		SubmitDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: sessionSubsystem,
				Name:      "submit_duration_seconds",
				Help:      "Answering service round-trip time in seconds",
				Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"outcome"},
		),

		ClearsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: sessionSubsystem,
				Name:      "clears_total",
				Help:      "Total number of conversation clears",
			},
		),

		PanelTransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: sessionSubsystem,
				Name:      "panel_transitions_total",
				Help:      "Analysis panel transitions by tab and resulting state",
			},
			[]string{"tab", "state"},
		),

		Turns: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: sessionSubsystem,
				Name:      "turns",
				Help:      "Number of turns in each session's conversation",
			},
			[]string{"session_id"},
		),

		APIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: sessionSubsystem,
				Name:      "api_requests_total",
				Help:      "Presentation API requests by route and status",
			},
			[]string{"route", "status"},
		),
	}
}

// RecordSubmit records one completed submission.
func (m *SessionMetrics) RecordSubmit(outcome string, duration time.Duration) {
	m.SubmissionsTotal.WithLabelValues(outcome).Inc()
	m.SubmitDurationSeconds.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordClear records a conversation clear.
func (m *SessionMetrics) RecordClear() {
	m.ClearsTotal.Inc()
}

// RecordPanel records a panel transition.
func (m *SessionMetrics) RecordPanel(tab string, open bool) {
	state := "closed"
	if open {
		state = "open"
	}
	m.PanelTransitionsTotal.WithLabelValues(tab, state).Inc()
}

// SetTurns records the conversation length of a session.
func (m *SessionMetrics) SetTurns(sessionID string, turns int) {
	m.Turns.WithLabelValues(sessionID).Set(float64(turns))
}

// RecordAPIRequest records a presentation API request.
func (m *SessionMetrics) RecordAPIRequest(route, status string) {
	m.APIRequestsTotal.WithLabelValues(route, status).Inc()
}
