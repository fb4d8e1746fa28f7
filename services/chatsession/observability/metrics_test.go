// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestMetrics creates SessionMetrics on an isolated registry so tests do
// not collide with the global Prometheus registry.
func newTestMetrics(t *testing.T) (*SessionMetrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewSessionMetrics(reg), reg
}

func TestSessionMetrics_RecordSubmit(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordSubmit("success", 1200*time.Millisecond)
	m.RecordSubmit("success", 300*time.Millisecond)
	m.RecordSubmit("error", 50*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SubmissionsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SubmissionsTotal.WithLabelValues("error")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SubmissionsTotal.WithLabelValues("discarded")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.SubmitDurationSeconds))
}

func TestSessionMetrics_RecordPanel(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordPanel("citation", true)
	m.RecordPanel("citation", false)
	m.RecordPanel("thoughtProcess", true)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PanelTransitionsTotal.WithLabelValues("citation", "open")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PanelTransitionsTotal.WithLabelValues("citation", "closed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PanelTransitionsTotal.WithLabelValues("thoughtProcess", "open")))
}

func TestSessionMetrics_ClearsAndTurns(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.SetTurns("s1", 3)
	m.RecordClear()
	m.SetTurns("s1", 0)
	m.SetTurns("s2", 1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ClearsTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Turns.WithLabelValues("s1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Turns.WithLabelValues("s2")))
}

func TestSessionMetrics_Registered(t *testing.T) {
	m, reg := newTestMetrics(t)
	m.RecordAPIRequest("/v1/session", "200")

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "aleutian_ask_session_api_requests_total")
	assert.Contains(t, names, "aleutian_ask_session_clears_total")
}

func TestNewSessionMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewSessionMetrics(reg)
	assert.Panics(t, func() { NewSessionMetrics(reg) })
}
