// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package chatsession

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/AleutianAsk/pkg/telemetry"
)

const tracerName = "aleutian.ask.session"

// Submission outcomes, shared by the OTel instruments and MetricsRecorder.
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeDiscarded = "discarded"
)

// MetricsRecorder receives session events. observability.SessionMetrics
// implements it with Prometheus collectors.
type MetricsRecorder interface {
	RecordSubmit(outcome string, duration time.Duration)
	RecordClear()
	RecordPanel(tab string, open bool)
	SetTurns(sessionID string, turns int)
}

type nopRecorder struct{}

func (nopRecorder) RecordSubmit(string, time.Duration) {}
func (nopRecorder) RecordClear()                       {}
func (nopRecorder) RecordPanel(string, bool)           {}
func (nopRecorder) SetTurns(string, int)               {}

var meter = otel.Meter(tracerName)

var (
	submitLatency metric.Float64Histogram
	submitTotal   metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the OTel instruments. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		submitLatency, err = meter.Float64Histogram(
			"ask_session_submit_duration_seconds",
			metric.WithDescription("Duration of submissions to the answering service"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		submitTotal, err = meter.Int64Counter(
			"ask_session_submit_total",
			metric.WithDescription("Total number of submissions by outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func startSubmitSpan(ctx context.Context, sessionID string, historyLen int) (context.Context, trace.Span) {
	return telemetry.StartSpan(ctx, tracerName, "Session.Submit",
		trace.WithAttributes(
			attribute.String("session.id", sessionID),
			attribute.Int("session.history_len", historyLen),
		),
	)
}

func recordSubmitOTel(ctx context.Context, outcome string, d time.Duration) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	submitLatency.Record(ctx, d.Seconds(), attrs)
	submitTotal.Add(ctx, 1, attrs)
}
