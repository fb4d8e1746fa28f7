// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package answering is the HTTP client for the external answering service.
//
// The service receives a datatypes.ChatRequest as JSON and replies with a
// datatypes.AskResponse. Client implements chatsession.AnsweringService.
package answering

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/AleutianAsk/pkg/telemetry"
	"github.com/AleutianAI/AleutianAsk/services/chatsession/datatypes"
)

const (
	// DefaultChatPath is the chat endpoint of the answering service.
	DefaultChatPath = "/chat"

	// maxErrorBodyBytes bounds how much of an error body is kept.
	maxErrorBodyBytes = 4 * 1024

	tracerName = "aleutian.ask.answering"
)

// HTTPClient is the subset of *http.Client used by Client.
// Tests substitute a mock.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server error (%d)", e.StatusCode)
	}
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Body)
}

// HTTPStatus returns the response status code.
func (e *StatusError) HTTPStatus() int {
	return e.StatusCode
}

// Config configures a Client.
type Config struct {
	// BaseURL is the service root, e.g. "http://localhost:5000".
	BaseURL string

	// ChatPath is appended to BaseURL. Empty means DefaultChatPath.
	ChatPath string

	// RequestsPerSecond limits outgoing calls. Zero means unlimited.
	RequestsPerSecond float64

	// HTTPClient overrides the transport. Nil means a client with no timeout;
	// per-call deadlines come from the context.
	HTTPClient HTTPClient
}

// Client calls the answering service over HTTP.
//
// # Description
//
// Chat validates the request, POSTs it as JSON with an X-Request-ID header
// and trace context, and decodes the reply. Non-2xx statuses become
// *StatusError carrying the (truncated) body.
//
// # Thread Safety
//
// Safe for concurrent use.
type Client struct {
	url     string
	client  HTTPClient
	limiter *rate.Limiter
}

// NewClient creates a Client.
//
// # Examples
//
//	c := answering.NewClient(answering.Config{BaseURL: "http://localhost:5000"})
//	resp, err := c.Chat(ctx, req)
func NewClient(cfg Config) *Client {
	path := cfg.ChatPath
	if path == "" {
		path = DefaultChatPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &Client{
		url:     strings.TrimRight(cfg.BaseURL, "/") + path,
		client:  hc,
		limiter: limiter,
	}
}

// URL returns the chat endpoint the client posts to.
func (c *Client) URL() string {
	return c.url
}

// Chat sends req and returns the service's reply.
//
// # Outputs
//
//   - datatypes.AskResponse: decoded reply; may carry an Error payload
//   - error: validation, transport, *StatusError or decode failure
func (c *Client) Chat(ctx context.Context, req datatypes.ChatRequest) (datatypes.AskResponse, error) {
	requestID := uuid.New().String()
	ctx, span := telemetry.StartSpan(ctx, tracerName, "Client.Chat",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("request.id", requestID),
			attribute.Int("request.history_len", len(req.History)),
		),
	)
	defer span.End()

	resp, err := c.chat(ctx, requestID, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return datatypes.AskResponse{}, err
	}
	telemetry.SetSpanOK(span)
	return resp, nil
}

func (c *Client) chat(ctx context.Context, requestID string, req datatypes.ChatRequest) (datatypes.AskResponse, error) {
	var out datatypes.AskResponse

	if err := req.Validate(); err != nil {
		return out, fmt.Errorf("invalid request: %w", err)
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return out, fmt.Errorf("rate limit: %w", err)
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return out, fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return out, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		slog.Error("answering service request failed",
			"request_id", requestID,
			"url", c.url,
			"error", err,
		)
		return out, fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if err := validateResponse(requestID, resp); err != nil {
		return out, err
	}

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		slog.Error("failed to decode answering service response",
			"request_id", requestID,
			"error", err,
		)
		return datatypes.AskResponse{}, fmt.Errorf("decode response: %w", err)
	}

	slog.Debug("answering service responded",
		"request_id", requestID,
		"status_code", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
		"citations", len(out.Citations),
	)
	return out, nil
}

// validateResponse turns a non-2xx response into a *StatusError.
func validateResponse(requestID string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil {
		slog.Error("answering service returned error (failed to read body)",
			"request_id", requestID,
			"status_code", resp.StatusCode,
			"read_error", err,
		)
		return &StatusError{StatusCode: resp.StatusCode}
	}
	body := strings.TrimSpace(string(bodyBytes))
	slog.Error("answering service returned error",
		"request_id", requestID,
		"status_code", resp.StatusCode,
		"response_body", body,
	)
	return &StatusError{StatusCode: resp.StatusCode, Body: body}
}
