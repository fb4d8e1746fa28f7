// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package answering

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianAsk/services/chatsession/datatypes"
)

func testRequest() datatypes.ChatRequest {
	return datatypes.ChatRequest{
		History:  []datatypes.ChatTurn{{User: "What is our external research revenue?"}},
		Approach: datatypes.ApproachReadRetrieveRead,
		Overrides: datatypes.Overrides{
			Top:             5,
			ResponseLength:  2048,
			ResponseTemp:    0.6,
			SelectedFolders: datatypes.FoldersAll,
		},
	}
}

// mockHTTPClient implements HTTPClient with a configurable DoFunc.
type mockHTTPClient struct {
	DoFunc func(req *http.Request) (*http.Response, error)
	calls  int
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.calls++
	return m.DoFunc(req)
}

func TestClient_ChatSuccess(t *testing.T) {
	var gotBody map[string]any
	var gotHeaders http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat", r.URL.Path)
		gotHeaders = r.Header.Clone()
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"answer":"$42M [doc1.pdf]","citations":[{"id":"doc1.pdf"}],"followup_questions":["And last year?"]}`)
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL + "/"})
	resp, err := c.Chat(context.Background(), testRequest())

	require.NoError(t, err)
	assert.Equal(t, "$42M [doc1.pdf]", resp.Answer)
	require.Len(t, resp.Citations, 1)
	assert.Equal(t, []string{"And last year?"}, resp.FollowupQuestions)

	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	assert.NotEmpty(t, gotHeaders.Get("X-Request-ID"))
	assert.Equal(t, "rrr", gotBody["approach"])
	overrides, ok := gotBody["overrides"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "All", overrides["selected_folders"])
	assert.NotContains(t, overrides, "prompt_template")
}

func TestClient_ChatPath(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		path     string
		expected string
	}{
		{name: "default path", base: "http://svc:5000", expected: "http://svc:5000/chat"},
		{name: "trailing slash", base: "http://svc:5000/", expected: "http://svc:5000/chat"},
		{name: "custom path", base: "http://svc", path: "/v1/ask", expected: "http://svc/v1/ask"},
		{name: "path without slash", base: "http://svc", path: "api/chat", expected: "http://svc/api/chat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewClient(Config{BaseURL: tt.base, ChatPath: tt.path}).URL())
		})
	}
}

func TestClient_ChatServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, "search index offline\n")
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL})
	_, err := c.Chat(context.Background(), testRequest())

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.HTTPStatus())
	assert.Equal(t, "search index offline", statusErr.Body)
	assert.Equal(t, "server error (503): search index offline", err.Error())
}

func TestClient_ChatErrorPayloadIsReturned(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"error":"model overloaded"}`)
	}))
	defer server.Close()

	resp, err := NewClient(Config{BaseURL: server.URL}).Chat(context.Background(), testRequest())
	require.NoError(t, err)
	assert.True(t, resp.HasError())
	assert.Equal(t, "model overloaded", resp.Error)
}

func TestClient_ChatMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"answer":`)
	}))
	defer server.Close()

	_, err := NewClient(Config{BaseURL: server.URL}).Chat(context.Background(), testRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_ChatTransportError(t *testing.T) {
	mock := &mockHTTPClient{DoFunc: func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	}}

	_, err := NewClient(Config{BaseURL: "http://svc", HTTPClient: mock}).Chat(context.Background(), testRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 1, mock.calls)
}

func TestClient_ChatRejectsInvalidRequest(t *testing.T) {
	mock := &mockHTTPClient{DoFunc: func(*http.Request) (*http.Response, error) {
		t.Fatal("invalid request must not be sent")
		return nil, nil
	}}

	req := testRequest()
	req.Overrides.Top = 0
	_, err := NewClient(Config{BaseURL: "http://svc", HTTPClient: mock}).Chat(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid request")
	assert.Equal(t, 0, mock.calls)
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	mock := &mockHTTPClient{DoFunc: func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"answer":"ok"}`)),
		}, nil
	}}
	c := NewClient(Config{BaseURL: "http://svc", HTTPClient: mock, RequestsPerSecond: 0.001})

	_, err := c.Chat(context.Background(), testRequest())
	require.NoError(t, err, "first call uses the initial burst token")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Chat(ctx, testRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
	assert.Equal(t, 1, mock.calls)
}
