// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() ChatRequest {
	return ChatRequest{
		History:  []ChatTurn{{User: "What is our external research revenue?"}},
		Approach: ApproachReadRetrieveRead,
		Overrides: Overrides{
			Top:             5,
			SemanticRanker:  true,
			UserPersona:     "analyst",
			ResponseLength:  2048,
			ResponseTemp:    0.6,
			SelectedFolders: FoldersAll,
		},
	}
}

// =============================================================================
// ChatRequest.Validate() Tests
// =============================================================================

func TestChatRequest_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(r *ChatRequest)
		expectError bool
		errorField  string
	}{
		{name: "valid request", mutate: func(r *ChatRequest) {}},
		{
			name:        "empty history",
			mutate:      func(r *ChatRequest) { r.History = nil },
			expectError: true,
			errorField:  "History",
		},
		{
			name:        "empty pending question",
			mutate:      func(r *ChatRequest) { r.History[0].User = "" },
			expectError: true,
			errorField:  "User",
		},
		{
			name:        "oversized question",
			mutate:      func(r *ChatRequest) { r.History[0].User = strings.Repeat("a", MaxQuestionBytes+1) },
			expectError: true,
			errorField:  "User",
		},
		{
			name:        "unknown approach",
			mutate:      func(r *ChatRequest) { r.Approach = "xyz" },
			expectError: true,
			errorField:  "Approach",
		},
		{
			name:        "top below range",
			mutate:      func(r *ChatRequest) { r.Overrides.Top = 0 },
			expectError: true,
			errorField:  "Top",
		},
		{
			name:        "top above range",
			mutate:      func(r *ChatRequest) { r.Overrides.Top = 51 },
			expectError: true,
			errorField:  "Top",
		},
		{
			name:        "response length not enumerated",
			mutate:      func(r *ChatRequest) { r.Overrides.ResponseLength = 4096 },
			expectError: true,
			errorField:  "ResponseLength",
		},
		{
			name:        "response temp not enumerated",
			mutate:      func(r *ChatRequest) { r.Overrides.ResponseTemp = 0.7 },
			expectError: true,
			errorField:  "ResponseTemp",
		},
		{
			name:   "zero temperature is accepted",
			mutate: func(r *ChatRequest) { r.Overrides.ResponseTemp = 0 },
		},
		{
			name:        "missing folder filter",
			mutate:      func(r *ChatRequest) { r.Overrides.SelectedFolders = "" },
			expectError: true,
			errorField:  "SelectedFolders",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			err := req.Validate()

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorField)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestChatRequest_MarshalOmitsEmptyOptionalOverrides(t *testing.T) {
	req := validRequest()

	body, err := json.Marshal(req)
	require.NoError(t, err)

	s := string(body)
	assert.NotContains(t, s, "prompt_template")
	assert.NotContains(t, s, "exclude_category")
	assert.NotContains(t, s, `"bot"`, "pending turn must not carry a bot field")
	assert.Contains(t, s, `"selected_tags":""`)
	assert.Contains(t, s, `"approach":"rrr"`)

	req.Overrides.PromptTemplate = ">>> be brief"
	req.Overrides.ExcludeCategory = "hr"
	body, err = json.Marshal(req)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"prompt_template":">>> be brief"`)
	assert.Contains(t, string(body), `"exclude_category":"hr"`)
}

func TestChatRequest_PendingQuestion(t *testing.T) {
	answer := "ten days"
	req := ChatRequest{History: []ChatTurn{
		{User: "first", Bot: &answer},
		{User: "second"},
	}}
	assert.Equal(t, "second", req.PendingQuestion())
	assert.Equal(t, "", (&ChatRequest{}).PendingQuestion())
}

// =============================================================================
// AskResponse Tests
// =============================================================================

func TestAskResponse_Unmarshal(t *testing.T) {
	body := `{
		"answer": "Revenue was $42M [doc1.pdf].",
		"citations": [{"id": "doc1.pdf", "source_file": "reports/doc1.pdf", "page_number": "4"}],
		"thoughts": "searched annual report",
		"data_points": ["doc1.pdf: revenue table"],
		"followup_questions": ["How does that compare to last year?"]
	}`

	var resp AskResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))

	assert.False(t, resp.HasError())
	assert.Equal(t, "searched annual report", resp.Thoughts)
	require.Len(t, resp.Citations, 1)

	c, ok := resp.Citation("doc1.pdf")
	require.True(t, ok)
	assert.Equal(t, "4", c.PageNumber)
	assert.Equal(t, "doc1.pdf (reports/doc1.pdf p.4)", c.String())

	_, ok = resp.Citation("missing")
	assert.False(t, ok)
}

func TestAskResponse_ErrorPayload(t *testing.T) {
	var resp AskResponse
	require.NoError(t, json.Unmarshal([]byte(`{"error":"index unavailable"}`), &resp))
	assert.True(t, resp.HasError())
}

func TestCitation_SameAs(t *testing.T) {
	a := Citation{ID: "doc1.pdf", SourceFile: "a.pdf", PageNumber: "1"}
	assert.True(t, a.SameAs(Citation{ID: "doc1.pdf"}))
	assert.False(t, a.SameAs(Citation{ID: "doc2.pdf", SourceFile: "a.pdf", PageNumber: "1"}))
}
