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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianAsk/services/chatsession/datatypes"
)

func conversationWith(pairs ...string) *Conversation {
	c := NewConversation()
	for i := 0; i+1 < len(pairs); i += 2 {
		c.Append(pairs[i], datatypes.AskResponse{Answer: pairs[i+1]})
	}
	return c
}

func TestBuildRequest_History(t *testing.T) {
	conv := conversationWith("q1", "a1", "q2", "a2")

	req := BuildRequest(conv.History(), "q3", DefaultSettings())

	require.Len(t, req.History, 3)
	assert.Equal(t, "q1", req.History[0].User)
	require.NotNil(t, req.History[0].Bot)
	assert.Equal(t, "a1", *req.History[0].Bot)
	assert.Equal(t, "q2", req.History[1].User)
	assert.Equal(t, "a2", *req.History[1].Bot)
	assert.Equal(t, "q3", req.History[2].User)
	assert.Nil(t, req.History[2].Bot)
	assert.Equal(t, datatypes.ApproachReadRetrieveRead, req.Approach)
}

func TestBuildRequest_EmptyHistory(t *testing.T) {
	req := BuildRequest(nil, "first", DefaultSettings())

	require.Len(t, req.History, 1)
	assert.Equal(t, "first", req.History[0].User)
	assert.Nil(t, req.History[0].Bot)
	assert.NoError(t, req.Validate())
}

func TestBuildRequest_Overrides(t *testing.T) {
	s := DefaultSettings()
	s.SetPromptTemplate("Answer in one sentence.")
	s.SetExcludeCategory("drafts")
	s.SetRetrieveCount(12)
	s.SetUseSemanticCaptions(true)
	s.SetSuggestFollowup(true)
	s.SetAIPersona("librarian")
	s.SetResponseLength(3072)
	s.SetResponseTemp(0)

	o := BuildRequest(nil, "q", s).Overrides

	assert.Equal(t, "Answer in one sentence.", o.PromptTemplate)
	assert.Equal(t, "drafts", o.ExcludeCategory)
	assert.Equal(t, 12, o.Top)
	assert.True(t, o.SemanticRanker)
	assert.True(t, o.SemanticCaptions)
	assert.True(t, o.SuggestFollowupQuestions)
	assert.Equal(t, "analyst", o.UserPersona)
	assert.Equal(t, DefaultSystemPersona, o.SystemPersona)
	assert.Equal(t, "librarian", o.AIPersona)
	assert.Equal(t, 3072, o.ResponseLength)
	assert.Equal(t, 0.0, o.ResponseTemp)
}

func TestBuildRequest_FolderAndTagFilters(t *testing.T) {
	tests := []struct {
		name        string
		folders     []string
		tags        []string
		wantFolders string
		wantTags    string
	}{
		{name: "nothing selected", wantFolders: "All", wantTags: ""},
		{name: "select-all sentinel", folders: []string{"select-all"}, wantFolders: "All"},
		{name: "sentinel with names", folders: []string{"hr", "select-all"}, wantFolders: "All"},
		{name: "specific folders", folders: []string{"A", "B"}, wantFolders: "A,B"},
		{name: "blank folder names", folders: []string{"", " "}, wantFolders: "All"},
		{name: "blank tag among tags", tags: []string{"x", ""}, wantFolders: "All", wantTags: "x"},
		{name: "single tag", tags: []string{"x"}, wantFolders: "All", wantTags: "x"},
		{name: "several tags", tags: []string{"x", "y"}, wantFolders: "All", wantTags: "x,y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			s.SetSelectedFolders(tt.folders)
			s.SetSelectedTags(tt.tags)

			o := BuildRequest(nil, "q", s).Overrides
			assert.Equal(t, tt.wantFolders, o.SelectedFolders)
			assert.Equal(t, tt.wantTags, o.SelectedTags)
		})
	}
}

func TestBuildRequest_Deterministic(t *testing.T) {
	conv := conversationWith("q1", "a1")
	s := DefaultSettings()
	s.SetSelectedFolders([]string{"A", "B"})
	s.SetSelectedTags([]string{"t"})

	first, err := json.Marshal(BuildRequest(conv.History(), "q2", s))
	require.NoError(t, err)
	second, err := json.Marshal(BuildRequest(conv.History(), "q2", s))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Equal(t, 1, conv.Len(), "building must not modify the conversation")
	assert.Equal(t, []string{"A", "B"}, s.SelectedFolders, "building must not modify settings")
}

func TestRequestBuilder_Approach(t *testing.T) {
	b := RequestBuilder{Approach: datatypes.ApproachRetrieveThenRead}
	assert.Equal(t, datatypes.ApproachRetrieveThenRead, b.Build(nil, "q", DefaultSettings()).Approach)
	assert.Equal(t, datatypes.ApproachReadRetrieveRead, RequestBuilder{}.Build(nil, "q", DefaultSettings()).Approach)
}
