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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, "", s.PromptTemplate)
	assert.Equal(t, 5, s.RetrieveCount)
	assert.True(t, s.UseSemanticRanker)
	assert.False(t, s.UseSemanticCaptions)
	assert.Equal(t, "", s.ExcludeCategory)
	assert.False(t, s.SuggestFollowup)
	assert.Equal(t, "analyst", s.UserPersona)
	assert.Equal(t, DefaultSystemPersona, s.SystemPersona)
	assert.Equal(t, "", s.AIPersona)
	assert.Equal(t, 2048, s.ResponseLength)
	assert.Equal(t, 0.6, s.ResponseTemp)
	assert.Empty(t, s.SelectedFolders)
	assert.Empty(t, s.SelectedTags)
}

func TestSettings_SetRetrieveCount(t *testing.T) {
	tests := []struct {
		name  string
		input int
		want  int
	}{
		{name: "lower bound accepted", input: 1, want: 1},
		{name: "upper bound accepted", input: 50, want: 50},
		{name: "in range", input: 12, want: 12},
		{name: "zero clamps up", input: 0, want: 1},
		{name: "negative clamps up", input: -3, want: 1},
		{name: "above range clamps down", input: 51, want: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			s.SetRetrieveCount(tt.input)
			assert.Equal(t, tt.want, s.RetrieveCount)
		})
	}
}

func TestSettings_SetRetrieveCountInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{name: "empty string falls back to default", input: "", want: 5},
		{name: "letters fall back to default", input: "abc", want: 5},
		{name: "decimal falls back to default", input: "3.5", want: 5},
		{name: "numeric", input: "7", want: 7},
		{name: "surrounding whitespace", input: " 9 ", want: 9},
		{name: "numeric above range clamps", input: "500", want: 50},
		{name: "numeric below range clamps", input: "0", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			s.SetRetrieveCount(20)
			s.SetRetrieveCountInput(tt.input)
			assert.Equal(t, tt.want, s.RetrieveCount)
		})
	}
}

func TestSettings_SetResponseLength(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{name: "1024", input: "1024", want: 1024},
		{name: "2048", input: "2048", want: 2048},
		{name: "3072", input: "3072", want: 3072},
		{name: "not enumerated", input: "4096", want: 2048},
		{name: "not numeric", input: "long", want: 2048},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			s.SetResponseLength(1024)
			s.SetResponseLengthInput(tt.input)
			assert.Equal(t, tt.want, s.ResponseLength)
		})
	}
}

func TestSettings_SetResponseTemp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{name: "1.0", input: "1.0", want: 1.0},
		{name: "1", input: "1", want: 1.0},
		{name: "0.6", input: "0.6", want: 0.6},
		{name: "0", input: "0", want: 0},
		{name: "not enumerated", input: "0.7", want: 0.6},
		{name: "not numeric", input: "hot", want: 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			s.SetResponseTemp(1.0)
			s.SetResponseTempInput(tt.input)
			assert.Equal(t, tt.want, s.ResponseTemp)
		})
	}
}

func TestSettings_SelectionsAreSets(t *testing.T) {
	s := DefaultSettings()
	s.SetSelectedFolders([]string{"policies", "finance", "policies"})
	s.SetSelectedTags([]string{"b", "a", "b", "a"})

	assert.Equal(t, []string{"policies", "finance"}, s.SelectedFolders)
	assert.Equal(t, []string{"b", "a"}, s.SelectedTags)
}

func TestSettings_SelectionsDropBlankNames(t *testing.T) {
	s := DefaultSettings()
	s.SetSelectedFolders([]string{"", "  ", "hr", ""})
	s.SetSelectedTags([]string{" ", "a"})
	assert.Equal(t, []string{"hr"}, s.SelectedFolders)
	assert.Equal(t, []string{"a"}, s.SelectedTags)

	s.SetSelectedFolders([]string{""})
	assert.Nil(t, s.SelectedFolders)
	assert.True(t, s.AllFoldersSelected())
}

func TestSettings_AllFoldersSelected(t *testing.T) {
	tests := []struct {
		name    string
		folders []string
		want    bool
	}{
		{name: "none selected", folders: nil, want: true},
		{name: "sentinel", folders: []string{"select-all"}, want: true},
		{name: "legacy sentinel", folders: []string{"selectAll"}, want: true},
		{name: "sentinel among names", folders: []string{"hr", "select-all"}, want: true},
		{name: "specific folders", folders: []string{"hr", "finance"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			s.SetSelectedFolders(tt.folders)
			assert.Equal(t, tt.want, s.AllFoldersSelected())
		})
	}
}

func TestSettings_Normalize(t *testing.T) {
	s := Settings{
		RetrieveCount:   99,
		ResponseLength:  17,
		ResponseTemp:    3,
		SelectedFolders: []string{"a", "a"},
	}
	n := s.Normalize()

	assert.Equal(t, 50, n.RetrieveCount)
	assert.Equal(t, 2048, n.ResponseLength)
	assert.Equal(t, 0.6, n.ResponseTemp)
	assert.Equal(t, []string{"a"}, n.SelectedFolders)
	assert.Equal(t, 99, s.RetrieveCount, "Normalize must not modify the receiver")
}

func TestSettings_CloneIsDeep(t *testing.T) {
	s := DefaultSettings()
	s.SetSelectedTags([]string{"x"})
	c := s.Clone()
	c.SelectedTags[0] = "y"
	assert.Equal(t, "x", s.SelectedTags[0])
}
