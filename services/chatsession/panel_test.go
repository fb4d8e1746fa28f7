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
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianAsk/services/chatsession/datatypes"
)

func TestAnalysisPanel_Toggle(t *testing.T) {
	tests := []struct {
		name     string
		steps    func(p *AnalysisPanel)
		wantTab  Tab
		wantTurn int
	}{
		{
			name:     "open from closed",
			steps:    func(p *AnalysisPanel) { p.Toggle(TabThoughtProcess, 1) },
			wantTab:  TabThoughtProcess,
			wantTurn: 1,
		},
		{
			name: "same tab and turn closes",
			steps: func(p *AnalysisPanel) {
				p.Toggle(TabThoughtProcess, 1)
				p.Toggle(TabThoughtProcess, 1)
			},
			wantTab:  TabNone,
			wantTurn: 1,
		},
		{
			name: "different tab same turn switches",
			steps: func(p *AnalysisPanel) {
				p.Toggle(TabCitation, 0)
				p.Toggle(TabThoughtProcess, 0)
			},
			wantTab:  TabThoughtProcess,
			wantTurn: 0,
		},
		{
			name: "same tab different turn moves",
			steps: func(p *AnalysisPanel) {
				p.Toggle(TabSupportingContent, 0)
				p.Toggle(TabSupportingContent, 2)
			},
			wantTab:  TabSupportingContent,
			wantTurn: 2,
		},
		{
			name: "change tab uses selected turn",
			steps: func(p *AnalysisPanel) {
				p.Toggle(TabThoughtProcess, 3)
				p.ChangeTab(TabSupportingContent)
			},
			wantTab:  TabSupportingContent,
			wantTurn: 3,
		},
		{
			name: "change tab to active tab closes",
			steps: func(p *AnalysisPanel) {
				p.Toggle(TabThoughtProcess, 3)
				p.ChangeTab(TabThoughtProcess)
			},
			wantTab:  TabNone,
			wantTurn: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p AnalysisPanel
			tt.steps(&p)
			st := p.State()
			assert.Equal(t, tt.wantTab, st.ActiveTab)
			assert.Equal(t, tt.wantTurn, st.SelectedTurn)
		})
	}
}

func TestAnalysisPanel_SelectCitation(t *testing.T) {
	doc1 := datatypes.Citation{ID: "doc1.pdf", SourceFile: "reports/doc1.pdf", PageNumber: "2"}
	doc2 := datatypes.Citation{ID: "doc2.pdf"}

	t.Run("same citation same turn closes", func(t *testing.T) {
		var p AnalysisPanel
		p.SelectCitation(doc1, 0)
		p.SelectCitation(doc1, 0)
		assert.False(t, p.State().IsOpen())
	})

	t.Run("different citation switches", func(t *testing.T) {
		var p AnalysisPanel
		p.SelectCitation(doc1, 0)
		p.SelectCitation(doc2, 0)
		st := p.State()
		assert.Equal(t, TabCitation, st.ActiveTab)
		require.NotNil(t, st.ActiveCitation)
		assert.Equal(t, "doc2.pdf", st.ActiveCitation.ID)
	})

	t.Run("same citation different turn stays open", func(t *testing.T) {
		var p AnalysisPanel
		p.SelectCitation(doc1, 0)
		p.SelectCitation(doc1, 1)
		st := p.State()
		assert.True(t, st.IsSelected(1))
		assert.False(t, st.IsSelected(0))
	})

	t.Run("same citation after tab switch reopens citation tab", func(t *testing.T) {
		var p AnalysisPanel
		p.SelectCitation(doc1, 0)
		p.Toggle(TabThoughtProcess, 0)
		p.SelectCitation(doc1, 0)
		assert.Equal(t, TabCitation, p.State().ActiveTab)
	})

	t.Run("state copy does not alias citation", func(t *testing.T) {
		var p AnalysisPanel
		p.SelectCitation(doc1, 0)
		st := p.State()
		st.ActiveCitation.ID = "mutated"
		assert.Equal(t, "doc1.pdf", p.State().ActiveCitation.ID)
	})
}

func TestAnalysisPanel_CloseAndReset(t *testing.T) {
	var p AnalysisPanel
	p.SelectCitation(datatypes.Citation{ID: "c"}, 2)

	p.Close()
	st := p.State()
	assert.False(t, st.IsOpen())
	assert.Nil(t, st.ActiveCitation)
	assert.Equal(t, 2, st.SelectedTurn, "close keeps the selected turn")

	p.Reset()
	assert.Equal(t, PanelState{}, p.State())
}

func TestParseTab(t *testing.T) {
	tests := []struct {
		input   string
		want    Tab
		wantErr bool
	}{
		{input: "citation", want: TabCitation},
		{input: "thoughtProcess", want: TabThoughtProcess},
		{input: "thoughts", want: TabThoughtProcess},
		{input: "supportingContent", want: TabSupportingContent},
		{input: "support", want: TabSupportingContent},
		{input: "bogus", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTab(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownTab)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
