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
	"fmt"
	"strings"

	"github.com/AleutianAI/AleutianAsk/services/chatsession/datatypes"
)

// Tab identifies a view of the analysis panel.
type Tab string

const (
	TabNone              Tab = ""
	TabCitation          Tab = "citation"
	TabThoughtProcess    Tab = "thoughtProcess"
	TabSupportingContent Tab = "supportingContent"
)

// ParseTab accepts the canonical tab names plus a few short aliases.
func ParseTab(s string) (Tab, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "citation", "cite", "c":
		return TabCitation, nil
	case "thoughtprocess", "thoughts", "thought", "t":
		return TabThoughtProcess, nil
	case "supportingcontent", "support", "supporting", "s":
		return TabSupportingContent, nil
	default:
		return TabNone, fmt.Errorf("%w: %q", ErrUnknownTab, s)
	}
}

// PanelState is a snapshot of the analysis panel.
//
// The panel is Closed when ActiveTab is TabNone, otherwise Open(ActiveTab,
// SelectedTurn). SelectedTurn survives closing so that reopening from inside
// the panel targets the same turn.
type PanelState struct {
	ActiveTab      Tab                 `json:"active_tab"`
	SelectedTurn   int                 `json:"selected_turn"`
	ActiveCitation *datatypes.Citation `json:"active_citation,omitempty"`
}

// IsOpen reports whether any tab is showing.
func (p PanelState) IsOpen() bool {
	return p.ActiveTab != TabNone
}

// IsSelected reports whether the panel is open for the given turn.
func (p PanelState) IsSelected(turn int) bool {
	return p.IsOpen() && p.SelectedTurn == turn
}

// AnalysisPanel is the Closed / Open(tab, turn) state machine.
//
// # Transitions
//
//   - Toggle(tab, turn): Open(tab, turn) -> Closed, anything else -> Open(tab, turn)
//   - SelectCitation(c, turn): as Toggle on TabCitation, also comparing c
//   - Close: -> Closed, active citation dropped
//   - Reset: -> Closed, selected turn back to 0
//
// Turn indices are not checked here; Session validates them against the
// conversation before calling in.
type AnalysisPanel struct {
	state PanelState
}

// State returns a copy of the current state.
func (a *AnalysisPanel) State() PanelState {
	s := a.state
	if s.ActiveCitation != nil {
		c := *s.ActiveCitation
		s.ActiveCitation = &c
	}
	return s
}

func (a *AnalysisPanel) Toggle(tab Tab, turn int) {
	if a.state.ActiveTab == tab && a.state.SelectedTurn == turn {
		a.state.ActiveTab = TabNone
	} else {
		a.state.ActiveTab = tab
	}
	a.state.SelectedTurn = turn
}

// ChangeTab switches tab for the currently selected turn.
func (a *AnalysisPanel) ChangeTab(tab Tab) {
	a.Toggle(tab, a.state.SelectedTurn)
}

func (a *AnalysisPanel) SelectCitation(c datatypes.Citation, turn int) {
	cur := a.state
	if cur.ActiveTab == TabCitation && cur.SelectedTurn == turn &&
		cur.ActiveCitation != nil && cur.ActiveCitation.SameAs(c) {
		a.state.ActiveTab = TabNone
	} else {
		a.state.ActiveCitation = &c
		a.state.ActiveTab = TabCitation
	}
	a.state.SelectedTurn = turn
}

func (a *AnalysisPanel) Close() {
	a.state.ActiveTab = TabNone
	a.state.ActiveCitation = nil
}

func (a *AnalysisPanel) Reset() {
	a.state = PanelState{}
}
