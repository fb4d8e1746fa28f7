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

// State is an immutable snapshot of a session, handed to subscribers and
// returned by Session.State. Mutating a State has no effect on the session.
type State struct {
	SessionID       string     `json:"session_id"`
	Generation      uint64     `json:"generation"`
	Settings        Settings   `json:"settings"`
	Turns           []Turn     `json:"turns"`
	LastQuestion    string     `json:"last_question"`
	IsLoading       bool       `json:"is_loading"`
	ErrorMessage    string     `json:"error,omitempty"`
	Panel           PanelState `json:"panel"`
	ConfigPanelOpen bool       `json:"config_panel_open"`
	InfoPanelOpen   bool       `json:"info_panel_open"`

	err *ServiceError
}

// Err returns the error of the last failed submission, or nil.
func (s State) Err() *ServiceError {
	return s.err
}

// IsEmpty reports whether nothing has been asked since the session started
// or was last cleared.
func (s State) IsEmpty() bool {
	return s.LastQuestion == ""
}

// CanClear reports whether clearing is currently offered: something was
// asked and no request is outstanding.
func (s State) CanClear() bool {
	return s.LastQuestion != "" && !s.IsLoading
}

// ShowAnalysisPanel reports whether the panel should be displayed.
func (s State) ShowAnalysisPanel() bool {
	return len(s.Turns) > 0 && s.Panel.IsOpen()
}

// ShowFollowups reports whether follow-up questions of the given turn
// should be offered: only for the latest turn and only when enabled.
func (s State) ShowFollowups(turn int) bool {
	return s.Settings.SuggestFollowup && turn == len(s.Turns)-1
}

// SelectedTurn returns the turn the analysis panel is showing.
func (s State) SelectedTurn() (Turn, bool) {
	if !s.ShowAnalysisPanel() || s.Panel.SelectedTurn >= len(s.Turns) {
		return Turn{}, false
	}
	return s.Turns[s.Panel.SelectedTurn], true
}
