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
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/AleutianAI/AleutianAsk/services/chatsession/datatypes"
)

const (
	// DefaultRetrieveCount is used when the retrieve count input is not numeric.
	DefaultRetrieveCount = 5

	// DefaultResponseLength is used when the response length is not one of
	// datatypes.ResponseLengths.
	DefaultResponseLength = 2048

	// DefaultResponseTemp is used when the temperature is not one of
	// datatypes.ResponseTemps.
	DefaultResponseTemp = 0.6

	// DefaultUserPersona and DefaultSystemPersona are the persona defaults of
	// a fresh session.
	DefaultUserPersona   = "analyst"
	DefaultSystemPersona = "Assistant named AUTGPT at Auckland University of Technology in New Zealand"

	// FoldersSelectAll is the sentinel a folder picker emits for "every folder".
	FoldersSelectAll = "select-all"

	// foldersSelectAllLegacy is the key older pickers used for the same option.
	foldersSelectAllLegacy = "selectAll"
)

// Settings holds the user-tunable generation parameters of a session.
//
// # Description
//
// Settings is a value type. The zero value is not meaningful; start from
// DefaultSettings and change fields through the setters, which coerce
// invalid input to a default instead of failing.
//
// # Invariants
//
//   - RetrieveCount is always within [1, 50]
//   - ResponseLength is always one of 1024, 2048, 3072
//   - ResponseTemp is always one of 0, 0.6, 1.0
//   - SelectedFolders and SelectedTags contain no duplicates
type Settings struct {
	PromptTemplate      string   `json:"prompt_template" yaml:"prompt_template"`
	RetrieveCount       int      `json:"retrieve_count" yaml:"retrieve_count"`
	UseSemanticRanker   bool     `json:"use_semantic_ranker" yaml:"use_semantic_ranker"`
	UseSemanticCaptions bool     `json:"use_semantic_captions" yaml:"use_semantic_captions"`
	ExcludeCategory     string   `json:"exclude_category" yaml:"exclude_category"`
	SuggestFollowup     bool     `json:"suggest_followup" yaml:"suggest_followup"`
	UserPersona         string   `json:"user_persona" yaml:"user_persona"`
	SystemPersona       string   `json:"system_persona" yaml:"system_persona"`
	AIPersona           string   `json:"ai_persona" yaml:"ai_persona"`
	ResponseLength      int      `json:"response_length" yaml:"response_length"`
	ResponseTemp        float64  `json:"response_temp" yaml:"response_temp"`
	SelectedFolders     []string `json:"selected_folders" yaml:"selected_folders"`
	SelectedTags        []string `json:"selected_tags" yaml:"selected_tags"`
}

// DefaultSettings returns the settings of a fresh session.
func DefaultSettings() Settings {
	return Settings{
		RetrieveCount:     DefaultRetrieveCount,
		UseSemanticRanker: true,
		UserPersona:       DefaultUserPersona,
		SystemPersona:     DefaultSystemPersona,
		ResponseLength:    DefaultResponseLength,
		ResponseTemp:      DefaultResponseTemp,
	}
}

// Normalize returns a copy with every field coerced into its valid domain.
// It is used when settings arrive from config files or API bodies.
func (s Settings) Normalize() Settings {
	s.SetRetrieveCount(s.RetrieveCount)
	s.SetResponseLength(s.ResponseLength)
	s.SetResponseTemp(s.ResponseTemp)
	s.SetSelectedFolders(s.SelectedFolders)
	s.SetSelectedTags(s.SelectedTags)
	return s
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	s.SelectedFolders = slices.Clone(s.SelectedFolders)
	s.SelectedTags = slices.Clone(s.SelectedTags)
	return s
}

// ===== Retrieve count =====

// SetRetrieveCount clamps n into [1, 50]. The bounds themselves are accepted.
func (s *Settings) SetRetrieveCount(n int) {
	clamped := min(max(n, datatypes.MinRetrieveCount), datatypes.MaxRetrieveCount)
	if clamped != n {
		slog.Debug("retrieve count clamped", "input", n, "value", clamped)
	}
	s.RetrieveCount = clamped
}

// SetRetrieveCountInput parses raw text input. Non-numeric input, including
// the empty string, yields DefaultRetrieveCount; numeric input is clamped.
func (s *Settings) SetRetrieveCountInput(raw string) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		slog.Debug("retrieve count not numeric, using default", "input", raw)
		s.RetrieveCount = DefaultRetrieveCount
		return
	}
	s.SetRetrieveCount(n)
}

// ===== Response length =====

// SetResponseLength accepts one of datatypes.ResponseLengths; anything else
// yields DefaultResponseLength.
func (s *Settings) SetResponseLength(n int) {
	if !slices.Contains(datatypes.ResponseLengths, n) {
		slog.Debug("response length not recognised, using default", "input", n)
		n = DefaultResponseLength
	}
	s.ResponseLength = n
}

// SetResponseLengthInput parses raw text input; unparseable input yields
// DefaultResponseLength.
func (s *Settings) SetResponseLengthInput(raw string) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		n = DefaultResponseLength
	}
	s.SetResponseLength(n)
}

// ===== Response temperature =====

// SetResponseTemp accepts one of datatypes.ResponseTemps; anything else
// yields DefaultResponseTemp.
func (s *Settings) SetResponseTemp(t float64) {
	if !slices.Contains(datatypes.ResponseTemps, t) {
		slog.Debug("response temperature not recognised, using default", "input", t)
		t = DefaultResponseTemp
	}
	s.ResponseTemp = t
}

// SetResponseTempInput parses raw text input such as "1.0", "0.6" or "0";
// unparseable input yields DefaultResponseTemp.
func (s *Settings) SetResponseTempInput(raw string) {
	t, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		t = DefaultResponseTemp
	}
	s.SetResponseTemp(t)
}

// ===== Free-form fields =====

func (s *Settings) SetPromptTemplate(v string)    { s.PromptTemplate = v }
func (s *Settings) SetExcludeCategory(v string)   { s.ExcludeCategory = v }
func (s *Settings) SetUseSemanticRanker(v bool)   { s.UseSemanticRanker = v }
func (s *Settings) SetUseSemanticCaptions(v bool) { s.UseSemanticCaptions = v }
func (s *Settings) SetSuggestFollowup(v bool)     { s.SuggestFollowup = v }
func (s *Settings) SetUserPersona(v string)       { s.UserPersona = v }
func (s *Settings) SetSystemPersona(v string)     { s.SystemPersona = v }
func (s *Settings) SetAIPersona(v string)         { s.AIPersona = v }

// ===== Folder and tag selection =====

// SetSelectedFolders stores the folder selection with blank names and
// duplicates removed, keeping first-seen order. A selection left empty means
// every folder.
func (s *Settings) SetSelectedFolders(names []string) {
	s.SelectedFolders = dedupe(names)
}

// SetSelectedTags stores the tag selection with blank names and duplicates removed,
// keeping first-seen order.
func (s *Settings) SetSelectedTags(names []string) {
	s.SelectedTags = dedupe(names)
}

// AllFoldersSelected reports whether the folder selection means "every folder":
// nothing selected, or the select-all sentinel present.
func (s *Settings) AllFoldersSelected() bool {
	return len(s.SelectedFolders) == 0 ||
		slices.Contains(s.SelectedFolders, FoldersSelectAll) ||
		slices.Contains(s.SelectedFolders, foldersSelectAllLegacy)
}

func dedupe(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
