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
	"iter"
	"strings"

	"github.com/AleutianAI/AleutianAsk/services/chatsession/datatypes"
)

// RequestBuilder turns conversation history, a question and settings into a
// datatypes.ChatRequest.
//
// # Description
//
// Build is pure: it reads its inputs, never mutates them, and produces the
// same request (and the same JSON encoding) for the same inputs.
//
// # Mapping
//
//   - History: every past exchange, then {User: question} with no Bot
//   - Overrides.PromptTemplate / ExcludeCategory: omitted when empty
//   - Overrides.Top: Settings.RetrieveCount
//   - Overrides.SelectedFolders: "All" when nothing is selected or the
//     select-all sentinel is present, otherwise names joined with ","
//   - Overrides.SelectedTags: names joined with ","; empty when none
//   - remaining flags and personas: passed through unchanged
//
// # Examples
//
//	b := RequestBuilder{Approach: datatypes.ApproachReadRetrieveRead}
//	req := b.Build(conv.History(), "What is our refund policy?", settings)
type RequestBuilder struct {
	Approach datatypes.Approach
}

// DefaultRequestBuilder uses the read-retrieve-read approach.
var DefaultRequestBuilder = RequestBuilder{Approach: datatypes.ApproachReadRetrieveRead}

// BuildRequest builds a request with DefaultRequestBuilder.
func BuildRequest(history iter.Seq[HistoryEntry], question string, settings Settings) datatypes.ChatRequest {
	return DefaultRequestBuilder.Build(history, question, settings)
}

// Build assembles the request. A nil history is treated as empty.
func (b RequestBuilder) Build(history iter.Seq[HistoryEntry], question string, settings Settings) datatypes.ChatRequest {
	approach := b.Approach
	if approach == "" {
		approach = datatypes.ApproachReadRetrieveRead
	}

	turns := make([]datatypes.ChatTurn, 0, 1)
	if history != nil {
		for h := range history {
			bot := h.Bot
			turns = append(turns, datatypes.ChatTurn{User: h.User, Bot: &bot})
		}
	}
	turns = append(turns, datatypes.ChatTurn{User: question})

	return datatypes.ChatRequest{
		History:   turns,
		Approach:  approach,
		Overrides: buildOverrides(settings),
	}
}

func buildOverrides(s Settings) datatypes.Overrides {
	folders := datatypes.FoldersAll
	if !s.AllFoldersSelected() {
		folders = strings.Join(s.SelectedFolders, ",")
	}

	return datatypes.Overrides{
		PromptTemplate:           s.PromptTemplate,
		ExcludeCategory:          s.ExcludeCategory,
		Top:                      s.RetrieveCount,
		SemanticRanker:           s.UseSemanticRanker,
		SemanticCaptions:         s.UseSemanticCaptions,
		SuggestFollowupQuestions: s.SuggestFollowup,
		UserPersona:              s.UserPersona,
		SystemPersona:            s.SystemPersona,
		AIPersona:                s.AIPersona,
		ResponseLength:           s.ResponseLength,
		ResponseTemp:             s.ResponseTemp,
		SelectedFolders:          folders,
		SelectedTags:             strings.Join(s.SelectedTags, ","),
	}
}
