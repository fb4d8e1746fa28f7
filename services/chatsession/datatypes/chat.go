// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes provides the wire types exchanged with the answering service.
//
// The answering service is an opaque collaborator: it receives the full
// conversation history plus generation overrides and returns an answer with
// optional citations, thought process, supporting content and follow-up
// questions. Field names use snake_case on the wire.
package datatypes

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// MaxQuestionBytes is the maximum size of a single user question.
	MaxQuestionBytes = 32 * 1024

	// MinRetrieveCount and MaxRetrieveCount bound Overrides.Top.
	MinRetrieveCount = 1
	MaxRetrieveCount = 50

	// FoldersAll is the folder filter value meaning "search every folder".
	FoldersAll = "All"
)

// Approach selects the retrieval strategy used by the answering service.
type Approach string

const (
	// ApproachRetrieveThenRead retrieves once, then reads.
	ApproachRetrieveThenRead Approach = "rtr"

	// ApproachReadRetrieveRead rewrites the question, retrieves, then reads.
	// This is the approach chat sessions use.
	ApproachReadRetrieveRead Approach = "rrr"

	// ApproachReadDecomposeAsk decomposes the question into sub-questions.
	ApproachReadDecomposeAsk Approach = "rda"
)

// ResponseLengths lists the accepted response length token budgets.
var ResponseLengths = []int{1024, 2048, 3072}

// ResponseTemps lists the accepted response temperatures.
var ResponseTemps = []float64{0, 0.6, 1.0}

// =============================================================================
// Shared Validator Instance
// =============================================================================

// chatValidate is the validator instance for chat datatypes.
var chatValidate *validator.Validate

func init() {
	chatValidate = validator.New()
	_ = chatValidate.RegisterValidation("maxbytes", validateMaxBytes)
	_ = chatValidate.RegisterValidation("responsetemp", validateResponseTemp)
}

// validateMaxBytes checks byte length, not rune count.
func validateMaxBytes(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxQuestionBytes
}

// validateResponseTemp accepts only the enumerated temperatures.
func validateResponseTemp(fl validator.FieldLevel) bool {
	v := fl.Field().Float()
	for _, t := range ResponseTemps {
		if v == t {
			return true
		}
	}
	return false
}

// =============================================================================
// Request Types
// =============================================================================

// ChatTurn is one entry of the history sent to the answering service.
//
// # Description
//
// Past turns carry both User and Bot. The trailing entry for the question
// being asked carries only User; Bot is nil and omitted from the JSON body.
//
// # Examples
//
//	answer := "Refunds are processed within 10 days."
//	past := ChatTurn{User: "What is the refund policy?", Bot: &answer}
//	pending := ChatTurn{User: "And for international students?"}
type ChatTurn struct {
	User string  `json:"user" validate:"required,maxbytes"`
	Bot  *string `json:"bot,omitempty"`
}

// Overrides carries the generation parameters for one request.
//
// PromptTemplate and ExcludeCategory are omitted from the body when empty.
// SelectedFolders is a comma-joined folder list or FoldersAll; SelectedTags is
// a comma-joined tag list and may be empty.
type Overrides struct {
	PromptTemplate           string  `json:"prompt_template,omitempty"`
	ExcludeCategory          string  `json:"exclude_category,omitempty"`
	Top                      int     `json:"top" validate:"min=1,max=50"`
	SemanticRanker           bool    `json:"semantic_ranker"`
	SemanticCaptions         bool    `json:"semantic_captions"`
	SuggestFollowupQuestions bool    `json:"suggest_followup_questions"`
	UserPersona              string  `json:"user_persona"`
	SystemPersona            string  `json:"system_persona"`
	AIPersona                string  `json:"ai_persona"`
	ResponseLength           int     `json:"response_length" validate:"oneof=1024 2048 3072"`
	ResponseTemp             float64 `json:"response_temp" validate:"responsetemp"`
	SelectedFolders          string  `json:"selected_folders" validate:"required"`
	SelectedTags             string  `json:"selected_tags"`
}

// ChatRequest is the body POSTed to the answering service's chat endpoint.
//
// # Description
//
// History holds every past turn followed by exactly one pending turn for the
// question being asked. Approach selects the retrieval strategy and Overrides
// carries the user's current settings.
//
// # Validation
//
// Uses go-playground/validator:
//   - History: at least one entry, each with a non-empty user question <= 32KB
//   - Approach: one of rtr, rrr, rda
//   - Overrides.Top: 1-50
//   - Overrides.ResponseLength: one of 1024, 2048, 3072
//   - Overrides.ResponseTemp: one of 0, 0.6, 1.0
//
// # Assumptions
//
//   - The last History entry is the pending question (Bot == nil)
type ChatRequest struct {
	History   []ChatTurn `json:"history" validate:"required,min=1,dive"`
	Approach  Approach   `json:"approach" validate:"required,oneof=rtr rrr rda"`
	Overrides Overrides  `json:"overrides"`
}

// Validate checks the request against its struct tags.
func (r *ChatRequest) Validate() error {
	return chatValidate.Struct(r)
}

// PendingQuestion returns the question of the trailing history entry.
func (r *ChatRequest) PendingQuestion() string {
	if len(r.History) == 0 {
		return ""
	}
	return r.History[len(r.History)-1].User
}

// =============================================================================
// Response Types
// =============================================================================

// Citation identifies one source passage referenced by an answer.
type Citation struct {
	ID         string `json:"id"`
	SourceFile string `json:"source_file,omitempty"`
	PageNumber string `json:"page_number,omitempty"`
}

// SameAs reports whether c and other refer to the same citation.
// Identity is the citation ID; source file and page are descriptive.
func (c Citation) SameAs(other Citation) bool {
	return c.ID == other.ID
}

// String returns a short human-readable label.
func (c Citation) String() string {
	switch {
	case c.SourceFile != "" && c.PageNumber != "":
		return fmt.Sprintf("%s (%s p.%s)", c.ID, c.SourceFile, c.PageNumber)
	case c.SourceFile != "":
		return fmt.Sprintf("%s (%s)", c.ID, c.SourceFile)
	default:
		return c.ID
	}
}

// AskResponse is the answering service's reply. Its content is opaque to the
// session layer and stored verbatim.
//
// A non-empty Error means the service answered with an error payload; callers
// treat it as a failed request.
type AskResponse struct {
	Answer            string     `json:"answer"`
	Citations         []Citation `json:"citations,omitempty"`
	Thoughts          string     `json:"thoughts,omitempty"`
	DataPoints        []string   `json:"data_points,omitempty"`
	FollowupQuestions []string   `json:"followup_questions,omitempty"`
	Error             string     `json:"error,omitempty"`
}

// HasError reports whether the response carries an error payload.
func (r *AskResponse) HasError() bool {
	return r.Error != ""
}

// Citation returns the citation with the given ID, if present.
func (r *AskResponse) Citation(id string) (Citation, bool) {
	for _, c := range r.Citations {
		if c.ID == id {
			return c, true
		}
	}
	return Citation{}, false
}
