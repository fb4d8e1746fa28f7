// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers implements the presentation API over chat sessions.
//
// Every mutating endpoint applies one session transition and replies with the
// resulting state snapshot, so a presentation layer can render from responses
// alone or follow the websocket stream.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianAsk/services/chatsession"
)

// =============================================================================
// Request bodies
// =============================================================================

// SubmitRequest is the body of the submit endpoint.
type SubmitRequest struct {
	Question string `json:"question" binding:"required"`
}

// TurnRequest names a turn of the conversation.
type TurnRequest struct {
	Turn *int `json:"turn" binding:"required,min=0"`
}

// FollowupRequest names follow-up question Index of a turn.
type FollowupRequest struct {
	Turn  *int `json:"turn" binding:"required,min=0"`
	Index *int `json:"index" binding:"required,min=0"`
}

// ToggleRequest toggles Tab for Turn.
type ToggleRequest struct {
	Tab  string `json:"tab" binding:"required"`
	Turn *int   `json:"turn" binding:"required,min=0"`
}

// TabRequest switches tab for the selected turn.
type TabRequest struct {
	Tab string `json:"tab" binding:"required"`
}

// CitationRequest selects a citation of a turn.
type CitationRequest struct {
	Turn       *int   `json:"turn" binding:"required,min=0"`
	CitationID string `json:"citation_id" binding:"required"`
}

// SettingsPatch carries settings edits as a form would send them.
//
// Numeric fields are raw text input and go through the coercing setters, so
// "abc" for retrieve_count yields the default rather than an error. Nil fields
// are left unchanged.
type SettingsPatch struct {
	PromptTemplate      *string   `json:"prompt_template"`
	RetrieveCount       *string   `json:"retrieve_count"`
	UseSemanticRanker   *bool     `json:"use_semantic_ranker"`
	UseSemanticCaptions *bool     `json:"use_semantic_captions"`
	ExcludeCategory     *string   `json:"exclude_category"`
	SuggestFollowup     *bool     `json:"suggest_followup"`
	UserPersona         *string   `json:"user_persona"`
	SystemPersona       *string   `json:"system_persona"`
	AIPersona           *string   `json:"ai_persona"`
	ResponseLength      *string   `json:"response_length"`
	ResponseTemp        *string   `json:"response_temp"`
	SelectedFolders     *[]string `json:"selected_folders"`
	SelectedTags        *[]string `json:"selected_tags"`
}

// Apply writes the non-nil fields into s.
func (p SettingsPatch) Apply(s *chatsession.Settings) {
	if p.PromptTemplate != nil {
		s.SetPromptTemplate(*p.PromptTemplate)
	}
	if p.RetrieveCount != nil {
		s.SetRetrieveCountInput(*p.RetrieveCount)
	}
	if p.UseSemanticRanker != nil {
		s.SetUseSemanticRanker(*p.UseSemanticRanker)
	}
	if p.UseSemanticCaptions != nil {
		s.SetUseSemanticCaptions(*p.UseSemanticCaptions)
	}
	if p.ExcludeCategory != nil {
		s.SetExcludeCategory(*p.ExcludeCategory)
	}
	if p.SuggestFollowup != nil {
		s.SetSuggestFollowup(*p.SuggestFollowup)
	}
	if p.UserPersona != nil {
		s.SetUserPersona(*p.UserPersona)
	}
	if p.SystemPersona != nil {
		s.SetSystemPersona(*p.SystemPersona)
	}
	if p.AIPersona != nil {
		s.SetAIPersona(*p.AIPersona)
	}
	if p.ResponseLength != nil {
		s.SetResponseLengthInput(*p.ResponseLength)
	}
	if p.ResponseTemp != nil {
		s.SetResponseTempInput(*p.ResponseTemp)
	}
	if p.SelectedFolders != nil {
		s.SetSelectedFolders(*p.SelectedFolders)
	}
	if p.SelectedTags != nil {
		s.SetSelectedTags(*p.SelectedTags)
	}
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// =============================================================================
// Session lifecycle
// =============================================================================

// CreateSession starts a session. An optional SettingsPatch body is applied
// over the configured default settings.
func CreateSession(store *SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var configure func(*chatsession.Settings)
		if c.Request.ContentLength > 0 {
			var patch SettingsPatch
			if err := c.ShouldBindJSON(&patch); err != nil {
				c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
				return
			}
			configure = patch.Apply
		}
		sess := store.Create(configure)
		slog.Info("session created", "session_id", sess.ID())
		c.JSON(http.StatusCreated, sess.State())
	}
}

// ListSessions returns the IDs of live sessions.
func ListSessions(store *SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"sessions": store.IDs()})
	}
}

// GetSession returns the state snapshot.
func GetSession(store *SessionStore) gin.HandlerFunc {
	return withSession(store, func(c *gin.Context, sess *chatsession.Session) {
		c.JSON(http.StatusOK, sess.State())
	})
}

// DeleteSession forgets a session.
func DeleteSession(store *SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("sessionId")
		if !store.Delete(id) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "session not found"})
			return
		}
		slog.Info("session deleted", "session_id", id)
		c.Status(http.StatusNoContent)
	}
}

// =============================================================================
// Submissions
// =============================================================================

// Submit asks a question and replies once the answer (or error) is integrated.
// A service failure is part of the state, so the reply is still 200.
func Submit(store *SessionStore) gin.HandlerFunc {
	return withSession(store, func(c *gin.Context, sess *chatsession.Session) {
		var req SubmitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		replyAfterSubmit(c, sess, sess.Submit(c.Request.Context(), req.Question))
	})
}

// Retry re-submits the last question.
func Retry(store *SessionStore) gin.HandlerFunc {
	return withSession(store, func(c *gin.Context, sess *chatsession.Session) {
		replyAfterSubmit(c, sess, sess.Retry(c.Request.Context()))
	})
}

// Regenerate re-asks the question of a past turn.
func Regenerate(store *SessionStore) gin.HandlerFunc {
	return withSession(store, func(c *gin.Context, sess *chatsession.Session) {
		var req TurnRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		replyAfterSubmit(c, sess, sess.Regenerate(c.Request.Context(), *req.Turn))
	})
}

// Followup submits a suggested follow-up question.
func Followup(store *SessionStore) gin.HandlerFunc {
	return withSession(store, func(c *gin.Context, sess *chatsession.Session) {
		var req FollowupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		replyAfterSubmit(c, sess, sess.AskFollowup(c.Request.Context(), *req.Turn, *req.Index))
	})
}

// Clear empties the conversation.
func Clear(store *SessionStore) gin.HandlerFunc {
	return withSession(store, func(c *gin.Context, sess *chatsession.Session) {
		sess.Clear()
		c.JSON(http.StatusOK, sess.State())
	})
}

// =============================================================================
// Panels and settings
// =============================================================================

// Toggle toggles an analysis tab for a turn.
func Toggle(store *SessionStore) gin.HandlerFunc {
	return withSession(store, func(c *gin.Context, sess *chatsession.Session) {
		var req ToggleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		tab, err := chatsession.ParseTab(req.Tab)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		replyAfterTransition(c, sess, sess.ToggleTab(tab, *req.Turn))
	})
}

// ChangeTab switches tab for the currently selected turn.
func ChangeTab(store *SessionStore) gin.HandlerFunc {
	return withSession(store, func(c *gin.Context, sess *chatsession.Session) {
		var req TabRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		tab, err := chatsession.ParseTab(req.Tab)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		replyAfterTransition(c, sess, sess.ChangeTab(tab))
	})
}

// SelectCitation shows or hides a citation of a turn.
func SelectCitation(store *SessionStore) gin.HandlerFunc {
	return withSession(store, func(c *gin.Context, sess *chatsession.Session) {
		var req CitationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		replyAfterTransition(c, sess, sess.SelectCitationByID(*req.Turn, req.CitationID))
	})
}

// UpdateSettings applies a SettingsPatch.
func UpdateSettings(store *SessionStore) gin.HandlerFunc {
	return withSession(store, func(c *gin.Context, sess *chatsession.Session) {
		var patch SettingsPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		sess.UpdateSettings(patch.Apply)
		c.JSON(http.StatusOK, sess.State())
	})
}

// ToggleConfigPanel opens or closes the settings panel.
func ToggleConfigPanel(store *SessionStore) gin.HandlerFunc {
	return withSession(store, func(c *gin.Context, sess *chatsession.Session) {
		sess.ToggleConfigPanel()
		c.JSON(http.StatusOK, sess.State())
	})
}

// ToggleInfoPanel opens or closes the information panel.
func ToggleInfoPanel(store *SessionStore) gin.HandlerFunc {
	return withSession(store, func(c *gin.Context, sess *chatsession.Session) {
		sess.ToggleInfoPanel()
		c.JSON(http.StatusOK, sess.State())
	})
}

// ListExamples returns the built-in example questions.
func ListExamples(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"examples": chatsession.Examples()})
}

// HealthCheck reports liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// =============================================================================
// Helpers
// =============================================================================

func withSession(store *SessionStore, fn func(*gin.Context, *chatsession.Session)) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := store.Get(c.Param("sessionId"))
		if !ok {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "session not found"})
			return
		}
		fn(c, sess)
	}
}

// replyAfterSubmit maps submission errors: service failures are reported in
// the state (200), caller mistakes are 4xx.
func replyAfterSubmit(c *gin.Context, sess *chatsession.Session, err error) {
	var svcErr *chatsession.ServiceError
	switch {
	case err == nil, errors.As(err, &svcErr):
		c.JSON(http.StatusOK, sess.State())
	default:
		replyAfterTransition(c, sess, err)
	}
}

func replyAfterTransition(c *gin.Context, sess *chatsession.Session, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, sess.State())
	case errors.Is(err, chatsession.ErrTurnOutOfRange),
		errors.Is(err, chatsession.ErrCitationNotFound),
		errors.Is(err, chatsession.ErrFollowupOutOfRange):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, chatsession.ErrEmptyQuestion),
		errors.Is(err, chatsession.ErrUnknownTab):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, chatsession.ErrNoLastQuestion):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	default:
		slog.Error("session transition failed", "session_id", sess.ID(), "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}
