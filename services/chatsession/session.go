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
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/AleutianAsk/pkg/telemetry"
	"github.com/AleutianAI/AleutianAsk/services/chatsession/datatypes"
)

// =============================================================================
// Collaborators
// =============================================================================

// AnsweringService is the external retrieval/generation backend.
//
// # Description
//
// Chat receives the full request (history plus pending question plus
// overrides) and returns the service's answer. Any error, including a
// non-2xx HTTP status, means the request failed.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use; a session may have more
// than one call outstanding.
type AnsweringService interface {
	Chat(ctx context.Context, req datatypes.ChatRequest) (datatypes.AskResponse, error)
}

// Config configures a Session.
type Config struct {
	// Settings are the initial settings. Zero value means DefaultSettings.
	Settings *Settings

	// Approach is sent with every request. Empty means read-retrieve-read.
	Approach datatypes.Approach

	// DiscardStaleResponses drops completions of requests issued before the
	// most recent Clear. When false they are appended to the cleared
	// conversation.
	DiscardStaleResponses bool

	// Timeout bounds each answering call. Zero means no local timeout.
	Timeout time.Duration

	// Metrics receives session events. Nil means no metrics.
	Metrics MetricsRecorder

	// Logger is used for session logs. Nil means slog.Default().
	Logger *slog.Logger
}

// =============================================================================
// Session
// =============================================================================

// Session orchestrates one conversation with the answering service.
//
// # Description
//
// Session owns the settings, the conversation, the analysis panel and the
// request lifecycle fields (last question, loading flag, error). Every
// operation applies its transition atomically under a mutex and then
// notifies subscribers with a State snapshot. The mutex is never held
// across the call to the answering service.
//
// # Lifecycle of Submit
//
//  1. lastQuestion is set, the error cleared, isLoading set, panel closed
//  2. one request is built and sent
//  3. success appends a turn; failure stores a ServiceError and adds nothing
//  4. isLoading is cleared
//
// # Limitations
//
//   - Concurrent submissions are not rejected; callers gate on State.IsLoading
//   - A completion arriving after Clear is appended to the cleared
//     conversation unless Config.DiscardStaleResponses is set
//
// # Thread Safety
//
// All methods are safe for concurrent use. Subscribers are called
// sequentially, in transition order, and must not call mutating Session
// methods synchronously.
type Session struct {
	id       string
	svc      AnsweringService
	builder  RequestBuilder
	timeout  time.Duration
	discard  bool
	metrics  MetricsRecorder
	logger   *slog.Logger
	mu       sync.Mutex
	notifyMu sync.Mutex

	// Guarded by mu.
	settings        Settings
	conv            *Conversation
	panel           AnalysisPanel
	lastQuestion    string
	isLoading       bool
	err             *ServiceError
	configPanelOpen bool
	infoPanelOpen   bool
	generation      uint64
	subscribers     map[int]func(State)
	nextSubID       int
}

// NewSession creates a session bound to svc.
//
// # Inputs
//
//   - svc: the answering service. Must not be nil.
//   - cfg: optional configuration; the zero value is usable.
//
// # Examples
//
//	client := answering.NewClient(answering.Config{BaseURL: "http://localhost:5000"})
//	sess := chatsession.NewSession(client, chatsession.Config{})
//	err := sess.Submit(ctx, "What is our external research revenue?")
func NewSession(svc AnsweringService, cfg Config) *Session {
	settings := DefaultSettings()
	if cfg.Settings != nil {
		settings = cfg.Settings.Normalize().Clone()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = nopRecorder{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New().String()

	return &Session{
		id:          id,
		svc:         svc,
		builder:     RequestBuilder{Approach: cfg.Approach},
		timeout:     cfg.Timeout,
		discard:     cfg.DiscardStaleResponses,
		metrics:     metrics,
		logger:      logger.With("session_id", id),
		settings:    settings,
		conv:        NewConversation(),
		subscribers: make(map[int]func(State)),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Settings returns a copy of the current settings.
func (s *Session) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.Clone()
}

// Subscribe registers fn to receive a snapshot after every transition.
// The returned function removes the subscription.
func (s *Session) Subscribe(fn func(State)) (cancel func()) {
	_, cancel = s.Watch(fn)
	return cancel
}

// Watch is Subscribe that also returns the current state. The state and the
// registration are taken under one lock, so every snapshot fn receives is
// newer than the returned one.
func (s *Session) Watch(fn func(State)) (current State, cancel func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	current = s.snapshotLocked()
	s.mu.Unlock()

	return current, func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// =============================================================================
// Submission
// =============================================================================

// Submit asks question and integrates the outcome.
//
// # Outputs
//
//   - nil on success
//   - ErrEmptyQuestion for a blank question (no state change)
//   - the *ServiceError stored on the state when the call failed
//   - nil when the response was discarded as stale
func (s *Session) Submit(ctx context.Context, question string) error {
	if strings.TrimSpace(question) == "" {
		return ErrEmptyQuestion
	}

	// Step 1: request lifecycle fields and panel.
	s.mu.Lock()
	s.lastQuestion = question
	s.err = nil
	s.isLoading = true
	s.panel.Close()
	req := s.builder.Build(s.conv.History(), question, s.settings)
	gen := s.generation
	s.commitLocked()

	// Step 2: exactly one call, outside the lock.
	ctx, span := startSubmitSpan(ctx, s.id, len(req.History)-1)
	defer span.End()
	logger := telemetry.LoggerWithTrace(ctx, s.logger)

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	logger.Debug("submitting question", "history_len", len(req.History)-1, "top", req.Overrides.Top)
	start := time.Now()
	resp, callErr := s.svc.Chat(callCtx, req)
	if callErr == nil && resp.HasError() {
		callErr = &ServiceError{Question: question, Message: resp.Error}
	}
	elapsed := time.Since(start)

	// Steps 3-4: integrate.
	s.mu.Lock()
	s.isLoading = false
	if gen != s.generation && s.discard {
		s.commitLocked()
		logger.Info("discarding response issued before clear",
			"issued_generation", gen, "duration_ms", elapsed.Milliseconds())
		s.metrics.RecordSubmit(OutcomeDiscarded, elapsed)
		recordSubmitOTel(ctx, OutcomeDiscarded, elapsed)
		return nil
	}

	if callErr != nil {
		svcErr := newServiceError(question, callErr)
		s.err = svcErr
		s.commitLocked()

		logger.Error("answering service failed", "error", callErr, "duration_ms", elapsed.Milliseconds())
		telemetry.RecordError(span, callErr)
		s.metrics.RecordSubmit(OutcomeError, elapsed)
		recordSubmitOTel(ctx, OutcomeError, elapsed)
		return svcErr
	}

	s.conv.Append(question, resp)
	turns := s.conv.Len()
	s.commitLocked()

	logger.Info("answer received", "turns", turns, "citations", len(resp.Citations),
		"duration_ms", elapsed.Milliseconds())
	span.SetAttributes(attribute.Int("session.turns", turns))
	telemetry.SetSpanOK(span)
	s.metrics.RecordSubmit(OutcomeSuccess, elapsed)
	s.metrics.SetTurns(s.id, turns)
	recordSubmitOTel(ctx, OutcomeSuccess, elapsed)
	return nil
}

// Retry re-submits the last question. No de-duplication is applied.
func (s *Session) Retry(ctx context.Context) error {
	s.mu.Lock()
	q := s.lastQuestion
	s.mu.Unlock()
	if q == "" {
		return ErrNoLastQuestion
	}
	return s.Submit(ctx, q)
}

// Regenerate re-submits the question of a past turn as a new turn.
func (s *Session) Regenerate(ctx context.Context, turn int) error {
	s.mu.Lock()
	t, ok := s.conv.Turn(turn)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %d", ErrTurnOutOfRange, turn)
	}
	return s.Submit(ctx, t.Question)
}

// AskFollowup submits follow-up question k suggested by the given turn.
func (s *Session) AskFollowup(ctx context.Context, turn, k int) error {
	s.mu.Lock()
	t, ok := s.conv.Turn(turn)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %d", ErrTurnOutOfRange, turn)
	}
	if k < 0 || k >= len(t.Response.FollowupQuestions) {
		return fmt.Errorf("%w: %d", ErrFollowupOutOfRange, k)
	}
	return s.Submit(ctx, t.Response.FollowupQuestions[k])
}

// AskExample submits built-in example question i.
func (s *Session) AskExample(ctx context.Context, i int) error {
	if i < 0 || i >= len(examples) {
		return fmt.Errorf("%w: %d", ErrExampleOutOfRange, i)
	}
	return s.Submit(ctx, examples[i].Value)
}

// Clear empties the conversation and resets the request lifecycle fields and
// the panel. It does not cancel an outstanding request.
func (s *Session) Clear() {
	s.mu.Lock()
	s.conv.Clear()
	s.lastQuestion = ""
	s.err = nil
	s.panel.Reset()
	s.generation++
	gen := s.generation
	s.commitLocked()

	s.logger.Info("conversation cleared", "generation", gen)
	s.metrics.RecordClear()
	s.metrics.SetTurns(s.id, 0)
}

// =============================================================================
// Analysis panel
// =============================================================================

// ToggleTab opens tab for turn, or closes the panel when it already shows
// exactly that tab for that turn.
func (s *Session) ToggleTab(tab Tab, turn int) error {
	if tab == TabNone {
		return fmt.Errorf("%w: empty tab", ErrUnknownTab)
	}
	s.mu.Lock()
	if turn < 0 || turn >= s.conv.Len() {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrTurnOutOfRange, turn)
	}
	s.panel.Toggle(tab, turn)
	open := s.panel.State().IsOpen()
	s.commitLocked()

	s.metrics.RecordPanel(string(tab), open)
	return nil
}

// ChangeTab switches the panel to tab for the currently selected turn.
func (s *Session) ChangeTab(tab Tab) error {
	s.mu.Lock()
	turn := s.panel.State().SelectedTurn
	s.mu.Unlock()
	return s.ToggleTab(tab, turn)
}

// SelectCitation shows citation c of turn, or closes the panel when that
// citation of that turn is already showing.
func (s *Session) SelectCitation(c datatypes.Citation, turn int) error {
	s.mu.Lock()
	if turn < 0 || turn >= s.conv.Len() {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrTurnOutOfRange, turn)
	}
	s.panel.SelectCitation(c, turn)
	open := s.panel.State().IsOpen()
	s.commitLocked()

	s.metrics.RecordPanel(string(TabCitation), open)
	return nil
}

// SelectCitationByID looks the citation up in the turn's response and
// selects it.
func (s *Session) SelectCitationByID(turn int, id string) error {
	s.mu.Lock()
	t, ok := s.conv.Turn(turn)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %d", ErrTurnOutOfRange, turn)
	}
	c, ok := t.Response.Citation(id)
	if !ok {
		return fmt.Errorf("%w: %q in turn %d", ErrCitationNotFound, id, turn)
	}
	return s.SelectCitation(c, turn)
}

// =============================================================================
// Settings and auxiliary panels
// =============================================================================

// UpdateSettings applies fn to a copy of the settings and stores the
// normalized result. Requests already in flight keep the settings they were
// built with.
func (s *Session) UpdateSettings(fn func(*Settings)) Settings {
	s.mu.Lock()
	next := s.settings.Clone()
	fn(&next)
	s.settings = next.Normalize()
	out := s.settings.Clone()
	s.commitLocked()
	return out
}

// ToggleConfigPanel opens or closes the settings panel.
func (s *Session) ToggleConfigPanel() {
	s.mu.Lock()
	s.configPanelOpen = !s.configPanelOpen
	s.commitLocked()
}

// ToggleInfoPanel opens or closes the information panel.
func (s *Session) ToggleInfoPanel() {
	s.mu.Lock()
	s.infoPanelOpen = !s.infoPanelOpen
	s.commitLocked()
}

// =============================================================================
// Internals
// =============================================================================

// commitLocked snapshots the state, releases mu and notifies subscribers.
// notifyMu is taken before mu is released so deliveries keep transition order.
func (s *Session) commitLocked() {
	snap := s.snapshotLocked()
	subs := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func (s *Session) snapshotLocked() State {
	st := State{
		SessionID:       s.id,
		Generation:      s.generation,
		Settings:        s.settings.Clone(),
		Turns:           s.conv.Turns(),
		LastQuestion:    s.lastQuestion,
		IsLoading:       s.isLoading,
		Panel:           s.panel.State(),
		ConfigPanelOpen: s.configPanelOpen,
		InfoPanelOpen:   s.infoPanelOpen,
		err:             s.err,
	}
	if st.Turns == nil {
		st.Turns = []Turn{}
	}
	if s.err != nil {
		st.ErrorMessage = s.err.Error()
	}
	return st
}
