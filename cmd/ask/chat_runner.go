// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package main is the ask CLI: an interactive chat over the answering
// service, a one-shot ask command and the session API server.
//
// Architecture:
//
//	cmd_chat.go → ChatRunner → chatsession.Session → answering.Client
//	                  ↓
//	             InputReader (stdin or bubbletea)
//	             ux.ChatUI  (rendering by personality level)
package main

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/AleutianAI/AleutianAsk/pkg/ux"
	"github.com/AleutianAI/AleutianAsk/services/chatsession"
)

// =============================================================================
// ChatRunner Interface
// =============================================================================

// ChatRunner runs an interactive chat loop.
//
// # Description
//
// Run reads prompt lines, applies each one to the session and renders the
// resulting state. It returns nil when the user exits or input ends, and
// ctx.Err() when the context is cancelled.
//
// # Examples
//
//	runner := NewChatRunner(ChatRunnerConfig{Session: sess, Input: NewStdinReader(os.Stdin)})
//	defer runner.Close()
//	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
//	    return err
//	}
//
// # Limitations
//
//   - Not reusable after Run returns
//   - One question is outstanding at a time; the loop waits for each answer
type ChatRunner interface {
	Run(ctx context.Context) error
	Close() error
}

// ChatRunnerConfig configures a chat runner. Session is required; the other
// fields fall back to terminal defaults.
type ChatRunnerConfig struct {
	Session     *chatsession.Session
	Input       InputReader
	Output      io.Writer
	Personality ux.PersonalityLevel
	Editor      SettingsEditor
	Logger      *slog.Logger
}

// sessionChatRunner drives a chatsession.Session from prompt commands.
type sessionChatRunner struct {
	session     *chatsession.Session
	input       InputReader
	out         io.Writer
	personality ux.PersonalityLevel
	ui          ux.ChatUI
	printer     *ux.Printer
	editor      SettingsEditor
	logger      *slog.Logger
}

// NewChatRunner creates a runner for cfg.Session.
func NewChatRunner(cfg ChatRunnerConfig) ChatRunner {
	out := cfg.Output
	if out == nil {
		out = io.Discard
	}
	personality := cfg.Personality
	if personality == "" {
		personality = ux.GetPersonality()
	}
	input := cfg.Input
	if input == nil {
		input = NewInteractiveInputReader(100)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &sessionChatRunner{
		session:     cfg.Session,
		input:       input,
		out:         out,
		personality: personality,
		ui:          ux.NewChatUIWithWriter(out, personality),
		printer:     ux.NewPrinter(out, personality),
		editor:      cfg.Editor,
		logger:      logger.With("session_id", cfg.Session.ID()),
	}
}

// Run executes the chat loop.
func (r *sessionChatRunner) Run(ctx context.Context) error {
	st := r.session.State()
	r.ui.Header(st)
	if st.IsEmpty() {
		r.ui.Empty(chatsession.Examples())
	}

	for {
		if err := ctx.Err(); err != nil {
			r.ui.SessionEnd(r.session.State())
			return err
		}

		line, err := r.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.ui.SessionEnd(r.session.State())
				return nil
			}
			return err
		}
		if line == "" {
			continue
		}

		cmd, err := parseCommand(line)
		if err != nil {
			r.printer.Warning(err.Error())
			continue
		}
		if cmd.kind == cmdExit {
			r.ui.SessionEnd(r.session.State())
			return nil
		}
		r.dispatch(ctx, cmd)
	}
}

// Close is a no-op; the session holds no resources of its own.
func (r *sessionChatRunner) Close() error {
	return nil
}

func (r *sessionChatRunner) readLine() (string, error) {
	if p, ok := r.input.(PromptingInputReader); ok {
		p.SetPrompt(r.ui.Prompt())
	} else {
		_, _ = io.WriteString(r.out, r.ui.Prompt())
	}
	return r.input.ReadLine()
}

// dispatch applies one command. Errors are reported to the user; none of
// them ends the loop.
func (r *sessionChatRunner) dispatch(ctx context.Context, cmd chatCommand) {
	switch cmd.kind {
	case cmdAsk:
		r.submit(cmd.question, func() error { return r.session.Submit(ctx, cmd.question) })
	case cmdRetry:
		q := r.session.State().LastQuestion
		r.submit(q, func() error { return r.session.Retry(ctx) })
	case cmdRegen:
		r.submit("regenerating", func() error { return r.session.Regenerate(ctx, cmd.turn) })
	case cmdFollowup:
		r.submit("follow-up", func() error { return r.session.AskFollowup(ctx, cmd.turn, cmd.index) })
	case cmdExample:
		r.submit("example", func() error { return r.session.AskExample(ctx, cmd.index) })

	case cmdClear:
		r.session.Clear()
		r.ui.Cleared()
		r.ui.Empty(chatsession.Examples())

	case cmdCite:
		r.panel(r.selectCitation(cmd.turn, cmd.index))
	case cmdThoughts:
		r.panel(r.session.ToggleTab(chatsession.TabThoughtProcess, cmd.turn))
	case cmdSupport:
		r.panel(r.session.ToggleTab(chatsession.TabSupportingContent, cmd.turn))
	case cmdTab:
		if len(r.session.State().Turns) == 0 {
			r.printer.Warning("nothing to show yet, ask a question first")
			return
		}
		r.panel(r.session.ChangeTab(cmd.tab))

	case cmdSettings:
		r.editSettings()
	case cmdConfig:
		r.session.ToggleConfigPanel()
		if st := r.session.State(); st.ConfigPanelOpen {
			r.ui.Settings(st.Settings)
		} else {
			r.printer.Muted("Settings panel closed.")
		}
	case cmdInfo:
		r.session.ToggleInfoPanel()
		if r.session.State().InfoPanelOpen {
			r.ui.Info()
		} else {
			r.printer.Muted("Information panel closed.")
		}
	case cmdExamples:
		r.ui.Empty(chatsession.Examples())
	case cmdHistory:
		r.ui.Conversation(r.session.State())
	case cmdHelp:
		r.ui.Help()
	}
}

// submit runs fn with a spinner and renders the latest turn or the failure.
func (r *sessionChatRunner) submit(label string, fn func() error) {
	before := r.session.State().Generation
	err := ux.WithSpinner(r.out, r.personality, label, fn)

	var svcErr *chatsession.ServiceError
	switch {
	case errors.As(err, &svcErr):
		r.ui.Error(svcErr)
		return
	case err != nil:
		r.printer.Warning(err.Error())
		return
	}

	st := r.session.State()
	if st.Generation != before || len(st.Turns) == 0 {
		return
	}
	last := len(st.Turns) - 1
	r.ui.Turn(last, st.Turns[last], st.ShowFollowups(last))
}

func (r *sessionChatRunner) selectCitation(turn, index int) error {
	st := r.session.State()
	if turn < 0 || turn >= len(st.Turns) {
		return chatsession.ErrTurnOutOfRange
	}
	citations := st.Turns[turn].Response.Citations
	if index < 0 || index >= len(citations) {
		return chatsession.ErrCitationNotFound
	}
	return r.session.SelectCitation(citations[index], turn)
}

// panel renders the analysis panel after a toggle.
func (r *sessionChatRunner) panel(err error) {
	if err != nil {
		r.printer.Warning(err.Error())
		return
	}
	st := r.session.State()
	if !st.ShowAnalysisPanel() {
		r.printer.Muted("Analysis panel closed.")
		return
	}
	r.ui.AnalysisPanel(st)
}

func (r *sessionChatRunner) editSettings() {
	if r.editor == nil || r.personality == ux.PersonalityMachine {
		r.ui.Settings(r.session.Settings())
		r.printer.Muted("Edit the config file or use the session API to change settings.")
		return
	}
	patch, err := r.editor.Edit(r.session.Settings())
	if err != nil {
		if errors.Is(err, errEditCancelled) {
			r.printer.Muted("Settings unchanged.")
			return
		}
		r.printer.Warning(err.Error())
		return
	}
	updated := r.session.UpdateSettings(patch.Apply)
	r.logger.Info("settings updated",
		"retrieve_count", updated.RetrieveCount,
		"response_length", updated.ResponseLength,
		"response_temp", updated.ResponseTemp)
	r.ui.Settings(updated)
}
