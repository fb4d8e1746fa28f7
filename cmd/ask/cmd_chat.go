// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianAsk/pkg/telemetry"
	"github.com/AleutianAI/AleutianAsk/pkg/ux"
	"github.com/AleutianAI/AleutianAsk/services/chatsession"
)

func runChatCommand(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Init(ctx, appConfig.Telemetry)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer flushTelemetry(shutdown)

	logger := slog.Default()
	sess := chatsession.NewSession(newAnsweringClient(appConfig), sessionConfig(appConfig, nil, nil, logger))
	logger.Info("chat started", "session_id", sess.ID(), "base_url", appConfig.Answering.BaseURL)

	var editor SettingsEditor
	if ux.IsInteractive() {
		editor = formSettingsEditor{}
	}
	runner := NewChatRunner(ChatRunnerConfig{
		Session:     sess,
		Input:       NewInteractiveInputReader(100),
		Output:      os.Stdout,
		Personality: ux.GetPersonality(),
		Editor:      editor,
		Logger:      logger,
	})
	defer runner.Close()

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("chat: %w", err)
	}
	return nil
}

func runAskCommand(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Init(ctx, appConfig.Telemetry)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer flushTelemetry(shutdown)

	sess := chatsession.NewSession(newAnsweringClient(appConfig), sessionConfig(appConfig, nil, nil, slog.Default()))
	return askOnce(ctx, sess, strings.Join(args, " "), cmd.OutOrStdout(), askJSON, ux.GetPersonality())
}

// askOnce submits one question and prints the answer. A failed submission
// is printed and returned so the process exits non-zero.
func askOnce(ctx context.Context, sess *chatsession.Session, question string, w io.Writer, asJSON bool, personality ux.PersonalityLevel) error {
	err := ux.WithSpinner(os.Stderr, personality, "Asking", func() error {
		return sess.Submit(ctx, question)
	})
	if err != nil {
		if !asJSON {
			ux.NewChatUIWithWriter(w, personality).Error(err)
		}
		return err
	}

	st := sess.State()
	if len(st.Turns) == 0 {
		return errors.New("no answer received")
	}
	last := len(st.Turns) - 1
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(st.Turns[last].Response)
	}
	ux.NewChatUIWithWriter(w, personality).Turn(last, st.Turns[last], st.ShowFollowups(last))
	return nil
}

func flushTelemetry(shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		slog.Warn("telemetry shutdown failed", "error", err)
	}
}
