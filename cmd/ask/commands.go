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
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianAsk/cmd/ask/config"
	"github.com/AleutianAI/AleutianAsk/pkg/logging"
	"github.com/AleutianAI/AleutianAsk/pkg/ux"
	"github.com/AleutianAI/AleutianAsk/services/chatsession"
	"github.com/AleutianAI/AleutianAsk/services/chatsession/answering"
)

// --- Global Command Variables ---
var (
	configPath       string
	baseURLFlag      string
	logLevelFlag     string
	logDirFlag       string
	jsonLogs         bool
	personalityLevel string // UX personality level (full/standard/minimal/machine)
	askJSON          bool

	// appConfig and appLogger are set by the root PersistentPreRunE.
	appConfig config.AskConfig
	appLogger *logging.Logger

	rootCmd = &cobra.Command{
		Use:   "ask",
		Short: "Chat with your documents through the Aleutian answering service",
		Long: `ask is a chat client for a retrieval-augmented answering service.
It keeps the conversation, settings and analysis panel of a session and
can serve the same sessions over HTTP for other front ends.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appLogger != nil {
				_ = appLogger.Close()
			}
		},
	}

	chatCmd = &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Args:  cobra.NoArgs,
		RunE:  runChatCommand, // Defined in cmd_chat.go
	}

	askCmd = &cobra.Command{
		Use:     "query [question]",
		Aliases: []string{"q"},
		Short:   "Ask a single question and print the answer",
		Args:    cobra.MinimumNArgs(1),
		RunE:    runAskCommand, // Defined in cmd_chat.go
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve chat sessions over HTTP and websocket",
		Args:  cobra.NoArgs,
		RunE:  runServeCommand, // Defined in cmd_serve.go
	}

	settingsCmd = &cobra.Command{
		Use:   "settings",
		Short: "Show the default settings for new sessions",
		Args:  cobra.NoArgs,
		Run:   runSettingsCommand, // Defined in cmd_settings.go
	}

	examplesCmd = &cobra.Command{
		Use:   "examples",
		Short: "List the example questions",
		Args:  cobra.NoArgs,
		Run:   runExamplesCommand, // Defined in cmd_settings.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file (default $ASK_CONFIG or ~/.aleutian/ask.yaml)")
	rootCmd.PersistentFlags().StringVar(&baseURLFlag, "base-url", "", "Answering service base URL")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logDirFlag, "log-dir", "", "Directory for log files")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Write console logs as JSON")
	rootCmd.PersistentFlags().StringVar(&personalityLevel, "personality", "",
		"Output style: full, standard, minimal, machine")

	askCmd.Flags().BoolVar(&askJSON, "json", false, "Print the raw answer as JSON")

	rootCmd.AddCommand(chatCmd, askCmd, serveCmd, settingsCmd, examplesCmd)
}

// setup loads the config, applies flag overrides and installs the logger
// and personality level.
func setup(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := applyFlagOverrides(&cfg); err != nil {
		return err
	}
	appConfig = cfg
	configPath = path

	level, _ := logging.ParseLevel(cfg.Logging.Level)
	appLogger = logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.Logging.Dir,
		Service: "ask",
		JSON:    cfg.Logging.JSON,
		// The interactive chat draws on the terminal; keep logs in the file.
		Quiet: cmd.Name() == "chat" && cfg.Logging.Dir != "",
	})
	appLogger.SetDefault()

	ux.InitPersonality(cfg.Personality)
	return nil
}

// applyFlagOverrides copies set flags over cfg and validates the result.
func applyFlagOverrides(cfg *config.AskConfig) error {
	if baseURLFlag != "" {
		cfg.Answering.BaseURL = baseURLFlag
	}
	if logLevelFlag != "" {
		cfg.Logging.Level = logLevelFlag
	}
	if logDirFlag != "" {
		cfg.Logging.Dir = logDirFlag
	}
	if jsonLogs {
		cfg.Logging.JSON = true
	}
	if personalityLevel != "" {
		cfg.Personality = personalityLevel
	}
	return cfg.Validate()
}

// newAnsweringClient builds the HTTP client for cfg.
func newAnsweringClient(cfg config.AskConfig) *answering.Client {
	return answering.NewClient(answering.Config{
		BaseURL:           cfg.Answering.BaseURL,
		ChatPath:          cfg.Answering.ChatPath,
		RequestsPerSecond: cfg.Answering.RequestsPerSecond,
	})
}

// sessionConfig maps the file config onto a session config. settings
// overrides the configured defaults when non-nil.
func sessionConfig(cfg config.AskConfig, settings *chatsession.Settings, metrics chatsession.MetricsRecorder, logger *slog.Logger) chatsession.Config {
	if settings == nil {
		s := cfg.SessionSettings()
		settings = &s
	}
	return chatsession.Config{
		Settings:              settings,
		Approach:              cfg.Answering.Approach,
		DiscardStaleResponses: cfg.Session.DiscardStaleResponses,
		Timeout:               cfg.Session.Timeout,
		Metrics:               metrics,
		Logger:                logger,
	}
}
