// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/AleutianAsk/pkg/logging"
	"github.com/AleutianAI/AleutianAsk/pkg/telemetry"
	"github.com/AleutianAI/AleutianAsk/services/chatsession"
	"github.com/AleutianAI/AleutianAsk/services/chatsession/datatypes"
)

// AskConfig is the contents of ~/.aleutian/ask.yaml.
type AskConfig struct {
	// Answering: where questions are sent
	Answering AnsweringConfig `yaml:"answering"`

	// Settings: defaults for new sessions
	Settings chatsession.Settings `yaml:"settings"`

	// Session: request lifecycle behaviour
	Session SessionConfig `yaml:"session"`

	// Server: the presentation API started by `ask serve`
	Server ServerConfig `yaml:"server"`

	Logging   LoggingConfig    `yaml:"logging"`
	Telemetry telemetry.Config `yaml:"telemetry"`

	// Personality: full, standard, minimal or machine
	Personality string `yaml:"personality" validate:"omitempty,oneof=full standard minimal machine"`
}

type AnsweringConfig struct {
	BaseURL           string             `yaml:"base_url" validate:"required,url"`
	ChatPath          string             `yaml:"chat_path,omitempty"`
	Approach          datatypes.Approach `yaml:"approach" validate:"omitempty,oneof=rtr rrr rda"`
	RequestsPerSecond float64            `yaml:"requests_per_second" validate:"gte=0"`
}

type SessionConfig struct {
	// Timeout bounds each answering call; 0 disables the local timeout.
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`

	// DiscardStaleResponses drops answers to questions asked before a clear.
	DiscardStaleResponses bool `yaml:"discard_stale_responses"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir,omitempty"`
	JSON  bool   `yaml:"json"`
}

var validate = validator.New()

// Validate checks the fields a hand-edited file is likely to get wrong.
// Settings are not validated: they are normalized on use.
func (c AskConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid config: logging.level: %w", err)
	}
	return nil
}

// SessionSettings returns the configured settings normalized.
func (c AskConfig) SessionSettings() chatsession.Settings {
	return c.Settings.Normalize()
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() AskConfig {
	return AskConfig{
		Answering: AnsweringConfig{
			BaseURL:  "http://localhost:5000",
			ChatPath: "/chat",
			Approach: datatypes.ApproachReadRetrieveRead,
		},
		Settings: chatsession.DefaultSettings(),
		Session: SessionConfig{
			Timeout: 2 * time.Minute,
		},
		Server: ServerConfig{
			Addr: ":8090",
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "~/.aleutian/logs",
		},
		Telemetry:   telemetry.DefaultConfig(),
		Personality: "full",
	}
}
