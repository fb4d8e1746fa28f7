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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// PathEnv overrides the config file location.
	PathEnv = "ASK_CONFIG"

	// BaseURLEnv overrides answering.base_url.
	BaseURLEnv = "ASK_BASE_URL"
)

// DefaultPath returns $ASK_CONFIG or ~/.aleutian/ask.yaml.
func DefaultPath() (string, error) {
	if p := os.Getenv(PathEnv); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the user's home directory: %w", err)
	}
	return filepath.Join(home, ".aleutian", "ask.yaml"), nil
}

// Load reads and validates the config at path, creating it with defaults on
// first run. Keys missing from the file keep their default values.
func Load(path string) (AskConfig, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		slog.Info("first run detected, creating the config", "path", path)
		if err := createDefault(path); err != nil {
			return AskConfig{}, err
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return AskConfig{}, fmt.Errorf("failed to read the config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults, applies environment overrides and
// validates the result.
func Parse(data []byte) (AskConfig, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AskConfig{}, fmt.Errorf("failed to parse the config: %w", err)
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return AskConfig{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *AskConfig) {
	if v := os.Getenv(BaseURLEnv); v != "" {
		cfg.Answering.BaseURL = v
	}
}

func createDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
