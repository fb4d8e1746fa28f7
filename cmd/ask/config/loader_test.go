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
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/AleutianAsk/services/chatsession"
	"github.com/AleutianAI/AleutianAsk/services/chatsession/datatypes"
)

// TestCreateDefault verifies default config creation.
func TestCreateDefault(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".aleutian", "ask.yaml")

	require.NoError(t, createDefault(configPath))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)

	var cfg AskConfig
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, "http://localhost:5000", cfg.Answering.BaseURL)
	assert.Equal(t, datatypes.ApproachReadRetrieveRead, cfg.Answering.Approach)
	assert.Equal(t, 2*time.Minute, cfg.Session.Timeout)
	assert.Equal(t, chatsession.DefaultRetrieveCount, cfg.Settings.RetrieveCount)
}

func TestLoad_FirstRun(t *testing.T) {
	t.Setenv(BaseURLEnv, "")
	path := filepath.Join(t.TempDir(), "nested", "ask.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.FileExists(t, path)

	want := DefaultConfig()
	assert.Equal(t, want.Answering, cfg.Answering)
	assert.Equal(t, want.Settings, cfg.Settings)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		check   func(t *testing.T, cfg AskConfig)
	}{
		{
			name: "partial file keeps defaults",
			yaml: "answering:\n  base_url: http://rag:9000\n",
			check: func(t *testing.T, cfg AskConfig) {
				assert.Equal(t, "http://rag:9000", cfg.Answering.BaseURL)
				assert.Equal(t, ":8090", cfg.Server.Addr)
				assert.Equal(t, chatsession.DefaultResponseLength, cfg.Settings.ResponseLength)
			},
		},
		{
			name: "settings and session",
			yaml: "settings:\n  retrieve_count: 80\n  response_temp: 1.0\n" +
				"session:\n  timeout: 45s\n  discard_stale_responses: true\n",
			check: func(t *testing.T, cfg AskConfig) {
				assert.Equal(t, 45*time.Second, cfg.Session.Timeout)
				assert.True(t, cfg.Session.DiscardStaleResponses)
				s := cfg.SessionSettings()
				assert.Equal(t, datatypes.MaxRetrieveCount, s.RetrieveCount)
				assert.Equal(t, 1.0, s.ResponseTemp)
			},
		},
		{
			name:    "bad approach",
			yaml:    "answering:\n  base_url: http://x\n  approach: zzz\n",
			wantErr: true,
		},
		{
			name:    "bad url",
			yaml:    "answering:\n  base_url: not a url\n",
			wantErr: true,
		},
		{
			name:    "bad log level",
			yaml:    "logging:\n  level: loud\n",
			wantErr: true,
		},
		{
			name:    "bad personality",
			yaml:    "personality: chatty\n",
			wantErr: true,
		},
		{
			name:    "negative rate",
			yaml:    "answering:\n  base_url: http://x\n  requests_per_second: -1\n",
			wantErr: true,
		},
		{
			name:    "not yaml",
			yaml:    "answering: [\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(BaseURLEnv, "")
			cfg, err := Parse([]byte(tt.yaml))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestParse_EnvOverride(t *testing.T) {
	t.Setenv(BaseURLEnv, "http://override:1234")

	cfg, err := Parse([]byte("answering:\n  base_url: http://file:1\n"))
	require.NoError(t, err)
	assert.Equal(t, "http://override:1234", cfg.Answering.BaseURL)
}

func TestDefaultPath_Env(t *testing.T) {
	t.Setenv(PathEnv, "/tmp/custom.yaml")
	p, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.yaml", p)
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	t.Setenv(BaseURLEnv, "")
	path := filepath.Join(t.TempDir(), "ask.yaml")
	require.NoError(t, createDefault(path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan AskConfig, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg AskConfig) { changes <- cfg })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("answering:\n  base_url: http://changed:1\n"), 0600))

	// Truncation may be observed as its own write, so wait for the final one.
	deadline := time.After(5 * time.Second)
	for seen := false; !seen; {
		select {
		case cfg := <-changes:
			seen = cfg.Answering.BaseURL == "http://changed:1"
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}

	cancel()
	assert.NoError(t, <-done)
}
