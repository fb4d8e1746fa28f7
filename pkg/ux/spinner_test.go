// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner_Machine(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner(&buf, PersonalityMachine, "asking")
	s.Start()
	s.Start()
	s.Stop()
	s.Stop()

	assert.Equal(t, "PENDING: asking\n", buf.String())
}

func TestSpinner_Animates(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner(&buf, PersonalityFull, "asking")
	s.Start()
	assert.Eventually(t, func() bool {
		return strings.Contains(buf.String(), "asking")
	}, 2*time.Second, 10*time.Millisecond)

	s.UpdateMessage("still asking")
	s.Stop()
	assert.True(t, strings.HasSuffix(buf.String(), "\r\033[K"))
}

func TestSpinner_RestartAfterStop(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner(&buf, PersonalityStandard, "x")
	s.Start()
	s.Stop()
	s.Start()
	s.Stop()
}

func TestWithSpinner(t *testing.T) {
	var buf syncBuffer
	want := errors.New("boom")

	err := WithSpinner(&buf, PersonalityMachine, "asking", func() error { return want })
	assert.ErrorIs(t, err, want)
	assert.NoError(t, WithSpinner(&buf, PersonalityMachine, "asking", func() error { return nil }))
}
