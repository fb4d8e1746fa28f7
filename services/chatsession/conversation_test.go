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
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianAsk/services/chatsession/datatypes"
)

func TestConversation_AppendKeepsOrder(t *testing.T) {
	c := NewConversation()
	for _, q := range []string{"a", "b", "c"} {
		c.Append(q, datatypes.AskResponse{Answer: "answer " + q})
	}

	require.Equal(t, 3, c.Len())
	got := slices.Collect(c.History())
	assert.Equal(t, []HistoryEntry{
		{User: "a", Bot: "answer a"},
		{User: "b", Bot: "answer b"},
		{User: "c", Bot: "answer c"},
	}, got)

	turn, ok := c.Turn(1)
	require.True(t, ok)
	assert.Equal(t, "b", turn.Question)

	_, ok = c.Turn(3)
	assert.False(t, ok)
	_, ok = c.Turn(-1)
	assert.False(t, ok)
}

func TestConversation_ClearIsIdempotent(t *testing.T) {
	c := conversationWith("q", "a")
	c.Clear()
	assert.Equal(t, 0, c.Len())
	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, slices.Collect(c.History()))
}

func TestConversation_TurnsIsACopy(t *testing.T) {
	c := conversationWith("q", "a")
	turns := c.Turns()
	turns[0].Question = "changed"

	turn, _ := c.Turn(0)
	assert.Equal(t, "q", turn.Question)
}

func TestConversation_HistoryStopsEarly(t *testing.T) {
	c := conversationWith("q1", "a1", "q2", "a2", "q3", "a3")
	var seen []string
	for h := range c.History() {
		seen = append(seen, h.User)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"q1", "q2"}, seen)
}
