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
	"iter"
	"slices"

	"github.com/AleutianAI/AleutianAsk/services/chatsession/datatypes"
)

// Turn is one completed question/answer exchange. Turns are never modified
// after they are appended.
type Turn struct {
	Question string                `json:"question"`
	Response datatypes.AskResponse `json:"response"`
}

// HistoryEntry is a past exchange as sent to the answering service.
type HistoryEntry struct {
	User string
	Bot  string
}

// Conversation is the ordered, append-only record of completed turns.
//
// # Description
//
// Turns are stored in the order their responses arrived. A conversation only
// grows through Append and only shrinks, to empty, through Clear.
//
// # Thread Safety
//
// Not safe for concurrent use. Session serializes access.
type Conversation struct {
	turns []Turn
}

// NewConversation returns an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// Append adds a turn at the end.
func (c *Conversation) Append(question string, response datatypes.AskResponse) {
	c.turns = append(c.turns, Turn{Question: question, Response: response})
}

// Clear removes every turn. Clearing an empty conversation is a no-op.
func (c *Conversation) Clear() {
	c.turns = nil
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	return len(c.turns)
}

// Turn returns the turn at index i.
func (c *Conversation) Turn(i int) (Turn, bool) {
	if i < 0 || i >= len(c.turns) {
		return Turn{}, false
	}
	return c.turns[i], true
}

// Turns returns a copy of every turn in order.
func (c *Conversation) Turns() []Turn {
	return slices.Clone(c.turns)
}

// History yields the past exchanges in order. The sequence reflects the
// conversation at the time History is called.
func (c *Conversation) History() iter.Seq[HistoryEntry] {
	turns := c.turns
	return func(yield func(HistoryEntry) bool) {
		for _, t := range turns {
			if !yield(HistoryEntry{User: t.Question, Bot: t.Response.Answer}) {
				return
			}
		}
	}
}
