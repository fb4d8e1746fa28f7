// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"sort"
	"sync"

	"github.com/AleutianAI/AleutianAsk/services/chatsession"
)

// SessionFactory creates a session from the configured default settings.
// A non-nil configure adjusts those defaults before the session starts.
type SessionFactory func(configure func(*chatsession.Settings)) *chatsession.Session

// SessionStore holds the live sessions of a presentation API process.
// Sessions are independent; the store lock only guards the map.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*chatsession.Session
	factory  SessionFactory
}

// NewSessionStore creates an empty store.
func NewSessionStore(factory SessionFactory) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*chatsession.Session),
		factory:  factory,
	}
}

// Create starts a new session and registers it.
func (s *SessionStore) Create(configure func(*chatsession.Settings)) *chatsession.Session {
	sess := s.factory(configure)
	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()
	return sess
}

// Get returns the session with the given ID.
func (s *SessionStore) Get(id string) (*chatsession.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Delete forgets a session. Outstanding requests still complete.
func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

// IDs returns the live session IDs in sorted order.
func (s *SessionStore) IDs() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)
	return ids
}
