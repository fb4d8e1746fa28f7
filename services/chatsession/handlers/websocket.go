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
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/AleutianAI/AleutianAsk/services/chatsession"
)

const (
	// streamBuffer is how many snapshots may queue for a slow client before
	// older ones are dropped.
	streamBuffer = 16

	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 64 * 1024,
}

// StreamEvent is one websocket message.
type StreamEvent struct {
	Type  string            `json:"type"`
	State chatsession.State `json:"state"`
}

// StreamSession pushes a state snapshot to the client after every transition
// of the session. The first message is the current state and every later
// message is newer than it.
//
// # Description
//
// The subscription callback never blocks the session: snapshots go through a
// bounded queue and, when the client falls behind, the oldest queued snapshot
// is dropped since every snapshot is complete. The connection closes when
// the client disconnects or the request context ends.
func StreamSession(store *SessionStore) gin.HandlerFunc {
	return withSession(store, func(c *gin.Context, sess *chatsession.Session) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("failed to upgrade the websocket", "error", err)
			return
		}
		defer ws.Close()
		slog.Info("state stream connected", "session_id", sess.ID())

		updates := make(chan chatsession.State, streamBuffer)
		current, cancel := sess.Watch(func(st chatsession.State) {
			for {
				select {
				case updates <- st:
					return
				default:
				}
				select {
				case <-updates:
				default:
				}
			}
		})
		defer cancel()

		// Reader goroutine: detects client disconnect.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := ws.ReadMessage(); err != nil {
					return
				}
			}
		}()

		if err := sendEvent(ws, "snapshot", current); err != nil {
			return
		}

		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for {
			select {
			case st := <-updates:
				if err := sendEvent(ws, "state", st); err != nil {
					return
				}
			case <-ticker.C:
				_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
				if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-closed:
				slog.Info("state stream disconnected", "session_id", sess.ID())
				return
			case <-c.Request.Context().Done():
				return
			}
		}
	})
}

func sendEvent(ws *websocket.Conn, typ string, st chatsession.State) error {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	err := ws.WriteJSON(StreamEvent{Type: typ, State: st})
	if err != nil {
		slog.Warn("Failed to write WebSocket JSON", "error", err)
	}
	return err
}
