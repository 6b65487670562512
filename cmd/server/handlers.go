package main

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"

	"github.com/mossgate/delver-engine/internal/protocol"
)

// handleSnapshot serves the full state as JSON. Clients use it for the
// initial render and to resync after a dropped stream.
func (s *Session) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Snapshot()); err != nil {
		s.log.WithError(err).Error("snapshot encode failed")
	}
}

// handleStream upgrades to a websocket, sends a snapshot frame, and
// reads intents until the connection drops.
func (s *Session) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		return
	}
	s.hub.Add(conn)

	hello, err := json.Marshal(protocol.PatchEnvelope{
		Type:    protocol.PatchSnapshot,
		Payload: s.Snapshot(),
	})
	if err == nil {
		_ = conn.Write(r.Context(), websocket.MessageText, hello)
	}

	go s.readLoop(conn)
}

func (s *Session) readLoop(conn *websocket.Conn) {
	defer s.hub.Remove(conn)
	defer conn.Close(websocket.StatusNormalClosure, "")

	for {
		_, data, err := conn.Read(context.Background())
		if err != nil {
			return
		}
		var env protocol.IntentEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.log.WithError(err).Debug("malformed intent envelope")
			continue
		}

		switch env.Type {
		case protocol.IntentNewDungeon:
			var req protocol.RequestNewDungeon
			if err := json.Unmarshal(env.Payload, &req); err != nil {
				continue
			}
			s.NewDungeon(req.GridSize)

		case protocol.IntentOpenDoor:
			var req protocol.RequestOpenDoor
			if err := json.Unmarshal(env.Payload, &req); err != nil {
				continue
			}
			if req.DoorID == "" || req.ElementID == "" {
				continue
			}
			s.OpenDoor(req)

		default:
			s.log.WithField("type", env.Type).Debug("unknown intent")
		}
	}
}
