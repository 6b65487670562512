// Package protocol defines the wire envelopes exchanged with clients:
// intents in, a snapshot plus incremental patches out. Dungeon payload
// types already carry their wire-ready JSON tags and are embedded
// directly rather than copied into parallel structs.
package protocol

import (
	"encoding/json"

	"github.com/mossgate/delver-engine/internal/geometry"
)

// Intent type discriminators.
const (
	IntentNewDungeon = "RequestNewDungeon"
	IntentOpenDoor   = "RequestOpenDoor"
)

// IntentEnvelope wraps every client-to-server message. Payload decoding
// is deferred until the type is known.
type IntentEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// RequestNewDungeon discards the current session and generates a fresh
// entrance. GridSize overrides the server default when positive.
type RequestNewDungeon struct {
	GridSize int `json:"gridSize,omitempty"`
}

// RequestOpenDoor opens one of an element's doors, triggering
// generation behind it if nothing is there yet.
type RequestOpenDoor struct {
	DoorID    string                 `json:"doorId"`
	ElementID string                 `json:"elementId"`
	Position  geometry.Position      `json:"position"`
	Direction geometry.ExitDirection `json:"direction"`
}
