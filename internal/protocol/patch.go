package protocol

import "github.com/mossgate/delver-engine/internal/dungeon"

// Patch type discriminators.
const (
	PatchMapUpdated        = "MapUpdated"
	PatchDoorStateChanged  = "DoorStateChanged"
	PatchRoomsRevealed     = "RoomsRevealed"
	PatchCorridorsRevealed = "CorridorsRevealed"
	PatchErrorNotice       = "ErrorNotice"
	PatchSnapshot          = "Snapshot"
)

// PatchEnvelope wraps every server-to-client update. Sequence is
// per-connection-session monotonic; EventID orders patches globally.
type PatchEnvelope struct {
	Sequence uint64 `json:"seq"`
	EventID  int64  `json:"eventId"`
	Type     string `json:"type"`
	Payload  any    `json:"payload"`
}

// MapUpdated carries the full regenerated map plus exploration state.
// Sent after every mutating intent; clients treat it as authoritative.
type MapUpdated struct {
	Map         *dungeon.DungeonMap       `json:"map"`
	Exploration *dungeon.ExplorationState `json:"exploration"`
}

type DoorStateChanged struct {
	DoorID string            `json:"doorId"`
	State  dungeon.DoorState `json:"state"`
}

// RoomsRevealed lists rooms added since the previous patch.
type RoomsRevealed struct {
	Rooms []dungeon.Room `json:"rooms"`
}

// CorridorsRevealed lists corridors added since the previous patch.
type CorridorsRevealed struct {
	Corridors []dungeon.Corridor `json:"corridors"`
}

type ErrorNotice struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
