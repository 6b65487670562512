package protocol

import "github.com/mossgate/delver-engine/internal/dungeon"

const Version = "1"

// Snapshot is the full-state frame a client receives on connect or over
// the plain HTTP endpoint. Everything incremental patches describe can
// be rebuilt from it.
type Snapshot struct {
	MapID           string                       `json:"mapId"`
	GridSize        int                          `json:"gridSize"`
	TotalRooms      int                          `json:"totalRooms"`
	Rooms           []dungeon.Room               `json:"rooms"`
	Corridors       []dungeon.Corridor           `json:"corridors"`
	DoorStates      map[string]dungeon.DoorState `json:"doorStates"`
	Unexplored      []dungeon.ConnectionPoint    `json:"unexploredConnectionPoints"`
	LastEventID     int64                        `json:"lastEventId"`
	ProtocolVersion string                       `json:"protocolVersion"`
}

// BuildSnapshot projects the generator output into a wire snapshot.
func BuildSnapshot(m *dungeon.DungeonMap, exp *dungeon.ExplorationState, lastEventID int64) Snapshot {
	s := Snapshot{
		MapID:           m.ID,
		GridSize:        m.GridSize,
		TotalRooms:      m.TotalRooms,
		Rooms:           m.Rooms,
		Corridors:       m.Corridors,
		DoorStates:      make(map[string]dungeon.DoorState, len(exp.DoorStates)),
		Unexplored:      exp.UnexploredConnectionPoints,
		LastEventID:     lastEventID,
		ProtocolVersion: Version,
	}
	for id, state := range exp.DoorStates {
		s.DoorStates[id] = state
	}
	return s
}
