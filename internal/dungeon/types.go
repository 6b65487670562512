// Package dungeon implements the incremental generation engine: rooms
// and corridors grown on demand behind opened doors, with shared-wall
// bookkeeping so independently generated neighbors agree on door state.
package dungeon

import (
	"time"

	"github.com/mossgate/delver-engine/internal/geometry"
)

// Logger is the narrow logging surface the engine needs. *logrus.Logger
// satisfies it, as does the stdlib log package.
type Logger interface {
	Printf(format string, v ...any)
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

// DoorState is the authoritative state of a shared door. The registry
// is the single writable source; every copy on a connection point or in
// exploration state is a projection.
type DoorState string

const (
	DoorClosed DoorState = "closed"
	DoorOpen   DoorState = "open"
)

// PointState guards a connection point against duplicate generation.
type PointState string

const (
	PointUngenerated PointState = "ungenerated"
	PointGenerating  PointState = "generating"
	PointConnected   PointState = "connected"
)

// ConnectionPoint is a potential or actual doorway belonging to one
// element. Position is always in world coordinates once the point is
// attached to a placed element.
type ConnectionPoint struct {
	Direction          geometry.ExitDirection `json:"direction"`
	Position           geometry.Position      `json:"position"`
	IsConnected        bool                   `json:"isConnected"`
	ConnectedElementID string                 `json:"connectedElementId,omitempty"`
	IsGenerated        bool                   `json:"isGenerated"`
	GenerationSeed     string                 `json:"generationSeed,omitempty"`
	State              PointState             `json:"state"`
}

// Room is a placed element. GridPattern, when set, is the room's actual
// occupied-cell mask after trimming or expansion; it is always a subset
// of the template mask.
type Room struct {
	ID               string            `json:"id"`
	Shape            string            `json:"shape"`
	Type             string            `json:"type"`
	Size             string            `json:"size"`
	Position         geometry.Position `json:"position"`
	Width            int               `json:"width"`
	Height           int               `json:"height"`
	TemplateID       string            `json:"templateId,omitempty"`
	GridPattern      [][]bool          `json:"gridPattern,omitempty"`
	IsGenerated      bool              `json:"isGenerated"`
	ConnectionPoints []ConnectionPoint `json:"connectionPoints"`
}

// EffectivePattern returns the room's occupied-cell mask: the custom
// pattern if present, otherwise a full rectangle.
func (r *Room) EffectivePattern() [][]bool {
	if r.GridPattern != nil {
		return r.GridPattern
	}
	pattern := make([][]bool, r.Height)
	for y := range pattern {
		pattern[y] = make([]bool, r.Width)
		for x := range pattern[y] {
			pattern[y][x] = true
		}
	}
	return pattern
}

func (r *Room) ElementID() string               { return r.ID }
func (r *Room) Points() []ConnectionPoint       { return r.ConnectionPoints }
func (r *Room) SetPoint(i int, cp ConnectionPoint) { r.ConnectionPoints[i] = cp }

func (r *Room) clone() *Room {
	c := *r
	c.ConnectionPoints = append([]ConnectionPoint(nil), r.ConnectionPoints...)
	if r.GridPattern != nil {
		c.GridPattern = make([][]bool, len(r.GridPattern))
		for y, row := range r.GridPattern {
			c.GridPattern[y] = append([]bool(nil), row...)
		}
	}
	return &c
}

// Corridor is a placed linear element one cell wide. Path runs from the
// source-adjacent end to the far end; ConnectionPoints[0] is the near
// (already connected) end, ConnectionPoints[1] the unexplored far end.
type Corridor struct {
	ID               string                 `json:"id"`
	Type             string                 `json:"type"`
	Direction        geometry.ExitDirection `json:"direction"`
	Position         geometry.Position      `json:"position"`
	Length           int                    `json:"length"`
	Width            int                    `json:"width"`
	IsGenerated      bool                   `json:"isGenerated"`
	ConnectionPoints []ConnectionPoint      `json:"connectionPoints"`
	Path             []geometry.Position    `json:"path"`
}

func (c *Corridor) ElementID() string               { return c.ID }
func (c *Corridor) Points() []ConnectionPoint       { return c.ConnectionPoints }
func (c *Corridor) SetPoint(i int, cp ConnectionPoint) { c.ConnectionPoints[i] = cp }

func (c *Corridor) clone() *Corridor {
	cc := *c
	cc.ConnectionPoints = append([]ConnectionPoint(nil), c.ConnectionPoints...)
	cc.Path = append([]geometry.Position(nil), c.Path...)
	return &cc
}

// MapElement is the integration surface shared by rooms and corridors.
type MapElement interface {
	ElementID() string
	Points() []ConnectionPoint
	SetPoint(i int, cp ConnectionPoint)
}

// DoorLocation is the canonical world location of a shared door.
type DoorLocation struct {
	Position  geometry.Position      `json:"position"`
	Direction geometry.ExitDirection `json:"direction"`
	GlobalID  string                 `json:"globalId"`
}

// SharedDoor is the deduplicated registry record for one door location,
// merging the connection points of up to two adjacent elements.
type SharedDoor struct {
	Location           DoorLocation `json:"location"`
	State              DoorState    `json:"state"`
	ConnectedElements  []string     `json:"connectedElements"`
	IsGenerated        bool         `json:"isGenerated"`
	ConnectedElementID string       `json:"connectedElementId,omitempty"`
	GenerationSeed     string       `json:"generationSeed,omitempty"`
}

// ExplorationState reflects the authoritative room/corridor lists for
// the presentation layer. The core never reads it to make decisions.
type ExplorationState struct {
	DiscoveredRoomIDs          []string             `json:"discoveredRoomIds"`
	DiscoveredCorridorIDs      []string             `json:"discoveredCorridorIds"`
	DoorStates                 map[string]DoorState `json:"doorStates"`
	UnexploredConnectionPoints []ConnectionPoint    `json:"unexploredConnectionPoints"`
}

func newExplorationState() *ExplorationState {
	return &ExplorationState{
		DoorStates: make(map[string]DoorState),
	}
}

// Clone returns a deep copy safe to hand to another goroutine.
func (e *ExplorationState) Clone() *ExplorationState {
	c := &ExplorationState{
		DiscoveredRoomIDs:          append([]string(nil), e.DiscoveredRoomIDs...),
		DiscoveredCorridorIDs:      append([]string(nil), e.DiscoveredCorridorIDs...),
		DoorStates:                 make(map[string]DoorState, len(e.DoorStates)),
		UnexploredConnectionPoints: append([]ConnectionPoint(nil), e.UnexploredConnectionPoints...),
	}
	for k, v := range e.DoorStates {
		c.DoorStates[k] = v
	}
	return c
}

// DungeonMap is the generation output snapshot, recomputed after every
// mutating operation.
type DungeonMap struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Rooms      []Room     `json:"rooms"`
	Corridors  []Corridor `json:"corridors"`
	CreatedAt  time.Time  `json:"createdAt"`
	GridSize   int        `json:"gridSize"`
	TotalRooms int        `json:"totalRooms"`
}

// Settings is the external generation configuration. The incremental
// core consumes GridSize; the remaining options belong to the one-shot
// generator mode and are carried for compatibility.
type Settings struct {
	GridSize            int  `json:"gridSize"`
	MinRooms            int  `json:"minRooms"`
	MaxRooms            int  `json:"maxRooms"`
	RoomSpacing         int  `json:"roomSpacing"`
	MaxExitsPerRoom     int  `json:"maxExitsPerRoom"`
	AllowIrregularRooms bool `json:"allowIrregularRooms"`
	ForceConnectivity   bool `json:"forceConnectivity"`
}

func DefaultSettings() Settings {
	return Settings{
		GridSize:            30,
		MinRooms:            5,
		MaxRooms:            12,
		RoomSpacing:         1,
		MaxExitsPerRoom:     4,
		AllowIrregularRooms: true,
		ForceConnectivity:   true,
	}
}
