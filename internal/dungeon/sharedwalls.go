package dungeon

import (
	"github.com/mossgate/delver-engine/internal/geometry"
	"github.com/mossgate/delver-engine/internal/grid"
)

// Door conflict classifications reported by CheckDoorConflicts.
const (
	ConflictUnexpectedDoor = "unexpected_door"
	ConflictMissingDoor    = "missing_door"
)

// DoorConflict describes a disagreement between a candidate element's
// doors and the doors its prospective neighbors expect. Diagnostics
// only; nothing is applied automatically.
type DoorConflict struct {
	Type      string                 `json:"type"`
	DoorID    string                 `json:"doorId"`
	Position  geometry.Position      `json:"position"`
	Direction geometry.ExitDirection `json:"direction"`
	ElementID string                 `json:"elementId"`
}

// SharedWallManager owns the door registry and keeps adjacent elements
// agreeing on shared doors. One instance per generation session.
type SharedWallManager struct {
	registry *DoorRegistry
	grid     *grid.Tracker
	elements map[string]MapElement
	log      Logger
}

func NewSharedWallManager(registry *DoorRegistry, tracker *grid.Tracker, log Logger) *SharedWallManager {
	if log == nil {
		log = noopLogger{}
	}
	return &SharedWallManager{
		registry: registry,
		grid:     tracker,
		elements: make(map[string]MapElement),
		log:      log,
	}
}

func (m *SharedWallManager) Reset() {
	m.registry.Reset()
	m.elements = make(map[string]MapElement)
}

func (m *SharedWallManager) Registry() *DoorRegistry {
	return m.registry
}

func (m *SharedWallManager) Element(id string) (MapElement, bool) {
	el, ok := m.elements[id]
	return el, ok
}

// AddElement is the single integration entry point. It links the
// element's points to pre-existing doors, registers closed doors for
// the rest, and auto-opens every door whose both sides are now present.
// Returns a copy of the element's (possibly updated) point list.
func (m *SharedWallManager) AddElement(el MapElement) []ConnectionPoint {
	id := el.ElementID()

	updated := m.registry.ConnectElementToExisting(id, el.Points())
	for i, cp := range updated {
		el.SetPoint(i, cp)
	}

	for _, cp := range el.Points() {
		if _, ok := m.registry.FindDoorBetween(cp.Position, cp.Direction); ok {
			continue
		}
		initial := DoorClosed
		if cp.IsConnected && cp.IsGenerated {
			// Rebuilt or pre-connected points carry their open state
			// back into the registry.
			initial = DoorOpen
		}
		doorID := m.registry.Register(cp.Position, cp.Direction, id, initial, cp.GenerationSeed)
		if cp.IsGenerated {
			m.registry.MarkGenerated(doorID, cp.ConnectedElementID)
		}
	}

	m.elements[id] = el
	m.autoOpenCompletedDoors()

	return append([]ConnectionPoint(nil), el.Points()...)
}

// autoOpenCompletedDoors opens every door whose connected-element set
// has both sides present in the live element list, and pushes the open
// state onto the connection points of both elements. Runs after every
// AddElement so the auto-open invariant holds continuously.
func (m *SharedWallManager) autoOpenCompletedDoors() {
	for _, door := range m.registry.Doors() {
		if len(door.ConnectedElements) < 2 {
			continue
		}
		allPresent := true
		for _, elID := range door.ConnectedElements {
			if _, ok := m.elements[elID]; !ok {
				allPresent = false
				break
			}
		}
		if !allPresent {
			continue
		}

		if door.State != DoorOpen {
			m.registry.UpdateState(door.Location.GlobalID, DoorOpen)
			m.log.Printf("auto-opened door %s between %v", door.Location.GlobalID, door.ConnectedElements)
		}
		door.IsGenerated = true

		for _, elID := range door.ConnectedElements {
			el := m.elements[elID]
			other := firstOtherElement(door.ConnectedElements, elID)
			for i, cp := range el.Points() {
				if !door.MatchesPoint(cp) {
					continue
				}
				cp.IsGenerated = true
				cp.IsConnected = true
				cp.State = PointConnected
				if cp.ConnectedElementID == "" {
					cp.ConnectedElementID = other
				}
				el.SetPoint(i, cp)
			}
		}
	}
}

func (m *SharedWallManager) RemoveElement(elementID string) {
	delete(m.elements, elementID)
	m.registry.RemoveElement(elementID)
}

// DoorStateAt returns the authoritative state of the door a point at
// (pos, dir) would share. Closed if no door exists.
func (m *SharedWallManager) DoorStateAt(pos geometry.Position, dir geometry.ExitDirection) DoorState {
	if door, ok := m.registry.FindDoorBetween(pos, dir); ok {
		return door.State
	}
	return DoorClosed
}

func (m *SharedWallManager) IsDoorGenerated(pos geometry.Position, dir geometry.ExitDirection) bool {
	if door, ok := m.registry.FindDoorBetween(pos, dir); ok {
		return door.IsGenerated
	}
	return false
}

// WouldPlaceDoorAgainstSolidWall reports whether the cell the point
// faces is occupied by an element that has no door of its own on this
// wall. Placing a door there would breach a wall with nothing on the
// other side expecting it.
func (m *SharedWallManager) WouldPlaceDoorAgainstSolidWall(cp ConnectionPoint) bool {
	adjacent := cp.Position.Step(cp.Direction)
	occupant, ok := m.grid.OccupantAt(adjacent)
	if !ok {
		return false
	}
	if door, ok := m.registry.FindDoorBetween(cp.Position, cp.Direction); ok {
		if containsString(door.ConnectedElements, occupant) {
			return false
		}
	}
	return true
}

// CheckDoorConflicts classifies the candidate's doors against its
// prospective neighbors: unexpected_door where the candidate would
// breach a solid wall, missing_door where a neighbor expects a door on
// a shared wall the candidate leaves blank. cells is the candidate's
// would-be occupied cell set in world coordinates.
func (m *SharedWallManager) CheckDoorConflicts(candidate MapElement, cells []geometry.Position) []DoorConflict {
	var conflicts []DoorConflict

	for _, cp := range candidate.Points() {
		if !m.WouldPlaceDoorAgainstSolidWall(cp) {
			continue
		}
		occupant, _ := m.grid.OccupantAt(cp.Position.Step(cp.Direction))
		conflicts = append(conflicts, DoorConflict{
			Type:      ConflictUnexpectedDoor,
			DoorID:    DoorID(cp.Position, cp.Direction),
			Position:  cp.Position,
			Direction: cp.Direction,
			ElementID: occupant,
		})
	}

	for _, cell := range cells {
		for _, dir := range geometry.Cardinals {
			neighbor := cell.Step(dir)
			occupant, ok := m.grid.OccupantAt(neighbor)
			if !ok || occupant == candidate.ElementID() {
				continue
			}
			door, ok := m.registry.FindDoorBetween(cell, dir)
			if !ok || !containsString(door.ConnectedElements, occupant) {
				continue
			}
			matched := false
			for _, cp := range candidate.Points() {
				if door.MatchesPoint(cp) {
					matched = true
					break
				}
			}
			if !matched {
				conflicts = append(conflicts, DoorConflict{
					Type:      ConflictMissingDoor,
					DoorID:    door.Location.GlobalID,
					Position:  door.Location.Position,
					Direction: dir,
					ElementID: occupant,
				})
			}
		}
	}

	return conflicts
}
