package dungeon

import (
	"fmt"
	"sort"

	"github.com/mossgate/delver-engine/internal/geometry"
)

// normalizeDirection folds each opposite pair onto one representative
// so both sides of a wall derive the same door key.
func normalizeDirection(dir geometry.ExitDirection) geometry.ExitDirection {
	switch dir {
	case geometry.South:
		return geometry.North
	case geometry.West:
		return geometry.East
	case geometry.SouthWest:
		return geometry.NorthEast
	case geometry.SouthEast:
		return geometry.NorthWest
	}
	return dir
}

// DoorID is the canonical cross-element join key for a door location.
// It is identical no matter which of the two adjacent elements asks.
func DoorID(pos geometry.Position, dir geometry.ExitDirection) string {
	return fmt.Sprintf("door:%d:%d:%s", pos.X, pos.Y, normalizeDirection(dir))
}

// DoorRegistry owns every shared door in one generation session, keyed
// by canonical location. It is derived state: the shared wall manager
// rebuilds it from the element lists after a rollback.
type DoorRegistry struct {
	doors map[string]*SharedDoor
}

func NewDoorRegistry() *DoorRegistry {
	return &DoorRegistry{doors: make(map[string]*SharedDoor)}
}

func (r *DoorRegistry) Reset() {
	r.doors = make(map[string]*SharedDoor)
}

// Register attaches elementID to the door at (pos, dir), creating the
// door with the given initial state if it does not exist. Appending the
// same element twice is a no-op. Returns the canonical door id.
func (r *DoorRegistry) Register(pos geometry.Position, dir geometry.ExitDirection, elementID string, initial DoorState, seed string) string {
	id := DoorID(pos, dir)
	door, ok := r.doors[id]
	if !ok {
		door = &SharedDoor{
			Location: DoorLocation{
				Position:  pos,
				Direction: normalizeDirection(dir),
				GlobalID:  id,
			},
			State:          initial,
			GenerationSeed: seed,
		}
		r.doors[id] = door
	}
	if !containsString(door.ConnectedElements, elementID) {
		door.ConnectedElements = append(door.ConnectedElements, elementID)
	}
	return id
}

// Door returns the record registered under the exact canonical key of
// (pos, dir).
func (r *DoorRegistry) Door(pos geometry.Position, dir geometry.ExitDirection) (*SharedDoor, bool) {
	door, ok := r.doors[DoorID(pos, dir)]
	return door, ok
}

// FindDoorBetween resolves the door on the wall a connection point
// faces, whichever side's cell it was registered under: first the
// point's own cell, then the neighboring cell with mirrored facing.
func (r *DoorRegistry) FindDoorBetween(pos geometry.Position, dir geometry.ExitDirection) (*SharedDoor, bool) {
	if door, ok := r.doors[DoorID(pos, dir)]; ok {
		return door, true
	}
	across := pos.Step(dir)
	if door, ok := r.doors[DoorID(across, geometry.Opposite(dir))]; ok {
		return door, true
	}
	return nil, false
}

// MatchesPoint reports whether a connection point refers to this door
// under either side's key.
func (d *SharedDoor) MatchesPoint(cp ConnectionPoint) bool {
	if DoorID(cp.Position, cp.Direction) == d.Location.GlobalID {
		return true
	}
	return DoorID(cp.Position.Step(cp.Direction), geometry.Opposite(cp.Direction)) == d.Location.GlobalID
}

func (r *DoorRegistry) MarkGenerated(doorID, connectedElementID string) {
	if door, ok := r.doors[doorID]; ok {
		door.IsGenerated = true
		door.ConnectedElementID = connectedElementID
	}
}

func (r *DoorRegistry) UpdateState(doorID string, state DoorState) {
	if door, ok := r.doors[doorID]; ok {
		door.State = state
	}
}

// ConnectElementToExisting links an element's points to any doors that
// already exist at their locations. Returns an updated copy of the
// point list; the caller's slice is never aliased.
func (r *DoorRegistry) ConnectElementToExisting(elementID string, points []ConnectionPoint) []ConnectionPoint {
	updated := make([]ConnectionPoint, len(points))
	for i, cp := range points {
		updated[i] = cp
		door, ok := r.FindDoorBetween(cp.Position, cp.Direction)
		if !ok {
			continue
		}
		neighbor := firstOtherElement(door.ConnectedElements, elementID)
		if !containsString(door.ConnectedElements, elementID) {
			door.ConnectedElements = append(door.ConnectedElements, elementID)
		}
		updated[i].IsConnected = true
		updated[i].ConnectedElementID = neighbor
	}
	return updated
}

// RemoveElement strips the element from every door and deletes doors
// left with no connections.
func (r *DoorRegistry) RemoveElement(elementID string) {
	for id, door := range r.doors {
		door.ConnectedElements = removeString(door.ConnectedElements, elementID)
		if len(door.ConnectedElements) == 0 {
			delete(r.doors, id)
		}
	}
}

// HasConflictingDoors reports whether the registry holds doors at one
// position facing both north and south, or both east and west. The
// canonical key makes this impossible; the check is defensive.
func (r *DoorRegistry) HasConflictingDoors(pos geometry.Position) bool {
	seen := make(map[geometry.ExitDirection]bool)
	for _, door := range r.doors {
		if door.Location.Position == pos {
			seen[door.Location.Direction] = true
		}
	}
	return (seen[geometry.North] && seen[geometry.South]) || (seen[geometry.East] && seen[geometry.West])
}

// Doors returns every registered door, ordered by id.
func (r *DoorRegistry) Doors() []*SharedDoor {
	ids := make([]string, 0, len(r.doors))
	for id := range r.doors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*SharedDoor, len(ids))
	for i, id := range ids {
		out[i] = r.doors[id]
	}
	return out
}

// ValidateConsistency returns diagnostics for registry states that
// indicate an upstream logic bug: opposite-facing doors sharing a cell
// and doors referencing elements that no longer exist. Never thrown.
func (r *DoorRegistry) ValidateConsistency(liveElements map[string]bool) []string {
	var issues []string
	for _, door := range r.Doors() {
		if r.HasConflictingDoors(door.Location.Position) {
			issues = append(issues, fmt.Sprintf("conflicting opposite doors at (%d,%d)",
				door.Location.Position.X, door.Location.Position.Y))
		}
		for _, el := range door.ConnectedElements {
			if !liveElements[el] {
				issues = append(issues, fmt.Sprintf("door %s references missing element %s",
					door.Location.GlobalID, el))
			}
		}
	}
	return issues
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

func firstOtherElement(list []string, self string) string {
	for _, v := range list {
		if v != self {
			return v
		}
	}
	if len(list) > 0 {
		return list[0]
	}
	return ""
}
