package geometry

// Opposite returns the mirrored direction. Diagonals mirror across both
// axes; unknown values are returned unchanged.
func Opposite(dir ExitDirection) ExitDirection {
	switch dir {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	case NorthEast:
		return SouthWest
	case NorthWest:
		return SouthEast
	case SouthEast:
		return NorthWest
	case SouthWest:
		return NorthEast
	}
	return dir
}

// ToVector maps a direction onto a unit grid step. North is negative Y.
func ToVector(dir ExitDirection) Vector {
	switch dir {
	case North:
		return Vector{DX: 0, DY: -1}
	case South:
		return Vector{DX: 0, DY: 1}
	case East:
		return Vector{DX: 1, DY: 0}
	case West:
		return Vector{DX: -1, DY: 0}
	case NorthEast:
		return Vector{DX: 1, DY: -1}
	case NorthWest:
		return Vector{DX: -1, DY: -1}
	case SouthEast:
		return Vector{DX: 1, DY: 1}
	case SouthWest:
		return Vector{DX: -1, DY: 1}
	}
	return Vector{}
}

// Connectable reports whether two oriented connection points can form a
// shared door: same cell, facing each other.
func Connectable(p1 Position, d1 ExitDirection, p2 Position, d2 ExitDirection) bool {
	return p1 == p2 && d2 == Opposite(d1)
}

// DoorAlignmentOffset is the placement nudge applied so that a new
// element's door lands adjacent to (not on top of) the source's door
// cell. The table is exhaustive over the four cardinal opposite pairs;
// every other combination yields no offset.
func DoorAlignmentOffset(sourceDir, targetDir ExitDirection) Vector {
	if targetDir != Opposite(sourceDir) {
		return Vector{}
	}
	switch sourceDir {
	case North:
		return Vector{DX: 0, DY: -1}
	case South:
		return Vector{DX: 0, DY: 1}
	case East:
		return Vector{DX: 1, DY: 0}
	case West:
		return Vector{DX: -1, DY: 0}
	}
	return Vector{}
}
