package geometry

// Position is an integer grid coordinate. Copied by value everywhere.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Vector is a single-step grid displacement.
type Vector struct {
	DX int
	DY int
}

// ExitDirection is the facing of a connection point or corridor.
type ExitDirection string

const (
	North ExitDirection = "north"
	South ExitDirection = "south"
	East  ExitDirection = "east"
	West  ExitDirection = "west"

	// Diagonals exist in template data but are never used by the
	// generation core.
	NorthEast ExitDirection = "northeast"
	NorthWest ExitDirection = "northwest"
	SouthEast ExitDirection = "southeast"
	SouthWest ExitDirection = "southwest"
)

// Cardinals lists the four directions the core reasons about, in a fixed
// order so derived data stays deterministic.
var Cardinals = []ExitDirection{North, South, East, West}

func (p Position) Add(v Vector) Position {
	return Position{X: p.X + v.DX, Y: p.Y + v.DY}
}

// Step returns the neighboring cell one step in the given direction.
func (p Position) Step(dir ExitDirection) Position {
	return p.Add(ToVector(dir))
}

// Manhattan returns the L1 distance between two positions.
func Manhattan(a, b Position) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}
