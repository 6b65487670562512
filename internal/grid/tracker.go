// Package grid tracks which cells of the square generation grid are
// occupied, and by which placed element.
package grid

import "github.com/mossgate/delver-engine/internal/geometry"

// Tracker records cell occupancy for one generation session. It holds
// derived state only: it never mutates the rooms or corridors it is
// asked about, and it can be rebuilt at any time from the authoritative
// element lists.
type Tracker struct {
	size     int
	occupied map[geometry.Position]string
}

func NewTracker(size int) *Tracker {
	return &Tracker{
		size:     size,
		occupied: make(map[geometry.Position]string),
	}
}

func (t *Tracker) Size() int {
	return t.size
}

func (t *Tracker) Reset() {
	t.occupied = make(map[geometry.Position]string)
}

// MarkPattern marks every world cell where the mask is true, offset by
// origin. Out-of-bounds cells are ignored.
func (t *Tracker) MarkPattern(origin geometry.Position, pattern [][]bool, elementID string) {
	for y, row := range pattern {
		for x, filled := range row {
			if !filled {
				continue
			}
			pos := geometry.Position{X: origin.X + x, Y: origin.Y + y}
			if t.IsWithinBounds(pos) {
				t.occupied[pos] = elementID
			}
		}
	}
}

// MarkPath marks every cell of a corridor path.
func (t *Tracker) MarkPath(path []geometry.Position, elementID string) {
	for _, pos := range path {
		if t.IsWithinBounds(pos) {
			t.occupied[pos] = elementID
		}
	}
}

func (t *Tracker) IsOccupied(pos geometry.Position) bool {
	_, ok := t.occupied[pos]
	return ok
}

// OccupantAt returns the id of the element occupying a cell.
func (t *Tracker) OccupantAt(pos geometry.Position) (string, bool) {
	id, ok := t.occupied[pos]
	return id, ok
}

func (t *Tracker) IsWithinBounds(pos geometry.Position) bool {
	return pos.X >= 0 && pos.Y >= 0 && pos.X < t.size && pos.Y < t.size
}

// AvailableArea reports, for a w×h window at origin, which cells are
// both in bounds and unoccupied.
func (t *Tracker) AvailableArea(origin geometry.Position, w, h int) [][]bool {
	area := make([][]bool, h)
	for y := 0; y < h; y++ {
		area[y] = make([]bool, w)
		for x := 0; x < w; x++ {
			pos := geometry.Position{X: origin.X + x, Y: origin.Y + y}
			area[y][x] = t.IsWithinBounds(pos) && !t.IsOccupied(pos)
		}
	}
	return area
}

// ForceMarkAvailable overrides one cell of an availability grid. Used
// right before trimming so that the cell carrying an incoming
// connection point is never excluded by a stale occupancy check.
func ForceMarkAvailable(local geometry.Position, area [][]bool) {
	if local.Y < 0 || local.Y >= len(area) {
		return
	}
	if local.X < 0 || local.X >= len(area[local.Y]) {
		return
	}
	area[local.Y][local.X] = true
}
