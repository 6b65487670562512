// Package geomorph holds the immutable room templates the generator
// draws from. A template is an upper bound on a room's shape: actual
// placement may trim it or fill it organically, never exceed it.
package geomorph

import (
	"fmt"

	"github.com/mossgate/delver-engine/internal/geometry"
)

// Room type classifications.
const (
	TypeEntrance = "entrance"
	TypeChamber  = "chamber"
	TypeHall     = "hall"
)

// Size classifications. Informational only; the core never branches on
// them.
const (
	SizeSmall  = "small"
	SizeMedium = "medium"
	SizeLarge  = "large"
)

// TemplatePoint is a template-local candidate doorway. Its position is
// relative to the template origin, not the world grid.
type TemplatePoint struct {
	Direction geometry.ExitDirection `json:"direction"`
	Position  geometry.Position      `json:"position"`
}

// Template is static geomorph data. Templates are shared and must never
// be mutated by callers.
type Template struct {
	ID               string          `json:"id"`
	Shape            string          `json:"shape"`
	Type             string          `json:"type"`
	Size             string          `json:"size"`
	Width            int             `json:"width"`
	Height           int             `json:"height"`
	GridPattern      [][]bool        `json:"gridPattern"`
	ConnectionPoints []TemplatePoint `json:"connectionPoints"`
}

// CellAt reports whether the template mask is filled at a local cell.
// Out-of-bounds cells are empty.
func (t *Template) CellAt(local geometry.Position) bool {
	if local.X < 0 || local.Y < 0 || local.X >= t.Width || local.Y >= t.Height {
		return false
	}
	return t.GridPattern[local.Y][local.X]
}

// PointIndexFacing returns the index of the first connection point
// facing the given direction, or -1 if the template has none.
func (t *Template) PointIndexFacing(dir geometry.ExitDirection) int {
	for i, p := range t.ConnectionPoints {
		if p.Direction == dir {
			return i
		}
	}
	return -1
}

// mustPattern converts rows of '#' (filled) and '.' (empty) into a
// boolean mask. Static template data only; ragged input is a bug.
func mustPattern(rows ...string) [][]bool {
	if len(rows) == 0 {
		panic("geomorph: empty pattern")
	}
	width := len(rows[0])
	pattern := make([][]bool, len(rows))
	for y, row := range rows {
		if len(row) != width {
			panic(fmt.Sprintf("geomorph: ragged pattern row %d", y))
		}
		pattern[y] = make([]bool, width)
		for x, c := range row {
			pattern[y][x] = c == '#'
		}
	}
	return pattern
}
