package dungeon

import (
	"fmt"

	"github.com/mossgate/delver-engine/internal/geometry"
	"github.com/mossgate/delver-engine/internal/geomorph"
	"github.com/mossgate/delver-engine/internal/grid"
)

// ValidatedPoint is a surviving template connection point together with
// its original template index, kept for traceability.
type ValidatedPoint struct {
	Point geomorph.TemplatePoint
	Index int
}

// trimPattern intersects a template mask with an availability grid of
// the same dimensions.
func trimPattern(pattern, available [][]bool) [][]bool {
	trimmed := make([][]bool, len(pattern))
	for y, row := range pattern {
		trimmed[y] = make([]bool, len(row))
		for x, filled := range row {
			trimmed[y][x] = filled && available[y][x]
		}
	}
	return trimmed
}

func patternCell(pattern [][]bool, pos geometry.Position) bool {
	if pos.Y < 0 || pos.Y >= len(pattern) {
		return false
	}
	if pos.X < 0 || pos.X >= len(pattern[pos.Y]) {
		return false
	}
	return pattern[pos.Y][pos.X]
}

// patternCells lists the world cells of a mask placed at origin, in
// row-major order.
func patternCells(origin geometry.Position, pattern [][]bool) []geometry.Position {
	var cells []geometry.Position
	for y, row := range pattern {
		for x, filled := range row {
			if filled {
				cells = append(cells, geometry.Position{X: origin.X + x, Y: origin.Y + y})
			}
		}
	}
	return cells
}

// ValidConnectionPoints filters a template's connection points down to
// those that survive trimming and still sit on the trimmed shape's
// perimeter in their stated direction. The point at preserveIndex
// anchors the placement and is exempt from the perimeter rule, but must
// still be available. This keeps doors from ending up embedded inside a
// room interior after trimming removes neighboring cells.
func ValidConnectionPoints(tpl *geomorph.Template, available, trimmed [][]bool, preserveIndex int) []ValidatedPoint {
	var valid []ValidatedPoint
	for i, p := range tpl.ConnectionPoints {
		local := p.Position
		if local.X < 0 || local.Y < 0 || local.X >= tpl.Width || local.Y >= tpl.Height {
			continue
		}
		if !available[local.Y][local.X] || !trimmed[local.Y][local.X] {
			continue
		}
		if i != preserveIndex {
			// Perimeter rule: the cell the door faces must be outside
			// the trimmed shape.
			if patternCell(trimmed, local.Step(p.Direction)) {
				continue
			}
		}
		valid = append(valid, ValidatedPoint{Point: p, Index: i})
	}
	return valid
}

// PlacementResult is the outcome of a pre-flight placement check.
type PlacementResult struct {
	IsValid     bool
	ValidPoints []ValidatedPoint
	Trimmed     [][]bool
	Errors      []string
}

// RoomIntegrationValidator runs the pre-flight checks a candidate
// template placement must pass before any state is mutated.
type RoomIntegrationValidator struct {
	grid  *grid.Tracker
	walls *SharedWallManager
}

func NewRoomIntegrationValidator(tracker *grid.Tracker, walls *SharedWallManager) *RoomIntegrationValidator {
	return &RoomIntegrationValidator{grid: tracker, walls: walls}
}

// ValidatePlacement checks grid availability, connection point
// legality, and wall conflicts for a template at a world position.
// preserveIndex (or -1) names the template point anchoring the
// placement; its cell is forced available before trimming. Nothing is
// committed here.
func (v *RoomIntegrationValidator) ValidatePlacement(tpl *geomorph.Template, pos geometry.Position, preserveIndex int) PlacementResult {
	var result PlacementResult

	available := v.grid.AvailableArea(pos, tpl.Width, tpl.Height)
	anyAvailable := false
	for _, row := range available {
		for _, ok := range row {
			if ok {
				anyAvailable = true
			}
		}
	}
	if !anyAvailable {
		result.Errors = append(result.Errors, "insufficient grid space")
		return result
	}

	if preserveIndex >= 0 && preserveIndex < len(tpl.ConnectionPoints) {
		grid.ForceMarkAvailable(tpl.ConnectionPoints[preserveIndex].Position, available)
	}

	trimmed := trimPattern(tpl.GridPattern, available)
	result.Trimmed = trimmed

	for i, p := range tpl.ConnectionPoints {
		local := p.Position
		if local.X < 0 || local.Y < 0 || local.X >= tpl.Width || local.Y >= tpl.Height {
			result.Errors = append(result.Errors, fmt.Sprintf("connection point %d out of template bounds", i))
		}
	}
	result.ValidPoints = ValidConnectionPoints(tpl, available, trimmed, preserveIndex)

	candidate := &Room{
		ID:          "candidate",
		Position:    pos,
		Width:       tpl.Width,
		Height:      tpl.Height,
		GridPattern: trimmed,
	}
	for _, vp := range result.ValidPoints {
		candidate.ConnectionPoints = append(candidate.ConnectionPoints, ConnectionPoint{
			Direction: vp.Point.Direction,
			Position:  geometry.Position{X: pos.X + vp.Point.Position.X, Y: pos.Y + vp.Point.Position.Y},
			State:     PointUngenerated,
		})
	}

	for _, conflict := range v.walls.CheckDoorConflicts(candidate, patternCells(pos, trimmed)) {
		if conflict.Type == ConflictUnexpectedDoor {
			result.Errors = append(result.Errors, "would create doors against solid walls")
			break
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result
}
