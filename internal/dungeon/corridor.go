package dungeon

import (
	"fmt"

	"github.com/mossgate/delver-engine/internal/geometry"
)

const corridorTypeStraight = "straight"

// determineCorridorType classifies a corridor path. Always straight:
// the data model carries a richer corridor taxonomy, but turn and
// junction detection was never implemented and the single constant is
// kept deliberately.
func determineCorridorType(path []geometry.Position) string {
	return corridorTypeStraight
}

// buildCorridor walks a straight path away from the triggering point.
// The start cell is offset one step into the new direction so the path
// never overlaps the source's own door cell. The walk stops early at
// grid bounds or existing occupancy; an empty path yields no corridor.
func (g *Generator) buildCorridor(req GenerationRequest, hash int) *Corridor {
	dir := req.Point.Direction
	length := minCorridorLength + hash%corridorLengthVariance

	var path []geometry.Position
	pos := req.Point.Position.Step(dir)
	for i := 0; i < length; i++ {
		if !g.grid.IsWithinBounds(pos) || g.grid.IsOccupied(pos) {
			break
		}
		path = append(path, pos)
		pos = pos.Step(dir)
	}
	if len(path) == 0 {
		return nil
	}

	return &Corridor{
		ID:          fmt.Sprintf("corridor-%d-%04d", g.now().UnixMilli(), hash%10000),
		Type:        determineCorridorType(path),
		Direction:   dir,
		Position:    path[0],
		Length:      len(path),
		Width:       1,
		IsGenerated: true,
		Path:        path,
		ConnectionPoints: []ConnectionPoint{
			{
				// Near end: shares the source's door cell so both
				// elements resolve to the same registry record.
				Direction:          geometry.Opposite(dir),
				Position:           req.Point.Position,
				IsConnected:        true,
				IsGenerated:        true,
				ConnectedElementID: req.SourceElementID,
				GenerationSeed:     req.Seed,
				State:              PointConnected,
			},
			{
				Direction: dir,
				Position:  path[len(path)-1],
				State:     PointUngenerated,
			},
		},
	}
}
