package dungeon

import (
	"fmt"
	"sort"

	"github.com/zyedidia/generic/mapset"

	"github.com/mossgate/delver-engine/internal/geometry"
	"github.com/mossgate/delver-engine/internal/geomorph"
	"github.com/mossgate/delver-engine/internal/grid"
)

// ExpansionResult is the geometry of an organically grown room: the
// expanded cell set, its bounding box, and the derived connection
// points.
type ExpansionResult struct {
	Cells   []geometry.Position
	Origin  geometry.Position
	Width   int
	Height  int
	Pattern [][]bool
	Points  []ConnectionPoint
}

// BlockExpansionEngine grows a room outward block by block from an
// entry cell, bounded by a geomorph template's mask, grid bounds, and
// existing occupancy.
type BlockExpansionEngine struct {
	grid     *grid.Tracker
	registry *DoorRegistry
}

func NewBlockExpansionEngine(tracker *grid.Tracker, registry *DoorRegistry) *BlockExpansionEngine {
	return &BlockExpansionEngine{grid: tracker, registry: registry}
}

// wallKey identifies the wall segment between a cell and its neighbor
// in dir, the same from either side. Vertical walls are addressed by
// the cell to their east, horizontal walls by the cell below.
func wallKey(pos geometry.Position, dir geometry.ExitDirection) string {
	switch dir {
	case geometry.North:
		return fmt.Sprintf("h:%d:%d", pos.X, pos.Y)
	case geometry.South:
		return fmt.Sprintf("h:%d:%d", pos.X, pos.Y+1)
	case geometry.West:
		return fmt.Sprintf("v:%d:%d", pos.X, pos.Y)
	case geometry.East:
		return fmt.Sprintf("v:%d:%d", pos.X+1, pos.Y)
	}
	return fmt.Sprintf("%s:%d:%d", dir, pos.X, pos.Y)
}

// Expand flood-fills from entry, popping frontier cells by Manhattan
// distance minus a directional bonus so the room grows away from where
// it was entered. A neighbor is admitted iff it indexes a filled cell
// of the template mask at targetPos, lies inside the grid, and is not
// occupied by an existing element. The fill is bounded by the finite
// mask; it terminates when the frontier empties. entryDir is the
// direction from the source toward this room.
func (e *BlockExpansionEngine) Expand(entry geometry.Position, entryDir geometry.ExitDirection, tpl *geomorph.Template, targetPos geometry.Position) ExpansionResult {
	expanded := mapset.New[geometry.Position]()
	expanded.Put(entry)

	frontier := []geometry.Position{entry}
	bias := geometry.ToVector(entryDir)

	score := func(c geometry.Position) int {
		return geometry.Manhattan(c, entry) - ((c.X-entry.X)*bias.DX + (c.Y-entry.Y)*bias.DY)
	}

	for len(frontier) > 0 {
		best := 0
		for i := 1; i < len(frontier); i++ {
			if score(frontier[i]) < score(frontier[best]) {
				best = i
			}
		}
		current := frontier[best]
		frontier = append(frontier[:best], frontier[best+1:]...)

		for _, dir := range geometry.Cardinals {
			n := current.Step(dir)
			if expanded.Has(n) {
				continue
			}
			local := geometry.Position{X: n.X - targetPos.X, Y: n.Y - targetPos.Y}
			if !tpl.CellAt(local) {
				continue
			}
			if !e.grid.IsWithinBounds(n) || e.grid.IsOccupied(n) {
				continue
			}
			expanded.Put(n)
			frontier = append(frontier, n)
		}
	}

	cells := make([]geometry.Position, 0, expanded.Size())
	expanded.Each(func(c geometry.Position) {
		cells = append(cells, c)
	})
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})

	result := ExpansionResult{Cells: cells}
	result.Origin, result.Width, result.Height = boundingBox(cells)
	result.Pattern = make([][]bool, result.Height)
	for y := range result.Pattern {
		result.Pattern[y] = make([]bool, result.Width)
	}
	for _, c := range cells {
		result.Pattern[c.Y-result.Origin.Y][c.X-result.Origin.X] = true
	}

	result.Points = e.derivePoints(cells, expanded, entry, entryDir, tpl, targetPos)
	return result
}

// derivePoints builds the room's connection points: the entry always
// yields one point facing back toward the source; every other perimeter
// wall is offered a door where an adjacent element already expects one,
// or where the template authored one and the far cell is free.
func (e *BlockExpansionEngine) derivePoints(cells []geometry.Position, expanded mapset.Set[geometry.Position], entry geometry.Position, entryDir geometry.ExitDirection, tpl *geomorph.Template, targetPos geometry.Position) []ConnectionPoint {
	back := geometry.Opposite(entryDir)
	points := []ConnectionPoint{{
		Direction:   back,
		Position:    entry,
		IsConnected: true,
		IsGenerated: true,
		State:       PointConnected,
	}}

	seen := mapset.New[string]()
	seen.Put(wallKey(entry, back))

	for _, cell := range cells {
		for _, dir := range geometry.Cardinals {
			n := cell.Step(dir)
			if expanded.Has(n) {
				continue
			}
			key := wallKey(cell, dir)
			if seen.Has(key) {
				continue
			}

			if door, ok := e.registry.FindDoorBetween(cell, dir); ok {
				// A neighbor already holds a door on this wall; claim
				// its cell so both sides resolve to one shared door.
				seen.Put(key)
				points = append(points, ConnectionPoint{
					Direction: dir,
					Position:  door.Location.Position,
					State:     PointUngenerated,
				})
				continue
			}

			local := geometry.Position{X: cell.X - targetPos.X, Y: cell.Y - targetPos.Y}
			if !templateHasPoint(tpl, local, dir) {
				continue
			}
			if !e.grid.IsWithinBounds(n) || e.grid.IsOccupied(n) {
				continue
			}
			seen.Put(key)
			points = append(points, ConnectionPoint{
				Direction: dir,
				Position:  cell,
				State:     PointUngenerated,
			})
		}
	}

	return points
}

func templateHasPoint(tpl *geomorph.Template, local geometry.Position, dir geometry.ExitDirection) bool {
	for _, p := range tpl.ConnectionPoints {
		if p.Position == local && p.Direction == dir {
			return true
		}
	}
	return false
}

func boundingBox(cells []geometry.Position) (geometry.Position, int, int) {
	if len(cells) == 0 {
		return geometry.Position{}, 0, 0
	}
	minX, minY := cells[0].X, cells[0].Y
	maxX, maxY := cells[0].X, cells[0].Y
	for _, c := range cells[1:] {
		if c.X < minX {
			minX = c.X
		}
		if c.Y < minY {
			minY = c.Y
		}
		if c.X > maxX {
			maxX = c.X
		}
		if c.Y > maxY {
			maxY = c.Y
		}
	}
	return geometry.Position{X: minX, Y: minY}, maxX - minX + 1, maxY - minY + 1
}
