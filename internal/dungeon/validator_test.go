package dungeon

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/mossgate/delver-engine/internal/geometry"
	"github.com/mossgate/delver-engine/internal/geomorph"
	"github.com/mossgate/delver-engine/internal/grid"
)

func newValidatorFixture(t *testing.T) (*RoomIntegrationValidator, *grid.Tracker, *geomorph.Catalog) {
	t.Helper()
	tracker := grid.NewTracker(30)
	registry := NewDoorRegistry()
	walls := NewSharedWallManager(registry, tracker, nil)
	catalog := geomorph.NewCatalog(geomorph.BuiltIn(), rand.New(rand.NewSource(1)))
	return NewRoomIntegrationValidator(tracker, walls), tracker, catalog
}

func hasError(result PlacementResult, substr string) bool {
	for _, e := range result.Errors {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

func TestValidatePlacementOpenGrid(t *testing.T) {
	v, _, catalog := newValidatorFixture(t)
	tpl, _ := catalog.ByID("chamber-square")

	result := v.ValidatePlacement(tpl, geometry.Position{X: 5, Y: 5}, -1)
	if !result.IsValid {
		t.Fatalf("errors = %v", result.Errors)
	}
	if len(result.ValidPoints) != 4 {
		t.Fatalf("valid points = %d, want 4", len(result.ValidPoints))
	}
	for y, row := range result.Trimmed {
		for x, filled := range row {
			if !filled {
				t.Fatalf("trimmed hole at (%d,%d) on an empty grid", x, y)
			}
		}
	}
}

func TestValidatePlacementInsufficientSpace(t *testing.T) {
	v, _, catalog := newValidatorFixture(t)
	tpl, _ := catalog.ByID("chamber-square")

	result := v.ValidatePlacement(tpl, geometry.Position{X: 40, Y: 40}, -1)
	if result.IsValid {
		t.Fatal("fully out-of-bounds placement passed")
	}
	if !hasError(result, "insufficient grid space") {
		t.Fatalf("errors = %v", result.Errors)
	}
}

func TestValidatePlacementTrimsOccupiedColumn(t *testing.T) {
	v, tracker, catalog := newValidatorFixture(t)
	tpl, _ := catalog.ByID("chamber-square")

	// Occupy the template's rightmost column at (5,5): local x=4.
	for y := 5; y < 10; y++ {
		tracker.MarkPath([]geometry.Position{{X: 9, Y: y}}, "blocker")
	}

	result := v.ValidatePlacement(tpl, geometry.Position{X: 5, Y: 5}, -1)
	if !result.IsValid {
		t.Fatalf("trimming should not be an error: %v", result.Errors)
	}
	for y := 0; y < 5; y++ {
		if result.Trimmed[y][4] {
			t.Fatalf("occupied column survived trimming at row %d", y)
		}
	}
	// The east point sat on the trimmed column and must be gone.
	if len(result.ValidPoints) != 3 {
		t.Fatalf("valid points = %d, want 3", len(result.ValidPoints))
	}
	for _, vp := range result.ValidPoints {
		if vp.Point.Direction == geometry.East {
			t.Fatal("east point survived on a trimmed cell")
		}
	}
}

func TestValidatePlacementPreservesAnchorCell(t *testing.T) {
	v, tracker, catalog := newValidatorFixture(t)
	tpl, _ := catalog.ByID("chamber-square")

	// Occupy the west point's cell; preserving its index must keep it.
	tracker.MarkPath([]geometry.Position{{X: 5, Y: 7}}, "blocker")

	westIdx := tpl.PointIndexFacing(geometry.West)
	result := v.ValidatePlacement(tpl, geometry.Position{X: 5, Y: 5}, westIdx)
	if !result.IsValid {
		t.Fatalf("errors = %v", result.Errors)
	}
	kept := false
	for _, vp := range result.ValidPoints {
		if vp.Index == westIdx {
			kept = true
		}
	}
	if !kept {
		t.Fatal("anchor point dropped despite preservation")
	}
	if !result.Trimmed[2][0] {
		t.Fatal("anchor cell trimmed despite preservation")
	}
}

func TestValidatePlacementRejectsSolidWallBreach(t *testing.T) {
	v, tracker, catalog := newValidatorFixture(t)
	tpl, _ := catalog.ByID("chamber-square")

	// The east point at world (9,7) would face room-01 at (10,7), which
	// has no door on that wall.
	tracker.MarkPath([]geometry.Position{{X: 10, Y: 7}}, "room-01")

	result := v.ValidatePlacement(tpl, geometry.Position{X: 5, Y: 5}, -1)
	if result.IsValid {
		t.Fatal("placement breaching a solid wall passed")
	}
	if !hasError(result, "solid walls") {
		t.Fatalf("errors = %v", result.Errors)
	}
}

func TestValidConnectionPointsPerimeterRule(t *testing.T) {
	full := func() [][]bool {
		return [][]bool{
			{true, true, true},
			{true, true, true},
			{true, true, true},
		}
	}
	tpl := &geomorph.Template{
		ID:          "interior-point",
		Width:       3,
		Height:      3,
		GridPattern: full(),
		ConnectionPoints: []geomorph.TemplatePoint{
			{Direction: geometry.North, Position: geometry.Position{X: 1, Y: 1}},
		},
	}

	if pts := ValidConnectionPoints(tpl, full(), full(), -1); len(pts) != 0 {
		t.Fatalf("interior-facing point survived: %+v", pts)
	}
	if pts := ValidConnectionPoints(tpl, full(), full(), 0); len(pts) != 1 {
		t.Fatalf("preserved anchor dropped: %+v", pts)
	}
}
