package grid

import (
	"testing"

	"github.com/mossgate/delver-engine/internal/geometry"
)

func TestTracker_MarkPatternAndOccupancy(t *testing.T) {
	tr := NewTracker(10)
	pattern := [][]bool{
		{true, true, false},
		{true, false, false},
	}
	tr.MarkPattern(geometry.Position{X: 2, Y: 3}, pattern, "room-01")

	occupied := []geometry.Position{{X: 2, Y: 3}, {X: 3, Y: 3}, {X: 2, Y: 4}}
	for _, pos := range occupied {
		if !tr.IsOccupied(pos) {
			t.Errorf("expected %+v occupied", pos)
		}
		if id, _ := tr.OccupantAt(pos); id != "room-01" {
			t.Errorf("occupant at %+v = %q, want room-01", pos, id)
		}
	}
	if tr.IsOccupied(geometry.Position{X: 4, Y: 3}) {
		t.Error("false mask cell must stay unoccupied")
	}
	if tr.IsOccupied(geometry.Position{X: 3, Y: 4}) {
		t.Error("false mask cell must stay unoccupied")
	}
}

func TestTracker_MarkPath(t *testing.T) {
	tr := NewTracker(10)
	path := []geometry.Position{{X: 1, Y: 1}, {X: 1, Y: 2}, {X: 1, Y: 3}}
	tr.MarkPath(path, "corridor-1")
	for _, pos := range path {
		if id, _ := tr.OccupantAt(pos); id != "corridor-1" {
			t.Errorf("occupant at %+v = %q, want corridor-1", pos, id)
		}
	}
}

func TestTracker_Bounds(t *testing.T) {
	tr := NewTracker(5)
	cases := []struct {
		pos  geometry.Position
		want bool
	}{
		{geometry.Position{X: 0, Y: 0}, true},
		{geometry.Position{X: 4, Y: 4}, true},
		{geometry.Position{X: 5, Y: 0}, false},
		{geometry.Position{X: 0, Y: -1}, false},
	}
	for _, c := range cases {
		if got := tr.IsWithinBounds(c.pos); got != c.want {
			t.Errorf("IsWithinBounds(%+v) = %v, want %v", c.pos, got, c.want)
		}
	}
}

func TestTracker_AvailableArea(t *testing.T) {
	tr := NewTracker(5)
	tr.MarkPath([]geometry.Position{{X: 1, Y: 0}}, "x")

	// Window hangs one column off the right edge of the grid.
	area := tr.AvailableArea(geometry.Position{X: 3, Y: 0}, 3, 2)
	if area[0][2] || area[1][2] {
		t.Error("out-of-bounds cells must not be available")
	}
	if !area[0][0] || !area[1][1] {
		t.Error("in-bounds unoccupied cells must be available")
	}

	area = tr.AvailableArea(geometry.Position{X: 0, Y: 0}, 3, 1)
	if area[0][1] {
		t.Error("occupied cell must not be available")
	}
}

func TestForceMarkAvailable(t *testing.T) {
	area := [][]bool{{false, false}, {false, false}}
	ForceMarkAvailable(geometry.Position{X: 1, Y: 0}, area)
	if !area[0][1] {
		t.Error("expected cell forced available")
	}
	// Out-of-range overrides are ignored.
	ForceMarkAvailable(geometry.Position{X: 5, Y: 5}, area)
}

func TestTracker_Reset(t *testing.T) {
	tr := NewTracker(5)
	tr.MarkPath([]geometry.Position{{X: 2, Y: 2}}, "x")
	tr.Reset()
	if tr.IsOccupied(geometry.Position{X: 2, Y: 2}) {
		t.Error("reset must clear occupancy")
	}
}
