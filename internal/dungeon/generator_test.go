package dungeon

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/mossgate/delver-engine/internal/geometry"
	"github.com/mossgate/delver-engine/internal/geomorph"
)

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	catalog := geomorph.NewCatalog(geomorph.BuiltIn(), rand.New(rand.NewSource(1)))
	g := NewGenerator(DefaultSettings(), catalog, nil)
	g.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return g
}

// assertNoOverlap fails if any two elements claim the same cell.
func assertNoOverlap(t *testing.T, m *DungeonMap) {
	t.Helper()
	seen := make(map[geometry.Position]string)
	claim := func(c geometry.Position, id string) {
		if prev, ok := seen[c]; ok && prev != id {
			t.Fatalf("cell %+v claimed by %s and %s", c, prev, id)
		}
		seen[c] = id
	}
	for i := range m.Rooms {
		r := &m.Rooms[i]
		for _, c := range patternCells(r.Position, r.EffectivePattern()) {
			claim(c, r.ID)
		}
	}
	for i := range m.Corridors {
		for _, c := range m.Corridors[i].Path {
			claim(c, m.Corridors[i].ID)
		}
	}
}

func TestGenerateInitialDungeon(t *testing.T) {
	g := newTestGenerator(t)
	m := g.GenerateInitialDungeon()

	if len(m.Rooms) != 1 || len(m.Corridors) != 0 {
		t.Fatalf("rooms=%d corridors=%d, want a lone entrance", len(m.Rooms), len(m.Corridors))
	}
	room := m.Rooms[0]
	if room.Type != geomorph.TypeEntrance {
		t.Fatalf("type = %q", room.Type)
	}
	want := geometry.Position{X: 12, Y: 13}
	if room.Position != want {
		t.Fatalf("position = %+v, want %+v", room.Position, want)
	}
	if m.TotalRooms != 1 || m.GridSize != 30 {
		t.Fatalf("totals = %d/%d", m.TotalRooms, m.GridSize)
	}

	for i, cp := range room.ConnectionPoints {
		if cp.State != PointUngenerated || cp.IsConnected || cp.IsGenerated {
			t.Errorf("point %d = %+v, want untouched", i, cp)
		}
	}

	exp := g.Exploration()
	if len(exp.DiscoveredRoomIDs) != 1 || exp.DiscoveredRoomIDs[0] != room.ID {
		t.Errorf("discovered = %v", exp.DiscoveredRoomIDs)
	}
	if len(exp.UnexploredConnectionPoints) != len(room.ConnectionPoints) {
		t.Errorf("unexplored = %d, want %d", len(exp.UnexploredConnectionPoints), len(room.ConnectionPoints))
	}
	for id, state := range exp.DoorStates {
		if state != DoorClosed {
			t.Errorf("door %s = %q, want closed", id, state)
		}
	}
}

func TestGenerateInitialDungeonResetsSession(t *testing.T) {
	g := newTestGenerator(t)
	first := g.GenerateInitialDungeon()
	cp := first.Rooms[0].ConnectionPoints[0]
	g.OpenDoor(first.Rooms[0].ID+"-door-0", cp, first.Rooms[0].ID)

	second := g.GenerateInitialDungeon()
	if len(second.Rooms) != 1 || len(second.Corridors) != 0 {
		t.Fatalf("stale elements survived reset: %d/%d", len(second.Rooms), len(second.Corridors))
	}
	if second.Rooms[0].ID != "room-01" {
		t.Fatalf("room counter not reset: %s", second.Rooms[0].ID)
	}
}

func TestOpenDoorGrowsDungeon(t *testing.T) {
	g := newTestGenerator(t)
	m := g.GenerateInitialDungeon()
	source := m.Rooms[0]
	cp := source.ConnectionPoints[0]

	m = g.OpenDoor(source.ID+"-door-0", cp, source.ID)

	if len(m.Rooms)+len(m.Corridors) != 2 {
		t.Fatalf("rooms=%d corridors=%d, want one new element", len(m.Rooms), len(m.Corridors))
	}

	got := m.Rooms[0].ConnectionPoints[0]
	if got.State != PointConnected || !got.IsGenerated || !got.IsConnected {
		t.Fatalf("triggering point = %+v", got)
	}
	if g.Exploration().DoorStates[source.ID+"-door-0"] != DoorOpen {
		t.Fatal("opened door not recorded open")
	}

	// The new element links back to its source.
	var points []ConnectionPoint
	if len(m.Rooms) == 2 {
		points = m.Rooms[1].ConnectionPoints
	} else {
		points = m.Corridors[0].ConnectionPoints
	}
	linked := false
	for _, p := range points {
		if p.IsConnected && p.ConnectedElementID == source.ID {
			linked = true
		}
	}
	if !linked {
		t.Fatalf("new element not linked to %s: %+v", source.ID, points)
	}

	assertNoOverlap(t, m)
}

func TestOpenDoorIdempotent(t *testing.T) {
	g := newTestGenerator(t)
	m := g.GenerateInitialDungeon()
	source := m.Rooms[0]
	cp := source.ConnectionPoints[0]

	m = g.OpenDoor(source.ID+"-door-0", cp, source.ID)
	rooms, corridors := len(m.Rooms), len(m.Corridors)

	m = g.OpenDoor(source.ID+"-door-0", cp, source.ID)
	if len(m.Rooms) != rooms || len(m.Corridors) != corridors {
		t.Fatalf("second open regenerated: %d/%d -> %d/%d",
			rooms, corridors, len(m.Rooms), len(m.Corridors))
	}
}

func TestOpenDoorUnknownElement(t *testing.T) {
	g := newTestGenerator(t)
	m := g.GenerateInitialDungeon()
	cp := m.Rooms[0].ConnectionPoints[0]

	m2 := g.OpenDoor("ghost-door-0", cp, "ghost")
	if len(m2.Rooms) != 1 || len(m2.Corridors) != 0 {
		t.Fatal("unknown element mutated the dungeon")
	}
}

func TestGenerationIsDeterministicForSeed(t *testing.T) {
	run := func() *DungeonMap {
		g := newTestGenerator(t)
		m := g.GenerateInitialDungeon()
		source := m.Rooms[0]
		return g.OpenDoor(source.ID+"-door-0", source.ConnectionPoints[0], source.ID)
	}
	a, b := run(), run()
	if !reflect.DeepEqual(a.Rooms, b.Rooms) {
		t.Fatal("rooms diverged between identical runs")
	}
	if !reflect.DeepEqual(a.Corridors, b.Corridors) {
		t.Fatal("corridors diverged between identical runs")
	}
}

// Seed "x" hashes to 120: 120%10 = 0 selects the room branch, and the
// scan starting at 120%7 lands on chamber-small.
func TestGenerateRoomBranch(t *testing.T) {
	g := newTestGenerator(t)
	m := g.GenerateInitialDungeon()
	source := m.Rooms[0]
	north := source.ConnectionPoints[0] // (15,13) facing north

	m = g.GenerateFromConnectionPoint(GenerationRequest{
		Point:           north,
		SourceElementID: source.ID,
		Seed:            "x",
	})

	if len(m.Rooms) != 2 || len(m.Corridors) != 0 {
		t.Fatalf("rooms=%d corridors=%d, want a second room", len(m.Rooms), len(m.Corridors))
	}
	room := m.Rooms[1]
	if room.TemplateID != "chamber-small" {
		t.Fatalf("template = %q", room.TemplateID)
	}
	if room.Position != (geometry.Position{X: 14, Y: 10}) {
		t.Fatalf("position = %+v", room.Position)
	}

	entry := room.ConnectionPoints[0]
	if !entry.IsConnected || entry.ConnectedElementID != source.ID {
		t.Fatalf("entry point = %+v", entry)
	}

	// Both sides of the shared wall agree: door open, source point
	// connected to the new room.
	if g.Exploration().DoorStates[source.ID+"-door-0"] != DoorOpen {
		t.Fatal("shared door not open on the source side")
	}
	src := m.Rooms[0].ConnectionPoints[0]
	if src.State != PointConnected || src.ConnectedElementID != room.ID {
		t.Fatalf("source point = %+v", src)
	}

	// Entrance keeps 3 unexplored points, the new room contributes 3.
	if got := len(g.Exploration().UnexploredConnectionPoints); got != 6 {
		t.Fatalf("unexplored = %d, want 6", got)
	}
}

// Seed "a" hashes to 97: 97%10 = 7 selects the corridor branch with
// length 3 + 97%5 = 5.
func TestGenerateCorridorBranch(t *testing.T) {
	g := newTestGenerator(t)
	m := g.GenerateInitialDungeon()
	source := m.Rooms[0]
	north := source.ConnectionPoints[0]

	m = g.GenerateFromConnectionPoint(GenerationRequest{
		Point:           north,
		SourceElementID: source.ID,
		Seed:            "a",
	})

	if len(m.Rooms) != 1 || len(m.Corridors) != 1 {
		t.Fatalf("rooms=%d corridors=%d, want a corridor", len(m.Rooms), len(m.Corridors))
	}
	c := m.Corridors[0]
	if c.Length != 5 || len(c.Path) != 5 {
		t.Fatalf("length = %d path = %v", c.Length, c.Path)
	}
	if c.Path[0] != (geometry.Position{X: 15, Y: 12}) {
		t.Fatalf("path start = %+v", c.Path[0])
	}
	if c.Type != corridorTypeStraight {
		t.Fatalf("type = %q", c.Type)
	}

	near, far := c.ConnectionPoints[0], c.ConnectionPoints[1]
	if !near.IsConnected || near.ConnectedElementID != source.ID || near.Position != north.Position {
		t.Fatalf("near point = %+v", near)
	}
	if far.State != PointUngenerated || far.Position != c.Path[4] {
		t.Fatalf("far point = %+v", far)
	}

	// Entrance keeps 3 unexplored points, corridor adds its far end.
	if got := len(g.Exploration().UnexploredConnectionPoints); got != 4 {
		t.Fatalf("unexplored = %d, want 4", got)
	}
}

func TestBuildCorridorClampsAtOccupancy(t *testing.T) {
	g := newTestGenerator(t)
	g.GenerateInitialDungeon()
	g.grid.MarkPath([]geometry.Position{{X: 12, Y: 10}}, "blocker")

	req := GenerationRequest{
		Point: ConnectionPoint{Position: geometry.Position{X: 10, Y: 10}, Direction: geometry.East},
	}
	c := g.buildCorridor(req, 0) // length 3 before clamping
	if c == nil {
		t.Fatal("clamped corridor should still exist")
	}
	if c.Length != 1 || c.Path[0] != (geometry.Position{X: 11, Y: 10}) {
		t.Fatalf("path = %v", c.Path)
	}
}

func TestBuildCorridorNoSpace(t *testing.T) {
	g := newTestGenerator(t)
	g.GenerateInitialDungeon()
	g.grid.MarkPath([]geometry.Position{{X: 11, Y: 10}}, "blocker")

	req := GenerationRequest{
		Point: ConnectionPoint{Position: geometry.Position{X: 10, Y: 10}, Direction: geometry.East},
	}
	if c := g.buildCorridor(req, 0); c != nil {
		t.Fatalf("corridor built into occupied cell: %v", c.Path)
	}
}

// A point with solid rock behind it resolves as a no-op: the point is
// consumed, nothing is placed, and the dungeon is otherwise untouched.
func TestGenerateConsumesBoxedInPoint(t *testing.T) {
	g := newTestGenerator(t)
	m := g.GenerateInitialDungeon()
	source := m.Rooms[0]
	west := source.ConnectionPoints[3] // (12,15) facing west
	g.grid.MarkPath([]geometry.Position{{X: 11, Y: 15}}, "blocker")

	m = g.GenerateFromConnectionPoint(GenerationRequest{
		Point:           west,
		SourceElementID: source.ID,
		Seed:            "x", // room branch first, then corridor, both blocked
	})

	if len(m.Rooms) != 1 || len(m.Corridors) != 0 {
		t.Fatalf("rooms=%d corridors=%d, want no growth", len(m.Rooms), len(m.Corridors))
	}
	got := m.Rooms[0].ConnectionPoints[3]
	if got.State != PointConnected || !got.IsGenerated {
		t.Fatalf("boxed-in point not consumed: %+v", got)
	}
	if got.IsConnected {
		t.Fatalf("no-op point claims a connection: %+v", got)
	}
	if got := len(g.Exploration().UnexploredConnectionPoints); got != 3 {
		t.Fatalf("unexplored = %d, want 3", got)
	}
}

func TestSnapshotRestore(t *testing.T) {
	g := newTestGenerator(t)
	g.GenerateInitialDungeon()
	before := g.CurrentMap()
	snap := g.takeSnapshot()

	source := before.Rooms[0]
	g.OpenDoor(source.ID+"-door-0", source.ConnectionPoints[0], source.ID)

	g.restoreSnapshot(snap)
	g.syncAllDoorStates()
	g.rebuildUnexploredPoints()
	after := g.buildMap()

	if !reflect.DeepEqual(before.Rooms, after.Rooms) {
		t.Fatalf("rooms diverged after restore:\nbefore %+v\nafter  %+v", before.Rooms, after.Rooms)
	}
	if len(after.Corridors) != 0 {
		t.Fatalf("corridors survived restore: %+v", after.Corridors)
	}

	// Derived state rebuilt: the entrance is occupied again, the cell
	// north of its door is free again.
	if !g.grid.IsOccupied(source.Position) {
		t.Fatal("grid not rebuilt from restored elements")
	}
	if g.grid.IsOccupied(source.ConnectionPoints[0].Position.Step(geometry.North)) {
		t.Fatal("rolled-back element still marked on the grid")
	}
	for id, state := range g.Exploration().DoorStates {
		if state != DoorClosed {
			t.Errorf("door %s = %q after restore, want closed", id, state)
		}
	}
	if got := len(g.Exploration().UnexploredConnectionPoints); got != 4 {
		t.Fatalf("unexplored = %d, want 4", got)
	}
}
