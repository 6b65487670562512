package dungeon

import (
	"errors"
	"fmt"
	"time"

	"github.com/mossgate/delver-engine/internal/geometry"
	"github.com/mossgate/delver-engine/internal/geomorph"
	"github.com/mossgate/delver-engine/internal/grid"
)

// Generation tuning constants. The seed hash decides the branch: values
// below roomProbabilityTenths out of ten produce a room, the rest a
// corridor.
const (
	roomProbabilityTenths  = 7
	minCorridorLength      = 3
	corridorLengthVariance = 5

	entranceCenterOffsetX = 3
	entranceCenterOffsetY = 2
)

var errRoomInfeasible = errors.New("no feasible room placement")

// GenerationRequest carries everything one expansion step needs: the
// triggering connection point, the element it belongs to, and the seed
// deciding what grows behind it.
type GenerationRequest struct {
	Point           ConnectionPoint
	SourceElementID string
	Seed            string
}

// Generator is the incremental engine session. Rooms, corridors, the
// room counter and exploration state are authoritative; the grid
// tracker and shared wall manager are derived and rebuilt on rollback.
// Not safe for concurrent use; callers serialize access.
type Generator struct {
	settings  Settings
	catalog   *geomorph.Catalog
	grid      *grid.Tracker
	registry  *DoorRegistry
	walls     *SharedWallManager
	validator *RoomIntegrationValidator
	engine    *BlockExpansionEngine
	log       Logger
	now       func() time.Time

	mapID       string
	createdAt   time.Time
	rooms       []*Room
	corridors   []*Corridor
	roomCounter int
	exploration *ExplorationState
	currentMap  *DungeonMap
}

func NewGenerator(settings Settings, catalog *geomorph.Catalog, log Logger) *Generator {
	if log == nil {
		log = noopLogger{}
	}
	tracker := grid.NewTracker(settings.GridSize)
	registry := NewDoorRegistry()
	walls := NewSharedWallManager(registry, tracker, log)
	return &Generator{
		settings:    settings,
		catalog:     catalog,
		grid:        tracker,
		registry:    registry,
		walls:       walls,
		validator:   NewRoomIntegrationValidator(tracker, walls),
		engine:      NewBlockExpansionEngine(tracker, registry),
		log:         log,
		now:         time.Now,
		exploration: newExplorationState(),
	}
}

func (g *Generator) Settings() Settings { return g.settings }

// Exploration returns the live exploration state. Read-only for
// callers; the generator rewrites it after every operation.
func (g *Generator) Exploration() *ExplorationState { return g.exploration }

// CurrentMap returns the snapshot produced by the last mutating
// operation.
func (g *Generator) CurrentMap() *DungeonMap {
	if g.currentMap == nil {
		g.currentMap = g.buildMap()
	}
	return g.currentMap
}

// GenerateInitialDungeon resets the session and places a single
// entrance room centered on the grid. All of its connection points
// start ungenerated; everything beyond grows on demand.
func (g *Generator) GenerateInitialDungeon() *DungeonMap {
	g.rooms = nil
	g.corridors = nil
	g.roomCounter = 0
	g.exploration = newExplorationState()
	g.grid.Reset()
	g.walls.Reset()
	g.createdAt = g.now()
	g.mapID = fmt.Sprintf("map-%d", g.createdAt.UnixMilli())

	tpl := g.catalog.Random(geomorph.TypeEntrance)
	if tpl == nil {
		g.log.Printf("catalog has no entrance templates")
		g.currentMap = g.buildMap()
		return g.currentMap
	}

	pos := geometry.Position{
		X: g.settings.GridSize/2 - entranceCenterOffsetX,
		Y: g.settings.GridSize/2 - entranceCenterOffsetY,
	}
	check := g.validator.ValidatePlacement(tpl, pos, -1)
	if !check.IsValid {
		g.log.Printf("entrance placement at (%d,%d) failed: %v", pos.X, pos.Y, check.Errors)
		g.currentMap = g.buildMap()
		return g.currentMap
	}

	room := g.newRoomFromTemplate(tpl, pos, check)
	g.rooms = append(g.rooms, room)
	g.grid.MarkPattern(room.Position, room.EffectivePattern(), room.ID)
	g.walls.AddElement(room)
	g.exploration.DiscoveredRoomIDs = append(g.exploration.DiscoveredRoomIDs, room.ID)

	g.log.Printf("initial dungeon %s: entrance %s at (%d,%d)", g.mapID, room.ID, pos.X, pos.Y)

	g.syncAllDoorStates()
	g.rebuildUnexploredPoints()
	g.currentMap = g.buildMap()
	return g.currentMap
}

// OpenDoor handles a door-open event on one of an element's connection
// points. Opening an already handled point is idempotent: it never
// regenerates, only resyncs the visual state. A fresh point is marked
// generating and handed to the expansion pipeline.
func (g *Generator) OpenDoor(doorID string, point ConnectionPoint, sourceElementID string) *DungeonMap {
	el, ok := g.walls.Element(sourceElementID)
	if !ok {
		g.log.Printf("open door %s: unknown element %s", doorID, sourceElementID)
		return g.CurrentMap()
	}
	idx := -1
	for i, cp := range el.Points() {
		if cp.Position == point.Position && cp.Direction == point.Direction {
			idx = i
			break
		}
	}
	if idx == -1 {
		g.log.Printf("open door %s: element %s has no point at (%d,%d,%s)",
			doorID, sourceElementID, point.Position.X, point.Position.Y, point.Direction)
		return g.CurrentMap()
	}

	g.exploration.DoorStates[doorID] = DoorOpen

	cp := el.Points()[idx]
	if cp.State == PointGenerating || cp.State == PointConnected {
		g.syncAllDoorStates()
		g.currentMap = g.buildMap()
		return g.currentMap
	}

	// The far side may already exist: the shared door was generated and
	// opened by the neighbor. Connect without generating anything.
	if g.walls.IsDoorGenerated(cp.Position, cp.Direction) && g.walls.DoorStateAt(cp.Position, cp.Direction) == DoorOpen {
		cp.IsConnected = true
		cp.IsGenerated = true
		cp.State = PointConnected
		el.SetPoint(idx, cp)
		g.syncAllDoorStates()
		g.rebuildUnexploredPoints()
		g.currentMap = g.buildMap()
		return g.currentMap
	}

	cp.State = PointGenerating
	el.SetPoint(idx, cp)

	return g.GenerateFromConnectionPoint(GenerationRequest{
		Point:           cp,
		SourceElementID: sourceElementID,
		Seed:            GenerationSeed(cp.Position, cp.Direction, g.now()),
	})
}

// GenerateFromConnectionPoint runs one expansion step as a transaction:
// snapshot, attempt, and on any failure roll back to the snapshot and
// revert the triggering point so it can be retried.
func (g *Generator) GenerateFromConnectionPoint(req GenerationRequest) *DungeonMap {
	if req.Seed == "" {
		req.Seed = GenerationSeed(req.Point.Position, req.Point.Direction, g.now())
	}

	snap := g.takeSnapshot()
	if err := g.tryGenerate(req); err != nil {
		g.log.Printf("generation at (%d,%d,%s) failed, rolling back: %v",
			req.Point.Position.X, req.Point.Position.Y, req.Point.Direction, err)
		g.restoreSnapshot(snap)
		g.revertTriggeringPoint(req)
	}

	g.syncAllDoorStates()
	g.rebuildUnexploredPoints()
	g.currentMap = g.buildMap()
	return g.currentMap
}

// tryGenerate picks the branch from the seed hash. An infeasible room
// falls through to the corridor branch rather than failing the step.
func (g *Generator) tryGenerate(req GenerationRequest) error {
	hash := HashSeed(req.Seed)
	if hash%10 < roomProbabilityTenths {
		err := g.generateRoom(req, hash)
		if err == nil || !errors.Is(err, errRoomInfeasible) {
			return err
		}
	}
	return g.generateCorridor(req, hash)
}

// generateRoom places and organically expands a room behind the
// triggering point. Template choice is deterministic in the hash: the
// candidate list is scanned starting at a hash-derived offset and the
// first template that validates wins.
func (g *Generator) generateRoom(req GenerationRequest, hash int) error {
	sourceDir := req.Point.Direction
	backDir := geometry.Opposite(sourceDir)

	entry := req.Point.Position.Add(geometry.DoorAlignmentOffset(sourceDir, backDir))
	if !g.grid.IsWithinBounds(entry) || g.grid.IsOccupied(entry) {
		return errRoomInfeasible
	}

	candidates := append([]*geomorph.Template(nil), g.catalog.ByType(geomorph.TypeChamber)...)
	candidates = append(candidates, g.catalog.ByType(geomorph.TypeHall)...)
	if len(candidates) == 0 {
		return errRoomInfeasible
	}

	for i := 0; i < len(candidates); i++ {
		tpl := candidates[(hash+i)%len(candidates)]
		anchorIdx := tpl.PointIndexFacing(backDir)
		if anchorIdx == -1 {
			continue
		}
		anchor := tpl.ConnectionPoints[anchorIdx]
		targetPos := geometry.Position{
			X: entry.X - anchor.Position.X,
			Y: entry.Y - anchor.Position.Y,
		}

		check := g.validator.ValidatePlacement(tpl, targetPos, anchorIdx)
		if !check.IsValid {
			continue
		}

		result := g.engine.Expand(entry, sourceDir, tpl, targetPos)
		if len(result.Cells) == 0 {
			continue
		}

		room := g.newRoomFromExpansion(tpl, result, req)
		return g.integrate([]*Room{room}, nil, req)
	}

	return errRoomInfeasible
}

// generateCorridor builds a straight corridor behind the point. When no
// path fits at all the step succeeds as a no-op: the point is consumed
// so repeated opens do not retry forever against solid rock.
func (g *Generator) generateCorridor(req GenerationRequest, hash int) error {
	c := g.buildCorridor(req, hash)
	if c == nil {
		g.log.Printf("corridor at (%d,%d,%s) has no room to grow, consuming point",
			req.Point.Position.X, req.Point.Position.Y, req.Point.Direction)
		g.markTriggerResolved(req, "")
		return nil
	}
	return g.integrate(nil, []*Corridor{c}, req)
}

// integrate is the commit step. It re-checks bounds and overlap for
// every cell, then marks occupancy, registers shared walls, and records
// discovery. Any failure before the first mutation aborts cleanly; the
// caller's snapshot covers the rest.
func (g *Generator) integrate(rooms []*Room, corridors []*Corridor, req GenerationRequest) error {
	for _, room := range rooms {
		for _, cell := range patternCells(room.Position, room.EffectivePattern()) {
			if !g.grid.IsWithinBounds(cell) {
				return fmt.Errorf("room %s cell (%d,%d) out of bounds", room.ID, cell.X, cell.Y)
			}
			if g.grid.IsOccupied(cell) {
				return fmt.Errorf("room %s overlaps %s at (%d,%d)",
					room.ID, occupantName(g.grid, cell), cell.X, cell.Y)
			}
		}
	}
	for _, c := range corridors {
		for _, cell := range c.Path {
			if !g.grid.IsWithinBounds(cell) {
				return fmt.Errorf("corridor %s cell (%d,%d) out of bounds", c.ID, cell.X, cell.Y)
			}
			if g.grid.IsOccupied(cell) {
				return fmt.Errorf("corridor %s overlaps %s at (%d,%d)",
					c.ID, occupantName(g.grid, cell), cell.X, cell.Y)
			}
		}
	}

	for _, room := range rooms {
		g.rooms = append(g.rooms, room)
		g.grid.MarkPattern(room.Position, room.EffectivePattern(), room.ID)
		g.walls.AddElement(room)
		g.exploration.DiscoveredRoomIDs = append(g.exploration.DiscoveredRoomIDs, room.ID)
		g.log.Printf("generated %s (%s) at (%d,%d), %d points",
			room.ID, room.TemplateID, room.Position.X, room.Position.Y, len(room.ConnectionPoints))
	}
	for _, c := range corridors {
		g.corridors = append(g.corridors, c)
		g.grid.MarkPath(c.Path, c.ID)
		g.walls.AddElement(c)
		g.exploration.DiscoveredCorridorIDs = append(g.exploration.DiscoveredCorridorIDs, c.ID)
		g.log.Printf("generated %s at (%d,%d), length %d", c.ID, c.Position.X, c.Position.Y, c.Length)
	}

	newID := ""
	if len(rooms) > 0 {
		newID = rooms[0].ID
	} else if len(corridors) > 0 {
		newID = corridors[0].ID
	}
	g.markTriggerResolved(req, newID)
	return nil
}

// markTriggerResolved finalizes the triggering point on the source
// element and its registry door after a successful step. newElementID
// is empty for a no-op step.
func (g *Generator) markTriggerResolved(req GenerationRequest, newElementID string) {
	el, ok := g.walls.Element(req.SourceElementID)
	if !ok {
		return
	}
	for i, cp := range el.Points() {
		if cp.Position != req.Point.Position || cp.Direction != req.Point.Direction {
			continue
		}
		cp.IsGenerated = true
		cp.State = PointConnected
		cp.GenerationSeed = req.Seed
		if newElementID != "" {
			cp.IsConnected = true
			cp.ConnectedElementID = newElementID
		}
		el.SetPoint(i, cp)
		break
	}

	if door, ok := g.registry.FindDoorBetween(req.Point.Position, req.Point.Direction); ok {
		g.registry.MarkGenerated(door.Location.GlobalID, newElementID)
		if newElementID != "" {
			g.registry.UpdateState(door.Location.GlobalID, DoorOpen)
		}
	}
}

// revertTriggeringPoint puts a rolled-back step's point back to
// ungenerated so the player can try the door again.
func (g *Generator) revertTriggeringPoint(req GenerationRequest) {
	el, ok := g.walls.Element(req.SourceElementID)
	if !ok {
		return
	}
	for i, cp := range el.Points() {
		if cp.Position == req.Point.Position && cp.Direction == req.Point.Direction && !cp.IsConnected {
			cp.State = PointUngenerated
			cp.IsGenerated = false
			el.SetPoint(i, cp)
			break
		}
	}
}

func (g *Generator) newRoomFromTemplate(tpl *geomorph.Template, pos geometry.Position, check PlacementResult) *Room {
	room := &Room{
		ID:          g.nextRoomID(),
		Shape:       tpl.Shape,
		Type:        tpl.Type,
		Size:        tpl.Size,
		Position:    pos,
		Width:       tpl.Width,
		Height:      tpl.Height,
		TemplateID:  tpl.ID,
		GridPattern: check.Trimmed,
		IsGenerated: true,
	}
	for _, vp := range check.ValidPoints {
		room.ConnectionPoints = append(room.ConnectionPoints, ConnectionPoint{
			Direction: vp.Point.Direction,
			Position:  geometry.Position{X: pos.X + vp.Point.Position.X, Y: pos.Y + vp.Point.Position.Y},
			State:     PointUngenerated,
		})
	}
	return room
}

func (g *Generator) newRoomFromExpansion(tpl *geomorph.Template, result ExpansionResult, req GenerationRequest) *Room {
	room := &Room{
		ID:               g.nextRoomID(),
		Shape:            tpl.Shape,
		Type:             tpl.Type,
		Size:             tpl.Size,
		Position:         result.Origin,
		Width:            result.Width,
		Height:           result.Height,
		TemplateID:       tpl.ID,
		GridPattern:      result.Pattern,
		IsGenerated:      true,
		ConnectionPoints: result.Points,
	}
	for i := range room.ConnectionPoints {
		if room.ConnectionPoints[i].IsConnected {
			room.ConnectionPoints[i].ConnectedElementID = req.SourceElementID
			room.ConnectionPoints[i].GenerationSeed = req.Seed
		}
	}
	return room
}

func (g *Generator) nextRoomID() string {
	g.roomCounter++
	return fmt.Sprintf("room-%02d", g.roomCounter)
}

// syncAllDoorStates rewrites every element-local door state from the
// registry. Local ids follow {elementId}-door-{index}; the registry is
// the only source of truth and this projection overwrites any stale
// visual state.
func (g *Generator) syncAllDoorStates() {
	for _, el := range g.liveElements() {
		for i, cp := range el.Points() {
			localID := fmt.Sprintf("%s-door-%d", el.ElementID(), i)
			g.exploration.DoorStates[localID] = g.walls.DoorStateAt(cp.Position, cp.Direction)
		}
	}
}

// rebuildUnexploredPoints recollects every still-ungenerated point, in
// element order, for the presentation layer.
func (g *Generator) rebuildUnexploredPoints() {
	g.exploration.UnexploredConnectionPoints = nil
	for _, el := range g.liveElements() {
		for _, cp := range el.Points() {
			if cp.State == PointUngenerated {
				g.exploration.UnexploredConnectionPoints = append(g.exploration.UnexploredConnectionPoints, cp)
			}
		}
	}
}

func (g *Generator) liveElements() []MapElement {
	els := make([]MapElement, 0, len(g.rooms)+len(g.corridors))
	for _, r := range g.rooms {
		els = append(els, r)
	}
	for _, c := range g.corridors {
		els = append(els, c)
	}
	return els
}

// snapshot captures the authoritative state only. The grid tracker and
// shared wall machinery are derived and rebuilt on restore.
type snapshot struct {
	rooms       []*Room
	corridors   []*Corridor
	roomCounter int
	exploration *ExplorationState
}

func (g *Generator) takeSnapshot() snapshot {
	s := snapshot{
		roomCounter: g.roomCounter,
		exploration: g.exploration.Clone(),
	}
	for _, r := range g.rooms {
		s.rooms = append(s.rooms, r.clone())
	}
	for _, c := range g.corridors {
		s.corridors = append(s.corridors, c.clone())
	}
	return s
}

func (g *Generator) restoreSnapshot(s snapshot) {
	g.rooms = s.rooms
	g.corridors = s.corridors
	g.roomCounter = s.roomCounter
	g.exploration = s.exploration
	g.rebuildDerivedState()
}

// rebuildDerivedState repopulates the grid tracker and shared wall
// manager from the element lists. Occupancy first, in full, so the wall
// manager's adjacency checks see the complete grid.
func (g *Generator) rebuildDerivedState() {
	g.grid.Reset()
	g.walls.Reset()
	for _, r := range g.rooms {
		g.grid.MarkPattern(r.Position, r.EffectivePattern(), r.ID)
	}
	for _, c := range g.corridors {
		g.grid.MarkPath(c.Path, c.ID)
	}
	for _, r := range g.rooms {
		g.walls.AddElement(r)
	}
	for _, c := range g.corridors {
		g.walls.AddElement(c)
	}
}

func (g *Generator) buildMap() *DungeonMap {
	m := &DungeonMap{
		ID:         g.mapID,
		Name:       "delve",
		CreatedAt:  g.createdAt,
		GridSize:   g.settings.GridSize,
		TotalRooms: len(g.rooms),
	}
	for _, r := range g.rooms {
		m.Rooms = append(m.Rooms, *r.clone())
	}
	for _, c := range g.corridors {
		m.Corridors = append(m.Corridors, *c.clone())
	}
	return m
}

func occupantName(tracker *grid.Tracker, cell geometry.Position) string {
	if id, ok := tracker.OccupantAt(cell); ok {
		return id
	}
	return "unknown"
}
