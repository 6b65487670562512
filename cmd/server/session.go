package main

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/mossgate/delver-engine/internal/dungeon"
	"github.com/mossgate/delver-engine/internal/geomorph"
	"github.com/mossgate/delver-engine/internal/protocol"
	"github.com/mossgate/delver-engine/internal/ws"
)

// Session serializes all access to one generator and fans resulting
// patches out to every connected client.
type Session struct {
	mu       sync.Mutex
	log      *logrus.Logger
	settings dungeon.Settings
	catalog  *geomorph.Catalog
	gen      *dungeon.Generator
	hub      *ws.Hub

	sequence uint64
	eventID  int64
}

func NewSession(settings dungeon.Settings, catalog *geomorph.Catalog, log *logrus.Logger) *Session {
	return &Session{
		log:      log,
		settings: settings,
		catalog:  catalog,
		gen:      dungeon.NewGenerator(settings, catalog, log),
		hub:      ws.NewHub(),
	}
}

// NewDungeon discards the current session state and generates a fresh
// entrance. A positive gridSize overrides the configured default.
func (s *Session) NewDungeon(gridSize int) {
	s.mu.Lock()
	if gridSize > 0 && gridSize != s.gen.Settings().GridSize {
		settings := s.settings
		settings.GridSize = gridSize
		s.gen = dungeon.NewGenerator(settings, s.catalog, s.log)
	}
	m := s.gen.GenerateInitialDungeon()
	exploration := s.gen.Exploration().Clone()
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"mapId":    m.ID,
		"gridSize": m.GridSize,
	}).Info("new dungeon generated")

	if len(m.Rooms) > 0 {
		s.broadcast(protocol.PatchRoomsRevealed, protocol.RoomsRevealed{Rooms: m.Rooms})
	}
	s.broadcast(protocol.PatchMapUpdated, protocol.MapUpdated{Map: m, Exploration: exploration})
}

// OpenDoor routes a door-open intent into the generator and broadcasts
// whatever changed: the door state, newly revealed elements, and the
// authoritative map.
func (s *Session) OpenDoor(req protocol.RequestOpenDoor) {
	s.mu.Lock()
	before := s.gen.CurrentMap()
	point := dungeon.ConnectionPoint{Position: req.Position, Direction: req.Direction}
	m := s.gen.OpenDoor(req.DoorID, point, req.ElementID)

	var newRooms []dungeon.Room
	var newCorridors []dungeon.Corridor
	if len(m.Rooms) > len(before.Rooms) {
		newRooms = m.Rooms[len(before.Rooms):]
	}
	if len(m.Corridors) > len(before.Corridors) {
		newCorridors = m.Corridors[len(before.Corridors):]
	}
	exploration := s.gen.Exploration().Clone()
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"doorId":    req.DoorID,
		"elementId": req.ElementID,
		"rooms":     len(newRooms),
		"corridors": len(newCorridors),
	}).Info("door opened")

	s.broadcast(protocol.PatchDoorStateChanged, protocol.DoorStateChanged{
		DoorID: req.DoorID,
		State:  exploration.DoorStates[req.DoorID],
	})
	if len(newRooms) > 0 {
		s.broadcast(protocol.PatchRoomsRevealed, protocol.RoomsRevealed{Rooms: newRooms})
	}
	if len(newCorridors) > 0 {
		s.broadcast(protocol.PatchCorridorsRevealed, protocol.CorridorsRevealed{Corridors: newCorridors})
	}
	s.broadcast(protocol.PatchMapUpdated, protocol.MapUpdated{Map: m, Exploration: exploration})
}

// Snapshot builds the full-state frame for a connecting or resyncing
// client.
func (s *Session) Snapshot() protocol.Snapshot {
	s.mu.Lock()
	m := s.gen.CurrentMap()
	exploration := s.gen.Exploration().Clone()
	s.mu.Unlock()
	return protocol.BuildSnapshot(m, exploration, atomic.LoadInt64(&s.eventID))
}

func (s *Session) broadcast(patchType string, payload any) {
	env := protocol.PatchEnvelope{
		Sequence: atomic.AddUint64(&s.sequence, 1),
		EventID:  atomic.AddInt64(&s.eventID, 1),
		Type:     patchType,
		Payload:  payload,
	}
	if err := s.hub.BroadcastJSON(env); err != nil {
		s.log.WithError(err).Error("broadcast failed")
	}
}
