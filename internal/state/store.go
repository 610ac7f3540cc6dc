package state

import (
	"sync"

	"github.com/dvilela/sistema-vida/internal/player"
	"go.uber.org/zap"
)

// PlayerState is the full session aggregate held by the store. Snapshots
// handed out by the store are immutable: mutation happens only through
// Dispatch, which swaps in a new snapshot built by the reducer.
type PlayerState struct {
	Profile          *player.Profile
	Goals            []player.Goal
	Missions         []player.RankedMission
	Skills           []player.Skill
	Routine          *player.Routine
	RoutineTemplates *player.RoutineTemplates
	AllUsers         []player.Profile
	WorldEvents      []player.WorldEvent
	Dungeon          *player.DungeonSession

	// UI-transient fields
	CurrentPage       string
	GeneratingMission bool
	MissionFeedback   map[string]string
	DataLoaded        bool
}

// Listener observes every new state snapshot.
type Listener func(*PlayerState)

// Store is the single-writer state container. All state transitions run
// synchronously under one lock, so no two actions can interleave mid-update.
type Store struct {
	mu        sync.RWMutex
	state     *PlayerState
	listeners map[int]Listener
	nextSub   int
	logger    *zap.Logger
}

// New creates a store holding an empty, not-yet-loaded state.
func New(logger *zap.Logger) *Store {
	return &Store{
		state: &PlayerState{
			CurrentPage:     "dashboard",
			MissionFeedback: map[string]string{},
		},
		listeners: make(map[int]Listener),
		logger:    logger,
	}
}

// Snapshot returns the current state. Callers must treat it as read-only.
func (s *Store) Snapshot() *PlayerState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch applies an action through the reducer and notifies subscribers
// when the snapshot changed.
func (s *Store) Dispatch(a Action) *PlayerState {
	s.mu.Lock()
	prev := s.state
	next := reduce(prev, a)
	s.state = next
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	if next != prev {
		for _, l := range listeners {
			l(next)
		}
	}
	return next
}

// Subscribe registers a listener for state changes and returns an
// unsubscribe function.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}
