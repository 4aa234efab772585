// Package appstate is the process-wide application state container shared
// with subsystems unrelated to authentication (notification center,
// meeting widgets, ...). For session data it is strictly a read replica:
// the session manager pushes snapshots in, nothing here writes back.
//
// Snapshots hold plain data only — permissions cross in their serialized
// form, never as the live query structure.
package appstate

import (
	"sync"

	"github.com/kadrio/clientkit/internal/client/models"
	"github.com/kadrio/clientkit/internal/client/permission"
)

// Snapshot is the session state as seen by the rest of the application.
type Snapshot struct {
	Authenticated bool
	Token         string
	CompanyID     string
	User          *models.User
	Permissions   *permission.Serialized
}

// Store holds the current snapshot and fans updates out to subscribers.
type Store struct {
	mu          sync.RWMutex
	current     Snapshot
	subscribers map[int]chan Snapshot
	nextSubID   int
}

func NewStore() *Store {
	return &Store{subscribers: make(map[int]chan Snapshot)}
}

// Set replaces the current snapshot and notifies subscribers. Slow
// subscribers miss intermediate snapshots instead of blocking the session
// manager.
func (s *Store) Set(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = snap
	for _, ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
		}
	}
}

// Snapshot returns the current session snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe returns a channel receiving future snapshots and a cancel
// function. The channel is buffered; a subscriber that stops draining
// stops receiving, it never blocks publishers.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan Snapshot, 8)
	s.subscribers[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(ch)
		}
	}
	return ch, cancel
}
