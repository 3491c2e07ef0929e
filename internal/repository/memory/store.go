// Package memory holds map-backed repositories. They honour the same
// contracts as the postgresql package and back the offline CLI and the
// service tests.
package memory

import (
	"strconv"
	"sync"
	"time"
)

// Store is the shared state behind every repository of this package, so
// joins such as worker names behave like the SQL versions.
type Store struct {
	mu  sync.RWMutex
	seq int
	now func() time.Time

	workers       map[string]workerRow
	attendances   map[string]attendanceRow
	overrides     map[overrideKey]overrideRow
	permits       map[string]permitRow
	notifications []notificationRow
}

func NewStore() *Store {
	return &Store{
		now:         time.Now,
		workers:     make(map[string]workerRow),
		attendances: make(map[string]attendanceRow),
		overrides:   make(map[overrideKey]overrideRow),
		permits:     make(map[string]permitRow),
	}
}

// SetClock replaces the clock used for created_at and updated_at.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// nextID must be called with mu held.
func (s *Store) nextID(prefix string) string {
	s.seq++
	return prefix + "-" + strconv.Itoa(s.seq)
}

func (s *Store) workerName(id string) *string {
	w, ok := s.workers[id]
	if !ok {
		return nil
	}
	name := w.FullName
	return &name
}
