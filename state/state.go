package state

import (
	"sync"
	"time"
)

// Status is a read-only snapshot of the refresh state.
type Status struct {
	Refreshing    bool
	LastRefreshAt time.Time
	LastFetched   int
	LastInserted  int
	LastOK        bool
	RefreshTotal  uint64
}

// AppState holds in-memory refresh status shared between handlers and the service.
type AppState struct {
	mu sync.RWMutex
	s  Status
}

// Global is the shared application state instance
var Global = &AppState{}

// BeginRefresh marks a refresh as in progress.
func (s *AppState) BeginRefresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.s.Refreshing = true
}

// FinishRefresh records the result of a completed refresh.
func (s *AppState) FinishRefresh(fetched, inserted int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.s.Refreshing = false
	s.s.LastRefreshAt = time.Now()
	s.s.LastFetched = fetched
	s.s.LastInserted = inserted
	s.s.LastOK = ok
	s.s.RefreshTotal++
}

// Snapshot returns a copy of the current state.
func (s *AppState) Snapshot() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.s
}
