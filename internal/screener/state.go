package screener

import "sync"

// ResultStore holds the most recent cycle result for the display
// collaborators (HTTP handlers, websocket pushes). One writer per
// cycle, many concurrent readers.
type ResultStore struct {
	mu     sync.RWMutex
	latest *CycleResult
}

// NewResultStore creates an empty ResultStore.
func NewResultStore() *ResultStore {
	return &ResultStore{}
}

// Set publishes a completed cycle.
func (s *ResultStore) Set(result *CycleResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = result
}

// Latest returns the most recent cycle, or nil before the first one.
func (s *ResultStore) Latest() *CycleResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}
