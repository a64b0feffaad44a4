package alert

import (
	"sync"

	"github.com/bobmcallan/stockmind/internal/models"
)

// Store is an append-only in-memory alert list. Alerts are never removed
// and do not survive a restart.
type Store struct {
	mu     sync.RWMutex
	alerts []models.AlertSpec
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{}
}

// Add appends an alert
func (s *Store) Add(a models.AlertSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, a)
}

// Snapshot returns a copy of all alerts in insertion order
func (s *Store) Snapshot() []models.AlertSpec {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.AlertSpec, len(s.alerts))
	copy(out, s.alerts)
	return out
}

// Len returns the number of stored alerts
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alerts)
}
