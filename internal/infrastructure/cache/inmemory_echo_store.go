package cache

import (
	"context"
	"sync"
	"time"

	domainsync "github.com/erp/content-sync/internal/domain/sync"
)

// InMemoryEchoStore keeps echo markers in process memory. Suitable for
// single-instance deployments and tests; distributed deployments need
// the Redis-backed store so all instances see the same markers.
type InMemoryEchoStore struct {
	mu      sync.Mutex
	window  time.Duration
	expires map[string]time.Time
	now     func() time.Time
}

// NewInMemoryEchoStore creates an in-memory echo store with the given
// ignore window
func NewInMemoryEchoStore(window time.Duration) *InMemoryEchoStore {
	return &InMemoryEchoStore{
		window:  window,
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Mark records a marker that expires after the ignore window
func (s *InMemoryEchoStore) Mark(_ context.Context, entityID string, side domainsync.Side) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expires[entityID+":"+side.String()] = s.now().Add(s.window)
	s.sweepLocked()
}

// IsMarked reports whether a live marker exists for the entity and side
func (s *InMemoryEchoStore) IsMarked(_ context.Context, entityID string, side domainsync.Side) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	deadline, ok := s.expires[entityID+":"+side.String()]
	if !ok {
		return false
	}
	if s.now().After(deadline) {
		delete(s.expires, entityID+":"+side.String())
		return false
	}
	return true
}

// sweepLocked drops expired markers; called with the lock held
func (s *InMemoryEchoStore) sweepLocked() {
	now := s.now()
	for key, deadline := range s.expires {
		if now.After(deadline) {
			delete(s.expires, key)
		}
	}
}

// Ensure InMemoryEchoStore implements EchoMarkerStore
var _ domainsync.EchoMarkerStore = (*InMemoryEchoStore)(nil)
