package errorhandler

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tarsy-labs/chartpilot/pkg/models"
)

// idempotencyKey identifies a (query_id, error_code) pair.
type idempotencyKey struct {
	queryID   string
	errorCode string
}

type idempotencyEntry struct {
	record   models.ErrorRecord
	storedAt time.Time
}

// IdempotencyStore is the TTL-backed duplicate-error detector, built on
// the injected-clockwork.Clock pattern used throughout this package for
// deterministic TTL testing.
type IdempotencyStore struct {
	mu      sync.Mutex
	entries map[idempotencyKey]idempotencyEntry
	ttl     time.Duration
	clock   clockwork.Clock
}

// NewIdempotencyStore builds a store with the given TTL and clock. A nil
// clock defaults to the real wall clock.
func NewIdempotencyStore(ttl time.Duration, clock clockwork.Clock) *IdempotencyStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &IdempotencyStore{
		entries: make(map[idempotencyKey]idempotencyEntry),
		ttl:     ttl,
		clock:   clock,
	}
}

// CheckDuplicate returns the previously stored ErrorRecord if (queryID,
// errorCode) was seen within the TTL window, and whether it was found.
func (s *IdempotencyStore) CheckDuplicate(queryID, errorCode string) (models.ErrorRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := idempotencyKey{queryID, errorCode}
	entry, ok := s.entries[key]
	if !ok {
		return models.ErrorRecord{}, false
	}
	if s.clock.Now().Sub(entry.storedAt) >= s.ttl {
		delete(s.entries, key)
		return models.ErrorRecord{}, false
	}
	return entry.record, true
}

// Store records the outcome of processing (queryID, errorCode).
func (s *IdempotencyStore) Store(queryID, errorCode string, record models.ErrorRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[idempotencyKey{queryID, errorCode}] = idempotencyEntry{
		record:   record,
		storedAt: s.clock.Now(),
	}
}

// Sweep removes every entry whose TTL has elapsed.
func (s *IdempotencyStore) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	for key, entry := range s.entries {
		if now.Sub(entry.storedAt) >= s.ttl {
			delete(s.entries, key)
		}
	}
}
