package idempotency

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps keys in process, for single-instance deployments and tests. Keys do not
// survive a restart.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// mutate runs fn on the stored record for key under the lock and stores what it returns when
// keep is true.
func (s *MemoryStore) mutate(key string, fn func(current Record, found bool) (next Record, keep bool, err error)) error {
	id := documentID(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	current, found := s.records[id]
	next, keep, err := fn(current, found)
	if err == nil && keep {
		s.records[id] = next
	}
	return err
}

func (s *MemoryStore) Reserve(_ context.Context, key, fingerprint string, now time.Time, ttl time.Duration) (Reservation, error) {
	var out Reservation
	err := s.mutate(key, func(current Record, found bool) (Record, bool, error) {
		res, write, err := reserve(current, found, key, fingerprint, now.UTC(), normalizeTTL(ttl))
		out = res
		return res.Record, write, err
	})
	if err != nil {
		return Reservation{}, err
	}
	return out, nil
}

func (s *MemoryStore) SaveResponse(_ context.Context, key, fingerprint string, resp Response, now time.Time, ttl time.Duration) error {
	return s.mutate(key, func(current Record, found bool) (Record, bool, error) {
		rec, err := complete(current, found, key, fingerprint, resp, now.UTC(), normalizeTTL(ttl))
		return rec, true, err
	})
}

func (s *MemoryStore) Release(_ context.Context, key, fingerprint string) error {
	id := documentID(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records[id].Fingerprint == fingerprint {
		delete(s.records, id)
	}
	return nil
}

// CleanupExpired removes at most limit expired records, or all of them when limit <= 0.
func (s *MemoryStore) CleanupExpired(_ context.Context, now time.Time, limit int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, rec := range s.records {
		if limit > 0 && removed == limit {
			break
		}
		if !rec.ExpiresAt.IsZero() && rec.expired(now.UTC()) {
			delete(s.records, id)
			removed++
		}
	}
	return removed, nil
}
