package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"wavecast-hq/tunegate/pkg/journal"
)

// DefaultMaxEntries is the record cap applied when no explicit limit is
// configured for the in-memory backend.
const DefaultMaxEntries = 10000

// MemoryStorage implements the Storage interface using a bounded in-memory
// slice. Records are kept in arrival order and the oldest entries are evicted
// once the cap is reached. Suitable for development and single-node
// deployments that can tolerate losing the journal on restart.
type MemoryStorage struct {
	records    []*journal.Record
	maxEntries int
	mu         sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage backend. A non-positive
// maxEntries falls back to DefaultMaxEntries.
func NewMemoryStorage(maxEntries int) *MemoryStorage {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryStorage{
		records:    make([]*journal.Record, 0, 64),
		maxEntries: maxEntries,
	}
}

// Store persists a journal record to memory, evicting the oldest records
// when the configured cap is exceeded.
func (s *MemoryStorage) Store(ctx context.Context, record *journal.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy so later caller mutations cannot reach stored state.
	recordCopy := *record
	s.records = append(s.records, &recordCopy)

	if overflow := len(s.records) - s.maxEntries; overflow > 0 {
		s.records = append(s.records[:0], s.records[overflow:]...)
	}

	return nil
}

// Query retrieves journal records matching the query filters, newest first.
func (s *MemoryStorage) Query(ctx context.Context, query *journal.Query) ([]*journal.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*journal.Record
	for _, record := range s.records {
		if query.Matches(record) {
			recordCopy := *record
			results = append(results, &recordCopy)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Time.After(results[j].Time)
	})

	start := query.Offset
	if start > len(results) {
		return []*journal.Record{}, nil
	}

	end := len(results)
	if query.Limit > 0 && start+query.Limit < end {
		end = start + query.Limit
	}

	return results[start:end], nil
}

// Count returns the number of journal records matching the query filters.
func (s *MemoryStorage) Count(ctx context.Context, query *journal.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if query.Matches(record) {
			count++
		}
	}

	return count, nil
}

// DeleteBefore removes all records whose time is strictly before the cutoff
// and returns the number removed.
func (s *MemoryStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	var deleted int64
	for _, record := range s.records {
		if record.Time.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, record)
	}

	// Zero the evicted tail so the backing array does not pin records.
	for i := len(kept); i < len(s.records); i++ {
		s.records[i] = nil
	}
	s.records = kept

	return deleted, nil
}

// Close releases resources held by the storage backend.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	return nil
}

// Clear removes all records from storage (for testing).
func (s *MemoryStorage) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = s.records[:0]
}

// Size returns the number of records in storage (for testing).
func (s *MemoryStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}
