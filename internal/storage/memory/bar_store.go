package memory

import (
	"context"
	"sort"
	"sync"

	"options-lab/internal/domain"
	"options-lab/internal/storage"
)

type barKey struct {
	ticker string
	kind   string
}

// BarStore is an in-memory implementation of storage.BarStore.
type BarStore struct {
	mu   sync.RWMutex
	data map[barKey]map[int64]domain.Bar // (ticker, kind) -> timestamp_ms -> bar
}

// NewBarStore creates a new in-memory bar store.
func NewBarStore() *BarStore {
	return &BarStore{
		data: make(map[barKey]map[int64]domain.Bar),
	}
}

// InsertBulk adds multiple bars for (ticker, kind). Fails entire batch
// on duplicate (ticker, kind, timestamp_ms).
func (s *BarStore) InsertBulk(_ context.Context, ticker, kind string, bars []domain.Bar) error {
	if ticker == "" || kind == "" {
		return storage.ErrInvalidInput
	}
	if len(bars) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := barKey{ticker: ticker, kind: kind}
	existing := s.data[key]

	// First pass: check for duplicates (existing + intra-batch)
	batchKeys := make(map[int64]struct{}, len(bars))
	for _, bar := range bars {
		if _, exists := existing[bar.TimestampMs]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[bar.TimestampMs]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[bar.TimestampMs] = struct{}{}
	}

	if existing == nil {
		existing = make(map[int64]domain.Bar, len(bars))
		s.data[key] = existing
	}
	for _, bar := range bars {
		existing[bar.TimestampMs] = bar
	}

	return nil
}

// GetByTicker retrieves all bars for (ticker, kind), ordered by timestamp ASC.
func (s *BarStore) GetByTicker(_ context.Context, ticker, kind string) ([]domain.Bar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(ticker, kind, func(int64) bool { return true }), nil
}

// GetByTimeRange retrieves bars for (ticker, kind) within [start, end] (inclusive).
func (s *BarStore) GetByTimeRange(_ context.Context, ticker, kind string, start, end int64) ([]domain.Bar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(ticker, kind, func(ts int64) bool {
		return ts >= start && ts <= end
	}), nil
}

func (s *BarStore) collect(ticker, kind string, include func(int64) bool) []domain.Bar {
	var result []domain.Bar
	for ts, bar := range s.data[barKey{ticker: ticker, kind: kind}] {
		if include(ts) {
			result = append(result, bar)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TimestampMs < result[j].TimestampMs
	})
	return result
}

var _ storage.BarStore = (*BarStore)(nil)
