package memory

import (
	"context"
	"sort"
	"sync"

	"options-lab/internal/domain"
	"options-lab/internal/storage"
)

type intentEntry struct {
	intent domain.TradeIntent
	result domain.ExecutionResult
}

// IntentRecordStore is an in-memory implementation of storage.IntentRecordStore.
type IntentRecordStore struct {
	mu   sync.RWMutex
	data map[string]intentEntry // keyed by intent_id
}

// NewIntentRecordStore creates a new in-memory intent record store.
func NewIntentRecordStore() *IntentRecordStore {
	return &IntentRecordStore{
		data: make(map[string]intentEntry),
	}
}

// Insert adds a new intent with its execution result. Returns
// ErrDuplicateKey if intent_id exists.
func (s *IntentRecordStore) Insert(_ context.Context, i *domain.TradeIntent, result domain.ExecutionResult) error {
	if i == nil || i.IntentID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[i.IntentID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[i.IntentID] = intentEntry{intent: *i, result: result}
	return nil
}

// GetByID retrieves an intent by its ID. Returns ErrNotFound if not exists.
func (s *IntentRecordStore) GetByID(_ context.Context, intentID string) (*domain.TradeIntent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.data[intentID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := entry.intent
	return &copy, nil
}

// GetByTicker retrieves all intents for a ticker, ordered by created_at ASC.
func (s *IntentRecordStore) GetByTicker(_ context.Context, ticker string) ([]*domain.TradeIntent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeIntent
	for _, entry := range s.data {
		if entry.intent.Ticker == ticker {
			copy := entry.intent
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAtMs < result[j].CreatedAtMs
	})

	return result, nil
}

var _ storage.IntentRecordStore = (*IntentRecordStore)(nil)
