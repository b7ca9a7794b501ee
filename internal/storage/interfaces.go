package storage

import (
	"context"

	"options-lab/internal/domain"
)

// TradeRecordStore provides access to trade_records storage.
type TradeRecordStore interface {
	// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
	Insert(ctx context.Context, t *domain.TradeRecord) error

	// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, trades []*domain.TradeRecord) error

	// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, tradeID string) (*domain.TradeRecord, error)

	// GetByTicker retrieves all trades for a ticker, ordered by sequence ASC.
	GetByTicker(ctx context.Context, ticker string) ([]*domain.TradeRecord, error)

	// GetByStrategy retrieves all trades for a strategy, ordered by sequence ASC.
	GetByStrategy(ctx context.Context, strategyID string) ([]*domain.TradeRecord, error)
}

// IntentRecordStore provides access to trade_intents storage.
type IntentRecordStore interface {
	// Insert adds a new intent with its execution result.
	// Returns ErrDuplicateKey if intent_id exists.
	Insert(ctx context.Context, i *domain.TradeIntent, result domain.ExecutionResult) error

	// GetByID retrieves an intent by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, intentID string) (*domain.TradeIntent, error)

	// GetByTicker retrieves all intents for a ticker, ordered by created_at ASC.
	GetByTicker(ctx context.Context, ticker string) ([]*domain.TradeIntent, error)
}

// Bar series kinds stored in BarStore.
const (
	BarKindUnderlying = "underlying"
	BarKindCallAgg    = "call_agg"
	BarKindPutAgg     = "put_agg"
)

// BarStore provides access to bar time series storage.
type BarStore interface {
	// InsertBulk adds multiple bars for (ticker, kind). Fails entire
	// batch on duplicate (ticker, kind, timestamp_ms).
	InsertBulk(ctx context.Context, ticker, kind string, bars []domain.Bar) error

	// GetByTicker retrieves all bars for (ticker, kind), ordered by timestamp ASC.
	GetByTicker(ctx context.Context, ticker, kind string) ([]domain.Bar, error)

	// GetByTimeRange retrieves bars for (ticker, kind) within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, ticker, kind string, start, end int64) ([]domain.Bar, error)
}
