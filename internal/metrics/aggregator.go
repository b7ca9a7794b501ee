package metrics

import (
	"context"
	"errors"

	"options-lab/internal/domain"
	"options-lab/internal/storage"
)

// ErrNoTrades is returned when no trades are available for aggregation.
var ErrNoTrades = errors.New("no trades available for aggregation")

// Aggregator computes strategy aggregates from trade records.
type Aggregator struct {
	tradeRecordStore storage.TradeRecordStore
}

// NewAggregator creates a new metrics aggregator.
func NewAggregator(tradeStore storage.TradeRecordStore) *Aggregator {
	return &Aggregator{tradeRecordStore: tradeStore}
}

// ComputeAggregate loads all trades for a strategy and computes its
// aggregate. Returns ErrNoTrades when the strategy has no trades.
func (a *Aggregator) ComputeAggregate(ctx context.Context, strategyID string) (*domain.StrategyAggregate, error) {
	trades, err := a.tradeRecordStore.GetByStrategy(ctx, strategyID)
	if err != nil {
		return nil, err
	}
	if len(trades) == 0 {
		return nil, ErrNoTrades
	}
	return computeFromTrades(trades, strategyID), nil
}

// ComputeFromTrades computes an aggregate directly from an in-memory
// trade slice, bypassing storage. Used by backtest reporting.
func ComputeFromTrades(trades []*domain.TradeRecord, strategyID string) *domain.StrategyAggregate {
	return computeFromTrades(trades, strategyID)
}
