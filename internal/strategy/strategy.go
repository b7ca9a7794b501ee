// Package strategy scores market contexts into directional trading
// signals. Strategies are deterministic and perform no I/O: the same
// immutable context always yields the same signal.
package strategy

import (
	"context"

	"options-lab/internal/domain"
)

// Strategy produces a trading signal from a per-ticker market context.
type Strategy interface {
	// GenerateSignal scores the context. It never fails on missing or
	// malformed context fields; every sub-signal degrades to a neutral
	// contribution instead.
	GenerateSignal(ctx context.Context, mc *domain.MarketContext) (*domain.TradingSignal, error)

	// Name returns the strategy identifier.
	Name() string
}
