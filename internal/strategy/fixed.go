package strategy

import (
	"context"
	"fmt"

	"options-lab/internal/domain"
)

// Fixed always emits the same direction and confidence. Useful for
// exercising the sizing and simulation paths without market-dependent
// scoring.
type Fixed struct {
	Direction  domain.Direction
	Confidence float64
}

// NewFixed creates a fixed-output strategy.
func NewFixed(direction domain.Direction, confidence float64) *Fixed {
	return &Fixed{Direction: direction, Confidence: confidence}
}

// Name returns the strategy identifier including parameters.
func (s *Fixed) Name() string {
	return fmt.Sprintf("fixed_%s_%.2f", s.Direction, s.Confidence)
}

// GenerateSignal returns the configured direction and confidence.
func (s *Fixed) GenerateSignal(_ context.Context, mc *domain.MarketContext) (*domain.TradingSignal, error) {
	return &domain.TradingSignal{
		Ticker:     mc.Ticker,
		Direction:  s.Direction,
		Confidence: s.Confidence,
	}, nil
}

// Ensure Fixed implements Strategy
var _ Strategy = (*Fixed)(nil)
