// Package risk sizes positions and derives stop levels under strict
// capital controls. All functions are pure arithmetic: invalid numeric
// input yields a zero quantity rather than an error.
package risk

import "math"

// PositionSizingInput holds everything needed to size one position.
type PositionSizingInput struct {
	AccountEquity     float64
	TradeRiskFraction float64 // e.g. 0.02 for 2%
	ContractPrice     float64
	Confidence        float64 // 0-1
	MaxPositions      int
}

// Manager determines position sizing and stop levels.
type Manager struct {
	// MaxDailyLossPct caps the per-trade risk fraction; the daily-loss
	// ceiling always dominates the caller-requested fraction.
	MaxDailyLossPct float64
	// MinConfidence below which sizing fails safe to zero.
	MinConfidence float64
}

// NewManager creates a risk manager with the given limits. Zero values
// select the defaults (5% daily loss cap, 0.2 minimum confidence).
func NewManager(maxDailyLossPct, minConfidence float64) *Manager {
	if maxDailyLossPct == 0 {
		maxDailyLossPct = 0.05
	}
	if minConfidence == 0 {
		minConfidence = 0.2
	}
	return &Manager{
		MaxDailyLossPct: maxDailyLossPct,
		MinConfidence:   minConfidence,
	}
}

// AllowableRisk returns the daily risk budget for the given equity.
func (m *Manager) AllowableRisk(equity float64) float64 {
	return equity * m.MaxDailyLossPct
}

// SizePosition returns the integer contract quantity for the input,
// clamped to [0, MaxPositions]. Confidence scales the budget through a
// square root so higher confidence adds size with diminishing effect.
func (m *Manager) SizePosition(in PositionSizingInput) int {
	if in.Confidence < m.MinConfidence {
		return 0
	}
	if in.ContractPrice <= 0 {
		return 0
	}

	riskCapital := in.AccountEquity * math.Min(in.TradeRiskFraction, m.MaxDailyLossPct)
	budget := riskCapital * math.Sqrt(in.Confidence)

	qty := int(math.Floor(budget / in.ContractPrice))
	if qty < 0 {
		return 0
	}
	if qty > in.MaxPositions {
		return in.MaxPositions
	}
	return qty
}

// StopLossPrice computes the protective stop for an entry, floored at
// one cent so the stop is never non-positive.
func (m *Manager) StopLossPrice(entryPrice, riskFraction float64) float64 {
	return math.Max(0.01, entryPrice*(1-riskFraction))
}

// TakeProfitPrice computes the profit target for an entry.
func (m *Manager) TakeProfitPrice(entryPrice, rewardMultiplier, riskFraction float64) float64 {
	return entryPrice * (1 + rewardMultiplier*riskFraction)
}
