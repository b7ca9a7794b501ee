// Package reporting renders backtest results, strategy aggregates, and
// deployment decisions as Markdown and CSV.
package reporting

import (
	"time"

	"options-lab/internal/backtest"
	"options-lab/internal/decision"
	"options-lab/internal/domain"
	"options-lab/internal/metrics"
)

// Report represents the backtest report structure.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	StrategyID  string

	// Run summary
	Stats       backtest.Stats
	EquityCurve []float64

	// Aggregate metrics over the trade ledger
	Aggregate *domain.StrategyAggregate

	// Per-trade rows (chronological)
	Trades []TradeRow

	// Deployment decision checklist, nil when not evaluated
	Decision *decision.Result
}

// TradeRow represents one row in the trade table.
type TradeRow struct {
	TradeID    string
	Sequence   int
	Ticker     string
	Direction  domain.Direction
	EntryPrice float64
	ExitPrice  float64
	Quantity   int
	PnL        float64
	Confidence float64
}

// Build assembles a Report from a backtest result. The decision is
// evaluated only when the evaluator is non-nil.
func Build(strategyID string, result *backtest.Result, evaluator *decision.Evaluator) *Report {
	report := &Report{
		GeneratedAt: time.Now().UTC(),
		StrategyID:  strategyID,
		Stats:       result.Stats,
		EquityCurve: result.EquityCurve,
		Aggregate:   metrics.ComputeFromTrades(result.Trades, strategyID),
	}
	for _, t := range result.Trades {
		report.Trades = append(report.Trades, TradeRow{
			TradeID:    t.TradeID,
			Sequence:   t.Sequence,
			Ticker:     t.Ticker,
			Direction:  t.Direction,
			EntryPrice: t.EntryPrice,
			ExitPrice:  t.ExitPrice,
			Quantity:   t.Quantity,
			PnL:        t.PnL,
			Confidence: t.Confidence,
		})
	}
	if evaluator != nil {
		report.Decision = evaluator.Evaluate(report.Aggregate)
	}
	return report
}

// BuildFromTrades assembles a Report directly from a stored trade
// ledger, without a backtest result. Run-summary stats are left zero
// since equity context is not recoverable from trades alone.
func BuildFromTrades(strategyID string, trades []*domain.TradeRecord, evaluator *decision.Evaluator) *Report {
	report := &Report{
		GeneratedAt: time.Now().UTC(),
		StrategyID:  strategyID,
		Aggregate:   metrics.ComputeFromTrades(trades, strategyID),
	}
	report.Stats.NumTrades = len(trades)
	for _, t := range trades {
		report.Trades = append(report.Trades, TradeRow{
			TradeID:    t.TradeID,
			Sequence:   t.Sequence,
			Ticker:     t.Ticker,
			Direction:  t.Direction,
			EntryPrice: t.EntryPrice,
			ExitPrice:  t.ExitPrice,
			Quantity:   t.Quantity,
			PnL:        t.PnL,
			Confidence: t.Confidence,
		})
	}
	if evaluator != nil {
		report.Decision = evaluator.Evaluate(report.Aggregate)
	}
	return report
}
