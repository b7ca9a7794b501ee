package domain

// StrategyAggregate summarizes all trades for one strategy. Outcome
// statistics are computed over realized per-trade PnL.
type StrategyAggregate struct {
	StrategyID string `json:"strategy_id"`

	// Counts
	TotalTrades int     `json:"total_trades"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	WinRate     float64 `json:"win_rate"`

	// PnL distribution
	TotalPnL  float64 `json:"total_pnl"`
	PnLMean   float64 `json:"pnl_mean"`
	PnLMedian float64 `json:"pnl_median"`
	PnLP10    float64 `json:"pnl_p10"`
	PnLP25    float64 `json:"pnl_p25"`
	PnLP75    float64 `json:"pnl_p75"`
	PnLP90    float64 `json:"pnl_p90"`
	PnLMin    float64 `json:"pnl_min"`
	PnLMax    float64 `json:"pnl_max"`
	PnLStddev float64 `json:"pnl_stddev"`

	// Order-dependent (chronological by sequence)
	MaxDrawdown          float64 `json:"max_drawdown"`
	MaxConsecutiveLosses int     `json:"max_consecutive_losses"`
}
