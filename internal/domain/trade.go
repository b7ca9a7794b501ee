package domain

// TradeRecord represents one filled simulated trade. Created once per
// backtest fill, immutable, appended to the trade ledger.
type TradeRecord struct {
	TradeID    string // deterministic hash
	StrategyID string
	Sequence   int // step index within the backtest run

	Ticker     string
	Direction  Direction
	EntryPrice float64
	ExitPrice  float64
	Quantity   int
	PnL        float64 // realized, after round-trip commission
	Confidence float64
	Metadata   SignalMetadata
}

// TradeIntent is a pending order derived from a qualifying live/paper
// signal. Consumed by the execution collaborator, then audited.
type TradeIntent struct {
	IntentID     string // deterministic hash
	Ticker       string
	OptionSymbol string // empty when no contract symbol was resolvable
	Direction    Direction
	Quantity     int
	EntryPrice   float64
	Confidence   float64
	Metadata     SignalMetadata
	Liquidity    LiquiditySnapshot
	CreatedAtMs  int64
}

// LiquiditySnapshot holds the option-aggregate diagnostics the liquidity
// gate evaluated for an intent.
type LiquiditySnapshot struct {
	Bars      int     `json:"bars"`
	Volume    float64 `json:"volume"`
	VWAPTrend float64 `json:"vwap_trend"`
}

// ExecutionResult is the per-intent outcome reported by the execution
// collaborator.
type ExecutionResult struct {
	Status  string
	OrderID string
	Error   string // transport failure detail, empty on success
}

// Execution status codes.
const (
	ExecStatusDryRun        = "DRY_RUN"
	ExecStatusSubmitted     = "SUBMITTED"
	ExecStatusMissingSymbol = "MISSING_SYMBOL"
	ExecStatusFailed        = "FAILED"
)
