// Package backtest replays market contexts through the scorer and risk
// manager, realizing each trade synchronously against an inferred exit
// price. The replay is deterministic: a fixed context sequence and fixed
// configuration always produce identical results.
package backtest

import (
	"context"
	"fmt"
	"math"

	"options-lab/internal/domain"
	"options-lab/internal/idhash"
	"options-lab/internal/risk"
	"options-lab/internal/storage"
	"options-lab/internal/strategy"
)

// Config holds backtest capital and cost parameters.
type Config struct {
	StartingEquity        float64
	RiskFraction          float64
	CommissionPerContract float64
	MaxPositions          int
}

// DefaultConfig returns the standard small-account configuration.
func DefaultConfig() Config {
	return Config{
		StartingEquity:        150.0,
		RiskFraction:          0.02,
		CommissionPerContract: 0.65,
		MaxPositions:          1,
	}
}

// Stats summarizes one backtest run.
type Stats struct {
	FinalEquity float64 `json:"final_equity"`
	ReturnPct   float64 `json:"return_pct"`
	MaxDrawdown float64 `json:"max_drawdown"`
	NumTrades   int     `json:"num_trades"`
}

// Result holds the full backtest output.
type Result struct {
	EquityCurve []float64
	Trades      []*domain.TradeRecord
	Stats       Stats
}

// Runner executes a strategy over a sequence of historical contexts.
type Runner struct {
	strategy    strategy.Strategy
	riskManager *risk.Manager
	config      Config
	tradeStore  storage.TradeRecordStore // optional
}

// Options configures a Runner. TradeStore may be nil when persistence
// is not wanted.
type Options struct {
	Strategy    strategy.Strategy
	RiskManager *risk.Manager
	Config      Config
	TradeStore  storage.TradeRecordStore
}

// NewRunner creates a backtest runner. A nil risk manager and zero
// config select defaults.
func NewRunner(opts Options) *Runner {
	rm := opts.RiskManager
	if rm == nil {
		rm = risk.NewManager(0, 0)
	}
	cfg := opts.Config
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	return &Runner{
		strategy:    opts.Strategy,
		riskManager: rm,
		config:      cfg,
		tradeStore:  opts.TradeStore,
	}
}

// Run replays the ordered contexts. Steps that produce no actionable
// signal, no resolvable entry price, or a zero quantity leave equity
// unchanged and record no trade.
func (r *Runner) Run(ctx context.Context, contexts []*domain.MarketContext) (*Result, error) {
	equity := r.config.StartingEquity
	curve := make([]float64, 0, len(contexts))
	var trades []*domain.TradeRecord

	for i, mc := range contexts {
		signal, err := r.strategy.GenerateSignal(ctx, mc)
		if err != nil {
			return nil, fmt.Errorf("generate signal for %s: %w", mc.Ticker, err)
		}

		if !signal.Actionable() {
			curve = append(curve, equity)
			continue
		}

		entryPrice, ok := inferEntryPrice(signal, mc)
		if !ok {
			curve = append(curve, equity)
			continue
		}

		quantity := r.riskManager.SizePosition(risk.PositionSizingInput{
			AccountEquity:     equity,
			TradeRiskFraction: r.config.RiskFraction,
			ContractPrice:     entryPrice,
			Confidence:        signal.Confidence,
			MaxPositions:      r.config.MaxPositions,
		})
		if quantity == 0 {
			curve = append(curve, equity)
			continue
		}

		exitPrice := simulateExitPrice(signal, mc, entryPrice)

		pnl := (exitPrice - entryPrice) * float64(quantity)
		if signal.Direction == domain.DirectionPut {
			pnl = -pnl
		}
		// Round-trip commission
		pnl -= r.config.CommissionPerContract * float64(quantity) * 2

		equity += pnl
		curve = append(curve, equity)

		trade := &domain.TradeRecord{
			TradeID:    idhash.ComputeTradeID(mc.Ticker, r.strategy.Name(), i),
			StrategyID: r.strategy.Name(),
			Sequence:   i,
			Ticker:     mc.Ticker,
			Direction:  signal.Direction,
			EntryPrice: entryPrice,
			ExitPrice:  exitPrice,
			Quantity:   quantity,
			PnL:        pnl,
			Confidence: signal.Confidence,
			Metadata:   signal.Metadata,
		}
		trades = append(trades, trade)

		if r.tradeStore != nil {
			if err := r.tradeStore.Insert(ctx, trade); err != nil {
				return nil, fmt.Errorf("persist trade %s: %w", trade.TradeID, err)
			}
		}
	}

	return &Result{
		EquityCurve: curve,
		Trades:      trades,
		Stats: Stats{
			FinalEquity: equity,
			ReturnPct:   equity/r.config.StartingEquity - 1,
			MaxDrawdown: maxDrawdown(curve),
			NumTrades:   len(trades),
		},
	}, nil
}

// inferEntryPrice resolves the fill price for a signal: the signal's
// explicit entry price when set, else the mid of the direction-specific
// quote, falling back to whichever side of the book is present. The mid
// here requires both bid and ask.
func inferEntryPrice(signal *domain.TradingSignal, mc *domain.MarketContext) (float64, bool) {
	if signal.EntryPrice != nil && *signal.EntryPrice != 0 {
		return *signal.EntryPrice, true
	}

	quote, ok := lookupQuote(mc.OptionQuote, signal.Direction)
	if !ok {
		return 0, false
	}
	if quote.Bid == nil || quote.Ask == nil {
		return 0, false
	}
	return (*quote.Bid + *quote.Ask) / 2, true
}

// lookupQuote returns the quote for the direction, falling back to CALL
// then PUT when the direction-specific side is absent or empty.
func lookupQuote(quotes map[domain.Side]domain.Quote, direction domain.Direction) (domain.Quote, bool) {
	for _, side := range []domain.Side{domain.Side(direction), domain.SideCall, domain.SidePut} {
		if q, ok := quotes[side]; ok && (q.Bid != nil || q.Ask != nil) {
			return q, true
		}
	}
	return domain.Quote{}, false
}

// simulateExitPrice determines the synchronous exit: the signal's target
// price when set, else a leveraged projection of the underlying return,
// else a flat confidence-scaled move.
func simulateExitPrice(signal *domain.TradingSignal, mc *domain.MarketContext, entryPrice float64) float64 {
	if signal.TargetPrice != nil && *signal.TargetPrice != 0 {
		return *signal.TargetPrice
	}

	directionSign := -1.0
	if signal.Direction == domain.DirectionCall {
		directionSign = 1.0
	}

	if underlyingReturn, ok := computeUnderlyingReturn(mc.UnderlyingBars); ok {
		deltaHint := signalDeltaHint(signal)
		leverage := math.Max(1.5, math.Min(8.0, math.Abs(deltaHint)*12))
		optionReturn := directionSign * underlyingReturn * leverage
		projected := entryPrice * (1 + optionReturn)
		// Option premium cannot collapse past 10% of entry in one step.
		return math.Max(entryPrice*0.1, projected)
	}

	return entryPrice * (1 + directionSign*0.2*signal.Confidence)
}

// computeUnderlyingReturn is the first-to-last close return of the bar
// series; unavailable when the series is empty or starts non-positive.
func computeUnderlyingReturn(bars []domain.Bar) (float64, bool) {
	if len(bars) == 0 {
		return 0, false
	}
	start := bars[0].Close
	end := bars[len(bars)-1].Close
	if start <= 0 {
		return 0, false
	}
	return (end - start) / start, true
}

// signalDeltaHint reads the delta bias from signal metadata, defaulting
// by direction when the bias is zero.
func signalDeltaHint(signal *domain.TradingSignal) float64 {
	if signal.Metadata.DeltaBias != 0 {
		return signal.Metadata.DeltaBias
	}
	switch signal.Direction {
	case domain.DirectionCall:
		return 0.5
	case domain.DirectionPut:
		return -0.4
	default:
		return 0.3
	}
}

// maxDrawdown is the largest peak-to-trough percentage decline of the
// equity curve. A strictly increasing curve has zero drawdown.
func maxDrawdown(curve []float64) float64 {
	if len(curve) == 0 {
		return 0
	}

	peak := curve[0]
	worst := 0.0
	for _, eq := range curve {
		if eq > peak {
			peak = eq
		}
		if peak > 0 {
			if dd := (peak - eq) / peak; dd > worst {
				worst = dd
			}
		}
	}
	return worst
}
