// Package autotrader coordinates snapshot collection, signal scoring,
// position sizing, and order placement for the live/paper loop.
package autotrader

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"options-lab/internal/audit"
	"options-lab/internal/domain"
	"options-lab/internal/idhash"
	"options-lab/internal/normalize"
	"options-lab/internal/observability"
	"options-lab/internal/risk"
	"options-lab/internal/snapshot"
	"options-lab/internal/storage"
	"options-lab/internal/strategy"
)

// Config holds the AutoTrader knobs. Zero values select defaults via
// NewAutoTrader, except DryRun which must be disabled explicitly.
type Config struct {
	Tickers           []string
	LookbackMinutes   int
	NewsHours         int
	Timeframe         string
	MinConfidence     float64
	TradeRiskFraction float64
	MaxPositions      int
	AccountEquity     float64
	LiveTrading       bool // false means dry-run: log intents, never submit
	IncludeNews       bool
	UseCache          bool
	SleepSeconds      int

	// Liquidity gate minimums. Zero disables the corresponding check.
	MinAggBars      int
	MinAggVolume    float64
	MinAggVWAPTrend float64
}

// DefaultConfig returns the standard paper-trading configuration.
func DefaultConfig() Config {
	return Config{
		LookbackMinutes:   120,
		NewsHours:         3,
		Timeframe:         "1Min",
		MinConfidence:     0.55,
		TradeRiskFraction: 0.02,
		MaxPositions:      1,
		AccountEquity:     150.0,
		SleepSeconds:      60,
	}
}

// ExecutionClient submits option orders to a broker. Implementations
// must be safe for use from a single goroutine.
type ExecutionClient interface {
	// SubmitOptionOrder places a buy-to-open order and returns the
	// broker order ID.
	SubmitOptionOrder(ctx context.Context, symbol string, quantity int) (string, error)
}

// Options configures an AutoTrader.
type Options struct {
	Provider    snapshot.Provider
	Strategy    strategy.Strategy
	RiskManager *risk.Manager
	Execution   ExecutionClient // required when Config.LiveTrading is true
	Audit       audit.Sink
	IntentStore storage.IntentRecordStore // optional persistence
	BarStore    storage.BarStore          // optional bar archival
	Metrics     *observability.Metrics
	Logger      *log.Logger
	Config      Config
	NowMs       func() int64
}

// AutoTrader runs the decision cycle: collect, normalize, score, gate,
// size, execute, audit.
type AutoTrader struct {
	provider    snapshot.Provider
	strategy    strategy.Strategy
	riskManager *risk.Manager
	execution   ExecutionClient
	audit       audit.Sink
	intentStore storage.IntentRecordStore
	barStore    storage.BarStore
	metrics     *observability.Metrics
	logger      *log.Logger
	cfg         Config
	nowMs       func() int64
}

// NewAutoTrader wires the collaborators, filling defaults for the
// risk manager, metrics, logger, clock, and zero config fields.
func NewAutoTrader(opts Options) (*AutoTrader, error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("autotrader: snapshot provider is required")
	}
	if opts.Strategy == nil {
		return nil, fmt.Errorf("autotrader: strategy is required")
	}
	cfg := opts.Config
	defaults := DefaultConfig()
	if cfg.LookbackMinutes == 0 {
		cfg.LookbackMinutes = defaults.LookbackMinutes
	}
	if cfg.NewsHours == 0 {
		cfg.NewsHours = defaults.NewsHours
	}
	if cfg.Timeframe == "" {
		cfg.Timeframe = defaults.Timeframe
	}
	if cfg.MinConfidence == 0 {
		cfg.MinConfidence = defaults.MinConfidence
	}
	if cfg.TradeRiskFraction == 0 {
		cfg.TradeRiskFraction = defaults.TradeRiskFraction
	}
	if cfg.MaxPositions == 0 {
		cfg.MaxPositions = defaults.MaxPositions
	}
	if cfg.AccountEquity == 0 {
		cfg.AccountEquity = defaults.AccountEquity
	}
	if cfg.SleepSeconds == 0 {
		cfg.SleepSeconds = defaults.SleepSeconds
	}
	if cfg.LiveTrading && opts.Execution == nil {
		return nil, fmt.Errorf("autotrader: execution client is required for live trading")
	}
	rm := opts.RiskManager
	if rm == nil {
		rm = risk.NewManager(0, 0)
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = observability.DefaultMetrics
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "[autotrader] ", log.LstdFlags)
	}
	nowMs := opts.NowMs
	if nowMs == nil {
		nowMs = func() int64 { return time.Now().UnixMilli() }
	}
	return &AutoTrader{
		provider:    opts.Provider,
		strategy:    opts.Strategy,
		riskManager: rm,
		execution:   opts.Execution,
		audit:       opts.Audit,
		intentStore: opts.IntentStore,
		barStore:    opts.BarStore,
		metrics:     metrics,
		logger:      logger,
		cfg:         cfg,
		nowMs:       nowMs,
	}, nil
}

// RunOnce executes one decision cycle and returns the intents it
// created. A snapshot collection failure aborts the cycle; per-intent
// execution failures are reported in the intent's audit record and do
// not abort the remaining tickers.
func (a *AutoTrader) RunOnce(ctx context.Context) ([]domain.TradeIntent, error) {
	a.logger.Printf("cycle starting lookback=%dm news=%dh timeframe=%s",
		a.cfg.LookbackMinutes, a.cfg.NewsHours, a.cfg.Timeframe)

	start := time.Now()
	snap, err := a.provider.Collect(ctx, snapshot.Request{
		Tickers:      a.cfg.Tickers,
		Lookback:     time.Duration(a.cfg.LookbackMinutes) * time.Minute,
		NewsLookback: time.Duration(a.cfg.NewsHours) * time.Hour,
		Timeframe:    a.cfg.Timeframe,
		UseCache:     a.cfg.UseCache,
		IncludeNews:  a.cfg.IncludeNews,
	})
	if err != nil {
		a.metrics.SnapshotErrors.Inc()
		a.metrics.CyclesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("collect snapshot: %w", err)
	}
	a.metrics.SnapshotLatency.Observe(time.Since(start).Seconds())
	a.metrics.SnapshotTickers.Set(float64(len(snap)))
	a.metrics.LastSuccessfulSnapshot.Set(float64(time.Now().Unix()))

	contexts := normalize.ContextsFromSnapshot(snap)
	var intents []domain.TradeIntent
	for _, mc := range contexts {
		a.archiveBars(ctx, mc)
		intent, err := a.buildIntent(ctx, mc)
		if err != nil {
			a.logger.Printf("signal generation failed for %s: %v", mc.Ticker, err)
			continue
		}
		if intent == nil {
			continue
		}
		intents = append(intents, *intent)
		a.metrics.IntentsCreated.WithLabelValues(string(intent.Direction)).Inc()

		result := a.executeIntent(ctx, *intent)
		a.metrics.IntentsExecuted.WithLabelValues(result.Status).Inc()
		a.recordIntent(ctx, *intent, result)
	}
	a.metrics.CyclesTotal.WithLabelValues("ok").Inc()
	a.metrics.LastSuccessfulCycle.Set(float64(time.Now().Unix()))
	a.logger.Printf("cycle completed intents=%d", len(intents))
	return intents, nil
}

// RunLoop runs cycles until the context is cancelled. A cycle error
// halts the loop; a supervisor that wants to keep going should wrap
// RunOnce itself.
func (a *AutoTrader) RunLoop(ctx context.Context) error {
	sleep := time.Duration(a.cfg.SleepSeconds) * time.Second
	if sleep < time.Second {
		sleep = time.Second
	}
	for {
		if _, err := a.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
}

// buildIntent scores one context and applies the confidence, price,
// sizing, and liquidity gates in order. A nil intent means the ticker
// was skipped, not that anything failed.
func (a *AutoTrader) buildIntent(ctx context.Context, mc *domain.MarketContext) (*domain.TradeIntent, error) {
	signal, err := a.strategy.GenerateSignal(ctx, mc)
	if err != nil {
		return nil, err
	}
	a.metrics.SignalsGenerated.WithLabelValues(string(signal.Direction)).Inc()
	if signal.Direction == domain.DirectionNone || signal.Confidence < a.cfg.MinConfidence {
		return nil, nil
	}
	entryPrice, ok := inferEntryPrice(signal, mc)
	if !ok || entryPrice <= 0 {
		a.logger.Printf("skipping %s: no usable entry price", mc.Ticker)
		return nil, nil
	}
	size := a.riskManager.SizePosition(risk.PositionSizingInput{
		AccountEquity:     a.cfg.AccountEquity,
		TradeRiskFraction: a.cfg.TradeRiskFraction,
		ContractPrice:     entryPrice,
		Confidence:        signal.Confidence,
		MaxPositions:      a.cfg.MaxPositions,
	})
	if size <= 0 {
		return nil, nil
	}
	liquidity := aggregateHealth(mc.OptionAggregates, signal.Direction, a.cfg.MinAggBars)
	if !a.cfg.passesLiquidityGate(liquidity) {
		a.metrics.LiquidityRejected.Inc()
		a.logger.Printf("skipping %s: aggregate health below minimums bars=%d volume=%.2f vwap_trend=%.4f",
			mc.Ticker, liquidity.Bars, liquidity.Volume, liquidity.VWAPTrend)
		return nil, nil
	}
	createdAt := a.nowMs()
	return &domain.TradeIntent{
		IntentID:     idhash.ComputeIntentID(mc.Ticker, string(signal.Direction), createdAt),
		Ticker:       mc.Ticker,
		OptionSymbol: optionSymbol(mc, signal.Direction),
		Direction:    signal.Direction,
		Quantity:     size,
		EntryPrice:   entryPrice,
		Confidence:   signal.Confidence,
		Metadata:     signal.Metadata,
		Liquidity:    liquidity,
		CreatedAtMs:  createdAt,
	}, nil
}

// executeIntent submits the intent or, in dry-run mode, only logs it.
func (a *AutoTrader) executeIntent(ctx context.Context, intent domain.TradeIntent) domain.ExecutionResult {
	if !a.cfg.LiveTrading {
		a.logger.Printf("DRY RUN order ticker=%s option=%s direction=%s qty=%d price=%.4f confidence=%.2f",
			intent.Ticker, intent.OptionSymbol, intent.Direction,
			intent.Quantity, intent.EntryPrice, intent.Confidence)
		return domain.ExecutionResult{Status: domain.ExecStatusDryRun}
	}
	if intent.OptionSymbol == "" {
		a.logger.Printf("cannot place option order without symbol ticker=%s", intent.Ticker)
		return domain.ExecutionResult{Status: domain.ExecStatusMissingSymbol}
	}
	orderID, err := a.execution.SubmitOptionOrder(ctx, intent.OptionSymbol, intent.Quantity)
	if err != nil {
		a.logger.Printf("order submission failed symbol=%s: %v", intent.OptionSymbol, err)
		return domain.ExecutionResult{Status: domain.ExecStatusFailed, Error: err.Error()}
	}
	a.logger.Printf("submitted option order order_id=%s symbol=%s", orderID, intent.OptionSymbol)
	return domain.ExecutionResult{Status: domain.ExecStatusSubmitted, OrderID: orderID}
}

// recordIntent appends the audit record and persists the intent when a
// store is configured. Neither failure aborts the cycle.
func (a *AutoTrader) recordIntent(ctx context.Context, intent domain.TradeIntent, result domain.ExecutionResult) {
	if a.audit != nil {
		record := audit.Record{
			Timestamp:    time.UnixMilli(intent.CreatedAtMs).UTC().Format(time.RFC3339Nano),
			Ticker:       intent.Ticker,
			OptionSymbol: intent.OptionSymbol,
			Direction:    intent.Direction,
			Quantity:     intent.Quantity,
			EntryPrice:   intent.EntryPrice,
			Confidence:   intent.Confidence,
			Status:       result.Status,
			OrderID:      result.OrderID,
			Error:        result.Error,
			Metadata:     intent.Metadata,
			Liquidity:    intent.Liquidity,
		}
		if err := a.audit.Append(record); err != nil {
			a.logger.Printf("audit append failed for %s: %v", intent.IntentID, err)
		}
	}
	if a.intentStore != nil {
		if err := a.intentStore.Insert(ctx, &intent, result); err != nil {
			a.logger.Printf("intent persistence failed for %s: %v", intent.IntentID, err)
		}
	}
}

// archiveBars persists the context's bar series when a bar store is
// configured. Duplicate timestamps are expected across overlapping
// snapshots and are not treated as failures.
func (a *AutoTrader) archiveBars(ctx context.Context, mc *domain.MarketContext) {
	if a.barStore == nil {
		return
	}
	series := map[string][]domain.Bar{
		storage.BarKindUnderlying: mc.UnderlyingBars,
		storage.BarKindCallAgg:    mc.OptionAggregates[domain.SideCall],
		storage.BarKindPutAgg:     mc.OptionAggregates[domain.SidePut],
	}
	for kind, bars := range series {
		if len(bars) == 0 {
			continue
		}
		err := a.barStore.InsertBulk(ctx, mc.Ticker, kind, bars)
		if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			a.logger.Printf("bar archival failed for %s/%s: %v", mc.Ticker, kind, err)
		}
	}
}

// inferEntryPrice prefers the signal's explicit entry, then the quote
// midpoint for the signal direction. One-sided quotes are acceptable
// for intent pricing. A quote with neither side falls through to the
// CALL then PUT legs.
func inferEntryPrice(signal *domain.TradingSignal, mc *domain.MarketContext) (float64, bool) {
	if signal.EntryPrice != nil && *signal.EntryPrice != 0 {
		return *signal.EntryPrice, true
	}
	for _, side := range []domain.Side{domain.Side(signal.Direction), domain.SideCall, domain.SidePut} {
		quote, ok := mc.OptionQuote[side]
		if !ok {
			continue
		}
		if mid, ok := quote.Mid(); ok {
			return mid, true
		}
	}
	return 0, false
}

// optionSymbol resolves the tradable contract symbol for the direction.
func optionSymbol(mc *domain.MarketContext, direction domain.Direction) string {
	quote, ok := mc.OptionQuote[domain.Side(direction)]
	if !ok {
		return ""
	}
	return quote.Symbol
}
