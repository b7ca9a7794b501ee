package autotrader

import (
	"context"
	"errors"
	"testing"

	"options-lab/internal/audit"
	"options-lab/internal/domain"
	"options-lab/internal/snapshot"
	"options-lab/internal/storage"
	"options-lab/internal/storage/memory"
	"options-lab/internal/strategy"
)

func ptr(v float64) *float64 { return &v }

// fakeProvider returns a fixed snapshot or a fixed error.
type fakeProvider struct {
	snap map[string]map[string]any
	err  error
}

func (p *fakeProvider) Collect(context.Context, snapshot.Request) (map[string]map[string]any, error) {
	return p.snap, p.err
}

// memorySink collects audit records in memory.
type memorySink struct {
	records []audit.Record
}

func (s *memorySink) Append(record audit.Record) error {
	s.records = append(s.records, record)
	return nil
}

// fakeExecution submits orders or fails on demand.
type fakeExecution struct {
	orderID string
	err     error
	calls   int
}

func (e *fakeExecution) SubmitOptionOrder(context.Context, string, int) (string, error) {
	e.calls++
	return e.orderID, e.err
}

func quotedPayload() map[string]any {
	return map[string]any{
		"option_quote": map[string]any{
			"CALL": map[string]any{"symbol": "SPY250620C00500000", "bid": 1.0, "ask": 2.0},
			"PUT":  map[string]any{"symbol": "SPY250620P00500000", "bid": 0.5, "ask": 0.7},
		},
	}
}

func newTestTrader(t *testing.T, opts Options) *AutoTrader {
	t.Helper()
	if opts.NowMs == nil {
		opts.NowMs = func() int64 { return 1748874600000 }
	}
	trader, err := NewAutoTrader(opts)
	if err != nil {
		t.Fatalf("NewAutoTrader failed: %v", err)
	}
	return trader
}

func TestRunOnce_DryRunCycle(t *testing.T) {
	sink := &memorySink{}
	trader := newTestTrader(t, Options{
		Provider: &fakeProvider{snap: map[string]map[string]any{"SPY": quotedPayload()}},
		Strategy: strategy.NewFixed(domain.DirectionCall, 0.9),
		Audit:    sink,
	})

	intents, err := trader.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if len(intents) != 1 {
		t.Fatalf("expected 1 intent, got %d", len(intents))
	}

	intent := intents[0]
	if intent.Ticker != "SPY" {
		t.Errorf("expected SPY intent, got %s", intent.Ticker)
	}
	if intent.EntryPrice != 1.5 {
		t.Errorf("expected entry at CALL mid 1.5, got %f", intent.EntryPrice)
	}
	if intent.OptionSymbol != "SPY250620C00500000" {
		t.Errorf("expected CALL symbol, got %s", intent.OptionSymbol)
	}
	if intent.Quantity != 1 {
		t.Errorf("expected quantity 1, got %d", intent.Quantity)
	}
	if intent.IntentID == "" {
		t.Error("expected derived intent id")
	}
	if intent.CreatedAtMs != 1748874600000 {
		t.Errorf("expected pinned clock, got %d", intent.CreatedAtMs)
	}

	if len(sink.records) != 1 {
		t.Fatalf("expected 1 audit record, got %d", len(sink.records))
	}
	if sink.records[0].Status != domain.ExecStatusDryRun {
		t.Errorf("expected DRY_RUN status, got %s", sink.records[0].Status)
	}
}

func TestRunOnce_ConfidenceGate(t *testing.T) {
	trader := newTestTrader(t, Options{
		Provider: &fakeProvider{snap: map[string]map[string]any{"SPY": quotedPayload()}},
		Strategy: strategy.NewFixed(domain.DirectionCall, 0.3), // below default 0.55
	})

	intents, err := trader.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if len(intents) != 0 {
		t.Errorf("expected no intents below min confidence, got %d", len(intents))
	}
}

func TestRunOnce_NoEntryPriceSkips(t *testing.T) {
	trader := newTestTrader(t, Options{
		Provider: &fakeProvider{snap: map[string]map[string]any{"SPY": {}}},
		Strategy: strategy.NewFixed(domain.DirectionCall, 0.9),
	})

	intents, err := trader.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if len(intents) != 0 {
		t.Errorf("expected no intents without quotes, got %d", len(intents))
	}
}

func TestRunOnce_LiquidityGateRejects(t *testing.T) {
	payload := quotedPayload()
	payload["option_aggregates"] = map[string]any{
		"CALL": []any{
			map[string]any{"close": 1.5, "volume": 10.0},
			map[string]any{"close": 1.6, "volume": 12.0},
		},
	}
	trader := newTestTrader(t, Options{
		Provider: &fakeProvider{snap: map[string]map[string]any{"SPY": payload}},
		Strategy: strategy.NewFixed(domain.DirectionCall, 0.9),
		Config:   Config{MinAggBars: 5},
	})

	intents, err := trader.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if len(intents) != 0 {
		t.Errorf("expected liquidity rejection with 2 of 5 bars, got %d intents", len(intents))
	}
}

func TestRunOnce_CollectErrorAborts(t *testing.T) {
	trader := newTestTrader(t, Options{
		Provider: &fakeProvider{err: errors.New("provider down")},
		Strategy: strategy.NewFixed(domain.DirectionCall, 0.9),
	})

	if _, err := trader.RunOnce(context.Background()); err == nil {
		t.Error("expected cycle error on collection failure")
	}
}

func TestRunOnce_ArchivesBars(t *testing.T) {
	payload := quotedPayload()
	payload["underlying_bars"] = []any{
		map[string]any{"timestamp": float64(1000), "close": 100.0, "volume": 50.0},
		map[string]any{"timestamp": float64(61000), "close": 101.0, "volume": 60.0},
	}
	barStore := memory.NewBarStore()
	trader := newTestTrader(t, Options{
		Provider: &fakeProvider{snap: map[string]map[string]any{"SPY": payload}},
		Strategy: strategy.NewFixed(domain.DirectionNone, 0.9),
		BarStore: barStore,
	})

	if _, err := trader.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	bars, err := barStore.GetByTicker(context.Background(), "SPY", storage.BarKindUnderlying)
	if err != nil {
		t.Fatalf("GetByTicker failed: %v", err)
	}
	if len(bars) != 2 {
		t.Errorf("expected 2 archived bars, got %d", len(bars))
	}

	// A second cycle re-inserts the same series; duplicates are tolerated
	if _, err := trader.RunOnce(context.Background()); err != nil {
		t.Fatalf("second RunOnce failed: %v", err)
	}
}

func TestExecuteIntent_Live(t *testing.T) {
	intent := domain.TradeIntent{
		Ticker:       "SPY",
		OptionSymbol: "SPY250620C00500000",
		Direction:    domain.DirectionCall,
		Quantity:     1,
	}

	exec := &fakeExecution{orderID: "order-123"}
	trader := newTestTrader(t, Options{
		Provider:  &fakeProvider{},
		Strategy:  strategy.NewFixed(domain.DirectionCall, 0.9),
		Execution: exec,
		Config:    Config{LiveTrading: true},
	})

	result := trader.executeIntent(context.Background(), intent)
	if result.Status != domain.ExecStatusSubmitted || result.OrderID != "order-123" {
		t.Errorf("expected SUBMITTED with order id, got %+v", result)
	}

	// Broker failure is reported, not retried
	exec.err = errors.New("rejected")
	result = trader.executeIntent(context.Background(), intent)
	if result.Status != domain.ExecStatusFailed || result.Error == "" {
		t.Errorf("expected FAILED with error, got %+v", result)
	}
	if exec.calls != 2 {
		t.Errorf("expected 2 submissions, got %d", exec.calls)
	}

	// Missing symbol never reaches the broker
	intent.OptionSymbol = ""
	result = trader.executeIntent(context.Background(), intent)
	if result.Status != domain.ExecStatusMissingSymbol {
		t.Errorf("expected MISSING_SYMBOL, got %s", result.Status)
	}
	if exec.calls != 2 {
		t.Errorf("expected no broker call for missing symbol, got %d", exec.calls)
	}
}

func TestNewAutoTrader_Validation(t *testing.T) {
	if _, err := NewAutoTrader(Options{Strategy: strategy.NewFixed(domain.DirectionCall, 0.9)}); err == nil {
		t.Error("expected error without provider")
	}
	if _, err := NewAutoTrader(Options{Provider: &fakeProvider{}}); err == nil {
		t.Error("expected error without strategy")
	}
	_, err := NewAutoTrader(Options{
		Provider: &fakeProvider{},
		Strategy: strategy.NewFixed(domain.DirectionCall, 0.9),
		Config:   Config{LiveTrading: true},
	})
	if err == nil {
		t.Error("expected error for live trading without execution client")
	}
}

func TestVWAPTrend(t *testing.T) {
	bars := func(vwaps ...*float64) []domain.Bar {
		out := make([]domain.Bar, len(vwaps))
		for i, v := range vwaps {
			out[i] = domain.Bar{VWAP: v}
		}
		return out
	}

	if got := vwapTrend(nil); got != 0 {
		t.Errorf("expected 0 for empty series, got %f", got)
	}
	if got := vwapTrend(bars(ptr(10))); got != 0 {
		t.Errorf("expected 0 for single vwap, got %f", got)
	}
	if got := vwapTrend(bars(ptr(0), ptr(10))); got != 0 {
		t.Errorf("expected 0 for zero start, got %f", got)
	}
	// Bars without VWAP are skipped, not treated as zero
	if got := vwapTrend(bars(ptr(10), nil, ptr(11))); got != 0.1 {
		t.Errorf("expected 0.1, got %f", got)
	}
}

func TestPassesLiquidityGate(t *testing.T) {
	cfg := Config{MinAggBars: 10, MinAggVolume: 100, MinAggVWAPTrend: 0.001}

	tests := []struct {
		name string
		snap domain.LiquiditySnapshot
		want bool
	}{
		{"all above", domain.LiquiditySnapshot{Bars: 20, Volume: 500, VWAPTrend: 0.002}, true},
		{"too few bars", domain.LiquiditySnapshot{Bars: 5, Volume: 500, VWAPTrend: 0.002}, false},
		{"thin volume", domain.LiquiditySnapshot{Bars: 20, Volume: 50, VWAPTrend: 0.002}, false},
		{"flat vwap", domain.LiquiditySnapshot{Bars: 20, Volume: 500, VWAPTrend: 0.0001}, false},
		{"negative trend counts by magnitude", domain.LiquiditySnapshot{Bars: 20, Volume: 500, VWAPTrend: -0.002}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.passesLiquidityGate(tt.snap); got != tt.want {
				t.Errorf("passesLiquidityGate() = %v, want %v", got, tt.want)
			}
		})
	}

	// Zero minimums disable every check, including the trend check on a
	// perfectly flat series.
	if !(Config{}).passesLiquidityGate(domain.LiquiditySnapshot{}) {
		t.Error("expected zero config to pass everything")
	}
}

func TestAggregateHealth(t *testing.T) {
	aggregates := map[domain.Side][]domain.Bar{
		domain.SideCall: {
			{Volume: 10, VWAP: ptr(1.0)},
			{Volume: 20, VWAP: ptr(1.1)},
			{Volume: 30, VWAP: ptr(1.2)},
		},
	}

	// Window restricts the volume sum to the trailing bars
	snap := aggregateHealth(aggregates, domain.DirectionCall, 2)
	if snap.Bars != 3 {
		t.Errorf("expected 3 bars, got %d", snap.Bars)
	}
	if snap.Volume != 50 {
		t.Errorf("expected trailing volume 50, got %f", snap.Volume)
	}

	// Zero window sums everything
	snap = aggregateHealth(aggregates, domain.DirectionCall, 0)
	if snap.Volume != 60 {
		t.Errorf("expected full volume 60, got %f", snap.Volume)
	}

	// Missing direction yields an empty snapshot
	snap = aggregateHealth(aggregates, domain.DirectionPut, 0)
	if snap.Bars != 0 || snap.Volume != 0 || snap.VWAPTrend != 0 {
		t.Errorf("expected empty snapshot, got %+v", snap)
	}
}
