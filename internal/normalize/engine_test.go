package normalize

import (
	"testing"

	"options-lab/internal/domain"
)

func TestBuildContext_NilPayload(t *testing.T) {
	mc := BuildContext("SPY", nil)
	if mc.Ticker != "SPY" {
		t.Errorf("expected ticker SPY, got %s", mc.Ticker)
	}
	if mc.UnderlyingBars != nil || mc.OptionChain != nil || mc.Features != nil {
		t.Error("expected all-nil sections for nil payload")
	}
}

func TestContextsFromSnapshot_Ordered(t *testing.T) {
	snapshot := map[string]map[string]any{
		"TSLA": nil,
		"AAPL": nil,
		"MSFT": nil,
	}

	contexts := ContextsFromSnapshot(snapshot)
	if len(contexts) != 3 {
		t.Fatalf("expected 3 contexts, got %d", len(contexts))
	}
	want := []string{"AAPL", "MSFT", "TSLA"}
	for i, w := range want {
		if contexts[i].Ticker != w {
			t.Errorf("context %d: expected %s, got %s", i, w, contexts[i].Ticker)
		}
	}
}

func TestBars_AliasesAndMalformed(t *testing.T) {
	raw := []any{
		map[string]any{"t": float64(1000), "o": 10.0, "h": 11.0, "l": 9.0, "c": 10.5, "v": 500.0, "vw": 10.2},
		map[string]any{"timestamp": "2025-06-02T14:30:00Z", "open": 10.5, "close": "10.8", "volume": 600.0},
		map[string]any{"open": 11.0},          // no close, dropped
		map[string]any{"close": "not-a-num"},  // malformed close, dropped
		"not a record",                        // dropped
		map[string]any{"close": 12.0, "vwap": "bogus"},
	}

	bars := Bars(raw)
	if len(bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(bars))
	}

	if bars[0].TimestampMs != 1000 || bars[0].Close != 10.5 {
		t.Errorf("short-field bar mishandled: %+v", bars[0])
	}
	if bars[0].VWAP == nil || *bars[0].VWAP != 10.2 {
		t.Errorf("expected vwap 10.2, got %v", bars[0].VWAP)
	}

	// RFC3339 timestamp coerced to epoch millis, string close parsed
	if bars[1].TimestampMs != 1748874600000 {
		t.Errorf("expected epoch 1748874600000, got %d", bars[1].TimestampMs)
	}
	if bars[1].Close != 10.8 {
		t.Errorf("expected string close parsed to 10.8, got %f", bars[1].Close)
	}

	// Malformed vwap degrades to nil, not zero
	if bars[2].VWAP != nil {
		t.Errorf("expected nil vwap for malformed value, got %v", *bars[2].VWAP)
	}
}

func TestOptionChain_ListAndMappingEquivalent(t *testing.T) {
	leg := map[string]any{
		"symbol":             "AAPL250620C00200000",
		"strike_price":       200.0,
		"implied_volatility": 0.31,
		"iv_change":          -0.02,
		"open_interest":      1500.0,
		"greeks":             map[string]any{"delta": 0.55, "vega": 0.12},
	}

	fromList := OptionChain([]any{leg})
	fromMapping := OptionChain(map[string]any{"AAPL250620C00200000": leg})

	if len(fromList) != 1 || len(fromMapping) != 1 {
		t.Fatalf("expected one leg from each shape, got %d and %d", len(fromList), len(fromMapping))
	}
	for _, legs := range [][]domain.OptionLeg{fromList, fromMapping} {
		l := legs[0]
		if l.ContractType != domain.SideCall {
			t.Errorf("expected CALL inferred from OCC symbol, got %q", l.ContractType)
		}
		if l.Strike == nil || *l.Strike != 200.0 {
			t.Errorf("strike alias not resolved: %v", l.Strike)
		}
		if l.IVChange == nil || *l.IVChange != -0.02 {
			t.Errorf("expected explicit iv_change -0.02, got %v", l.IVChange)
		}
		if l.Greeks.Delta == nil || *l.Greeks.Delta != 0.55 {
			t.Errorf("greeks not extracted: %v", l.Greeks.Delta)
		}
	}

	if OptionChain("garbage") != nil {
		t.Error("expected nil for non-chain payload")
	}
	if OptionChain([]any{"junk", 42}) != nil {
		t.Error("expected nil when no leg records survive")
	}
}

func TestOptionMetrics_VegaProxiesIVChange(t *testing.T) {
	metrics := OptionMetrics(map[string]any{
		"SPY250620P00500000": map[string]any{
			"greeks": map[string]any{"vega": 0.18},
		},
	})
	if len(metrics) != 1 {
		t.Fatalf("expected one metrics leg, got %d", len(metrics))
	}

	leg := metrics["SPY250620P00500000"]
	if leg.Symbol != "SPY250620P00500000" {
		t.Errorf("expected symbol from mapping key, got %s", leg.Symbol)
	}
	if leg.ContractType != domain.SidePut {
		t.Errorf("expected PUT inferred from symbol, got %q", leg.ContractType)
	}
	// No explicit iv_change: vega stands in
	if leg.IVChange == nil || *leg.IVChange != 0.18 {
		t.Errorf("expected vega proxy 0.18, got %v", leg.IVChange)
	}

	// Chain payloads never proxy through vega
	chain := OptionChain([]any{map[string]any{
		"symbol": "SPY250620P00500000",
		"greeks": map[string]any{"vega": 0.18},
	}})
	if chain[0].IVChange != nil {
		t.Errorf("expected nil iv_change for chain payload, got %v", *chain[0].IVChange)
	}
}

func TestOptionQuotes_Aliases(t *testing.T) {
	quotes := OptionQuotes(map[string]any{
		"CALL": map[string]any{"symbol": "XC", "bid": 1.0, "ask": 1.2},
		"put":  map[string]any{"bid_price": 0.5, "ask_price": 0.6},
		"junk": map[string]any{"bid": 9.0},
	})

	if len(quotes) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(quotes))
	}
	call := quotes[domain.SideCall]
	if call.Bid == nil || *call.Bid != 1.0 || call.Symbol != "XC" {
		t.Errorf("CALL quote mishandled: %+v", call)
	}
	put := quotes[domain.SidePut]
	if put.Bid == nil || *put.Bid != 0.5 || put.Ask == nil || *put.Ask != 0.6 {
		t.Errorf("bid_price/ask_price aliases not resolved: %+v", put)
	}
}

func TestOptionAggregates(t *testing.T) {
	aggregates := OptionAggregates(map[string]any{
		"CALL": []any{map[string]any{"close": 1.5, "volume": 20.0}},
		"PUT":  []any{map[string]any{"no_close": true}},
	})
	if len(aggregates) != 1 {
		t.Fatalf("expected only the CALL series to survive, got %d", len(aggregates))
	}
	if aggregates[domain.SideCall][0].Close != 1.5 {
		t.Errorf("unexpected aggregate bar: %+v", aggregates[domain.SideCall][0])
	}
}

func TestNews_KeyAliases(t *testing.T) {
	payload := map[string]any{
		"news_items": []any{
			map[string]any{"title": "earnings beats", "description": "strong quarter"},
		},
	}
	items := News(firstValue(payload, "news", "news_items"))
	if len(items) != 1 || items[0].Title != "earnings beats" {
		t.Errorf("news alias not resolved: %+v", items)
	}
}

func TestFeatures(t *testing.T) {
	fs := Features(map[string]any{"momentum_15": 0.01, "volatility": "0.25"})
	if fs == nil {
		t.Fatal("expected feature set")
	}
	if fs.Momentum15 != 0.01 || fs.Volatility != 0.25 || fs.Momentum60 != 0 {
		t.Errorf("unexpected features: %+v", fs)
	}

	if Features(map[string]any{"momentum_15": "junk"}) != nil {
		t.Error("expected nil when no feature value coerces")
	}
	if Features(nil) != nil {
		t.Error("expected nil for absent mapping")
	}
}

func TestInferContractType(t *testing.T) {
	tests := []struct {
		symbol string
		want   domain.Side
	}{
		{"AAPL250620C00200000", domain.SideCall},
		{"SPY250620P00500000", domain.SidePut},
		{"short", ""},
		{"AAPL250620X00200000", ""},
	}
	for _, tt := range tests {
		if got := inferContractType(tt.symbol); got != tt.want {
			t.Errorf("inferContractType(%q) = %q, want %q", tt.symbol, got, tt.want)
		}
	}
}
