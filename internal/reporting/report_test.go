package reporting

import (
	"strings"
	"testing"

	"options-lab/internal/backtest"
	"options-lab/internal/decision"
	"options-lab/internal/domain"
)

func sampleResult() *backtest.Result {
	return &backtest.Result{
		EquityCurve: []float64{150, 148.79},
		Trades: []*domain.TradeRecord{
			{
				TradeID:    "trade-001",
				StrategyID: "momentum_iv",
				Sequence:   0,
				Ticker:     "SPY",
				Direction:  domain.DirectionCall,
				EntryPrice: 1.5,
				ExitPrice:  1.59,
				Quantity:   1,
				PnL:        -1.21,
				Confidence: 0.72,
			},
		},
		Stats: backtest.Stats{
			FinalEquity: 148.79,
			ReturnPct:   -0.00807,
			MaxDrawdown: 0.00807,
			NumTrades:   1,
		},
	}
}

func TestBuild(t *testing.T) {
	report := Build("momentum_iv", sampleResult(), decision.NewEvaluator(decision.Criteria{}))

	if report.StrategyID != "momentum_iv" {
		t.Errorf("expected strategy id, got %s", report.StrategyID)
	}
	if report.Stats.NumTrades != 1 {
		t.Errorf("expected 1 trade in stats, got %d", report.Stats.NumTrades)
	}
	if len(report.Trades) != 1 || report.Trades[0].TradeID != "trade-001" {
		t.Errorf("trade rows not built: %+v", report.Trades)
	}
	if report.Aggregate == nil || report.Aggregate.TotalTrades != 1 {
		t.Errorf("aggregate not computed: %+v", report.Aggregate)
	}
	if report.Decision == nil {
		t.Fatal("expected decision checklist")
	}
	// One losing trade cannot clear the deployment bar
	if report.Decision.Decision != decision.DecisionNOGO {
		t.Errorf("expected NO-GO, got %s", report.Decision.Decision)
	}
	if report.GeneratedAt.IsZero() {
		t.Error("expected generated timestamp")
	}

	// Nil evaluator skips the decision section
	noDecision := Build("momentum_iv", sampleResult(), nil)
	if noDecision.Decision != nil {
		t.Error("expected nil decision without evaluator")
	}
}

func TestBuildFromTrades(t *testing.T) {
	trades := sampleResult().Trades
	report := BuildFromTrades("momentum_iv", trades, decision.NewEvaluator(decision.Criteria{}))

	if report.Stats.NumTrades != 1 {
		t.Errorf("expected trade count in stats, got %d", report.Stats.NumTrades)
	}
	// Equity context is not recoverable from a ledger
	if report.Stats.FinalEquity != 0 || len(report.EquityCurve) != 0 {
		t.Errorf("expected zero run summary, got %+v", report.Stats)
	}
	if report.Aggregate.TotalPnL != -1.21 {
		t.Errorf("expected total pnl -1.21, got %f", report.Aggregate.TotalPnL)
	}
}

func TestRenderMarkdown(t *testing.T) {
	report := Build("momentum_iv", sampleResult(), decision.NewEvaluator(decision.Criteria{}))
	md := RenderMarkdown(report)

	for _, want := range []string{
		"# Backtest Report",
		"Strategy: momentum_iv",
		"## Run Summary",
		"## Aggregate Metrics",
		"## Trades",
		"| 0 | SPY | CALL |",
		"## Deployment Decision",
		"**Decision: NO-GO**",
		"| Sample size |",
		"FAIL",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderMarkdown_EmptyReport(t *testing.T) {
	report := Build("momentum_iv", &backtest.Result{}, nil)
	md := RenderMarkdown(report)

	if !strings.Contains(md, "No trades recorded.") {
		t.Error("expected empty aggregate placeholder")
	}
	if !strings.Contains(md, "No trades available.") {
		t.Error("expected empty trades placeholder")
	}
	if !strings.Contains(md, "Not evaluated.") {
		t.Error("expected unevaluated decision placeholder")
	}
}

func TestRenderCSV(t *testing.T) {
	report := Build("momentum_iv", sampleResult(), nil)
	csv := RenderCSV(report.Trades)

	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus 1 row, got %d lines", len(lines))
	}
	if lines[0] != "trade_id,sequence,ticker,direction,entry_price,exit_price,quantity,pnl,confidence" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], "trade-001,0,SPY,CALL,1.500000,1.590000,1,") {
		t.Errorf("unexpected row: %s", lines[1])
	}

	if got := RenderCSV(nil); strings.Count(got, "\n") != 1 {
		t.Errorf("expected header only for empty trades, got %q", got)
	}
}
