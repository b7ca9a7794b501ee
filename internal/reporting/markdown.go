package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Backtest Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Strategy: %s\n\n", r.StrategyID))

	// Run summary
	sb.WriteString("## Run Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Final Equity | %.2f |\n", r.Stats.FinalEquity))
	sb.WriteString(fmt.Sprintf("| Return %% | %.2f |\n", r.Stats.ReturnPct))
	sb.WriteString(fmt.Sprintf("| Max Drawdown | %.4f |\n", r.Stats.MaxDrawdown))
	sb.WriteString(fmt.Sprintf("| Trades | %d |\n", r.Stats.NumTrades))
	sb.WriteString("\n")

	// Aggregate metrics
	sb.WriteString("## Aggregate Metrics\n\n")
	if r.Aggregate != nil && r.Aggregate.TotalTrades > 0 {
		a := r.Aggregate
		sb.WriteString("| Trades | Wins | Losses | WinRate | TotalPnL | Mean | Median | P10 | P90 | Stddev | MaxDD | MaxLoss |\n")
		sb.WriteString("|--------|------|--------|---------|----------|------|--------|-----|-----|--------|-------|--------|\n")
		sb.WriteString(fmt.Sprintf("| %d | %d | %d | %.4f | %.4f | %.4f | %.4f | %.4f | %.4f | %.4f | %.4f | %d |\n",
			a.TotalTrades, a.Wins, a.Losses, a.WinRate, a.TotalPnL,
			a.PnLMean, a.PnLMedian, a.PnLP10, a.PnLP90, a.PnLStddev,
			a.MaxDrawdown, a.MaxConsecutiveLosses))
	} else {
		sb.WriteString("No trades recorded.\n")
	}
	sb.WriteString("\n")

	// Trades
	sb.WriteString("## Trades\n\n")
	if len(r.Trades) > 0 {
		sb.WriteString("| Seq | Ticker | Direction | Entry | Exit | Qty | PnL | Confidence |\n")
		sb.WriteString("|-----|--------|-----------|-------|------|-----|-----|------------|\n")
		for _, t := range r.Trades {
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %.4f | %.4f | %d | %.4f | %.2f |\n",
				t.Sequence, t.Ticker, t.Direction,
				t.EntryPrice, t.ExitPrice, t.Quantity, t.PnL, t.Confidence))
		}
	} else {
		sb.WriteString("No trades available.\n")
	}
	sb.WriteString("\n")

	// Decision checklist
	sb.WriteString("## Deployment Decision\n\n")
	if r.Decision != nil {
		sb.WriteString(fmt.Sprintf("**Decision: %s**\n\n", r.Decision.Decision))
		sb.WriteString("| Criterion | Threshold | Actual | Status |\n")
		sb.WriteString("|-----------|-----------|--------|--------|\n")
		for _, check := range r.Decision.Criteria {
			status := "FAIL"
			if check.Pass {
				status = "PASS"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				check.Name, check.Threshold, check.Actual, status))
		}
	} else {
		sb.WriteString("Not evaluated.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
