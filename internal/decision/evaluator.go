package decision

import (
	"fmt"

	"options-lab/internal/domain"
)

// Evaluator evaluates deployment criteria.
type Evaluator struct {
	criteria Criteria
}

// NewEvaluator creates an evaluator, filling zero criteria fields with
// defaults.
func NewEvaluator(criteria Criteria) *Evaluator {
	defaults := DefaultCriteria()
	if criteria.MinTrades == 0 {
		criteria.MinTrades = defaults.MinTrades
	}
	if criteria.MinWinRate == 0 {
		criteria.MinWinRate = defaults.MinWinRate
	}
	if criteria.MaxDrawdown == 0 {
		criteria.MaxDrawdown = defaults.MaxDrawdown
	}
	if criteria.MaxConsecutiveLosses == 0 {
		criteria.MaxConsecutiveLosses = defaults.MaxConsecutiveLosses
	}
	return &Evaluator{criteria: criteria}
}

// Evaluate produces a Result for one strategy aggregate.
// GO only if ALL criteria pass.
func (e *Evaluator) Evaluate(agg *domain.StrategyAggregate) *Result {
	c := e.criteria
	checks := []CriterionResult{
		{
			Name:      "Sample size",
			Threshold: fmt.Sprintf(">= %d trades", c.MinTrades),
			Actual:    fmt.Sprintf("%d", agg.TotalTrades),
			Pass:      agg.TotalTrades >= c.MinTrades,
		},
		{
			Name:      "Win rate",
			Threshold: fmt.Sprintf(">= %.2f", c.MinWinRate),
			Actual:    fmt.Sprintf("%.2f", agg.WinRate),
			Pass:      agg.WinRate >= c.MinWinRate,
		},
		{
			Name:      "Total PnL",
			Threshold: fmt.Sprintf("> %.2f", c.MinTotalPnL),
			Actual:    fmt.Sprintf("%.2f", agg.TotalPnL),
			Pass:      agg.TotalPnL > c.MinTotalPnL,
		},
		{
			Name:      "Max drawdown",
			Threshold: fmt.Sprintf("<= %.2f", c.MaxDrawdown),
			Actual:    fmt.Sprintf("%.2f", agg.MaxDrawdown),
			Pass:      agg.MaxDrawdown <= c.MaxDrawdown,
		},
		{
			Name:      "Max consecutive losses",
			Threshold: fmt.Sprintf("<= %d", c.MaxConsecutiveLosses),
			Actual:    fmt.Sprintf("%d", agg.MaxConsecutiveLosses),
			Pass:      agg.MaxConsecutiveLosses <= c.MaxConsecutiveLosses,
		},
	}

	decision := DecisionGO
	for _, check := range checks {
		if !check.Pass {
			decision = DecisionNOGO
			break
		}
	}

	return &Result{
		StrategyID: agg.StrategyID,
		Decision:   decision,
		Criteria:   checks,
	}
}
