// Package decision evaluates strategy aggregates against deployment
// criteria and produces a GO/NO-GO verdict with a checklist.
package decision

// Decision represents the final GO/NO-GO result.
type Decision string

const (
	DecisionGO   Decision = "GO"
	DecisionNOGO Decision = "NO-GO"
)

// Criteria holds the minimum bar a strategy must clear before live
// deployment. Zero values select the defaults via NewEvaluator.
type Criteria struct {
	MinTrades            int     // minimum sample size
	MinWinRate           float64 // 0-1
	MinTotalPnL          float64 // total realized PnL floor
	MaxDrawdown          float64 // cumulative-PnL drawdown ceiling
	MaxConsecutiveLosses int
}

// DefaultCriteria returns the standard deployment bar.
func DefaultCriteria() Criteria {
	return Criteria{
		MinTrades:            20,
		MinWinRate:           0.45,
		MinTotalPnL:          0,
		MaxDrawdown:          50,
		MaxConsecutiveLosses: 8,
	}
}

// CriterionResult represents pass/fail for one criterion.
type CriterionResult struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// Result contains the final decision with checklist.
type Result struct {
	StrategyID string
	Decision   Decision
	Criteria   []CriterionResult
}
