package strategy

import (
	"options-lab/internal/domain"
)

// ivMetrics summarizes implied-volatility data across a context. A nil
// field means no data existed, which downstream treats as "unknown"
// rather than zero.
type ivMetrics struct {
	Avg    *float64
	Change *float64
}

// extractIVMetrics averages implied volatility and IV change across the
// option chain legs and the enriched metrics entries. Metrics entries
// carry their vega proxy in IVChange, applied at normalization.
func extractIVMetrics(chain []domain.OptionLeg, metrics map[string]domain.OptionLeg) ivMetrics {
	var ivs, changes []float64

	collect := func(leg domain.OptionLeg) {
		if leg.ImpliedVolatility != nil {
			ivs = append(ivs, *leg.ImpliedVolatility)
		}
		if leg.IVChange != nil {
			changes = append(changes, *leg.IVChange)
		}
	}

	for _, leg := range chain {
		collect(leg)
	}
	for _, leg := range metrics {
		collect(leg)
	}

	return ivMetrics{
		Avg:    meanOrNil(ivs),
		Change: meanOrNil(changes),
	}
}

// meanOrNil returns the arithmetic mean, or nil for an empty slice.
func meanOrNil(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	return &mean
}
