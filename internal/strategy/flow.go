package strategy

import (
	"math"

	"options-lab/internal/domain"
)

// flowMetrics aggregates CALL vs PUT positioning across option legs.
type flowMetrics struct {
	CallWeight float64
	PutWeight  float64
	Ratio      float64 // (call - put) / total, clamped to [-1, 1]
	DeltaBias  float64 // weighted average per-leg delta, clamped to [-1, 1]
}

// computeFlowMetrics weighs legs by open interest, falling back to an
// estimated liquidity from quote/trade sizes, then |delta|. The enriched
// metrics are the primary source; the raw chain is consulted only when
// metrics produced no weight at all.
func computeFlowMetrics(metrics map[string]domain.OptionLeg, chain []domain.OptionLeg) flowMetrics {
	var callW, putW, callDelta, putDelta float64

	ingest := func(leg domain.OptionLeg) {
		if leg.ContractType != domain.SideCall && leg.ContractType != domain.SidePut {
			return
		}

		oi := leg.OpenInterest
		if oi == nil || *oi < 0 {
			oi = estimateLiquidity(leg)
		}
		delta := 0.0
		if leg.Greeks.Delta != nil {
			delta = *leg.Greeks.Delta
		}

		weight := math.Abs(delta)
		if oi != nil && *oi > 0 {
			weight = *oi
		}
		if weight <= 0 {
			return
		}

		if leg.ContractType == domain.SideCall {
			callW += weight
			callDelta += delta * weight
		} else {
			putW += weight
			putDelta += delta * weight
		}
	}

	for _, leg := range metrics {
		ingest(leg)
	}
	if callW+putW == 0 {
		for _, leg := range chain {
			ingest(leg)
		}
	}

	total := callW + putW
	var ratio, deltaBias float64
	if total > 0 {
		ratio = (callW - putW) / total
		deltaBias = (callDelta + putDelta) / total
	}

	return flowMetrics{
		CallWeight: callW,
		PutWeight:  putW,
		Ratio:      clampUnit(ratio),
		DeltaBias:  clampUnit(deltaBias),
	}
}

// estimateLiquidity approximates open interest from quote sizes and the
// last trade size when open interest is missing or negative. Returns nil
// when no positive estimate exists.
func estimateLiquidity(leg domain.OptionLeg) *float64 {
	estimate := 0.0
	for _, v := range []*float64{leg.BidSize, leg.AskSize, leg.LastTradeSize} {
		if v != nil && *v > estimate {
			estimate = *v
		}
	}
	if estimate <= 0 {
		return nil
	}
	return &estimate
}
