package strategy

import (
	"options-lab/internal/domain"
)

// featureMomentum returns the first non-zero precomputed momentum,
// preferring the 15-bar value over the 60-bar one. Missing features
// contribute zero.
func featureMomentum(f *domain.FeatureSet) float64 {
	if f == nil {
		return 0
	}
	if f.Momentum15 != 0 {
		return f.Momentum15
	}
	return f.Momentum60
}

// quoteMomentum derives a direction proxy from the representative
// CALL/PUT quotes: (call_mid - put_mid) / (call_mid + put_mid).
// Both sides must have a mid and the sum must be positive.
func quoteMomentum(quotes map[domain.Side]domain.Quote) float64 {
	callMid, okCall := quotes[domain.SideCall].Mid()
	putMid, okPut := quotes[domain.SidePut].Mid()
	if !okCall || !okPut {
		return 0
	}
	total := callMid + putMid
	if total <= 0 {
		return 0
	}
	return (callMid - putMid) / total
}

// clampUnit clamps v to [-1, 1].
func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
