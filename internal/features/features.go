// Package features derives short-window momentum and volatility features
// from a bar series. The scorer consumes the result as a fallback input
// when raw bar momentum is below threshold.
package features

import (
	"math"

	"options-lab/internal/domain"
)

// volatilityWindow is the trailing number of 1-bar returns used for the
// volatility estimate.
const volatilityWindow = 60

// Compute returns momentum and volatility features for a bar series.
// Empty input yields an all-zero feature set.
func Compute(bars []domain.Bar) domain.FeatureSet {
	if len(bars) == 0 {
		return domain.FeatureSet{}
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	return domain.FeatureSet{
		Momentum15: pctChange(closes, 15),
		Momentum60: pctChange(closes, 60),
		Volatility: volatility(closes),
	}
}

// pctChange computes the percent change over the trailing window, using
// the bar window+1 steps back as baseline. A series shorter than window+1
// bars falls back to the earliest available bar as baseline.
func pctChange(closes []float64, window int) float64 {
	if len(closes) < window+1 {
		window = len(closes) - 1
	}
	if window <= 0 {
		return 0
	}
	start := closes[len(closes)-1-window]
	end := closes[len(closes)-1]
	if start == 0 {
		return 0
	}
	return (end - start) / start
}

// volatility is the population stdev of 1-bar returns over the trailing
// window, annualized by the square root of bars per session.
func volatility(closes []float64) float64 {
	if len(closes) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		returns = append(returns, (closes[i]-closes[i-1])/closes[i-1])
	}
	if len(returns) > volatilityWindow {
		returns = returns[len(returns)-volatilityWindow:]
	}
	if len(returns) == 0 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	sumSq := 0.0
	for _, r := range returns {
		diff := r - mean
		sumSq += diff * diff
	}
	stdev := math.Sqrt(sumSq / float64(len(returns)))

	return stdev * math.Sqrt(domain.BarsPerSession)
}
