package autotrader

import (
	"math"

	"options-lab/internal/domain"
)

// aggregateHealth summarizes the option aggregate series for a
// direction: bar count and traded volume over the trailing window.
// A zero window sums every bar.
func aggregateHealth(aggregates map[domain.Side][]domain.Bar, direction domain.Direction, window int) domain.LiquiditySnapshot {
	series := aggregates[domain.Side(direction)]
	snapshot := domain.LiquiditySnapshot{Bars: len(series)}
	start := 0
	if window > 0 && window < len(series) {
		start = len(series) - window
	}
	for _, bar := range series[start:] {
		snapshot.Volume += bar.Volume
	}
	snapshot.VWAPTrend = vwapTrend(series)
	return snapshot
}

// vwapTrend is the first-to-last percentage change of the bars that
// carry a VWAP. Fewer than two usable VWAP values yields zero.
func vwapTrend(series []domain.Bar) float64 {
	var vwaps []float64
	for _, bar := range series {
		if bar.VWAP != nil {
			vwaps = append(vwaps, *bar.VWAP)
		}
	}
	if len(vwaps) < 2 {
		return 0
	}
	start := vwaps[0]
	end := vwaps[len(vwaps)-1]
	if start == 0 {
		return 0
	}
	return (end - start) / start
}

// passesLiquidityGate applies the minimum aggregate-health thresholds.
// Defaults of zero disable each check.
func (c Config) passesLiquidityGate(snapshot domain.LiquiditySnapshot) bool {
	if snapshot.Bars < c.MinAggBars {
		return false
	}
	if snapshot.Volume < c.MinAggVolume {
		return false
	}
	if math.Abs(snapshot.VWAPTrend) < c.MinAggVWAPTrend {
		return false
	}
	return true
}
