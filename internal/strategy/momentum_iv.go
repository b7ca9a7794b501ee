package strategy

import (
	"context"
	"math"

	"options-lab/internal/domain"
)

// MomentumIVConfig holds the tunable parameters of the momentum+IV
// scorer. Zero values are replaced by defaults in NewMomentumIV.
type MomentumIVConfig struct {
	LookbackBars       int     // trailing close window for bar momentum
	MomentumThreshold  float64 // minimum |momentum| to fire
	IVSqueezeThreshold float64 // IV-change level treated as a squeeze (negative)
	MaxConfidence      float64
	BaselineConfidence float64
	FlowThreshold      float64 // minimum |flow bias| for a flow-only direction

	MomentumWeight float64
	IVWeight       float64
	NewsWeight     float64
	FlowWeight     float64
}

// DefaultMomentumIVConfig returns the production defaults. The momentum
// threshold of 0.15% is low enough to fire in quiet sessions.
func DefaultMomentumIVConfig() MomentumIVConfig {
	return MomentumIVConfig{
		LookbackBars:       60,
		MomentumThreshold:  0.0015,
		IVSqueezeThreshold: -0.05,
		MaxConfidence:      0.9,
		BaselineConfidence: 0.35,
		FlowThreshold:      0.2,
		MomentumWeight:     0.4,
		IVWeight:           0.25,
		NewsWeight:         0.2,
		FlowWeight:         0.15,
	}
}

// MomentumIV blends intraday momentum, IV-crush detection, option flow
// and news polarity into a directional signal with bounded confidence.
type MomentumIV struct {
	cfg MomentumIVConfig
}

// NewMomentumIV creates a momentum+IV strategy. A zero config selects
// all defaults.
func NewMomentumIV(cfg MomentumIVConfig) *MomentumIV {
	def := DefaultMomentumIVConfig()
	if cfg.LookbackBars == 0 {
		cfg.LookbackBars = def.LookbackBars
	}
	if cfg.MomentumThreshold == 0 {
		cfg.MomentumThreshold = def.MomentumThreshold
	}
	if cfg.IVSqueezeThreshold == 0 {
		cfg.IVSqueezeThreshold = def.IVSqueezeThreshold
	}
	if cfg.MaxConfidence == 0 {
		cfg.MaxConfidence = def.MaxConfidence
	}
	if cfg.BaselineConfidence == 0 {
		cfg.BaselineConfidence = def.BaselineConfidence
	}
	if cfg.FlowThreshold == 0 {
		cfg.FlowThreshold = def.FlowThreshold
	}
	if cfg.MomentumWeight == 0 && cfg.IVWeight == 0 && cfg.NewsWeight == 0 && cfg.FlowWeight == 0 {
		cfg.MomentumWeight = def.MomentumWeight
		cfg.IVWeight = def.IVWeight
		cfg.NewsWeight = def.NewsWeight
		cfg.FlowWeight = def.FlowWeight
	}
	return &MomentumIV{cfg: cfg}
}

// Name returns the strategy identifier.
func (s *MomentumIV) Name() string {
	return "momentum_iv"
}

// GenerateSignal scores the context.
//
// Momentum fallback chain, in order: bar momentum, precomputed features,
// quote-spread ratio. A fallback replaces the current best only when its
// magnitude is larger; fallbacks never combine additively. The raw
// magnitudes are compared across differently-scaled sources on purpose.
func (s *MomentumIV) GenerateSignal(_ context.Context, mc *domain.MarketContext) (*domain.TradingSignal, error) {
	momentum := s.barMomentum(mc.UnderlyingBars)
	if math.Abs(momentum) < s.cfg.MomentumThreshold {
		if fb := featureMomentum(mc.Features); math.Abs(fb) > math.Abs(momentum) {
			momentum = fb
		}
	}
	if math.Abs(momentum) < s.cfg.MomentumThreshold {
		if qm := quoteMomentum(mc.OptionQuote); math.Abs(qm) > math.Abs(momentum) {
			momentum = qm
		}
	}

	iv := extractIVMetrics(mc.OptionChain, mc.OptionMetrics)
	flow := computeFlowMetrics(mc.OptionMetrics, mc.OptionChain)

	flowBias := flow.Ratio
	if math.Abs(flow.DeltaBias) > math.Abs(flowBias) {
		flowBias = flow.DeltaBias
	}

	direction := s.determineDirection(momentum, iv.Change, flowBias)
	newsBias := computeNewsBias(mc.NewsItems)
	confidence := s.confidenceScore(momentum, iv.Change, newsBias, flowBias)

	return &domain.TradingSignal{
		Ticker:     mc.Ticker,
		Direction:  direction,
		Confidence: confidence,
		Metadata: domain.SignalMetadata{
			Momentum:         momentum,
			AvgIV:            iv.Avg,
			IVChange:         iv.Change,
			NewsBias:         newsBias,
			FlowRatio:        flow.Ratio,
			DeltaBias:        flow.DeltaBias,
			CallOpenInterest: flow.CallWeight,
			PutOpenInterest:  flow.PutWeight,
		},
	}, nil
}

// barMomentum is the percent change of close over the trailing lookback
// window. Fewer than two bars in the window yields zero.
func (s *MomentumIV) barMomentum(bars []domain.Bar) float64 {
	if len(bars) == 0 {
		return 0
	}
	window := bars
	if len(window) > s.cfg.LookbackBars {
		window = window[len(window)-s.cfg.LookbackBars:]
	}
	if len(window) < 2 {
		return 0
	}
	first := window[0].Close
	last := window[len(window)-1].Close
	if first == 0 {
		return 0
	}
	return (last - first) / first
}

// determineDirection resolves the direction by precedence: IV squeeze
// plus momentum, bare momentum, then flow bias. Unknown IV relaxes the
// momentum threshold by half so sparse-IV regimes trade on momentum
// alone, and disables both squeeze branches.
func (s *MomentumIV) determineDirection(momentum float64, ivChange *float64, flowBias float64) domain.Direction {
	threshold := s.cfg.MomentumThreshold
	if ivChange == nil {
		threshold *= 0.5
	}

	if ivChange != nil {
		if momentum > threshold && *ivChange <= s.cfg.IVSqueezeThreshold {
			return domain.DirectionCall
		}
		if momentum < -threshold && *ivChange >= -s.cfg.IVSqueezeThreshold {
			return domain.DirectionPut
		}
	}
	if momentum > threshold {
		return domain.DirectionCall
	}
	if momentum < -threshold {
		return domain.DirectionPut
	}
	if math.Abs(flowBias) >= s.cfg.FlowThreshold {
		if flowBias > 0 {
			return domain.DirectionCall
		}
		return domain.DirectionPut
	}
	return domain.DirectionNone
}

// confidenceScore combines the normalized sub-scores with configured
// weights, floors at baseline/max, and caps at max confidence. Every
// sub-score is clamped to [0,1] before weighting.
func (s *MomentumIV) confidenceScore(momentum float64, ivChange *float64, newsBias, flowBias float64) float64 {
	momentumScore := math.Min(math.Abs(momentum)/(s.cfg.MomentumThreshold*2), 1.0)
	ivScore := 0.0
	if ivChange != nil {
		ivScore = math.Min(math.Abs(*ivChange)/0.1, 1.0)
	}
	flowScore := math.Min(math.Abs(flowBias), 1.0)

	totalWeight := s.cfg.MomentumWeight + s.cfg.IVWeight + s.cfg.NewsWeight + s.cfg.FlowWeight
	if totalWeight == 0 {
		totalWeight = 1.0
	}
	raw := (s.cfg.MomentumWeight*momentumScore +
		s.cfg.IVWeight*ivScore +
		s.cfg.NewsWeight*newsBias +
		s.cfg.FlowWeight*flowScore) / totalWeight

	baseline := s.cfg.BaselineConfidence / s.cfg.MaxConfidence
	if raw < baseline {
		raw = baseline
	}
	confidence := raw * s.cfg.MaxConfidence
	if confidence < 0 {
		return 0
	}
	return math.Min(confidence, s.cfg.MaxConfidence)
}

// Ensure MomentumIV implements Strategy
var _ Strategy = (*MomentumIV)(nil)
