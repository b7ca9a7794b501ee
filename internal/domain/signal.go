package domain

// SignalMetadata carries the diagnostic sub-scores behind a signal.
type SignalMetadata struct {
	Momentum float64 `json:"momentum"`
	// AvgIV and IVChange are nil when no implied-volatility data was
	// available, which is distinct from an observed value of zero.
	AvgIV            *float64 `json:"avg_iv,omitempty"`
	IVChange         *float64 `json:"iv_change,omitempty"`
	NewsBias         float64  `json:"news_bias"`
	FlowRatio        float64  `json:"flow_ratio"`
	DeltaBias        float64  `json:"delta_bias"`
	CallOpenInterest float64  `json:"call_open_interest"`
	PutOpenInterest  float64  `json:"put_open_interest"`
}

// TradingSignal is the immutable output of a strategy evaluation.
type TradingSignal struct {
	Ticker      string
	Direction   Direction
	Confidence  float64
	EntryPrice  *float64
	TargetPrice *float64
	StopPrice   *float64
	Metadata    SignalMetadata
}

// Actionable reports whether the signal names a direction with positive
// confidence.
func (s *TradingSignal) Actionable() bool {
	return s.Direction != DirectionNone && s.Confidence > 0
}
