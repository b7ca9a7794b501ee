package domain

// NewsItem is one headline record.
type NewsItem struct {
	Title       string
	Description string
}

// FeatureSet holds precomputed momentum/volatility features for a ticker.
type FeatureSet struct {
	Momentum15 float64
	Momentum60 float64
	Volatility float64
}

// MarketContext bundles every input needed to score one ticker at one
// evaluation instant. Only Ticker is required; every other field may be
// empty or nil and consumers must degrade to a neutral contribution.
type MarketContext struct {
	Ticker           string
	UnderlyingBars   []Bar
	OptionChain      []OptionLeg
	OptionMetrics    map[string]OptionLeg
	OptionQuote      map[Side]Quote
	OptionAggregates map[Side][]Bar
	NewsItems        []NewsItem
	Features         *FeatureSet
}
