package domain

// Bar represents one OHLCV bar of an underlying or option aggregate series.
type Bar struct {
	TimestampMs int64   // Unix timestamp in milliseconds
	Open        float64 // open price
	High        float64 // high price
	Low         float64 // low price
	Close       float64 // close price
	Volume      float64 // traded volume
	VWAP        *float64
}

// Bars-per-session constant used to annualize intraday volatility.
// One regular US equity session has 390 one-minute bars.
const BarsPerSession = 390
