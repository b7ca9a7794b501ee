package domain

// Side identifies the option contract side.
type Side string

// Side constants.
const (
	SideCall Side = "CALL"
	SidePut  Side = "PUT"
)

// Direction is the directional decision of a signal.
type Direction string

// Direction constants.
const (
	DirectionCall Direction = "CALL"
	DirectionPut  Direction = "PUT"
	DirectionNone Direction = "NONE"
)

// Greeks holds option sensitivities. Fields missing upstream stay nil.
type Greeks struct {
	Delta *float64
	Gamma *float64
	Theta *float64
	Vega  *float64
}

// OptionLeg is the normalized record for one option contract, produced
// once at ingestion from either a chain payload or an enriched metrics
// payload. Scoring code never sees raw provider shapes.
type OptionLeg struct {
	Symbol            string
	ContractType      Side // empty when it could not be resolved
	Strike            *float64
	Expiration        string
	ImpliedVolatility *float64
	// IVChange is the per-leg implied-volatility change. Chain payloads
	// carry it explicitly; metrics payloads proxy it with vega. nil means
	// unknown, never zero.
	IVChange      *float64
	OpenInterest  *float64
	Greeks        Greeks
	BidSize       *float64
	AskSize       *float64
	LastTradeSize *float64
}

// Quote is a best-representative quote for one side of a ticker.
type Quote struct {
	Symbol string
	Bid    *float64
	Ask    *float64
}

// Mid returns the quote midpoint. One-sided quotes fall back to the side
// that is present; fully empty quotes return (0, false).
func (q Quote) Mid() (float64, bool) {
	switch {
	case q.Bid == nil && q.Ask == nil:
		return 0, false
	case q.Bid == nil:
		return *q.Ask, true
	case q.Ask == nil:
		return *q.Bid, true
	default:
		return (*q.Bid + *q.Ask) / 2, true
	}
}
