// Package normalize turns raw, already-deserialized snapshot payloads
// into typed market contexts. All shape variance (chain as list or
// mapping, aliased quote fields, malformed numerics) is resolved here,
// once; scoring code downstream never branches on payload shape.
package normalize

import (
	"sort"
	"time"

	"options-lab/internal/domain"
)

// BuildContext normalizes one ticker's raw snapshot payload into a
// market context. Missing or malformed sections become nil fields.
func BuildContext(ticker string, payload map[string]any) *domain.MarketContext {
	mc := &domain.MarketContext{Ticker: ticker}
	if payload == nil {
		return mc
	}

	mc.UnderlyingBars = Bars(payload["underlying_bars"])
	mc.OptionChain = OptionChain(payload["option_chain"])
	mc.OptionMetrics = OptionMetrics(payload["option_metrics"])
	mc.OptionQuote = OptionQuotes(payload["option_quote"])
	mc.OptionAggregates = OptionAggregates(payload["option_aggregates"])
	mc.NewsItems = News(firstValue(payload, "news", "news_items"))
	mc.Features = Features(payload["features"])

	return mc
}

// ContextsFromSnapshot normalizes a full snapshot (ticker → payload)
// into contexts ordered by ticker for deterministic replay.
func ContextsFromSnapshot(snapshot map[string]map[string]any) []*domain.MarketContext {
	tickers := make([]string, 0, len(snapshot))
	for ticker := range snapshot {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	contexts := make([]*domain.MarketContext, 0, len(tickers))
	for _, ticker := range tickers {
		contexts = append(contexts, BuildContext(ticker, snapshot[ticker]))
	}
	return contexts
}

// Bars normalizes a raw bar list. Bars without a coercible close are
// dropped; an empty result is nil.
func Bars(raw any) []domain.Bar {
	rawBars, ok := raw.([]any)
	if !ok {
		return nil
	}

	bars := make([]domain.Bar, 0, len(rawBars))
	for _, rawBar := range rawBars {
		payload, ok := rawBar.(map[string]any)
		if !ok {
			continue
		}
		close := coerceFloat(firstValue(payload, "close", "c"))
		if close == nil {
			continue
		}
		bars = append(bars, domain.Bar{
			TimestampMs: barTimestamp(firstValue(payload, "timestamp", "t")),
			Open:        floatOrZero(coerceFloat(firstValue(payload, "open", "o"))),
			High:        floatOrZero(coerceFloat(firstValue(payload, "high", "h"))),
			Low:         floatOrZero(coerceFloat(firstValue(payload, "low", "l"))),
			Close:       *close,
			Volume:      floatOrZero(coerceFloat(firstValue(payload, "volume", "v"))),
			VWAP:        coerceFloat(firstValue(payload, "vwap", "vw")),
		})
	}
	if len(bars) == 0 {
		return nil
	}
	return bars
}

// barTimestamp accepts epoch milliseconds or an RFC3339 string.
func barTimestamp(raw any) int64 {
	if f := coerceFloat(raw); f != nil {
		return int64(*f)
	}
	if s, ok := raw.(string); ok {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}

// OptionQuotes normalizes the representative CALL/PUT quote mapping.
func OptionQuotes(raw any) map[domain.Side]domain.Quote {
	mapping, ok := raw.(map[string]any)
	if !ok || len(mapping) == 0 {
		return nil
	}

	quotes := make(map[domain.Side]domain.Quote)
	for key, rawQuote := range mapping {
		side := normalizeContractType(key)
		if side == "" {
			continue
		}
		payload, ok := rawQuote.(map[string]any)
		if !ok {
			continue
		}
		quotes[side] = domain.Quote{
			Symbol: coerceString(payload["symbol"]),
			Bid:    coerceFloat(firstValue(payload, "bid", "bid_price")),
			Ask:    coerceFloat(firstValue(payload, "ask", "ask_price")),
		}
	}
	if len(quotes) == 0 {
		return nil
	}
	return quotes
}

// OptionAggregates normalizes the CALL/PUT aggregate bar series.
func OptionAggregates(raw any) map[domain.Side][]domain.Bar {
	mapping, ok := raw.(map[string]any)
	if !ok || len(mapping) == 0 {
		return nil
	}

	aggregates := make(map[domain.Side][]domain.Bar)
	for key, rawSeries := range mapping {
		side := normalizeContractType(key)
		if side == "" {
			continue
		}
		if bars := Bars(rawSeries); bars != nil {
			aggregates[side] = bars
		}
	}
	if len(aggregates) == 0 {
		return nil
	}
	return aggregates
}

// News normalizes headline records, keeping title and description.
func News(raw any) []domain.NewsItem {
	rawItems, ok := raw.([]any)
	if !ok {
		return nil
	}

	items := make([]domain.NewsItem, 0, len(rawItems))
	for _, rawItem := range rawItems {
		payload, ok := rawItem.(map[string]any)
		if !ok {
			continue
		}
		items = append(items, domain.NewsItem{
			Title:       coerceString(payload["title"]),
			Description: coerceString(payload["description"]),
		})
	}
	if len(items) == 0 {
		return nil
	}
	return items
}

// Features normalizes a precomputed feature mapping. A mapping with no
// coercible values counts as absent.
func Features(raw any) *domain.FeatureSet {
	mapping, ok := raw.(map[string]any)
	if !ok || len(mapping) == 0 {
		return nil
	}

	m15 := coerceFloat(mapping["momentum_15"])
	m60 := coerceFloat(mapping["momentum_60"])
	vol := coerceFloat(mapping["volatility"])
	if m15 == nil && m60 == nil && vol == nil {
		return nil
	}

	return &domain.FeatureSet{
		Momentum15: floatOrZero(m15),
		Momentum60: floatOrZero(m60),
		Volatility: floatOrZero(vol),
	}
}

// sortedKeys returns map keys in ascending order for deterministic
// iteration.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
