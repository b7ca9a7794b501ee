package normalize

import (
	"options-lab/internal/domain"
)

// chainShape tags the two payload shapes providers use for option
// chains. The union is resolved exactly once, at ingestion.
type chainShape int

const (
	chainAbsent chainShape = iota
	chainAsList
	chainAsMapping
)

// resolveChainShape classifies a raw chain payload.
func resolveChainShape(raw any) (chainShape, []any) {
	switch v := raw.(type) {
	case []any:
		return chainAsList, v
	case map[string]any:
		legs := make([]any, 0, len(v))
		for _, symbol := range sortedKeys(v) {
			legs = append(legs, v[symbol])
		}
		return chainAsMapping, legs
	default:
		return chainAbsent, nil
	}
}

// OptionChain normalizes a raw chain payload (list or mapping of leg
// records) into option legs. Non-record entries are dropped.
func OptionChain(raw any) []domain.OptionLeg {
	shape, rawLegs := resolveChainShape(raw)
	if shape == chainAbsent {
		return nil
	}

	legs := make([]domain.OptionLeg, 0, len(rawLegs))
	for _, rawLeg := range rawLegs {
		payload, ok := rawLeg.(map[string]any)
		if !ok {
			continue
		}
		legs = append(legs, legFromChainPayload(payload))
	}
	if len(legs) == 0 {
		return nil
	}
	return legs
}

// OptionMetrics normalizes the enriched per-contract metrics mapping.
func OptionMetrics(raw any) map[string]domain.OptionLeg {
	mapping, ok := raw.(map[string]any)
	if !ok || len(mapping) == 0 {
		return nil
	}

	metrics := make(map[string]domain.OptionLeg, len(mapping))
	for symbol, rawLeg := range mapping {
		payload, ok := rawLeg.(map[string]any)
		if !ok {
			continue
		}
		leg := legFromMetricsPayload(payload)
		if leg.Symbol == "" {
			leg.Symbol = symbol
		}
		if leg.ContractType == "" {
			leg.ContractType = inferContractType(leg.Symbol)
		}
		metrics[symbol] = leg
	}
	if len(metrics) == 0 {
		return nil
	}
	return metrics
}

// legFromChainPayload builds a leg from a raw chain record. Chain
// payloads carry iv_change explicitly.
func legFromChainPayload(payload map[string]any) domain.OptionLeg {
	leg := legCommon(payload)
	leg.IVChange = coerceFloat(payload["iv_change"])
	return leg
}

// legFromMetricsPayload builds a leg from an enriched metrics record.
// The vega greek stands in for IV change when no explicit field exists.
func legFromMetricsPayload(payload map[string]any) domain.OptionLeg {
	leg := legCommon(payload)
	leg.IVChange = coerceFloat(payload["iv_change"])
	if leg.IVChange == nil {
		leg.IVChange = leg.Greeks.Vega
	}
	return leg
}

// legCommon extracts the fields shared by both payload shapes.
func legCommon(payload map[string]any) domain.OptionLeg {
	leg := domain.OptionLeg{
		Symbol:            coerceString(payload["symbol"]),
		Strike:            coerceFloat(firstValue(payload, "strike", "strike_price")),
		Expiration:        coerceString(firstValue(payload, "expiration", "expiration_date")),
		ImpliedVolatility: coerceFloat(payload["implied_volatility"]),
		OpenInterest:      coerceFloat(payload["open_interest"]),
	}

	if greeks, ok := payload["greeks"].(map[string]any); ok {
		leg.Greeks = domain.Greeks{
			Delta: coerceFloat(greeks["delta"]),
			Gamma: coerceFloat(greeks["gamma"]),
			Theta: coerceFloat(greeks["theta"]),
			Vega:  coerceFloat(greeks["vega"]),
		}
	}

	if quote, ok := payload["latest_quote"].(map[string]any); ok {
		leg.BidSize = coerceFloat(quote["bid_size"])
		leg.AskSize = coerceFloat(quote["ask_size"])
	}
	if trade, ok := payload["latest_trade"].(map[string]any); ok {
		leg.LastTradeSize = coerceFloat(trade["size"])
	}

	if ct := normalizeContractType(coerceString(payload["contract_type"])); ct != "" {
		leg.ContractType = ct
	} else {
		leg.ContractType = inferContractType(leg.Symbol)
	}

	return leg
}

// normalizeContractType maps provider spellings onto Side constants.
func normalizeContractType(raw string) domain.Side {
	switch raw {
	case "CALL", "call", "Call", "C", "c":
		return domain.SideCall
	case "PUT", "put", "Put", "P", "p":
		return domain.SidePut
	default:
		return ""
	}
}

// inferContractType reads the C/P flag out of an OCC option symbol
// (root + yymmdd + C/P + strike*1000, flag at len-9).
func inferContractType(symbol string) domain.Side {
	if len(symbol) < 15 {
		return ""
	}
	switch symbol[len(symbol)-9] {
	case 'C', 'c':
		return domain.SideCall
	case 'P', 'p':
		return domain.SidePut
	default:
		return ""
	}
}
