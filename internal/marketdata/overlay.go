package marketdata

import (
	"context"

	"options-lab/internal/domain"
	"options-lab/internal/snapshot"
)

// OverlayProvider decorates a snapshot provider with live stream
// quotes. When the stream has seen a quote for a ticker, it replaces
// the snapshot's option_quote block so pricing uses the freshest data.
type OverlayProvider struct {
	inner  snapshot.Provider
	stream *Stream
}

func NewOverlayProvider(inner snapshot.Provider, stream *Stream) *OverlayProvider {
	return &OverlayProvider{inner: inner, stream: stream}
}

var _ snapshot.Provider = (*OverlayProvider)(nil)

// Collect delegates to the inner provider and overlays live quotes.
func (p *OverlayProvider) Collect(ctx context.Context, req snapshot.Request) (map[string]map[string]any, error) {
	snap, err := p.inner.Collect(ctx, req)
	if err != nil {
		return nil, err
	}
	for ticker, payload := range snap {
		quotes := p.stream.LatestQuotes(ticker)
		if len(quotes) == 0 {
			continue
		}
		block := make(map[string]any, len(quotes))
		for side, quote := range quotes {
			leg := map[string]any{"symbol": quote.Symbol}
			if quote.Bid != nil {
				leg["bid"] = *quote.Bid
			}
			if quote.Ask != nil {
				leg["ask"] = *quote.Ask
			}
			block[string(side)] = leg
		}
		if payload == nil {
			payload = make(map[string]any, 1)
			snap[ticker] = payload
		}
		payload["option_quote"] = block
	}
	return snap, nil
}

// SidesFor reports which option sides the stream currently has quotes
// for, useful for subscription health checks.
func (p *OverlayProvider) SidesFor(ticker string) []domain.Side {
	quotes := p.stream.LatestQuotes(ticker)
	sides := make([]domain.Side, 0, len(quotes))
	for side := range quotes {
		sides = append(sides, side)
	}
	return sides
}
