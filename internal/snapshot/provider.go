// Package snapshot supplies raw market snapshots to the decision
// cycle. A snapshot maps ticker to an already-deserialized payload;
// normalization into typed contexts happens downstream.
package snapshot

import (
	"context"
	"time"
)

// Request describes one snapshot collection.
type Request struct {
	Tickers      []string
	Lookback     time.Duration // bar history window
	NewsLookback time.Duration
	Timeframe    string // e.g. "1Min"
	UseCache     bool
	IncludeNews  bool
}

// Provider collects a snapshot for the requested tickers. A hard
// failure propagates to the caller and halts the cycle; a provider
// should tolerate single-ticker failures itself where plausible and
// return the partial snapshot instead.
type Provider interface {
	Collect(ctx context.Context, req Request) (map[string]map[string]any, error)
}
