package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// CachedProvider wraps another Provider with a read-through Cache.
// Each ticker payload is cached independently so a partial snapshot
// still warms the cache for the tickers it did cover.
type CachedProvider struct {
	inner  Provider
	cache  *Cache
	logger *log.Logger
}

func NewCachedProvider(inner Provider, cache *Cache, logger *log.Logger) *CachedProvider {
	return &CachedProvider{inner: inner, cache: cache, logger: logger}
}

var _ Provider = (*CachedProvider)(nil)

// Collect answers from the cache when req.UseCache is set and every
// requested ticker is cached; otherwise it delegates and stores the
// fresh payloads. Cache write failures are logged, never fatal.
func (p *CachedProvider) Collect(ctx context.Context, req Request) (map[string]map[string]any, error) {
	if req.UseCache && len(req.Tickers) > 0 {
		cached, ok := p.readAll(req)
		if ok {
			return cached, nil
		}
	}
	snapshot, err := p.inner.Collect(ctx, req)
	if err != nil {
		return nil, err
	}
	for ticker, payload := range snapshot {
		if len(payload) == 0 {
			continue
		}
		if err := p.cache.WriteJSON(payload, p.key(req, ticker)...); err != nil && p.logger != nil {
			p.logger.Printf("cache write failed for %s: %v", ticker, err)
		}
	}
	return snapshot, nil
}

func (p *CachedProvider) readAll(req Request) (map[string]map[string]any, bool) {
	out := make(map[string]map[string]any, len(req.Tickers))
	for _, ticker := range req.Tickers {
		var payload map[string]any
		err := p.cache.ReadJSON(&payload, p.key(req, ticker)...)
		if errors.Is(err, ErrCacheMiss) {
			return nil, false
		}
		if err != nil {
			if p.logger != nil {
				p.logger.Printf("cache read failed for %s: %v", ticker, err)
			}
			return nil, false
		}
		out[ticker] = payload
	}
	return out, true
}

func (p *CachedProvider) key(req Request, ticker string) []string {
	return []string{
		"snapshots",
		ticker,
		fmt.Sprintf("%s_%dm", req.Timeframe, int(req.Lookback.Minutes())),
	}
}
