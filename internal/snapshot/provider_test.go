package snapshot

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeSnapshotFile(t *testing.T, doc map[string]map[string]any) string {
	t.Helper()
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	return path
}

func TestFileProvider_FiltersTickers(t *testing.T) {
	path := writeSnapshotFile(t, map[string]map[string]any{
		"SPY":  {"underlying_bars": []any{}},
		"QQQ":  {"underlying_bars": []any{}},
		"TSLA": {"underlying_bars": []any{}},
	})
	provider := NewFileProvider(path)

	snapshot, err := provider.Collect(context.Background(), Request{Tickers: []string{"SPY", "TSLA", "MISSING"}})
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(snapshot) != 2 {
		t.Fatalf("expected 2 tickers, got %d", len(snapshot))
	}
	if _, ok := snapshot["QQQ"]; ok {
		t.Error("unrequested ticker leaked through the filter")
	}

	// Empty ticker list returns the whole document
	all, err := provider.Collect(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected full document, got %d tickers", len(all))
	}
}

func TestFileProvider_MissingFile(t *testing.T) {
	provider := NewFileProvider(filepath.Join(t.TempDir(), "nope.json"))
	if _, err := provider.Collect(context.Background(), Request{}); err == nil {
		t.Error("expected error for missing snapshot file")
	}
}

// countingProvider counts Collect calls over a fixed document.
type countingProvider struct {
	doc   map[string]map[string]any
	calls int
}

func (p *countingProvider) Collect(_ context.Context, req Request) (map[string]map[string]any, error) {
	p.calls++
	out := make(map[string]map[string]any)
	for _, ticker := range req.Tickers {
		if payload, ok := p.doc[ticker]; ok {
			out[ticker] = payload
		}
	}
	return out, nil
}

func TestCachedProvider_ReadThrough(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}
	inner := &countingProvider{doc: map[string]map[string]any{
		"SPY": {"features": map[string]any{"momentum_15": 0.01}},
	}}
	provider := NewCachedProvider(inner, cache, nil)

	req := Request{
		Tickers:   []string{"SPY"},
		Lookback:  120 * time.Minute,
		Timeframe: "1Min",
		UseCache:  true,
	}

	// Cold: delegates and warms the cache
	first, err := provider.Collect(context.Background(), req)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 inner call, got %d", inner.calls)
	}
	if _, ok := first["SPY"]; !ok {
		t.Fatal("expected SPY payload")
	}

	// Warm: served from cache, no delegate call
	second, err := provider.Collect(context.Background(), req)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected cache hit, inner called %d times", inner.calls)
	}
	if _, ok := second["SPY"]; !ok {
		t.Error("expected SPY payload from cache")
	}

	// A new ticker misses, so the whole request delegates again
	req.Tickers = []string{"SPY", "QQQ"}
	if _, err := provider.Collect(context.Background(), req); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("expected delegation on partial miss, inner called %d times", inner.calls)
	}
}

func TestCachedProvider_BypassWithoutFlag(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}
	inner := &countingProvider{doc: map[string]map[string]any{"SPY": {"k": "v"}}}
	provider := NewCachedProvider(inner, cache, nil)

	req := Request{Tickers: []string{"SPY"}, Lookback: time.Hour, Timeframe: "1Min"}
	for i := 0; i < 2; i++ {
		if _, err := provider.Collect(context.Background(), req); err != nil {
			t.Fatalf("Collect failed: %v", err)
		}
	}
	if inner.calls != 2 {
		t.Errorf("expected delegation every cycle without UseCache, got %d calls", inner.calls)
	}
}
