package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCache_RoundTrip(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}

	payload := map[string]any{"close": 101.5, "volume": 300.0}
	if cache.Exists("snapshots", "SPY", "1Min_120m") {
		t.Error("expected miss before write")
	}
	if err := cache.WriteJSON(payload, "snapshots", "SPY", "1Min_120m"); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	if !cache.Exists("snapshots", "SPY", "1Min_120m") {
		t.Error("expected hit after write")
	}

	var got map[string]any
	if err := cache.ReadJSON(&got, "snapshots", "SPY", "1Min_120m"); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	if got["close"] != 101.5 {
		t.Errorf("payload not round-tripped: %+v", got)
	}

	if err := cache.Remove("snapshots", "SPY", "1Min_120m"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if cache.Exists("snapshots", "SPY", "1Min_120m") {
		t.Error("expected miss after remove")
	}
	// Removing a missing entry is not an error
	if err := cache.Remove("snapshots", "SPY", "1Min_120m"); err != nil {
		t.Errorf("Remove of missing entry failed: %v", err)
	}
}

func TestCache_MissError(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}
	var out map[string]any
	if err := cache.ReadJSON(&out, "absent"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestCache_KeySanitization(t *testing.T) {
	root := t.TempDir()
	cache, err := NewCache(root)
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}

	// Slashes and colons in key parts must not escape the cache root or
	// break on the filesystem.
	if err := cache.WriteJSON("x", "BRK/B", "14:30"); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	want := filepath.Join(root, "BRK_B", "14-30.json")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("expected sanitized path %s: %v", want, err)
	}

	// Empty parts are dropped from the key
	if err := cache.WriteJSON("y", "", "solo"); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "solo.json")); err != nil {
		t.Errorf("expected empty part skipped: %v", err)
	}
}

func TestCache_WriteRecordsRejectsEmpty(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}
	if err := cache.WriteRecords(nil, "bars", "SPY"); !errors.Is(err, ErrEmptyPayload) {
		t.Errorf("expected ErrEmptyPayload, got %v", err)
	}
	records := []map[string]any{{"close": 1.0}}
	if err := cache.WriteRecords(records, "bars", "SPY"); err != nil {
		t.Errorf("WriteRecords failed: %v", err)
	}
	if !cache.Exists("bars", "SPY") {
		t.Error("expected record list cached")
	}
}
