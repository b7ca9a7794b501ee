package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"options-lab/internal/domain"
)

func TestJSONLSink_AppendAndDecode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "auto_trader.jsonl")
	sink, err := NewJSONLSink(path)
	if err != nil {
		t.Fatalf("NewJSONLSink failed: %v", err)
	}

	records := []Record{
		{
			Timestamp:    "2025-06-02T14:30:00Z",
			Ticker:       "SPY",
			OptionSymbol: "SPY250620C00500000",
			Direction:    domain.DirectionCall,
			Quantity:     1,
			EntryPrice:   1.25,
			Confidence:   0.7,
			Status:       "DRY_RUN",
			Metadata:     domain.SignalMetadata{Momentum: 0.004, NewsBias: 0.5},
			Liquidity:    domain.LiquiditySnapshot{Bars: 30, Volume: 1200, VWAPTrend: 0.002},
		},
		{
			Timestamp: "2025-06-02T14:31:00Z",
			Ticker:    "QQQ",
			Direction: domain.DirectionPut,
			Status:    "FAILED",
			Error:     "order rejected",
		},
	}
	for _, r := range records {
		if err := sink.Append(r); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// Double close is a no-op
	if err := sink.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer file.Close()

	var decoded []Record
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var r Record
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		decoded = append(decoded, r)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan log: %v", err)
	}

	if len(decoded) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(decoded))
	}
	if decoded[0].Ticker != "SPY" || decoded[0].Status != "DRY_RUN" {
		t.Errorf("first record mismatch: %+v", decoded[0])
	}
	if decoded[0].Liquidity.Volume != 1200 {
		t.Errorf("liquidity not round-tripped: %+v", decoded[0].Liquidity)
	}
	if decoded[1].Error != "order rejected" {
		t.Errorf("error field not round-tripped: %+v", decoded[1])
	}
}

func TestJSONLSink_AppendsAcrossReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	for i := 0; i < 2; i++ {
		sink, err := NewJSONLSink(path)
		if err != nil {
			t.Fatalf("NewJSONLSink failed: %v", err)
		}
		if err := sink.Append(Record{Ticker: "SPY", Status: "DRY_RUN"}); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		if err := sink.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := 0
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	if lines != 2 {
		t.Errorf("expected 2 lines after reopen, got %d", lines)
	}
}
