// Package audit appends trade-intent records to a newline-delimited
// JSON log for later analysis.
package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"options-lab/internal/domain"
)

// Record is the flat audit entry written per intent: timestamp, all
// intent fields, and the execution result.
type Record struct {
	Timestamp    string                   `json:"timestamp"`
	Ticker       string                   `json:"ticker"`
	OptionSymbol string                   `json:"option_symbol,omitempty"`
	Direction    domain.Direction         `json:"direction"`
	Quantity     int                      `json:"quantity"`
	EntryPrice   float64                  `json:"entry_price"`
	Confidence   float64                  `json:"confidence"`
	Status       string                   `json:"status"`
	OrderID      string                   `json:"order_id,omitempty"`
	Error        string                   `json:"error,omitempty"`
	Metadata     domain.SignalMetadata    `json:"metadata"`
	Liquidity    domain.LiquiditySnapshot `json:"liquidity"`
}

// Sink is an append-only record writer.
type Sink interface {
	Append(record Record) error
}

// JSONLSink appends records as JSON lines to a file.
type JSONLSink struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewJSONLSink creates parent directories, opens (or creates) the
// target file in append mode, and returns the sink.
func NewJSONLSink(path string) (*JSONLSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONLSink{
		file: file,
		enc:  json.NewEncoder(file),
	}, nil
}

// Append writes a single record as one JSON line.
func (s *JSONLSink) Append(record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(record)
}

// Close closes the underlying file handle.
func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

var _ Sink = (*JSONLSink)(nil)
