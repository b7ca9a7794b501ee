package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// FileProvider serves snapshots from a JSON document on disk. The
// document maps ticker to payload. Useful for backtests and replaying
// captured sessions.
type FileProvider struct {
	path string
}

// NewFileProvider does not read the file until Collect is called, so
// the document may be rewritten between cycles.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

var _ Provider = (*FileProvider)(nil)

// Collect loads the document and filters it to the requested tickers.
// When req.Tickers is empty, every ticker in the document is returned.
func (p *FileProvider) Collect(ctx context.Context, req Request) (map[string]map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}
	var doc map[string]map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode snapshot file %s: %w", p.path, err)
	}
	if len(req.Tickers) == 0 {
		return doc, nil
	}
	out := make(map[string]map[string]any, len(req.Tickers))
	for _, ticker := range req.Tickers {
		if payload, ok := doc[ticker]; ok {
			out[ticker] = payload
		}
	}
	return out, nil
}
