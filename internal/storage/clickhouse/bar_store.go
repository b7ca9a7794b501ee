package clickhouse

import (
	"context"
	"fmt"
	"math"

	"options-lab/internal/domain"
	"options-lab/internal/storage"
)

// BarStore implements storage.BarStore using ClickHouse.
//
// MergeTree does not enforce uniqueness at insert time, so duplicate
// detection uses an explicit timestamp lookup before the batch insert.
type BarStore struct {
	conn *Conn
}

// NewBarStore creates a new BarStore.
func NewBarStore(conn *Conn) *BarStore {
	return &BarStore{conn: conn}
}

// Compile-time interface check.
var _ storage.BarStore = (*BarStore)(nil)

// InsertBulk adds multiple bars for (ticker, kind). Fails entire batch
// on duplicate (ticker, kind, timestamp_ms).
func (s *BarStore) InsertBulk(ctx context.Context, ticker, kind string, bars []domain.Bar) error {
	if ticker == "" || kind == "" {
		return storage.ErrInvalidInput
	}
	if len(bars) == 0 {
		return nil
	}

	timestamps := make([]int64, 0, len(bars))
	seen := make(map[int64]struct{}, len(bars))
	for _, bar := range bars {
		if _, exists := seen[bar.TimestampMs]; exists {
			return storage.ErrDuplicateKey
		}
		seen[bar.TimestampMs] = struct{}{}
		timestamps = append(timestamps, bar.TimestampMs)
	}

	exists, err := s.anyExist(ctx, ticker, kind, timestamps)
	if err != nil {
		return err
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO bars (ticker, kind, timestamp_ms, open, high, low, close, volume, vwap)
	`)
	if err != nil {
		return fmt.Errorf("prepare bar batch: %w", err)
	}

	for _, bar := range bars {
		// NaN marks an absent VWAP; the read path maps it back to nil.
		vwap := math.NaN()
		if bar.VWAP != nil {
			vwap = *bar.VWAP
		}
		if err := batch.Append(
			ticker, kind, bar.TimestampMs,
			bar.Open, bar.High, bar.Low, bar.Close, bar.Volume, vwap,
		); err != nil {
			return fmt.Errorf("append bar to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send bar batch: %w", err)
	}
	return nil
}

// GetByTicker retrieves all bars for (ticker, kind), ordered by timestamp ASC.
func (s *BarStore) GetByTicker(ctx context.Context, ticker, kind string) ([]domain.Bar, error) {
	query := `
		SELECT timestamp_ms, open, high, low, close, volume, vwap
		FROM bars
		WHERE ticker = ? AND kind = ?
		ORDER BY timestamp_ms ASC
	`
	return s.queryBars(ctx, query, ticker, kind)
}

// GetByTimeRange retrieves bars for (ticker, kind) within [start, end] (inclusive).
func (s *BarStore) GetByTimeRange(ctx context.Context, ticker, kind string, start, end int64) ([]domain.Bar, error) {
	query := `
		SELECT timestamp_ms, open, high, low, close, volume, vwap
		FROM bars
		WHERE ticker = ? AND kind = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC
	`
	return s.queryBars(ctx, query, ticker, kind, start, end)
}

func (s *BarStore) queryBars(ctx context.Context, query string, args ...any) ([]domain.Bar, error) {
	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	var result []domain.Bar
	for rows.Next() {
		var bar domain.Bar
		var vwap float64
		if err := rows.Scan(
			&bar.TimestampMs, &bar.Open, &bar.High, &bar.Low,
			&bar.Close, &bar.Volume, &vwap,
		); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		if !math.IsNaN(vwap) {
			v := vwap
			bar.VWAP = &v
		}
		result = append(result, bar)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bars: %w", err)
	}
	return result, nil
}

func (s *BarStore) anyExist(ctx context.Context, ticker, kind string, timestamps []int64) (bool, error) {
	query := `
		SELECT count() FROM bars
		WHERE ticker = ? AND kind = ? AND timestamp_ms IN (?)
	`
	row := s.conn.QueryRow(ctx, query, ticker, kind, timestamps)
	var count uint64
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("check existing bars: %w", err)
	}
	return count > 0, nil
}
