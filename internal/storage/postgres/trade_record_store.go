package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"options-lab/internal/domain"
	"options-lab/internal/storage"
)

// TradeRecordStore implements storage.TradeRecordStore using PostgreSQL.
type TradeRecordStore struct {
	pool *Pool
}

// NewTradeRecordStore creates a new TradeRecordStore.
func NewTradeRecordStore(pool *Pool) *TradeRecordStore {
	return &TradeRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeRecordStore = (*TradeRecordStore)(nil)

const tradeRecordColumns = `
	trade_id, strategy_id, sequence, ticker, direction,
	entry_price, exit_price, quantity, pnl, confidence, metadata
`

const insertTradeRecordQuery = `
	INSERT INTO trade_records (
		trade_id, strategy_id, sequence, ticker, direction,
		entry_price, exit_price, quantity, pnl, confidence, metadata
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9, $10, $11
	)
`

// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeRecordStore) Insert(ctx context.Context, t *domain.TradeRecord) error {
	metadata, err := json.Marshal(t.Metadata)
	if err != nil {
		return fmt.Errorf("marshal trade metadata: %w", err)
	}

	_, err = s.pool.Exec(ctx, insertTradeRecordQuery,
		t.TradeID, t.StrategyID, t.Sequence, t.Ticker, t.Direction,
		t.EntryPrice, t.ExitPrice, t.Quantity, t.PnL, t.Confidence, metadata,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade record: %w", err)
	}
	return nil
}

// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
func (s *TradeRecordStore) InsertBulk(ctx context.Context, trades []*domain.TradeRecord) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range trades {
		metadata, err := json.Marshal(t.Metadata)
		if err != nil {
			return fmt.Errorf("marshal trade metadata: %w", err)
		}
		_, err = tx.Exec(ctx, insertTradeRecordQuery,
			t.TradeID, t.StrategyID, t.Sequence, t.Ticker, t.Direction,
			t.EntryPrice, t.ExitPrice, t.Quantity, t.PnL, t.Confidence, metadata,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert trade record in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
func (s *TradeRecordStore) GetByID(ctx context.Context, tradeID string) (*domain.TradeRecord, error) {
	query := `
		SELECT ` + tradeRecordColumns + `
		FROM trade_records
		WHERE trade_id = $1
	`

	row := s.pool.QueryRow(ctx, query, tradeID)
	t, err := scanTradeRecord(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trade record by id: %w", err)
	}
	return t, nil
}

// GetByTicker retrieves all trades for a ticker, ordered by sequence ASC.
func (s *TradeRecordStore) GetByTicker(ctx context.Context, ticker string) ([]*domain.TradeRecord, error) {
	query := `
		SELECT ` + tradeRecordColumns + `
		FROM trade_records
		WHERE ticker = $1
		ORDER BY sequence ASC, trade_id ASC
	`

	rows, err := s.pool.Query(ctx, query, ticker)
	if err != nil {
		return nil, fmt.Errorf("get trade records by ticker: %w", err)
	}
	defer rows.Close()

	return scanTradeRecords(rows)
}

// GetByStrategy retrieves all trades for a strategy, ordered by sequence ASC.
func (s *TradeRecordStore) GetByStrategy(ctx context.Context, strategyID string) ([]*domain.TradeRecord, error) {
	query := `
		SELECT ` + tradeRecordColumns + `
		FROM trade_records
		WHERE strategy_id = $1
		ORDER BY sequence ASC, trade_id ASC
	`

	rows, err := s.pool.Query(ctx, query, strategyID)
	if err != nil {
		return nil, fmt.Errorf("get trade records by strategy: %w", err)
	}
	defer rows.Close()

	return scanTradeRecords(rows)
}

// scanTradeRecord scans a single trade record from a row.
func scanTradeRecord(row pgx.Row) (*domain.TradeRecord, error) {
	var t domain.TradeRecord
	var metadata []byte

	err := row.Scan(
		&t.TradeID, &t.StrategyID, &t.Sequence, &t.Ticker, &t.Direction,
		&t.EntryPrice, &t.ExitPrice, &t.Quantity, &t.PnL, &t.Confidence, &metadata,
	)
	if err != nil {
		return nil, err
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &t.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal trade metadata: %w", err)
		}
	}
	return &t, nil
}

// scanTradeRecords scans multiple trade records from rows.
func scanTradeRecords(rows pgx.Rows) ([]*domain.TradeRecord, error) {
	var result []*domain.TradeRecord
	for rows.Next() {
		t, err := scanTradeRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade record: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade records: %w", err)
	}
	return result, nil
}
