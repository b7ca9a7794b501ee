package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"options-lab/internal/domain"
	"options-lab/internal/storage"
)

// IntentRecordStore implements storage.IntentRecordStore using PostgreSQL.
type IntentRecordStore struct {
	pool *Pool
}

// NewIntentRecordStore creates a new IntentRecordStore.
func NewIntentRecordStore(pool *Pool) *IntentRecordStore {
	return &IntentRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.IntentRecordStore = (*IntentRecordStore)(nil)

const intentColumns = `
	intent_id, ticker, option_symbol, direction, quantity,
	entry_price, confidence, metadata,
	liq_bars, liq_volume, liq_vwap_trend,
	exec_status, exec_order_id, exec_error, created_at_ms
`

// Insert adds a new intent with its execution result. Returns
// ErrDuplicateKey if intent_id exists.
func (s *IntentRecordStore) Insert(ctx context.Context, i *domain.TradeIntent, result domain.ExecutionResult) error {
	metadata, err := json.Marshal(i.Metadata)
	if err != nil {
		return fmt.Errorf("marshal intent metadata: %w", err)
	}

	query := `
		INSERT INTO trade_intents (
			intent_id, ticker, option_symbol, direction, quantity,
			entry_price, confidence, metadata,
			liq_bars, liq_volume, liq_vwap_trend,
			exec_status, exec_order_id, exec_error, created_at_ms
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8,
			$9, $10, $11,
			$12, $13, $14, $15
		)
	`

	_, err = s.pool.Exec(ctx, query,
		i.IntentID, i.Ticker, i.OptionSymbol, i.Direction, i.Quantity,
		i.EntryPrice, i.Confidence, metadata,
		i.Liquidity.Bars, i.Liquidity.Volume, i.Liquidity.VWAPTrend,
		result.Status, result.OrderID, result.Error, i.CreatedAtMs,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade intent: %w", err)
	}
	return nil
}

// GetByID retrieves an intent by its ID. Returns ErrNotFound if not exists.
func (s *IntentRecordStore) GetByID(ctx context.Context, intentID string) (*domain.TradeIntent, error) {
	query := `
		SELECT ` + intentColumns + `
		FROM trade_intents
		WHERE intent_id = $1
	`

	row := s.pool.QueryRow(ctx, query, intentID)
	i, err := scanTradeIntent(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trade intent by id: %w", err)
	}
	return i, nil
}

// GetByTicker retrieves all intents for a ticker, ordered by created_at ASC.
func (s *IntentRecordStore) GetByTicker(ctx context.Context, ticker string) ([]*domain.TradeIntent, error) {
	query := `
		SELECT ` + intentColumns + `
		FROM trade_intents
		WHERE ticker = $1
		ORDER BY created_at_ms ASC, intent_id ASC
	`

	rows, err := s.pool.Query(ctx, query, ticker)
	if err != nil {
		return nil, fmt.Errorf("get trade intents by ticker: %w", err)
	}
	defer rows.Close()

	var result []*domain.TradeIntent
	for rows.Next() {
		i, err := scanTradeIntent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade intent: %w", err)
		}
		result = append(result, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade intents: %w", err)
	}
	return result, nil
}

// scanTradeIntent scans a single intent from a row. The execution
// result columns are read and discarded; callers that need them query
// the row directly.
func scanTradeIntent(row pgx.Row) (*domain.TradeIntent, error) {
	var i domain.TradeIntent
	var metadata []byte
	var execStatus, execOrderID, execError string

	err := row.Scan(
		&i.IntentID, &i.Ticker, &i.OptionSymbol, &i.Direction, &i.Quantity,
		&i.EntryPrice, &i.Confidence, &metadata,
		&i.Liquidity.Bars, &i.Liquidity.Volume, &i.Liquidity.VWAPTrend,
		&execStatus, &execOrderID, &execError, &i.CreatedAtMs,
	)
	if err != nil {
		return nil, err
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &i.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal intent metadata: %w", err)
		}
	}
	return &i, nil
}
