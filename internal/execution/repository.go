package execution

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradewind-io/tradewind/internal/contracts"
)

// PositionStore is the persistence surface the engine and reconciler
// depend on. Position mutations and their trade records commit in one
// transaction so a crash never leaves a quantity change without its
// ledger entry.
type PositionStore interface {
	GetActivePositions(ctx context.Context) ([]*contracts.Position, error)
	GetOwnedSymbols(ctx context.Context) (map[string]bool, error)
	CreatePositionWithTrade(ctx context.Context, position *contracts.Position, trade *contracts.Trade) error
	ClosePositionWithTrade(ctx context.Context, positionID int64, trade *contracts.Trade) error
	UpdateQuantityWithTrade(ctx context.Context, positionID int64, newQty float64, trade *contracts.Trade) error
	UpdateStopLoss(ctx context.Context, update *contracts.StopLossUpdate) error
	SaveFailedOrder(ctx context.Context, failed *contracts.FailedOrder) error
}

// Repository persists positions, trades, stop-loss audit records, and
// scoring output to Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new trading repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetActivePositions returns all open positions
func (r *Repository) GetActivePositions(ctx context.Context) ([]*contracts.Position, error) {
	query := `
		SELECT id, symbol, quantity, entry_price, entry_date,
			current_stop_loss, state, broker_order_id, created_at, updated_at
		FROM trading.positions
		WHERE state != 'closed'
		ORDER BY symbol
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active positions: %w", err)
	}
	defer rows.Close()

	positions := make([]*contracts.Position, 0)
	for rows.Next() {
		var p contracts.Position
		err := rows.Scan(
			&p.ID, &p.Symbol, &p.Quantity, &p.EntryPrice, &p.EntryDate,
			&p.CurrentStopLoss, &p.State, &p.BrokerOrderID, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	return positions, nil
}

// GetOwnedSymbols returns the set of symbols with an open position
func (r *Repository) GetOwnedSymbols(ctx context.Context) (map[string]bool, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT symbol FROM trading.positions WHERE state != 'closed'")
	if err != nil {
		return nil, fmt.Errorf("failed to query owned symbols: %w", err)
	}
	defer rows.Close()

	owned := make(map[string]bool)
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		owned[symbol] = true
	}

	return owned, rows.Err()
}

// CreatePositionWithTrade inserts a new position and its opening trade
// in one transaction. The position's ID is set on return.
func (r *Repository) CreatePositionWithTrade(ctx context.Context, position *contracts.Position, trade *contracts.Trade) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO trading.positions (
			symbol, quantity, entry_price, entry_date,
			current_stop_loss, state, broker_order_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id
	`,
		position.Symbol, position.Quantity, position.EntryPrice, position.EntryDate,
		position.CurrentStopLoss, position.State, position.BrokerOrderID,
	).Scan(&position.ID)
	if err != nil {
		return fmt.Errorf("failed to insert position: %w", err)
	}

	trade.PositionID = position.ID
	if err := insertTrade(ctx, tx, trade); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ClosePositionWithTrade zeroes and closes a position and records the
// closing trade in one transaction.
func (r *Repository) ClosePositionWithTrade(ctx context.Context, positionID int64, trade *contracts.Trade) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE trading.positions
		SET quantity = 0, state = 'closed', updated_at = NOW()
		WHERE id = $1 AND state != 'closed'
	`, positionID)
	if err != nil {
		return fmt.Errorf("failed to close position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("position %d not open", positionID)
	}

	trade.PositionID = positionID
	if err := insertTrade(ctx, tx, trade); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateQuantityWithTrade applies a quantity change and records the
// adjusting trade in one transaction. A new quantity of zero closes the
// position.
func (r *Repository) UpdateQuantityWithTrade(ctx context.Context, positionID int64, newQty float64, trade *contracts.Trade) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	state := contracts.PositionActive
	if newQty == 0 {
		state = contracts.PositionClosed
	}

	tag, err := tx.Exec(ctx, `
		UPDATE trading.positions
		SET quantity = $2, state = $3, updated_at = NOW()
		WHERE id = $1 AND state != 'closed'
	`, positionID, newQty, state)
	if err != nil {
		return fmt.Errorf("failed to update quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("position %d not open", positionID)
	}

	trade.PositionID = positionID
	if err := insertTrade(ctx, tx, trade); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateStopLoss moves a position's stop and appends the audit record
// in one transaction.
func (r *Repository) UpdateStopLoss(ctx context.Context, update *contracts.StopLossUpdate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE trading.positions
		SET current_stop_loss = $2, updated_at = NOW()
		WHERE id = $1 AND state != 'closed'
	`, update.PositionID, update.NewStop)
	if err != nil {
		return fmt.Errorf("failed to update stop loss: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("position %d not open", update.PositionID)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO trading.stop_loss_updates (
			position_id, old_stop, new_stop, reason, price_at_update, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`,
		update.PositionID, update.OldStop, update.NewStop,
		update.Reason, update.PriceAtUpdate, update.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert stop loss audit: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// SaveFailedOrder records a rejected or errored order submission
func (r *Repository) SaveFailedOrder(ctx context.Context, failed *contracts.FailedOrder) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO trading.failed_orders (symbol, action, quantity, reason, failed_at)
		VALUES ($1, $2, $3, $4, $5)
	`, failed.Symbol, failed.Action, failed.Quantity, failed.Reason, failed.FailedAt)
	if err != nil {
		return fmt.Errorf("failed to save failed order: %w", err)
	}

	return nil
}

// GetRecentTrades returns the most recent trades, newest first
func (r *Repository) GetRecentTrades(ctx context.Context, limit int) ([]*contracts.Trade, error) {
	query := `
		SELECT id, position_id, symbol, action, quantity, price, reason, executed_at
		FROM trading.trades
		ORDER BY executed_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	trades := make([]*contracts.Trade, 0)
	for rows.Next() {
		var t contracts.Trade
		err := rows.Scan(&t.ID, &t.PositionID, &t.Symbol, &t.Action,
			&t.Quantity, &t.Price, &t.Reason, &t.ExecutedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, &t)
	}

	return trades, rows.Err()
}

// SaveAnalysisResults persists one scoring pass's per-symbol results
func (r *Repository) SaveAnalysisResults(ctx context.Context, results []*contracts.AnalysisResult) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO trading.analysis_results (
			symbol, current_price, total_signal, adjusted_signal, confidence,
			recommendation, technical, fundamental, risk, analyzed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	for _, res := range results {
		technical, err := json.Marshal(res.Technical)
		if err != nil {
			return fmt.Errorf("failed to marshal technical signals: %w", err)
		}
		fundamental, err := json.Marshal(res.Fundamental)
		if err != nil {
			return fmt.Errorf("failed to marshal fundamental signals: %w", err)
		}
		risk, err := json.Marshal(res.Risk)
		if err != nil {
			return fmt.Errorf("failed to marshal risk metrics: %w", err)
		}

		_, err = tx.Exec(ctx, query,
			res.Symbol, res.CurrentPrice, res.TotalSignal, res.AdjustedSignal,
			res.Confidence, res.Recommendation, technical, fundamental, risk,
			res.AnalyzedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert analysis result: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// SaveRecommendationsSnapshot persists one pass's recommendation lists
func (r *Repository) SaveRecommendationsSnapshot(ctx context.Context, set *contracts.RecommendationSet) error {
	buys, err := json.Marshal(set.Buys)
	if err != nil {
		return fmt.Errorf("failed to marshal buys: %w", err)
	}
	sells, err := json.Marshal(set.Sells)
	if err != nil {
		return fmt.Errorf("failed to marshal sells: %w", err)
	}
	holds, err := json.Marshal(set.Holds)
	if err != nil {
		return fmt.Errorf("failed to marshal holds: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO trading.recommendations_snapshots (analysis_date, buys, sells, holds)
		VALUES ($1, $2, $3, $4)
	`, set.GeneratedAt, buys, sells, holds)
	if err != nil {
		return fmt.Errorf("failed to save recommendations snapshot: %w", err)
	}

	return nil
}

// GetLatestRecommendations returns the most recent recommendation snapshot
func (r *Repository) GetLatestRecommendations(ctx context.Context) (*contracts.RecommendationsSnapshot, error) {
	query := `
		SELECT id, analysis_date, buys, sells, holds
		FROM trading.recommendations_snapshots
		ORDER BY analysis_date DESC
		LIMIT 1
	`

	var snap contracts.RecommendationsSnapshot
	err := r.pool.QueryRow(ctx, query).Scan(
		&snap.ID, &snap.AnalysisDate, &snap.Buys, &snap.Sells, &snap.Holds,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendations snapshot: %w", err)
	}

	return &snap, nil
}

// GetStopLossHistory returns a position's stop changes, newest first
func (r *Repository) GetStopLossHistory(ctx context.Context, positionID int64) ([]*contracts.StopLossUpdate, error) {
	query := `
		SELECT id, position_id, old_stop, new_stop, reason, price_at_update, updated_at
		FROM trading.stop_loss_updates
		WHERE position_id = $1
		ORDER BY updated_at DESC
	`

	rows, err := r.pool.Query(ctx, query, positionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stop loss history: %w", err)
	}
	defer rows.Close()

	updates := make([]*contracts.StopLossUpdate, 0)
	for rows.Next() {
		var u contracts.StopLossUpdate
		err := rows.Scan(&u.ID, &u.PositionID, &u.OldStop, &u.NewStop,
			&u.Reason, &u.PriceAtUpdate, &u.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stop loss update: %w", err)
		}
		updates = append(updates, &u)
	}

	return updates, rows.Err()
}

func insertTrade(ctx context.Context, tx pgx.Tx, trade *contracts.Trade) error {
	if trade.ExecutedAt.IsZero() {
		trade.ExecutedAt = time.Now()
	}

	err := tx.QueryRow(ctx, `
		INSERT INTO trading.trades (position_id, symbol, action, quantity, price, reason, executed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`,
		trade.PositionID, trade.Symbol, trade.Action, trade.Quantity,
		trade.Price, trade.Reason, trade.ExecutedAt,
	).Scan(&trade.ID)
	if err != nil {
		return fmt.Errorf("failed to insert trade: %w", err)
	}

	return nil
}
