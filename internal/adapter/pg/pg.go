package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkuzmina/exchange-batch/internal/domain"
	"github.com/mkuzmina/exchange-batch/internal/port"
)

var _ port.Archive = (*PgArchive)(nil)

// PgArchive persists run results to Postgres. It never feeds anything
// back into matching; a run is reproducible from its input alone.
type PgArchive struct {
	pool *pgxpool.Pool
}

// call Close when finished working with the database.
func NewPgArchive(ctx context.Context, dsn string) (*PgArchive, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}
	return &PgArchive{pool: pool}, nil
}

func (p *PgArchive) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

func (p *PgArchive) SaveTrade(ctx context.Context, runID string, t *domain.Trade) error {
	if t == nil {
		return errors.New("nil trade")
	}
	_, err := p.pool.Exec(ctx, `
INSERT INTO trades(run_id, trade_id, pair, maker_order_id, taker_order_id, maker_account_id, taker_account_id, amount, price, ts)
VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (run_id, trade_id) DO NOTHING
`, runID, t.ID, t.Pair, t.MakerOrderID, t.TakerOrderID, t.MakerAccountID, t.TakerAccountID,
		t.Amount.Canonical(), t.Price.Canonical(), t.Timestamp)
	return err
}

// SaveBook writes every resting entry of the pair's final book inside
// one transaction, replacing any previous rows for the same run and pair.
func (p *PgArchive) SaveBook(ctx context.Context, runID string, snap *domain.BookSnapshot) error {
	if snap == nil {
		return errors.New("nil snapshot")
	}
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM book_entries WHERE run_id = $1 AND pair = $2`, runID, snap.Pair); err != nil {
		return err
	}
	for _, side := range []struct {
		name    string
		entries []domain.Order
	}{{"BID", snap.Bids}, {"ASK", snap.Asks}} {
		for pos, o := range side.entries {
			if _, err := tx.Exec(ctx, `
INSERT INTO book_entries(run_id, pair, side, position, order_id, account_id, amount, limit_price, ts)
VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9)
`, runID, snap.Pair, side.name, pos, o.OrderID, o.AccountID,
				o.Amount.Canonical(), o.LimitPrice.Canonical(), o.Timestamp); err != nil {
				return err
			}
		}
	}
	return tx.Commit(ctx)
}
