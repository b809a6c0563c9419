package settlementrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ztyaba/Uganda-Food-Delivery/internal/domain"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/pg"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{db: db}
}

const settlementColumns = `id, order_id, kind, amount, debit_wallet, credit_wallet, actor, mode, created_at`

func (r *Repository) Create(ctx context.Context, record *domain.SettlementRecord) error {
	query := `
        INSERT INTO settlements (` + settlementColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err := r.db.Exec(ctx, query,
		record.ID, record.OrderID, record.Kind, record.Amount,
		record.DebitWallet, record.CreditWallet, record.Actor, record.Mode, record.CreatedAt)
	if err != nil {
		zap.L().Error("failed to create settlement record", zap.Error(err))
		return err
	}
	return nil
}

// FindPayoutByOrder returns the payout record for an order, or nil if the
// driver has not been paid yet. This lookup is the idempotency check.
func (r *Repository) FindPayoutByOrder(ctx context.Context, orderID string) (*domain.SettlementRecord, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlements WHERE order_id = $1 AND kind = $2`
	return r.scanRecord(r.db.QueryRow(ctx, query, orderID, domain.PayoutKind))
}

func (r *Repository) ListByOrder(ctx context.Context, orderID string) ([]domain.SettlementRecord, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlements WHERE order_id = $1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		zap.L().Error("can't get settlement records", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var records []domain.SettlementRecord
	for rows.Next() {
		record, err := r.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

func (r *Repository) scanRecord(row pgx.Row) (*domain.SettlementRecord, error) {
	var record domain.SettlementRecord
	err := row.Scan(&record.ID, &record.OrderID, &record.Kind, &record.Amount,
		&record.DebitWallet, &record.CreditWallet, &record.Actor, &record.Mode, &record.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't scan settlement row", zap.Error(err))
		return nil, err
	}
	return &record, nil
}
