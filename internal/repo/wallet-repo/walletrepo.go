package walletrepo

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

const walletColumns = `id, owner_type, owner_id, balance, pending, currency`

func (r *Repository) Create(ctx context.Context, wallet *domain.Wallet) error {
	query := `
        INSERT INTO wallets (id, owner_type, owner_id, balance, pending, currency)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := r.db.Exec(ctx, query,
		wallet.ID, wallet.OwnerType, wallet.OwnerID, wallet.Balance, wallet.Pending, wallet.Currency)
	if err != nil {
		zap.L().Error("failed to create wallet", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) FindForOwner(ctx context.Context, ownerType domain.OwnerType, ownerID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE owner_type = $1 AND owner_id = $2`
	return r.scanWallet(r.db.QueryRow(ctx, query, ownerType, ownerID))
}

func (r *Repository) FindByID(ctx context.Context, walletID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`
	return r.scanWallet(r.db.QueryRow(ctx, query, walletID))
}

// LockForOwner reads the wallet under a row lock. Callers must hold an open
// transaction; concurrent settlements of the same wallet serialize here.
func (r *Repository) LockForOwner(ctx context.Context, ownerType domain.OwnerType, ownerID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE owner_type = $1 AND owner_id = $2 FOR UPDATE`
	return r.scanWallet(r.db.QueryRow(ctx, query, ownerType, ownerID))
}

func (r *Repository) LockByID(ctx context.Context, walletID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1 FOR UPDATE`
	return r.scanWallet(r.db.QueryRow(ctx, query, walletID))
}

// UpdateBalances persists new balance and pending figures for a wallet the
// caller previously locked.
func (r *Repository) UpdateBalances(ctx context.Context, walletID string, balance, pending int64) error {
	query := `UPDATE wallets SET balance = $1, pending = $2 WHERE id = $3`
	tag, err := r.db.Exec(ctx, query, balance, pending, walletID)
	if err != nil {
		zap.L().Error("failed to update wallet balances", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWalletNotFound
	}
	return nil
}

func (r *Repository) scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var wallet domain.Wallet
	err := row.Scan(&wallet.ID, &wallet.OwnerType, &wallet.OwnerID, &wallet.Balance, &wallet.Pending, &wallet.Currency)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't scan wallet row", zap.Error(err))
		return nil, err
	}
	return &wallet, nil
}
