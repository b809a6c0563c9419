package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// TXManager runs a function inside a database transaction. Nested Begin
// calls join the transaction already open on the context.
type TXManager interface {
	Begin(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

func txFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

type Manager struct {
	pool *pgxpool.Pool
}

func NewTXManager(pool *pgxpool.Pool) *Manager {
	return &Manager{pool: pool}
}

const maxTxAttempts = 3

// Begin opens a transaction, passes a context carrying it to fn, and commits
// on success. Serialization failures and deadlocks are retried with backoff;
// any other error rolls back and is returned as is.
func (m *Manager) Begin(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	backoff := retry.WithMaxRetries(maxTxAttempts, retry.NewExponential(50*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := m.runTx(ctx, fn)
		if err != nil && isTransient(err) {
			zap.L().Debug("retrying transaction", zap.Error(err))
			return retry.RetryableError(err)
		}
		return err
	})
}

func (m *Manager) runTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			zap.L().Error("rollback failed", zap.Error(rbErr))
		}
		return err
	}

	return tx.Commit(ctx)
}

// SQLSTATE 40001 serialization_failure, 40P01 deadlock_detected.
func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}
