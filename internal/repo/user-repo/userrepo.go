package userrepo

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

const userColumns = `id, role, email, full_name, password_hash, created_at`

func (r *Repository) Create(ctx context.Context, user *domain.User) error {
	query := `
        INSERT INTO users (` + userColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Role, user.Email, user.FullName, user.PasswordHash, user.CreatedAt)
	if err != nil {
		zap.L().Error("failed to create user", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *Repository) FindByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, userID))
}

func (r *Repository) scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Role, &user.Email, &user.FullName, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't scan user row", zap.Error(err))
		return nil, err
	}
	return &user, nil
}
