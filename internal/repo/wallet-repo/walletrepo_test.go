package walletrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"

	"github.com/ztyaba/Uganda-Food-Delivery/internal/domain"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	t.Cleanup(mockDB.Close)
	return repo, mockDB
}

func TestRepository_FindForOwner(t *testing.T) {
	repo, mock := NewMock(t)

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
		result    *domain.Wallet
	}{
		{
			name: "Existing wallet returns balances",
			mockSetup: func() {
				rows := pgxmock.NewRows([]string{"id", "owner_type", "owner_id", "balance", "pending", "currency"}).
					AddRow("w-1", domain.DriverOwner, "drv-1", int64(8600), int64(0), "UGX")
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, owner_type, owner_id, balance, pending, currency FROM wallets WHERE owner_type = $1 AND owner_id = $2`)).
					WithArgs(domain.DriverOwner, "drv-1").
					WillReturnRows(rows)
			},
			result: &domain.Wallet{ID: "w-1", OwnerType: domain.DriverOwner, OwnerID: "drv-1", Balance: 8600, Currency: "UGX"},
		},
		{
			name: "Missing wallet returns nil",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, owner_type, owner_id, balance, pending, currency FROM wallets WHERE owner_type = $1 AND owner_id = $2`)).
					WithArgs(domain.DriverOwner, "drv-1").
					WillReturnError(pgx.ErrNoRows)
			},
			result: nil,
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, owner_type, owner_id, balance, pending, currency FROM wallets WHERE owner_type = $1 AND owner_id = $2`)).
					WithArgs(domain.DriverOwner, "drv-1").
					WillReturnError(errors.New("connection refused"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()

			wallet, err := repo.FindForOwner(context.Background(), domain.DriverOwner, "drv-1")
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.result, wallet)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)

	wallet := &domain.Wallet{ID: "w-1", OwnerType: domain.VendorOwner, OwnerID: "vend-1", Currency: "UGX"}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO wallets`)).
		WithArgs("w-1", domain.VendorOwner, "vend-1", int64(0), int64(0), "UGX").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, repo.Create(context.Background(), wallet))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_LockForOwner(t *testing.T) {
	repo, mock := NewMock(t)

	rows := pgxmock.NewRows([]string{"id", "owner_type", "owner_id", "balance", "pending", "currency"}).
		AddRow("w-1", domain.VendorOwner, "vend-1", int64(43000), int64(0), "UGX")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, owner_type, owner_id, balance, pending, currency FROM wallets WHERE owner_type = $1 AND owner_id = $2 FOR UPDATE`)).
		WithArgs(domain.VendorOwner, "vend-1").
		WillReturnRows(rows)

	wallet, err := repo.LockForOwner(context.Background(), domain.VendorOwner, "vend-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(43000), wallet.Balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateBalances(t *testing.T) {
	repo, mock := NewMock(t)

	tests := []struct {
		name      string
		mockSetup func()
		expectErr error
	}{
		{
			name: "Updates both figures",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE wallets SET balance = $1, pending = $2 WHERE id = $3`)).
					WithArgs(int64(34400), int64(0), "w-1").
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name: "Missing wallet",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE wallets SET balance = $1, pending = $2 WHERE id = $3`)).
					WithArgs(int64(34400), int64(0), "w-1").
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			expectErr: domain.ErrWalletNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()

			err := repo.UpdateBalances(context.Background(), "w-1", 34400, 0)
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
