package settlementservice

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/ztyaba/Uganda-Food-Delivery/internal/domain"
)

func NewMock(t *testing.T) (*Service, *MockWalletRepo, *MockSettlementRepo) {
	ctrl := gomock.NewController(t)
	walletRepo := NewMockWalletRepo(ctrl)
	settlementRepo := NewMockSettlementRepo(ctrl)
	userRepo := NewMockUserRepo(ctrl)
	txManager := NewMockTXManager(ctrl)
	txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).AnyTimes()

	service := New(walletRepo, settlementRepo, userRepo, txManager, 0.2, "UGX")
	return service, walletRepo, settlementRepo
}

func TestSplitTotal(t *testing.T) {
	service, _, _ := NewMock(t)

	tests := []struct {
		name        string
		total       int64
		driverShare int64
		vendorShare int64
	}{
		{name: "Even split", total: 43000, driverShare: 8600, vendorShare: 34400},
		{name: "Small order", total: 15000, driverShare: 3000, vendorShare: 12000},
		{name: "Rounds half up", total: 13, driverShare: 3, vendorShare: 10},
		{name: "Rounds down below half", total: 12, driverShare: 2, vendorShare: 10},
		{name: "One unit", total: 1, driverShare: 0, vendorShare: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares := service.SplitTotal(tt.total)
			assert.Equal(t, tt.driverShare, shares.DriverShare)
			assert.Equal(t, tt.vendorShare, shares.VendorShare)
			assert.Equal(t, tt.total, shares.DriverShare+shares.VendorShare)
		})
	}
}

func TestSplitTotalNeverLeaks(t *testing.T) {
	service, _, _ := NewMock(t)

	for total := int64(1); total < 1000; total++ {
		shares := service.SplitTotal(total)
		assert.Equal(t, total, shares.DriverShare+shares.VendorShare)
		assert.GreaterOrEqual(t, shares.DriverShare, int64(0))
		assert.GreaterOrEqual(t, shares.VendorShare, int64(0))
	}
}

func TestCaptureOrderPayment(t *testing.T) {
	customerWallet := func(balance int64) *domain.Wallet {
		return &domain.Wallet{ID: "w-cust", OwnerType: domain.CustomerOwner, OwnerID: "cust-1", Balance: balance}
	}
	vendorWallet := &domain.Wallet{ID: "w-vend", OwnerType: domain.VendorOwner, OwnerID: "vend-1"}
	escrowWallet := &domain.Wallet{ID: "w-escrow", OwnerType: domain.EscrowOwner, OwnerID: domain.PlatformEscrowID}

	tests := []struct {
		name          string
		total         int64
		prepareMock   func(wallets *MockWalletRepo, settlements *MockSettlementRepo)
		expectedError error
	}{
		{
			name:  "Captures full total and splits shares",
			total: 43000,
			prepareMock: func(wallets *MockWalletRepo, settlements *MockSettlementRepo) {
				wallets.EXPECT().LockForOwner(gomock.Any(), domain.CustomerOwner, "cust-1").Return(customerWallet(50000), nil)
				wallets.EXPECT().LockForOwner(gomock.Any(), domain.VendorOwner, "vend-1").Return(vendorWallet, nil)
				wallets.EXPECT().LockForOwner(gomock.Any(), domain.EscrowOwner, domain.PlatformEscrowID).Return(escrowWallet, nil)
				wallets.EXPECT().UpdateBalances(gomock.Any(), "w-cust", int64(7000), int64(0)).Return(nil)
				wallets.EXPECT().UpdateBalances(gomock.Any(), "w-vend", int64(0), int64(34400)).Return(nil)
				wallets.EXPECT().UpdateBalances(gomock.Any(), "w-escrow", int64(0), int64(8600)).Return(nil)
				settlements.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:  "Insufficient customer funds",
			total: 43000,
			prepareMock: func(wallets *MockWalletRepo, settlements *MockSettlementRepo) {
				wallets.EXPECT().LockForOwner(gomock.Any(), domain.CustomerOwner, "cust-1").Return(customerWallet(1000), nil)
				wallets.EXPECT().LockForOwner(gomock.Any(), domain.VendorOwner, "vend-1").Return(vendorWallet, nil)
				wallets.EXPECT().LockForOwner(gomock.Any(), domain.EscrowOwner, domain.PlatformEscrowID).Return(escrowWallet, nil)
			},
			expectedError: domain.ErrInsufficientFunds,
		},
		{
			name:          "Rejects non-positive total",
			total:         0,
			expectedError: domain.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, wallets, settlements := NewMock(t)
			if tt.prepareMock != nil {
				tt.prepareMock(wallets, settlements)
			}

			shares, err := service.CaptureOrderPayment(context.Background(), "order-1", "cust-1", "vend-1", tt.total)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, shares)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.total, shares.DriverShare+shares.VendorShare)
			}
		})
	}
}

func TestReleaseEscrow(t *testing.T) {
	order := &domain.Order{
		ID:             "order-1",
		VendorID:       "vend-1",
		AssignedDriver: "drv-1",
		Total:          43000,
		DriverShare:    8600,
		VendorShare:    34400,
	}

	t.Run("Moves vendor share and escrowed driver share to vendor balance", func(t *testing.T) {
		service, wallets, settlements := NewMock(t)
		wallets.EXPECT().LockForOwner(gomock.Any(), domain.VendorOwner, "vend-1").
			Return(&domain.Wallet{ID: "w-vend", Pending: 34400}, nil)
		wallets.EXPECT().LockForOwner(gomock.Any(), domain.EscrowOwner, domain.PlatformEscrowID).
			Return(&domain.Wallet{ID: "w-escrow", Pending: 8600}, nil)
		wallets.EXPECT().UpdateBalances(gomock.Any(), "w-vend", int64(43000), int64(0)).Return(nil)
		wallets.EXPECT().UpdateBalances(gomock.Any(), "w-escrow", int64(0), int64(0)).Return(nil)
		settlements.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(2)

		assert.NoError(t, service.ReleaseEscrow(context.Background(), order))
	})

	t.Run("Fails when escrow does not cover the driver share", func(t *testing.T) {
		service, wallets, _ := NewMock(t)
		wallets.EXPECT().LockForOwner(gomock.Any(), domain.VendorOwner, "vend-1").
			Return(&domain.Wallet{ID: "w-vend", Pending: 34400}, nil)
		wallets.EXPECT().LockForOwner(gomock.Any(), domain.EscrowOwner, domain.PlatformEscrowID).
			Return(&domain.Wallet{ID: "w-escrow", Pending: 100}, nil)

		assert.ErrorIs(t, service.ReleaseEscrow(context.Background(), order), domain.ErrInsufficientFunds)
	})
}

func TestPayDriverPayout(t *testing.T) {
	tests := []struct {
		name          string
		amount        int64
		prepareMock   func(wallets *MockWalletRepo, settlements *MockSettlementRepo)
		expectedError error
		expectedMode  domain.PayoutMode
	}{
		{
			name:   "Pays the driver from the vendor balance",
			amount: 8600,
			prepareMock: func(wallets *MockWalletRepo, settlements *MockSettlementRepo) {
				wallets.EXPECT().LockForOwner(gomock.Any(), domain.VendorOwner, "vend-1").
					Return(&domain.Wallet{ID: "w-vend", Balance: 43000}, nil)
				settlements.EXPECT().FindPayoutByOrder(gomock.Any(), "order-1").Return(nil, nil)
				wallets.EXPECT().LockForOwner(gomock.Any(), domain.DriverOwner, "drv-1").
					Return(&domain.Wallet{ID: "w-drv", Balance: 0}, nil)
				wallets.EXPECT().UpdateBalances(gomock.Any(), "w-vend", int64(34400), int64(0)).Return(nil)
				wallets.EXPECT().UpdateBalances(gomock.Any(), "w-drv", int64(8600), int64(0)).Return(nil)
				settlements.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
			expectedMode: domain.ManualPayout,
		},
		{
			name:   "Skips when a payout record already exists",
			amount: 8600,
			prepareMock: func(wallets *MockWalletRepo, settlements *MockSettlementRepo) {
				wallets.EXPECT().LockForOwner(gomock.Any(), domain.VendorOwner, "vend-1").
					Return(&domain.Wallet{ID: "w-vend", Balance: 43000}, nil)
				settlements.EXPECT().FindPayoutByOrder(gomock.Any(), "order-1").
					Return(&domain.SettlementRecord{OrderID: "order-1", Kind: domain.PayoutKind, Mode: domain.AutoPayout}, nil)
			},
			expectedMode: domain.AutoPayout,
		},
		{
			name:   "Insufficient vendor balance",
			amount: 8600,
			prepareMock: func(wallets *MockWalletRepo, settlements *MockSettlementRepo) {
				wallets.EXPECT().LockForOwner(gomock.Any(), domain.VendorOwner, "vend-1").
					Return(&domain.Wallet{ID: "w-vend", Balance: 100}, nil)
				settlements.EXPECT().FindPayoutByOrder(gomock.Any(), "order-1").Return(nil, nil)
				wallets.EXPECT().LockForOwner(gomock.Any(), domain.DriverOwner, "drv-1").
					Return(&domain.Wallet{ID: "w-drv"}, nil)
			},
			expectedError: domain.ErrInsufficientFunds,
		},
		{
			name:          "Rejects non-positive amount",
			amount:        0,
			expectedError: domain.ErrInvalidPayout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, wallets, settlements := NewMock(t)
			if tt.prepareMock != nil {
				tt.prepareMock(wallets, settlements)
			}

			record, err := service.PayDriverPayout(context.Background(), "order-1", "vend-1", "drv-1", tt.amount, domain.ManualPayout, "vend-1")
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, record)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedMode, record.Mode)
			}
		})
	}
}

func TestRefundCapture(t *testing.T) {
	order := &domain.Order{
		ID:          "order-1",
		CustomerID:  "cust-1",
		VendorID:    "vend-1",
		Total:       43000,
		DriverShare: 8600,
		VendorShare: 34400,
	}

	t.Run("Returns the full total to the customer", func(t *testing.T) {
		service, wallets, settlements := NewMock(t)
		wallets.EXPECT().LockForOwner(gomock.Any(), domain.CustomerOwner, "cust-1").
			Return(&domain.Wallet{ID: "w-cust", Balance: 7000}, nil)
		wallets.EXPECT().LockForOwner(gomock.Any(), domain.VendorOwner, "vend-1").
			Return(&domain.Wallet{ID: "w-vend", Pending: 34400}, nil)
		wallets.EXPECT().LockForOwner(gomock.Any(), domain.EscrowOwner, domain.PlatformEscrowID).
			Return(&domain.Wallet{ID: "w-escrow", Pending: 8600}, nil)
		wallets.EXPECT().UpdateBalances(gomock.Any(), "w-vend", int64(0), int64(0)).Return(nil)
		wallets.EXPECT().UpdateBalances(gomock.Any(), "w-escrow", int64(0), int64(0)).Return(nil)
		wallets.EXPECT().UpdateBalances(gomock.Any(), "w-cust", int64(50000), int64(0)).Return(nil)
		settlements.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		assert.NoError(t, service.RefundCapture(context.Background(), order, "cust-1"))
	})
}

func TestRequestPayout(t *testing.T) {
	tests := []struct {
		name          string
		amount        int64
		prepareMock   func(wallets *MockWalletRepo, settlements *MockSettlementRepo)
		expectedError error
	}{
		{
			name:   "Moves funds from available to pending",
			amount: 5000,
			prepareMock: func(wallets *MockWalletRepo, settlements *MockSettlementRepo) {
				wallets.EXPECT().LockForOwner(gomock.Any(), domain.DriverOwner, "drv-1").
					Return(&domain.Wallet{ID: "w-drv", Balance: 8600}, nil)
				wallets.EXPECT().UpdateBalances(gomock.Any(), "w-drv", int64(3600), int64(5000)).Return(nil)
				settlements.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:   "Wallet missing",
			amount: 5000,
			prepareMock: func(wallets *MockWalletRepo, settlements *MockSettlementRepo) {
				wallets.EXPECT().LockForOwner(gomock.Any(), domain.DriverOwner, "drv-1").Return(nil, nil)
			},
			expectedError: domain.ErrWalletNotFound,
		},
		{
			name:   "Insufficient funds",
			amount: 9000,
			prepareMock: func(wallets *MockWalletRepo, settlements *MockSettlementRepo) {
				wallets.EXPECT().LockForOwner(gomock.Any(), domain.DriverOwner, "drv-1").
					Return(&domain.Wallet{ID: "w-drv", Balance: 8600}, nil)
			},
			expectedError: domain.ErrInsufficientFunds,
		},
		{
			name:          "Rejects non-positive amount",
			amount:        0,
			expectedError: domain.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, wallets, settlements := NewMock(t)
			if tt.prepareMock != nil {
				tt.prepareMock(wallets, settlements)
			}

			wallet, err := service.RequestPayout(context.Background(), domain.DriverOwner, "drv-1", tt.amount, "Mobile Money")
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, wallet)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, int64(3600), wallet.Balance)
				assert.Equal(t, int64(5000), wallet.Pending)
			}
		})
	}
}

func TestHistoryError(t *testing.T) {
	service, _, settlements := NewMock(t)
	settlements.EXPECT().ListByOrder(gomock.Any(), "order-1").Return(nil, errors.New("db error"))

	records, err := service.History(context.Background(), "order-1")
	assert.Error(t, err)
	assert.Nil(t, records)
}
