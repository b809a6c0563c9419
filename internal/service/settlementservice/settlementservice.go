package settlementservice

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ztyaba/Uganda-Food-Delivery/internal/domain"
)

//go:generate mockgen -source=settlementservice.go -destination=mocks.go -package=settlementservice

// defaultPayoutDestination is used when a withdrawal request names no rail.
const defaultPayoutDestination = "Mobile Money"

type WalletRepo interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	FindForOwner(ctx context.Context, ownerType domain.OwnerType, ownerID string) (*domain.Wallet, error)
	FindByID(ctx context.Context, walletID string) (*domain.Wallet, error)
	LockForOwner(ctx context.Context, ownerType domain.OwnerType, ownerID string) (*domain.Wallet, error)
	LockByID(ctx context.Context, walletID string) (*domain.Wallet, error)
	UpdateBalances(ctx context.Context, walletID string, balance, pending int64) error
}

type SettlementRepo interface {
	Create(ctx context.Context, record *domain.SettlementRecord) error
	FindPayoutByOrder(ctx context.Context, orderID string) (*domain.SettlementRecord, error)
	ListByOrder(ctx context.Context, orderID string) ([]domain.SettlementRecord, error)
}

type UserRepo interface {
	FindByID(ctx context.Context, userID string) (*domain.User, error)
}

// TXManager makes a multi-wallet mutation all-or-nothing. Nested Begin calls
// join the caller's transaction, so settlement runs under the same lock as
// the order mutation that triggered it.
type TXManager interface {
	Begin(ctx context.Context, fn func(ctx context.Context) error) error
}

// Shares is how one order total splits between the vendor and the driver.
// DriverShare + VendorShare == Total always holds exactly.
type Shares struct {
	DriverShare int64 `json:"driverShare"`
	VendorShare int64 `json:"vendorShare"`
}

// Service is the settlement engine. Every public operation is atomic: either
// all wallet mutations and the ledger record land, or none do.
type Service struct {
	wallets     WalletRepo
	settlements SettlementRepo
	users       UserRepo
	tx          TXManager
	feeRate     float64
	currency    string
}

func New(wallets WalletRepo, settlements SettlementRepo, users UserRepo, tx TXManager, feeRate float64, currency string) *Service {
	return &Service{
		wallets:     wallets,
		settlements: settlements,
		users:       users,
		tx:          tx,
		feeRate:     feeRate,
		currency:    currency,
	}
}

// SplitTotal computes the driver's cut of a total with round-half-up. The
// vendor share is defined as the remainder so the two always sum to the
// total, whatever the rate.
func (s *Service) SplitTotal(total int64) Shares {
	driverShare := int64(math.Round(float64(total) * s.feeRate))
	return Shares{
		DriverShare: driverShare,
		VendorShare: total - driverShare,
	}
}

// CaptureOrderPayment collects the full order total from the customer at
// placement: the vendor share lands in the vendor's pending balance and the
// driver share is parked in the platform escrow wallet until delivery.
func (s *Service) CaptureOrderPayment(ctx context.Context, orderID, customerID, vendorID string, total int64) (*Shares, error) {
	if total <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	shares := s.SplitTotal(total)

	err := s.tx.Begin(ctx, func(ctx context.Context) error {
		customer, err := s.lockOrCreateWallet(ctx, domain.CustomerOwner, customerID)
		if err != nil {
			return err
		}
		vendor, err := s.lockOrCreateWallet(ctx, domain.VendorOwner, vendorID)
		if err != nil {
			return err
		}
		escrow, err := s.lockOrCreateWallet(ctx, domain.EscrowOwner, domain.PlatformEscrowID)
		if err != nil {
			return err
		}

		if customer.Balance < total {
			return domain.ErrInsufficientFunds
		}

		if err := s.wallets.UpdateBalances(ctx, customer.ID, customer.Balance-total, customer.Pending); err != nil {
			return err
		}
		if err := s.wallets.UpdateBalances(ctx, vendor.ID, vendor.Balance, vendor.Pending+shares.VendorShare); err != nil {
			return err
		}
		if err := s.wallets.UpdateBalances(ctx, escrow.ID, escrow.Balance, escrow.Pending+shares.DriverShare); err != nil {
			return err
		}

		return s.settlements.Create(ctx, &domain.SettlementRecord{
			ID:           uuid.NewString(),
			OrderID:      orderID,
			Kind:         domain.CaptureKind,
			Amount:       total,
			DebitWallet:  customer.ID,
			CreditWallet: vendor.ID,
			Actor:        customerID,
			CreatedAt:    time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("order payment captured",
		zap.String("order_id", orderID),
		zap.Int64("total", total),
		zap.Int64("driver_share", shares.DriverShare),
		zap.Int64("vendor_share", shares.VendorShare))
	return &shares, nil
}

// ReleaseEscrow settles a delivered order: the vendor share moves from the
// vendor's pending to its available balance, and the escrowed driver share
// is handed to the vendor, who now owes the driver the configured payout.
func (s *Service) ReleaseEscrow(ctx context.Context, order *domain.Order) error {
	return s.tx.Begin(ctx, func(ctx context.Context) error {
		vendor, err := s.lockOrCreateWallet(ctx, domain.VendorOwner, order.VendorID)
		if err != nil {
			return err
		}
		escrow, err := s.lockOrCreateWallet(ctx, domain.EscrowOwner, domain.PlatformEscrowID)
		if err != nil {
			return err
		}

		if vendor.Pending < order.VendorShare || escrow.Pending < order.DriverShare {
			return domain.ErrInsufficientFunds
		}

		balance := vendor.Balance + order.VendorShare + order.DriverShare
		pending := vendor.Pending - order.VendorShare
		if err := s.wallets.UpdateBalances(ctx, vendor.ID, balance, pending); err != nil {
			return err
		}
		if err := s.wallets.UpdateBalances(ctx, escrow.ID, escrow.Balance, escrow.Pending-order.DriverShare); err != nil {
			return err
		}

		now := time.Now()
		if err := s.settlements.Create(ctx, &domain.SettlementRecord{
			ID:           uuid.NewString(),
			OrderID:      order.ID,
			Kind:         domain.EscrowToVendorKind,
			Amount:       order.VendorShare,
			DebitWallet:  vendor.ID,
			CreditWallet: vendor.ID,
			Actor:        order.AssignedDriver,
			CreatedAt:    now,
		}); err != nil {
			return err
		}
		return s.settlements.Create(ctx, &domain.SettlementRecord{
			ID:           uuid.NewString(),
			OrderID:      order.ID,
			Kind:         domain.EscrowToDriverKind,
			Amount:       order.DriverShare,
			DebitWallet:  escrow.ID,
			CreditWallet: vendor.ID,
			Actor:        order.AssignedDriver,
			CreatedAt:    now,
		})
	})
}

// PayDriverPayout moves the configured payout from the vendor's available
// balance to the driver. Idempotent per order: when a payout record already
// exists the call is a no-op returning that record, which is what makes the
// manual/auto race safe in either order.
func (s *Service) PayDriverPayout(ctx context.Context, orderID, vendorID, driverID string, amount int64, mode domain.PayoutMode, actor string) (*domain.SettlementRecord, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidPayout
	}

	var record *domain.SettlementRecord
	err := s.tx.Begin(ctx, func(ctx context.Context) error {
		vendor, err := s.lockOrCreateWallet(ctx, domain.VendorOwner, vendorID)
		if err != nil {
			return err
		}

		existing, err := s.settlements.FindPayoutByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if existing != nil {
			zap.L().Info("payout already settled, skipping",
				zap.String("order_id", orderID), zap.String("mode", string(mode)))
			record = existing
			return nil
		}

		driver, err := s.lockOrCreateWallet(ctx, domain.DriverOwner, driverID)
		if err != nil {
			return err
		}

		if vendor.Balance < amount {
			return domain.ErrInsufficientFunds
		}

		if err := s.wallets.UpdateBalances(ctx, vendor.ID, vendor.Balance-amount, vendor.Pending); err != nil {
			return err
		}
		if err := s.wallets.UpdateBalances(ctx, driver.ID, driver.Balance+amount, driver.Pending); err != nil {
			return err
		}

		record = &domain.SettlementRecord{
			ID:           uuid.NewString(),
			OrderID:      orderID,
			Kind:         domain.PayoutKind,
			Amount:       amount,
			DebitWallet:  vendor.ID,
			CreditWallet: driver.ID,
			Actor:        actor,
			Mode:         mode,
			CreatedAt:    time.Now(),
		}
		return s.settlements.Create(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("driver payout settled",
		zap.String("order_id", orderID),
		zap.String("driver_id", driverID),
		zap.Int64("amount", amount),
		zap.String("mode", string(mode)))
	return record, nil
}

// RefundCapture reverses a capture for an order cancelled before
// confirmation: the vendor share leaves the vendor's pending, the driver
// share leaves escrow, and the customer gets the full total back.
func (s *Service) RefundCapture(ctx context.Context, order *domain.Order, actor string) error {
	return s.tx.Begin(ctx, func(ctx context.Context) error {
		customer, err := s.lockOrCreateWallet(ctx, domain.CustomerOwner, order.CustomerID)
		if err != nil {
			return err
		}
		vendor, err := s.lockOrCreateWallet(ctx, domain.VendorOwner, order.VendorID)
		if err != nil {
			return err
		}
		escrow, err := s.lockOrCreateWallet(ctx, domain.EscrowOwner, domain.PlatformEscrowID)
		if err != nil {
			return err
		}

		if vendor.Pending < order.VendorShare || escrow.Pending < order.DriverShare {
			return domain.ErrInsufficientFunds
		}

		if err := s.wallets.UpdateBalances(ctx, vendor.ID, vendor.Balance, vendor.Pending-order.VendorShare); err != nil {
			return err
		}
		if err := s.wallets.UpdateBalances(ctx, escrow.ID, escrow.Balance, escrow.Pending-order.DriverShare); err != nil {
			return err
		}
		if err := s.wallets.UpdateBalances(ctx, customer.ID, customer.Balance+order.Total, customer.Pending); err != nil {
			return err
		}

		return s.settlements.Create(ctx, &domain.SettlementRecord{
			ID:           uuid.NewString(),
			OrderID:      order.ID,
			Kind:         domain.RefundKind,
			Amount:       order.Total,
			DebitWallet:  vendor.ID,
			CreditWallet: customer.ID,
			Actor:        actor,
			CreatedAt:    time.Now(),
		})
	})
}

// RequestPayout records a withdrawal request against an external payment
// rail: the amount moves from available to pending and stays there until the
// rail confirms out of band.
func (s *Service) RequestPayout(ctx context.Context, ownerType domain.OwnerType, ownerID string, amount int64, destination string) (*domain.Wallet, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if destination == "" {
		destination = defaultPayoutDestination
	}

	var wallet *domain.Wallet
	err := s.tx.Begin(ctx, func(ctx context.Context) error {
		locked, err := s.wallets.LockForOwner(ctx, ownerType, ownerID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrWalletNotFound
		}
		if locked.Balance < amount {
			return domain.ErrInsufficientFunds
		}

		locked.Balance -= amount
		locked.Pending += amount
		if err := s.wallets.UpdateBalances(ctx, locked.ID, locked.Balance, locked.Pending); err != nil {
			return err
		}
		wallet = locked

		return s.settlements.Create(ctx, &domain.SettlementRecord{
			ID:          uuid.NewString(),
			Kind:        domain.WithdrawalKind,
			Amount:      amount,
			DebitWallet: locked.ID,
			Actor:       ownerID,
			CreatedAt:   time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("payout requested",
		zap.String("wallet_id", wallet.ID),
		zap.Int64("amount", amount),
		zap.String("destination", destination))
	return wallet, nil
}

// GetWallet returns the owner's wallet, creating an empty one on first
// reference.
func (s *Service) GetWallet(ctx context.Context, ownerType domain.OwnerType, ownerID string) (*domain.Wallet, error) {
	wallet, err := s.wallets.FindForOwner(ctx, ownerType, ownerID)
	if err != nil {
		return nil, err
	}
	if wallet != nil {
		return wallet, nil
	}

	err = s.tx.Begin(ctx, func(ctx context.Context) error {
		wallet, err = s.lockOrCreateWallet(ctx, ownerType, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return wallet, nil
}

// OwnerName resolves the wallet owner's display name for wallet views.
func (s *Service) OwnerName(ctx context.Context, ownerID string) (string, error) {
	user, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", nil
	}
	return user.FullName, nil
}

// History returns every ledger event recorded for an order.
func (s *Service) History(ctx context.Context, orderID string) ([]domain.SettlementRecord, error) {
	records, err := s.settlements.ListByOrder(ctx, orderID)
	if err != nil {
		zap.L().Error("failed to fetch settlement history", zap.Error(err))
		return nil, err
	}
	return records, nil
}

func (s *Service) lockOrCreateWallet(ctx context.Context, ownerType domain.OwnerType, ownerID string) (*domain.Wallet, error) {
	wallet, err := s.wallets.LockForOwner(ctx, ownerType, ownerID)
	if err != nil {
		return nil, err
	}
	if wallet != nil {
		return wallet, nil
	}

	wallet = &domain.Wallet{
		ID:        uuid.NewString(),
		OwnerType: ownerType,
		OwnerID:   ownerID,
		Currency:  s.currency,
	}
	if err := s.wallets.Create(ctx, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}
