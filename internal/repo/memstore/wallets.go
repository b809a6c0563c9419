package memstore

import (
	"context"

	"github.com/ztyaba/Uganda-Food-Delivery/internal/domain"
)

type WalletRepo struct {
	store *Store
}

func (s *Store) Wallets() *WalletRepo {
	return &WalletRepo{store: s}
}

func (r *WalletRepo) Create(ctx context.Context, wallet *domain.Wallet) error {
	unlock := r.store.lock(ctx)
	defer unlock()
	w := *wallet
	r.store.wallets[wallet.ID] = &w
	r.store.walletOwners[ownerKey(wallet.OwnerType, wallet.OwnerID)] = wallet.ID
	return nil
}

func (r *WalletRepo) FindForOwner(ctx context.Context, ownerType domain.OwnerType, ownerID string) (*domain.Wallet, error) {
	unlock := r.store.lock(ctx)
	defer unlock()
	id, ok := r.store.walletOwners[ownerKey(ownerType, ownerID)]
	if !ok {
		return nil, nil
	}
	w := *r.store.wallets[id]
	return &w, nil
}

func (r *WalletRepo) FindByID(ctx context.Context, walletID string) (*domain.Wallet, error) {
	unlock := r.store.lock(ctx)
	defer unlock()
	wallet, ok := r.store.wallets[walletID]
	if !ok {
		return nil, nil
	}
	w := *wallet
	return &w, nil
}

func (r *WalletRepo) LockForOwner(ctx context.Context, ownerType domain.OwnerType, ownerID string) (*domain.Wallet, error) {
	return r.FindForOwner(ctx, ownerType, ownerID)
}

func (r *WalletRepo) LockByID(ctx context.Context, walletID string) (*domain.Wallet, error) {
	return r.FindByID(ctx, walletID)
}

func (r *WalletRepo) UpdateBalances(ctx context.Context, walletID string, balance, pending int64) error {
	unlock := r.store.lock(ctx)
	defer unlock()
	wallet, ok := r.store.wallets[walletID]
	if !ok {
		return domain.ErrWalletNotFound
	}
	wallet.Balance = balance
	wallet.Pending = pending
	return nil
}
