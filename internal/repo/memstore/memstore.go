// Package memstore is an in-memory implementation of the repository
// contracts behind a single-writer transaction lock. It backs the demo
// storage mode and the service test suites, where real interleavings matter
// more than SQL fidelity.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/ztyaba/Uganda-Food-Delivery/internal/domain"
)

type txKey struct{}

// Store owns all tables. Transactions serialize on one mutex and roll back
// by restoring a snapshot, so a failed multi-entity mutation leaves nothing
// behind, same as the SQL store.
type Store struct {
	mu sync.Mutex

	orders        map[string]*domain.Order
	wallets       map[string]*domain.Wallet
	walletOwners  map[string]string
	settlements   []domain.SettlementRecord
	users         map[string]*domain.User
	restaurants   map[string]*domain.Restaurant
}

func New() *Store {
	return &Store{
		orders:       make(map[string]*domain.Order),
		wallets:      make(map[string]*domain.Wallet),
		walletOwners: make(map[string]string),
		users:        make(map[string]*domain.User),
		restaurants:  make(map[string]*domain.Restaurant),
	}
}

// Begin runs fn under the store lock. Nested calls join the open
// transaction. On error the pre-transaction snapshot is restored.
func (s *Store) Begin(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func inTx(ctx context.Context) bool {
	held, _ := ctx.Value(txKey{}).(bool)
	return held
}

// lock acquires the store mutex unless the context already holds it via an
// open transaction. The returned func undoes only what lock did.
func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type snapshot struct {
	orders       map[string]*domain.Order
	wallets      map[string]*domain.Wallet
	walletOwners map[string]string
	settlements  []domain.SettlementRecord
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		orders:       make(map[string]*domain.Order, len(s.orders)),
		wallets:      make(map[string]*domain.Wallet, len(s.wallets)),
		walletOwners: make(map[string]string, len(s.walletOwners)),
		settlements:  append([]domain.SettlementRecord(nil), s.settlements...),
	}
	for id, order := range s.orders {
		snap.orders[id] = cloneOrder(order)
	}
	for id, wallet := range s.wallets {
		w := *wallet
		snap.wallets[id] = &w
	}
	for key, id := range s.walletOwners {
		snap.walletOwners[key] = id
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.orders = snap.orders
	s.wallets = snap.wallets
	s.walletOwners = snap.walletOwners
	s.settlements = snap.settlements
}

func ownerKey(ownerType domain.OwnerType, ownerID string) string {
	return string(ownerType) + "|" + ownerID
}

func cloneOrder(order *domain.Order) *domain.Order {
	c := *order
	c.Items = append([]domain.LineItem(nil), order.Items...)
	c.StatusHistory = append([]domain.StatusChange(nil), order.StatusHistory...)
	c.ConfirmedAt = cloneTime(order.ConfirmedAt)
	c.PickedUpAt = cloneTime(order.PickedUpAt)
	c.DeliveredAt = cloneTime(order.DeliveredAt)
	c.PaidAt = cloneTime(order.PaidAt)
	c.PayoutDueAt = cloneTime(order.PayoutDueAt)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
