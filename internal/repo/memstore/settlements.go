package memstore

import (
	"context"

	"github.com/ztyaba/Uganda-Food-Delivery/internal/domain"
)

type SettlementRepo struct {
	store *Store
}

func (s *Store) Settlements() *SettlementRepo {
	return &SettlementRepo{store: s}
}

func (r *SettlementRepo) Create(ctx context.Context, record *domain.SettlementRecord) error {
	unlock := r.store.lock(ctx)
	defer unlock()
	r.store.settlements = append(r.store.settlements, *record)
	return nil
}

func (r *SettlementRepo) FindPayoutByOrder(ctx context.Context, orderID string) (*domain.SettlementRecord, error) {
	unlock := r.store.lock(ctx)
	defer unlock()
	for i := range r.store.settlements {
		record := r.store.settlements[i]
		if record.OrderID == orderID && record.Kind == domain.PayoutKind {
			return &record, nil
		}
	}
	return nil, nil
}

func (r *SettlementRepo) ListByOrder(ctx context.Context, orderID string) ([]domain.SettlementRecord, error) {
	unlock := r.store.lock(ctx)
	defer unlock()
	var records []domain.SettlementRecord
	for _, record := range r.store.settlements {
		if record.OrderID == orderID {
			records = append(records, record)
		}
	}
	return records, nil
}
