package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/ztyaba/Uganda-Food-Delivery/internal/domain"
)

type OrderRepo struct {
	store *Store
}

func (s *Store) Orders() *OrderRepo {
	return &OrderRepo{store: s}
}

func (r *OrderRepo) Create(ctx context.Context, order *domain.Order) error {
	unlock := r.store.lock(ctx)
	defer unlock()
	r.store.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *OrderRepo) FindByID(ctx context.Context, orderID string) (*domain.Order, error) {
	unlock := r.store.lock(ctx)
	defer unlock()
	order, ok := r.store.orders[orderID]
	if !ok {
		return nil, nil
	}
	return cloneOrder(order), nil
}

// LockByID behaves like FindByID: inside a transaction the store lock is
// already the exclusive lock on every row.
func (r *OrderRepo) LockByID(ctx context.Context, orderID string) (*domain.Order, error) {
	return r.FindByID(ctx, orderID)
}

func (r *OrderRepo) Update(ctx context.Context, order *domain.Order) error {
	unlock := r.store.lock(ctx)
	defer unlock()
	if _, ok := r.store.orders[order.ID]; !ok {
		return domain.ErrOrderNotFound
	}
	r.store.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *OrderRepo) AssignDriver(ctx context.Context, orderID, driverID string, fromStatus, toStatus domain.OrderStatus, change domain.StatusChange) (bool, error) {
	unlock := r.store.lock(ctx)
	defer unlock()
	order, ok := r.store.orders[orderID]
	if !ok || order.Status != fromStatus || order.AssignedDriver != "" {
		return false, nil
	}
	order.AssignedDriver = driverID
	order.Status = toStatus
	order.StatusHistory = append(order.StatusHistory, change)
	order.UpdatedAt = change.Timestamp
	return true, nil
}

func (r *OrderRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	return r.list(ctx, func(o *domain.Order) bool { return o.CustomerID == customerID }, newestFirst)
}

func (r *OrderRepo) ListByVendor(ctx context.Context, vendorID string) ([]domain.Order, error) {
	return r.list(ctx, func(o *domain.Order) bool { return o.VendorID == vendorID }, newestFirst)
}

func (r *OrderRepo) ListByDriver(ctx context.Context, driverID string) ([]domain.Order, error) {
	return r.list(ctx, func(o *domain.Order) bool { return o.AssignedDriver == driverID }, newestFirst)
}

func (r *OrderRepo) ListAvailable(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, func(o *domain.Order) bool {
		return o.Status == domain.PreparingStatus && o.AssignedDriver == ""
	}, oldestFirst)
}

func (r *OrderRepo) ListOverduePayouts(ctx context.Context, now time.Time, limit int) ([]domain.Order, error) {
	orders, err := r.list(ctx, func(o *domain.Order) bool {
		return o.Status == domain.DeliveredStatus && !o.IsPaid &&
			o.PayoutDueAt != nil && !o.PayoutDueAt.After(now)
	}, oldestFirst)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

const (
	newestFirst = iota
	oldestFirst
)

func (r *OrderRepo) list(ctx context.Context, keep func(*domain.Order) bool, dir int) ([]domain.Order, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	var orders []domain.Order
	for _, order := range r.store.orders {
		if keep(order) {
			orders = append(orders, *cloneOrder(order))
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if dir == oldestFirst {
			return orders[i].CreatedAt.Before(orders[j].CreatedAt)
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}
