package orderrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

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

const orderColumns = `id, customer_id, restaurant_id, restaurant_name, vendor_id, items, total,
		driver_share, vendor_share, driver_payout, assigned_driver, delivery_address,
		payment_method, note, status, status_history, is_paid, created_at, confirmed_at,
		picked_up_at, delivered_at, paid_at, payout_due_at, updated_at`

func (r *Repository) Create(ctx context.Context, order *domain.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	history, err := json.Marshal(order.StatusHistory)
	if err != nil {
		return fmt.Errorf("marshal status history: %w", err)
	}

	query := `
        INSERT INTO orders (` + orderColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
    `
	_, err = r.db.Exec(ctx, query,
		order.ID, order.CustomerID, order.RestaurantID, order.RestaurantName, order.VendorID,
		items, order.Total, order.DriverShare, order.VendorShare, order.DriverPayout,
		nullable(order.AssignedDriver), order.DeliveryAddress, order.PaymentMethod, order.Note,
		order.Status, history, order.IsPaid, order.CreatedAt, order.ConfirmedAt,
		order.PickedUpAt, order.DeliveredAt, order.PaidAt, order.PayoutDueAt, order.UpdatedAt,
	)
	if err != nil {
		zap.L().Error("can't save order", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, orderID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.scanOrder(r.db.QueryRow(ctx, query, orderID))
}

// LockByID reads the order under a row lock. Callers must hold an open
// transaction; the lock serializes every mutation of this order.
func (r *Repository) LockByID(ctx context.Context, orderID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	return r.scanOrder(r.db.QueryRow(ctx, query, orderID))
}

// Update writes every mutable order field. Items, total and shares are
// immutable after creation and deliberately not part of the statement.
func (r *Repository) Update(ctx context.Context, order *domain.Order) error {
	history, err := json.Marshal(order.StatusHistory)
	if err != nil {
		return fmt.Errorf("marshal status history: %w", err)
	}

	query := `
        UPDATE orders
        SET driver_payout = $1, assigned_driver = $2, status = $3, status_history = $4,
            is_paid = $5, confirmed_at = $6, picked_up_at = $7, delivered_at = $8,
            paid_at = $9, payout_due_at = $10, updated_at = $11
        WHERE id = $12
    `
	tag, err := r.db.Exec(ctx, query,
		order.DriverPayout, nullable(order.AssignedDriver), order.Status, history,
		order.IsPaid, order.ConfirmedAt, order.PickedUpAt, order.DeliveredAt,
		order.PaidAt, order.PayoutDueAt, order.UpdatedAt, order.ID,
	)
	if err != nil {
		zap.L().Error("failed to update order", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// AssignDriver is a compare-and-swap: it succeeds only while the order is
// still in fromStatus with no driver assigned, so of two racing drivers at
// most one wins.
func (r *Repository) AssignDriver(ctx context.Context, orderID, driverID string, fromStatus, toStatus domain.OrderStatus, change domain.StatusChange) (bool, error) {
	entry, err := json.Marshal([]domain.StatusChange{change})
	if err != nil {
		return false, fmt.Errorf("marshal status change: %w", err)
	}

	query := `
        UPDATE orders
        SET assigned_driver = $1, status = $2, status_history = status_history || $3::jsonb, updated_at = $4
        WHERE id = $5 AND status = $6 AND assigned_driver IS NULL
    `
	tag, err := r.db.Exec(ctx, query, driverID, toStatus, entry, change.Timestamp, orderID, fromStatus)
	if err != nil {
		zap.L().Error("failed to assign driver", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repository) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`
	return r.queryOrders(ctx, query, customerID)
}

func (r *Repository) ListByVendor(ctx context.Context, vendorID string) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE vendor_id = $1 ORDER BY created_at DESC`
	return r.queryOrders(ctx, query, vendorID)
}

func (r *Repository) ListByDriver(ctx context.Context, driverID string) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE assigned_driver = $1 ORDER BY created_at DESC`
	return r.queryOrders(ctx, query, driverID)
}

// ListAvailable returns confirmed orders no driver has claimed yet.
func (r *Repository) ListAvailable(ctx context.Context) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status = $1 AND assigned_driver IS NULL ORDER BY created_at ASC`
	return r.queryOrders(ctx, query, domain.PreparingStatus)
}

// ListOverduePayouts returns delivered, unpaid orders whose payout due time
// has passed. The sweep job re-drives these after a restart.
func (r *Repository) ListOverduePayouts(ctx context.Context, now time.Time, limit int) ([]domain.Order, error) {
	query := `
        SELECT ` + orderColumns + `
        FROM orders
        WHERE status = $1 AND NOT is_paid AND payout_due_at IS NOT NULL AND payout_due_at <= $2
        ORDER BY payout_due_at ASC
        LIMIT $3
    `
	return r.queryOrders(ctx, query, domain.DeliveredStatus, now, limit)
}

func (r *Repository) queryOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't get orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

func (r *Repository) scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		order    domain.Order
		items    []byte
		history  []byte
		assigned *string
	)
	err := row.Scan(
		&order.ID, &order.CustomerID, &order.RestaurantID, &order.RestaurantName, &order.VendorID,
		&items, &order.Total, &order.DriverShare, &order.VendorShare, &order.DriverPayout,
		&assigned, &order.DeliveryAddress, &order.PaymentMethod, &order.Note,
		&order.Status, &history, &order.IsPaid, &order.CreatedAt, &order.ConfirmedAt,
		&order.PickedUpAt, &order.DeliveredAt, &order.PaidAt, &order.PayoutDueAt, &order.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't scan order row", zap.Error(err))
		return nil, err
	}
	if assigned != nil {
		order.AssignedDriver = *assigned
	}
	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	if err := json.Unmarshal(history, &order.StatusHistory); err != nil {
		return nil, fmt.Errorf("unmarshal status history: %w", err)
	}
	return &order, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
