package orderservice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ztyaba/Uganda-Food-Delivery/internal/domain"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/service/settlementservice"
)

//go:generate mockgen -source=orderservice.go -destination=mocks.go -package=orderservice

type Repo interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, orderID string) (*domain.Order, error)
	LockByID(ctx context.Context, orderID string) (*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
	AssignDriver(ctx context.Context, orderID, driverID string, fromStatus, toStatus domain.OrderStatus, change domain.StatusChange) (bool, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	ListByVendor(ctx context.Context, vendorID string) ([]domain.Order, error)
	ListByDriver(ctx context.Context, driverID string) ([]domain.Order, error)
	ListAvailable(ctx context.Context) ([]domain.Order, error)
	ListOverduePayouts(ctx context.Context, now time.Time, limit int) ([]domain.Order, error)
}

type RestaurantRepo interface {
	FindByID(ctx context.Context, restaurantID string) (*domain.Restaurant, error)
}

// Settlement is the money side of each transition. Calls made inside an open
// transaction join it, so the order mutation and the ledger change land (or
// roll back) together.
type Settlement interface {
	CaptureOrderPayment(ctx context.Context, orderID, customerID, vendorID string, total int64) (*settlementservice.Shares, error)
	ReleaseEscrow(ctx context.Context, order *domain.Order) error
	PayDriverPayout(ctx context.Context, orderID, vendorID, driverID string, amount int64, mode domain.PayoutMode, actor string) (*domain.SettlementRecord, error)
	RefundCapture(ctx context.Context, order *domain.Order, actor string) error
	SplitTotal(total int64) settlementservice.Shares
}

// Scheduler arms the auto-pay fallback for a delivered order. Arm replaces
// any live timer for the order and returns the due time shown to the vendor.
type Scheduler interface {
	Arm(orderID string, delay time.Duration, fire func()) time.Time
	Cancel(orderID string)
}

// Bus receives the domain events each successful transition produces.
// Publishing never blocks the transition.
type Bus interface {
	Publish(events ...domain.Event)
}

type TXManager interface {
	Begin(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	repo        Repo
	restaurants RestaurantRepo
	settlement  Settlement
	scheduler   Scheduler
	bus         Bus
	tx          TXManager

	autoPayDelay time.Duration
}

func New(repo Repo, restaurants RestaurantRepo, settlement Settlement, scheduler Scheduler, bus Bus, tx TXManager, autoPayDelay time.Duration) *Service {
	return &Service{
		repo:         repo,
		restaurants:  restaurants,
		settlement:   settlement,
		scheduler:    scheduler,
		bus:          bus,
		tx:           tx,
		autoPayDelay: autoPayDelay,
	}
}

// CartItem is one requested line of a new order before menu resolution.
type CartItem struct {
	MenuItemID string
	Quantity   int
}

// PlaceInput carries everything the customer supplies at placement.
type PlaceInput struct {
	RestaurantID    string
	Items           []CartItem
	DeliveryAddress string
	PaymentMethod   string
	Note            string
}

// PlaceOrder resolves the cart against the restaurant menu, captures the
// full total from the customer wallet and creates the order in `received`.
// Order creation and payment capture commit as one unit.
func (s *Service) PlaceOrder(ctx context.Context, customerID string, input PlaceInput) (*domain.Order, *settlementservice.Shares, error) {
	if len(input.Items) == 0 {
		return nil, nil, domain.ErrEmptyOrder
	}

	restaurant, err := s.restaurants.FindByID(ctx, input.RestaurantID)
	if err != nil {
		return nil, nil, err
	}
	if restaurant == nil {
		return nil, nil, domain.ErrRestaurantNotFound
	}

	menu := make(map[string]domain.MenuItem, len(restaurant.Menu))
	for _, item := range restaurant.Menu {
		menu[item.ID] = item
	}

	var (
		items []domain.LineItem
		total int64
	)
	for _, cart := range input.Items {
		menuItem, ok := menu[cart.MenuItemID]
		if !ok {
			return nil, nil, domain.ErrInvalidLineItem
		}
		quantity := cart.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		subtotal := menuItem.Price * int64(quantity)
		items = append(items, domain.LineItem{
			MenuItemID: menuItem.ID,
			Name:       menuItem.Name,
			UnitPrice:  menuItem.Price,
			Quantity:   quantity,
			Subtotal:   subtotal,
		})
		total += subtotal
	}

	now := time.Now()
	shares := s.settlement.SplitTotal(total)
	order := &domain.Order{
		ID:              "order_" + uuid.NewString(),
		CustomerID:      customerID,
		RestaurantID:    restaurant.ID,
		RestaurantName:  restaurant.Name,
		VendorID:        restaurant.VendorID,
		Items:           items,
		Total:           total,
		DriverShare:     shares.DriverShare,
		VendorShare:     shares.VendorShare,
		DeliveryAddress: orDefault(input.DeliveryAddress, "Customer address on file"),
		PaymentMethod:   orDefault(input.PaymentMethod, "wallet"),
		Note:            input.Note,
		Status:          domain.ReceivedStatus,
		StatusHistory:   []domain.StatusChange{{Status: domain.ReceivedStatus, Timestamp: now}},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var captured *settlementservice.Shares
	err = s.tx.Begin(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, order); err != nil {
			return err
		}
		captured, err = s.settlement.CaptureOrderPayment(ctx, order.ID, customerID, order.VendorID, total)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	zap.L().Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("customer_id", customerID),
		zap.Int64("total", total))

	s.bus.Publish(
		domain.Event{Channel: domain.UserChannel(order.VendorID), Name: domain.EventOrderNew, Payload: orderPayload(order)},
		domain.Event{Channel: domain.UserChannel(customerID), Name: domain.EventOrderUpdated, Payload: orderPayload(order)},
	)
	return order, captured, nil
}

// ConfirmOrder is the vendor accepting the order and pricing the delivery:
// received -> preparing. The driver payout set here is immutable afterwards.
func (s *Service) ConfirmOrder(ctx context.Context, vendorID, orderID string, driverPayout int64) (*domain.Order, error) {
	var order *domain.Order
	err := s.tx.Begin(ctx, func(ctx context.Context) error {
		locked, err := s.repo.LockByID(ctx, orderID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrOrderNotFound
		}
		if locked.VendorID != vendorID {
			return domain.ErrNotVendor
		}
		if locked.Status != domain.ReceivedStatus {
			return domain.ErrAlreadyConfirmed
		}
		if driverPayout <= 0 {
			return domain.ErrInvalidPayout
		}

		now := time.Now()
		locked.DriverPayout = driverPayout
		locked.ConfirmedAt = &now
		advance(locked, domain.PreparingStatus, now, "")

		if err := s.repo.Update(ctx, locked); err != nil {
			return err
		}
		order = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("order confirmed",
		zap.String("order_id", orderID),
		zap.Int64("driver_payout", driverPayout))

	events := updateEvents(order)
	events = append(events,
		domain.Event{Channel: domain.RoleChannel(domain.DriverRole), Name: domain.EventOrderAvailable, Payload: orderPayload(order)},
		progressEvent(order),
	)
	s.bus.Publish(events...)
	return order, nil
}

// AcceptOrder claims a confirmed order for a driver. Assignment is a
// compare-and-swap on the order row, so of two racing drivers exactly one
// wins and the other gets ErrOrderAlreadyTaken.
func (s *Service) AcceptOrder(ctx context.Context, driverID, orderID string) (*domain.Order, error) {
	change := domain.StatusChange{Status: domain.ReadyForPickupStatus, Timestamp: time.Now()}
	ok, err := s.repo.AssignDriver(ctx, orderID, driverID, domain.PreparingStatus, domain.ReadyForPickupStatus, change)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Re-read to tell the caller why the swap failed.
		order, err := s.repo.FindByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		switch {
		case order == nil:
			return nil, domain.ErrOrderNotFound
		case order.AssignedDriver != "":
			return nil, domain.ErrOrderAlreadyTaken
		default:
			return nil, domain.ErrInvalidTransition
		}
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	zap.L().Info("order accepted by driver",
		zap.String("order_id", orderID),
		zap.String("driver_id", driverID))

	events := updateEvents(order)
	events = append(events,
		domain.Event{Channel: domain.RoleChannel(domain.DriverRole), Name: domain.EventOrderTaken,
			Payload: map[string]any{"orderId": order.ID, "driverId": driverID}},
		domain.Event{Channel: domain.UserChannel(order.VendorID), Name: domain.EventDriverAccepted,
			Payload: map[string]any{"orderId": order.ID, "driverId": driverID, "driverPayout": order.DriverPayout}},
		progressEvent(order),
	)
	s.bus.Publish(events...)
	return order, nil
}

// MarkPickedUp moves the order onto the road: ready_for_pickup -> on_the_way.
func (s *Service) MarkPickedUp(ctx context.Context, driverID, orderID string) (*domain.Order, error) {
	var order *domain.Order
	err := s.tx.Begin(ctx, func(ctx context.Context) error {
		locked, err := s.repo.LockByID(ctx, orderID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrOrderNotFound
		}
		if locked.AssignedDriver != driverID {
			return domain.ErrNotAssignedDriver
		}
		if locked.Status != domain.ReadyForPickupStatus {
			return domain.ErrInvalidTransition
		}

		now := time.Now()
		locked.PickedUpAt = &now
		advance(locked, domain.OnTheWayStatus, now, "")

		if err := s.repo.Update(ctx, locked); err != nil {
			return err
		}
		order = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	events := updateEvents(order)
	events = append(events,
		domain.Event{Channel: domain.UserChannel(order.VendorID), Name: domain.EventOrderPickedUp,
			Payload: map[string]any{"orderId": order.ID, "driverId": driverID}},
		progressEvent(order),
	)
	s.bus.Publish(events...)
	return order, nil
}

// MarkDelivered completes the delivery: on_the_way -> delivered. The escrow
// held since capture is released to the vendor and the auto-pay timer is
// armed so the driver gets paid even if the vendor never acts.
func (s *Service) MarkDelivered(ctx context.Context, driverID, orderID string) (*domain.Order, error) {
	dueAt := s.scheduler.Arm(orderID, s.autoPayDelay, func() {
		if err := s.AutoPay(context.Background(), orderID); err != nil {
			zap.L().Error("auto payout failed",
				zap.String("order_id", orderID), zap.Error(err))
		}
	})

	var order *domain.Order
	err := s.tx.Begin(ctx, func(ctx context.Context) error {
		locked, err := s.repo.LockByID(ctx, orderID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrOrderNotFound
		}
		if locked.AssignedDriver != driverID {
			return domain.ErrNotAssignedDriver
		}
		if locked.Status != domain.OnTheWayStatus {
			return domain.ErrInvalidTransition
		}

		now := time.Now()
		locked.DeliveredAt = &now
		locked.PayoutDueAt = &dueAt
		advance(locked, domain.DeliveredStatus, now, "")

		if err := s.settlement.ReleaseEscrow(ctx, locked); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, locked); err != nil {
			return err
		}
		order = locked
		return nil
	})
	if err != nil {
		// The timer armed above must not fire for a transition that never
		// happened.
		s.scheduler.Cancel(orderID)
		return nil, err
	}

	zap.L().Info("order delivered",
		zap.String("order_id", orderID),
		zap.Time("payout_due_at", dueAt))

	events := updateEvents(order)
	events = append(events,
		domain.Event{Channel: domain.UserChannel(order.VendorID), Name: domain.EventOrderDelivered,
			Payload: map[string]any{"orderId": order.ID, "payoutDueAt": dueAt, "driverPayout": order.DriverPayout}},
		progressEvent(order),
	)
	s.bus.Publish(events...)
	return order, nil
}

// PayDriver is the vendor's manual payout. It cancels the auto-pay timer;
// should the timer fire anyway, the settlement engine's per-order
// idempotency keeps the driver from being paid twice.
func (s *Service) PayDriver(ctx context.Context, vendorID, orderID string) (*domain.Order, error) {
	var (
		order  *domain.Order
		record *domain.SettlementRecord
	)
	err := s.tx.Begin(ctx, func(ctx context.Context) error {
		locked, err := s.repo.LockByID(ctx, orderID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrOrderNotFound
		}
		if locked.VendorID != vendorID {
			return domain.ErrNotVendor
		}
		if locked.Status != domain.DeliveredStatus {
			return domain.ErrInvalidTransition
		}
		if locked.IsPaid {
			return domain.ErrAlreadyPaid
		}
		if locked.DriverPayout <= 0 || locked.AssignedDriver == "" {
			return domain.ErrNoPayoutConfigured
		}

		record, err = s.settlement.PayDriverPayout(ctx, locked.ID, locked.VendorID, locked.AssignedDriver,
			locked.DriverPayout, domain.ManualPayout, vendorID)
		if err != nil {
			return err
		}

		markPaid(locked, time.Now())
		if err := s.repo.Update(ctx, locked); err != nil {
			return err
		}
		order = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.scheduler.Cancel(orderID)

	zap.L().Info("driver paid manually",
		zap.String("order_id", orderID),
		zap.Int64("amount", record.Amount))

	events := updateEvents(order)
	events = append(events, payoutEvents(order, domain.ManualPayout)...)
	s.bus.Publish(events...)
	return order, nil
}

// AutoPay is the timer/sweep path of the payout. A missing, already paid,
// regressed or unconfigured order is a legitimate race with the manual flow
// and is silently skipped.
func (s *Service) AutoPay(ctx context.Context, orderID string) error {
	var order *domain.Order
	err := s.tx.Begin(ctx, func(ctx context.Context) error {
		locked, err := s.repo.LockByID(ctx, orderID)
		if err != nil {
			return err
		}
		if locked == nil || locked.IsPaid || locked.Status != domain.DeliveredStatus {
			return nil
		}
		if locked.DriverPayout <= 0 || locked.AssignedDriver == "" {
			return nil
		}

		if _, err := s.settlement.PayDriverPayout(ctx, locked.ID, locked.VendorID, locked.AssignedDriver,
			locked.DriverPayout, domain.AutoPayout, "autopay"); err != nil {
			return err
		}

		markPaid(locked, time.Now())
		if err := s.repo.Update(ctx, locked); err != nil {
			return err
		}
		order = locked
		return nil
	})
	if err != nil {
		return err
	}
	if order == nil {
		return nil
	}

	zap.L().Info("driver paid automatically", zap.String("order_id", orderID))

	events := updateEvents(order)
	events = append(events,
		domain.Event{Channel: domain.UserChannel(order.AssignedDriver), Name: domain.EventPayoutDone,
			Payload: payoutPayload(order, domain.AutoPayout)},
		domain.Event{Channel: domain.UserChannel(order.VendorID), Name: domain.EventPayoutAuto,
			Payload: map[string]any{"orderId": order.ID, "amount": order.DriverPayout}},
	)
	s.bus.Publish(events...)
	return nil
}

// CancelOrder lets the customer back out before the vendor confirms:
// received -> cancelled, with the captured payment fully refunded.
func (s *Service) CancelOrder(ctx context.Context, customerID, orderID string) (*domain.Order, error) {
	var order *domain.Order
	err := s.tx.Begin(ctx, func(ctx context.Context) error {
		locked, err := s.repo.LockByID(ctx, orderID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrOrderNotFound
		}
		if locked.CustomerID != customerID {
			return domain.ErrNotCustomer
		}
		if locked.Status != domain.ReceivedStatus {
			return domain.ErrInvalidTransition
		}

		if err := s.settlement.RefundCapture(ctx, locked, customerID); err != nil {
			return err
		}

		now := time.Now()
		advance(locked, domain.CancelledStatus, now, "cancelled by customer")
		if err := s.repo.Update(ctx, locked); err != nil {
			return err
		}
		order = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("order cancelled", zap.String("order_id", orderID))

	events := updateEvents(order)
	events = append(events,
		domain.Event{Channel: domain.UserChannel(order.VendorID), Name: domain.EventOrderCancelled,
			Payload: map[string]any{"orderId": order.ID}},
	)
	s.bus.Publish(events...)
	return order, nil
}

// SweepOverduePayouts pays every delivered order whose due time passed
// without either payout path running, e.g. because the process restarted and
// lost its timers. Failures are logged per order and do not stop the sweep.
func (s *Service) SweepOverduePayouts(ctx context.Context, limit int) error {
	orders, err := s.repo.ListOverduePayouts(ctx, time.Now(), limit)
	if err != nil {
		return err
	}

	g := new(errgroup.Group)
	g.SetLimit(4)
	for _, order := range orders {
		orderID := order.ID
		g.Go(func() error {
			if err := s.AutoPay(ctx, orderID); err != nil {
				zap.L().Error("sweep payout failed",
					zap.String("order_id", orderID), zap.Error(err))
			}
			return nil
		})
	}
	return g.Wait()
}

// GetForUser loads one order, visible only to its customer, vendor or
// assigned driver.
func (s *Service) GetForUser(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	if order.CustomerID != userID && order.VendorID != userID && order.AssignedDriver != userID {
		return nil, domain.ErrForbidden
	}
	return order, nil
}

func (s *Service) ListForCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

func (s *Service) ListForVendor(ctx context.Context, vendorID string) ([]domain.Order, error) {
	return s.repo.ListByVendor(ctx, vendorID)
}

func (s *Service) ListForDriver(ctx context.Context, driverID string) ([]domain.Order, error) {
	return s.repo.ListByDriver(ctx, driverID)
}

// ListAvailable is the pool of confirmed, unclaimed orders drivers pick from.
func (s *Service) ListAvailable(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListAvailable(ctx)
}

func advance(order *domain.Order, status domain.OrderStatus, at time.Time, note string) {
	order.Status = status
	order.StatusHistory = append(order.StatusHistory, domain.StatusChange{
		Status:    status,
		Timestamp: at,
		Note:      note,
	})
	order.UpdatedAt = at
}

func markPaid(order *domain.Order, at time.Time) {
	order.IsPaid = true
	order.PaidAt = &at
	order.PayoutDueAt = nil
	order.UpdatedAt = at
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func orderPayload(order *domain.Order) map[string]any {
	return map[string]any{"order": order}
}

// updateEvents addresses order:updated to every party on the order.
func updateEvents(order *domain.Order) []domain.Event {
	events := []domain.Event{
		{Channel: domain.UserChannel(order.CustomerID), Name: domain.EventOrderUpdated, Payload: orderPayload(order)},
		{Channel: domain.UserChannel(order.VendorID), Name: domain.EventOrderUpdated, Payload: orderPayload(order)},
	}
	if order.AssignedDriver != "" {
		events = append(events, domain.Event{
			Channel: domain.UserChannel(order.AssignedDriver), Name: domain.EventOrderUpdated, Payload: orderPayload(order),
		})
	}
	return events
}

func progressEvent(order *domain.Order) domain.Event {
	return domain.Event{
		Channel: domain.UserChannel(order.CustomerID),
		Name:    domain.EventOrderProgress,
		Payload: map[string]any{"orderId": order.ID, "status": order.Status},
	}
}

func payoutPayload(order *domain.Order, mode domain.PayoutMode) map[string]any {
	return map[string]any{"orderId": order.ID, "amount": order.DriverPayout, "mode": mode}
}

func payoutEvents(order *domain.Order, mode domain.PayoutMode) []domain.Event {
	return []domain.Event{
		{Channel: domain.UserChannel(order.AssignedDriver), Name: domain.EventPayoutDone, Payload: payoutPayload(order, mode)},
		{Channel: domain.UserChannel(order.VendorID), Name: domain.EventPayoutDone, Payload: payoutPayload(order, mode)},
	}
}
