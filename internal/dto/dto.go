package dto

import (
	"time"

	"github.com/ztyaba/Uganda-Food-Delivery/internal/domain"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	FullName string `json:"fullName" validate:"required,min=2,max=120"`
	Role     string `json:"role" validate:"required,oneof=customer vendor driver"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

type UserView struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

type CartItemRequest struct {
	MenuItemID string `json:"menuItemId" validate:"required"`
	Quantity   int    `json:"quantity" validate:"omitempty,min=1,max=50"`
}

type PlaceOrderRequest struct {
	RestaurantID    string            `json:"restaurantId" validate:"required"`
	Items           []CartItemRequest `json:"items" validate:"required,min=1,dive"`
	DeliveryAddress string            `json:"deliveryAddress" validate:"omitempty,max=300"`
	PaymentMethod   string            `json:"paymentMethod" validate:"omitempty,max=60"`
	Note            string            `json:"note" validate:"omitempty,max=500"`
}

type ConfirmOrderRequest struct {
	DriverPayout int64 `json:"driverPayout" validate:"required,gt=0"`
}

type WithdrawRequest struct {
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	Destination string `json:"destination" validate:"omitempty,max=120"`
}

type CreateRestaurantRequest struct {
	Name    string            `json:"name" validate:"required,min=2,max=120"`
	Cuisine string            `json:"cuisine" validate:"omitempty,max=60"`
	Address string            `json:"address" validate:"omitempty,max=300"`
	Menu    []MenuItemRequest `json:"menu" validate:"omitempty,dive"`
}

type MenuItemRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=120"`
	Price int64  `json:"price" validate:"required,gt=0"`
}

type MenuItemView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

type RestaurantView struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Cuisine string         `json:"cuisine,omitempty"`
	Address string         `json:"address,omitempty"`
	Menu    []MenuItemView `json:"menu"`
}

type StatusChangeView struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note,omitempty"`
}

type OrderView struct {
	ID              string             `json:"id"`
	CustomerID      string             `json:"customerId"`
	RestaurantID    string             `json:"restaurantId"`
	RestaurantName  string             `json:"restaurantName"`
	Items           []domain.LineItem  `json:"items"`
	Total           int64              `json:"total"`
	DriverPayout    int64              `json:"driverPayout,omitempty"`
	AssignedDriver  string             `json:"assignedDriver,omitempty"`
	DeliveryAddress string             `json:"deliveryAddress"`
	PaymentMethod   string             `json:"paymentMethod"`
	Note            string             `json:"note,omitempty"`
	Status          string             `json:"status"`
	StatusHistory   []StatusChangeView `json:"statusHistory"`
	IsPaid          bool               `json:"isPaid"`
	CreatedAt       time.Time          `json:"createdAt"`
	DeliveredAt     *time.Time         `json:"deliveredAt,omitempty"`
	PaidAt          *time.Time         `json:"paidAt,omitempty"`
	PayoutDueAt     *time.Time         `json:"payoutDueAt,omitempty"`
}

type WalletView struct {
	Owner    string `json:"owner,omitempty"`
	Balance  int64  `json:"balance"`
	Pending  int64  `json:"pending"`
	Currency string `json:"currency"`
}

type VendorDashboardView struct {
	TotalOrders   int        `json:"totalOrders"`
	PendingOrders int        `json:"pendingOrders"`
	TodayRevenue  int64      `json:"todayRevenue"`
	Wallet        WalletView `json:"wallet"`
}

type DriverDashboardView struct {
	AvailableOrders  int         `json:"availableOrders"`
	ActiveDeliveries []OrderView `json:"activeDeliveries"`
	Wallet           WalletView  `json:"wallet"`
}

type SettlementView struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"orderId"`
	Kind      string    `json:"kind"`
	Amount    int64     `json:"amount"`
	Actor     string    `json:"actor,omitempty"`
	Mode      string    `json:"mode,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewOrderView(order *domain.Order) OrderView {
	history := make([]StatusChangeView, 0, len(order.StatusHistory))
	for _, change := range order.StatusHistory {
		history = append(history, StatusChangeView{
			Status:    string(change.Status),
			Timestamp: change.Timestamp,
			Note:      change.Note,
		})
	}
	return OrderView{
		ID:              order.ID,
		CustomerID:      order.CustomerID,
		RestaurantID:    order.RestaurantID,
		RestaurantName:  order.RestaurantName,
		Items:           order.Items,
		Total:           order.Total,
		DriverPayout:    order.DriverPayout,
		AssignedDriver:  order.AssignedDriver,
		DeliveryAddress: order.DeliveryAddress,
		PaymentMethod:   order.PaymentMethod,
		Note:            order.Note,
		Status:          string(order.Status),
		StatusHistory:   history,
		IsPaid:          order.IsPaid,
		CreatedAt:       order.CreatedAt,
		DeliveredAt:     order.DeliveredAt,
		PaidAt:          order.PaidAt,
		PayoutDueAt:     order.PayoutDueAt,
	}
}

func NewOrderViews(orders []domain.Order) []OrderView {
	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, NewOrderView(&orders[i]))
	}
	return views
}

func NewRestaurantView(r *domain.Restaurant) RestaurantView {
	menu := make([]MenuItemView, 0, len(r.Menu))
	for _, item := range r.Menu {
		menu = append(menu, MenuItemView{ID: item.ID, Name: item.Name, Price: item.Price})
	}
	return RestaurantView{
		ID:      r.ID,
		Name:    r.Name,
		Cuisine: r.Cuisine,
		Address: r.Address,
		Menu:    menu,
	}
}

func NewWalletView(w *domain.Wallet, owner string) WalletView {
	return WalletView{Owner: owner, Balance: w.Balance, Pending: w.Pending, Currency: w.Currency}
}

func NewSettlementViews(records []domain.SettlementRecord) []SettlementView {
	views := make([]SettlementView, 0, len(records))
	for _, rec := range records {
		mode := string(rec.Mode)
		if rec.Kind != domain.PayoutKind {
			mode = ""
		}
		views = append(views, SettlementView{
			ID:        rec.ID,
			OrderID:   rec.OrderID,
			Kind:      string(rec.Kind),
			Amount:    rec.Amount,
			Actor:     rec.Actor,
			Mode:      mode,
			CreatedAt: rec.CreatedAt,
		})
	}
	return views
}

func NewUserView(u *domain.User) UserView {
	return UserView{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: string(u.Role)}
}
