package domain

import "time"

// OrderStatus is the delivery lifecycle state of an order. Transitions move
// strictly forward; CancelledStatus branches off ReceivedStatus only.
type OrderStatus string

const (
	ReceivedStatus       OrderStatus = "received"
	PreparingStatus      OrderStatus = "preparing"
	ReadyForPickupStatus OrderStatus = "ready_for_pickup"
	OnTheWayStatus       OrderStatus = "on_the_way"
	DeliveredStatus      OrderStatus = "delivered"
	CancelledStatus      OrderStatus = "cancelled"
)

// Rank returns the position of the status on the forward lifecycle path.
// CancelledStatus has no rank, it is a terminal branch.
func (s OrderStatus) Rank() int {
	switch s {
	case ReceivedStatus:
		return 0
	case PreparingStatus:
		return 1
	case ReadyForPickupStatus:
		return 2
	case OnTheWayStatus:
		return 3
	case DeliveredStatus:
		return 4
	}
	return -1
}

// Next reports the only status reachable from s on the forward path.
func (s OrderStatus) Next() (OrderStatus, bool) {
	switch s {
	case ReceivedStatus:
		return PreparingStatus, true
	case PreparingStatus:
		return ReadyForPickupStatus, true
	case ReadyForPickupStatus:
		return OnTheWayStatus, true
	case OnTheWayStatus:
		return DeliveredStatus, true
	}
	return "", false
}

type Role string

const (
	CustomerRole Role = "customer"
	VendorRole   Role = "vendor"
	DriverRole   Role = "driver"
)

// OwnerType identifies whose money a wallet holds. EscrowOwner is the single
// platform wallet carrying captured driver shares until delivery.
type OwnerType string

const (
	CustomerOwner OwnerType = "customer"
	VendorOwner   OwnerType = "vendor"
	DriverOwner   OwnerType = "driver"
	EscrowOwner   OwnerType = "escrow"
)

// PlatformEscrowID is the fixed owner id of the escrow wallet.
const PlatformEscrowID = "platform"

type User struct {
	ID           string    `db:"id"`
	Role         Role      `db:"role"`
	Email        string    `db:"email"`
	FullName     string    `db:"full_name"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

type MenuItem struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Price int64  `json:"price" db:"price"`
}

type Restaurant struct {
	ID       string     `db:"id"`
	VendorID string     `db:"vendor_id"`
	Name     string     `db:"name"`
	Cuisine  string     `db:"cuisine"`
	Address  string     `db:"address"`
	Menu     []MenuItem `db:"-"`
}

// LineItem is an ordered menu entry, immutable once the order is created.
// Amounts are integer minor currency units.
type LineItem struct {
	MenuItemID string `json:"menuItemId"`
	Name       string `json:"name"`
	UnitPrice  int64  `json:"unitPrice"`
	Quantity   int    `json:"quantity"`
	Subtotal   int64  `json:"subtotal"`
}

// StatusChange is one append-only entry of an order's status history.
type StatusChange struct {
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Note      string      `json:"note,omitempty"`
}

type Order struct {
	ID              string         `db:"id"`
	CustomerID      string         `db:"customer_id"`
	RestaurantID    string         `db:"restaurant_id"`
	RestaurantName  string         `db:"restaurant_name"`
	VendorID        string         `db:"vendor_id"`
	Items           []LineItem     `db:"items"`
	Total           int64          `db:"total"`
	DriverShare     int64          `db:"driver_share"`
	VendorShare     int64          `db:"vendor_share"`
	DriverPayout    int64          `db:"driver_payout"`
	AssignedDriver  string         `db:"assigned_driver"`
	DeliveryAddress string         `db:"delivery_address"`
	PaymentMethod   string         `db:"payment_method"`
	Note            string         `db:"note"`
	Status          OrderStatus    `db:"status"`
	StatusHistory   []StatusChange `db:"status_history"`
	IsPaid          bool           `db:"is_paid"`
	CreatedAt       time.Time      `db:"created_at"`
	ConfirmedAt     *time.Time     `db:"confirmed_at"`
	PickedUpAt      *time.Time     `db:"picked_up_at"`
	DeliveredAt     *time.Time     `db:"delivered_at"`
	PaidAt          *time.Time     `db:"paid_at"`
	PayoutDueAt     *time.Time     `db:"payout_due_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

// Wallet balances are integer minor currency units and never negative.
// Pending holds escrowed funds not yet available for withdrawal.
type Wallet struct {
	ID        string    `db:"id"`
	OwnerType OwnerType `db:"owner_type"`
	OwnerID   string    `db:"owner_id"`
	Balance   int64     `db:"balance"`
	Pending   int64     `db:"pending"`
	Currency  string    `db:"currency"`
}

// SettlementKind names a ledger movement tied to an order-lifecycle event.
type SettlementKind string

const (
	CaptureKind        SettlementKind = "capture"
	EscrowToVendorKind SettlementKind = "escrow-release-to-vendor"
	EscrowToDriverKind SettlementKind = "escrow-release-to-driver"
	PayoutKind         SettlementKind = "payout"
	WithdrawalKind     SettlementKind = "withdrawal-request"
	RefundKind         SettlementKind = "refund"
)

// PayoutMode records whether a driver payout was triggered by the vendor or
// by the auto-pay fallback.
type PayoutMode string

const (
	ManualPayout PayoutMode = "manual"
	AutoPayout   PayoutMode = "auto"
)

// SettlementRecord is an append-only ledger event. A payout record existing
// for an order is the proof the driver was already paid.
type SettlementRecord struct {
	ID           string         `db:"id"`
	OrderID      string         `db:"order_id"`
	Kind         SettlementKind `db:"kind"`
	Amount       int64          `db:"amount"`
	DebitWallet  string         `db:"debit_wallet"`
	CreditWallet string         `db:"credit_wallet"`
	Actor        string         `db:"actor"`
	Mode         PayoutMode     `db:"mode"`
	CreatedAt    time.Time      `db:"created_at"`
}
