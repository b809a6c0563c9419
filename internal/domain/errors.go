package domain

import "errors"

var (
	// * Validation errors.
	ErrEmptyOrder      = errors.New("order must contain at least one item")
	ErrInvalidLineItem = errors.New("menu item not found")
	ErrInvalidPayout   = errors.New("driver payout must be greater than zero")
	ErrInvalidAmount   = errors.New("amount must be greater than zero")

	// * Authorization errors.
	ErrNotVendor         = errors.New("caller is not the order's vendor")
	ErrNotCustomer       = errors.New("caller is not the order's customer")
	ErrNotAssignedDriver = errors.New("driver is not assigned to this order")
	ErrForbidden         = errors.New("caller is not allowed to perform this action")

	// * Conflict errors. Expected under concurrency, callers should refresh.
	ErrOrderAlreadyTaken  = errors.New("order already taken by another driver")
	ErrAlreadyConfirmed   = errors.New("order already confirmed")
	ErrAlreadyPaid        = errors.New("driver already paid for this order")
	ErrInvalidTransition  = errors.New("order status does not allow this transition")
	ErrNoPayoutConfigured = errors.New("no driver payout configured for this order")

	// * Resource errors.
	ErrInsufficientFunds = errors.New("insufficient wallet balance")

	// * Not-found errors.
	ErrOrderNotFound      = errors.New("order not found")
	ErrWalletNotFound     = errors.New("wallet not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrRestaurantNotFound = errors.New("restaurant not found")
)
