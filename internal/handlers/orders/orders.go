package orders

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ztyaba/Uganda-Food-Delivery/internal/domain"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/dto"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/service/orderservice"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/service/settlementservice"
	pkgauth "github.com/ztyaba/Uganda-Food-Delivery/pkg/auth"
	"github.com/ztyaba/Uganda-Food-Delivery/pkg/utils"
	"github.com/ztyaba/Uganda-Food-Delivery/pkg/validate"
)

type Service interface {
	PlaceOrder(ctx context.Context, customerID string, input orderservice.PlaceInput) (*domain.Order, *settlementservice.Shares, error)
	ConfirmOrder(ctx context.Context, vendorID, orderID string, driverPayout int64) (*domain.Order, error)
	AcceptOrder(ctx context.Context, driverID, orderID string) (*domain.Order, error)
	MarkPickedUp(ctx context.Context, driverID, orderID string) (*domain.Order, error)
	MarkDelivered(ctx context.Context, driverID, orderID string) (*domain.Order, error)
	PayDriver(ctx context.Context, vendorID, orderID string) (*domain.Order, error)
	CancelOrder(ctx context.Context, customerID, orderID string) (*domain.Order, error)
	GetForUser(ctx context.Context, userID, orderID string) (*domain.Order, error)
	ListForCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	ListForVendor(ctx context.Context, vendorID string) ([]domain.Order, error)
	ListForDriver(ctx context.Context, driverID string) ([]domain.Order, error)
	ListAvailable(ctx context.Context) ([]domain.Order, error)
}

type OrderHandler struct {
	orderService Service
}

func New(orderService Service) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Place creates an order for the authenticated customer and charges their
// wallet for the full total.
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	input := orderservice.PlaceInput{
		RestaurantID:    req.RestaurantID,
		DeliveryAddress: req.DeliveryAddress,
		PaymentMethod:   req.PaymentMethod,
		Note:            req.Note,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, orderservice.CartItem{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
		})
	}

	customerID := pkgauth.UserIDFromContext(r.Context())
	order, _, err := h.orderService.PlaceOrder(r.Context(), customerID, input)
	if err != nil {
		respondOrderError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewOrderView(order))
}

func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := pkgauth.UserIDFromContext(ctx)

	var (
		orders []domain.Order
		err    error
	)
	switch pkgauth.RoleFromContext(ctx) {
	case domain.VendorRole:
		orders, err = h.orderService.ListForVendor(ctx, userID)
	case domain.DriverRole:
		orders, err = h.orderService.ListForDriver(ctx, userID)
	default:
		orders, err = h.orderService.ListForCustomer(ctx, userID)
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewOrderViews(orders))
}

// Track returns one order with its full status history.
func (h *OrderHandler) Track(w http.ResponseWriter, r *http.Request) {
	userID := pkgauth.UserIDFromContext(r.Context())

	order, err := h.orderService.GetForUser(r.Context(), userID, chi.URLParam(r, "orderID"))
	if err != nil {
		respondOrderError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewOrderView(order))
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	customerID := pkgauth.UserIDFromContext(r.Context())

	order, err := h.orderService.CancelOrder(r.Context(), customerID, chi.URLParam(r, "orderID"))
	if err != nil {
		respondOrderError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewOrderView(order))
}

// Confirm is the vendor accepting the order and setting the driver payout.
func (h *OrderHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req dto.ConfirmOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	vendorID := pkgauth.UserIDFromContext(r.Context())
	order, err := h.orderService.ConfirmOrder(r.Context(), vendorID, chi.URLParam(r, "orderID"), req.DriverPayout)
	if err != nil {
		respondOrderError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewOrderView(order))
}

// Pay triggers the manual driver payout for a delivered order.
func (h *OrderHandler) Pay(w http.ResponseWriter, r *http.Request) {
	vendorID := pkgauth.UserIDFromContext(r.Context())

	order, err := h.orderService.PayDriver(r.Context(), vendorID, chi.URLParam(r, "orderID"))
	if err != nil {
		respondOrderError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewOrderView(order))
}

// Available lists confirmed orders no driver has claimed yet.
func (h *OrderHandler) Available(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListAvailable(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewOrderViews(orders))
}

func (h *OrderHandler) Accept(w http.ResponseWriter, r *http.Request) {
	driverID := pkgauth.UserIDFromContext(r.Context())

	order, err := h.orderService.AcceptOrder(r.Context(), driverID, chi.URLParam(r, "orderID"))
	if err != nil {
		respondOrderError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewOrderView(order))
}

func (h *OrderHandler) PickedUp(w http.ResponseWriter, r *http.Request) {
	driverID := pkgauth.UserIDFromContext(r.Context())

	order, err := h.orderService.MarkPickedUp(r.Context(), driverID, chi.URLParam(r, "orderID"))
	if err != nil {
		respondOrderError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewOrderView(order))
}

func (h *OrderHandler) Delivered(w http.ResponseWriter, r *http.Request) {
	driverID := pkgauth.UserIDFromContext(r.Context())

	order, err := h.orderService.MarkDelivered(r.Context(), driverID, chi.URLParam(r, "orderID"))
	if err != nil {
		respondOrderError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewOrderView(order))
}

func respondOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrRestaurantNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrEmptyOrder),
		errors.Is(err, domain.ErrInvalidLineItem),
		errors.Is(err, domain.ErrInvalidPayout):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		utils.RespondWithError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, domain.ErrNotVendor),
		errors.Is(err, domain.ErrNotCustomer),
		errors.Is(err, domain.ErrNotAssignedDriver),
		errors.Is(err, domain.ErrForbidden):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrOrderAlreadyTaken),
		errors.Is(err, domain.ErrAlreadyConfirmed),
		errors.Is(err, domain.ErrAlreadyPaid),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrNoPayoutConfigured):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
