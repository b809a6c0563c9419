package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ztyaba/Uganda-Food-Delivery/internal/domain"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/dto"
	pkgauth "github.com/ztyaba/Uganda-Food-Delivery/pkg/auth"
	"github.com/ztyaba/Uganda-Food-Delivery/pkg/utils"
	"github.com/ztyaba/Uganda-Food-Delivery/pkg/validate"
)

type Service interface {
	GetWallet(ctx context.Context, ownerType domain.OwnerType, ownerID string) (*domain.Wallet, error)
	RequestPayout(ctx context.Context, ownerType domain.OwnerType, ownerID string, amount int64, destination string) (*domain.Wallet, error)
	OwnerName(ctx context.Context, ownerID string) (string, error)
	History(ctx context.Context, orderID string) ([]domain.SettlementRecord, error)
}

// OrderAccess gates the settlement history behind order membership.
type OrderAccess interface {
	GetForUser(ctx context.Context, userID, orderID string) (*domain.Order, error)
}

type WalletHandler struct {
	settlementService Service
	orders            OrderAccess
}

func New(settlementService Service, orders OrderAccess) *WalletHandler {
	return &WalletHandler{settlementService: settlementService, orders: orders}
}

func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerType := ownerTypeFor(pkgauth.RoleFromContext(ctx))

	userID := pkgauth.UserIDFromContext(ctx)
	wallet, err := h.settlementService.GetWallet(ctx, ownerType, userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	owner, err := h.settlementService.OwnerName(ctx, userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewWalletView(wallet, owner))
}

// Withdraw moves available funds into pending, modelling a withdrawal request
// to an external destination.
func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req dto.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	ownerType := ownerTypeFor(pkgauth.RoleFromContext(ctx))

	wallet, err := h.settlementService.RequestPayout(ctx, ownerType, pkgauth.UserIDFromContext(ctx), req.Amount, req.Destination)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidAmount):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrInsufficientFunds):
			utils.RespondWithError(w, http.StatusPaymentRequired, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewWalletView(wallet, ""))
}

// History returns the settlement ledger of one order, visible to its parties.
func (h *WalletHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := chi.URLParam(r, "orderID")

	if _, err := h.orders.GetForUser(ctx, pkgauth.UserIDFromContext(ctx), orderID); err != nil {
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrForbidden):
			utils.RespondWithError(w, http.StatusForbidden, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	records, err := h.settlementService.History(ctx, orderID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewSettlementViews(records))
}

func ownerTypeFor(role domain.Role) domain.OwnerType {
	switch role {
	case domain.VendorRole:
		return domain.VendorOwner
	case domain.DriverRole:
		return domain.DriverOwner
	default:
		return domain.CustomerOwner
	}
}
