package dashboard

import (
	"context"
	"net/http"
	"time"

	"github.com/ztyaba/Uganda-Food-Delivery/internal/domain"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/dto"
	pkgauth "github.com/ztyaba/Uganda-Food-Delivery/pkg/auth"
	"github.com/ztyaba/Uganda-Food-Delivery/pkg/utils"
)

type OrderService interface {
	ListForVendor(ctx context.Context, vendorID string) ([]domain.Order, error)
	ListForDriver(ctx context.Context, driverID string) ([]domain.Order, error)
	ListAvailable(ctx context.Context) ([]domain.Order, error)
}

type WalletService interface {
	GetWallet(ctx context.Context, ownerType domain.OwnerType, ownerID string) (*domain.Wallet, error)
	OwnerName(ctx context.Context, ownerID string) (string, error)
}

type DashboardHandler struct {
	orders  OrderService
	wallets WalletService
}

func New(orders OrderService, wallets WalletService) *DashboardHandler {
	return &DashboardHandler{orders: orders, wallets: wallets}
}

// Vendor aggregates the vendor's order book: lifetime order count, orders
// still waiting for confirmation, and revenue from today's deliveries.
func (h *DashboardHandler) Vendor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vendorID := pkgauth.UserIDFromContext(ctx)

	orders, err := h.orders.ListForVendor(ctx, vendorID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	view := dto.VendorDashboardView{TotalOrders: len(orders)}
	now := time.Now()
	for _, order := range orders {
		if order.Status == domain.ReceivedStatus {
			view.PendingOrders++
		}
		if order.DeliveredAt != nil && sameDay(*order.DeliveredAt, now) {
			view.TodayRevenue += order.VendorShare
		}
	}

	wallet, owner, err := h.walletView(ctx, domain.VendorOwner, vendorID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	view.Wallet = dto.NewWalletView(wallet, owner)

	utils.RespondWithJSON(w, http.StatusOK, view)
}

// Driver shows the jobs up for grabs alongside the driver's own deliveries
// still in flight.
func (h *DashboardHandler) Driver(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	driverID := pkgauth.UserIDFromContext(ctx)

	available, err := h.orders.ListAvailable(ctx)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	mine, err := h.orders.ListForDriver(ctx, driverID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	var active []domain.Order
	for _, order := range mine {
		if order.Status == domain.ReadyForPickupStatus || order.Status == domain.OnTheWayStatus {
			active = append(active, order)
		}
	}

	wallet, owner, err := h.walletView(ctx, domain.DriverOwner, driverID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dto.DriverDashboardView{
		AvailableOrders:  len(available),
		ActiveDeliveries: dto.NewOrderViews(active),
		Wallet:           dto.NewWalletView(wallet, owner),
	})
}

func (h *DashboardHandler) walletView(ctx context.Context, ownerType domain.OwnerType, ownerID string) (*domain.Wallet, string, error) {
	wallet, err := h.wallets.GetWallet(ctx, ownerType, ownerID)
	if err != nil {
		return nil, "", err
	}
	owner, err := h.wallets.OwnerName(ctx, ownerID)
	if err != nil {
		return nil, "", err
	}
	return wallet, owner, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
