package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ztyaba/Uganda-Food-Delivery/internal/domain"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/dto"
	pkgauth "github.com/ztyaba/Uganda-Food-Delivery/pkg/auth"
)

type fakeOrders struct {
	forVendor []domain.Order
	forDriver []domain.Order
	available []domain.Order
}

func (f *fakeOrders) ListForVendor(ctx context.Context, vendorID string) ([]domain.Order, error) {
	return f.forVendor, nil
}

func (f *fakeOrders) ListForDriver(ctx context.Context, driverID string) ([]domain.Order, error) {
	return f.forDriver, nil
}

func (f *fakeOrders) ListAvailable(ctx context.Context) ([]domain.Order, error) {
	return f.available, nil
}

type fakeWallets struct {
	wallet *domain.Wallet
	owner  string
}

func (f *fakeWallets) GetWallet(ctx context.Context, ownerType domain.OwnerType, ownerID string) (*domain.Wallet, error) {
	return f.wallet, nil
}

func (f *fakeWallets) OwnerName(ctx context.Context, ownerID string) (string, error) {
	return f.owner, nil
}

func newRouter(orders OrderService, wallets WalletService, userID string, role domain.Role) chi.Router {
	h := New(orders, wallets)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), pkgauth.UserIDKey, userID)
			ctx = context.WithValue(ctx, pkgauth.RoleKey, role)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Get("/vendor/dashboard", h.Vendor)
	r.Get("/driver/dashboard", h.Driver)
	return r
}

func TestVendorDashboard(t *testing.T) {
	now := time.Now()
	yesterday := now.Add(-24 * time.Hour)
	orders := &fakeOrders{forVendor: []domain.Order{
		{ID: "order-1", Status: domain.ReceivedStatus, VendorShare: 12000},
		{ID: "order-2", Status: domain.DeliveredStatus, VendorShare: 34400, DeliveredAt: &now},
		{ID: "order-3", Status: domain.DeliveredStatus, VendorShare: 9000, DeliveredAt: &yesterday},
	}}
	wallets := &fakeWallets{
		wallet: &domain.Wallet{ID: "w-1", Balance: 43400, Currency: "UGX"},
		owner:  "Mama Mbire",
	}
	router := newRouter(orders, wallets, "vendor-1", domain.VendorRole)

	req := httptest.NewRequest(http.MethodGet, "/vendor/dashboard", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var view dto.VendorDashboardView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, 3, view.TotalOrders)
	assert.Equal(t, 1, view.PendingOrders)
	assert.Equal(t, int64(34400), view.TodayRevenue)
	assert.Equal(t, "Mama Mbire", view.Wallet.Owner)
	assert.Equal(t, int64(43400), view.Wallet.Balance)
}

func TestDriverDashboard(t *testing.T) {
	orders := &fakeOrders{
		available: []domain.Order{{ID: "order-1"}, {ID: "order-2"}},
		forDriver: []domain.Order{
			{ID: "order-3", Status: domain.OnTheWayStatus},
			{ID: "order-4", Status: domain.DeliveredStatus},
		},
	}
	wallets := &fakeWallets{
		wallet: &domain.Wallet{ID: "w-2", Balance: 8000, Currency: "UGX"},
		owner:  "Okello B.",
	}
	router := newRouter(orders, wallets, "driver-1", domain.DriverRole)

	req := httptest.NewRequest(http.MethodGet, "/driver/dashboard", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var view dto.DriverDashboardView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, 2, view.AvailableOrders)
	require.Len(t, view.ActiveDeliveries, 1)
	assert.Equal(t, "order-3", view.ActiveDeliveries[0].ID)
	assert.Equal(t, "Okello B.", view.Wallet.Owner)
}
