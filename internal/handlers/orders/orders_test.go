package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ztyaba/Uganda-Food-Delivery/internal/domain"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/dto"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/service/orderservice"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/service/settlementservice"
	pkgauth "github.com/ztyaba/Uganda-Food-Delivery/pkg/auth"
)

// fakeService implements Service with per-test function fields.
type fakeService struct {
	placeOrder   func(ctx context.Context, customerID string, input orderservice.PlaceInput) (*domain.Order, *settlementservice.Shares, error)
	confirmOrder func(ctx context.Context, vendorID, orderID string, driverPayout int64) (*domain.Order, error)
	acceptOrder  func(ctx context.Context, driverID, orderID string) (*domain.Order, error)
	payDriver    func(ctx context.Context, vendorID, orderID string) (*domain.Order, error)
	getForUser   func(ctx context.Context, userID, orderID string) (*domain.Order, error)
}

func (f *fakeService) PlaceOrder(ctx context.Context, customerID string, input orderservice.PlaceInput) (*domain.Order, *settlementservice.Shares, error) {
	return f.placeOrder(ctx, customerID, input)
}

func (f *fakeService) ConfirmOrder(ctx context.Context, vendorID, orderID string, driverPayout int64) (*domain.Order, error) {
	return f.confirmOrder(ctx, vendorID, orderID, driverPayout)
}

func (f *fakeService) AcceptOrder(ctx context.Context, driverID, orderID string) (*domain.Order, error) {
	return f.acceptOrder(ctx, driverID, orderID)
}

func (f *fakeService) MarkPickedUp(ctx context.Context, driverID, orderID string) (*domain.Order, error) {
	return nil, nil
}

func (f *fakeService) MarkDelivered(ctx context.Context, driverID, orderID string) (*domain.Order, error) {
	return nil, nil
}

func (f *fakeService) PayDriver(ctx context.Context, vendorID, orderID string) (*domain.Order, error) {
	return f.payDriver(ctx, vendorID, orderID)
}

func (f *fakeService) CancelOrder(ctx context.Context, customerID, orderID string) (*domain.Order, error) {
	return nil, nil
}

func (f *fakeService) GetForUser(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	return f.getForUser(ctx, userID, orderID)
}

func (f *fakeService) ListForCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	return nil, nil
}

func (f *fakeService) ListForVendor(ctx context.Context, vendorID string) ([]domain.Order, error) {
	return nil, nil
}

func (f *fakeService) ListForDriver(ctx context.Context, driverID string) ([]domain.Order, error) {
	return nil, nil
}

func (f *fakeService) ListAvailable(ctx context.Context) ([]domain.Order, error) {
	return nil, nil
}

func newRouter(svc Service, userID string, role domain.Role) chi.Router {
	h := New(svc)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), pkgauth.UserIDKey, userID)
			ctx = context.WithValue(ctx, pkgauth.RoleKey, role)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Post("/orders", h.Place)
	r.Get("/orders/{orderID}", h.Track)
	r.Post("/orders/{orderID}/confirm", h.Confirm)
	r.Post("/orders/{orderID}/accept", h.Accept)
	r.Post("/orders/{orderID}/pay", h.Pay)
	return r
}

func TestPlace(t *testing.T) {
	order := &domain.Order{ID: "order-1", CustomerID: "cust-1", Total: 43000, Status: domain.ReceivedStatus}

	tests := []struct {
		name       string
		body       any
		serviceErr error
		wantStatus int
	}{
		{
			name: "Order created",
			body: dto.PlaceOrderRequest{
				RestaurantID: "rest-1",
				Items:        []dto.CartItemRequest{{MenuItemID: "item-1", Quantity: 2}},
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "Malformed body",
			body:       "not-json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Missing items",
			body:       dto.PlaceOrderRequest{RestaurantID: "rest-1"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "Customer cannot pay",
			body: dto.PlaceOrderRequest{
				RestaurantID: "rest-1",
				Items:        []dto.CartItemRequest{{MenuItemID: "item-1", Quantity: 2}},
			},
			serviceErr: domain.ErrInsufficientFunds,
			wantStatus: http.StatusPaymentRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{
				placeOrder: func(ctx context.Context, customerID string, input orderservice.PlaceInput) (*domain.Order, *settlementservice.Shares, error) {
					assert.Equal(t, "cust-1", customerID)
					if tt.serviceErr != nil {
						return nil, nil, tt.serviceErr
					}
					return order, &settlementservice.Shares{DriverShare: 8600, VendorShare: 34400}, nil
				},
			}
			router := newRouter(svc, "cust-1", domain.CustomerRole)

			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusCreated {
				var view dto.OrderView
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
				assert.Equal(t, "order-1", view.ID)
			}
		})
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		serviceErr error
		wantStatus int
	}{
		{
			name:       "Confirmed with payout",
			body:       dto.ConfirmOrderRequest{DriverPayout: 8600},
			wantStatus: http.StatusOK,
		},
		{
			name:       "Zero payout rejected by validation",
			body:       dto.ConfirmOrderRequest{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Already confirmed",
			body:       dto.ConfirmOrderRequest{DriverPayout: 8600},
			serviceErr: domain.ErrAlreadyConfirmed,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "Someone else's order",
			body:       dto.ConfirmOrderRequest{DriverPayout: 8600},
			serviceErr: domain.ErrNotVendor,
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{
				confirmOrder: func(ctx context.Context, vendorID, orderID string, driverPayout int64) (*domain.Order, error) {
					assert.Equal(t, "vend-1", vendorID)
					assert.Equal(t, "order-1", orderID)
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					return &domain.Order{ID: orderID, Status: domain.PreparingStatus, DriverPayout: driverPayout}, nil
				},
			}
			router := newRouter(svc, "vend-1", domain.VendorRole)

			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/orders/order-1/confirm", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestAccept(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{name: "Driver claims the order", wantStatus: http.StatusOK},
		{name: "Lost the race", serviceErr: domain.ErrOrderAlreadyTaken, wantStatus: http.StatusConflict},
		{name: "Order gone", serviceErr: domain.ErrOrderNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{
				acceptOrder: func(ctx context.Context, driverID, orderID string) (*domain.Order, error) {
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					return &domain.Order{ID: orderID, AssignedDriver: driverID, Status: domain.ReadyForPickupStatus}, nil
				},
			}
			router := newRouter(svc, "drv-1", domain.DriverRole)

			req := httptest.NewRequest(http.MethodPost, "/orders/order-1/accept", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestPay(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{name: "Driver paid", wantStatus: http.StatusOK},
		{name: "Already paid", serviceErr: domain.ErrAlreadyPaid, wantStatus: http.StatusConflict},
		{name: "Not delivered yet", serviceErr: domain.ErrInvalidTransition, wantStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{
				payDriver: func(ctx context.Context, vendorID, orderID string) (*domain.Order, error) {
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					return &domain.Order{ID: orderID, IsPaid: true, Status: domain.DeliveredStatus}, nil
				},
			}
			router := newRouter(svc, "vend-1", domain.VendorRole)

			req := httptest.NewRequest(http.MethodPost, "/orders/order-1/pay", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestTrack(t *testing.T) {
	svc := &fakeService{
		getForUser: func(ctx context.Context, userID, orderID string) (*domain.Order, error) {
			if userID != "cust-1" {
				return nil, domain.ErrForbidden
			}
			return &domain.Order{
				ID:     orderID,
				Status: domain.OnTheWayStatus,
				StatusHistory: []domain.StatusChange{
					{Status: domain.ReceivedStatus},
					{Status: domain.PreparingStatus},
					{Status: domain.ReadyForPickupStatus},
					{Status: domain.OnTheWayStatus},
				},
			}, nil
		},
	}

	t.Run("Party sees the full history", func(t *testing.T) {
		router := newRouter(svc, "cust-1", domain.CustomerRole)
		req := httptest.NewRequest(http.MethodGet, "/orders/order-1", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var view dto.OrderView
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
		assert.Len(t, view.StatusHistory, 4)
	})

	t.Run("Stranger is rejected", func(t *testing.T) {
		router := newRouter(svc, "someone-else", domain.CustomerRole)
		req := httptest.NewRequest(http.MethodGet, "/orders/order-1", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
