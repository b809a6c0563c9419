package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ztyaba/Uganda-Food-Delivery/internal/domain"
	authhandlers "github.com/ztyaba/Uganda-Food-Delivery/internal/handlers/auth"
	dashboardhandlers "github.com/ztyaba/Uganda-Food-Delivery/internal/handlers/dashboard"
	ordershandlers "github.com/ztyaba/Uganda-Food-Delivery/internal/handlers/orders"
	realtimehandlers "github.com/ztyaba/Uganda-Food-Delivery/internal/handlers/realtime"
	restauranthandlers "github.com/ztyaba/Uganda-Food-Delivery/internal/handlers/restaurants"
	wallethandlers "github.com/ztyaba/Uganda-Food-Delivery/internal/handlers/wallet"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/realtime"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/service"
	pkgauth "github.com/ztyaba/Uganda-Food-Delivery/pkg/auth"
)

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
}

type RestaurantHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	AddMenuItem(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
}

type OrderHandler interface {
	Place(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	Track(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
	Confirm(w http.ResponseWriter, r *http.Request)
	Pay(w http.ResponseWriter, r *http.Request)
	Available(w http.ResponseWriter, r *http.Request)
	Accept(w http.ResponseWriter, r *http.Request)
	PickedUp(w http.ResponseWriter, r *http.Request)
	Delivered(w http.ResponseWriter, r *http.Request)
}

type WalletHandler interface {
	GetWallet(w http.ResponseWriter, r *http.Request)
	Withdraw(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)
}

type RealtimeHandler interface {
	Stream(w http.ResponseWriter, r *http.Request)
}

type DashboardHandler interface {
	Vendor(w http.ResponseWriter, r *http.Request)
	Driver(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	AuthHandler       AuthHandler
	RestaurantHandler RestaurantHandler
	OrderHandler      OrderHandler
	WalletHandler     WalletHandler
	RealtimeHandler   RealtimeHandler
	DashboardHandler  DashboardHandler

	authMiddleware *pkgauth.Middleware
}

func New(s *service.Services, hub *realtime.Hub, jwt pkgauth.JWTServiceInterface) *Handlers {
	return &Handlers{
		AuthHandler:       authhandlers.New(s.Auth),
		RestaurantHandler: restauranthandlers.New(s.Restaurants),
		OrderHandler:      ordershandlers.New(s.Orders),
		WalletHandler:     wallethandlers.New(s.Settlement, s.Orders),
		RealtimeHandler:   realtimehandlers.New(hub, jwt),
		DashboardHandler:  dashboardhandlers.New(s.Orders, s.Settlement),
		authMiddleware:    pkgauth.NewMiddleware(jwt),
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
	)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.AuthHandler.Register)
		r.Post("/auth/login", h.AuthHandler.Login)

		r.Get("/restaurants", h.RestaurantHandler.List)
		r.Get("/restaurants/{restaurantID}", h.RestaurantHandler.Get)

		r.Get("/events", h.RealtimeHandler.Stream)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Authenticate)

			r.Get("/auth/me", h.AuthHandler.Me)
			r.Get("/wallet", h.WalletHandler.GetWallet)
			r.Post("/wallet/withdraw", h.WalletHandler.Withdraw)

			r.Get("/orders", h.OrderHandler.ListMine)
			r.Get("/orders/{orderID}", h.OrderHandler.Track)
			r.Get("/orders/{orderID}/settlements", h.WalletHandler.History)

			r.Group(func(r chi.Router) {
				r.Use(h.authMiddleware.RequireRole(domain.CustomerRole))
				r.Post("/orders", h.OrderHandler.Place)
				r.Post("/orders/{orderID}/cancel", h.OrderHandler.Cancel)
			})

			r.Group(func(r chi.Router) {
				r.Use(h.authMiddleware.RequireRole(domain.VendorRole))
				r.Post("/restaurants", h.RestaurantHandler.Create)
				r.Post("/restaurants/{restaurantID}/menu", h.RestaurantHandler.AddMenuItem)
				r.Get("/vendor/restaurants", h.RestaurantHandler.ListMine)
				r.Get("/vendor/dashboard", h.DashboardHandler.Vendor)
				r.Post("/orders/{orderID}/confirm", h.OrderHandler.Confirm)
				r.Post("/orders/{orderID}/pay", h.OrderHandler.Pay)
			})

			r.Group(func(r chi.Router) {
				r.Use(h.authMiddleware.RequireRole(domain.DriverRole))
				r.Get("/orders/available", h.OrderHandler.Available)
				r.Get("/driver/dashboard", h.DashboardHandler.Driver)
				r.Post("/orders/{orderID}/accept", h.OrderHandler.Accept)
				r.Post("/orders/{orderID}/pickup", h.OrderHandler.PickedUp)
				r.Post("/orders/{orderID}/deliver", h.OrderHandler.Delivered)
			})
		})
	})

	return r
}
