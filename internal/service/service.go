package service

import (
	"github.com/ztyaba/Uganda-Food-Delivery/internal/config"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/repo"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/service/authservice"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/service/orderservice"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/service/restaurantservice"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/service/settlementservice"
	pkgauth "github.com/ztyaba/Uganda-Food-Delivery/pkg/auth"
)

type Services struct {
	Auth        *authservice.Service
	Orders      *orderservice.Service
	Restaurants *restaurantservice.Service
	Settlement  *settlementservice.Service
}

func New(cfg *config.Config, repos *repo.Repositories, tx orderservice.TXManager, scheduler orderservice.Scheduler, bus orderservice.Bus) *Services {
	settlement := settlementservice.New(repos.Wallets, repos.Settlements, repos.Users, tx, cfg.DriverFeeRate, cfg.Currency)
	orders := orderservice.New(repos.Orders, repos.Restaurants, settlement, scheduler, bus, tx, cfg.AutoPayDelay)
	restaurants := restaurantservice.New(repos.Restaurants)
	auth := authservice.New(repos.Users, pkgauth.NewJWTService(cfg.JWTSecret), &pkgauth.HashService{})

	return &Services{
		Auth:        auth,
		Orders:      orders,
		Restaurants: restaurants,
		Settlement:  settlement,
	}
}
