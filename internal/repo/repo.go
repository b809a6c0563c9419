package repo

import (
	"github.com/ztyaba/Uganda-Food-Delivery/internal/pg"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/repo/memstore"
	orderrepo "github.com/ztyaba/Uganda-Food-Delivery/internal/repo/order-repo"
	restaurantrepo "github.com/ztyaba/Uganda-Food-Delivery/internal/repo/restaurant-repo"
	settlementrepo "github.com/ztyaba/Uganda-Food-Delivery/internal/repo/settlement-repo"
	userrepo "github.com/ztyaba/Uganda-Food-Delivery/internal/repo/user-repo"
	walletrepo "github.com/ztyaba/Uganda-Food-Delivery/internal/repo/wallet-repo"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/service/authservice"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/service/orderservice"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/service/restaurantservice"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/service/settlementservice"
)

type Repositories struct {
	Users       authservice.UserRepo
	Orders      orderservice.Repo
	Restaurants restaurantservice.Repo
	Wallets     settlementservice.WalletRepo
	Settlements settlementservice.SettlementRepo
}

// New builds the Postgres-backed repositories.
func New(conn pg.Database) *Repositories {
	return &Repositories{
		Users:       userrepo.New(conn),
		Orders:      orderrepo.New(conn),
		Restaurants: restaurantrepo.New(conn),
		Wallets:     walletrepo.New(conn),
		Settlements: settlementrepo.New(conn),
	}
}

// NewMemory builds repositories over a shared in-memory store.
func NewMemory(store *memstore.Store) *Repositories {
	return &Repositories{
		Users:       store.Users(),
		Orders:      store.Orders(),
		Restaurants: store.Restaurants(),
		Wallets:     store.Wallets(),
		Settlements: store.Settlements(),
	}
}
