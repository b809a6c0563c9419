package memstore

import (
	"context"
	"sort"
	"strings"

	"github.com/ztyaba/Uganda-Food-Delivery/internal/domain"
)

type UserRepo struct {
	store *Store
}

func (s *Store) Users() *UserRepo {
	return &UserRepo{store: s}
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	unlock := r.store.lock(ctx)
	defer unlock()
	u := *user
	r.store.users[user.ID] = &u
	return nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	unlock := r.store.lock(ctx)
	defer unlock()
	for _, user := range r.store.users {
		if strings.EqualFold(user.Email, email) {
			u := *user
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) FindByID(ctx context.Context, userID string) (*domain.User, error) {
	unlock := r.store.lock(ctx)
	defer unlock()
	user, ok := r.store.users[userID]
	if !ok {
		return nil, nil
	}
	u := *user
	return &u, nil
}

type RestaurantRepo struct {
	store *Store
}

func (s *Store) Restaurants() *RestaurantRepo {
	return &RestaurantRepo{store: s}
}

func (r *RestaurantRepo) Create(ctx context.Context, restaurant *domain.Restaurant) error {
	unlock := r.store.lock(ctx)
	defer unlock()
	c := *restaurant
	c.Menu = append([]domain.MenuItem(nil), restaurant.Menu...)
	r.store.restaurants[restaurant.ID] = &c
	return nil
}

func (r *RestaurantRepo) AddMenuItem(ctx context.Context, restaurantID string, item domain.MenuItem) error {
	unlock := r.store.lock(ctx)
	defer unlock()
	restaurant, ok := r.store.restaurants[restaurantID]
	if !ok {
		return domain.ErrRestaurantNotFound
	}
	restaurant.Menu = append(restaurant.Menu, item)
	return nil
}

func (r *RestaurantRepo) FindByID(ctx context.Context, restaurantID string) (*domain.Restaurant, error) {
	unlock := r.store.lock(ctx)
	defer unlock()
	restaurant, ok := r.store.restaurants[restaurantID]
	if !ok {
		return nil, nil
	}
	c := *restaurant
	c.Menu = append([]domain.MenuItem(nil), restaurant.Menu...)
	return &c, nil
}

func (r *RestaurantRepo) List(ctx context.Context) ([]domain.Restaurant, error) {
	return r.listWhere(ctx, func(*domain.Restaurant) bool { return true })
}

func (r *RestaurantRepo) ListByVendor(ctx context.Context, vendorID string) ([]domain.Restaurant, error) {
	return r.listWhere(ctx, func(rest *domain.Restaurant) bool { return rest.VendorID == vendorID })
}

func (r *RestaurantRepo) listWhere(ctx context.Context, keep func(*domain.Restaurant) bool) ([]domain.Restaurant, error) {
	unlock := r.store.lock(ctx)
	defer unlock()
	var restaurants []domain.Restaurant
	for _, restaurant := range r.store.restaurants {
		if keep(restaurant) {
			c := *restaurant
			c.Menu = append([]domain.MenuItem(nil), restaurant.Menu...)
			restaurants = append(restaurants, c)
		}
	}
	sort.Slice(restaurants, func(i, j int) bool { return restaurants[i].Name < restaurants[j].Name })
	return restaurants, nil
}
