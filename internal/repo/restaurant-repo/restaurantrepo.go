package restaurantrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ztyaba/Uganda-Food-Delivery/internal/domain"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/pg"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, restaurant *domain.Restaurant) error {
	query := `
        INSERT INTO restaurants (id, vendor_id, name, cuisine, address)
        VALUES ($1, $2, $3, $4, $5)
    `
	_, err := r.db.Exec(ctx, query,
		restaurant.ID, restaurant.VendorID, restaurant.Name, restaurant.Cuisine, restaurant.Address)
	if err != nil {
		zap.L().Error("failed to create restaurant", zap.Error(err))
		return err
	}
	for _, item := range restaurant.Menu {
		if err := r.AddMenuItem(ctx, restaurant.ID, item); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) AddMenuItem(ctx context.Context, restaurantID string, item domain.MenuItem) error {
	query := `INSERT INTO menu_items (id, restaurant_id, name, price) VALUES ($1, $2, $3, $4)`
	_, err := r.db.Exec(ctx, query, item.ID, restaurantID, item.Name, item.Price)
	if err != nil {
		zap.L().Error("failed to add menu item", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, restaurantID string) (*domain.Restaurant, error) {
	query := `SELECT id, vendor_id, name, cuisine, address FROM restaurants WHERE id = $1`
	row := r.db.QueryRow(ctx, query, restaurantID)

	var restaurant domain.Restaurant
	err := row.Scan(&restaurant.ID, &restaurant.VendorID, &restaurant.Name, &restaurant.Cuisine, &restaurant.Address)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find restaurant", zap.Error(err))
		return nil, err
	}

	menu, err := r.menuFor(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	restaurant.Menu = menu
	return &restaurant, nil
}

func (r *Repository) List(ctx context.Context) ([]domain.Restaurant, error) {
	return r.queryRestaurants(ctx, `SELECT id, vendor_id, name, cuisine, address FROM restaurants ORDER BY name`)
}

func (r *Repository) ListByVendor(ctx context.Context, vendorID string) ([]domain.Restaurant, error) {
	return r.queryRestaurants(ctx,
		`SELECT id, vendor_id, name, cuisine, address FROM restaurants WHERE vendor_id = $1 ORDER BY name`, vendorID)
}

func (r *Repository) queryRestaurants(ctx context.Context, query string, args ...any) ([]domain.Restaurant, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't get restaurants", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var restaurants []domain.Restaurant
	for rows.Next() {
		var restaurant domain.Restaurant
		if err := rows.Scan(&restaurant.ID, &restaurant.VendorID, &restaurant.Name, &restaurant.Cuisine, &restaurant.Address); err != nil {
			zap.L().Error("can't scan restaurant row", zap.Error(err))
			return nil, err
		}
		restaurants = append(restaurants, restaurant)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range restaurants {
		menu, err := r.menuFor(ctx, restaurants[i].ID)
		if err != nil {
			return nil, err
		}
		restaurants[i].Menu = menu
	}
	return restaurants, nil
}

func (r *Repository) menuFor(ctx context.Context, restaurantID string) ([]domain.MenuItem, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, price FROM menu_items WHERE restaurant_id = $1 ORDER BY name`, restaurantID)
	if err != nil {
		zap.L().Error("can't get menu items", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var menu []domain.MenuItem
	for rows.Next() {
		var item domain.MenuItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Price); err != nil {
			zap.L().Error("can't scan menu item row", zap.Error(err))
			return nil, err
		}
		menu = append(menu, item)
	}
	return menu, rows.Err()
}
