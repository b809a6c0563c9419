package restaurantservice

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ztyaba/Uganda-Food-Delivery/internal/domain"
)

//go:generate mockgen -source=restaurantservice.go -destination=mocks.go -package=restaurantservice

var ErrInvalidMenuItem = errors.New("menu item needs a name and a positive price")

type Repo interface {
	Create(ctx context.Context, restaurant *domain.Restaurant) error
	AddMenuItem(ctx context.Context, restaurantID string, item domain.MenuItem) error
	FindByID(ctx context.Context, restaurantID string) (*domain.Restaurant, error)
	List(ctx context.Context) ([]domain.Restaurant, error)
	ListByVendor(ctx context.Context, vendorID string) ([]domain.Restaurant, error)
}

type Service struct {
	repo Repo
}

func New(repo Repo) *Service {
	return &Service{repo: repo}
}

// NewMenuItem is one menu entry supplied at creation time.
type NewMenuItem struct {
	Name  string
	Price int64
}

func (s *Service) Create(ctx context.Context, vendorID, name, cuisine, address string, menu []NewMenuItem) (*domain.Restaurant, error) {
	restaurant := &domain.Restaurant{
		ID:       "rest_" + uuid.NewString(),
		VendorID: vendorID,
		Name:     name,
		Cuisine:  cuisine,
		Address:  address,
	}
	for _, entry := range menu {
		if entry.Name == "" || entry.Price <= 0 {
			return nil, ErrInvalidMenuItem
		}
		restaurant.Menu = append(restaurant.Menu, domain.MenuItem{
			ID:    "item_" + uuid.NewString(),
			Name:  entry.Name,
			Price: entry.Price,
		})
	}
	if err := s.repo.Create(ctx, restaurant); err != nil {
		return nil, err
	}
	return restaurant, nil
}

func (s *Service) AddMenuItem(ctx context.Context, vendorID, restaurantID string, entry NewMenuItem) (*domain.MenuItem, error) {
	if entry.Name == "" || entry.Price <= 0 {
		return nil, ErrInvalidMenuItem
	}

	restaurant, err := s.repo.FindByID(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if restaurant == nil {
		return nil, domain.ErrRestaurantNotFound
	}
	if restaurant.VendorID != vendorID {
		return nil, domain.ErrNotVendor
	}

	item := domain.MenuItem{
		ID:    "item_" + uuid.NewString(),
		Name:  entry.Name,
		Price: entry.Price,
	}
	if err := s.repo.AddMenuItem(ctx, restaurantID, item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Service) Get(ctx context.Context, restaurantID string) (*domain.Restaurant, error) {
	restaurant, err := s.repo.FindByID(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if restaurant == nil {
		return nil, domain.ErrRestaurantNotFound
	}
	return restaurant, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Restaurant, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListByVendor(ctx context.Context, vendorID string) ([]domain.Restaurant, error) {
	return s.repo.ListByVendor(ctx, vendorID)
}
