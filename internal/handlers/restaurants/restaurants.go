package restaurants

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ztyaba/Uganda-Food-Delivery/internal/domain"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/dto"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/service/restaurantservice"
	pkgauth "github.com/ztyaba/Uganda-Food-Delivery/pkg/auth"
	"github.com/ztyaba/Uganda-Food-Delivery/pkg/utils"
	"github.com/ztyaba/Uganda-Food-Delivery/pkg/validate"
)

type Service interface {
	Create(ctx context.Context, vendorID, name, cuisine, address string, menu []restaurantservice.NewMenuItem) (*domain.Restaurant, error)
	AddMenuItem(ctx context.Context, vendorID, restaurantID string, entry restaurantservice.NewMenuItem) (*domain.MenuItem, error)
	Get(ctx context.Context, restaurantID string) (*domain.Restaurant, error)
	List(ctx context.Context) ([]domain.Restaurant, error)
	ListByVendor(ctx context.Context, vendorID string) ([]domain.Restaurant, error)
}

type RestaurantHandler struct {
	restaurantService Service
}

func New(restaurantService Service) *RestaurantHandler {
	return &RestaurantHandler{restaurantService: restaurantService}
}

func (h *RestaurantHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.restaurantService.List(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	views := make([]dto.RestaurantView, 0, len(list))
	for i := range list {
		views = append(views, dto.NewRestaurantView(&list[i]))
	}
	utils.RespondWithJSON(w, http.StatusOK, views)
}

func (h *RestaurantHandler) Get(w http.ResponseWriter, r *http.Request) {
	restaurant, err := h.restaurantService.Get(r.Context(), chi.URLParam(r, "restaurantID"))
	if err != nil {
		if errors.Is(err, domain.ErrRestaurantNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Restaurant not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewRestaurantView(restaurant))
}

func (h *RestaurantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRestaurantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	menu := make([]restaurantservice.NewMenuItem, 0, len(req.Menu))
	for _, entry := range req.Menu {
		menu = append(menu, restaurantservice.NewMenuItem{Name: entry.Name, Price: entry.Price})
	}

	vendorID := pkgauth.UserIDFromContext(r.Context())
	restaurant, err := h.restaurantService.Create(r.Context(), vendorID, req.Name, req.Cuisine, req.Address, menu)
	if err != nil {
		if errors.Is(err, restaurantservice.ErrInvalidMenuItem) {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewRestaurantView(restaurant))
}

func (h *RestaurantHandler) AddMenuItem(w http.ResponseWriter, r *http.Request) {
	var req dto.MenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	vendorID := pkgauth.UserIDFromContext(r.Context())
	item, err := h.restaurantService.AddMenuItem(r.Context(), vendorID, chi.URLParam(r, "restaurantID"),
		restaurantservice.NewMenuItem{Name: req.Name, Price: req.Price})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRestaurantNotFound):
			utils.RespondWithError(w, http.StatusNotFound, "Restaurant not found")
		case errors.Is(err, domain.ErrNotVendor):
			utils.RespondWithError(w, http.StatusForbidden, "Not your restaurant")
		case errors.Is(err, restaurantservice.ErrInvalidMenuItem):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.MenuItemView{ID: item.ID, Name: item.Name, Price: item.Price})
}

func (h *RestaurantHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	vendorID := pkgauth.UserIDFromContext(r.Context())

	list, err := h.restaurantService.ListByVendor(r.Context(), vendorID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	views := make([]dto.RestaurantView, 0, len(list))
	for i := range list {
		views = append(views, dto.NewRestaurantView(&list[i]))
	}
	utils.RespondWithJSON(w, http.StatusOK, views)
}
