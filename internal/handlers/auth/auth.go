package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ztyaba/Uganda-Food-Delivery/internal/domain"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/dto"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/service/authservice"
	pkgauth "github.com/ztyaba/Uganda-Food-Delivery/pkg/auth"
	"github.com/ztyaba/Uganda-Food-Delivery/pkg/utils"
	"github.com/ztyaba/Uganda-Food-Delivery/pkg/validate"
)

type Service interface {
	Register(ctx context.Context, email, password, fullName string, role domain.Role) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
}

type AuthHandler struct {
	authService Service
}

func New(authService Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, token, err := h.authService.Register(r.Context(), req.Email, req.Password, req.FullName, domain.Role(req.Role))
	if err != nil {
		if errors.Is(err, authservice.ErrEmailTaken) {
			utils.RespondWithError(w, http.StatusConflict, "Email already registered")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, dto.AuthResponse{
		Token: token,
		User:  dto.NewUserView(user),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, authservice.ErrInvalidCredentials) {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dto.AuthResponse{
		Token: token,
		User:  dto.NewUserView(user),
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := pkgauth.UserIDFromContext(r.Context())

	user, err := h.authService.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewUserView(user))
}
