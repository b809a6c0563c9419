package authservice

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ztyaba/Uganda-Food-Delivery/internal/domain"
	"github.com/ztyaba/Uganda-Food-Delivery/pkg/auth"
)

//go:generate mockgen -source=authservice.go -destination=mocks.go -package=authservice

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

const tokenTTL = 24 * time.Hour

type UserRepo interface {
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, userID string) (*domain.User, error)
}

type Service struct {
	users UserRepo
	jwt   auth.JWTServiceInterface
	hash  auth.HashServiceInterface
}

func New(users UserRepo, jwt auth.JWTServiceInterface, hash auth.HashServiceInterface) *Service {
	return &Service{users: users, jwt: jwt, hash: hash}
}

// Register creates a user and returns a signed session token.
func (s *Service) Register(ctx context.Context, email, password, fullName string, role domain.Role) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrEmailTaken
	}

	hash, err := s.hash.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user := &domain.User{
		ID:           "user_" + uuid.NewString(),
		Role:         role,
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.jwt.GenerateJWT(user.ID, user.Role, time.Now().Add(tokenTTL))
	if err != nil {
		return nil, "", err
	}

	zap.L().Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)))
	return user, token, nil
}

// Login checks credentials and returns a signed session token.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if user == nil || !s.hash.ComparePassword(user.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateJWT(user.ID, user.Role, time.Now().Add(tokenTTL))
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GetUser loads a user by id.
func (s *Service) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}
