package authservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ztyaba/Uganda-Food-Delivery/internal/domain"
	"github.com/ztyaba/Uganda-Food-Delivery/internal/repo/memstore"
	"github.com/ztyaba/Uganda-Food-Delivery/pkg/auth"
)

func newService() *Service {
	store := memstore.New()
	return New(store.Users(), auth.NewJWTService("test-secret"), &auth.HashService{})
}

func TestRegister(t *testing.T) {
	service := newService()
	ctx := context.Background()

	user, token, err := service.Register(ctx, "Amina@Example.com", "s3cret-pw", "Amina N.", domain.CustomerRole)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "amina@example.com", user.Email)
	assert.Equal(t, domain.CustomerRole, user.Role)
	assert.NotEqual(t, "s3cret-pw", user.PasswordHash)

	// Same email, different case.
	_, _, err = service.Register(ctx, "amina@EXAMPLE.com", "other-pw", "Someone Else", domain.CustomerRole)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	service := newService()
	ctx := context.Background()

	registered, _, err := service.Register(ctx, "okello@example.com", "s3cret-pw", "Okello D.", domain.DriverRole)
	require.NoError(t, err)

	tests := []struct {
		name          string
		email         string
		password      string
		expectedError error
	}{
		{name: "Valid credentials", email: "okello@example.com", password: "s3cret-pw"},
		{name: "Case-insensitive email", email: "OKELLO@example.com", password: "s3cret-pw"},
		{name: "Wrong password", email: "okello@example.com", password: "wrong", expectedError: ErrInvalidCredentials},
		{name: "Unknown email", email: "nobody@example.com", password: "s3cret-pw", expectedError: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, token, err := service.Login(ctx, tt.email, tt.password)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, registered.ID, user.ID)
			assert.NotEmpty(t, token)
		})
	}
}

func TestLoginTokenCarriesRole(t *testing.T) {
	service := newService()
	ctx := context.Background()

	_, token, err := service.Register(ctx, "vendor@example.com", "s3cret-pw", "Kampala Grill", domain.VendorRole)
	require.NoError(t, err)

	claims, err := auth.NewJWTService("test-secret").ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.VendorRole, claims.Role)
}

func TestGetUser(t *testing.T) {
	service := newService()
	ctx := context.Background()

	user, _, err := service.Register(ctx, "amina@example.com", "s3cret-pw", "Amina N.", domain.CustomerRole)
	require.NoError(t, err)

	got, err := service.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = service.GetUser(ctx, "user-nope")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
