package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"

	"github.com/ztyaba/Uganda-Food-Delivery/internal/domain"
)

func TestGenerateJWT(t *testing.T) {
	jwtService := NewJWTService("test-secret")

	tests := []struct {
		name           string
		userID         string
		role           domain.Role
		expirationTime time.Time
		expectError    bool
	}{
		{
			name:           "Valid Token",
			userID:         "user-123",
			role:           domain.CustomerRole,
			expirationTime: time.Now().Add(time.Hour),
			expectError:    false,
		},
		{
			name:           "Expired Token",
			userID:         "user-123",
			role:           domain.DriverRole,
			expirationTime: time.Now().Add(-time.Hour),
			expectError:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := jwtService.GenerateJWT(tt.userID, tt.role, tt.expirationTime)

			if tt.expectError {
				assert.Error(t, err)
				assert.Empty(t, token)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, token)
			}
		})
	}
}

func TestValidateToken(t *testing.T) {
	jwtService := NewJWTService("test-secret")

	tests := []struct {
		name        string
		tokenString string
		setup       func() string
		expectError bool
	}{
		{
			name: "Valid Token",
			setup: func() string {
				token, _ := jwtService.GenerateJWT("user-123", domain.VendorRole, time.Now().Add(time.Hour))
				return token
			},
			expectError: false,
		},
		{
			name:        "Invalid Token",
			tokenString: "invalid.token.string",
			expectError: true,
		},
		{
			name: "Expired Token",
			setup: func() string {
				token, _ := jwtService.GenerateJWT("user-123", domain.VendorRole, time.Now().Add(-time.Hour))
				return token
			},
			expectError: true,
		},
		{
			name: "Wrong Secret",
			setup: func() string {
				token, _ := NewJWTService("other-secret").GenerateJWT("user-123", domain.VendorRole, time.Now().Add(time.Hour))
				return token
			},
			expectError: true,
		},
		{
			name: "Missing User ID",
			setup: func() string {
				token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
					ExpiresAt: time.Now().Add(time.Hour).Unix(),
					Issuer:    "ugafood",
				})
				signedToken, _ := token.SignedString([]byte("test-secret"))
				return signedToken
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tokenString string
			if tt.setup != nil {
				tokenString = tt.setup()
			} else {
				tokenString = tt.tokenString
			}

			claims, err := jwtService.ValidateToken(tokenString)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, claims)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, claims)
				assert.Equal(t, "user-123", claims.UserID)
			}
		})
	}
}
