package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashPassword(t *testing.T) {
	hashService := &HashService{}

	tests := []struct {
		name        string
		password    string
		expectError bool
	}{
		{
			name:        "Valid Password",
			password:    "s3cret-pw",
			expectError: false,
		},
		{
			name:        "Empty Password",
			password:    "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashedPassword, err := hashService.HashPassword(tt.password)

			if tt.expectError {
				assert.Error(t, err)
				assert.Empty(t, hashedPassword)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, hashedPassword)
				assert.NotEqual(t, tt.password, hashedPassword)
			}
		})
	}
}

func TestComparePassword(t *testing.T) {
	hashService := &HashService{}

	hashed, err := hashService.HashPassword("s3cret-pw")
	assert.NoError(t, err)

	assert.True(t, hashService.ComparePassword(hashed, "s3cret-pw"))
	assert.False(t, hashService.ComparePassword(hashed, "wrong-pw"))
	assert.False(t, hashService.ComparePassword("not-a-hash", "s3cret-pw"))
}
