package auth

import (
	"testing"
	"time"

	"chat-hub/errors"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test_secret_key_for_unit_tests_only")

func TestGenerateToken_And_Validate(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken(testSecret, "user-42", []string{"user"}, time.Hour)
	req.NoError(err)
	req.NotEmpty(token)

	claims, err := ValidateToken(testSecret, token)
	req.NoError(err)
	req.Equal("user-42", claims.UserID)
	req.Equal([]string{"user"}, claims.Roles)
	req.Equal("chat-hub", claims.Issuer)
}

func TestValidateToken_Wrong_Secret(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken(testSecret, "user-42", []string{"user"}, time.Hour)
	req.NoError(err)

	_, err = ValidateToken([]byte("another_secret_entirely_here"), token)
	req.Error(err)
}

func TestValidateToken_Expired(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken(testSecret, "user-42", []string{"user"}, -time.Minute)
	req.NoError(err)

	_, err = ValidateToken(testSecret, token)
	req.Error(err)
}

func TestHashPassword_And_Compare(t *testing.T) {
	req := require.New(t)

	hash, err := HashPassword("Sup3r$ecretPassw0rd")
	req.NoError(err)
	req.Contains(hash, "$argon2id$")

	match, err := ComparePassword("Sup3r$ecretPassw0rd", hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("WrongPassword1!", hash)
	req.NoError(err)
	req.False(match)
}

func TestValidateRegister(t *testing.T) {
	req := require.New(t)

	// Complex enough
	req.NoError(ValidateRegister(RegisterRequest{
		Email:    "alice@example.com",
		Password: "Sup3r$ecretPassw0rd",
		Name:     lo.ToPtr("Alice"),
	}))

	// Missing complexity classes
	err := ValidateRegister(RegisterRequest{
		Email:    "alice@example.com",
		Password: "alllowercasebutlong",
	})
	req.ErrorIs(err, errors.ErrInvalidPassword)

	// Malformed email
	req.Error(ValidateRegister(RegisterRequest{
		Email:    "not-an-email",
		Password: "Sup3r$ecretPassw0rd",
	}))

	// Too short
	req.Error(ValidateRegister(RegisterRequest{
		Email:    "alice@example.com",
		Password: "Sh0rt!",
	}))
}
