package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken(42, "Alice Martin", "alice@club.example", LicenseLoisir, RoleMember, testSecret, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "Alice Martin", claims.Name)
	assert.Equal(t, "alice@club.example", claims.Email)
	assert.Equal(t, LicenseLoisir, claims.License)
	assert.Equal(t, RoleMember, claims.Role)
	assert.Equal(t, "access", claims.TokenType)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken(1, "Bob", "", LicenseCompetition, RoleAdmin, testSecret, time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, "other-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Expired(t *testing.T) {
	token, err := GenerateToken(1, "Bob", "", "", RoleMember, testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, testSecret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateToken_EmptySecret(t *testing.T) {
	_, err := ValidateToken("whatever", "")
	assert.ErrorIs(t, err, ErrEmptyJWTSecret)
}

func TestGenerateToken_EmptySecret(t *testing.T) {
	_, err := GenerateToken(1, "Bob", "", "", RoleMember, "", time.Minute)
	assert.ErrorIs(t, err, ErrEmptyJWTSecret)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := ValidateToken("not.a.token", testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
