package services

import (
	"testing"

	"coursehub/config"
	"coursehub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTestJWTSecret(t *testing.T) {
	t.Helper()
	prev := config.AppConfig.JWTSecret
	config.AppConfig.JWTSecret = "unit-test-secret"
	t.Cleanup(func() { config.AppConfig.JWTSecret = prev })
}

func TestIssueAndParseToken(t *testing.T) {
	withTestJWTSecret(t)

	user := &models.User{
		ID:        12,
		UserName:  "ravi",
		UserEmail: "ravi@example.com",
		Role:      models.RoleInstructor,
	}

	token, err := IssueToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, 12, claims.UserID)
	assert.Equal(t, "ravi", claims.UserName)
	assert.Equal(t, "ravi@example.com", claims.UserEmail)
	assert.Equal(t, models.RoleInstructor, claims.Role)
}

func TestParseTokenTampered(t *testing.T) {
	withTestJWTSecret(t)

	token, err := IssueToken(&models.User{ID: 1, UserName: "a", UserEmail: "a@b.co", Role: models.RoleStudent})
	require.NoError(t, err)

	_, err = ParseToken(token + "x")
	assert.Error(t, err)

	_, err = ParseToken("not.a.token")
	assert.Error(t, err)
}

func TestParseTokenWrongSecret(t *testing.T) {
	withTestJWTSecret(t)
	token, err := IssueToken(&models.User{ID: 1, UserName: "a", UserEmail: "a@b.co", Role: models.RoleStudent})
	require.NoError(t, err)

	config.AppConfig.JWTSecret = "rotated-secret"
	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestIssueTokenNoSecret(t *testing.T) {
	prev := config.AppConfig.JWTSecret
	config.AppConfig.JWTSecret = ""
	t.Cleanup(func() { config.AppConfig.JWTSecret = prev })

	_, err := IssueToken(&models.User{ID: 1})
	assert.Error(t, err)

	_, err = ParseToken("any.token.here")
	assert.Error(t, err, "no token is valid while the secret is unset")
}
