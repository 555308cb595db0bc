package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigJWTSecretHasNoDefault(t *testing.T) {
	prev := AppConfig
	t.Cleanup(func() { AppConfig = prev })

	t.Setenv("JWT_SECRET", "")
	LoadConfig()
	assert.Empty(t, AppConfig.JWTSecret, "an unset JWT secret must stay empty, never a literal default")

	t.Setenv("JWT_SECRET", "configured-secret")
	LoadConfig()
	assert.Equal(t, "configured-secret", AppConfig.JWTSecret)
}
