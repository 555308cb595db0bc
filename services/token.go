package services

import (
	"fmt"
	"time"

	"coursehub/config"
	apperrors "coursehub/errors"
	"coursehub/models"

	"github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 120 * time.Minute

// Claims is the JWT payload issued on login
type Claims struct {
	UserID    int    `json:"_id"`
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an access token for a user
func IssueToken(user *models.User) (string, error) {
	secret := config.AppConfig.JWTSecret
	if secret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := Claims{
		UserID:    user.ID,
		UserName:  user.UserName,
		UserEmail: user.UserEmail,
		Role:      user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			Subject:   fmt.Sprintf("%d", user.ID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a signed token and returns its claims
func ParseToken(tokenString string) (*Claims, error) {
	secret := config.AppConfig.JWTSecret
	if secret == "" {
		return nil, apperrors.NewUnauthorizedError("invalid token")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, apperrors.E(apperrors.Unauthorized, "invalid token", err)
	}
	if !token.Valid {
		return nil, apperrors.NewUnauthorizedError("invalid token")
	}
	return claims, nil
}
