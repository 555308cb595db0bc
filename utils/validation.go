package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// Email regex pattern
var EmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Validation constraints
const (
	MaxNameLength     = 100
	MinPasswordLength = 6
	MaxTitleLength    = 200
)

// ValidateEmail checks if email format is valid
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !EmailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateUserName checks if a display name meets requirements
func ValidateUserName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("user name is required")
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("user name must be less than %d characters", MaxNameLength)
	}
	return nil
}

// ValidatePassword checks minimum password strength
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// NormalizeFilterList splits a comma separated query value into trimmed,
// non-empty items
func NormalizeFilterList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
