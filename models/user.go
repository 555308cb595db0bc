package models

import "time"

// User roles
const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
)

// Auth providers
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// User represents a registered account (student or instructor)
type User struct {
	ID           int       `json:"id"`
	UserName     string    `json:"userName"`
	UserEmail    string    `json:"userEmail"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	AuthProvider string    `json:"authProvider"`
	GoogleID     string    `json:"-"`
	Avatar       string    `json:"avatar,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserView is the safe representation returned by auth endpoints
type UserView struct {
	ID        int    `json:"_id"`
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
	Role      string `json:"role"`
	Avatar    string `json:"avatar,omitempty"`
}

// ToView strips credentials from a User
func (u *User) ToView() UserView {
	return UserView{
		ID:        u.ID,
		UserName:  u.UserName,
		UserEmail: u.UserEmail,
		Role:      u.Role,
		Avatar:    u.Avatar,
	}
}
