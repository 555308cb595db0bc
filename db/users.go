package db

import (
	"context"
	"coursehub/models"
	"database/sql"
	"fmt"
)

// UserStore persists user accounts
type UserStore struct {
	db *sql.DB
}

func NewUserStore(database *sql.DB) *UserStore {
	return &UserStore{db: database}
}

const userColumns = "id, user_name, user_email, password_hash, role, auth_provider, google_id, avatar, created_at"

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.UserName, &u.UserEmail, &u.PasswordHash, &u.Role,
		&u.AuthProvider, &u.GoogleID, &u.Avatar, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user and returns its id
func (s *UserStore) Create(ctx context.Context, u *models.User) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (user_name, user_email, password_hash, role, auth_provider, google_id, avatar)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		u.UserName, u.UserEmail, u.PasswordHash, u.Role, u.AuthProvider, u.GoogleID, u.Avatar).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error inserting user: %w", err)
	}
	return id, nil
}

// GetByEmail returns the user with the given email, or sql.ErrNoRows
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE user_email = $1", email)
	return scanUser(row)
}

// GetByID returns the user with the given id, or sql.ErrNoRows
func (s *UserStore) GetByID(ctx context.Context, id int) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id)
	return scanUser(row)
}

// GetByGoogleIDOrEmail looks a user up by google id first, then email
func (s *UserStore) GetByGoogleIDOrEmail(ctx context.Context, googleID, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE google_id = $1 OR user_email = $2 ORDER BY (google_id = $1) DESC LIMIT 1",
		googleID, email)
	return scanUser(row)
}

// ExistsByNameOrEmail reports whether the name or email is already taken
func (s *UserStore) ExistsByNameOrEmail(ctx context.Context, name, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE user_name = $1 OR user_email = $2)",
		name, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking user existence: %w", err)
	}
	return exists, nil
}
