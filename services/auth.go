package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"coursehub/db"
	apperrors "coursehub/errors"
	"coursehub/logger"
	"coursehub/models"
	"coursehub/utils"

	"golang.org/x/crypto/bcrypt"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// UserStore is the persistence surface the auth service needs
type UserStore interface {
	Create(ctx context.Context, u *models.User) (int, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByGoogleIDOrEmail(ctx context.Context, googleID, email string) (*models.User, error)
	ExistsByNameOrEmail(ctx context.Context, name, email string) (bool, error)
}

// AuthService registers and authenticates accounts
type AuthService struct {
	Users UserStore

	// HTTPClient fetches Google profile data. Overridable in tests.
	HTTPClient *http.Client
}

// NewAuthService wires the auth service to the database
func NewAuthService() *AuthService {
	return &AuthService{
		Users:      db.NewUserStore(db.DB),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// RegisterRequest is the payload for account creation
type RegisterRequest struct {
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

func (r *RegisterRequest) validate() error {
	if err := utils.ValidateUserName(r.UserName); err != nil {
		return apperrors.NewInvalidParamsError(err.Error())
	}
	if err := utils.ValidateEmail(r.UserEmail); err != nil {
		return apperrors.NewInvalidParamsError(err.Error())
	}
	if err := utils.ValidatePassword(r.Password); err != nil {
		return apperrors.NewInvalidParamsError(err.Error())
	}
	if r.Role != "" && r.Role != models.RoleStudent && r.Role != models.RoleInstructor {
		return apperrors.NewInvalidParamsError("role must be student or instructor")
	}
	return nil
}

// Register creates a local account. Name and email must both be unused.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*models.UserView, error) {
	req.UserEmail = strings.ToLower(strings.TrimSpace(req.UserEmail))
	req.UserName = strings.TrimSpace(req.UserName)

	if err := req.validate(); err != nil {
		return nil, err
	}

	taken, err := s.Users.ExistsByNameOrEmail(ctx, req.UserName, req.UserEmail)
	if err != nil {
		return nil, apperrors.E(apperrors.Internal, "error checking existing users", err)
	}
	if taken {
		return nil, apperrors.NewConflictError("user name or email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.E(apperrors.Internal, "error hashing password", err)
	}

	role := req.Role
	if role == "" {
		role = models.RoleStudent
	}

	user := &models.User{
		UserName:     req.UserName,
		UserEmail:    req.UserEmail,
		PasswordHash: string(hash),
		Role:         role,
		AuthProvider: models.ProviderLocal,
	}
	id, err := s.Users.Create(ctx, user)
	if err != nil {
		return nil, apperrors.E(apperrors.Internal, "error creating user", err)
	}
	user.ID = id

	logger.Info("Registered user %d (%s)", id, user.UserEmail)
	view := user.ToView()
	return &view, nil
}

// LoginResponse carries the signed token and the authenticated user
type LoginResponse struct {
	AccessToken string          `json:"accessToken"`
	User        models.UserView `json:"user"`
}

// Login authenticates a local account by email and password
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.NewInvalidParamsError("email and password are required")
	}

	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewUnauthorizedError("invalid credentials")
		}
		return nil, apperrors.E(apperrors.Internal, "error loading user", err)
	}

	if user.AuthProvider != models.ProviderLocal || user.PasswordHash == "" {
		return nil, apperrors.NewUnauthorizedError("account uses google sign-in")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid credentials")
	}

	token, err := IssueToken(user)
	if err != nil {
		return nil, apperrors.E(apperrors.Internal, "error issuing token", err)
	}
	return &LoginResponse{AccessToken: token, User: user.ToView()}, nil
}

type googleProfile struct {
	Sub     string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

// GoogleLogin exchanges a Google OAuth access token for a session. First-time
// sign-ins get a student account created on the fly.
func (s *AuthService) GoogleLogin(ctx context.Context, accessToken string) (*LoginResponse, error) {
	if accessToken == "" {
		return nil, apperrors.NewInvalidParamsError("access token is required")
	}

	profile, err := s.fetchGoogleProfile(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if profile.Email == "" || profile.Sub == "" {
		return nil, apperrors.NewUnauthorizedError("google profile missing email")
	}

	user, err := s.Users.GetByGoogleIDOrEmail(ctx, profile.Sub, strings.ToLower(profile.Email))
	if err != nil {
		if !apperrors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.E(apperrors.Internal, "error loading user", err)
		}
		user = &models.User{
			UserName:     profile.Name,
			UserEmail:    strings.ToLower(profile.Email),
			Role:         models.RoleStudent,
			AuthProvider: models.ProviderGoogle,
			GoogleID:     profile.Sub,
			Avatar:       profile.Picture,
		}
		id, createErr := s.Users.Create(ctx, user)
		if createErr != nil {
			return nil, apperrors.E(apperrors.Internal, "error creating google user", createErr)
		}
		user.ID = id
		logger.Info("Created google user %d (%s)", id, user.UserEmail)
	}

	token, err := IssueToken(user)
	if err != nil {
		return nil, apperrors.E(apperrors.Internal, "error issuing token", err)
	}
	return &LoginResponse{AccessToken: token, User: user.ToView()}, nil
}

func (s *AuthService) fetchGoogleProfile(ctx context.Context, accessToken string) (*googleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserInfoURL, nil)
	if err != nil {
		return nil, apperrors.E(apperrors.Internal, "error building google request", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	client := s.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, apperrors.E(apperrors.Gateway, "error contacting google", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		logger.Warn("Google userinfo returned %d: %s", resp.StatusCode, string(body))
		return nil, apperrors.NewUnauthorizedError(fmt.Sprintf("google rejected the token (status %d)", resp.StatusCode))
	}

	var profile googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, apperrors.E(apperrors.Internal, "error decoding google profile", err)
	}
	return &profile, nil
}

// CheckUserExists reports whether an account with the email exists, and its
// auth provider when it does
func (s *AuthService) CheckUserExists(ctx context.Context, email string) (bool, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := utils.ValidateEmail(email); err != nil {
		return false, "", apperrors.NewInvalidParamsError(err.Error())
	}
	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.Is(err, sql.ErrNoRows) {
			return false, "", nil
		}
		return false, "", apperrors.E(apperrors.Internal, "error loading user", err)
	}
	return true, user.AuthProvider, nil
}
