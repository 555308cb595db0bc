package handlers

import (
	"encoding/json"
	"net/http"

	"coursehub/http/middleware"
	resp "coursehub/http/response"
	"coursehub/services"
)

// AuthHandler exposes the account endpoints
type AuthHandler struct {
	Auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		resp.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.Auth.Register(r.Context(), req)
	if err != nil {
		resp.Error(w, err)
		return
	}
	resp.OKMessage(w, http.StatusCreated, "User registered successfully", user)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserEmail string `json:"userEmail"`
		Password  string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		resp.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.Auth.Login(r.Context(), req.UserEmail, req.Password)
	if err != nil {
		resp.Error(w, err)
		return
	}
	resp.OKMessage(w, http.StatusOK, "Logged in successfully", session)
}

// GoogleLogin handles POST /auth/google
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		resp.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.Auth.GoogleLogin(r.Context(), req.AccessToken)
	if err != nil {
		resp.Error(w, err)
		return
	}
	resp.OKMessage(w, http.StatusOK, "Logged in successfully", session)
}

// CheckUser handles GET /auth/check-user?email=
func (h *AuthHandler) CheckUser(w http.ResponseWriter, r *http.Request) {
	exists, provider, err := h.Auth.CheckUserExists(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		resp.Error(w, err)
		return
	}
	resp.OK(w, http.StatusOK, map[string]interface{}{
		"exists":       exists,
		"authProvider": provider,
	})
}

// CheckAuth handles GET /auth/check behind the auth middleware
func (h *AuthHandler) CheckAuth(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.UserFromContext(r.Context())
	if !ok {
		resp.Fail(w, http.StatusUnauthorized, "User is not authenticated")
		return
	}
	resp.OKMessage(w, http.StatusOK, "Authenticated user", map[string]interface{}{
		"user": map[string]interface{}{
			"_id":       claims.UserID,
			"userName":  claims.UserName,
			"userEmail": claims.UserEmail,
			"role":      claims.Role,
		},
	})
}
