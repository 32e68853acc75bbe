package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/3PLWinner/veracore-sync/internal/models"
)

// AuthService handles registration and credential checks
type AuthService interface {
	Register(ctx context.Context, username, password, role string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
}

// UserHandler represents HTTP handler for auth-related requests
type UserHandler struct {
	svc AuthService
}

// NewUserHandler creates new UserHandler instance
func NewUserHandler(svc AuthService) *UserHandler {
	return &UserHandler{svc: svc}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// RegisterUser registers a new user
// 200 — user registered and authenticated
// 400 — bad request format
// 409 — username already taken
// 500 — internal error
func (uh *UserHandler) RegisterUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		_, err := uh.svc.Register(r.Context(), req.Username, req.Password, req.Role)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrConflictData):
				http.Error(w, "username already taken", http.StatusConflict)
			case errors.Is(err, models.ErrInvalidCredentials):
				http.Error(w, "bad request", http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		uh.login(w, r, req.Username, req.Password)
	}
}

// LoginUser authenticates a user
// 200 — authenticated, auth cookie set
// 400 — bad request format
// 401 — invalid login or password
// 500 — internal error
func (uh *UserHandler) LoginUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		uh.login(w, r, req.Username, req.Password)
	}
}

func (uh *UserHandler) login(w http.ResponseWriter, r *http.Request, username, password string) {
	token, err := uh.svc.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			http.Error(w, "invalid login or password", http.StatusUnauthorized)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusOK)
}
