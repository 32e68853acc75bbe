package service

import (
	"context"
	"errors"

	"github.com/3PLWinner/veracore-sync/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is interface for interacting with user-related data
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByName(ctx context.Context, username string) (*models.User, error)
}

// AuthService handles registration and credential checks
type AuthService struct {
	repo  UserRepository
	token TokenService
}

// NewAuthService creates new AuthService instance
func NewAuthService(repo UserRepository, token TokenService) *AuthService {
	return &AuthService{repo: repo, token: token}
}

// Register creates a user with a bcrypt-hashed password.
func (as *AuthService) Register(ctx context.Context, username, password, role string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, models.ErrInvalidCredentials
	}
	if role == "" {
		role = models.RoleWorker
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}

	return as.repo.CreateUser(ctx, &user)
}

// Login checks credentials and issues an auth token.
func (as *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := as.repo.GetUserByName(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrDataNotFound) {
			return "", models.ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", models.ErrInvalidCredentials
	}

	return as.token.CreateToken(user)
}
