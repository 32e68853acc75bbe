package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/3PLWinner/veracore-sync/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const tokenDuration = 12 * time.Hour

// TokenService issues and verifies auth tokens
type TokenService interface {
	CreateToken(user *models.User) (string, error)
	VerifyToken(tokenString string) (*models.TokenPayload, error)
}

type tokenClaims struct {
	jwt.RegisteredClaims
	UserID   int64  `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// JWTToken implements TokenService using signed JWT tokens
type JWTToken struct {
	secret []byte
}

// NewJWTToken creates new JWTToken instance
func NewJWTToken(secret []byte) *JWTToken {
	return &JWTToken{secret: secret}
}

// CreateToken creates a signed token for the user
func (t *JWTToken) CreateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenDuration)),
		},
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// VerifyToken parses and validates the token string
func (t *JWTToken) VerifyToken(tokenString string) (*models.TokenPayload, error) {
	claims := tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return &models.TokenPayload{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}
