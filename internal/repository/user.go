package repository

import (
	"context"
	"errors"

	"github.com/3PLWinner/veracore-sync/internal/models"
	"github.com/3PLWinner/veracore-sync/internal/repository/postgres"
	"github.com/jackc/pgx/v5"
)

const (
	pgErrUniqueViolationCode = "23505"

	insertUserQuery = `
						INSERT INTO users (username, password_hash, role)
						VALUES ($1, $2, $3)
						RETURNING id
`
	selectUserByNameQuery = `
						SELECT id, username, password_hash, role FROM users
						WHERE username = $1
`
)

// UserRepository persists warehouse app users
type UserRepository struct {
	db *postgres.DB
}

// NewUserRepository creates new UserRepository instance
func NewUserRepository(db *postgres.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts new user to database
func (ur *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	err := ur.db.QueryRow(ctx, insertUserQuery, user.Username, user.PasswordHash, user.Role).Scan(&user.ID)
	if err != nil {
		if ur.db.ErrorCode(err) == pgErrUniqueViolationCode {
			return nil, models.ErrConflictData
		}
		return nil, err
	}
	return user, nil
}

// GetUserByName returns user by username
func (ur *UserRepository) GetUserByName(ctx context.Context, username string) (*models.User, error) {
	user := models.User{}
	err := ur.db.QueryRow(ctx, selectUserByNameQuery, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}
	return &user, nil
}
