package models

// user roles
const (
	RoleWorker     = "worker"
	RoleAdmin      = "admin"
	RoleAccounting = "accounting"
)

// User is warehouse app user entity
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         string
}

// TokenPayload is the authenticated identity carried in the auth token.
type TokenPayload struct {
	UserID   int64
	Username string
	Role     string
}
