package domain

import (
	"time"

	"github.com/google/uuid"
)

// Roles understood by the authorization layer. There are exactly two, with
// no hierarchy between them.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// ValidRole reports whether role is one of the two known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleCustomer
}

// User represents an account in the directory. The password hash never
// leaves the service boundary.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"nombre" db:"nombre"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"rol" db:"rol"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
