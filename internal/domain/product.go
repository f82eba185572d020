package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a scale-model car in the catalog. JSON field names
// follow the storefront's public contract, which is in Spanish.
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"nombre" db:"nombre"`
	Description string    `json:"descripcion" db:"descripcion"`
	Price       float64   `json:"precio" db:"precio"`
	Stock       int       `json:"stock" db:"stock"`
	ImageURL    string    `json:"imagen_url" db:"imagen_url"`
	Category    string    `json:"categoria" db:"categoria"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
