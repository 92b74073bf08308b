package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all models
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Timestamps is embedded by records that track edits.
type Timestamps struct {
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewBase stamps a fresh id and creation time.
func NewBase() Base {
	return Base{ID: uuid.New(), CreatedAt: time.Now().UTC()}
}

// JSONMap represents a generic JSON object
type JSONMap map[string]interface{}
