package models

import (
	"time"

	"github.com/google/uuid"
)

// StorageLocation is a named storage bucket (fridge, freezer, pantry).
// Icon and Color are display hints only; nothing in the core logic reads them.
type StorageLocation struct {
	LocationID string    `json:"location_id" db:"location_id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	Name       string    `json:"name" db:"name"`
	Icon       *string   `json:"icon" db:"icon"`
	Color      *string   `json:"color" db:"color"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
