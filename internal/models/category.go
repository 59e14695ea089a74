package models

import (
	"time"

	"github.com/google/uuid"
)

// FoodCategory groups items for display purposes (dairy, frozen, snacks).
type FoodCategory struct {
	CategoryID string    `json:"category_id" db:"category_id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	Name       string    `json:"name" db:"name"`
	Icon       *string   `json:"icon" db:"icon"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
