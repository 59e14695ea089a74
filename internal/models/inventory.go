package models

import (
	"time"

	"github.com/google/uuid"
)

// InventorySearchFilter holds search and filter criteria for inventory views
type InventorySearchFilter struct {
	Query      string  `json:"query,omitempty" query:"q"`                 // Substring match against resolved product name
	LocationID *string `json:"location_id,omitempty" query:"location_id"` // Storage location filter
}

// InventoryRecord is one stocked batch of a product at a storage location.
// InventoryID is a stable identifier issued by the persistence layer; it is
// kept as a string because rows arrive with numeric and non-numeric ids mixed.
type InventoryRecord struct {
	InventoryID string     `json:"inventory_id" db:"inventory_id"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	LocationID  string     `json:"location_id" db:"location_id"`
	Barcode     string     `json:"barcode" db:"barcode"`
	Quantity    int        `json:"quantity" db:"quantity"`
	ExpiryDate  *time.Time `json:"expiration_date" db:"expiration_date"` // nil means "does not expire"
	Notes       *string    `json:"notes" db:"notes"`
	LastUpdated time.Time  `json:"last_update" db:"last_update"`
}
