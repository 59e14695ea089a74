package models

import "time"

// Product is catalog metadata for a barcode, independent of stocked
// quantities. Inventory records reference it only via the barcode, so a
// product edit never touches inventory rows.
type Product struct {
	Barcode       string    `json:"barcode" db:"barcode"`
	Name          string    `json:"product_name" db:"product_name"`
	Brand         string    `json:"brand" db:"brand"`
	ImageURL      *string   `json:"image_url" db:"image_url"`
	LastFetchedAt time.Time `json:"last_fetched_at" db:"last_fetched_at"`
}
