package analytics

import (
	"time"

	"snacktrack/internal/expiry"
	"snacktrack/internal/models"
)

// InventoryStats is derived on demand from the current record set and never
// persisted, so it cannot go stale between loads.
type InventoryStats struct {
	TotalItems        int                     `json:"total_items"`
	ItemsByLocation   map[string]int          `json:"items_by_location"`
	ExpiringSoonCount int                     `json:"expiring_soon_count"`
	MostUsedLocation  *models.StorageLocation `json:"most_used_location"`
}

// Aggregate computes inventory statistics for one user's record set.
//
// TotalItems sums quantities, not record count, so a record holding six eggs
// counts as six. ItemsByLocation only contains locations with at least one
// matching record; records whose location id matches nothing in locations
// (orphaned references) still count toward TotalItems. ExpiringSoonCount
// includes already-expired records. MostUsedLocation is nil when no location
// holds stock; ties resolve to the first location in iteration order.
func Aggregate(records []*models.InventoryRecord, locations []*models.StorageLocation, thresholdDays int, today time.Time) *InventoryStats {
	stats := &InventoryStats{
		ItemsByLocation: make(map[string]int),
	}

	known := make(map[string]bool, len(locations))
	for _, loc := range locations {
		known[loc.LocationID] = true
	}

	th := expiry.DefaultThresholds()
	for _, rec := range records {
		stats.TotalItems += rec.Quantity

		if known[rec.LocationID] {
			stats.ItemsByLocation[rec.LocationID] += rec.Quantity
		}

		result := expiry.Classify(rec.ExpiryDate, today, th)
		if result.HasExpiry && result.DaysRemaining <= thresholdDays {
			stats.ExpiringSoonCount++
		}
	}

	bestQuantity := 0
	for _, loc := range locations {
		if quantity := stats.ItemsByLocation[loc.LocationID]; quantity > bestQuantity {
			stats.MostUsedLocation = loc
			bestQuantity = quantity
		}
	}

	return stats
}
