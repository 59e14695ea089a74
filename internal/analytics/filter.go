package analytics

import (
	"sort"
	"strconv"
	"strings"

	"snacktrack/internal/models"
)

// Filter returns the records matching a free-text query and an optional
// location restriction. The query is trimmed and lower-cased; matching is
// plain substring containment against the record's resolved display name
// (names maps barcode to product name). An empty or whitespace-only query
// matches every record; an empty locationID matches every location.
//
// The result is a fresh slice ordered by inventory id ascending, numeric ids
// first (compared as numbers, since the persistence layer hands ids back as
// strings), then non-numeric ids in their original relative order.
func Filter(records []*models.InventoryRecord, names map[string]string, query string, locationID string) []*models.InventoryRecord {
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]*models.InventoryRecord, 0, len(records))
	for _, rec := range records {
		if locationID != "" && rec.LocationID != locationID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(names[rec.Barcode]), q) {
			continue
		}
		out = append(out, rec)
	}

	SortByInventoryID(out)
	return out
}

// SortByInventoryID orders records ascending by inventory id interpreted
// numerically. Non-numeric ids sort after all numeric ones and keep their
// relative input order.
func SortByInventoryID(records []*models.InventoryRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, errA := strconv.Atoi(records[i].InventoryID)
		b, errB := strconv.Atoi(records[j].InventoryID)
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		default:
			return false
		}
	})
}
