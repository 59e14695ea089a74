package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"snacktrack/internal/caching"
	"snacktrack/internal/expiry"
	"snacktrack/internal/models"
	"snacktrack/internal/repositories"

	"github.com/google/uuid"
)

const statsCacheTTL = 5 * time.Minute

// StatsService computes and caches per-user inventory statistics.
type StatsService struct {
	inventoryRepo repositories.InventoryRepository
	locationRepo  repositories.LocationRepository
	productRepo   repositories.ProductRepository
	cacheService  caching.CacheService
}

// ExpiringItem is one row of the expiring-soon listing, with the product
// name resolved for display.
type ExpiringItem struct {
	InventoryID string        `json:"inventory_id"`
	Name        string        `json:"name"`
	Brand       string        `json:"brand"`
	Quantity    int           `json:"quantity"`
	LocationID  string        `json:"location_id"`
	ExpiryDate  *time.Time    `json:"expiration_date"`
	Result      expiry.Result `json:"expiry"`
	Label       string        `json:"label"`
}

func NewStatsService(inventoryRepo repositories.InventoryRepository, locationRepo repositories.LocationRepository, productRepo repositories.ProductRepository, cacheService caching.CacheService) *StatsService {
	return &StatsService{
		inventoryRepo: inventoryRepo,
		locationRepo:  locationRepo,
		productRepo:   productRepo,
		cacheService:  cacheService,
	}
}

func statsCacheKey(userID uuid.UUID, thresholdDays int) string {
	return fmt.Sprintf("snacktrack:stats:%s:%d", userID.String(), thresholdDays)
}

// GetInventoryStats returns the aggregated stats for one user, serving from
// the cache when possible. Cache failures only log; the database remains the
// source of truth.
func (s *StatsService) GetInventoryStats(ctx context.Context, userID uuid.UUID, thresholdDays int) (*InventoryStats, error) {
	key := statsCacheKey(userID, thresholdDays)
	if cached, err := s.cacheService.GetString(ctx, key); err != nil {
		log.Printf("Stats cache read failed for user %s: %v", userID.String(), err)
	} else if cached != "" {
		var stats InventoryStats
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			return &stats, nil
		}
	}

	stats, err := s.computeStats(ctx, userID, thresholdDays)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(stats); err == nil {
		if cacheErr := s.cacheService.SetString(ctx, key, string(data), statsCacheTTL); cacheErr != nil {
			log.Printf("Failed to cache stats for user %s: %v", userID.String(), cacheErr)
		}
	}

	return stats, nil
}

// RefreshInventoryStats drops the cached entry and recomputes it. The
// background scheduler uses this to keep dashboards warm.
func (s *StatsService) RefreshInventoryStats(ctx context.Context, userID uuid.UUID, thresholdDays int) (*InventoryStats, error) {
	if err := s.cacheService.Delete(ctx, statsCacheKey(userID, thresholdDays)); err != nil {
		log.Printf("Failed to invalidate stats cache for user %s: %v", userID.String(), err)
	}
	return s.GetInventoryStats(ctx, userID, thresholdDays)
}

func (s *StatsService) computeStats(ctx context.Context, userID uuid.UUID, thresholdDays int) (*InventoryStats, error) {
	records, err := s.inventoryRepo.List(ctx, userID)
	if err != nil {
		log.Printf("Failed to list inventory for stats: %v", err)
		return nil, err
	}
	locations, err := s.locationRepo.List(ctx, userID)
	if err != nil {
		log.Printf("Failed to list locations for stats: %v", err)
		return nil, err
	}
	return Aggregate(records, locations, thresholdDays, time.Now()), nil
}

// GetExpiringItems lists records expiring within thresholdDays (expired ones
// included), ascending by expiry date, product names resolved. limit <= 0
// means no limit.
func (s *StatsService) GetExpiringItems(ctx context.Context, userID uuid.UUID, thresholdDays int, limit int) ([]*ExpiringItem, error) {
	records, err := s.inventoryRepo.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]*models.Product, len(products))
	for _, p := range products {
		names[p.Barcode] = p
	}

	today := time.Now()
	th := expiry.DefaultThresholds()

	var expiring []*models.InventoryRecord
	for _, rec := range records {
		result := expiry.Classify(rec.ExpiryDate, today, th)
		if result.HasExpiry && result.DaysRemaining <= thresholdDays {
			expiring = append(expiring, rec)
		}
	}

	sortByExpiryDate(expiring)

	items := make([]*ExpiringItem, 0, len(expiring))
	for _, rec := range expiring {
		result := expiry.Classify(rec.ExpiryDate, today, th)
		item := &ExpiringItem{
			InventoryID: rec.InventoryID,
			Name:        "Unbekanntes Produkt",
			Quantity:    rec.Quantity,
			LocationID:  rec.LocationID,
			ExpiryDate:  rec.ExpiryDate,
			Result:      result,
			Label:       expiry.Describe(result),
		}
		if p, ok := names[rec.Barcode]; ok {
			item.Name = p.Name
			item.Brand = p.Brand
		}
		items = append(items, item)
	}

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func sortByExpiryDate(records []*models.InventoryRecord) {
	// Every record here has an expiry date; stable keeps insertion order for
	// equal dates.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ExpiryDate.Before(*records[j].ExpiryDate)
	})
}
