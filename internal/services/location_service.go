package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"snacktrack/internal/caching"
	"snacktrack/internal/models"
	"snacktrack/internal/repositories"

	"github.com/google/uuid"
)

// LocationService manages storage locations (fridge, pantry, freezer...).
type LocationService struct {
	locationRepo  repositories.LocationRepository
	inventoryRepo repositories.InventoryRepository
	cacheService  caching.CacheService
}

func NewLocationService(locationRepo repositories.LocationRepository, inventoryRepo repositories.InventoryRepository, cacheService caching.CacheService) *LocationService {
	return &LocationService{
		locationRepo:  locationRepo,
		inventoryRepo: inventoryRepo,
		cacheService:  cacheService,
	}
}

func (s *LocationService) CreateLocation(ctx context.Context, userID uuid.UUID, name string, icon, color *string) (*models.StorageLocation, []ValidationError, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, []ValidationError{{Field: "name", Message: "name is required"}}, nil
	}

	location := &models.StorageLocation{
		UserID: userID,
		Name:   name,
		Icon:   icon,
		Color:  color,
	}
	if err := s.locationRepo.Create(ctx, location); err != nil {
		return nil, nil, wrapRepoError("create storage location", err)
	}

	s.invalidateCache(ctx, userID)
	return location, nil, nil
}

func (s *LocationService) GetLocation(ctx context.Context, userID uuid.UUID, locationID string) (*models.StorageLocation, error) {
	location, err := s.locationRepo.GetByID(ctx, userID, locationID)
	if err != nil {
		return nil, wrapRepoError("get storage location", err)
	}
	return location, nil
}

func (s *LocationService) ListLocations(ctx context.Context, userID uuid.UUID) ([]*models.StorageLocation, error) {
	locations, err := s.locationRepo.List(ctx, userID)
	if err != nil {
		return nil, wrapRepoError("list storage locations", err)
	}
	return locations, nil
}

func (s *LocationService) UpdateLocation(ctx context.Context, location *models.StorageLocation) error {
	if strings.TrimSpace(location.Name) == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if err := s.locationRepo.Update(ctx, location); err != nil {
		return wrapRepoError("update storage location", err)
	}
	s.invalidateCache(ctx, location.UserID)
	return nil
}

// DeleteLocation refuses to remove a location that still holds inventory; the
// caller must move or delete the records first. This keeps every record's
// location reference valid.
func (s *LocationService) DeleteLocation(ctx context.Context, userID uuid.UUID, locationID string) error {
	count, err := s.inventoryRepo.CountByLocation(ctx, userID, locationID)
	if err != nil {
		return wrapRepoError("count inventory for location", err)
	}
	if count > 0 {
		return fmt.Errorf("location %s has %d inventory records: %w", locationID, count, ErrLocationInUse)
	}

	if err := s.locationRepo.Delete(ctx, userID, locationID); err != nil {
		return wrapRepoError("delete storage location", err)
	}
	s.invalidateCache(ctx, userID)
	return nil
}

func (s *LocationService) invalidateCache(ctx context.Context, userID uuid.UUID) {
	if err := s.cacheService.InvalidateUserCache(ctx, userID); err != nil {
		log.Printf("Failed to invalidate cache for user %s: %v", userID.String(), err)
	}
}
