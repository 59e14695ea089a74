package jobs

import (
	"context"
	"log"
	"time"

	"snacktrack/internal/expiry"
	"snacktrack/internal/models"
	"snacktrack/internal/repositories"

	"github.com/google/uuid"
)

// Swapped out in tests to pin the clock.
var timeNow = time.Now

// ExpiryAlert pairs a record with its classification for notification
// purposes.
type ExpiryAlert struct {
	Record *models.InventoryRecord
	Result expiry.Result
	Label  string
}

// ExpiryAlertService scans inventories for records that are expired or about
// to expire. Notifications are log-only for now; the scan is the piece worth
// keeping separate so a mail or push channel can hang off it later.
type ExpiryAlertService struct {
	inventoryRepo repositories.InventoryRepository
	thresholds    expiry.Thresholds
}

func NewExpiryAlertService(inventoryRepo repositories.InventoryRepository) *ExpiryAlertService {
	return &ExpiryAlertService{
		inventoryRepo: inventoryRepo,
		thresholds:    expiry.DefaultThresholds(),
	}
}

// CheckExpiring returns the user's records classified worse than Ok, using
// the service's thresholds.
func (s *ExpiryAlertService) CheckExpiring(ctx context.Context, userID uuid.UUID) ([]ExpiryAlert, error) {
	records, err := s.inventoryRepo.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := timeNow()
	var alerts []ExpiryAlert
	for _, rec := range records {
		result := expiry.Classify(rec.ExpiryDate, now, s.thresholds)
		if result.Classification == expiry.Ok {
			continue
		}
		alerts = append(alerts, ExpiryAlert{
			Record: rec,
			Result: result,
			Label:  expiry.Describe(result),
		})
	}
	return alerts, nil
}

// ScanAllUsers runs the expiry check for every user with inventory and logs
// the findings.
func (s *ExpiryAlertService) ScanAllUsers(ctx context.Context) error {
	userIDs, err := s.inventoryRepo.ListUserIDs(ctx)
	if err != nil {
		log.Printf("Expiry scan failed to list users: %v", err)
		return err
	}

	for _, userID := range userIDs {
		alerts, err := s.CheckExpiring(ctx, userID)
		if err != nil {
			log.Printf("Expiry check failed for user %s: %v", userID.String(), err)
			continue
		}
		s.LogExpiryAlerts(userID, alerts)
	}

	log.Printf("Expiry scan completed for %d users", len(userIDs))
	return nil
}

// LogExpiryAlerts writes one line per alerting record.
func (s *ExpiryAlertService) LogExpiryAlerts(userID uuid.UUID, alerts []ExpiryAlert) {
	for _, alert := range alerts {
		log.Printf("ALERT: user %s record %s (%s): %s",
			userID.String(), alert.Record.InventoryID, alert.Result.Classification, alert.Label)
	}
}
