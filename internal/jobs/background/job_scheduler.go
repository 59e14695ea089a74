package background

import (
	"context"
	"log"
	"sync"
	"time"

	"snacktrack/internal/analytics"
	"snacktrack/internal/jobs"
	"snacktrack/internal/repositories"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

const statsRefreshThresholdDays = 7

// JobScheduler manages the recurring background jobs: the daily expiry scan
// and the periodic stats cache refresh.
type JobScheduler struct {
	scheduler     gocron.Scheduler
	statsService  *analytics.StatsService
	alertService  *jobs.ExpiryAlertService
	inventoryRepo repositories.InventoryRepository

	mu   sync.RWMutex
	jobs map[string]gocron.Job
}

func NewJobScheduler(statsService *analytics.StatsService, alertService *jobs.ExpiryAlertService, inventoryRepo repositories.InventoryRepository) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:     scheduler,
		statsService:  statsService,
		alertService:  alertService,
		inventoryRepo: inventoryRepo,
		jobs:          make(map[string]gocron.Job),
	}
	js.registerJobs()
	return js, nil
}

func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	// Expiry scan once a day, shortly after midnight so classifications are
	// computed against the new date.
	expiryJob, err := js.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 15, 0))),
		gocron.NewTask(js.runExpiryScan, context.Background()),
		gocron.WithName("expiry-scan"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create expiry scan job: %v", err)
	} else {
		js.jobs["expiry-scan"] = expiryJob
	}

	// Stats cache refresh keeps dashboards warm.
	statsJob, err := js.scheduler.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(js.refreshStats, context.Background()),
		gocron.WithName("stats-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create stats refresh job: %v", err)
	} else {
		js.jobs["stats-refresh"] = statsJob
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
}

func (js *JobScheduler) runExpiryScan(ctx context.Context) error {
	return js.alertService.ScanAllUsers(ctx)
}

func (js *JobScheduler) refreshStats(ctx context.Context) error {
	userIDs, err := js.inventoryRepo.ListUserIDs(ctx)
	if err != nil {
		log.Printf("Stats refresh failed to list users: %v", err)
		return err
	}

	// Bounded concurrency so a large user base does not stampede the pool.
	semaphore := make(chan struct{}, 5)
	var wg sync.WaitGroup
	for _, userID := range userIDs {
		wg.Add(1)
		go func(userID uuid.UUID) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if _, err := js.statsService.RefreshInventoryStats(ctx, userID, statsRefreshThresholdDays); err != nil {
				log.Printf("Failed to refresh stats for user %s: %v", userID.String(), err)
			}
		}(userID)
	}
	wg.Wait()
	return nil
}

// JobNames lists the registered jobs, for the health/debug surface.
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	return names
}
