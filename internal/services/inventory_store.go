package services

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"snacktrack/internal/analytics"
	"snacktrack/internal/caching"
	"snacktrack/internal/models"
	"snacktrack/internal/repositories"

	"github.com/google/uuid"
)

// Snapshot is the in-memory copy of one user's inventory, location and
// product collections between loads. Slices are fresh copies; receivers may
// range freely but must not mutate the pointed-to records.
type Snapshot struct {
	Records   []*models.InventoryRecord
	Locations []*models.StorageLocation
	Products  []*models.Product
	Loaded    bool
}

// CreateRecordInput carries the fields of a new stock entry. Name is the
// resolved display name from the barcode lookup; it is validated here but
// persisted on the product row, not the inventory row.
type CreateRecordInput struct {
	Name       string     `json:"name"`
	Barcode    string     `json:"barcode"`
	LocationID string     `json:"location_id"`
	Quantity   int        `json:"quantity"`
	ExpiryDate *time.Time `json:"expiration_date"`
	Notes      *string    `json:"notes"`
}

type userState struct {
	records   []*models.InventoryRecord
	locations []*models.StorageLocation
	products  []*models.Product
	loaded    bool
	loadErr   error
	loading   chan struct{} // non-nil while a load is in flight

	subs      map[int]chan Snapshot
	nextSubID int
}

func (st *userState) snapshotLocked() Snapshot {
	return Snapshot{
		Records:   append([]*models.InventoryRecord(nil), st.records...),
		Locations: append([]*models.StorageLocation(nil), st.locations...),
		Products:  append([]*models.Product(nil), st.products...),
		Loaded:    st.loaded,
	}
}

// InventoryStore orchestrates the per-user inventory snapshot. It is the only
// component that talks to the persistence layer for inventory mutations;
// classification, aggregation and filtering are delegated to the pure
// functions in the expiry and analytics packages.
//
// All mutations are confirm-then-update: the external store is written first
// and the snapshot only changes once that write succeeded, so a failed persist
// never leaves local and remote state diverged.
type InventoryStore struct {
	inventoryRepo repositories.InventoryRepository
	locationRepo  repositories.LocationRepository
	productRepo   repositories.ProductRepository
	cacheService  caching.CacheService

	mu    sync.Mutex
	users map[uuid.UUID]*userState
}

func NewInventoryStore(inventoryRepo repositories.InventoryRepository, locationRepo repositories.LocationRepository, productRepo repositories.ProductRepository, cacheService caching.CacheService) *InventoryStore {
	return &InventoryStore{
		inventoryRepo: inventoryRepo,
		locationRepo:  locationRepo,
		productRepo:   productRepo,
		cacheService:  cacheService,
		users:         make(map[uuid.UUID]*userState),
	}
}

// invalidateStatsCache drops the user's cached stats blob after a successful
// stock mutation so GET /stats never serves pre-mutation numbers for the full
// cache TTL. Invalidation failure is logged, not surfaced: the write already
// succeeded and the blob expires on its own.
func (s *InventoryStore) invalidateStatsCache(ctx context.Context, userID uuid.UUID) {
	if err := s.cacheService.InvalidateUserCache(ctx, userID); err != nil {
		log.Printf("Failed to invalidate cache for user %s: %v", userID.String(), err)
	}
}

func (s *InventoryStore) stateLocked(userID uuid.UUID) *userState {
	st, ok := s.users[userID]
	if !ok {
		st = &userState{subs: make(map[int]chan Snapshot)}
		s.users[userID] = st
	}
	return st
}

// Load fetches the user's records, locations and products and replaces the
// snapshot. Calling Load while a load is already in flight does not issue a
// second fetch; the caller joins the in-flight load and gets its outcome. A
// failed load clears the snapshot to empty and is not retried automatically.
func (s *InventoryStore) Load(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	st := s.stateLocked(userID)
	if st.loading != nil {
		done := st.loading
		s.mu.Unlock()
		<-done
		s.mu.Lock()
		err := st.loadErr
		s.mu.Unlock()
		return err
	}
	done := make(chan struct{})
	st.loading = done
	s.mu.Unlock()

	records, recErr := s.inventoryRepo.List(ctx, userID)
	locations, locErr := s.locationRepo.List(ctx, userID)
	products, prodErr := s.productRepo.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	st.loading = nil
	defer close(done)

	if err := firstError(recErr, locErr, prodErr); err != nil {
		log.Printf("Inventory load failed for user %s: %v", userID.String(), err)
		st.records, st.locations, st.products = nil, nil, nil
		st.loaded = false
		st.loadErr = &PersistenceError{Op: "load inventory", Err: err}
		s.notifyLocked(st)
		return st.loadErr
	}

	analytics.SortByInventoryID(records)
	st.records = records
	st.locations = locations
	st.products = products
	st.loaded = true
	st.loadErr = nil
	s.notifyLocked(st)
	return nil
}

// EnsureLoaded performs an initial Load once; afterwards it is a cheap no-op
// until someone calls Load again explicitly.
func (s *InventoryStore) EnsureLoaded(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	loaded := s.stateLocked(userID).loaded
	s.mu.Unlock()
	if loaded {
		return nil
	}
	return s.Load(ctx, userID)
}

// Snapshot returns a copy of the current state without touching persistence.
func (s *InventoryStore) Snapshot(userID uuid.UUID) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked(userID).snapshotLocked()
}

// Subscribe registers a state listener. The channel immediately carries the
// current snapshot and then the latest snapshot after every change; slow
// consumers only ever see the newest state (intermediate snapshots are
// replaced, not queued). The returned func unsubscribes and is idempotent.
func (s *InventoryStore) Subscribe(userID uuid.UUID) (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stateLocked(userID)
	id := st.nextSubID
	st.nextSubID++
	ch := make(chan Snapshot, 1)
	st.subs[id] = ch
	ch <- st.snapshotLocked()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := st.subs[id]; ok {
			delete(st.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (s *InventoryStore) notifyLocked(st *userState) {
	snap := st.snapshotLocked()
	for _, ch := range st.subs {
		select {
		case <-ch: // drop the stale snapshot nobody read yet
		default:
		}
		ch <- snap
	}
}

// awaitLoad blocks until no load is in flight for the user, so mutations
// queue behind a load instead of acting on a snapshot about to be replaced.
func (s *InventoryStore) awaitLoad(userID uuid.UUID) {
	s.mu.Lock()
	for {
		done := s.stateLocked(userID).loading
		if done == nil {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
		<-done
		s.mu.Lock()
	}
}

// CreateRecord validates a new stock entry and persists it. All violated
// preconditions are returned together so the caller can render every problem
// at once; nothing is persisted unless the list is empty.
func (s *InventoryStore) CreateRecord(ctx context.Context, userID uuid.UUID, input CreateRecordInput) (*models.InventoryRecord, []ValidationError, error) {
	var violations []ValidationError
	if strings.TrimSpace(input.Name) == "" {
		violations = append(violations, ValidationError{Field: "name", Message: "name is required"})
	}
	if strings.TrimSpace(input.Barcode) == "" {
		violations = append(violations, ValidationError{Field: "barcode", Message: "barcode is required"})
	}
	if strings.TrimSpace(input.LocationID) == "" {
		violations = append(violations, ValidationError{Field: "location_id", Message: "storage location is required"})
	}
	if input.Quantity <= 0 {
		violations = append(violations, ValidationError{Field: "quantity", Message: "quantity must be positive"})
	}
	if input.ExpiryDate == nil {
		violations = append(violations, ValidationError{Field: "expiration_date", Message: "expiration date is required"})
	}
	if len(violations) > 0 {
		return nil, violations, nil
	}

	s.awaitLoad(userID)

	record := &models.InventoryRecord{
		UserID:     userID,
		LocationID: input.LocationID,
		Barcode:    input.Barcode,
		Quantity:   input.Quantity,
		ExpiryDate: input.ExpiryDate,
		Notes:      input.Notes,
	}
	if err := s.inventoryRepo.Create(ctx, record); err != nil {
		return nil, nil, wrapRepoError("create inventory record", err)
	}

	s.invalidateStatsCache(ctx, userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stateLocked(userID)
	st.records = append(st.records, record)
	analytics.SortByInventoryID(st.records)
	s.notifyLocked(st)
	return record, nil, nil
}

// MutateQuantity sets a record's quantity. Zero removes the record entirely
// (the decrement-to-zero path); negative values are rejected up front.
func (s *InventoryStore) MutateQuantity(ctx context.Context, userID uuid.UUID, inventoryID string, newQuantity int) error {
	if newQuantity < 0 {
		return ValidationError{Field: "quantity", Message: "quantity must be a non-negative integer"}
	}
	if newQuantity == 0 {
		return s.DeleteRecord(ctx, userID, inventoryID)
	}

	s.awaitLoad(userID)

	if err := s.inventoryRepo.UpdateQuantity(ctx, userID, inventoryID, newQuantity); err != nil {
		return wrapRepoError("update inventory quantity", err)
	}

	s.invalidateStatsCache(ctx, userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stateLocked(userID)
	for i, rec := range st.records {
		if rec.InventoryID == inventoryID {
			// Replace, never write through: handlers and subscribers hold
			// snapshots that share these record pointers.
			updated := *rec
			updated.Quantity = newQuantity
			updated.LastUpdated = time.Now()
			st.records[i] = &updated
			break
		}
	}
	s.notifyLocked(st)
	return nil
}

// DeleteRecord removes a record from the external store and the snapshot.
// Deleting an id that is already gone is a no-op, not an error.
func (s *InventoryStore) DeleteRecord(ctx context.Context, userID uuid.UUID, inventoryID string) error {
	s.awaitLoad(userID)

	if err := s.inventoryRepo.Delete(ctx, userID, inventoryID); err != nil {
		return wrapRepoError("delete inventory record", err)
	}

	s.invalidateStatsCache(ctx, userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stateLocked(userID)
	kept := st.records[:0]
	for _, rec := range st.records {
		if rec.InventoryID != inventoryID {
			kept = append(kept, rec)
		}
	}
	st.records = kept
	s.notifyLocked(st)
	return nil
}

// Stats aggregates the current snapshot. Derived, never cached here: every
// call reflects the snapshot and clock of this moment.
func (s *InventoryStore) Stats(userID uuid.UUID, thresholdDays int) *analytics.InventoryStats {
	s.mu.Lock()
	st := s.stateLocked(userID)
	records := append([]*models.InventoryRecord(nil), st.records...)
	locations := append([]*models.StorageLocation(nil), st.locations...)
	s.mu.Unlock()

	return analytics.Aggregate(records, locations, thresholdDays, time.Now())
}

// FilterRecords applies the free-text/location filter against the snapshot,
// resolving display names through the product collection.
func (s *InventoryStore) FilterRecords(userID uuid.UUID, query string, locationID string) []*models.InventoryRecord {
	s.mu.Lock()
	st := s.stateLocked(userID)
	records := append([]*models.InventoryRecord(nil), st.records...)
	names := make(map[string]string, len(st.products))
	for _, p := range st.products {
		names[p.Barcode] = p.Name
	}
	s.mu.Unlock()

	return analytics.Filter(records, names, query, locationID)
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
