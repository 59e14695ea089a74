package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"snacktrack/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type InventoryStoreTestSuite struct {
	suite.Suite
	inventoryRepo *MockInventoryRepository
	locationRepo  *MockLocationRepository
	productRepo   *MockProductRepository
	cacheService  *MockCacheService
	store         *InventoryStore
	userID        uuid.UUID
}

func (suite *InventoryStoreTestSuite) SetupTest() {
	suite.inventoryRepo = &MockInventoryRepository{}
	suite.locationRepo = &MockLocationRepository{}
	suite.productRepo = &MockProductRepository{}
	suite.cacheService = &MockCacheService{}
	suite.store = NewInventoryStore(suite.inventoryRepo, suite.locationRepo, suite.productRepo, suite.cacheService)
	suite.userID = uuid.New()

	suite.inventoryRepo.Test(suite.T())
	suite.locationRepo.Test(suite.T())
	suite.productRepo.Test(suite.T())
	suite.cacheService.Test(suite.T())
}

func (suite *InventoryStoreTestSuite) TearDownTest() {
	suite.inventoryRepo.AssertExpectations(suite.T())
	suite.locationRepo.AssertExpectations(suite.T())
	suite.productRepo.AssertExpectations(suite.T())
	suite.cacheService.AssertExpectations(suite.T())
}

func TestInventoryStoreTestSuite(t *testing.T) {
	suite.Run(t, new(InventoryStoreTestSuite))
}

func testRecord(id string, quantity int) *models.InventoryRecord {
	return &models.InventoryRecord{
		InventoryID: id,
		LocationID:  "loc-1",
		Barcode:     "4000417025005",
		Quantity:    quantity,
	}
}

func (suite *InventoryStoreTestSuite) expectLoad(records []*models.InventoryRecord) {
	suite.inventoryRepo.On("List", mock.Anything, suite.userID).Return(records, nil).Once()
	suite.locationRepo.On("List", mock.Anything, suite.userID).Return([]*models.StorageLocation{}, nil).Once()
	suite.productRepo.On("List", mock.Anything).Return([]*models.Product{}, nil).Once()
}

func (suite *InventoryStoreTestSuite) TestLoad_PopulatesSortedSnapshot() {
	suite.expectLoad([]*models.InventoryRecord{testRecord("10", 1), testRecord("2", 3)})

	err := suite.store.Load(context.Background(), suite.userID)
	suite.NoError(err)

	snap := suite.store.Snapshot(suite.userID)
	suite.True(snap.Loaded)
	suite.Len(snap.Records, 2)
	suite.Equal("2", snap.Records[0].InventoryID)
	suite.Equal("10", snap.Records[1].InventoryID)
}

func (suite *InventoryStoreTestSuite) TestLoad_FailureYieldsEmptySnapshot() {
	suite.inventoryRepo.On("List", mock.Anything, suite.userID).Return(nil, errors.New("connection refused")).Once()
	suite.locationRepo.On("List", mock.Anything, suite.userID).Return([]*models.StorageLocation{}, nil).Once()
	suite.productRepo.On("List", mock.Anything).Return([]*models.Product{}, nil).Once()

	err := suite.store.Load(context.Background(), suite.userID)
	suite.Error(err)

	var pErr *PersistenceError
	suite.True(errors.As(err, &pErr))

	snap := suite.store.Snapshot(suite.userID)
	suite.False(snap.Loaded)
	suite.Empty(snap.Records)
}

func (suite *InventoryStoreTestSuite) TestLoad_SingleFlight() {
	started := make(chan struct{})
	release := make(chan struct{})

	suite.inventoryRepo.On("List", mock.Anything, suite.userID).
		Run(func(args mock.Arguments) {
			close(started)
			<-release
		}).
		Return([]*models.InventoryRecord{testRecord("1", 1)}, nil).Once()
	suite.locationRepo.On("List", mock.Anything, suite.userID).Return([]*models.StorageLocation{}, nil).Once()
	suite.productRepo.On("List", mock.Anything).Return([]*models.Product{}, nil).Once()

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- suite.store.Load(context.Background(), suite.userID)
	}()
	<-started

	// Second Load joins the in-flight one instead of fetching again; the
	// Once() expectations above fail the test if a second fetch happens.
	secondDone := make(chan error, 1)
	go func() {
		secondDone <- suite.store.Load(context.Background(), suite.userID)
	}()

	close(release)
	suite.NoError(<-firstDone)
	suite.NoError(<-secondDone)

	snap := suite.store.Snapshot(suite.userID)
	suite.True(snap.Loaded)
	suite.Len(snap.Records, 1)
}

func (suite *InventoryStoreTestSuite) TestMutateQuantity_UpdatesSnapshotAfterPersist() {
	suite.expectLoad([]*models.InventoryRecord{testRecord("1", 5)})
	suite.NoError(suite.store.Load(context.Background(), suite.userID))

	suite.inventoryRepo.On("UpdateQuantity", mock.Anything, suite.userID, "1", 3).Return(nil).Once()
	suite.cacheService.On("InvalidateUserCache", mock.Anything, suite.userID).Return(nil).Once()

	err := suite.store.MutateQuantity(context.Background(), suite.userID, "1", 3)
	suite.NoError(err)

	snap := suite.store.Snapshot(suite.userID)
	suite.Equal(3, snap.Records[0].Quantity)
}

func (suite *InventoryStoreTestSuite) TestMutateQuantity_EarlierSnapshotKeepsOldValue() {
	suite.expectLoad([]*models.InventoryRecord{testRecord("1", 5)})
	suite.NoError(suite.store.Load(context.Background(), suite.userID))

	before := suite.store.Snapshot(suite.userID)

	suite.inventoryRepo.On("UpdateQuantity", mock.Anything, suite.userID, "1", 3).Return(nil).Once()
	suite.cacheService.On("InvalidateUserCache", mock.Anything, suite.userID).Return(nil).Once()
	suite.NoError(suite.store.MutateQuantity(context.Background(), suite.userID, "1", 3))

	// The mutation replaces the record instead of writing through the pointer
	// the earlier snapshot still holds.
	suite.Equal(5, before.Records[0].Quantity)
	suite.Equal(3, suite.store.Snapshot(suite.userID).Records[0].Quantity)
}

func (suite *InventoryStoreTestSuite) TestMutateQuantity_ConcurrentSnapshotReads() {
	suite.expectLoad([]*models.InventoryRecord{testRecord("1", 100)})
	suite.NoError(suite.store.Load(context.Background(), suite.userID))

	suite.inventoryRepo.On("UpdateQuantity", mock.Anything, suite.userID, "1", mock.AnythingOfType("int")).Return(nil)
	suite.cacheService.On("InvalidateUserCache", mock.Anything, suite.userID).Return(nil)

	// A reader iterating its snapshot while mutations run must never observe
	// a record being written; the race detector flags any write-through.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			snap := suite.store.Snapshot(suite.userID)
			_ = snap.Records[0].Quantity
		}
	}()

	for q := 1; q <= 50; q++ {
		suite.NoError(suite.store.MutateQuantity(context.Background(), suite.userID, "1", q))
	}
	<-done
}

func (suite *InventoryStoreTestSuite) TestMutateQuantity_ZeroDeletesRecord() {
	suite.expectLoad([]*models.InventoryRecord{testRecord("1", 5)})
	suite.NoError(suite.store.Load(context.Background(), suite.userID))

	// Zero goes through the delete path: no quantity update, no upsert.
	suite.inventoryRepo.On("Delete", mock.Anything, suite.userID, "1").Return(nil).Once()
	suite.cacheService.On("InvalidateUserCache", mock.Anything, suite.userID).Return(nil).Once()

	err := suite.store.MutateQuantity(context.Background(), suite.userID, "1", 0)
	suite.NoError(err)

	snap := suite.store.Snapshot(suite.userID)
	suite.Empty(snap.Records)
	suite.inventoryRepo.AssertNotCalled(suite.T(), "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.inventoryRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *InventoryStoreTestSuite) TestMutateQuantity_NegativeRejected() {
	err := suite.store.MutateQuantity(context.Background(), suite.userID, "1", -1)

	var vErr ValidationError
	suite.True(errors.As(err, &vErr))
	suite.Equal("quantity", vErr.Field)
}

func (suite *InventoryStoreTestSuite) TestMutateQuantity_PersistFailureLeavesSnapshot() {
	suite.expectLoad([]*models.InventoryRecord{testRecord("1", 5)})
	suite.NoError(suite.store.Load(context.Background(), suite.userID))

	suite.inventoryRepo.On("UpdateQuantity", mock.Anything, suite.userID, "1", 3).
		Return(errors.New("connection reset")).Once()

	err := suite.store.MutateQuantity(context.Background(), suite.userID, "1", 3)
	suite.Error(err)

	var pErr *PersistenceError
	suite.True(errors.As(err, &pErr))

	snap := suite.store.Snapshot(suite.userID)
	suite.Equal(5, snap.Records[0].Quantity)
	suite.cacheService.AssertNotCalled(suite.T(), "InvalidateUserCache", mock.Anything, mock.Anything)
}

func (suite *InventoryStoreTestSuite) TestDeleteRecord_MissingIDIsNoOp() {
	suite.expectLoad([]*models.InventoryRecord{testRecord("1", 5)})
	suite.NoError(suite.store.Load(context.Background(), suite.userID))

	suite.inventoryRepo.On("Delete", mock.Anything, suite.userID, "does-not-exist").Return(nil).Once()
	suite.cacheService.On("InvalidateUserCache", mock.Anything, suite.userID).Return(nil).Once()

	err := suite.store.DeleteRecord(context.Background(), suite.userID, "does-not-exist")
	suite.NoError(err)

	snap := suite.store.Snapshot(suite.userID)
	suite.Len(snap.Records, 1)
}

func (suite *InventoryStoreTestSuite) TestCreateRecord_CollectsAllViolations() {
	expiryDate := time.Now().AddDate(0, 0, 5)

	// Two fields bad, everything else fine: exactly those two come back and
	// nothing is persisted.
	_, violations, err := suite.store.CreateRecord(context.Background(), suite.userID, CreateRecordInput{
		Name:       "",
		Barcode:    "4000417025005",
		LocationID: "loc-1",
		Quantity:   0,
		ExpiryDate: &expiryDate,
	})
	suite.NoError(err)
	suite.Len(violations, 2)

	fields := []string{violations[0].Field, violations[1].Field}
	suite.Contains(fields, "name")
	suite.Contains(fields, "quantity")
	suite.inventoryRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
	suite.cacheService.AssertNotCalled(suite.T(), "InvalidateUserCache", mock.Anything, mock.Anything)
}

func (suite *InventoryStoreTestSuite) TestCreateRecord_PersistsAndSorts() {
	suite.expectLoad([]*models.InventoryRecord{testRecord("5", 1)})
	suite.NoError(suite.store.Load(context.Background(), suite.userID))

	expiryDate := time.Now().AddDate(0, 0, 5)
	suite.inventoryRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.InventoryRecord")).
		Run(func(args mock.Arguments) {
			rec := args.Get(1).(*models.InventoryRecord)
			rec.InventoryID = "2"
			rec.LastUpdated = time.Now()
		}).
		Return(nil).Once()
	suite.cacheService.On("InvalidateUserCache", mock.Anything, suite.userID).Return(nil).Once()

	record, violations, err := suite.store.CreateRecord(context.Background(), suite.userID, CreateRecordInput{
		Name:       "Vollmilch",
		Barcode:    "4000417025005",
		LocationID: "loc-1",
		Quantity:   2,
		ExpiryDate: &expiryDate,
	})
	suite.NoError(err)
	suite.Empty(violations)
	suite.Equal("2", record.InventoryID)
	suite.Equal(suite.userID, record.UserID)

	snap := suite.store.Snapshot(suite.userID)
	suite.Len(snap.Records, 2)
	suite.Equal("2", snap.Records[0].InventoryID)
	suite.Equal("5", snap.Records[1].InventoryID)
}

func (suite *InventoryStoreTestSuite) TestSubscribe_CarriesLatestSnapshot() {
	suite.expectLoad([]*models.InventoryRecord{testRecord("1", 5)})

	ch, cancel := suite.store.Subscribe(suite.userID)
	defer cancel()

	// Current (empty) state arrives immediately.
	initial := <-ch
	suite.False(initial.Loaded)
	suite.Empty(initial.Records)

	suite.NoError(suite.store.Load(context.Background(), suite.userID))

	loaded := <-ch
	suite.True(loaded.Loaded)
	suite.Len(loaded.Records, 1)
}

func (suite *InventoryStoreTestSuite) TestSubscribe_SlowConsumerSeesNewestOnly() {
	suite.expectLoad([]*models.InventoryRecord{testRecord("1", 5)})
	suite.NoError(suite.store.Load(context.Background(), suite.userID))

	ch, cancel := suite.store.Subscribe(suite.userID)
	defer cancel()

	suite.inventoryRepo.On("UpdateQuantity", mock.Anything, suite.userID, "1", 4).Return(nil).Once()
	suite.inventoryRepo.On("UpdateQuantity", mock.Anything, suite.userID, "1", 3).Return(nil).Once()
	suite.cacheService.On("InvalidateUserCache", mock.Anything, suite.userID).Return(nil).Twice()

	// Two mutations without the subscriber reading in between: the unread
	// snapshot is replaced, not queued.
	suite.NoError(suite.store.MutateQuantity(context.Background(), suite.userID, "1", 4))
	suite.NoError(suite.store.MutateQuantity(context.Background(), suite.userID, "1", 3))

	snap := <-ch
	suite.Equal(3, snap.Records[0].Quantity)

	select {
	case extra := <-ch:
		suite.Failf("unexpected snapshot", "got %+v", extra)
	default:
	}
}

func (suite *InventoryStoreTestSuite) TestSubscribe_CancelIsIdempotent() {
	ch, cancel := suite.store.Subscribe(suite.userID)
	<-ch // drain the initial snapshot

	cancel()
	cancel() // second call must not panic

	_, open := <-ch
	assert.False(suite.T(), open)
}

func (suite *InventoryStoreTestSuite) TestEnsureLoaded_OnlyLoadsOnce() {
	suite.expectLoad([]*models.InventoryRecord{testRecord("1", 5)})

	suite.NoError(suite.store.EnsureLoaded(context.Background(), suite.userID))
	// Second call is a no-op; Once() expectations catch a repeated fetch.
	suite.NoError(suite.store.EnsureLoaded(context.Background(), suite.userID))
}
