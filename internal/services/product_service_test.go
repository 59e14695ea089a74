package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"snacktrack/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ProductServiceTestSuite struct {
	suite.Suite
	productRepo  *MockProductRepository
	cacheService *MockCacheService
	lookupClient *MockProductLookup
	minioService *MockMinioService
	service      *ProductService
}

func (suite *ProductServiceTestSuite) SetupTest() {
	suite.productRepo = &MockProductRepository{}
	suite.cacheService = &MockCacheService{}
	suite.lookupClient = &MockProductLookup{}
	suite.minioService = &MockMinioService{}
	suite.service = NewProductService(suite.productRepo, suite.cacheService, suite.lookupClient, suite.minioService)

	suite.productRepo.Test(suite.T())
	suite.cacheService.Test(suite.T())
	suite.lookupClient.Test(suite.T())
	suite.minioService.Test(suite.T())
}

func (suite *ProductServiceTestSuite) TearDownTest() {
	suite.productRepo.AssertExpectations(suite.T())
	suite.cacheService.AssertExpectations(suite.T())
	suite.lookupClient.AssertExpectations(suite.T())
	suite.minioService.AssertExpectations(suite.T())
}

func TestProductServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProductServiceTestSuite))
}

const testBarcode = "4000417025005"

func testProduct(fetchedAt time.Time) *models.Product {
	return &models.Product{
		Barcode:       testBarcode,
		Name:          "Vollmilch",
		Brand:         "Molkerei",
		LastFetchedAt: fetchedAt,
	}
}

func (suite *ProductServiceTestSuite) TestGetOrFetchProduct_CacheHit() {
	cached := testProduct(time.Now())
	suite.cacheService.On("GetProduct", mock.Anything, testBarcode).Return(cached, nil).Once()

	product, err := suite.service.GetOrFetchProduct(context.Background(), testBarcode)
	suite.NoError(err)
	suite.Equal(cached, product)
	suite.productRepo.AssertNotCalled(suite.T(), "GetByBarcode", mock.Anything, mock.Anything)
	suite.lookupClient.AssertNotCalled(suite.T(), "FetchProduct", mock.Anything, mock.Anything)
}

func (suite *ProductServiceTestSuite) TestGetOrFetchProduct_FreshCatalogRowServed() {
	stored := testProduct(time.Now().Add(-time.Hour))
	suite.cacheService.On("GetProduct", mock.Anything, testBarcode).Return(nil, nil).Once()
	suite.productRepo.On("GetByBarcode", mock.Anything, testBarcode).Return(stored, nil).Once()
	suite.cacheService.On("SetProduct", mock.Anything, stored, productCacheTTL).Return(nil).Once()

	product, err := suite.service.GetOrFetchProduct(context.Background(), testBarcode)
	suite.NoError(err)
	suite.Equal(stored, product)
	suite.lookupClient.AssertNotCalled(suite.T(), "FetchProduct", mock.Anything, mock.Anything)
}

func (suite *ProductServiceTestSuite) TestGetOrFetchProduct_MissFetchesAndWritesBack() {
	fetched := testProduct(time.Now())
	suite.cacheService.On("GetProduct", mock.Anything, testBarcode).Return(nil, nil).Once()
	suite.productRepo.On("GetByBarcode", mock.Anything, testBarcode).Return(nil, pgx.ErrNoRows).Once()
	suite.lookupClient.On("FetchProduct", mock.Anything, testBarcode).Return(fetched, nil).Once()
	suite.productRepo.On("Upsert", mock.Anything, fetched).Return(nil).Once()
	suite.cacheService.On("SetProduct", mock.Anything, fetched, productCacheTTL).Return(nil).Once()

	product, err := suite.service.GetOrFetchProduct(context.Background(), testBarcode)
	suite.NoError(err)
	suite.Equal(fetched, product)
}

func (suite *ProductServiceTestSuite) TestGetOrFetchProduct_UnknownEverywhere() {
	suite.cacheService.On("GetProduct", mock.Anything, testBarcode).Return(nil, nil).Once()
	suite.productRepo.On("GetByBarcode", mock.Anything, testBarcode).Return(nil, pgx.ErrNoRows).Once()
	suite.lookupClient.On("FetchProduct", mock.Anything, testBarcode).Return(nil, nil).Once()

	_, err := suite.service.GetOrFetchProduct(context.Background(), testBarcode)
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *ProductServiceTestSuite) TestGetOrFetchProduct_StaleRowServedWhenLookupFails() {
	stale := testProduct(time.Now().Add(-60 * 24 * time.Hour))
	suite.cacheService.On("GetProduct", mock.Anything, testBarcode).Return(nil, nil).Once()
	suite.productRepo.On("GetByBarcode", mock.Anything, testBarcode).Return(stale, nil).Once()
	suite.lookupClient.On("FetchProduct", mock.Anything, testBarcode).Return(nil, errors.New("timeout")).Once()
	suite.cacheService.On("SetProduct", mock.Anything, stale, productCacheTTL).Return(nil).Once()

	product, err := suite.service.GetOrFetchProduct(context.Background(), testBarcode)
	suite.NoError(err)
	suite.Equal(stale, product)
}

func (suite *ProductServiceTestSuite) TestUploadLabelImage_StoresAndInvalidates() {
	stored := testProduct(time.Now())
	suite.productRepo.On("GetByBarcode", mock.Anything, testBarcode).Return(stored, nil).Once()
	suite.minioService.On("UploadImage", mock.Anything, LabelImageBucket, testBarcode+"/label.jpg", mock.Anything, int64(128), "image/png").
		Return(nil).Once()
	suite.productRepo.On("UpdateImageURL", mock.Anything, testBarcode, mock.AnythingOfType("*string")).Return(nil).Once()
	suite.cacheService.On("DeleteProduct", mock.Anything, testBarcode).Return(nil).Once()

	ref, err := suite.service.UploadLabelImage(context.Background(), testBarcode, nil, 128, "image/png")
	suite.NoError(err)
	suite.Equal("minio://product-labels/"+testBarcode+"/label.jpg", ref)
}

func (suite *ProductServiceTestSuite) TestUploadLabelImage_UnknownProduct() {
	suite.productRepo.On("GetByBarcode", mock.Anything, testBarcode).Return(nil, pgx.ErrNoRows).Once()

	_, err := suite.service.UploadLabelImage(context.Background(), testBarcode, nil, 128, "image/png")
	suite.ErrorIs(err, ErrNotFound)
	suite.minioService.AssertNotCalled(suite.T(), "UploadImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
