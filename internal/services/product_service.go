package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"snacktrack/internal/caching"
	"snacktrack/internal/lookup"
	"snacktrack/internal/models"
	"snacktrack/internal/repositories"

	"github.com/jackc/pgx/v5"
)

const (
	productCacheTTL = 24 * time.Hour

	// Catalog rows older than this are re-fetched from the food database so
	// renamed or re-branded products eventually self-heal.
	productStaleAfter = 30 * 24 * time.Hour

	// LabelImageBucket holds user-taken label photos; main ensures it
	// exists at startup.
	LabelImageBucket = "product-labels"

	labelImageExpiry = 7 * 24 * time.Hour
)

// ProductService resolves barcodes to product metadata. Resolution order:
// Redis cache, then the local catalog, then the public food database with a
// write-back into both.
type ProductService struct {
	productRepo  repositories.ProductRepository
	cacheService caching.CacheService
	lookupClient lookup.ProductLookup
	minioService MinioService
}

func NewProductService(productRepo repositories.ProductRepository, cacheService caching.CacheService, lookupClient lookup.ProductLookup, minioService MinioService) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		cacheService: cacheService,
		lookupClient: lookupClient,
		minioService: minioService,
	}
}

// GetOrFetchProduct returns product metadata for a barcode. A barcode unknown
// to both the catalog and the food database yields ErrNotFound; the caller
// may still create an inventory record with a manually entered name.
func (s *ProductService) GetOrFetchProduct(ctx context.Context, barcode string) (*models.Product, error) {
	if cached, err := s.cacheService.GetProduct(ctx, barcode); err != nil {
		log.Printf("Product cache read failed for barcode %s: %v", barcode, err)
	} else if cached != nil {
		return cached, nil
	}

	product, err := s.productRepo.GetByBarcode(ctx, barcode)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, wrapRepoError("get product", err)
	}
	if product != nil && time.Since(product.LastFetchedAt) < productStaleAfter {
		s.cacheProduct(ctx, product)
		return product, nil
	}

	fetched, err := s.lookupClient.FetchProduct(ctx, barcode)
	if err != nil {
		// The external lookup is best-effort: serve the stale catalog row if
		// we have one instead of failing the scan.
		if product != nil {
			log.Printf("Product refresh failed for barcode %s, serving catalog row: %v", barcode, err)
			s.cacheProduct(ctx, product)
			return product, nil
		}
		return nil, fmt.Errorf("product lookup failed for barcode %s: %w", barcode, err)
	}
	if fetched == nil {
		if product != nil {
			s.cacheProduct(ctx, product)
			return product, nil
		}
		return nil, fmt.Errorf("barcode %s: %w", barcode, ErrNotFound)
	}

	if err := s.productRepo.Upsert(ctx, fetched); err != nil {
		log.Printf("Failed to persist product %s: %v", barcode, err)
	}
	s.cacheProduct(ctx, fetched)
	return fetched, nil
}

// UploadLabelImage stores a user-taken photo for a product and records the
// object reference on the catalog row.
func (s *ProductService) UploadLabelImage(ctx context.Context, barcode string, reader io.Reader, size int64, contentType string) (string, error) {
	if _, err := s.productRepo.GetByBarcode(ctx, barcode); err != nil {
		return "", wrapRepoError("get product for label image", err)
	}

	objectName := fmt.Sprintf("%s/label.jpg", barcode)
	if err := s.minioService.UploadImage(ctx, LabelImageBucket, objectName, reader, size, contentType); err != nil {
		return "", fmt.Errorf("failed to upload label image: %w", err)
	}

	objectRef := fmt.Sprintf("minio://%s/%s", LabelImageBucket, objectName)
	if err := s.productRepo.UpdateImageURL(ctx, barcode, &objectRef); err != nil {
		return "", wrapRepoError("record label image", err)
	}

	if err := s.cacheService.DeleteProduct(ctx, barcode); err != nil {
		log.Printf("Failed to invalidate product cache for barcode %s: %v", barcode, err)
	}
	return objectRef, nil
}

// GetLabelImageURL returns a time-limited download URL for a stored label
// photo.
func (s *ProductService) GetLabelImageURL(ctx context.Context, barcode string) (string, error) {
	objectName := fmt.Sprintf("%s/label.jpg", barcode)
	url, err := s.minioService.GetPresignedURL(ctx, LabelImageBucket, objectName, labelImageExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to presign label image: %w", err)
	}
	return url, nil
}

func (s *ProductService) cacheProduct(ctx context.Context, product *models.Product) {
	if err := s.cacheService.SetProduct(ctx, product, productCacheTTL); err != nil {
		log.Printf("Failed to cache product %s: %v", product.Barcode, err)
	}
}
