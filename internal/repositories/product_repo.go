package repositories

import (
	"context"

	"snacktrack/internal/models"
)

type ProductRepository interface {
	Upsert(ctx context.Context, product *models.Product) error
	GetByBarcode(ctx context.Context, barcode string) (*models.Product, error)
	UpdateImageURL(ctx context.Context, barcode string, imageURL *string) error
	List(ctx context.Context) ([]*models.Product, error)
}

type productRepo struct {
	db PgxIface
}

func NewProductRepo(db PgxIface) ProductRepository {
	return &productRepo{db: db}
}

// Upsert writes a product row keyed by barcode. Products are shared catalog
// data (not per-user), so a re-fetch simply refreshes the cached metadata.
func (r *productRepo) Upsert(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO items (barcode, product_name, brand, image_url, last_fetched_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (barcode) DO UPDATE SET product_name = EXCLUDED.product_name, brand = EXCLUDED.brand, image_url = EXCLUDED.image_url, last_fetched_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, product.Barcode, product.Name, product.Brand, product.ImageURL)
	return err
}

func (r *productRepo) GetByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	product := &models.Product{}
	query := `
		SELECT barcode, product_name, brand, image_url, last_fetched_at
		FROM items
		WHERE barcode = $1
	`
	err := r.db.QueryRow(ctx, query, barcode).
		Scan(&product.Barcode, &product.Name, &product.Brand, &product.ImageURL, &product.LastFetchedAt)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *productRepo) UpdateImageURL(ctx context.Context, barcode string, imageURL *string) error {
	query := `UPDATE items SET image_url = $1 WHERE barcode = $2`
	_, err := r.db.Exec(ctx, query, imageURL, barcode)
	return err
}

func (r *productRepo) List(ctx context.Context) ([]*models.Product, error) {
	query := `
		SELECT barcode, product_name, brand, image_url, last_fetched_at
		FROM items
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product := &models.Product{}
		if err := rows.Scan(&product.Barcode, &product.Name, &product.Brand, &product.ImageURL, &product.LastFetchedAt); err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}
