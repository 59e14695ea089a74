package repositories

import (
	"context"

	"snacktrack/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type InventoryRepository interface {
	Create(ctx context.Context, record *models.InventoryRecord) error
	GetByID(ctx context.Context, userID uuid.UUID, inventoryID string) (*models.InventoryRecord, error)
	UpdateQuantity(ctx context.Context, userID uuid.UUID, inventoryID string, quantity int) error
	Delete(ctx context.Context, userID uuid.UUID, inventoryID string) error
	List(ctx context.Context, userID uuid.UUID) ([]*models.InventoryRecord, error)
	CountByLocation(ctx context.Context, userID uuid.UUID, locationID string) (int, error)
	ListUserIDs(ctx context.Context) ([]uuid.UUID, error)
}

type inventoryRepo struct {
	db PgxIface
}

func NewInventoryRepo(db PgxIface) InventoryRepository {
	return &inventoryRepo{db: db}
}

func (r *inventoryRepo) Create(ctx context.Context, record *models.InventoryRecord) error {
	query := `
		INSERT INTO inventory (user_id, location_id, barcode, quantity, expiration_date, notes, last_update)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING inventory_id, last_update
	`
	return r.db.QueryRow(ctx, query, record.UserID, record.LocationID, record.Barcode, record.Quantity, record.ExpiryDate, record.Notes).
		Scan(&record.InventoryID, &record.LastUpdated)
}

func (r *inventoryRepo) GetByID(ctx context.Context, userID uuid.UUID, inventoryID string) (*models.InventoryRecord, error) {
	record := &models.InventoryRecord{}
	query := `
		SELECT inventory_id, user_id, location_id, barcode, quantity, expiration_date, notes, last_update
		FROM inventory
		WHERE user_id = $1 AND inventory_id = $2
	`
	err := r.db.QueryRow(ctx, query, userID, inventoryID).
		Scan(&record.InventoryID, &record.UserID, &record.LocationID, &record.Barcode, &record.Quantity, &record.ExpiryDate, &record.Notes, &record.LastUpdated)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *inventoryRepo) UpdateQuantity(ctx context.Context, userID uuid.UUID, inventoryID string, quantity int) error {
	query := `
		UPDATE inventory
		SET quantity = $1, last_update = NOW()
		WHERE user_id = $2 AND inventory_id = $3
	`
	tag, err := r.db.Exec(ctx, query, quantity, userID, inventoryID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete is idempotent: removing an id that is already gone is not an error.
func (r *inventoryRepo) Delete(ctx context.Context, userID uuid.UUID, inventoryID string) error {
	query := `DELETE FROM inventory WHERE user_id = $1 AND inventory_id = $2`
	_, err := r.db.Exec(ctx, query, userID, inventoryID)
	return err
}

func (r *inventoryRepo) List(ctx context.Context, userID uuid.UUID) ([]*models.InventoryRecord, error) {
	query := `
		SELECT inventory_id, user_id, location_id, barcode, quantity, expiration_date, notes, last_update
		FROM inventory
		WHERE user_id = $1
		ORDER BY inventory_id
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.InventoryRecord
	for rows.Next() {
		record := &models.InventoryRecord{}
		if err := rows.Scan(&record.InventoryID, &record.UserID, &record.LocationID, &record.Barcode, &record.Quantity, &record.ExpiryDate, &record.Notes, &record.LastUpdated); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (r *inventoryRepo) CountByLocation(ctx context.Context, userID uuid.UUID, locationID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM inventory WHERE user_id = $1 AND location_id = $2`
	if err := r.db.QueryRow(ctx, query, userID, locationID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ListUserIDs returns every user with at least one inventory row. Used by the
// background jobs to fan out per-user work.
func (r *inventoryRepo) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT user_id FROM inventory`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var userIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		userIDs = append(userIDs, id)
	}
	return userIDs, rows.Err()
}
