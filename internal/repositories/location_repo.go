package repositories

import (
	"context"

	"snacktrack/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type LocationRepository interface {
	Create(ctx context.Context, location *models.StorageLocation) error
	GetByID(ctx context.Context, userID uuid.UUID, locationID string) (*models.StorageLocation, error)
	Update(ctx context.Context, location *models.StorageLocation) error
	Delete(ctx context.Context, userID uuid.UUID, locationID string) error
	List(ctx context.Context, userID uuid.UUID) ([]*models.StorageLocation, error)
}

type locationRepo struct {
	db PgxIface
}

func NewLocationRepo(db PgxIface) LocationRepository {
	return &locationRepo{db: db}
}

func (r *locationRepo) Create(ctx context.Context, location *models.StorageLocation) error {
	query := `
		INSERT INTO storage_locations (user_id, name, icon, color, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING location_id, created_at
	`
	return r.db.QueryRow(ctx, query, location.UserID, location.Name, location.Icon, location.Color).
		Scan(&location.LocationID, &location.CreatedAt)
}

func (r *locationRepo) GetByID(ctx context.Context, userID uuid.UUID, locationID string) (*models.StorageLocation, error) {
	location := &models.StorageLocation{}
	query := `
		SELECT location_id, user_id, name, icon, color, created_at
		FROM storage_locations
		WHERE user_id = $1 AND location_id = $2
	`
	err := r.db.QueryRow(ctx, query, userID, locationID).
		Scan(&location.LocationID, &location.UserID, &location.Name, &location.Icon, &location.Color, &location.CreatedAt)
	if err != nil {
		return nil, err
	}
	return location, nil
}

func (r *locationRepo) Update(ctx context.Context, location *models.StorageLocation) error {
	query := `
		UPDATE storage_locations
		SET name = $1, icon = $2, color = $3
		WHERE user_id = $4 AND location_id = $5
	`
	tag, err := r.db.Exec(ctx, query, location.Name, location.Icon, location.Color, location.UserID, location.LocationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *locationRepo) Delete(ctx context.Context, userID uuid.UUID, locationID string) error {
	query := `DELETE FROM storage_locations WHERE user_id = $1 AND location_id = $2`
	_, err := r.db.Exec(ctx, query, userID, locationID)
	return err
}

func (r *locationRepo) List(ctx context.Context, userID uuid.UUID) ([]*models.StorageLocation, error) {
	query := `
		SELECT location_id, user_id, name, icon, color, created_at
		FROM storage_locations
		WHERE user_id = $1
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []*models.StorageLocation
	for rows.Next() {
		location := &models.StorageLocation{}
		if err := rows.Scan(&location.LocationID, &location.UserID, &location.Name, &location.Icon, &location.Color, &location.CreatedAt); err != nil {
			return nil, err
		}
		locations = append(locations, location)
	}
	return locations, rows.Err()
}
