package repositories

import (
	"context"

	"snacktrack/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.FoodCategory) error
	GetByID(ctx context.Context, userID uuid.UUID, categoryID string) (*models.FoodCategory, error)
	Update(ctx context.Context, category *models.FoodCategory) error
	Delete(ctx context.Context, userID uuid.UUID, categoryID string) error
	List(ctx context.Context, userID uuid.UUID) ([]*models.FoodCategory, error)
}

type categoryRepo struct {
	db PgxIface
}

func NewCategoryRepo(db PgxIface) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) Create(ctx context.Context, category *models.FoodCategory) error {
	query := `
		INSERT INTO food_categories (user_id, name, icon, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING category_id, created_at
	`
	return r.db.QueryRow(ctx, query, category.UserID, category.Name, category.Icon).
		Scan(&category.CategoryID, &category.CreatedAt)
}

func (r *categoryRepo) GetByID(ctx context.Context, userID uuid.UUID, categoryID string) (*models.FoodCategory, error) {
	category := &models.FoodCategory{}
	query := `
		SELECT category_id, user_id, name, icon, created_at
		FROM food_categories
		WHERE user_id = $1 AND category_id = $2
	`
	err := r.db.QueryRow(ctx, query, userID, categoryID).
		Scan(&category.CategoryID, &category.UserID, &category.Name, &category.Icon, &category.CreatedAt)
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (r *categoryRepo) Update(ctx context.Context, category *models.FoodCategory) error {
	query := `
		UPDATE food_categories
		SET name = $1, icon = $2
		WHERE user_id = $3 AND category_id = $4
	`
	tag, err := r.db.Exec(ctx, query, category.Name, category.Icon, category.UserID, category.CategoryID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *categoryRepo) Delete(ctx context.Context, userID uuid.UUID, categoryID string) error {
	query := `DELETE FROM food_categories WHERE user_id = $1 AND category_id = $2`
	_, err := r.db.Exec(ctx, query, userID, categoryID)
	return err
}

func (r *categoryRepo) List(ctx context.Context, userID uuid.UUID) ([]*models.FoodCategory, error) {
	query := `
		SELECT category_id, user_id, name, icon, created_at
		FROM food_categories
		WHERE user_id = $1
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.FoodCategory
	for rows.Next() {
		category := &models.FoodCategory{}
		if err := rows.Scan(&category.CategoryID, &category.UserID, &category.Name, &category.Icon, &category.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}
