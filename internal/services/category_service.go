package services

import (
	"context"
	"strings"

	"snacktrack/internal/models"
	"snacktrack/internal/repositories"

	"github.com/google/uuid"
)

// CategoryService manages the user's food categories. Categories are purely
// organizational; nothing enforces them on inventory rows, so deletes need no
// in-use guard.
type CategoryService struct {
	categoryRepo repositories.CategoryRepository
}

func NewCategoryService(categoryRepo repositories.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

func (s *CategoryService) CreateCategory(ctx context.Context, userID uuid.UUID, name string, icon *string) (*models.FoodCategory, []ValidationError, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, []ValidationError{{Field: "name", Message: "name is required"}}, nil
	}

	category := &models.FoodCategory{
		UserID: userID,
		Name:   name,
		Icon:   icon,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, nil, wrapRepoError("create food category", err)
	}
	return category, nil, nil
}

func (s *CategoryService) ListCategories(ctx context.Context, userID uuid.UUID) ([]*models.FoodCategory, error) {
	categories, err := s.categoryRepo.List(ctx, userID)
	if err != nil {
		return nil, wrapRepoError("list food categories", err)
	}
	return categories, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, category *models.FoodCategory) error {
	if strings.TrimSpace(category.Name) == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return wrapRepoError("update food category", err)
	}
	return nil
}

func (s *CategoryService) DeleteCategory(ctx context.Context, userID uuid.UUID, categoryID string) error {
	if err := s.categoryRepo.Delete(ctx, userID, categoryID); err != nil {
		return wrapRepoError("delete food category", err)
	}
	return nil
}
