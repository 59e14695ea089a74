package handlers

import (
	"errors"
	"net/http"

	"snacktrack/internal/common"
	"snacktrack/internal/models"
	"snacktrack/internal/services"

	"github.com/labstack/echo/v4"
)

// CategoryHandlers handles food-category HTTP requests
type CategoryHandlers struct {
	categoryService *services.CategoryService
}

func NewCategoryHandlers(categoryService *services.CategoryService) *CategoryHandlers {
	return &CategoryHandlers{categoryService: categoryService}
}

// CategoryRequest represents the category create/update payload
type CategoryRequest struct {
	Name string  `json:"name"`
	Icon *string `json:"icon"`
}

func (h *CategoryHandlers) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	category, violations, err := h.categoryService.CreateCategory(ctx, userID, req.Name, req.Icon)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create food category")
	}
	if len(violations) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
			"errors": violations,
		})
	}

	return c.JSON(http.StatusCreated, category)
}

func (h *CategoryHandlers) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	categories, err := h.categoryService.ListCategories(ctx, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list food categories")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"categories": categories,
	})
}

func (h *CategoryHandlers) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	categoryID := c.Param("id")
	if categoryID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Category ID is required")
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	category := &models.FoodCategory{
		CategoryID: categoryID,
		UserID:     userID,
		Name:       req.Name,
		Icon:       req.Icon,
	}
	if err := h.categoryService.UpdateCategory(ctx, category); err != nil {
		var vErr services.ValidationError
		switch {
		case errors.As(err, &vErr):
			return echo.NewHTTPError(http.StatusBadRequest, vErr.Message)
		case errors.Is(err, services.ErrNotFound):
			return common.SendNotFoundError(c, "Food category")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update food category")
		}
	}

	return c.JSON(http.StatusOK, category)
}

func (h *CategoryHandlers) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	categoryID := c.Param("id")
	if categoryID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Category ID is required")
	}

	if err := h.categoryService.DeleteCategory(ctx, userID, categoryID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete food category")
	}

	return c.NoContent(http.StatusNoContent)
}
