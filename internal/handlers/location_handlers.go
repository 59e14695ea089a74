package handlers

import (
	"errors"
	"net/http"

	"snacktrack/internal/common"
	"snacktrack/internal/models"
	"snacktrack/internal/services"

	"github.com/labstack/echo/v4"
)

// LocationHandlers handles storage-location HTTP requests
type LocationHandlers struct {
	locationService *services.LocationService
}

func NewLocationHandlers(locationService *services.LocationService) *LocationHandlers {
	return &LocationHandlers{locationService: locationService}
}

// CreateLocationRequest represents the location creation payload
type CreateLocationRequest struct {
	Name  string  `json:"name"`
	Icon  *string `json:"icon"`
	Color *string `json:"color"`
}

func (h *LocationHandlers) CreateLocation(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	var req CreateLocationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	location, violations, err := h.locationService.CreateLocation(ctx, userID, req.Name, req.Icon, req.Color)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create storage location")
	}
	if len(violations) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
			"errors": violations,
		})
	}

	return c.JSON(http.StatusCreated, location)
}

func (h *LocationHandlers) ListLocations(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	locations, err := h.locationService.ListLocations(ctx, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list storage locations")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"locations": locations,
	})
}

// UpdateLocationRequest represents the location update payload
type UpdateLocationRequest struct {
	Name  string  `json:"name"`
	Icon  *string `json:"icon"`
	Color *string `json:"color"`
}

func (h *LocationHandlers) UpdateLocation(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	locationID := c.Param("id")
	if locationID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Location ID is required")
	}

	var req UpdateLocationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	location := &models.StorageLocation{
		LocationID: locationID,
		UserID:     userID,
		Name:       req.Name,
		Icon:       req.Icon,
		Color:      req.Color,
	}
	if err := h.locationService.UpdateLocation(ctx, location); err != nil {
		var vErr services.ValidationError
		switch {
		case errors.As(err, &vErr):
			return echo.NewHTTPError(http.StatusBadRequest, vErr.Message)
		case errors.Is(err, services.ErrNotFound):
			return common.SendNotFoundError(c, "Storage location")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update storage location")
		}
	}

	return c.JSON(http.StatusOK, location)
}

// DeleteLocation removes a storage location; 409 when inventory still
// references it.
func (h *LocationHandlers) DeleteLocation(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	locationID := c.Param("id")
	if locationID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Location ID is required")
	}

	if err := h.locationService.DeleteLocation(ctx, userID, locationID); err != nil {
		if errors.Is(err, services.ErrLocationInUse) {
			return echo.NewHTTPError(http.StatusConflict, "Storage location still has inventory records")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete storage location")
	}

	return c.NoContent(http.StatusNoContent)
}
