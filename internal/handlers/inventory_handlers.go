package handlers

import (
	"errors"
	"net/http"
	"time"

	"snacktrack/internal/common"
	"snacktrack/internal/models"
	"snacktrack/internal/services"

	"github.com/labstack/echo/v4"
)

// InventoryHandlers handles inventory-related HTTP requests
type InventoryHandlers struct {
	store *services.InventoryStore
}

func NewInventoryHandlers(store *services.InventoryStore) *InventoryHandlers {
	return &InventoryHandlers{store: store}
}

// ListInventory returns the user's inventory records, optionally filtered by
// free-text query and storage location.
func (h *InventoryHandlers) ListInventory(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	var filter models.InventorySearchFilter
	if err := c.Bind(&filter); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	if err := h.store.EnsureLoaded(ctx, userID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load inventory")
	}

	records := h.store.FilterRecords(userID, filter.Query, common.SafeString(filter.LocationID))
	return c.JSON(http.StatusOK, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}

// CreateInventoryRequest represents the record creation payload
type CreateInventoryRequest struct {
	Name       string     `json:"name"`
	Barcode    string     `json:"barcode"`
	LocationID string     `json:"location_id"`
	Quantity   int        `json:"quantity"`
	ExpiryDate *time.Time `json:"expiration_date"`
	Notes      *string    `json:"notes"`
}

// CreateInventory creates a new inventory record. Validation violations come
// back all together as 422 so the client can mark every bad field at once.
func (h *InventoryHandlers) CreateInventory(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	var req CreateInventoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.store.EnsureLoaded(ctx, userID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load inventory")
	}

	record, violations, err := h.store.CreateRecord(ctx, userID, services.CreateRecordInput{
		Name:       req.Name,
		Barcode:    req.Barcode,
		LocationID: req.LocationID,
		Quantity:   req.Quantity,
		ExpiryDate: req.ExpiryDate,
		Notes:      req.Notes,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create inventory record")
	}
	if len(violations) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
			"errors": violations,
		})
	}

	return c.JSON(http.StatusCreated, record)
}

// UpdateQuantityRequest represents the quantity mutation payload
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateQuantity sets a record's quantity; zero deletes the record.
func (h *InventoryHandlers) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	inventoryID := c.Param("id")
	if inventoryID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Inventory ID is required")
	}

	var req UpdateQuantityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.store.EnsureLoaded(ctx, userID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load inventory")
	}

	if err := h.store.MutateQuantity(ctx, userID, inventoryID, req.Quantity); err != nil {
		var vErr services.ValidationError
		switch {
		case errors.As(err, &vErr):
			return echo.NewHTTPError(http.StatusBadRequest, vErr.Message)
		case errors.Is(err, services.ErrNotFound):
			return common.SendNotFoundError(c, "Inventory record")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update quantity")
		}
	}

	return c.JSON(http.StatusOK, h.store.Snapshot(userID))
}

// DeleteInventory removes a record. Deleting an already-removed id succeeds.
func (h *InventoryHandlers) DeleteInventory(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	inventoryID := c.Param("id")
	if inventoryID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Inventory ID is required")
	}

	if err := h.store.EnsureLoaded(ctx, userID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load inventory")
	}

	if err := h.store.DeleteRecord(ctx, userID, inventoryID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete inventory record")
	}

	return c.NoContent(http.StatusNoContent)
}

// ReloadInventory forces a fresh load from persistence, replacing the
// snapshot.
func (h *InventoryHandlers) ReloadInventory(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	if err := h.store.Load(ctx, userID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load inventory")
	}

	return c.JSON(http.StatusOK, h.store.Snapshot(userID))
}
