package handlers

import (
	"net/http"
	"strconv"

	"snacktrack/internal/analytics"
	"snacktrack/internal/common"
	"snacktrack/internal/expiry"

	"github.com/labstack/echo/v4"
)

const defaultExpiryThresholdDays = 7

// StatsHandlers handles inventory statistics HTTP requests
type StatsHandlers struct {
	statsService *analytics.StatsService
}

func NewStatsHandlers(statsService *analytics.StatsService) *StatsHandlers {
	return &StatsHandlers{statsService: statsService}
}

// GetStats returns the aggregated inventory statistics for the dashboard.
func (h *StatsHandlers) GetStats(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	thresholdDays := defaultExpiryThresholdDays
	if raw := c.QueryParam("threshold_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "threshold_days must be a non-negative integer")
		}
		thresholdDays = parsed
	}

	stats, err := h.statsService.GetInventoryStats(ctx, userID, thresholdDays)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to compute inventory stats")
	}

	return c.JSON(http.StatusOK, stats)
}

// GetExpiringItems lists records expiring within the threshold, soonest
// first, with product names and expiry labels resolved.
func (h *StatsHandlers) GetExpiringItems(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	thresholdDays := expiry.DefaultThresholds().WarningDays
	if raw := c.QueryParam("threshold_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "threshold_days must be a non-negative integer")
		}
		thresholdDays = parsed
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		limit = parsed
	}

	items, err := h.statsService.GetExpiringItems(ctx, userID, thresholdDays, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list expiring items")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}
