package handlers

import (
	"errors"
	"net/http"

	"snacktrack/internal/common"
	"snacktrack/internal/services"

	"github.com/labstack/echo/v4"
)

// ProductHandlers handles product catalog HTTP requests
type ProductHandlers struct {
	productService *services.ProductService
}

func NewProductHandlers(productService *services.ProductService) *ProductHandlers {
	return &ProductHandlers{productService: productService}
}

// GetProduct resolves a barcode to product metadata, hitting the public food
// database on a catalog miss.
func (h *ProductHandlers) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	barcode := c.Param("barcode")
	if barcode == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Barcode is required")
	}

	product, err := h.productService.GetOrFetchProduct(ctx, barcode)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return common.SendNotFoundError(c, "Product")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to look up product")
	}

	return c.JSON(http.StatusOK, product)
}

// UploadLabelImage stores a user-taken label photo for a product.
func (h *ProductHandlers) UploadLabelImage(c echo.Context) error {
	ctx := c.Request().Context()

	barcode := c.Param("barcode")
	if barcode == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Barcode is required")
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Image file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read image file")
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	objectRef, err := h.productService.UploadLabelImage(ctx, barcode, file, fileHeader.Size, contentType)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return common.SendNotFoundError(c, "Product")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to upload label image")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"image_url": objectRef,
	})
}

// GetLabelImageURL returns a time-limited download URL for a stored label
// photo.
func (h *ProductHandlers) GetLabelImageURL(c echo.Context) error {
	ctx := c.Request().Context()

	barcode := c.Param("barcode")
	if barcode == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Barcode is required")
	}

	url, err := h.productService.GetLabelImageURL(ctx, barcode)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate image URL")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"url": url,
	})
}
