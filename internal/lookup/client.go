// Package lookup implements the external product-lookup collaborator: a
// read-only client for the OpenFoodFacts public API keyed by barcode.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"snacktrack/internal/models"
)

const DefaultBaseURL = "https://world.openfoodfacts.org/api/v0/product"

// ProductLookup is the boundary contract the services depend on; the core
// never sees HTTP details.
type ProductLookup interface {
	FetchProduct(ctx context.Context, barcode string) (*models.Product, error)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type productResponse struct {
	Status  int `json:"status"`
	Product struct {
		ProductName   string `json:"product_name"`
		Brands        string `json:"brands"`
		ImageURL      string `json:"image_url"`
		ImageFrontURL string `json:"image_front_url"`
	} `json:"product"`
}

// FetchProduct returns (nil, nil) when the barcode is unknown to the
// database; any transport or decode failure is an error.
func (c *Client) FetchProduct(ctx context.Context, barcode string) (*models.Product, error) {
	url := fmt.Sprintf("%s/%s.json", c.baseURL, barcode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openfoodfacts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openfoodfacts returned status %d for barcode %s", resp.StatusCode, barcode)
	}

	var body productResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode openfoodfacts response: %w", err)
	}

	if body.Status != 1 {
		return nil, nil // not found in the food database
	}

	product := &models.Product{
		Barcode:       barcode,
		Name:          body.Product.ProductName,
		Brand:         body.Product.Brands,
		LastFetchedAt: time.Now(),
	}
	if product.Name == "" {
		product.Name = "Unbekanntes Produkt"
	}
	if imageURL := firstNonEmpty(body.Product.ImageFrontURL, body.Product.ImageURL); imageURL != "" {
		product.ImageURL = &imageURL
	}
	return product, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
