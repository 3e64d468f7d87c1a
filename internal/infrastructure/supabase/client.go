// Package supabase implements the catalog read interfaces against the hosted
// backend's PostgREST API, the same collaborator the BUSQUEI app talks to.
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/BusqueiCompany/buscai-local-lover-sub000/internal/domain"
)

// Client handles communication with the hosted backend's REST API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	rateLimiter *rate.Limiter
	debug       bool
}

var _ domain.CatalogReader = (*Client)(nil)

// NewClient creates a new REST catalog client
func NewClient(baseURL, apiKey string) *Client {
	// Hosted tier comfortably allows a few requests per second per client
	limiter := rate.NewLimiter(rate.Limit(5), 10)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		apiKey:      apiKey,
		rateLimiter: limiter,
	}
}

// SetDebug enables verbose request logging
func (c *Client) SetDebug(enabled bool) {
	c.debug = enabled
}

// transientBackoff returns the delay before retrying a transient failure
func transientBackoff(attempt int) time.Duration {
	return time.Duration(attempt*500) * time.Millisecond
}

// get executes a GET against /rest/v1/{resource}, decoding into out.
// Transient failures (network errors, 5xx) are retried up to 3 times;
// 4xx responses and decode errors are terminal.
func (c *Client) get(ctx context.Context, resource string, params url.Values, out interface{}) error {
	reqURL := fmt.Sprintf("%s/rest/v1/%s?%s", c.baseURL, resource, params.Encode())

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "busquei-backend/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if c.debug {
				log.Printf("[supabase] %s request error (attempt %d): %v", resource, attempt, err)
			}
			lastErr = fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
			time.Sleep(transientBackoff(attempt))
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			if c.debug {
				log.Printf("[supabase] %s error (attempt %d) - status: %d, body: %s", resource, attempt, resp.StatusCode, string(body))
			}
			lastErr = fmt.Errorf("%w: status %d", domain.ErrCatalogUnavailable, resp.StatusCode)
			if resp.StatusCode >= http.StatusInternalServerError {
				time.Sleep(transientBackoff(attempt))
				continue
			}
			return lastErr
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", resource, err)
		}
		return nil
	}

	return lastErr
}

// ListActiveStores returns all active stores with their nullable coordinates
func (c *Client) ListActiveStores(ctx context.Context) ([]domain.Store, error) {
	params := url.Values{}
	params.Set("select", "id,name,latitude,longitude")
	params.Set("active", "eq.true")

	var stores []domain.Store
	if err := c.get(ctx, "stores", params, &stores); err != nil {
		return nil, err
	}

	if c.debug {
		log.Printf("[supabase] fetched %d active stores", len(stores))
	}
	return stores, nil
}

// priceRow is the embedded-join shape PostgREST returns for store_products
type priceRow struct {
	StoreID string   `json:"store_id"`
	Price   *float64 `json:"price"`
	Product struct {
		Name string `json:"name"`
	} `json:"products"`
}

// ListPrices returns active price entries for the given stores, dropping
// rows with a NULL price
func (c *Client) ListPrices(ctx context.Context, storeIDs []string) ([]domain.PriceEntry, error) {
	if len(storeIDs) == 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("select", "store_id,price,products(name)")
	params.Set("active", "eq.true")
	params.Set("store_id", fmt.Sprintf("in.(%s)", strings.Join(storeIDs, ",")))

	var rows []priceRow
	if err := c.get(ctx, "store_products", params, &rows); err != nil {
		return nil, err
	}

	entries := make([]domain.PriceEntry, 0, len(rows))
	for _, row := range rows {
		if row.Price == nil {
			continue
		}
		entries = append(entries, domain.PriceEntry{
			StoreID:     row.StoreID,
			ProductName: row.Product.Name,
			UnitPrice:   *row.Price,
		})
	}

	if c.debug {
		log.Printf("[supabase] fetched %d price entries for %d stores", len(entries), len(storeIDs))
	}
	return entries, nil
}

// ListActiveItems returns the user's active shopping list rows
func (c *Client) ListActiveItems(ctx context.Context, userID string) ([]domain.ShoppingItem, error) {
	params := url.Values{}
	params.Set("select", "product_name,quantity,unit_type")
	params.Set("user_id", "eq."+userID)
	params.Set("active", "eq.true")

	var items []domain.ShoppingItem
	if err := c.get(ctx, "shopping_list_items", params, &items); err != nil {
		return nil, err
	}
	return items, nil
}
