// Package postgres implements the catalog read interfaces against a
// self-hosted Postgres with the stores/products/store_products/
// shopping_list_items schema.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BusqueiCompany/buscai-local-lover-sub000/internal/domain"
)

// Repository implements domain.CatalogReader over a pgx connection pool
type Repository struct {
	db *pgxpool.Pool
}

var _ domain.CatalogReader = (*Repository)(nil)

// Connect opens and pings a pgx pool for the given database URL
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}

	return db, nil
}

// NewRepository creates a catalog repository on an existing pool
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// ListActiveStores returns all active stores. Coordinates stay nullable;
// the optimizer decides what to do with stores that lack them.
func (r *Repository) ListActiveStores(ctx context.Context) ([]domain.Store, error) {
	query := `
		SELECT
			id,
			name,
			latitude,
			longitude
		FROM stores
		WHERE active = true
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stores []domain.Store
	for rows.Next() {
		var store domain.Store
		if err := rows.Scan(
			&store.ID,
			&store.Name,
			&store.Latitude,
			&store.Longitude,
		); err != nil {
			return nil, err
		}
		stores = append(stores, store)
	}

	return stores, rows.Err()
}

// ListPrices returns the active price entries for the given stores. Rows
// with a NULL price are dropped; the catalog uses NULL for products a store
// lists but does not currently sell.
func (r *Repository) ListPrices(ctx context.Context, storeIDs []string) ([]domain.PriceEntry, error) {
	if len(storeIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT
			sp.store_id,
			p.name,
			sp.price
		FROM store_products sp
		JOIN products p ON p.id = sp.product_id
		WHERE sp.active = true
		  AND sp.store_id = ANY($1)
	`

	rows, err := r.db.Query(ctx, query, storeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.PriceEntry
	for rows.Next() {
		var (
			entry domain.PriceEntry
			price *float64
		)
		if err := rows.Scan(&entry.StoreID, &entry.ProductName, &price); err != nil {
			return nil, err
		}
		if price == nil {
			continue
		}
		entry.UnitPrice = *price
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// ListActiveItems returns the user's active shopping list rows
func (r *Repository) ListActiveItems(ctx context.Context, userID string) ([]domain.ShoppingItem, error) {
	query := `
		SELECT
			product_name,
			quantity,
			unit_type
		FROM shopping_list_items
		WHERE user_id = $1
		  AND active = true
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.ShoppingItem
	for rows.Next() {
		var item domain.ShoppingItem
		if err := rows.Scan(&item.ProductName, &item.Quantity, &item.UnitType); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}
