package domain

import "context"

// StoreReader provides read access to the active store catalog
type StoreReader interface {
	ListActiveStores(ctx context.Context) ([]Store, error)
}

// PriceReader provides read access to active price entries, restricted to a
// set of store identifiers
type PriceReader interface {
	ListPrices(ctx context.Context, storeIDs []string) ([]PriceEntry, error)
}

// ShoppingListReader provides read access to a user's active shopping list
type ShoppingListReader interface {
	ListActiveItems(ctx context.Context, userID string) ([]ShoppingItem, error)
}

// CatalogReader bundles the three read interfaces implemented by each
// catalog backend
type CatalogReader interface {
	StoreReader
	PriceReader
	ShoppingListReader
}
