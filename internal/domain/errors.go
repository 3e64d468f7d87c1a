package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are missing or malformed
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrEmptyShoppingList is returned when the user has no active shopping list items
	ErrEmptyShoppingList = errors.New("shopping list is empty")

	// ErrNoNearbyStores is returned when no active store lies within the search radius
	ErrNoNearbyStores = errors.New("no store within search radius")

	// ErrCatalogUnavailable is returned when the store/price catalog query fails
	ErrCatalogUnavailable = errors.New("catalog query failed")
)
