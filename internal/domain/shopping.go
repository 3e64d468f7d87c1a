package domain

// Unit types accepted on shopping list rows
const (
	UnitTypeUnit = "unit"
	UnitTypeKg   = "kg"
)

// ShoppingItem represents one active row of a user's shopping list.
// Identity is by normalized (lowercase) product name, not a product-ID join.
type ShoppingItem struct {
	ProductName string  `json:"product_name"`
	Quantity    float64 `json:"quantity"`
	UnitType    string  `json:"unit_type"`
}

// Store represents a catalog store row. Coordinates are nullable at the
// source; stores without them never enter distance calculations.
type Store struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// StoreCandidate is a store within the search radius of the user's location.
// Computed per request, never persisted.
type StoreCandidate struct {
	StoreID    string  `json:"store_id"`
	StoreName  string  `json:"store_name"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	DistanceKm float64 `json:"distance_km"`
}

// PriceEntry is the catalog's price for one product at one store.
type PriceEntry struct {
	StoreID     string  `json:"store_id"`
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
}

// OptimizeRequest is the basket optimization request body.
// Coordinates are pointers so that 0 (the equator/meridian) still binds.
type OptimizeRequest struct {
	UserID  string   `json:"user_id" binding:"required"`
	LatUser *float64 `json:"lat_user" binding:"required"`
	LonUser *float64 `json:"lon_user" binding:"required"`
}

// ScenarioA is the cost of buying the whole list at the single nearest store.
type ScenarioA struct {
	StoreName    string  `json:"store_name"`
	StoreID      string  `json:"store_id"`
	TotalCost    float64 `json:"total_cost"`
	ItemsFound   int     `json:"items_found"`
	ItemsMissing int     `json:"items_missing"`
	DistanceKm   float64 `json:"distance_km"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

// LineItem is one priced shopping-list item inside a store stop.
type LineItem struct {
	ProductName string  `json:"product_name"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"`
	Subtotal    float64 `json:"subtotal"`
}

// StoreStop groups the items won by one store in the multi-store split.
type StoreStop struct {
	StoreID    string     `json:"store_id"`
	StoreName  string     `json:"store_name"`
	Items      []LineItem `json:"items"`
	StoreTotal float64    `json:"store_total"`
	DistanceKm float64    `json:"distance_km"`
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
}

// ScenarioB is the least-cost split of the list across all nearby stores,
// minimizing the sum of per-item costs independently of travel.
type ScenarioB struct {
	TotalCost    float64     `json:"total_cost"`
	Stores       []StoreStop `json:"stores"`
	ItemsMissing int         `json:"items_missing"`
}

// ScenarioC is Scenario B plus the fixed service fee, compared against
// Scenario A to report net savings of the delivered option.
type ScenarioC struct {
	TotalCost  float64 `json:"total_cost"`
	ServiceFee float64 `json:"service_fee"`
	NetSavings float64 `json:"net_savings"`
}

// OptimizationResult is the full three-scenario comparison. It echoes the
// shopping list it was computed for; it is never persisted.
type OptimizationResult struct {
	ScenarioA    ScenarioA      `json:"scenarioA"`
	ScenarioB    ScenarioB      `json:"scenarioB"`
	ScenarioC    ScenarioC      `json:"scenarioC"`
	ShoppingList []ShoppingItem `json:"shopping_list"`
}
