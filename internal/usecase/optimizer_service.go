package usecase

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/BusqueiCompany/buscai-local-lover-sub000/internal/domain"
	"github.com/BusqueiCompany/buscai-local-lover-sub000/internal/geo"
)

// Defaults applied when the service config leaves a value unset
const (
	defaultSearchRadiusKm = 10.0
	defaultServiceFee     = 15.0
)

// OptimizerConfig holds configuration for the basket optimizer service
type OptimizerConfig struct {
	SearchRadiusKm float64
	ServiceFee     float64
}

// OptimizerService computes the three-scenario shopping basket comparison:
// single nearest store (A), per-item least-cost split across nearby stores
// (B), and the split plus the fixed service fee (C).
type OptimizerService struct {
	stores         domain.StoreReader
	prices         domain.PriceReader
	shoppingLists  domain.ShoppingListReader
	searchRadiusKm float64
	serviceFee     float64
}

// NewOptimizerService creates a new optimizer service with dependencies
func NewOptimizerService(
	stores domain.StoreReader,
	prices domain.PriceReader,
	shoppingLists domain.ShoppingListReader,
	config OptimizerConfig,
) *OptimizerService {
	radius := config.SearchRadiusKm
	if radius <= 0 {
		radius = defaultSearchRadiusKm
	}
	fee := config.ServiceFee
	if fee == 0 {
		fee = defaultServiceFee
	}

	return &OptimizerService{
		stores:         stores,
		prices:         prices,
		shoppingLists:  shoppingLists,
		searchRadiusKm: radius,
		serviceFee:     fee,
	}
}

// ServiceFee returns the fixed fee added to Scenario C totals
func (s *OptimizerService) ServiceFee() float64 {
	return s.serviceFee
}

// Optimize computes the full three-scenario comparison for a user's active
// shopping list at the given location. It is a pure single-pass computation
// per request; nothing is persisted.
// Flow: fetch list -> nearby stores -> prices -> scenarios A, B, C.
func (s *OptimizerService) Optimize(
	ctx context.Context,
	request *domain.OptimizeRequest,
) (*domain.OptimizationResult, error) {
	if request == nil || request.UserID == "" || request.LatUser == nil || request.LonUser == nil {
		return nil, domain.ErrInvalidRequest
	}
	userLat, userLon := *request.LatUser, *request.LonUser
	if !geo.ValidCoordinates(userLat, userLon) {
		return nil, domain.ErrInvalidRequest
	}

	items, err := s.shoppingLists.ListActiveItems(ctx, request.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	if len(items) == 0 {
		return nil, domain.ErrEmptyShoppingList
	}

	nearby, err := s.NearbyStores(ctx, userLat, userLon)
	if err != nil {
		return nil, err
	}
	if len(nearby) == 0 {
		return nil, domain.ErrNoNearbyStores
	}

	storeIDs := make([]string, len(nearby))
	for i, c := range nearby {
		storeIDs[i] = c.StoreID
	}

	entries, err := s.prices.ListPrices(ctx, storeIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	priceIndex := buildPriceIndex(entries)

	scenarioA := computeScenarioA(items, nearby[0], priceIndex)
	scenarioB := computeScenarioB(items, nearby, priceIndex)
	scenarioC := domain.ScenarioC{
		TotalCost:  scenarioB.TotalCost + s.serviceFee,
		ServiceFee: s.serviceFee,
	}
	scenarioC.NetSavings = scenarioA.TotalCost - scenarioC.TotalCost

	return &domain.OptimizationResult{
		ScenarioA:    scenarioA,
		ScenarioB:    scenarioB,
		ScenarioC:    scenarioC,
		ShoppingList: items,
	}, nil
}

// NearbyStores returns the active stores within the search radius of the
// given location, sorted ascending by distance (ties by store ID). An empty
// result is a normal outcome, not an error.
func (s *OptimizerService) NearbyStores(
	ctx context.Context,
	userLat, userLon float64,
) ([]domain.StoreCandidate, error) {
	if !geo.ValidCoordinates(userLat, userLon) {
		return nil, domain.ErrInvalidRequest
	}

	stores, err := s.stores.ListActiveStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}

	var nearby []domain.StoreCandidate
	for _, store := range stores {
		if store.Latitude == nil || store.Longitude == nil {
			continue
		}
		lat, lon := *store.Latitude, *store.Longitude
		if !geo.ValidCoordinates(lat, lon) {
			log.Printf("[optimizer] excluding store %s: malformed coordinates (%v, %v)", store.ID, lat, lon)
			continue
		}
		distance := geo.DistanceKm(userLat, userLon, lat, lon)
		if distance <= s.searchRadiusKm {
			nearby = append(nearby, domain.StoreCandidate{
				StoreID:    store.ID,
				StoreName:  store.Name,
				Latitude:   lat,
				Longitude:  lon,
				DistanceKm: distance,
			})
		}
	}

	sort.Slice(nearby, func(i, j int) bool {
		if nearby[i].DistanceKm != nearby[j].DistanceKm {
			return nearby[i].DistanceKm < nearby[j].DistanceKm
		}
		return nearby[i].StoreID < nearby[j].StoreID
	})

	return nearby, nil
}

// NormalizeProductName is the matching key for shopping list items and price
// entries: trimmed, lowercased, exact equality only.
func NormalizeProductName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// buildPriceIndex maps store ID -> normalized product name -> unit price.
// The first entry wins when the catalog carries duplicates for the same
// store/product pair.
func buildPriceIndex(entries []domain.PriceEntry) map[string]map[string]float64 {
	index := make(map[string]map[string]float64)
	for _, entry := range entries {
		byName := index[entry.StoreID]
		if byName == nil {
			byName = make(map[string]float64)
			index[entry.StoreID] = byName
		}
		name := NormalizeProductName(entry.ProductName)
		if _, exists := byName[name]; !exists {
			byName[name] = entry.UnitPrice
		}
	}
	return index
}

// computeScenarioA prices the whole list at the single closest store.
// Every item resolves to exactly found or missing, so
// ItemsFound+ItemsMissing always equals the list length.
func computeScenarioA(
	items []domain.ShoppingItem,
	closest domain.StoreCandidate,
	priceIndex map[string]map[string]float64,
) domain.ScenarioA {
	result := domain.ScenarioA{
		StoreName:  closest.StoreName,
		StoreID:    closest.StoreID,
		DistanceKm: closest.DistanceKm,
		Latitude:   closest.Latitude,
		Longitude:  closest.Longitude,
	}

	storePrices := priceIndex[closest.StoreID]
	for _, item := range items {
		price, ok := storePrices[NormalizeProductName(item.ProductName)]
		if !ok {
			result.ItemsMissing++
			continue
		}
		result.TotalCost += price * item.Quantity
		result.ItemsFound++
	}

	return result
}

// computeScenarioB picks, for each item independently, the nearby store with
// the lowest price*quantity. Candidates are scanned in nearby order
// (distance ascending, then store ID) with a strict comparison, so an
// equal-cost tie goes to the nearer store. Winning line items are grouped
// into one stop per store, sorted descending by subtotal.
func computeScenarioB(
	items []domain.ShoppingItem,
	nearby []domain.StoreCandidate,
	priceIndex map[string]map[string]float64,
) domain.ScenarioB {
	result := domain.ScenarioB{}
	stops := make(map[string]*domain.StoreStop)

	for _, item := range items {
		name := NormalizeProductName(item.ProductName)

		bestStore := -1
		bestPrice := 0.0
		bestCost := 0.0
		for i, candidate := range nearby {
			price, ok := priceIndex[candidate.StoreID][name]
			if !ok {
				continue
			}
			cost := price * item.Quantity
			if bestStore < 0 || cost < bestCost {
				bestStore = i
				bestPrice = price
				bestCost = cost
			}
		}

		if bestStore < 0 {
			result.ItemsMissing++
			continue
		}

		winner := nearby[bestStore]
		stop := stops[winner.StoreID]
		if stop == nil {
			stop = &domain.StoreStop{
				StoreID:    winner.StoreID,
				StoreName:  winner.StoreName,
				DistanceKm: winner.DistanceKm,
				Latitude:   winner.Latitude,
				Longitude:  winner.Longitude,
			}
			stops[winner.StoreID] = stop
		}
		stop.Items = append(stop.Items, domain.LineItem{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       bestPrice,
			Subtotal:    bestCost,
		})
		stop.StoreTotal += bestCost
		result.TotalCost += bestCost
	}

	result.Stores = make([]domain.StoreStop, 0, len(stops))
	for _, stop := range stops {
		result.Stores = append(result.Stores, *stop)
	}
	// Largest purchase first; store ID keeps equal subtotals stable
	sort.Slice(result.Stores, func(i, j int) bool {
		if result.Stores[i].StoreTotal != result.Stores[j].StoreTotal {
			return result.Stores[i].StoreTotal > result.Stores[j].StoreTotal
		}
		return result.Stores[i].StoreID < result.Stores[j].StoreID
	})

	return result
}
