package usecase

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/BusqueiCompany/buscai-local-lover-sub000/internal/domain"
)

// MockCatalog is a mock implementation of the three catalog read interfaces
type MockCatalog struct {
	stores    []domain.Store
	prices    []domain.PriceEntry
	items     []domain.ShoppingItem
	storesErr error
	pricesErr error
	itemsErr  error

	pricesStoreIDs []string // captured from the last ListPrices call
}

func (m *MockCatalog) ListActiveStores(ctx context.Context) ([]domain.Store, error) {
	if m.storesErr != nil {
		return nil, m.storesErr
	}
	return m.stores, nil
}

func (m *MockCatalog) ListPrices(ctx context.Context, storeIDs []string) ([]domain.PriceEntry, error) {
	m.pricesStoreIDs = storeIDs
	if m.pricesErr != nil {
		return nil, m.pricesErr
	}
	return m.prices, nil
}

func (m *MockCatalog) ListActiveItems(ctx context.Context, userID string) ([]domain.ShoppingItem, error) {
	if m.itemsErr != nil {
		return nil, m.itemsErr
	}
	return m.items, nil
}

func newService(catalog *MockCatalog, config OptimizerConfig) *OptimizerService {
	return NewOptimizerService(catalog, catalog, catalog, config)
}

func ptr(f float64) *float64 { return &f }

func optimizeRequest(userID string, lat, lon float64) *domain.OptimizeRequest {
	return &domain.OptimizeRequest{UserID: userID, LatUser: ptr(lat), LonUser: ptr(lon)}
}

// User location for the Rio worked example; stores are placed due south so
// distances are purely latitudinal (1 degree of latitude is ~111.19 km).
const (
	userLat = -22.90
	userLon = -43.56
)

// rioCatalog builds the worked example: Store X at ~2 km with
// arroz=20/feijão=8, Store Y at ~5 km with arroz=18/feijão=9.
func rioCatalog() *MockCatalog {
	return &MockCatalog{
		stores: []domain.Store{
			{ID: "store-x", Name: "Store X", Latitude: ptr(-22.918), Longitude: ptr(-43.56)},
			{ID: "store-y", Name: "Store Y", Latitude: ptr(-22.945), Longitude: ptr(-43.56)},
		},
		prices: []domain.PriceEntry{
			{StoreID: "store-x", ProductName: "Arroz", UnitPrice: 20},
			{StoreID: "store-x", ProductName: "Feijão", UnitPrice: 8},
			{StoreID: "store-y", ProductName: "arroz", UnitPrice: 18},
			{StoreID: "store-y", ProductName: "feijão", UnitPrice: 9},
		},
		items: []domain.ShoppingItem{
			{ProductName: "arroz", Quantity: 1, UnitType: domain.UnitTypeKg},
			{ProductName: "feijão", Quantity: 2, UnitType: domain.UnitTypeKg},
		},
	}
}

func TestNewOptimizerService(t *testing.T) {
	catalog := &MockCatalog{}

	t.Run("applies defaults", func(t *testing.T) {
		svc := newService(catalog, OptimizerConfig{})
		if svc.searchRadiusKm != 10 {
			t.Errorf("searchRadiusKm = %v, want 10", svc.searchRadiusKm)
		}
		if svc.ServiceFee() != 15 {
			t.Errorf("ServiceFee() = %v, want 15", svc.ServiceFee())
		}
	})

	t.Run("keeps configured values", func(t *testing.T) {
		svc := newService(catalog, OptimizerConfig{SearchRadiusKm: 25, ServiceFee: 7.5})
		if svc.searchRadiusKm != 25 {
			t.Errorf("searchRadiusKm = %v, want 25", svc.searchRadiusKm)
		}
		if svc.ServiceFee() != 7.5 {
			t.Errorf("ServiceFee() = %v, want 7.5", svc.ServiceFee())
		}
	})
}

func TestOptimize_WorkedExample(t *testing.T) {
	catalog := rioCatalog()
	svc := newService(catalog, OptimizerConfig{})

	result, err := svc.Optimize(context.Background(), optimizeRequest("user-1", userLat, userLon))
	if err != nil {
		t.Fatalf("Optimize() error = %v", err)
	}

	a := result.ScenarioA
	if a.StoreID != "store-x" || a.StoreName != "Store X" {
		t.Errorf("scenario A store = %s (%s), want store-x (Store X)", a.StoreID, a.StoreName)
	}
	if a.TotalCost != 36 {
		t.Errorf("scenario A total = %v, want 36", a.TotalCost)
	}
	if a.ItemsFound != 2 || a.ItemsMissing != 0 {
		t.Errorf("scenario A found/missing = %d/%d, want 2/0", a.ItemsFound, a.ItemsMissing)
	}
	if a.DistanceKm < 1.8 || a.DistanceKm > 2.2 {
		t.Errorf("scenario A distance = %v, want ~2", a.DistanceKm)
	}

	b := result.ScenarioB
	if b.TotalCost != 34 {
		t.Errorf("scenario B total = %v, want 34", b.TotalCost)
	}
	if b.ItemsMissing != 0 {
		t.Errorf("scenario B missing = %d, want 0", b.ItemsMissing)
	}
	if len(b.Stores) != 2 {
		t.Fatalf("scenario B stops = %d, want 2", len(b.Stores))
	}
	// Largest purchase first: arroz at Y (18) before feijão at X (16)
	if b.Stores[0].StoreID != "store-y" || b.Stores[0].StoreTotal != 18 {
		t.Errorf("first stop = %s/%v, want store-y/18", b.Stores[0].StoreID, b.Stores[0].StoreTotal)
	}
	if b.Stores[1].StoreID != "store-x" || b.Stores[1].StoreTotal != 16 {
		t.Errorf("second stop = %s/%v, want store-x/16", b.Stores[1].StoreID, b.Stores[1].StoreTotal)
	}

	c := result.ScenarioC
	if c.TotalCost != 49 {
		t.Errorf("scenario C total = %v, want 49", c.TotalCost)
	}
	if c.ServiceFee != 15 {
		t.Errorf("scenario C fee = %v, want 15", c.ServiceFee)
	}
	if c.NetSavings != -13 {
		t.Errorf("scenario C net savings = %v, want -13", c.NetSavings)
	}

	if len(result.ShoppingList) != 2 {
		t.Errorf("echoed shopping list has %d items, want 2", len(result.ShoppingList))
	}
}

func TestOptimize_ScenarioCDerivation(t *testing.T) {
	catalog := rioCatalog()
	svc := newService(catalog, OptimizerConfig{ServiceFee: 9.99})

	result, err := svc.Optimize(context.Background(), optimizeRequest("user-1", userLat, userLon))
	if err != nil {
		t.Fatalf("Optimize() error = %v", err)
	}

	if result.ScenarioC.TotalCost != result.ScenarioB.TotalCost+9.99 {
		t.Errorf("scenario C total = %v, want B total + fee = %v",
			result.ScenarioC.TotalCost, result.ScenarioB.TotalCost+9.99)
	}
	if result.ScenarioC.NetSavings != result.ScenarioA.TotalCost-result.ScenarioC.TotalCost {
		t.Errorf("net savings = %v, want A - C = %v",
			result.ScenarioC.NetSavings, result.ScenarioA.TotalCost-result.ScenarioC.TotalCost)
	}
}

func TestOptimize_MissingItemCountedInBothScenarios(t *testing.T) {
	catalog := rioCatalog()
	catalog.items = append(catalog.items, domain.ShoppingItem{
		ProductName: "farofa", Quantity: 3, UnitType: domain.UnitTypeUnit,
	})
	svc := newService(catalog, OptimizerConfig{})

	result, err := svc.Optimize(context.Background(), optimizeRequest("user-1", userLat, userLon))
	if err != nil {
		t.Fatalf("Optimize() error = %v", err)
	}

	// Conservation: found + missing covers the whole list in scenario A
	a := result.ScenarioA
	if a.ItemsFound+a.ItemsMissing != len(catalog.items) {
		t.Errorf("scenario A found+missing = %d, want %d", a.ItemsFound+a.ItemsMissing, len(catalog.items))
	}
	if a.ItemsMissing != 1 {
		t.Errorf("scenario A missing = %d, want 1", a.ItemsMissing)
	}
	if a.TotalCost != 36 {
		t.Errorf("scenario A total = %v, want 36 (missing item contributes nothing)", a.TotalCost)
	}

	if result.ScenarioB.ItemsMissing != 1 {
		t.Errorf("scenario B missing = %d, want 1", result.ScenarioB.ItemsMissing)
	}
	if result.ScenarioB.TotalCost != 34 {
		t.Errorf("scenario B total = %v, want 34", result.ScenarioB.TotalCost)
	}
}

func TestOptimize_ScenarioBPerItemOptimality(t *testing.T) {
	catalog := rioCatalog()
	svc := newService(catalog, OptimizerConfig{})

	result, err := svc.Optimize(context.Background(), optimizeRequest("user-1", userLat, userLon))
	if err != nil {
		t.Fatalf("Optimize() error = %v", err)
	}

	// No nearby store offers a strictly lower price*quantity than the chosen one
	index := buildPriceIndex(catalog.prices)
	for _, stop := range result.ScenarioB.Stores {
		for _, line := range stop.Items {
			name := NormalizeProductName(line.ProductName)
			for storeID, byName := range index {
				price, ok := byName[name]
				if !ok {
					continue
				}
				if price*line.Quantity < line.Subtotal {
					t.Errorf("item %q chosen at %s for %v, but %s offers %v",
						line.ProductName, stop.StoreID, line.Subtotal, storeID, price*line.Quantity)
				}
			}
		}
	}
}

func TestOptimize_TieBreak(t *testing.T) {
	t.Run("equal price goes to nearer store", func(t *testing.T) {
		catalog := rioCatalog()
		// Y matches X's arroz price; X is closer and must win both items
		catalog.prices[2].UnitPrice = 20
		svc := newService(catalog, OptimizerConfig{})

		result, err := svc.Optimize(context.Background(), optimizeRequest("user-1", userLat, userLon))
		if err != nil {
			t.Fatalf("Optimize() error = %v", err)
		}
		if len(result.ScenarioB.Stores) != 1 {
			t.Fatalf("stops = %d, want 1", len(result.ScenarioB.Stores))
		}
		if result.ScenarioB.Stores[0].StoreID != "store-x" {
			t.Errorf("winner = %s, want store-x", result.ScenarioB.Stores[0].StoreID)
		}
	})

	t.Run("equal distance goes to lower store ID", func(t *testing.T) {
		catalog := rioCatalog()
		// Co-locate both stores and equalize every price
		catalog.stores[1].Latitude = ptr(-22.918)
		catalog.prices[2].UnitPrice = 20
		catalog.prices[3].UnitPrice = 8
		svc := newService(catalog, OptimizerConfig{})

		result, err := svc.Optimize(context.Background(), optimizeRequest("user-1", userLat, userLon))
		if err != nil {
			t.Fatalf("Optimize() error = %v", err)
		}
		if result.ScenarioA.StoreID != "store-x" {
			t.Errorf("scenario A store = %s, want store-x", result.ScenarioA.StoreID)
		}
		if len(result.ScenarioB.Stores) != 1 || result.ScenarioB.Stores[0].StoreID != "store-x" {
			t.Errorf("scenario B winner = %+v, want single stop at store-x", result.ScenarioB.Stores)
		}
	})
}

func TestOptimize_Errors(t *testing.T) {
	t.Run("nil request", func(t *testing.T) {
		svc := newService(rioCatalog(), OptimizerConfig{})
		_, err := svc.Optimize(context.Background(), nil)
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("error = %v, want ErrInvalidRequest", err)
		}
	})

	t.Run("missing user id", func(t *testing.T) {
		svc := newService(rioCatalog(), OptimizerConfig{})
		_, err := svc.Optimize(context.Background(), optimizeRequest("", userLat, userLon))
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("error = %v, want ErrInvalidRequest", err)
		}
	})

	t.Run("NaN user coordinates", func(t *testing.T) {
		svc := newService(rioCatalog(), OptimizerConfig{})
		_, err := svc.Optimize(context.Background(), optimizeRequest("user-1", math.NaN(), userLon))
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("error = %v, want ErrInvalidRequest", err)
		}
	})

	t.Run("empty shopping list", func(t *testing.T) {
		catalog := rioCatalog()
		catalog.items = nil
		svc := newService(catalog, OptimizerConfig{})
		_, err := svc.Optimize(context.Background(), optimizeRequest("user-1", userLat, userLon))
		if !errors.Is(err, domain.ErrEmptyShoppingList) {
			t.Errorf("error = %v, want ErrEmptyShoppingList", err)
		}
	})

	t.Run("no store within radius", func(t *testing.T) {
		catalog := rioCatalog()
		svc := newService(catalog, OptimizerConfig{})
		// São Paulo is far outside the 10 km radius around the Rio stores
		_, err := svc.Optimize(context.Background(), optimizeRequest("user-1", -23.55, -46.63))
		if !errors.Is(err, domain.ErrNoNearbyStores) {
			t.Errorf("error = %v, want ErrNoNearbyStores", err)
		}
	})

	t.Run("shopping list query failure", func(t *testing.T) {
		catalog := rioCatalog()
		catalog.itemsErr = errors.New("connection refused")
		svc := newService(catalog, OptimizerConfig{})
		_, err := svc.Optimize(context.Background(), optimizeRequest("user-1", userLat, userLon))
		if !errors.Is(err, domain.ErrCatalogUnavailable) {
			t.Errorf("error = %v, want ErrCatalogUnavailable", err)
		}
	})

	t.Run("store query failure", func(t *testing.T) {
		catalog := rioCatalog()
		catalog.storesErr = errors.New("connection refused")
		svc := newService(catalog, OptimizerConfig{})
		_, err := svc.Optimize(context.Background(), optimizeRequest("user-1", userLat, userLon))
		if !errors.Is(err, domain.ErrCatalogUnavailable) {
			t.Errorf("error = %v, want ErrCatalogUnavailable", err)
		}
	})

	t.Run("price query failure", func(t *testing.T) {
		catalog := rioCatalog()
		catalog.pricesErr = errors.New("connection refused")
		svc := newService(catalog, OptimizerConfig{})
		_, err := svc.Optimize(context.Background(), optimizeRequest("user-1", userLat, userLon))
		if !errors.Is(err, domain.ErrCatalogUnavailable) {
			t.Errorf("error = %v, want ErrCatalogUnavailable", err)
		}
	})
}

func TestNearbyStores(t *testing.T) {
	t.Run("filters by radius and sorts by distance", func(t *testing.T) {
		catalog := rioCatalog()
		catalog.stores = append(catalog.stores,
			// ~16.7 km south, outside the default radius
			domain.Store{ID: "store-far", Name: "Store Far", Latitude: ptr(-23.05), Longitude: ptr(-43.56)},
		)
		svc := newService(catalog, OptimizerConfig{})

		nearby, err := svc.NearbyStores(context.Background(), userLat, userLon)
		if err != nil {
			t.Fatalf("NearbyStores() error = %v", err)
		}

		if len(nearby) != 2 {
			t.Fatalf("len(nearby) = %d, want 2", len(nearby))
		}
		if nearby[0].StoreID != "store-x" || nearby[1].StoreID != "store-y" {
			t.Errorf("order = %s, %s, want store-x, store-y", nearby[0].StoreID, nearby[1].StoreID)
		}
		for _, c := range nearby {
			if c.DistanceKm > 10 {
				t.Errorf("store %s distance %v exceeds radius", c.StoreID, c.DistanceKm)
			}
		}
	})

	t.Run("skips stores without coordinates", func(t *testing.T) {
		catalog := rioCatalog()
		catalog.stores = append(catalog.stores,
			domain.Store{ID: "store-nil", Name: "No Coords"},
		)
		svc := newService(catalog, OptimizerConfig{})

		nearby, err := svc.NearbyStores(context.Background(), userLat, userLon)
		if err != nil {
			t.Fatalf("NearbyStores() error = %v", err)
		}
		for _, c := range nearby {
			if c.StoreID == "store-nil" {
				t.Error("store without coordinates was not excluded")
			}
		}
	})

	t.Run("excludes malformed coordinates", func(t *testing.T) {
		catalog := rioCatalog()
		catalog.stores = append(catalog.stores,
			domain.Store{ID: "store-nan", Name: "Broken", Latitude: ptr(math.NaN()), Longitude: ptr(-43.56)},
			domain.Store{ID: "store-range", Name: "Broken2", Latitude: ptr(-122.9), Longitude: ptr(-43.56)},
		)
		svc := newService(catalog, OptimizerConfig{})

		nearby, err := svc.NearbyStores(context.Background(), userLat, userLon)
		if err != nil {
			t.Fatalf("NearbyStores() error = %v", err)
		}
		if len(nearby) != 2 {
			t.Errorf("len(nearby) = %d, want 2 (malformed stores excluded)", len(nearby))
		}
	})

	t.Run("custom radius widens the search", func(t *testing.T) {
		catalog := rioCatalog()
		catalog.stores = append(catalog.stores,
			domain.Store{ID: "store-far", Name: "Store Far", Latitude: ptr(-23.05), Longitude: ptr(-43.56)},
		)
		svc := newService(catalog, OptimizerConfig{SearchRadiusKm: 30})

		nearby, err := svc.NearbyStores(context.Background(), userLat, userLon)
		if err != nil {
			t.Fatalf("NearbyStores() error = %v", err)
		}
		if len(nearby) != 3 {
			t.Errorf("len(nearby) = %d, want 3 with 30 km radius", len(nearby))
		}
	})
}

func TestOptimize_PriceQueryScopedToNearbyStores(t *testing.T) {
	catalog := rioCatalog()
	catalog.stores = append(catalog.stores,
		domain.Store{ID: "store-far", Name: "Store Far", Latitude: ptr(-23.05), Longitude: ptr(-43.56)},
	)
	svc := newService(catalog, OptimizerConfig{})

	_, err := svc.Optimize(context.Background(), optimizeRequest("user-1", userLat, userLon))
	if err != nil {
		t.Fatalf("Optimize() error = %v", err)
	}

	if len(catalog.pricesStoreIDs) != 2 {
		t.Fatalf("ListPrices called with %d store IDs, want 2", len(catalog.pricesStoreIDs))
	}
	for _, id := range catalog.pricesStoreIDs {
		if id == "store-far" {
			t.Error("price query included a store outside the radius")
		}
	}
}

func TestNormalizeProductName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Arroz", "arroz"},
		{"  Feijão Preto  ", "feijão preto"},
		{"LEITE", "leite"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeProductName(tt.in); got != tt.want {
			t.Errorf("NormalizeProductName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
