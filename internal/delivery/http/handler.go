package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BusqueiCompany/buscai-local-lover-sub000/internal/domain"
)

// BasketOptimizer is what the delivery layer needs from the usecase layer
type BasketOptimizer interface {
	Optimize(ctx context.Context, request *domain.OptimizeRequest) (*domain.OptimizationResult, error)
	NearbyStores(ctx context.Context, userLat, userLon float64) ([]domain.StoreCandidate, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	optimizer BasketOptimizer
}

// NewHandler creates a new HTTP handler
func NewHandler(optimizer BasketOptimizer) *Handler {
	return &Handler{optimizer: optimizer}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "busquei-backend",
		"version": "1.0.0",
	})
}

// OptimizeBasket computes the three-scenario cost comparison for the
// caller's shopping list. Either the full result is returned or a single
// error object; there are no partial results.
func (h *Handler) OptimizeBasket(c *gin.Context) {
	if h.optimizer == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error": "basket optimizer not configured",
		})
		return
	}

	var request domain.OptimizeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "missing required parameters: user_id, lat_user, lon_user",
		})
		return
	}

	result, err := h.optimizer.Optimize(c.Request.Context(), &request)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrEmptyShoppingList):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrNoNearbyStores):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// NearbyStores returns the active stores within the search radius of the
// given coordinates, closest first
func (h *Handler) NearbyStores(c *gin.Context) {
	if h.optimizer == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error": "basket optimizer not configured",
		})
		return
	}

	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "missing required parameters: lat, lon",
		})
		return
	}

	stores, err := h.optimizer.NearbyStores(c.Request.Context(), lat, lon)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if stores == nil {
		stores = []domain.StoreCandidate{}
	}
	c.JSON(http.StatusOK, gin.H{
		"stores": stores,
		"count":  len(stores),
	})
}
