package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/BusqueiCompany/buscai-local-lover-sub000/config"
	httpDelivery "github.com/BusqueiCompany/buscai-local-lover-sub000/internal/delivery/http"
	"github.com/BusqueiCompany/buscai-local-lover-sub000/internal/domain"
	"github.com/BusqueiCompany/buscai-local-lover-sub000/internal/infrastructure/postgres"
	"github.com/BusqueiCompany/buscai-local-lover-sub000/internal/infrastructure/supabase"
	"github.com/BusqueiCompany/buscai-local-lover-sub000/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting BUSQUEI Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Catalog backend: %s", cfg.Catalog.Backend)

	// Initialize the catalog backend
	var catalog domain.CatalogReader
	switch cfg.Catalog.Backend {
	case config.BackendPostgres:
		pool, err := postgres.Connect(context.Background(), cfg.Catalog.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to postgres: %v", err)
		}
		defer pool.Close()
		catalog = postgres.NewRepository(pool)
		log.Printf("Connected to postgres catalog")
	case config.BackendSupabase:
		client := supabase.NewClient(cfg.Catalog.SupabaseURL, cfg.Catalog.SupabaseKey)
		if cfg.Server.Environment == "development" {
			client.SetDebug(true)
			log.Printf("Supabase client debug mode enabled")
		}
		catalog = client
		log.Printf("Supabase catalog configured: %s", cfg.Catalog.SupabaseURL)
	}

	// Initialize usecase layer
	optimizer := usecase.NewOptimizerService(
		catalog,
		catalog,
		catalog,
		usecase.OptimizerConfig{
			SearchRadiusKm: cfg.Optimizer.RadiusKm,
			ServiceFee:     cfg.Optimizer.ServiceFee,
		},
	)

	log.Printf("Optimizer: radius=%.1fkm, service fee=%.2f", cfg.Optimizer.RadiusKm, cfg.Optimizer.ServiceFee)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(optimizer)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
