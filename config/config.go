package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Catalog backend identifiers
const (
	BackendPostgres = "postgres"
	BackendSupabase = "supabase"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Catalog   CatalogConfig
	Optimizer OptimizerConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig selects and configures the store/price catalog backend
type CatalogConfig struct {
	Backend     string `mapstructure:"backend"` // "postgres" or "supabase"
	DatabaseURL string `mapstructure:"database_url"`
	SupabaseURL string `mapstructure:"supabase_url"`
	SupabaseKey string `mapstructure:"supabase_key"`
}

// OptimizerConfig holds basket optimizer tuning values
type OptimizerConfig struct {
	RadiusKm   float64 `mapstructure:"radius_km"`
	ServiceFee float64 `mapstructure:"service_fee"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute per client IP
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/busquei/")

	// Environment variable settings
	v.SetEnvPrefix("BUSQUEI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"https://*.busquei.app", "http://localhost:5173"})

	// Catalog defaults. The credentials default to empty so viper binds
	// their environment variables during Unmarshal.
	v.SetDefault("catalog.backend", BackendPostgres)
	v.SetDefault("catalog.database_url", "")
	v.SetDefault("catalog.supabase_url", "")
	v.SetDefault("catalog.supabase_key", "")

	// Optimizer defaults
	v.SetDefault("optimizer.radius_km", 10.0)
	v.SetDefault("optimizer.service_fee", 15.0)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Catalog.Backend {
	case BackendPostgres:
		if config.Catalog.DatabaseURL == "" {
			return fmt.Errorf("database URL is required (set BUSQUEI_CATALOG_DATABASE_URL)")
		}
	case BackendSupabase:
		if config.Catalog.SupabaseURL == "" || config.Catalog.SupabaseKey == "" {
			return fmt.Errorf("supabase URL and key are required (set BUSQUEI_CATALOG_SUPABASE_URL and BUSQUEI_CATALOG_SUPABASE_KEY)")
		}
	default:
		return fmt.Errorf("catalog backend must be 'postgres' or 'supabase', got: %s", config.Catalog.Backend)
	}

	if config.Optimizer.RadiusKm <= 0 {
		return fmt.Errorf("optimizer radius must be positive, got: %v", config.Optimizer.RadiusKm)
	}
	if config.Optimizer.ServiceFee < 0 {
		return fmt.Errorf("service fee cannot be negative, got: %v", config.Optimizer.ServiceFee)
	}

	return nil
}
