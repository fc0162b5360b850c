package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config contains runtime configuration required by the service.
//
// Everything has a sensible local-first default so the binary runs
// out-of-the-box: an unset API key leaves the HTTP API open (localhost use),
// and an unset RevenueCat key puts the purchases service in mock mode.
type Config struct {
	Environment string `envconfig:"SERVICE_ENVIRONMENT" default:"development"`
	Addr        string `envconfig:"SERVICE_ADDR" default:"127.0.0.1:8080"`
	DBPath      string `envconfig:"DB_PATH" default:"smoketrack.db"`

	// APIKey gates the authenticated routes. Empty disables the gate.
	APIKey string `envconfig:"API_KEY"`

	// RevenueCat-style purchases backend. Empty key selects mock mode.
	PurchasesAPIKey      string `envconfig:"PURCHASES_API_KEY"`
	PurchasesBaseURL     string `envconfig:"PURCHASES_BASE_URL" default:"https://api.revenuecat.com/v1"`
	PurchasesEntitlement string `envconfig:"PURCHASES_ENTITLEMENT" default:"premium"`
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process config: %w", err)
	}
	return cfg, nil
}
