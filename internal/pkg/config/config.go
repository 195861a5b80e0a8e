// Package config loads process settings from the environment, after an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	APIBaseURL  string        `envconfig:"API_BASE_URL" default:"http://localhost:5000"`
	APIToken    string        `envconfig:"API_TOKEN"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`

	CartDBPath string `envconfig:"CART_DB_PATH" default:"data/shop.db"`

	// RedisAddr enables the product lookup cache when set.
	RedisAddr       string        `envconfig:"REDIS_ADDR"`
	ProductCacheTTL time.Duration `envconfig:"PRODUCT_CACHE_TTL" default:"30s"`

	StockPolicy string `envconfig:"STOCK_POLICY" default:"strict"`

	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	ServiceName  string `envconfig:"OTEL_SERVICE_NAME" default:"shop"`
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	// Port is only read by the development backend.
	Port string `envconfig:"PORT" default:"5000"`
}

// Load reads envFiles (a missing file is not an error) and then the
// environment. Variables already set win over file values.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("config: HTTP_TIMEOUT must be positive, got %s", cfg.HTTPTimeout)
	}
	return &cfg, nil
}
