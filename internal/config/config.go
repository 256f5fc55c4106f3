package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	pkgconfig "github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/pkg/config"
)

// Config holds all configuration for the HomeFix client.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// API base of the HomeFix backend.
	APIBase string `env:"HOMEFIX_API_BASE" envDefault:"http://localhost:8081"`

	// Public base URL for uploaded assets; when empty, the object key is
	// used as-is.
	PublicAssetBase string `env:"HOMEFIX_S3_PUBLIC_BASE"`

	// StateDir holds the durable session entries. Defaults to the
	// user config dir.
	StateDir string `env:"HOMEFIX_STATE_DIR"`

	HTTPTimeout    time.Duration `env:"HOMEFIX_HTTP_TIMEOUT" envDefault:"30s"`
	BreakerEnabled bool          `env:"HOMEFIX_CIRCUIT_BREAKER" envDefault:"false"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load homefix config: %w", err)
	}

	u, err := url.Parse(cfg.APIBase)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", cfg.APIBase)
	}

	if cfg.StateDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve state dir: %w", err)
		}
		cfg.StateDir = filepath.Join(base, "homefix")
	}

	if cfg.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("invalid HTTP timeout: %s", cfg.HTTPTimeout)
	}

	return cfg, nil
}
