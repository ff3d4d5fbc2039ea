// Package config reads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v7"

	"github.com/TomasB/geodb/internal/logging"
)

// Config is the service configuration.  Every field is read from the
// environment variable named in its tag.
type Config struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// AuthFile lists one authorized key per line.  When unset no key is
	// loaded and every lookup is unauthorized.
	AuthFile string `env:"GEODB_AUTH_FILE"`

	CountriesPath string `env:"GEODB_COUNTRIES_PATH" envDefault:"./data/countries.yaml"`
	CountryDBPath string `env:"GEODB_COUNTRY_DB_PATH" envDefault:"./data/GeoLite2-Country.mmdb"`
	CityDBPath    string `env:"GEODB_CITY_DB_PATH" envDefault:"./data/GeoLite2-City.mmdb"`
	ASNDBPath     string `env:"GEODB_ASN_DB_PATH" envDefault:"./data/GeoLite2-ASN.mmdb"`

	SyncInterval    time.Duration `env:"GEODB_SYNC_INTERVAL" envDefault:"1h"`
	SyncDebounce    time.Duration `env:"GEODB_SYNC_DEBOUNCE" envDefault:"5s"`
	InitWarnAfter   time.Duration `env:"GEODB_INIT_WARN_AFTER" envDefault:"2m"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	SyncWatch bool `env:"GEODB_SYNC_WATCH" envDefault:"true"`

	// Port is the HTTP port.
	Port uint16 `env:"PORT" envDefault:"40000"`
	// GRPCPort is the gRPC port, 0 disables the gRPC server.
	GRPCPort uint16 `env:"GRPC_PORT" envDefault:"40001"`
}

// Load parses and validates the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating environment: %w", err)
	}

	return cfg, nil
}

// Validate returns an error describing every invalid field of c.
func (c *Config) Validate() error {
	var errs []error

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		errs = append(errs, fmt.Errorf("LOG_FORMAT: %w", err))
	}

	for _, p := range []struct {
		name, value string
	}{
		{"GEODB_COUNTRIES_PATH", c.CountriesPath},
		{"GEODB_COUNTRY_DB_PATH", c.CountryDBPath},
		{"GEODB_CITY_DB_PATH", c.CityDBPath},
		{"GEODB_ASN_DB_PATH", c.ASNDBPath},
	} {
		if p.value == "" {
			errs = append(errs, fmt.Errorf("%s: must not be empty", p.name))
		}
	}

	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"GEODB_SYNC_INTERVAL", c.SyncInterval},
		{"GEODB_SYNC_DEBOUNCE", c.SyncDebounce},
		{"GEODB_INIT_WARN_AFTER", c.InitWarnAfter},
		{"SHUTDOWN_TIMEOUT", c.ShutdownTimeout},
	} {
		if d.value <= 0 {
			errs = append(errs, fmt.Errorf("%s: must be positive, got %s", d.name, d.value))
		}
	}

	if c.Port == 0 {
		errs = append(errs, errors.New("PORT: must not be 0"))
	}
	if c.GRPCPort != 0 && c.GRPCPort == c.Port {
		errs = append(errs, fmt.Errorf("GRPC_PORT: must differ from PORT %d", c.Port))
	}

	return errors.Join(errs...)
}
