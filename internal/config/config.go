package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // ZONA_HORARIA must resolve on hosts without zoneinfo

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables
// and an optional .env file in the working directory.
type Config struct {
	// Server
	Port int    `mapstructure:"PORT"`
	Env  string `mapstructure:"APP_ENV"` // development | production

	// Remote sheet endpoint; empty runs the ledger offline
	RemoteURL            string `mapstructure:"REMOTE_URL"`
	RemoteTimeoutSeconds int    `mapstructure:"REMOTE_TIMEOUT_SECONDS"`

	// Local store
	StoreDriver string `mapstructure:"STORE_DRIVER"` // sqlite | redis | memoria
	SQLitePath  string `mapstructure:"SQLITE_PATH"`
	RedisURL    string `mapstructure:"REDIS_URL"`

	// Outbox delivery
	WorkerPoolSize     int `mapstructure:"WORKER_POOL_SIZE"`
	OutboxMaxRetries   int `mapstructure:"OUTBOX_MAX_RETRIES"`
	OutboxRetrySeconds int `mapstructure:"OUTBOX_RETRY_SECONDS"`

	// Business
	TasaUSDBs        string `mapstructure:"TASA_USD_BS"`
	TasaEURBs        string `mapstructure:"TASA_EUR_BS"`
	MonedaReferencia string `mapstructure:"MONEDA_REFERENCIA"`
	ZonaHoraria      string `mapstructure:"ZONA_HORARIA"`

	// HTTP
	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`
}

var claves = map[string]any{
	"PORT":                   8000,
	"APP_ENV":                "development",
	"REMOTE_URL":             "",
	"REMOTE_TIMEOUT_SECONDS": 30,
	"STORE_DRIVER":           "sqlite",
	"SQLITE_PATH":            "novapos.db",
	"REDIS_URL":              "redis://localhost:6379/0",
	"WORKER_POOL_SIZE":       2,
	"OUTBOX_MAX_RETRIES":     5,
	"OUTBOX_RETRY_SECONDS":   30,
	"TASA_USD_BS":            "45.50",
	"TASA_EUR_BS":            "48.20",
	"MONEDA_REFERENCIA":      "USD",
	"ZONA_HORARIA":           "America/Caracas",
	"RATE_LIMIT_RPS":         20,
	"RATE_LIMIT_BURST":       40,
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	// Unmarshal only sees keys viper knows about, so every key gets a
	// default even when it is empty.
	for k, def := range claves {
		v.SetDefault(k, def)
	}

	// Optional .env file for local development; does not fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validar(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validar() error {
	switch c.StoreDriver {
	case "sqlite", "redis", "memoria":
	default:
		return fmt.Errorf("config: STORE_DRIVER %q no soportado (sqlite|redis|memoria)", c.StoreDriver)
	}
	if _, _, err := c.Tasas(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if !strings.EqualFold(c.MonedaReferencia, "USD") {
		return fmt.Errorf("config: MONEDA_REFERENCIA %q no soportada, solo USD", c.MonedaReferencia)
	}
	return nil
}

// Tasas parses the initial exchange rates in bolívares per unit.
func (c *Config) Tasas() (usdBs, eurBs decimal.Decimal, err error) {
	usdBs, err = decimal.NewFromString(strings.TrimSpace(c.TasaUSDBs))
	if err != nil {
		return usdBs, eurBs, fmt.Errorf("config: TASA_USD_BS: %w", err)
	}
	eurBs, err = decimal.NewFromString(strings.TrimSpace(c.TasaEURBs))
	if err != nil {
		return usdBs, eurBs, fmt.Errorf("config: TASA_EUR_BS: %w", err)
	}
	return usdBs, eurBs, nil
}

// Location is the shop's time zone; calendar-day reports use it.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.ZonaHoraria)
	if err != nil {
		return nil, fmt.Errorf("config: ZONA_HORARIA: %w", err)
	}
	return loc, nil
}

func (c *Config) RemoteTimeout() time.Duration {
	return time.Duration(c.RemoteTimeoutSeconds) * time.Second
}

func (c *Config) OutboxRetryInterval() time.Duration {
	return time.Duration(c.OutboxRetrySeconds) * time.Second
}
