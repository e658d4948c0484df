// Package config loads storefront settings from an optional YAML file and
// environment variables. Environment values win over the file.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all storefront settings.
type Config struct {
	HTTPAddr string `yaml:"http_addr"`

	Catalog  CatalogConfig  `yaml:"catalog"`
	Checkout CheckoutConfig `yaml:"checkout"`
	Pricing  PricingConfig  `yaml:"pricing"`
	Sessions SessionsConfig `yaml:"sessions"`

	// RedisAddr enables the catalog cache when set.
	RedisAddr string `yaml:"redis_addr"`

	// OrderLogPath enables the SQLite order log when set.
	OrderLogPath string `yaml:"order_log_path"`

	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type CatalogConfig struct {
	URL      string        `yaml:"url"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type CheckoutConfig struct {
	WebhookURL string `yaml:"webhook_url"`
	// Timeout of the webhook call; zero means no timeout.
	Timeout  time.Duration `yaml:"timeout"`
	Timezone string        `yaml:"timezone"`
}

type PricingConfig struct {
	CustomQuantityPriceMultiplier int `yaml:"custom_quantity_price_multiplier"`
	MinimumCustomQuantity         int `yaml:"minimum_custom_quantity"`
}

type SessionsConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type TelemetryConfig struct {
	ServiceName string `yaml:"service_name"`
	// OTLPEndpoint enables tracing when set.
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// Default returns the built-in settings. WebhookURL has no default; an empty
// catalog URL is filled by Load with the products.json served on HTTPAddr.
func Default() Config {
	return Config{
		HTTPAddr: ":8080",
		Catalog: CatalogConfig{
			CacheTTL: 5 * time.Minute,
		},
		Checkout: CheckoutConfig{
			Timezone: "Local",
		},
		Pricing: PricingConfig{
			CustomQuantityPriceMultiplier: 2,
			MinimumCustomQuantity:         1000,
		},
		Sessions: SessionsConfig{
			TTL:           24 * time.Hour,
			SweepInterval: 10 * time.Minute,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "storefront",
		},
	}
}

// Load reads the file named by STOREFRONT_CONFIG, if any, then applies
// environment overrides and validates the result.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("STOREFRONT_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if cfg.Catalog.URL == "" {
		cfg.Catalog.URL = localCatalogURL(cfg.HTTPAddr)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.HTTPAddr = getEnv("HTTP_ADDR", c.HTTPAddr)
	c.Catalog.URL = getEnv("CATALOG_URL", c.Catalog.URL)
	c.Checkout.WebhookURL = getEnv("WEBHOOK_URL", c.Checkout.WebhookURL)
	c.Checkout.Timezone = getEnv("ORDER_TIMEZONE", c.Checkout.Timezone)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.OrderLogPath = getEnv("ORDER_LOG_PATH", c.OrderLogPath)
	c.Telemetry.ServiceName = getEnv("OTEL_SERVICE_NAME", c.Telemetry.ServiceName)
	c.Telemetry.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.Telemetry.OTLPEndpoint)

	var err error
	if c.Catalog.CacheTTL, err = getDuration("CATALOG_CACHE_TTL", c.Catalog.CacheTTL); err != nil {
		return err
	}
	if c.Checkout.Timeout, err = getDuration("WEBHOOK_TIMEOUT", c.Checkout.Timeout); err != nil {
		return err
	}
	if c.Sessions.TTL, err = getDuration("SESSION_TTL", c.Sessions.TTL); err != nil {
		return err
	}
	if c.Pricing.CustomQuantityPriceMultiplier, err = getInt("CUSTOM_PRICE_MULTIPLIER", c.Pricing.CustomQuantityPriceMultiplier); err != nil {
		return err
	}
	if c.Pricing.MinimumCustomQuantity, err = getInt("CUSTOM_MIN_QUANTITY", c.Pricing.MinimumCustomQuantity); err != nil {
		return err
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Checkout.WebhookURL == "" {
		errs = append(errs, errors.New("config: webhook url is required (WEBHOOK_URL)"))
	}
	if c.Catalog.URL == "" {
		errs = append(errs, errors.New("config: catalog url is required (CATALOG_URL)"))
	}
	if c.Pricing.CustomQuantityPriceMultiplier < 1 {
		errs = append(errs, fmt.Errorf("config: custom quantity price multiplier must be >= 1, got %d", c.Pricing.CustomQuantityPriceMultiplier))
	}
	if c.Pricing.MinimumCustomQuantity < 1 {
		errs = append(errs, fmt.Errorf("config: minimum custom quantity must be >= 1, got %d", c.Pricing.MinimumCustomQuantity))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Location resolves the time zone used for order timestamps.
func (c *Config) Location() (*time.Location, error) {
	if c.Checkout.Timezone == "" || c.Checkout.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Checkout.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Checkout.Timezone, err)
	}
	return loc, nil
}

// localCatalogURL points at the products.json this process serves on addr.
func localCatalogURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return ""
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + "/products.json"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}
