package config

import "time"

// Config holds runtime settings for the storefront client.
//
// Fields:
//   - BaseURL: root of the backend REST API.
//   - PaymentPublicKey: public key the hosted payment widget is initialized
//     with.
//   - StoragePath: sqlite file holding client-local state.
//   - SweepInterval: how often the local auth-expiry sweep runs.
//   - HTTPTimeout: per-request timeout for backend calls.
type Config struct {
	BaseURL          string
	PaymentPublicKey string
	StoragePath      string
	SweepInterval    time.Duration
	HTTPTimeout      time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://127.0.0.1:8000"
	c.PaymentPublicKey = ""
	c.StoragePath = "tienda.db"
	c.SweepInterval = 30 * time.Second
	c.HTTPTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
