package config

import (
	"encoding/json"
	"os"

	"github.com/mvaldeb/tienda/internal/flagx"
	"github.com/mvaldeb/tienda/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "30s"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config (which uses time.Duration).
type JsonConfig struct {
	BaseURL          string         `json:"base_url"`
	PaymentPublicKey string         `json:"payment_public_key"`
	StoragePath      string         `json:"storage_path"`
	SweepInterval    timex.Duration `json:"sweep_interval"`
	HTTPTimeout      timex.Duration `json:"http_timeout"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c/-config flags via flagx.JsonConfigFlags; when
// absent, no JSON is loaded. Read or unmarshal errors panic (caller should
// recover if desired). Intended usage is defaults -> parseJson -> parseFlags,
// where later stages override earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.BaseURL != "" {
		cfg.BaseURL = jc.BaseURL
	}
	if jc.PaymentPublicKey != "" {
		cfg.PaymentPublicKey = jc.PaymentPublicKey
	}
	if jc.StoragePath != "" {
		cfg.StoragePath = jc.StoragePath
	}
	if jc.SweepInterval.Duration != 0 {
		cfg.SweepInterval = jc.SweepInterval.Duration
	}
	if jc.HTTPTimeout.Duration != 0 {
		cfg.HTTPTimeout = jc.HTTPTimeout.Duration
	}
}
