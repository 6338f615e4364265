package config

import (
	"encoding/json"
	"os"

	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/flagx"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/timex"
)

// JsonConfig is the on-disk shape of Config. Durations accept "3s" or
// integer nanoseconds.
type JsonConfig struct {
	APIBaseURL     string          `json:"api_base_url"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	DBPath         string          `json:"db_path"`
	DeviceSecret   string          `json:"device_secret"`
	ResendCooldown *timex.Duration `json:"resend_cooldown"`
	DevServerAddr  string          `json:"dev_server_addr"`
	LogLevel       string          `json:"log_level"`
	LogDev         *bool           `json:"log_dev"`
}

// parseJson overlays cfg with values from the JSON file named by -c/-config
// or $DUDHIYA_CONFIG. Absent fields keep their current values. Read or
// unmarshal errors panic.
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

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.DBPath != "" {
		cfg.DBPath = jc.DBPath
	}
	if jc.DeviceSecret != "" {
		cfg.DeviceSecret = jc.DeviceSecret
	}
	if jc.ResendCooldown != nil {
		cfg.ResendCooldown = jc.ResendCooldown.Duration
	}
	if jc.DevServerAddr != "" {
		cfg.DevServerAddr = jc.DevServerAddr
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.LogDev != nil {
		cfg.LogDev = *jc.LogDev
	}
}
