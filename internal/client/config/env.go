package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvAPIBaseURL     = "DUDHIYA_API_BASE_URL"
	EnvRequestTimeout = "DUDHIYA_REQUEST_TIMEOUT"
	EnvDBPath         = "DUDHIYA_DB_PATH"
	EnvDeviceSecret   = "DUDHIYA_DEVICE_SECRET"
	EnvResendCooldown = "DUDHIYA_RESEND_COOLDOWN"
	EnvDevServerAddr  = "DUDHIYA_DEV_SERVER_ADDR"
	EnvLogLevel       = "DUDHIYA_LOG_LEVEL"
	EnvLogDev         = "DUDHIYA_LOG_DEV"
)

// parseEnv overlays cfg with DUDHIYA_* variables. A .env file in the
// working directory is loaded first; variables already set in the process
// environment win over it. Malformed values panic, like bad flags do.
func parseEnv(cfg *Config) {
	// ok if missing
	_ = godotenv.Load()

	if v, ok := os.LookupEnv(EnvAPIBaseURL); ok && v != "" {
		cfg.APIBaseURL = v
	}
	if v, ok := os.LookupEnv(EnvRequestTimeout); ok && v != "" {
		cfg.RequestTimeout = mustDuration(EnvRequestTimeout, v)
	}
	if v, ok := os.LookupEnv(EnvDBPath); ok && v != "" {
		cfg.DBPath = v
	}
	if v, ok := os.LookupEnv(EnvDeviceSecret); ok {
		cfg.DeviceSecret = v
	}
	if v, ok := os.LookupEnv(EnvResendCooldown); ok && v != "" {
		cfg.ResendCooldown = mustDuration(EnvResendCooldown, v)
	}
	if v, ok := os.LookupEnv(EnvDevServerAddr); ok {
		cfg.DevServerAddr = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvLogDev); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(fmt.Errorf("%s: %w", EnvLogDev, err))
		}
		cfg.LogDev = b
	}
}

func mustDuration(name, v string) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", name, err))
	}
	return d
}
