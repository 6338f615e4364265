// Package config handles configuration for the development backend,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the development backend.
//
// Fields:
//   - Addr: bind address of the HTTP listener.
//   - SecretKey: HMAC secret for signing access tokens (HS256). Do not use the default outside development.
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration: token lifetimes.
//   - OTPValidityDuration: how long a sent code stays usable.
//   - OTPMaxAttempts: wrong guesses allowed before a code is burnt.
//   - OTPResendInterval: minimum gap between two codes for one phone (429 otherwise).
//   - ExposeOTP: echo the code in the send response so a terminal client can log in without SMS.
//   - DemoPassword: secret accepted by password login for every known user.
//   - LogLevel / LogDev: zap level and encoder.
type Config struct {
	Addr                         string
	SecretKey                    string
	AccessTokenValidityDuration  time.Duration
	RefreshTokenValidityDuration time.Duration
	OTPValidityDuration          time.Duration
	OTPMaxAttempts               int
	OTPResendInterval            time.Duration
	ExposeOTP                    bool
	DemoPassword                 string
	LogLevel                     string
	LogDev                       bool
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.Addr = "127.0.0.1:8080"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.RefreshTokenValidityDuration = 7 * 24 * time.Hour
	c.OTPValidityDuration = 5 * time.Minute
	c.OTPMaxAttempts = 3
	c.OTPResendInterval = 30 * time.Second
	c.ExposeOTP = true
	c.DemoPassword = "dudhiya"
	c.LogLevel = "info"
	c.LogDev = true
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
