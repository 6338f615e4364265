package config

import (
	"encoding/json"
	"os"

	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/flagx"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/timex"
)

// JsonConfig is the on-disk shape of Config. Durations use timex.Duration so
// both "1m" and integer nanoseconds are accepted. Pointer fields tell
// "absent" from "false"/"0".
type JsonConfig struct {
	Addr                         string          `json:"addr"`
	SecretKey                    string          `json:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	OTPValidityDuration          *timex.Duration `json:"otp_validity_duration"`
	OTPMaxAttempts               *int            `json:"otp_max_attempts"`
	OTPResendInterval            *timex.Duration `json:"otp_resend_interval"`
	ExposeOTP                    *bool           `json:"expose_otp"`
	DemoPassword                 string          `json:"demo_password"`
	LogLevel                     string          `json:"log_level"`
	LogDev                       *bool           `json:"log_dev"`
}

// parseJson overlays values from the JSON file named by -c/-config (or
// $DUDHIYA_CONFIG) onto config. Fields missing from the file keep their
// current values. A file that cannot be read or parsed panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.Addr != "" {
		config.Addr = c.Addr
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.OTPValidityDuration != nil {
		config.OTPValidityDuration = c.OTPValidityDuration.Duration
	}
	if c.OTPMaxAttempts != nil {
		config.OTPMaxAttempts = *c.OTPMaxAttempts
	}
	if c.OTPResendInterval != nil {
		config.OTPResendInterval = c.OTPResendInterval.Duration
	}
	if c.ExposeOTP != nil {
		config.ExposeOTP = *c.ExposeOTP
	}
	if c.DemoPassword != "" {
		config.DemoPassword = c.DemoPassword
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
	if c.LogDev != nil {
		config.LogDev = *c.LogDev
	}
}
