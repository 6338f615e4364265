package config

import (
	"flag"
	"os"
	"time"

	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g., "127.0.0.1:8080")
//	-s string     JWT HMAC secret key
//	-t int        access token validity, minutes
//	-r int        refresh token validity, minutes
//	-o duration   OTP validity (e.g., "5m")
//	-m int        OTP attempts before the code is burnt
//	-w duration   minimum interval between two codes for one phone
//	-x bool       echo codes in responses; use the -x=false form
//	-p string     demo password for password login
//	-l string     log level
//
// Duration flags for tokens are accepted as integers in minutes and then
// converted to time.Duration values.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-s", "-t", "-r", "-o", "-m", "-w", "-x", "-p", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.Addr, "a", config.Addr, "address and port to run server")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")

	fs.DurationVar(&config.OTPValidityDuration, "o", config.OTPValidityDuration, "otp validity")
	fs.IntVar(&config.OTPMaxAttempts, "m", config.OTPMaxAttempts, "otp max attempts")
	fs.DurationVar(&config.OTPResendInterval, "w", config.OTPResendInterval, "otp resend interval")
	fs.BoolVar(&config.ExposeOTP, "x", config.ExposeOTP, "expose otp codes in responses")
	fs.StringVar(&config.DemoPassword, "p", config.DemoPassword, "demo password")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
}
