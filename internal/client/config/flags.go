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
//	-a string   backend base URL
//	-t int      request timeout (in seconds)
//	-d string   session database file
//	-k string   device secret
//	-w int      resend cooldown (in seconds)
//	-dev string start a development backend on this address
//	-l string   log level
//
// Only the flags above are looked at; everything else in os.Args is left to
// other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-d", "-k", "-w", "-dev", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "backend base url")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "session database file")
	fs.StringVar(&cfg.DeviceSecret, "k", cfg.DeviceSecret, "device secret")
	resendCooldown := fs.Int("w", int(cfg.ResendCooldown.Seconds()), "resend cooldown (in seconds)")
	fs.StringVar(&cfg.DevServerAddr, "dev", cfg.DevServerAddr, "run a development backend on this address")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
	cfg.ResendCooldown = time.Duration(*resendCooldown) * time.Second
}
