package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	cases := map[string]struct {
		args   []string
		mutate func(c *Config)
	}{
		"nothing given keeps defaults": {
			mutate: func(*Config) {},
		},
		"listener and signing": {
			args: []string{"-a", "0.0.0.0:9090", "-s", "jwt-secret", "-t", "1", "-r", "3"},
			mutate: func(c *Config) {
				c.Addr = "0.0.0.0:9090"
				c.SecretKey = "jwt-secret"
				c.AccessTokenValidityDuration = time.Minute
				c.RefreshTokenValidityDuration = 3 * time.Minute
			},
		},
		"otp policy": {
			args: []string{"-o", "2m", "-m", "5", "-w", "10s", "-x=false"},
			mutate: func(c *Config) {
				c.OTPValidityDuration = 2 * time.Minute
				c.OTPMaxAttempts = 5
				c.OTPResendInterval = 10 * time.Second
				c.ExposeOTP = false
			},
		},
		"demo login and logs, client flags ignored": {
			args: []string{"-dev", ":1", "-p", "pw", "-l", "debug", "-k", "device"},
			mutate: func(c *Config) {
				c.DemoPassword = "pw"
				c.LogLevel = "debug"
			},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			os.Args = append([]string{"server"}, tc.args...)

			got := &Config{}
			got.LoadDefaults()
			parseFlags(got)

			want := &Config{}
			want.LoadDefaults()
			tc.mutate(want)
			assert.Empty(t, cmp.Diff(want, got))
		})
	}
}

func TestParseFlags_BadValuesPanic(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	for _, args := range [][]string{{"-o", "soon"}, {"-m", "many"}, {"-t", "1h"}} {
		os.Args = append([]string{"server"}, args...)
		assert.Panics(t, func() { parseFlags(&Config{}) }, "%v", args)
	}
}
