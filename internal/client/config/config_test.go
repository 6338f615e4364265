package config

import (
	"os"
	"testing"
	"time"

	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/flagx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable the loader reads.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(flagx.ConfigEnvVar, "")
	for _, name := range []string{
		EnvAPIBaseURL, EnvRequestTimeout, EnvDBPath, EnvDeviceSecret,
		EnvResendCooldown, EnvDevServerAddr, EnvLogLevel, EnvLogDev,
	} {
		t.Setenv(name, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", c.APIBaseURL)
	assert.Equal(t, 15*time.Second, c.RequestTimeout)
	assert.Equal(t, "dudhiya.db", c.DBPath)
	assert.Equal(t, 60*time.Second, c.ResendCooldown)
	assert.Empty(t, c.DevServerAddr)
	assert.True(t, c.LogDev)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}
	clearEnv(t)

	cfg := LoadConfig()
	require.NotNil(t, cfg, "LoadConfig must not return nil")

	var want Config
	want.LoadDefaults()
	assert.Equal(t, want, *cfg)
}

func TestLoadConfig_FlagsBeatEnv(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	clearEnv(t)

	t.Setenv(EnvAPIBaseURL, "http://env:1")
	t.Setenv(EnvDBPath, "env.db")
	os.Args = []string{"testbin", "-a", "http://flag:2"}

	cfg := LoadConfig()

	assert.Equal(t, "http://flag:2", cfg.APIBaseURL)
	assert.Equal(t, "env.db", cfg.DBPath)
}
