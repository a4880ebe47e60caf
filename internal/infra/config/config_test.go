package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, "http:\n  address: \":9090\"\n"))
	t.Setenv("WEATHER_API_KEY", "")

	_, err := Load()
	require.ErrorContains(t, err, "weather.apiKey")
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, `
http:
  address: ":9090"
weather:
  apiKey: from-file
  timezone: Europe/Berlin
  cacheTtl: 2m
favorites:
  maxPerClient: 3
`))
	t.Setenv("WEATHER_API_KEY", "from-env")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "http://localhost:3000, https://app.example.com")
	t.Setenv("DASHBOARD_POLL_INTERVAL", "30s")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTP.Address)
	require.Equal(t, "from-env", cfg.Weather.APIKey)
	require.Equal(t, "Europe/Berlin", cfg.Weather.Timezone)
	require.Equal(t, 2*time.Minute, cfg.Weather.CacheTTL)
	require.Equal(t, 3, cfg.Favorites.MaxPerClient)
	require.Equal(t, []string{"http://localhost:3000", "https://app.example.com"}, cfg.HTTP.AllowedOrigins)
	require.Equal(t, 30*time.Second, cfg.Dashboard.PollInterval)
	// untouched defaults survive a partial file
	require.Equal(t, 8, cfg.Weather.HourlyPoints)
	require.Equal(t, 5, cfg.Weather.DailyDays)
}

func TestValidateRejectsUnknownTimezone(t *testing.T) {
	cfg := defaultConfig()
	cfg.Weather.APIKey = "k"
	cfg.Weather.Timezone = "Mars/Olympus"

	require.ErrorContains(t, cfg.Validate(), "weather.timezone")
}

func TestValidateValkeyNeedsAddress(t *testing.T) {
	cfg := defaultConfig()
	cfg.Weather.APIKey = "k"
	cfg.Cache.Valkey.Enabled = true

	require.ErrorContains(t, cfg.Validate(), "cache.valkey.addr")
}

func TestValidateMemoryCacheNeedsBound(t *testing.T) {
	cfg := defaultConfig()
	cfg.Weather.APIKey = "k"
	require.Equal(t, 1024, cfg.Cache.Memory.MaxEntries)
	cfg.Cache.Memory.MaxEntries = 0

	require.ErrorContains(t, cfg.Validate(), "cache.memory.maxEntries")
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}
