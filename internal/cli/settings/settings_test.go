package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "weatherctl", "config.yaml"))

	got, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080", got.BaseURL)
	require.Equal(t, "metric", got.Units)
	require.Empty(t, got.ClientID)
	require.True(t, got.Colors)
}

func TestEnsureClientIDPersists(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nested", "config.yaml"))
	current, err := store.Load()
	require.NoError(t, err)

	minted, err := store.EnsureClientID(&current)
	require.NoError(t, err)
	require.True(t, minted)
	require.Len(t, current.ClientID, 48)

	reloaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, current.ClientID, reloaded.ClientID)

	minted, err = store.EnsureClientID(&reloaded)
	require.NoError(t, err)
	require.False(t, minted)
}

func TestSaveRoundTripsUnits(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "config.yaml"))
	current, err := store.Load()
	require.NoError(t, err)

	current.Units = "imperial"
	current.Colors = false
	require.NoError(t, store.Save(current))

	reloaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "imperial", reloaded.Units)
	require.False(t, reloaded.Colors)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: http://file.test\n"), 0o600))
	t.Setenv("WEATHERCTL_BASE_URL", "http://env.test")

	got, err := NewStore(path).Load()
	require.NoError(t, err)
	require.Equal(t, "http://env.test", got.BaseURL)
}

func TestLoadRejectsBadUnits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("units: kelvin\n"), 0o600))

	_, err := NewStore(path).Load()
	require.ErrorContains(t, err, "units")
}
