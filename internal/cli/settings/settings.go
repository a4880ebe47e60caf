// Package settings persists weatherctl preferences with viper.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/yanqian/weather-dashboard/internal/domain/weather"
	"github.com/yanqian/weather-dashboard/pkg/clientid"
)

// Settings is everything the CLI remembers between runs.
type Settings struct {
	BaseURL  string `mapstructure:"base_url"`
	ClientID string `mapstructure:"client_id"`
	Units    string `mapstructure:"units"`
	Timezone string `mapstructure:"timezone"`
	Colors   bool   `mapstructure:"colors"`
}

// Store reads and writes one settings file.
type Store struct {
	path string
}

// DefaultPath returns ~/.config/weatherctl/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "weatherctl", "config.yaml"), nil
}

// NewStore binds a store to path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load reads the file, applying defaults and WEATHERCTL_* environment overrides.
// A missing file is not an error.
func (s *Store) Load() (Settings, error) {
	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("WEATHERCTL")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, fmt.Errorf("reading settings: %w", err)
		}
	}

	var out Settings
	if err := v.Unmarshal(&out); err != nil {
		return Settings{}, fmt.Errorf("unmarshaling settings: %w", err)
	}
	if err := out.Validate(); err != nil {
		return Settings{}, fmt.Errorf("validating settings: %w", err)
	}
	return out, nil
}

// Save writes every field back to the file, creating parent directories.
func (s *Store) Save(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("base_url", settings.BaseURL)
	v.Set("client_id", settings.ClientID)
	v.Set("units", settings.Units)
	v.Set("timezone", settings.Timezone)
	v.Set("colors", settings.Colors)

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// EnsureClientID mints and persists a client id on first use.
func (s *Store) EnsureClientID(settings *Settings) (bool, error) {
	if strings.TrimSpace(settings.ClientID) != "" {
		return false, nil
	}
	id, err := clientid.New()
	if err != nil {
		return false, fmt.Errorf("generate client id: %w", err)
	}
	settings.ClientID = id
	if err := s.Save(*settings); err != nil {
		return false, err
	}
	return true, nil
}

// Validate rejects values the API would refuse anyway.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.BaseURL) == "" {
		return errors.New("base_url cannot be empty")
	}
	if _, err := weather.ParseUnits(s.Units); err != nil {
		return fmt.Errorf("units: %w", err)
	}
	if s.ClientID != "" && !clientid.Valid(s.ClientID) {
		return errors.New("client_id is malformed")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", "http://localhost:8080")
	v.SetDefault("client_id", "")
	v.SetDefault("units", string(weather.UnitsMetric))
	v.SetDefault("timezone", "Local")
	v.SetDefault("colors", true)
}
