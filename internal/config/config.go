package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	appName          = "termvault"
	settingsFileName = "config.yaml"

	// DefaultBusyTimeoutMs bounds how long a writer waits for the database
	// write lock.
	DefaultBusyTimeoutMs = 5000

	// DefaultActor is recorded as created_by/updated_by when no actor is
	// configured.
	DefaultActor = "termvault"
)

// GetDataDir resolves the base directory for all termvault storage. It checks
// TERMVAULT_DIR first, then XDG paths, and finally falls back to the user's
// home directory.
func GetDataDir() string {
	if explicit := os.Getenv("TERMVAULT_DIR"); explicit != "" {
		return explicit
	}

	xdg.Reload()

	dataHome := xdg.DataHome
	if dataHome == "" {
		home := xdg.Home
		if home == "" {
			var err error
			home, err = os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), appName)
			}
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataHome, appName)
}

// GetDbPath returns the absolute path to the SQLite database file.
func GetDbPath() string {
	return filepath.Join(GetDataDir(), "index.db")
}

// GetSettingsPath returns the path of the optional settings file.
func GetSettingsPath() string {
	return filepath.Join(GetDataDir(), settingsFileName)
}

// Settings holds the tunables read from config.yaml.
type Settings struct {
	// DefaultLocale is the system default locale used for display names.
	DefaultLocale string `yaml:"default_locale"`
	LogLevel      string `yaml:"log_level"`
	BusyTimeoutMs int    `yaml:"busy_timeout_ms"`
	Actor         string `yaml:"actor"`
}

// Default returns the settings used when no file is present.
func Default() Settings {
	return Settings{
		DefaultLocale: "en",
		LogLevel:      "info",
		BusyTimeoutMs: DefaultBusyTimeoutMs,
		Actor:         DefaultActor,
	}
}

// Load reads settings from path on top of the defaults. A missing file is not
// an error. DEFAULT_LOCALE overrides the configured locale.
func Load(path string) (Settings, error) {
	settings := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return settings, fmt.Errorf("failed to read settings: %w", err)
	default:
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return settings, fmt.Errorf("failed to parse settings %s: %w", path, err)
		}
	}

	if locale := os.Getenv("DEFAULT_LOCALE"); locale != "" {
		settings.DefaultLocale = locale
	}
	if settings.DefaultLocale == "" {
		settings.DefaultLocale = "en"
	}
	if settings.BusyTimeoutMs <= 0 {
		settings.BusyTimeoutMs = DefaultBusyTimeoutMs
	}
	if settings.LogLevel == "" {
		settings.LogLevel = "info"
	}
	if settings.Actor == "" {
		settings.Actor = DefaultActor
	}

	return settings, nil
}
