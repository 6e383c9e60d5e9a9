package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const appDirName = "garmin-connect-cli"

// Dir returns the application configuration directory, following the XDG
// base directory rules ($XDG_CONFIG_HOME, falling back to ~/.config).
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config directory: %w", err)
	}
	return filepath.Join(base, appDirName), nil
}

// DefaultPath is the config file location used when neither --config nor
// GARMIN_CONFIG overrides it.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// TokenDir is the root of the per-profile token store. It always lives under
// the default config directory; --config moves only the config file.
func TokenDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tokens"), nil
}
