package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	configDirMode   = 0o700
	configFileMode  = 0o600
	tempFilePattern = ".config-*.toml.tmp"
)

// SaveProfileEmail persists the credential reference for a profile, creating
// the file if needed. The write edits the raw document so unknown top-level
// keys survive, and goes through a temp file and rename like the token
// store.
func SaveProfileEmail(path, profile, email string) error {
	if profile == "" {
		return errorf("profile name is empty")
	}

	raw := map[string]any{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &raw); err != nil {
			return wrapErr(err, "parse config file %s", path)
		}
	case errors.Is(err, os.ErrNotExist):
		// Start a fresh document.
	default:
		return wrapErr(err, "read config file %s", path)
	}

	profiles, ok := raw["profiles"].(map[string]any)
	if !ok {
		profiles = map[string]any{}
		raw["profiles"] = profiles
	}
	table, ok := profiles[profile].(map[string]any)
	if !ok {
		table = map[string]any{}
		profiles[profile] = table
	}
	table["email"] = email

	encoded, err := toml.Marshal(raw)
	if err != nil {
		return wrapErr(err, "encode config file")
	}

	return writeFileAtomic(path, encoded)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}

	if err := tempFile.Chmod(configFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}

	cleanup = false
	return nil
}
