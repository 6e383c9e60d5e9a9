package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/garmin-connect-cli/internal/output"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func boolPtr(b bool) *bool    { return &b }

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvEmail, EnvPassword, EnvFormat, EnvProfile, EnvConfig, "XDG_CONFIG_HOME"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestResolveBuiltInDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	cfg, err := Resolve(Flags{})
	require.NoError(t, err)
	assert.Equal(t, output.FormatJSON, cfg.Format)
	assert.Equal(t, 30, cfg.Limit)
	assert.Empty(t, cfg.Profile)
	assert.Empty(t, cfg.Fields)
	assert.False(t, cfg.NoHeader)
}

func TestResolvePrecedenceChain(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[defaults]
format = "json"
limit = 30

[profiles.work]
format = "csv"
email = "work@example.com"
`)

	// Profile value beats file default.
	cfg, err := Resolve(Flags{ConfigPath: &path, Profile: strPtr("work")})
	require.NoError(t, err)
	assert.Equal(t, output.FormatCSV, cfg.Format)
	assert.Equal(t, 30, cfg.Limit)
	assert.Equal(t, "work@example.com", cfg.Email)

	// Environment beats profile.
	t.Setenv(EnvFormat, "tsv")
	cfg, err = Resolve(Flags{ConfigPath: &path, Profile: strPtr("work")})
	require.NoError(t, err)
	assert.Equal(t, output.FormatTSV, cfg.Format)

	// Explicit flag beats everything.
	cfg, err = Resolve(Flags{ConfigPath: &path, Profile: strPtr("work"), Format: strPtr("human")})
	require.NoError(t, err)
	assert.Equal(t, output.FormatHuman, cfg.Format)
}

func TestResolveProfileFromEnvAndFileDefault(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[defaults]
profile = "home"

[profiles.home]
email = "home@example.com"

[profiles.work]
email = "work@example.com"
`)

	cfg, err := Resolve(Flags{ConfigPath: &path})
	require.NoError(t, err)
	assert.Equal(t, "home", cfg.Profile)
	assert.Equal(t, "home@example.com", cfg.Email)

	t.Setenv(EnvProfile, "work")
	cfg, err = Resolve(Flags{ConfigPath: &path})
	require.NoError(t, err)
	assert.Equal(t, "work", cfg.Profile)
	assert.Equal(t, "work@example.com", cfg.Email)
}

func TestResolveEnvEmailBeatsProfileEmail(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[profiles.work]
email = "work@example.com"
`)
	t.Setenv(EnvEmail, "env@example.com")

	cfg, err := Resolve(Flags{ConfigPath: &path, Profile: strPtr("work")})
	require.NoError(t, err)
	assert.Equal(t, "env@example.com", cfg.Email)
}

func TestResolveMissingProfileFails(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `[defaults]
format = "json"
`)

	_, err := Resolve(Flags{ConfigPath: &path, Profile: strPtr("nope")})
	require.Error(t, err)

	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.ErrorContains(t, err, `profile "nope" not found`)
}

func TestResolveUnparseableFileFails(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `defaults = not toml [`)

	_, err := Resolve(Flags{ConfigPath: &path})
	require.Error(t, err)
	assert.ErrorContains(t, err, "parse config file")
}

func TestResolveMissingFileIsFine(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "absent.toml")

	cfg, err := Resolve(Flags{ConfigPath: &path})
	require.NoError(t, err)
	assert.Equal(t, output.FormatJSON, cfg.Format)
}

func TestResolveRejectsUnknownFormat(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	_, err := Resolve(Flags{Format: strPtr("yaml")})
	require.Error(t, err)
	assert.ErrorContains(t, err, "unsupported format")
}

func TestResolveRejectsNonPositiveLimit(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	_, err := Resolve(Flags{Limit: intPtr(0)})
	require.Error(t, err)
	assert.ErrorContains(t, err, "limit must be positive")
}

func TestResolveRejectsVerboseQuietCombination(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	_, err := Resolve(Flags{Verbose: boolPtr(true), Quiet: boolPtr(true)})
	require.Error(t, err)
	assert.ErrorContains(t, err, "mutually exclusive")
}

func TestResolveRejectsBadFieldSpec(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	_, err := Resolve(Flags{Fields: strPtr("a..b")})
	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid fields")
}

func TestResolveIgnoresUnknownTopLevelKeys(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
future_section = "ignored"

[defaults]
format = "jsonl"
`)

	cfg, err := Resolve(Flags{ConfigPath: &path})
	require.NoError(t, err)
	assert.Equal(t, output.FormatJSONL, cfg.Format)
}

func TestResolveRejectsUnknownProfileKeys(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[profiles.work]
email = "work@example.com"
password = "never-store-this"
`)

	_, err := Resolve(Flags{ConfigPath: &path, Profile: strPtr("work")})
	require.Error(t, err)
	assert.ErrorContains(t, err, `unknown key "password" in profile "work"`)
}

func TestResolveConfigPathFromEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `[defaults]
format = "csv"
`)
	t.Setenv(EnvConfig, path)

	cfg, err := Resolve(Flags{})
	require.NoError(t, err)
	assert.Equal(t, path, cfg.ConfigPath)
	assert.Equal(t, output.FormatCSV, cfg.Format)
}

func TestSaveProfileEmailRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	require.NoError(t, SaveProfileEmail(path, "work", "work@example.com"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(configFileMode), info.Mode().Perm())

	cfg, err := Resolve(Flags{ConfigPath: &path, Profile: strPtr("work")})
	require.NoError(t, err)
	assert.Equal(t, "work@example.com", cfg.Email)
}

func TestSaveProfileEmailPreservesUnknownKeys(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
future_section = "kept"

[defaults]
format = "csv"
`)

	require.NoError(t, SaveProfileEmail(path, "work", "work@example.com"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "future_section")
	assert.Contains(t, string(data), "work@example.com")

	cfg, err := Resolve(Flags{ConfigPath: &path, Profile: strPtr("work")})
	require.NoError(t, err)
	assert.Equal(t, output.FormatCSV, cfg.Format)
}
