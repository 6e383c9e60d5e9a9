// Package config merges CLI flags, environment variables, named profiles,
// and the persisted config file into one effective configuration per
// invocation.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/bnema/garmin-connect-cli/internal/output"
)

// Built-in defaults, the lowest precedence layer.
const (
	DefaultFormat = output.FormatJSON
	DefaultLimit  = 30
)

// Environment variable names, the fixed set mapping 1:1 to options.
const (
	EnvEmail    = "GARMIN_EMAIL"
	EnvPassword = "GARMIN_PASSWORD"
	EnvFormat   = "GARMIN_FORMAT"
	EnvProfile  = "GARMIN_PROFILE"
	EnvConfig   = "GARMIN_CONFIG"
)

// Error marks a configuration problem: the invocation cannot proceed and
// retrying without changing inputs will not help.
type Error struct {
	msg string
	err error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

func errorf(format string, args ...any) *Error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

func wrapErr(err error, format string, args ...any) *Error {
	return &Error{msg: fmt.Sprintf(format, args...), err: err}
}

// Flags carries the CLI options the user set explicitly. Nil means the flag
// was not given, so lower precedence layers apply.
type Flags struct {
	Format     *string
	Fields     *string
	NoHeader   *bool
	Verbose    *bool
	Quiet      *bool
	ConfigPath *string
	Profile    *string
	Limit      *int
}

// Config is the effective configuration: computed once per invocation,
// immutable thereafter, and passed explicitly to every component.
type Config struct {
	Format     output.Format
	Fields     output.FieldSpec
	NoHeader   bool
	Verbose    bool
	Quiet      bool
	ConfigPath string
	Profile    string
	Limit      int

	// Credentials resolved for the active profile; may be empty.
	Email    string
	Password string
}

// Resolve merges all layers, highest precedence first: explicit CLI flag,
// environment variable, active profile value, file-level default, built-in
// default. It is a pure merge; persisting changes goes through SaveProfile.
func Resolve(flags Flags) (*Config, error) {
	env := viper.New()
	must(env.BindEnv("config", EnvConfig))
	must(env.BindEnv("format", EnvFormat))
	must(env.BindEnv("profile", EnvProfile))
	must(env.BindEnv("email", EnvEmail))
	must(env.BindEnv("password", EnvPassword))

	defaultPath, err := DefaultPath()
	if err != nil {
		return nil, wrapErr(err, "resolve config path")
	}
	env.SetDefault("config", defaultPath)

	configPath := env.GetString("config")
	if flags.ConfigPath != nil {
		configPath = *flags.ConfigPath
	}

	file, err := readFile(configPath)
	if err != nil {
		return nil, err
	}

	profile := firstNonEmpty(
		deref(flags.Profile),
		env.GetString("profile"),
		file.Defaults.Profile,
	)

	var active fileProfile
	if profile != "" {
		p, ok := file.Profiles[profile]
		if !ok {
			return nil, errorf("profile %q not found in %s", profile, configPath)
		}
		active = p
	}

	formatName := firstNonEmpty(
		deref(flags.Format),
		env.GetString("format"),
		active.Format,
		file.Defaults.Format,
		string(DefaultFormat),
	)
	format, err := output.ParseFormat(formatName)
	if err != nil {
		return nil, wrapErr(err, "invalid format")
	}

	limit := DefaultLimit
	switch {
	case flags.Limit != nil:
		limit = *flags.Limit
	case active.Limit != nil:
		limit = *active.Limit
	case file.Defaults.Limit != nil:
		limit = *file.Defaults.Limit
	}
	if limit <= 0 {
		return nil, errorf("limit must be positive, got %d", limit)
	}

	var fields output.FieldSpec
	if flags.Fields != nil {
		fields, err = output.ParseFieldSpec(*flags.Fields)
		if err != nil {
			return nil, wrapErr(err, "invalid fields")
		}
	}

	verbose := deref(flags.Verbose)
	quiet := deref(flags.Quiet)
	if verbose && quiet {
		return nil, errorf("--verbose and --quiet are mutually exclusive")
	}

	email := firstNonEmpty(env.GetString("email"), active.Email)

	return &Config{
		Format:     format,
		Fields:     fields,
		NoHeader:   deref(flags.NoHeader),
		Verbose:    verbose,
		Quiet:      quiet,
		ConfigPath: configPath,
		Profile:    profile,
		Limit:      limit,
		Email:      email,
		Password:   env.GetString("password"),
	}, nil
}

type fileDefaults struct {
	Format  string `toml:"format"`
	Limit   *int   `toml:"limit"`
	Profile string `toml:"profile"`
}

type fileProfile struct {
	Email  string `toml:"email"`
	Format string `toml:"format"`
	Limit  *int   `toml:"limit"`
}

type fileConfig struct {
	Defaults fileDefaults           `toml:"defaults"`
	Profiles map[string]fileProfile `toml:"profiles"`
}

var profileKeys = map[string]bool{"email": true, "format": true, "limit": true}

// readFile loads and validates the config file. A missing file is a normal
// outcome; unknown top-level keys are ignored for forward compatibility, but
// unknown keys inside a recognized profile are rejected.
func readFile(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileConfig{}, nil
		}
		return fileConfig{}, wrapErr(err, "read config file %s", path)
	}

	var file fileConfig
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileConfig{}, wrapErr(err, "parse config file %s", path)
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fileConfig{}, wrapErr(err, "parse config file %s", path)
	}
	if err := validateProfileKeys(raw, path); err != nil {
		return fileConfig{}, err
	}

	return file, nil
}

func validateProfileKeys(raw map[string]any, path string) error {
	profiles, ok := raw["profiles"].(map[string]any)
	if !ok {
		return nil
	}

	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		table, ok := profiles[name].(map[string]any)
		if !ok {
			return errorf("config file %s: profile %q is not a table", path, name)
		}
		for key := range table {
			if !profileKeys[key] {
				return errorf("config file %s: unknown key %q in profile %q", path, key, name)
			}
		}
	}
	return nil
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
