package cmd

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bnema/garmin-connect-cli/internal/auth"
	"github.com/bnema/garmin-connect-cli/internal/config"
	"github.com/bnema/garmin-connect-cli/internal/garmin"
	"github.com/bnema/garmin-connect-cli/internal/session"
)

// app holds everything a command needs: the effective configuration resolved
// once per invocation, the session machinery, and the HTTP plumbing. Base
// URLs are env-overridable so tests can point at local servers.
type app struct {
	cfg        *config.Config
	store      *session.Store
	auth       *auth.Controller
	httpClient *http.Client
	apiBaseURL string
	ssoBaseURL string
	now        func() time.Time
	stdin      *bufio.Reader
}

// init wires the app after flag parsing; it runs as the root command's
// PersistentPreRunE.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Resolve(collectFlags(cmd.Root().PersistentFlags()))
	if err != nil {
		return err
	}

	tokenDir, err := config.TokenDir()
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.store = session.NewStore(tokenDir)
	a.httpClient = http.DefaultClient
	a.apiBaseURL = envOrDefault("GARMIN_API_URL", "https://connectapi.garmin.com")
	a.ssoBaseURL = envOrDefault("GARMIN_SSO_URL", "https://sso.garmin.com")
	a.now = time.Now
	a.auth = auth.NewController(a.store, garmin.NewSSO(a.ssoBaseURL, a.httpClient, a.now), a.now)

	return nil
}

// client builds the authenticated gateway for the active profile.
func (a *app) client() *garmin.Client {
	return garmin.NewClient(a.apiBaseURL, a.httpClient, a.auth, a.cfg.Profile)
}

// collectFlags translates explicitly-set CLI flags into the resolver's
// highest precedence layer. Unset flags stay nil so the environment,
// profile, and file layers apply.
func collectFlags(flags *pflag.FlagSet) config.Flags {
	var collected config.Flags

	if flags.Changed("format") {
		v, _ := flags.GetString("format")
		collected.Format = &v
	}
	if flags.Changed("fields") {
		v, _ := flags.GetString("fields")
		collected.Fields = &v
	}
	if flags.Changed("no-header") {
		v, _ := flags.GetBool("no-header")
		collected.NoHeader = &v
	}
	if flags.Changed("verbose") {
		v, _ := flags.GetBool("verbose")
		collected.Verbose = &v
	}
	if flags.Changed("quiet") {
		v, _ := flags.GetBool("quiet")
		collected.Quiet = &v
	}
	if flags.Changed("config") {
		v, _ := flags.GetString("config")
		collected.ConfigPath = &v
	}
	if flags.Changed("profile") {
		v, _ := flags.GetString("profile")
		collected.Profile = &v
	}

	return collected
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// verbosef prints a diagnostic line to stderr when --verbose is on. Rendered
// data never mixes with diagnostics, so piping stays safe.
func (a *app) verbosef(cmd *cobra.Command, format string, args ...any) {
	if a.cfg == nil || !a.cfg.Verbose {
		return
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: "+format+"\n", args...)
}

// reader returns the shared buffered stdin reader; sharing one reader keeps
// consecutive prompts from swallowing each other's input.
func (a *app) reader(cmd *cobra.Command) *bufio.Reader {
	if a.stdin == nil {
		a.stdin = bufio.NewReader(cmd.InOrStdin())
	}
	return a.stdin
}

// today formats the current date the way every Garmin endpoint expects.
func (a *app) today() string {
	return a.now().Format("2006-01-02")
}
