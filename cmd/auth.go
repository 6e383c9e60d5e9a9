package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bnema/garmin-connect-cli/internal/auth"
	"github.com/bnema/garmin-connect-cli/internal/config"
	"github.com/bnema/garmin-connect-cli/internal/output"
)

func newAuthCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
	}

	cmd.AddCommand(newAuthLoginCmd(app), newAuthLogoutCmd(app), newAuthStatusCmd(app))

	return cmd
}

func newAuthLoginCmd(app *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with Garmin Connect",
		Long:  "Logs in with email/password (prompting for whichever is missing), answers a multi-factor challenge when the service demands one, and stores session tokens for future use.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogin(cmd, app, email, password)
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Garmin account email (or set GARMIN_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Garmin account password (or set GARMIN_PASSWORD)")

	return cmd
}

func runLogin(cmd *cobra.Command, app *app, email, password string) error {
	var err error

	if email == "" {
		email = app.cfg.Email
	}
	if email == "" {
		if email, err = app.promptLine(cmd, "Email"); err != nil {
			return err
		}
	}

	if password == "" {
		password = app.cfg.Password
	}
	if password == "" {
		if password, err = app.promptSecret(cmd, "Password"); err != nil {
			return err
		}
	}

	respond := func() (string, error) {
		return app.promptLine(cmd, "Enter MFA code")
	}

	creds := auth.Credentials{Email: email, Password: password}
	if _, err := app.auth.Login(cmd.Context(), app.cfg.Profile, creds, respond); err != nil {
		return err
	}

	if app.cfg.Profile != "" {
		if err := config.SaveProfileEmail(app.cfg.ConfigPath, app.cfg.Profile, email); err != nil {
			return err
		}
	}

	// Best-effort display name; login already succeeded.
	fullName := output.Null()
	if profileRec, err := app.client().UserProfile(cmd.Context()); err == nil {
		if name, ok := profileRec.Get("fullName"); ok {
			fullName = name
		}
	} else {
		app.verbosef(cmd, "fetch user profile: %v", err)
	}

	result := output.Map(
		output.Field{Key: "authenticated", Value: output.Bool(true)},
		output.Field{Key: "full_name", Value: fullName},
		output.Field{Key: "email", Value: output.String(email)},
		output.Field{Key: "token_dir", Value: output.String(app.store.Dir(app.cfg.Profile))},
	)
	return app.emitResult(cmd, result, "Logged in as "+email)
}

func newAuthLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear stored tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.auth.Logout(app.cfg.Profile); err != nil {
				return err
			}

			result := output.Map(
				output.Field{Key: "authenticated", Value: output.Bool(false)},
			)
			return app.emitResult(cmd, result, "Logged out")
		},
	}
}

func newAuthStatusCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show current authentication status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, err := app.auth.State(app.cfg.Profile)
			if err != nil {
				return err
			}

			result := output.Map(
				output.Field{Key: "authenticated", Value: output.Bool(state == auth.StateAuthenticated)},
				output.Field{Key: "state", Value: output.String(string(state))},
				output.Field{Key: "profile", Value: profileField(app.cfg.Profile)},
				output.Field{Key: "token_dir", Value: output.String(app.store.Dir(app.cfg.Profile))},
				output.Field{Key: "config_path", Value: output.String(app.cfg.ConfigPath)},
			)
			return app.emit(cmd, result)
		},
	}
}

func profileField(profile string) output.Record {
	if profile == "" {
		return output.Null()
	}
	return output.String(profile)
}
