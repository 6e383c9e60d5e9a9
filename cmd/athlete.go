package cmd

import (
	"github.com/spf13/cobra"
)

func newAthleteCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "athlete",
		Short: "Athlete profile and stats",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "profile",
			Short: "Show the athlete's profile",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				profile, err := app.client().UserProfile(cmd.Context())
				if err != nil {
					return err
				}
				return app.emit(cmd, profile)
			},
		},
		&cobra.Command{
			Use:   "stats [DATE]",
			Short: "Daily stats (steps, calories, distance)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				stats, err := app.client().DailyStats(cmd.Context(), dateArg(app, args))
				if err != nil {
					return err
				}
				return app.emit(cmd, stats)
			},
		},
		&cobra.Command{
			Use:   "summary [DATE]",
			Short: "Daily user summary",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				summary, err := app.client().UserSummary(cmd.Context(), dateArg(app, args))
				if err != nil {
					return err
				}
				return app.emit(cmd, summary)
			},
		},
	)

	return cmd
}

// dateArg picks the optional positional date, defaulting to today.
func dateArg(app *app, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return app.today()
}
