package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bnema/garmin-connect-cli/internal/garmin"
	"github.com/bnema/garmin-connect-cli/internal/output"
)

func newHealthCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Health data (sleep, heart rate, steps, stress)",
	}

	cmd.AddCommand(
		newDailyMetricCmd(app, "sleep", "Sleep data for a date", (*garmin.Client).SleepData),
		newDailyMetricCmd(app, "heart-rate", "Heart rate data for a date", (*garmin.Client).HeartRates),
		newDailyMetricCmd(app, "steps", "Steps data for a date", (*garmin.Client).Steps),
		newDailyMetricCmd(app, "stress", "Stress data for a date", (*garmin.Client).Stress),
		newDailyMetricCmd(app, "body-battery", "Body battery data for a date", (*garmin.Client).BodyBattery),
		newDailyMetricCmd(app, "rhr", "Resting heart rate for a date", (*garmin.Client).RestingHeartRate),
	)

	return cmd
}

// newDailyMetricCmd builds the common "metric [DATE]" command shape shared
// by the health and training groups.
func newDailyMetricCmd(app *app, use, short string, fetch func(*garmin.Client, context.Context, string) (output.Record, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [DATE]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := fetch(app.client(), cmd.Context(), dateArg(app, args))
			if err != nil {
				return err
			}
			return app.emit(cmd, data)
		},
	}
}
