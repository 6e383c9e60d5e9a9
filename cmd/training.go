package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bnema/garmin-connect-cli/internal/garmin"
)

func newTrainingCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "training",
		Short: "Training metrics and readiness",
	}

	cmd.AddCommand(
		newDailyMetricCmd(app, "status", "Training status for a date", (*garmin.Client).TrainingStatus),
		newDailyMetricCmd(app, "readiness", "Training readiness for a date", (*garmin.Client).TrainingReadiness),
		newDailyMetricCmd(app, "vo2max", "VO2 max metrics for a date", (*garmin.Client).MaxMetrics),
		newDailyMetricCmd(app, "endurance", "Endurance score for a date", (*garmin.Client).EnduranceScore),
		newDailyMetricCmd(app, "hill", "Hill score for a date", (*garmin.Client).HillScore),
		newDailyMetricCmd(app, "hrv", "Heart rate variability for a date", (*garmin.Client).HRVData),
		&cobra.Command{
			Use:   "lactate",
			Short: "Latest lactate threshold",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				data, err := app.client().LactateThreshold(cmd.Context())
				if err != nil {
					return err
				}
				return app.emit(cmd, data)
			},
		},
		&cobra.Command{
			Use:   "fitness-age",
			Short: "Current fitness age",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				data, err := app.client().FitnessAge(cmd.Context())
				if err != nil {
					return err
				}
				return app.emit(cmd, data)
			},
		},
	)

	return cmd
}
