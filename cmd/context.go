package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/bnema/garmin-connect-cli/internal/auth"
	"github.com/bnema/garmin-connect-cli/internal/garmin"
	"github.com/bnema/garmin-connect-cli/internal/output"
)

// contextSection is one named slice of the aggregated overview. Sections fail
// independently; a dead endpoint must not take the whole overview down.
type contextSection struct {
	key     string
	enabled bool
	fetch   func(ctx context.Context, client *garmin.Client) (output.Record, error)
}

func newContextCmd(app *app) *cobra.Command {
	var activities int
	var date string
	var noStats, noHealth, noTraining, noWeight bool

	cmd := &cobra.Command{
		Use:   "context",
		Short: "Aggregated snapshot of recent activities, health, training, and weight",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day := date
			if day == "" {
				day = app.today()
			}

			sections := []contextSection{
				{
					key:     "activities",
					enabled: activities > 0,
					fetch: func(ctx context.Context, client *garmin.Client) (output.Record, error) {
						return client.Activities(ctx, 0, activities)
					},
				},
				{
					key:     "stats",
					enabled: !noStats,
					fetch: func(ctx context.Context, client *garmin.Client) (output.Record, error) {
						return client.DailyStats(ctx, day)
					},
				},
				{
					key:     "sleep",
					enabled: !noHealth,
					fetch: func(ctx context.Context, client *garmin.Client) (output.Record, error) {
						return client.SleepData(ctx, day)
					},
				},
				{
					key:     "resting_heart_rate",
					enabled: !noHealth,
					fetch: func(ctx context.Context, client *garmin.Client) (output.Record, error) {
						return client.RestingHeartRate(ctx, day)
					},
				},
				{
					key:     "training_status",
					enabled: !noTraining,
					fetch: func(ctx context.Context, client *garmin.Client) (output.Record, error) {
						return client.TrainingStatus(ctx, day)
					},
				},
				{
					key:     "training_readiness",
					enabled: !noTraining,
					fetch: func(ctx context.Context, client *garmin.Client) (output.Record, error) {
						return client.TrainingReadiness(ctx, day)
					},
				},
				{
					key:     "weight",
					enabled: !noWeight,
					fetch: func(ctx context.Context, client *garmin.Client) (output.Record, error) {
						return client.DailyWeighIns(ctx, day)
					},
				},
			}

			var snapshot output.Record
			build := func(ctx context.Context) error {
				var err error
				snapshot, err = buildContextSnapshot(ctx, app, cmd, day, sections)
				return err
			}

			var err error
			if app.cfg.Format == output.FormatHuman && !app.cfg.Quiet {
				err = runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), "Fetching context...", build)
			} else {
				err = build(cmd.Context())
			}
			if err != nil {
				return err
			}

			return app.emit(cmd, snapshot)
		},
	}

	cmd.Flags().IntVarP(&activities, "activities", "n", 5, "Number of recent activities to include (0 disables)")
	cmd.Flags().StringVarP(&date, "date", "d", "", "Snapshot date (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&noStats, "no-stats", false, "Skip daily stats")
	cmd.Flags().BoolVar(&noHealth, "no-health", false, "Skip sleep and resting heart rate")
	cmd.Flags().BoolVar(&noTraining, "no-training", false, "Skip training status and readiness")
	cmd.Flags().BoolVar(&noWeight, "no-weight", false, "Skip weigh-ins")

	return cmd
}

// buildContextSnapshot fetches every enabled section, tolerating individual
// failures. It errors only when nothing at all could be fetched.
func buildContextSnapshot(ctx context.Context, app *app, cmd *cobra.Command, day string, sections []contextSection) (output.Record, error) {
	client := app.client()

	fields := []output.Field{
		{Key: "date", Value: output.String(day)},
	}

	fetched, failed := 0, 0
	for _, section := range sections {
		if !section.enabled {
			continue
		}

		data, err := section.fetch(ctx, client)
		if err != nil {
			failed++
			app.verbosef(cmd, "context section %s: %v", section.key, err)

			// Auth failures are not partial; every later section would
			// fail the same way.
			if auth.IsAuthError(err) {
				return output.Record{}, err
			}
			fields = append(fields, output.Field{Key: section.key, Value: output.Null()})
			continue
		}

		fetched++
		fields = append(fields, output.Field{Key: section.key, Value: data})
	}

	if fetched == 0 && failed > 0 {
		return output.Record{}, errors.New("all context sections failed")
	}

	return output.Map(fields...), nil
}
