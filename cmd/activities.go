package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bnema/garmin-connect-cli/internal/garmin"
	"github.com/bnema/garmin-connect-cli/internal/output"
)

func newActivitiesCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activities",
		Short: "Activity management",
	}

	cmd.AddCommand(
		newActivitiesListCmd(app),
		newActivitiesGetCmd(app),
		newActivitiesSplitsCmd(app),
		newActivitiesDownloadCmd(app),
		newActivitiesUploadCmd(app),
		newActivitiesDeleteCmd(app),
	)

	return cmd
}

func newActivitiesListCmd(app *app) *cobra.Command {
	var limit, start int
	var after, before, activityType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List activities in reverse chronological order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			effectiveLimit := app.cfg.Limit
			if cmd.Flags().Changed("limit") {
				effectiveLimit = limit
			}

			var activities output.Record
			var err error
			if after != "" || before != "" {
				endDate := before
				if endDate == "" {
					endDate = app.today()
				}
				startDate := after
				if startDate == "" {
					startDate = app.now().AddDate(-1, 0, 0).Format("2006-01-02")
				}

				activities, err = app.client().ActivitiesByDate(cmd.Context(), startDate, endDate, activityType)
				if err == nil {
					activities = truncateList(activities, effectiveLimit)
				}
			} else {
				activities, err = app.client().Activities(cmd.Context(), start, effectiveLimit)
			}
			if err != nil {
				return err
			}

			return app.emit(cmd, activities)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of activities (default from config)")
	cmd.Flags().IntVarP(&start, "start", "s", 0, "Start index for pagination")
	cmd.Flags().StringVarP(&after, "after", "a", "", "Only activities after this date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&before, "before", "b", "", "Only activities before this date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&activityType, "type", "t", "", "Filter by activity type (running, cycling, ...)")

	return cmd
}

// truncateList applies the limit client-side for date-range queries, which
// the service does not paginate.
func truncateList(rec output.Record, limit int) output.Record {
	if rec.Kind() != output.KindList || limit <= 0 || rec.Len() <= limit {
		return rec
	}
	return output.List(rec.Items()[:limit]...)
}

func newActivitiesGetCmd(app *app) *cobra.Command {
	var details bool

	cmd := &cobra.Command{
		Use:   "get ID",
		Short: "Get a single activity by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			activityID, err := parseActivityID(args[0])
			if err != nil {
				return err
			}

			var activity output.Record
			if details {
				activity, err = app.client().ActivityDetails(cmd.Context(), activityID)
			} else {
				activity, err = app.client().Activity(cmd.Context(), activityID)
			}
			if err != nil {
				return err
			}

			return app.emit(cmd, activity)
		},
	}

	cmd.Flags().BoolVarP(&details, "details", "d", false, "Include detailed metrics")

	return cmd
}

func newActivitiesSplitsCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "splits ID",
		Short: "Get activity splits (lap data)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			activityID, err := parseActivityID(args[0])
			if err != nil {
				return err
			}

			splits, err := app.client().ActivitySplits(cmd.Context(), activityID)
			if err != nil {
				return err
			}

			return app.emit(cmd, splits)
		},
	}
}

func newActivitiesDownloadCmd(app *app) *cobra.Command {
	var formatName, outputPath string

	cmd := &cobra.Command{
		Use:   "download ID",
		Short: "Download an activity file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			activityID, err := parseActivityID(args[0])
			if err != nil {
				return err
			}

			format, err := garmin.ParseDownloadFormat(formatName)
			if err != nil {
				return err
			}

			data, err := app.client().DownloadActivity(cmd.Context(), activityID, format)
			if err != nil {
				return err
			}

			if outputPath == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}

			if outputPath == "" {
				outputPath = fmt.Sprintf("activity_%d.%s", activityID, downloadExtension(format))
			}
			if err := os.WriteFile(outputPath, data, 0o644); err != nil {
				return fmt.Errorf("write activity file: %w", err)
			}

			result := output.Map(
				output.Field{Key: "activityId", Value: output.Int(activityID)},
				output.Field{Key: "format", Value: output.String(string(format))},
				output.Field{Key: "path", Value: output.String(outputPath)},
				output.Field{Key: "bytes", Value: output.Int(int64(len(data)))},
			)
			return app.emitResult(cmd, result, "Saved "+outputPath)
		},
	}

	cmd.Flags().StringVar(&formatName, "format-type", "tcx", "Download format (tcx, gpx, original, csv)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path, or - for stdout")

	return cmd
}

func downloadExtension(format garmin.DownloadFormat) string {
	if format == garmin.DownloadOriginal {
		return "zip"
	}
	return string(format)
}

func newActivitiesUploadCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload an activity file (FIT, GPX, TCX)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open activity file: %w", err)
			}
			defer func() { _ = file.Close() }()

			result, err := app.client().UploadActivity(cmd.Context(), args[0], file)
			if err != nil {
				return err
			}

			return app.emitResult(cmd, result, "Uploaded "+args[0])
		},
	}
}

func newActivitiesDeleteCmd(app *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			activityID, err := parseActivityID(args[0])
			if err != nil {
				return err
			}

			if !yes {
				ok, err := app.confirm(cmd, fmt.Sprintf("Delete activity %d?", activityID))
				if err != nil {
					return err
				}
				if !ok {
					return errors.New("aborted")
				}
			}

			result, err := app.client().DeleteActivity(cmd.Context(), activityID)
			if err != nil {
				return err
			}

			return app.emitResult(cmd, result, fmt.Sprintf("Deleted activity %d", activityID))
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func parseActivityID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid activity ID %q", arg)
	}
	return id, nil
}
