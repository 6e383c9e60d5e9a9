package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bnema/garmin-connect-cli/internal/garmin"
	"github.com/bnema/garmin-connect-cli/internal/output"
)

func newWeightCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weight",
		Short: "Weight and body composition",
	}

	cmd.AddCommand(
		newWeightListCmd(app),
		newDailyMetricCmd(app, "get", "Weigh-ins for a date", (*garmin.Client).DailyWeighIns),
		newDailyMetricCmd(app, "body-comp", "Body composition for a date", (*garmin.Client).BodyComposition),
		newWeightLogCmd(app),
		newWeightDeleteCmd(app),
	)

	return cmd
}

func newWeightListCmd(app *app) *cobra.Command {
	var after, before string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List weigh-ins over a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			endDate := before
			if endDate == "" {
				endDate = app.today()
			}
			startDate := after
			if startDate == "" {
				startDate = app.now().AddDate(0, -1, 0).Format("2006-01-02")
			}

			weighIns, err := app.client().WeighIns(cmd.Context(), startDate, endDate)
			if err != nil {
				return err
			}

			return app.emit(cmd, weighIns)
		},
	}

	cmd.Flags().StringVarP(&after, "after", "a", "", "Range start date (YYYY-MM-DD, default one month ago)")
	cmd.Flags().StringVarP(&before, "before", "b", "", "Range end date (YYYY-MM-DD, default today)")

	return cmd
}

func newWeightLogCmd(app *app) *cobra.Command {
	var unit, date string

	cmd := &cobra.Command{
		Use:   "log WEIGHT",
		Short: "Record a weigh-in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			weight, err := strconv.ParseFloat(args[0], 64)
			if err != nil || weight <= 0 {
				return fmt.Errorf("invalid weight %q", args[0])
			}

			unitKey, err := parseWeightUnit(unit)
			if err != nil {
				return err
			}

			when := date
			if when == "" {
				when = app.today()
			}

			result, err := app.client().AddWeighIn(cmd.Context(), weight, unitKey, when)
			if err != nil {
				return err
			}

			return app.emitResult(cmd, result, fmt.Sprintf("Logged %s %s on %s", args[0], unit, when))
		},
	}

	cmd.Flags().StringVarP(&unit, "unit", "u", "kg", "Weight unit (kg or lb)")
	cmd.Flags().StringVarP(&date, "date", "d", "", "Weigh-in date (YYYY-MM-DD, default today)")

	return cmd
}

func parseWeightUnit(unit string) (string, error) {
	switch unit {
	case "kg":
		return "kg", nil
	case "lb", "lbs":
		return "lbs", nil
	default:
		return "", fmt.Errorf("unsupported weight unit %q (expected kg or lb)", unit)
	}
}

func newWeightDeleteCmd(app *app) *cobra.Command {
	var pk int64
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete [DATE]",
		Short: "Delete weigh-ins for a date, or a single sample by --id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := dateArg(app, args)

			subject := "all weigh-ins on " + date
			if pk != 0 {
				subject = fmt.Sprintf("weigh-in %d on %s", pk, date)
			}
			if !yes {
				ok, err := app.confirm(cmd, "Delete "+subject+"?")
				if err != nil {
					return err
				}
				if !ok {
					return errors.New("aborted")
				}
			}

			var result output.Record
			var err error
			if pk != 0 {
				result, err = app.client().DeleteWeighIn(cmd.Context(), date, pk)
			} else {
				result, err = app.client().DeleteDailyWeighIns(cmd.Context(), date)
			}
			if err != nil {
				return err
			}

			return app.emitResult(cmd, result, "Deleted "+subject)
		},
	}

	cmd.Flags().Int64Var(&pk, "id", 0, "Delete only the sample with this key")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
