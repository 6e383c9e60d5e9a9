// Package cmd binds the Garmin Connect business calls to the authenticated
// client and pipes every result through projection and rendering.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bnema/garmin-connect-cli/internal/config"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	app := &app{}

	rootCmd := &cobra.Command{
		Use:           "garmin-connect",
		Short:         "Garmin Connect from your terminal. Pipe it, script it, automate it.",
		Long:          "garmin-connect talks to the Garmin Connect API: activities, health metrics, training metrics, and weight, rendered as json, jsonl, csv, tsv, or a human-readable table.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return app.init(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("format", "f", string(config.DefaultFormat), "Output format (json, jsonl, csv, tsv, human)")
	flags.String("fields", "", "Comma-separated list of fields to include in output")
	flags.Bool("no-header", false, "Omit header row in csv/tsv output")
	flags.BoolP("verbose", "v", false, "Verbose output to stderr")
	flags.BoolP("quiet", "q", false, "Suppress non-essential output")
	flags.StringP("config", "c", "", "Path to config file")
	flags.StringP("profile", "p", "", "Named profile to use")

	rootCmd.AddCommand(
		newVersionCmd(),
		newAuthCmd(app),
		newAthleteCmd(app),
		newActivitiesCmd(app),
		newHealthCmd(app),
		newTrainingCmd(app),
		newWeightCmd(app),
		newContextCmd(app),
	)

	return rootCmd
}
