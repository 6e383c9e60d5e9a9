package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/garmin-connect-cli/internal/output"
)

// emit renders data to stdout using the effective format, field selection,
// and header options.
func (a *app) emit(cmd *cobra.Command, data output.Record) error {
	projected := output.Project(data, a.cfg.Fields)
	return output.Render(cmd.OutOrStdout(), projected, a.cfg.Format, output.Options{NoHeader: a.cfg.NoHeader})
}

// emitResult reports a mutation. Human format prints the short confirmation
// message; machine formats emit the full structured record so scripts can
// inspect the outcome.
func (a *app) emitResult(cmd *cobra.Command, data output.Record, humanMsg string) error {
	if a.cfg.Format == output.FormatHuman {
		if a.cfg.Quiet {
			return nil
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), humanMsg)
		return err
	}
	return a.emit(cmd, data)
}
