package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/bnema/garmin-connect-cli/cmd"
	"github.com/bnema/garmin-connect-cli/internal/auth"
)

// Exit codes form the machine-readable contract for scripted callers: 0
// success, 1 general error, 2 authentication error (re-run login).
const (
	exitError     = 1
	exitAuthError = 2
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)

		var authErr *auth.Error
		if errors.As(err, &authErr) {
			os.Exit(exitAuthError)
		}
		os.Exit(exitError)
	}
}
