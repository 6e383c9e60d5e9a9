package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// promptLine asks on stderr and reads one line from stdin. Prompts go to the
// diagnostic stream so rendered data on stdout stays pipe-safe.
func (a *app) promptLine(cmd *cobra.Command, label string) (string, error) {
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: ", label)

	line, err := a.reader(cmd).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads without echo when stdin is a terminal, falling back to
// a plain line read otherwise (pipes, tests).
func (a *app) promptSecret(cmd *cobra.Command, label string) (string, error) {
	file, ok := cmd.InOrStdin().(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return a.promptLine(cmd, label)
	}

	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: ", label)
	secret, err := term.ReadPassword(int(file.Fd()))
	_, _ = fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read secret input: %w", err)
	}
	return strings.TrimSpace(string(secret)), nil
}

// confirm asks a yes/no question; only an explicit "y"/"yes" proceeds.
func (a *app) confirm(cmd *cobra.Command, question string) (bool, error) {
	answer, err := a.promptLine(cmd, question+" [y/N]")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
