package aos

import (
	stderrors "errors"
	"strings"

	"github.com/spf13/cobra"
)

// Exit codes
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// UsageError is a command line that could not be understood: unknown
// commands or flags, wrong argument counts, bad flag values
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

func usageError(err error) error {
	if err == nil {
		return nil
	}
	return &UsageError{Err: err}
}

// ExitCode maps an error returned by the root command to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var usage *UsageError
	if stderrors.As(err, &usage) {
		return ExitUsage
	}
	// cobra reports unknown subcommands before any of our code runs
	if strings.HasPrefix(err.Error(), "unknown command") {
		return ExitUsage
	}
	return ExitError
}

// usageArgs wraps a positional argument validator so its failures are usage
// errors
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, a []string) error {
		return usageError(validate(cmd, a))
	}
}
