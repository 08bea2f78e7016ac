// Package process runs external commands on behalf of the VCS adapters.
//
// Every command carries its own working directory; the process-wide working
// directory is never changed, so a failing command cannot leave a sibling
// traversal running in the wrong place.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	cubeerrors "github.com/alios-things/aos-cube/pkg/errors"
	"github.com/alios-things/aos-cube/pkg/logging"
	"github.com/rs/zerolog"
)

// Command describes one external invocation
type Command struct {
	Name string
	Args []string
	// Dir is the working directory of the child process
	Dir string
	// Env is appended to the current environment
	Env map[string]string
	// Stream copies output to the runner's console writers while capturing it
	Stream bool
}

// String renders the command line for logs and error details
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result holds the captured output of a finished command
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes external commands
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct {
	stdout io.Writer
	stderr io.Writer
	logger zerolog.Logger
}

// New creates a runner streaming to the process's stdout and stderr
func New() *ExecRunner {
	return NewWithWriters(os.Stdout, os.Stderr)
}

// NewWithWriters creates a runner streaming to the given writers
func NewWithWriters(stdout, stderr io.Writer) *ExecRunner {
	return &ExecRunner{
		stdout: stdout,
		stderr: stderr,
		logger: logging.GetLogger("process"),
	}
}

// Run executes cmd. A non-zero exit or a failure to start is returned as a
// VCS_PROCESS error carrying the command, directory and exit code.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	logging.LogCommand(cmd.Name, cmd.Args)

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir

	if len(cmd.Env) > 0 {
		c.Env = os.Environ()
		for k, v := range cmd.Env {
			c.Env = append(c.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}

	var stdout, stderr bytes.Buffer
	if cmd.Stream {
		c.Stdout = io.MultiWriter(&stdout, r.stdout)
		c.Stderr = io.MultiWriter(&stderr, r.stderr)
	} else {
		c.Stdout = &stdout
		c.Stderr = &stderr
	}

	err := c.Run()
	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: 0,
	}

	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}

		r.logger.Debug().
			Str("command", cmd.String()).
			Str("dir", cmd.Dir).
			Int("exit_code", result.ExitCode).
			Str("stderr", strings.TrimSpace(result.Stderr)).
			Msg("Command failed")

		return result, cubeerrors.Wrapf(err, cubeerrors.ErrVcsProcess, "%q failed in %s", cmd.String(), cmd.Dir).
			WithDetail("command", cmd.String()).
			WithDetail("dir", cmd.Dir).
			WithDetail("exit_code", result.ExitCode).
			WithDetail("stderr", strings.TrimSpace(result.Stderr))
	}

	return result, nil
}
