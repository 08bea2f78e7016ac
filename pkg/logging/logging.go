package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	stateDir = "aos"
	logName  = "aos.log"

	// EnvLogFile overrides the log file location
	EnvLogFile = "AOS_LOG_FILE"
)

// levels maps the number of -v flags to a level; anything above the
// last entry logs everything
var levels = []zerolog.Level{
	zerolog.WarnLevel,
	zerolog.InfoLevel,
	zerolog.DebugLevel,
}

func levelFor(verbosity int) zerolog.Level {
	if verbosity < 0 {
		verbosity = 0
	}
	if verbosity < len(levels) {
		return levels[verbosity]
	}
	return zerolog.TraceLevel
}

// SetupLogger installs the global aos logger. Records go to stderr and
// are appended to the state log file; if the file cannot be opened the
// console is the only sink. From -vv on every record carries its caller.
func SetupLogger(verbosity int) {
	zerolog.SetGlobalLevel(levelFor(verbosity))

	sinks := []io.Writer{zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
		NoColor:    os.Getenv("NO_COLOR") != "",
	}}
	path := getLogFilePath()
	file, fileErr := openLogFile(path)
	if fileErr == nil {
		sinks = append(sinks, file)
	}

	ctx := zerolog.New(io.MultiWriter(sinks...)).With().Timestamp()
	if verbosity >= 2 {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()

	if fileErr != nil {
		log.Warn().Err(fileErr).Str("path", path).Msg("Log file unavailable, logging to stderr only")
	}
	log.Debug().Int("verbosity", verbosity).Str("log_file", path).Msg("Logging configured")
}

// GetLogger tags records with the package or subsystem that emits them
func GetLogger(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// getLogFilePath honours AOS_LOG_FILE and falls back to
// $XDG_STATE_HOME/aos/aos.log
func getLogFilePath() string {
	if path := os.Getenv(EnvLogFile); path != "" {
		return path
	}
	xdg.Reload()
	if xdg.StateHome == "" {
		return logName
	}
	return filepath.Join(xdg.StateHome, stateDir, logName)
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

// LogCommand records an external program run by pkg/process
func LogCommand(cmd string, args []string) {
	log.Debug().Str("command", cmd).Strs("args", args).Msg("Running external command")
}

// LogOperationStart marks the beginning of a synchronizer operation. Call
// the returned func, usually deferred, when it ends.
func LogOperationStart(logger zerolog.Logger, operation string) func() {
	start := time.Now()
	logger.Debug().Str("operation", operation).Msg("Starting operation")
	return func() {
		logger.Debug().
			Str("operation", operation).
			Dur("elapsed", time.Since(start)).
			Msg("Finished operation")
	}
}
