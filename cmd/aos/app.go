package aos

import (
	"io"
	"os"
	"path/filepath"

	"github.com/alios-things/aos-cube/pkg/config"
	"github.com/alios-things/aos-cube/pkg/deps"
	"github.com/alios-things/aos-cube/pkg/errors"
	"github.com/alios-things/aos-cube/pkg/filesystem"
	"github.com/alios-things/aos-cube/pkg/paths"
	"github.com/alios-things/aos-cube/pkg/repo"
	"github.com/alios-things/aos-cube/pkg/ui"
	"github.com/alios-things/aos-cube/pkg/ui/output"
	"github.com/alios-things/aos-cube/pkg/vcs"
	"github.com/spf13/afero"
)

// app carries what every command needs. Tests swap the filesystem, the
// version control backends and the prompter.
type app struct {
	fs       afero.Fs
	registry *vcs.Registry
	workDir  string
	prompter deps.Prompter
	stdout   io.Writer
	stderr   io.Writer
	quiet    bool
}

// Option configures the root command's environment
type Option func(*app)

// WithFS replaces the OS filesystem
func WithFS(fs afero.Fs) Option {
	return func(a *app) { a.fs = fs }
}

// WithRegistry replaces the version control backends
func WithRegistry(r *vcs.Registry) Option {
	return func(a *app) { a.registry = r }
}

// WithWorkDir runs commands as if started from dir
func WithWorkDir(dir string) Option {
	return func(a *app) { a.workDir = dir }
}

// WithPrompter replaces the interactive commit message prompt
func WithPrompter(p deps.Prompter) Option {
	return func(a *app) { a.prompter = p }
}

// WithOutput sets where progress and errors are written
func WithOutput(stdout, stderr io.Writer) Option {
	return func(a *app) {
		a.stdout = stdout
		a.stderr = stderr
	}
}

func newApp(opts ...Option) *app {
	a := &app{stdout: os.Stdout, stderr: os.Stderr}
	for _, opt := range opts {
		opt(a)
	}
	if a.fs == nil {
		a.fs = filesystem.NewOS()
	}
	if a.registry == nil {
		a.registry = vcs.Default(a.fs)
	}
	if a.prompter == nil {
		a.prompter = output.NewPrompter()
	}
	return a
}

func (a *app) dir() (string, error) {
	if a.workDir != "" {
		return a.workDir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrFileAccess, "failed to get working directory")
	}
	return wd, nil
}

// abs resolves p against the working directory
func (a *app) abs(p string) (string, error) {
	wd, err := a.dir()
	if err != nil {
		return "", err
	}
	if p == "" {
		return wd, nil
	}
	p = paths.ExpandHome(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	return filepath.Join(wd, p), nil
}

func (a *app) config() (*config.Config, error) {
	wd, err := a.dir()
	if err != nil {
		return nil, err
	}
	p, err := paths.New(a.fs, wd)
	if err != nil {
		return nil, err
	}
	return config.Load(a.fs, p)
}

func (a *app) printer() *output.Printer {
	return output.NewPrinter(a.stdout, a.stderr,
		output.WithColor(ui.ColorEnabled(a.stdout)),
		output.WithQuiet(a.quiet))
}

func (a *app) synchronizer(cfg *config.Config, out deps.Reporter) *deps.Synchronizer {
	env := repo.NewEnv(a.fs, a.registry)
	return deps.New(env,
		deps.WithReporter(out),
		deps.WithPrompter(a.prompter),
		deps.WithBaseURL(cfg.Get(config.KeyComponentBaseURL)),
		deps.WithProtocol(cfg.Get(config.KeyProtocol)),
	)
}

func (a *app) renderer(format string) (ui.Renderer, error) {
	f, err := ui.ParseFormat(format)
	if err != nil {
		return nil, usageError(err)
	}
	return ui.NewRenderer(f, a.stdout)
}
