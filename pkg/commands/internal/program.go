// Package internal holds the state shared by the component commands.
package internal

import (
	"github.com/alios-things/aos-cube/pkg/component"
	"github.com/alios-things/aos-cube/pkg/config"
	"github.com/alios-things/aos-cube/pkg/errors"
	"github.com/alios-things/aos-cube/pkg/logging"
	"github.com/alios-things/aos-cube/pkg/manifest"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Reporter receives user facing progress lines
type Reporter interface {
	Action(msg string)
	Warning(msg string)
}

type nopReporter struct{}

func (nopReporter) Action(string)  {}
func (nopReporter) Warning(string) {}

// Program is an opened program together with the resolver and manifest
// its components are recorded through
type Program struct {
	FS       afero.Fs
	Config   *config.Config
	Resolver *component.Resolver
	Manifest *manifest.Patcher
	Out      Reporter
	Logger   zerolog.Logger
}

// OpenProgram prepares cfg's program for component changes. op names the
// command in the error raised outside of a program.
func OpenProgram(fs afero.Fs, cfg *config.Config, out Reporter, op string) (*Program, error) {
	if cfg == nil {
		return nil, errors.New(errors.ErrInternal, "no configuration loaded")
	}
	if !cfg.InProgram() {
		return nil, errors.Newf(errors.ErrInvalidInput, "%s must be run inside a program directory", op).
			WithDetail("path", cfg.ProgramRoot())
	}
	if out == nil {
		out = nopReporter{}
	}
	return &Program{
		FS:       fs,
		Config:   cfg,
		Resolver: component.NewResolver(fs, cfg.SDKRoot(), cfg.RemoteRoot()),
		Manifest: manifest.NewPatcher(fs, cfg.ProgramRoot()),
		Out:      out,
		Logger:   logging.GetLogger("commands"),
	}, nil
}

// MarkModified flags the program config so the build regenerates its
// component list
func (p *Program) MarkModified() error {
	return p.Config.Set(config.ScopeProgram, config.KeyCubeModify, "1")
}
