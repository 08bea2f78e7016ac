package add

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alios-things/aos-cube/pkg/commands/internal"
	"github.com/alios-things/aos-cube/pkg/component"
	"github.com/alios-things/aos-cube/pkg/config"
	"github.com/alios-things/aos-cube/pkg/deps"
	"github.com/alios-things/aos-cube/pkg/errors"
	"github.com/alios-things/aos-cube/pkg/logging"
	"github.com/alios-things/aos-cube/pkg/vcs"
	"github.com/spf13/afero"
)

// AddComponentOptions defines the options for the AddComponent command
type AddComponentOptions struct {
	FS     afero.Fs
	Config *config.Config
	// Sync stages components given by URL
	Sync *deps.Synchronizer
	Out  internal.Reporter
	// Name is a component name or the URL of a component repository
	Name     string
	Ignore   bool
	Depth    int
	Protocol string
}

// AddComponentResult reports what was recorded in the manifest
type AddComponentResult struct {
	// Added lists every identity recorded, in the order it was added
	Added []string `json:"added"`
	// Staged lists the directories imported below the remote root
	Staged   []string `json:"staged,omitempty"`
	Changed  bool     `json:"changed"`
	Warnings []string `json:"warnings,omitempty"`
}

type adder struct {
	opts    AddComponentOptions
	prog    *internal.Program
	result  *AddComponentResult
	visited map[string]bool
}

// AddComponent adds a component to the program's cube.mk. A name resolves
// to a local SDK component, or to one already staged from a remote. A URL
// is staged below the remote root first and its declared dependencies are
// added along with it.
func AddComponent(ctx context.Context, opts AddComponentOptions) (*AddComponentResult, error) {
	log := logging.GetLogger("core.commands")
	log.Debug().Str("command", "AddComponent").Str("name", opts.Name).Msg("Executing command")

	if opts.Name == "" {
		return nil, errors.New(errors.ErrInvalidInput, "a component name or URL is required")
	}
	prog, err := internal.OpenProgram(opts.FS, opts.Config, opts.Out, "add")
	if err != nil {
		return nil, err
	}

	a := &adder{
		opts:    opts,
		prog:    prog,
		result:  &AddComponentResult{},
		visited: map[string]bool{},
	}

	url, _ := vcs.SplitRevision(opts.Name)
	if vcs.IsURL(url) {
		err = a.addURL(ctx)
	} else {
		err = a.addName()
	}
	if err != nil {
		return nil, err
	}

	if a.result.Changed {
		if err := prog.MarkModified(); err != nil {
			return nil, err
		}
	}

	log.Info().Str("command", "AddComponent").Strs("added", a.result.Added).Bool("changed", a.result.Changed).Msg("Command finished")
	return a.result, nil
}

func (a *adder) addName() error {
	name := a.opts.Name
	identity, ok := a.prog.Resolver.LocalIdentity(name)
	kind := "local"
	if !ok {
		identity, ok = a.prog.Resolver.RemoteIdentity(name)
		kind = "remote"
	}
	if !ok {
		return errors.Newf(errors.ErrUnresolvedComponent, "component %q is neither in the SDK nor staged in %s", name, a.prog.Resolver.RemoteRoot()).
			WithDetail("name", name)
	}
	if err := a.record(identity, identity); err != nil {
		return err
	}
	a.prog.Out.Action(fmt.Sprintf("Add %s component %q success", kind, name))
	return nil
}

func (a *adder) addURL(ctx context.Context) error {
	if a.opts.Sync == nil {
		return errors.New(errors.ErrInternal, "adding by URL needs a synchronizer")
	}
	url := a.opts.Sync.ExpandURL(a.opts.Name)
	name := vcs.RepoName(url)
	a.visited[name] = true

	if err := a.stage(ctx, url, name); err != nil {
		return err
	}
	identity := component.RemoteIdentity(name)
	if err := a.record(identity, identity); err != nil {
		return err
	}
	a.prog.Out.Action(fmt.Sprintf("Add remote component %q success", stripRevision(url)))

	return a.addDependencies(ctx, baseURL(url), name)
}

// addDependencies adds the components the staged name declares, recording
// name as their origin
func (a *adder) addDependencies(ctx context.Context, base, name string) error {
	required, err := component.Dependencies(a.prog.FS, a.prog.Resolver.RemoteMakefile(name))
	if err != nil {
		return err
	}
	for _, dep := range required {
		if err := a.addRemote(ctx, base, dep, component.RemoteIdentity(name)); err != nil {
			return err
		}
	}
	return nil
}

// addRemote adds a dependency of a staged component. The SDK wins; else it
// is imported from base, then from the configured component base URL.
func (a *adder) addRemote(ctx context.Context, base, name, origin string) error {
	if identity, ok := a.prog.Resolver.LocalIdentity(name); ok {
		if err := a.record(identity, origin); err != nil {
			return err
		}
		a.prog.Out.Action(fmt.Sprintf("Add local component %q success", name))
		return nil
	}

	if a.visited[name] {
		return nil
	}
	a.visited[name] = true

	if _, staged := a.prog.Resolver.RemoteIdentity(name); !staged {
		var err error
		base, err = a.importFrom(ctx, name, base, a.opts.Sync.BaseURL())
		if err != nil {
			return err
		}
	}

	if err := a.record(component.RemoteIdentity(name), origin); err != nil {
		return err
	}
	a.prog.Out.Action(fmt.Sprintf("Add remote component %q success", name))

	return a.addDependencies(ctx, base, name)
}

// importFrom stages name from the first base URL that has it and returns
// that base
func (a *adder) importFrom(ctx context.Context, name string, bases ...string) (string, error) {
	var lastErr error
	tried := make([]string, 0, len(bases))
	for _, base := range bases {
		if containsString(tried, base) {
			continue
		}
		tried = append(tried, base)

		url := base + "/" + name + ".git"
		err := a.stage(ctx, url, name)
		if err == nil {
			if _, ok := a.prog.Resolver.RemoteIdentity(name); ok {
				return base, nil
			}
			err = errors.Newf(errors.ErrNotFound, "%s has no %s.mk", url, name)
		}
		a.prog.Logger.Debug().Err(err).Str("url", url).Msg("Component not importable")
		lastErr = err
	}
	return "", errors.Wrapf(lastErr, errors.ErrUnresolvedComponent,
		"component %q can't be found in the SDK or at %s", name, strings.Join(tried, ", ")).
		WithDetail("name", name)
}

// stage imports url into <remote root>/<name>
func (a *adder) stage(ctx context.Context, url, name string) error {
	dest := filepath.Join(a.prog.Resolver.RemoteRoot(), name)
	// a failed clone can leave an empty directory behind
	if entries, err := afero.ReadDir(a.prog.FS, dest); err == nil && len(entries) == 0 {
		if err := a.prog.FS.Remove(dest); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to clear %s", dest)
		}
	}

	res, err := a.opts.Sync.Import(ctx, deps.ImportOptions{
		URL:      url,
		Path:     dest,
		Ignore:   a.opts.Ignore,
		Depth:    a.opts.Depth,
		Protocol: a.opts.Protocol,
		Nested:   true,
	})
	if res != nil {
		a.result.Warnings = append(a.result.Warnings, res.Warnings...)
	}
	if err != nil {
		return err
	}
	a.prog.Resolver.Invalidate()
	if res.Has(deps.EventImported, dest) {
		a.result.Staged = append(a.result.Staged, dest)
	}
	return nil
}

func (a *adder) record(identity, origin string) error {
	changed, err := a.prog.Manifest.Add(identity, origin)
	if err != nil {
		return err
	}
	a.result.Added = append(a.result.Added, identity)
	a.result.Changed = a.result.Changed || changed
	return nil
}

// baseURL is url without its revision and last path element
func baseURL(url string) string {
	url = stripRevision(url)
	if i := strings.LastIndexAny(url, "/:"); i >= 0 {
		return url[:i]
	}
	return url
}

func stripRevision(url string) string {
	u, _ := vcs.SplitRevision(url)
	return u
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
