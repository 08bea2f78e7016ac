package remove

import (
	"context"
	"fmt"

	"github.com/alios-things/aos-cube/pkg/commands/internal"
	"github.com/alios-things/aos-cube/pkg/component"
	"github.com/alios-things/aos-cube/pkg/config"
	"github.com/alios-things/aos-cube/pkg/errors"
	"github.com/alios-things/aos-cube/pkg/logging"
	"github.com/spf13/afero"
)

// RemoveComponentOptions defines the options for the RemoveComponent command
type RemoveComponentOptions struct {
	FS     afero.Fs
	Config *config.Config
	Out    internal.Reporter
	// Name is the component name
	Name string
}

// RemoveComponentResult reports what was taken out of the manifest
type RemoveComponentResult struct {
	// Removed lists every identity patched, in the order it was removed
	Removed []string `json:"removed"`
	// Local is true when Name resolved to an SDK component
	Local   bool `json:"local"`
	Changed bool `json:"changed"`
}

type remover struct {
	prog    *internal.Program
	result  *RemoveComponentResult
	visited map[string]bool
}

// RemoveComponent removes a component from the program's cube.mk. A local
// SDK component is removed on its own; a staged remote component takes the
// remote components it pulled in along with it.
func RemoveComponent(ctx context.Context, opts RemoveComponentOptions) (*RemoveComponentResult, error) {
	log := logging.GetLogger("core.commands")
	log.Debug().Str("command", "RemoveComponent").Str("name", opts.Name).Msg("Executing command")

	if opts.Name == "" {
		return nil, errors.New(errors.ErrInvalidInput, "a component name is required")
	}
	prog, err := internal.OpenProgram(opts.FS, opts.Config, opts.Out, "rm")
	if err != nil {
		return nil, err
	}

	r := &remover{
		prog:    prog,
		result:  &RemoveComponentResult{},
		visited: map[string]bool{opts.Name: true},
	}

	if identity, ok := prog.Resolver.LocalIdentity(opts.Name); ok {
		r.result.Local = true
		if err := r.record(identity, identity, false); err != nil {
			return nil, err
		}
		prog.Out.Action(fmt.Sprintf("Remove local component %q success", opts.Name))
	} else {
		identity, ok := r.remoteIdentity(opts.Name)
		if !ok {
			return nil, errors.Newf(errors.ErrUnresolvedComponent, "component %q is neither in the SDK nor staged in %s", opts.Name, prog.Resolver.RemoteRoot()).
				WithDetail("name", opts.Name)
		}
		if err := r.record(identity, identity, true); err != nil {
			return nil, err
		}
		if err := r.removeDependencies(opts.Name); err != nil {
			return nil, err
		}
		prog.Out.Action(fmt.Sprintf("Remove remote component %q success", opts.Name))
	}

	if r.result.Changed {
		if err := prog.MarkModified(); err != nil {
			return nil, err
		}
	}

	log.Info().Str("command", "RemoveComponent").Strs("removed", r.result.Removed).Bool("changed", r.result.Changed).Msg("Command finished")
	return r.result, nil
}

// remoteIdentity resolves name among staged components, or among the
// remote identities the manifest still adds when the staging directory is
// gone
func (r *remover) remoteIdentity(name string) (string, bool) {
	if identity, ok := r.prog.Resolver.RemoteIdentity(name); ok {
		return identity, true
	}
	m, err := r.prog.Manifest.Load()
	if err != nil {
		return "", false
	}
	identity := component.RemoteIdentity(name)
	return identity, m.IsAdded(identity)
}

// removeDependencies removes what the staged component name declares
func (r *remover) removeDependencies(name string) error {
	required, err := component.Dependencies(r.prog.FS, r.prog.Resolver.RemoteMakefile(name))
	if err != nil {
		return err
	}
	origin := component.RemoteIdentity(name)
	for _, dep := range required {
		if err := r.removeDependency(dep, origin); err != nil {
			return err
		}
	}
	return nil
}

func (r *remover) removeDependency(name, origin string) error {
	if identity, ok := r.prog.Resolver.LocalIdentity(name); ok {
		if err := r.record(identity, origin, true); err != nil {
			return err
		}
		r.prog.Out.Action(fmt.Sprintf("Remove local component %q success", name))
		return nil
	}

	if r.visited[name] {
		return nil
	}
	r.visited[name] = true

	if err := r.record(component.RemoteIdentity(name), origin, true); err != nil {
		return err
	}
	r.prog.Out.Action(fmt.Sprintf("Remove remote component %q success", name))
	return r.removeDependencies(name)
}

func (r *remover) record(identity, origin string, recursive bool) error {
	changed, err := r.prog.Manifest.Remove(identity, origin, recursive)
	if err != nil {
		return err
	}
	r.result.Removed = append(r.result.Removed, identity)
	r.result.Changed = r.result.Changed || changed
	return nil
}
