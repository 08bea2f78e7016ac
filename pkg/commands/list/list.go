package list

import (
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alios-things/aos-cube/pkg/component"
	"github.com/alios-things/aos-cube/pkg/config"
	"github.com/alios-things/aos-cube/pkg/errors"
	"github.com/alios-things/aos-cube/pkg/filesystem"
	"github.com/alios-things/aos-cube/pkg/logging"
	"github.com/alios-things/aos-cube/pkg/manifest"
	"github.com/spf13/afero"
)

// sdkMarker identifies a directory that is itself an SDK checkout
const sdkMarker = "kernel/rhino"

// ListComponentsOptions defines the options for the ListComponents command.
type ListComponentsOptions struct {
	FS     afero.Fs
	Config *config.Config
	// WorkDir is used as the SDK when it is one and no program is open
	WorkDir string
}

// ComponentInfo is one listed component
type ComponentInfo struct {
	Name string `json:"name" yaml:"name"`
	// Location is the component directory, relative to the program for
	// staged components and to the SDK's parent for local ones
	Location   string `json:"location" yaml:"location"`
	Identity   string `json:"identity" yaml:"identity"`
	Remote     bool   `json:"remote" yaml:"remote"`
	CubeAdd    bool   `json:"cube_add" yaml:"cube_add"`
	CubeRemove bool   `json:"cube_remove" yaml:"cube_remove"`
}

// ListComponentsResult holds the listed components, staged ones first
type ListComponentsResult struct {
	InProgram  bool            `json:"in_program" yaml:"in_program"`
	SDKRoot    string          `json:"sdk_root" yaml:"sdk_root"`
	Components []ComponentInfo `json:"components" yaml:"components"`
}

// ListComponents finds the components of the SDK and, inside a program,
// the staged remote ones, flagged with how cube.mk treats them.
func ListComponents(opts ListComponentsOptions) (*ListComponentsResult, error) {
	log := logging.GetLogger("core.commands")
	log.Debug().Str("command", "ListComponents").Msg("Executing command")

	if opts.Config == nil {
		return nil, errors.New(errors.ErrInternal, "no configuration loaded")
	}
	result := &ListComponentsResult{InProgram: opts.Config.InProgram()}

	sdkRoot := opts.Config.SDKRoot()
	if !result.InProgram && opts.WorkDir != "" && filesystem.IsDir(opts.FS, filepath.Join(opts.WorkDir, sdkMarker)) {
		sdkRoot = opts.WorkDir
	}
	if sdkRoot == "" {
		return nil, errors.Newf(errors.ErrNotFound, "no SDK configured, set %s or %s", config.KeySDKPath, config.KeyOSPath)
	}
	result.SDKRoot = sdkRoot

	var m *manifest.Model
	if result.InProgram {
		loaded, err := manifest.NewPatcher(opts.FS, opts.Config.ProgramRoot()).Load()
		switch {
		case err == nil:
			m = loaded
		case errors.IsErrorCode(err, errors.ErrManifestNotFound):
			log.Debug().Msg("Program has no manifest")
		default:
			return nil, err
		}

		staged, err := remoteComponents(opts, m)
		if err != nil {
			return nil, err
		}
		result.Components = append(result.Components, staged...)
	}

	local, err := component.Components(opts.FS, sdkRoot)
	if err != nil {
		return nil, err
	}
	parent := filepath.Base(sdkRoot)
	for _, makefile := range sortedKeys(local) {
		identity := path.Dir(makefile)
		info := ComponentInfo{
			Name:     local[makefile],
			Location: path.Join(parent, identity),
			Identity: identity,
		}
		if m != nil {
			info.CubeAdd = m.IsAdded(identity)
			info.CubeRemove = m.IsRemoved(identity)
		}
		result.Components = append(result.Components, info)
	}

	log.Info().Str("command", "ListComponents").Int("componentCount", len(result.Components)).Msg("Command finished")
	return result, nil
}

func remoteComponents(opts ListComponentsOptions, m *manifest.Model) ([]ComponentInfo, error) {
	remoteRoot := opts.Config.RemoteRoot()
	if !filesystem.IsDir(opts.FS, remoteRoot) {
		return nil, nil
	}
	staged, err := component.Components(opts.FS, remoteRoot)
	if err != nil {
		return nil, err
	}

	var out []ComponentInfo
	for _, makefile := range sortedKeys(staged) {
		name := staged[makefile]
		dir := filepath.Join(remoteRoot, filepath.FromSlash(path.Dir(makefile)))
		info := ComponentInfo{
			Name:     name,
			Location: location(opts.Config.ProgramRoot(), dir),
			Identity: component.RemoteIdentity(name),
			Remote:   true,
		}
		if m != nil {
			info.CubeAdd = m.IsAdded(info.Identity)
			info.CubeRemove = m.IsRemoved(info.Identity)
		}
		out = append(out, info)
	}
	return out, nil
}

// location is dir relative to the program when below it
func location(programRoot, dir string) string {
	rel, err := filepath.Rel(programRoot, dir)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(dir)
	}
	return filepath.ToSlash(rel)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
