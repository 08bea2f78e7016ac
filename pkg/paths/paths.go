package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/alios-things/aos-cube/pkg/errors"
	"github.com/spf13/afero"
)

// Environment variable names
const (
	// EnvConfigDir overrides the XDG config directory for aos
	EnvConfigDir = "AOS_CONFIG_DIR"

	// EnvDataDir overrides the XDG data directory for aos
	EnvDataDir = "AOS_DATA_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Fixed names. These are part of the on-disk format shared with the build
// system and are not configurable.
const (
	// AppName is the directory name used under the XDG base directories
	AppName = "aos"

	// ProgramConfigFile marks a program root and holds its KEY=VALUE config
	ProgramConfigFile = ".aos"

	// GlobalConfigFile is the global config file name inside ConfigDir
	GlobalConfigFile = "config.toml"

	// ManifestFile is the build manifest patched by add/rm
	ManifestFile = "cube.mk"

	// LibExt is the extension of always-deployed reference files
	LibExt = ".lib"

	// CodesExt is the extension of on-demand reference files
	CodesExt = ".codes"

	// MakefileExt is the extension of component makefiles
	MakefileExt = ".mk"

	// RemoteIdentityPrefix prefixes identities of staged remote components
	RemoteIdentityPrefix = "REMOTE_PATH"

	// RemoteDirName is the staging directory for remote components
	RemoteDirName = "remote"

	// LogFileName is the name of the log file
	LogFileName = "aos.log"
)

// Paths provides centralized path management for aos
type Paths interface {
	ProgramRoot() string
	UsedFallback() bool
	ProgramConfigPath() string
	ManifestPath() string
	ConfigDir() string
	GlobalConfigPath() string
	DataDir() string
	DefaultRemoteDir() string
	StateDir() string
	LogFilePath() string
}

type paths struct {
	programRoot  string
	usedFallback bool

	xdgConfig string
	xdgData   string
	xdgState  string
}

// New creates a Paths instance. The program root is the nearest ancestor of
// start (or of the working directory when start is empty) that contains a
// .aos file. When none is found the start directory itself is used and
// UsedFallback reports true.
func New(fs afero.Fs, start string) (Paths, error) {
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to get working directory")
		}
		start = wd
	}

	abs, err := filepath.Abs(ExpandHome(start))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for %s", start)
	}

	p := &paths{}
	if root, ok := FindProgramRoot(fs, abs); ok {
		p.programRoot = root
	} else {
		p.programRoot = abs
		p.usedFallback = true
	}

	p.setupXDGDirs()
	return p, nil
}

func (p *paths) setupXDGDirs() {
	xdg.Reload()

	p.xdgConfig = filepath.Join(xdg.ConfigHome, AppName)
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		p.xdgConfig = ExpandHome(dir)
	}

	p.xdgData = filepath.Join(xdg.DataHome, AppName)
	if dir := os.Getenv(EnvDataDir); dir != "" {
		p.xdgData = ExpandHome(dir)
	}

	p.xdgState = filepath.Join(xdg.StateHome, AppName)
}

// FindProgramRoot walks up from dir looking for a .aos file
func FindProgramRoot(fs afero.Fs, dir string) (string, bool) {
	dir = filepath.Clean(dir)
	for {
		info, err := fs.Stat(filepath.Join(dir, ProgramConfigFile))
		if err == nil && !info.IsDir() {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func (p *paths) ProgramRoot() string { return p.programRoot }

func (p *paths) UsedFallback() bool { return p.usedFallback }

func (p *paths) ProgramConfigPath() string {
	return filepath.Join(p.programRoot, ProgramConfigFile)
}

func (p *paths) ManifestPath() string {
	return filepath.Join(p.programRoot, ManifestFile)
}

func (p *paths) ConfigDir() string { return p.xdgConfig }

func (p *paths) GlobalConfigPath() string {
	return filepath.Join(p.xdgConfig, GlobalConfigFile)
}

func (p *paths) DataDir() string { return p.xdgData }

// DefaultRemoteDir is where URL-added components are staged when the
// program config has no REMOTE_PATH.
func (p *paths) DefaultRemoteDir() string {
	return filepath.Join(p.xdgData, RemoteDirName)
}

func (p *paths) StateDir() string { return p.xdgState }

func (p *paths) LogFilePath() string {
	return filepath.Join(p.xdgState, LogFileName)
}

// ExpandHome expands a leading ~ to the user's home directory
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
