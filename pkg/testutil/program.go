package testutil

import (
	"strings"
	"testing"

	"github.com/alios-things/aos-cube/pkg/config"
	"github.com/alios-things/aos-cube/pkg/paths"
	"github.com/spf13/afero"
)

// Fixed locations of a ProgramEnv
const (
	ProgramRoot = "/prog"
	SDKRoot     = "/sdk"
	RemoteRoot  = "/prog/remote"
)

// EmptyManifest is a cube.mk without component changes
const EmptyManifest = "CUBE_ADD_COMPONENTS :=\nCUBE_REMOVE_COMPONENTS :=\n"

// ProgramEnv is an in-memory program with an SDK and a staging directory
type ProgramEnv struct {
	FS  afero.Fs
	VCS *FakeVCS
}

// NewProgramEnv creates a program at ProgramRoot whose SDK is sdk, written
// below SDKRoot. Global config and data directories are isolated.
func NewProgramEnv(t *testing.T, sdk FileTree) *ProgramEnv {
	t.Helper()
	t.Setenv(paths.EnvConfigDir, "/cfg")
	t.Setenv(paths.EnvDataDir, "/data")

	fs := NewTestFS()
	WriteTree(t, fs, ProgramRoot, FileTree{
		paths.ProgramConfigFile: config.KeyOSPath + "=" + SDKRoot + "\n" +
			config.KeyRemotePath + "=" + RemoteRoot + "\n",
		paths.ManifestFile: EmptyManifest,
	})
	WriteTree(t, fs, SDKRoot, sdk)
	return &ProgramEnv{FS: fs, VCS: NewFakeVCS(fs)}
}

// Config loads the configuration as seen from dir
func (e *ProgramEnv) Config(t *testing.T, dir string) *config.Config {
	t.Helper()
	p, err := paths.New(e.FS, dir)
	if err != nil {
		t.Fatalf("Failed to locate program from %s: %v", dir, err)
	}
	cfg, err := config.Load(e.FS, p)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// Manifest returns the program's cube.mk
func (e *ProgramEnv) Manifest(t *testing.T) string {
	t.Helper()
	return ReadFile(t, e.FS, ProgramRoot+"/"+paths.ManifestFile)
}

// ProgramValues returns the program's .aos values
func (e *ProgramEnv) ProgramValues(t *testing.T) map[string]string {
	t.Helper()
	values, err := config.ReadProgramFile(e.FS, ProgramRoot+"/"+paths.ProgramConfigFile)
	if err != nil {
		t.Fatalf("Failed to read program config: %v", err)
	}
	return values
}

// Makefile returns a component makefile declaring name and its
// dependencies
func Makefile(name string, deps ...string) string {
	mk := "NAME := " + name + "\n"
	if len(deps) > 0 {
		mk += "$(NAME)_COMPONENTS := " + strings.Join(deps, " ") + "\n"
	}
	return mk
}

// AddComponentRemote registers a repository at url holding the component
// name and its makefile
func (e *ProgramEnv) AddComponentRemote(url, name string, deps ...string) *FakeRemote {
	return e.VCS.AddRemote(url, FakeRevision{
		ID:    name + "-1",
		Files: map[string]string{name + paths.MakefileExt: Makefile(name, deps...)},
	})
}
