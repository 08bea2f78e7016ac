package component

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/alios-things/aos-cube/pkg/logging"
	"github.com/alios-things/aos-cube/pkg/paths"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

const scanCacheSize = 8

// Resolver turns component names into local or remote identities
type Resolver struct {
	fs         afero.Fs
	sdkRoot    string
	remoteRoot string
	scans      *lru.Cache[string, map[string]string]
	logger     zerolog.Logger
}

// NewResolver creates a resolver for the SDK at sdkRoot with remote
// components staged below remoteRoot
func NewResolver(fs afero.Fs, sdkRoot, remoteRoot string) *Resolver {
	scans, _ := lru.New[string, map[string]string](scanCacheSize)
	return &Resolver{
		fs:         fs,
		sdkRoot:    sdkRoot,
		remoteRoot: remoteRoot,
		scans:      scans,
		logger:     logging.GetLogger("component"),
	}
}

// SDKRoot is the directory local identities are relative to
func (r *Resolver) SDKRoot() string { return r.sdkRoot }

// RemoteRoot is the staging directory of remote components
func (r *Resolver) RemoteRoot() string { return r.remoteRoot }

// Resolve returns the identity of name, trying the preferred namespace
// first and falling back to the other one
func (r *Resolver) Resolve(name string, preferLocal bool) (string, bool) {
	first, second := r.LocalIdentity, r.RemoteIdentity
	if !preferLocal {
		first, second = second, first
	}
	if id, ok := first(name); ok {
		return id, true
	}
	return second(name)
}

// LocalIdentity resolves name under the SDK root. Dotted names are
// treated as paths ("network.lwip" is "network/lwip").
func (r *Resolver) LocalIdentity(name string) (string, bool) {
	if r.sdkRoot == "" || name == "" {
		return "", false
	}
	dir := filepath.FromSlash(strings.ReplaceAll(name, ".", "/"))

	if r.hasOwnMakefile(filepath.Join(r.sdkRoot, dir)) {
		return filepath.ToSlash(dir), true
	}

	entries, err := afero.ReadDir(r.fs, r.sdkRoot)
	if err != nil {
		r.logger.Debug().Err(err).Str("path", r.sdkRoot).Msg("SDK root not readable")
		return "", false
	}
	for _, e := range entries {
		if !e.IsDir() || isExcluded(e.Name()) {
			continue
		}
		candidate := filepath.Join(e.Name(), dir)
		if r.hasOwnMakefile(filepath.Join(r.sdkRoot, candidate)) {
			return filepath.ToSlash(candidate), true
		}
	}

	components, err := r.components(r.sdkRoot)
	if err != nil {
		return "", false
	}
	for _, makefile := range sortedKeys(components) {
		if components[makefile] == name {
			return path.Dir(makefile), true
		}
	}

	r.logger.Debug().Str("name", name).Msg("No local component")
	return "", false
}

// RemoteIdentity resolves name among staged remote components
func (r *Resolver) RemoteIdentity(name string) (string, bool) {
	if r.remoteRoot == "" || name == "" {
		return "", false
	}
	if r.hasOwnMakefile(filepath.Join(r.remoteRoot, name)) {
		return RemoteIdentity(name), true
	}

	components, err := r.components(r.remoteRoot)
	if err != nil {
		return "", false
	}
	for _, makefile := range sortedKeys(components) {
		if components[makefile] == name {
			return RemoteIdentity(name), true
		}
	}
	return "", false
}

// RemoteMakefile is where a staged component keeps its makefile
func (r *Resolver) RemoteMakefile(name string) string {
	return filepath.Join(r.remoteRoot, name, name+paths.MakefileExt)
}

// Invalidate drops cached scans, after a component was staged or removed
func (r *Resolver) Invalidate() {
	r.scans.Purge()
}

// RemoteIdentity is the identity of a remote component name
func RemoteIdentity(name string) string {
	return paths.RemoteIdentityPrefix + "/" + name
}

// hasOwnMakefile reports whether dir contains <base(dir)>.mk
func (r *Resolver) hasOwnMakefile(dir string) bool {
	info, err := r.fs.Stat(filepath.Join(dir, filepath.Base(dir)+paths.MakefileExt))
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Debug().Err(err).Str("path", dir).Msg("Stat failed")
		}
		return false
	}
	return !info.IsDir()
}

func (r *Resolver) components(root string) (map[string]string, error) {
	if found, ok := r.scans.Get(root); ok {
		return found, nil
	}
	found, err := Components(r.fs, root)
	if err != nil {
		return nil, err
	}
	r.scans.Add(root, found)
	return found, nil
}
