package manifest

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/alios-things/aos-cube/pkg/errors"
	"github.com/alios-things/aos-cube/pkg/filesystem"
	"github.com/alios-things/aos-cube/pkg/logging"
	"github.com/alios-things/aos-cube/pkg/paths"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Patcher applies add/remove operations to the cube.mk of a program
type Patcher struct {
	fs     afero.Fs
	dir    string
	logger zerolog.Logger
}

// NewPatcher creates a patcher for the manifest in dir
func NewPatcher(fs afero.Fs, dir string) *Patcher {
	return &Patcher{
		fs:     fs,
		dir:    dir,
		logger: logging.GetLogger("manifest"),
	}
}

// Path is the manifest file location
func (p *Patcher) Path() string {
	return filepath.Join(p.dir, paths.ManifestFile)
}

// Load parses the manifest. A missing file is MANIFEST_NOT_FOUND.
func (p *Patcher) Load() (*Model, error) {
	data, err := afero.ReadFile(p.fs, p.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrManifestNotFound, "%s not found, run the command from inside a program", p.Path()).
				WithDetail("path", p.Path())
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", p.Path())
	}
	return Parse(bytes.NewReader(data))
}

// Save writes the model atomically
func (p *Patcher) Save(m *Model) error {
	if err := filesystem.WriteFileAtomic(p.fs, p.Path(), m.Bytes(), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", p.Path())
	}
	return nil
}

// Add records identity as explicitly added, introduced by origin
func (p *Patcher) Add(identity, origin string) (bool, error) {
	return p.apply(func(m *Model) bool { return m.AddIdentity(identity, origin) },
		"add", identity, origin)
}

// Remove records identity as removed. recursive marks removals expanded
// from another component's dependencies, which never deny-list.
func (p *Patcher) Remove(identity, origin string, recursive bool) (bool, error) {
	return p.apply(func(m *Model) bool { return m.RemoveIdentity(identity, recursive) },
		"remove", identity, origin)
}

func (p *Patcher) apply(mutate func(*Model) bool, op, identity, origin string) (bool, error) {
	m, err := p.Load()
	if err != nil {
		return false, err
	}
	changed := mutate(m)
	if err := p.Save(m); err != nil {
		return false, err
	}
	p.logger.Debug().
		Str("op", op).
		Str("identity", identity).
		Str("origin", origin).
		Bool("changed", changed).
		Msg("Patched manifest")
	return changed, nil
}
