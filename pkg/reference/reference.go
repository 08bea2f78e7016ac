// Package reference models the pinned dependency records stored next to a
// checkout: <name>.lib files for dependencies that are always deployed and
// <name>.codes files for optional code fetched on demand.
//
// Both files hold a single line, <url>[#<rev>]. A child with no remote is
// recorded with LocalURL so the reference is never silently dropped.
package reference

import (
	"path/filepath"
	"strings"

	"github.com/alios-things/aos-cube/pkg/errors"
	"github.com/alios-things/aos-cube/pkg/filesystem"
	"github.com/alios-things/aos-cube/pkg/paths"
	"github.com/alios-things/aos-cube/pkg/vcs"
	"github.com/spf13/afero"
)

// LocalURL is written in place of a URL for children without a remote
const LocalURL = "local://"

// Kind tells whether a reference is always deployed or only on demand
type Kind int

const (
	// Lib references are materialized by deploy and update
	Lib Kind = iota
	// Code references are materialized only by the codes command
	Code
)

// Ext returns the file extension used for the kind
func (k Kind) Ext() string {
	if k == Code {
		return paths.CodesExt
	}
	return paths.LibExt
}

func (k Kind) String() string {
	if k == Code {
		return "codes"
	}
	return "lib"
}

// KindForFile returns the kind of a reference file, or false if name is
// not a reference file
func KindForFile(name string) (Kind, bool) {
	switch filepath.Ext(name) {
	case paths.LibExt:
		return Lib, true
	case paths.CodesExt:
		return Code, true
	}
	return Lib, false
}

// Reference pins one child checkout of an owner directory
type Reference struct {
	// Owner is the directory holding the reference file
	Owner string
	// ChildPath is relative to Owner, slash separated
	ChildPath string
	URL       string
	Rev       string
	IsLocal   bool
	Kind      Kind
}

// Parse reads the text form <url>[#<rev>]
func Parse(line string) (url, rev string, isLocal bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", "", false, errors.New(errors.ErrInvalidInput, "empty reference")
	}

	url, rev = vcs.SplitRevision(line)
	if url == LocalURL || url == "" {
		return "", rev, true, nil
	}
	return url, rev, false, nil
}

// New builds a reference for the child at childPath below owner
func New(owner, childPath, url, rev string, kind Kind) *Reference {
	return &Reference{
		Owner:     owner,
		ChildPath: filepath.ToSlash(childPath),
		URL:       url,
		Rev:       rev,
		IsLocal:   url == "" || url == LocalURL,
		Kind:      kind,
	}
}

// FromLine builds a reference from the text form
func FromLine(owner, childPath, line string, kind Kind) (*Reference, error) {
	url, rev, isLocal, err := Parse(line)
	if err != nil {
		return nil, err
	}
	return &Reference{
		Owner:     owner,
		ChildPath: filepath.ToSlash(childPath),
		URL:       url,
		Rev:       rev,
		IsLocal:   isLocal,
		Kind:      kind,
	}, nil
}

// Format returns the single line stored in the reference file
func (r *Reference) Format() string {
	url := r.URL
	if r.IsLocal || url == "" {
		url = LocalURL
	}
	if r.Rev != "" {
		return url + "#" + r.Rev
	}
	return url
}

// FullURL is the url#rev form used when cloning
func (r *Reference) FullURL() string {
	if r.IsLocal {
		return ""
	}
	if r.Rev != "" {
		return r.URL + "#" + r.Rev
	}
	return r.URL
}

// Name is the base name of the child directory
func (r *Reference) Name() string {
	return filepath.Base(filepath.FromSlash(r.ChildPath))
}

// Path is the absolute path of the child checkout
func (r *Reference) Path() string {
	return filepath.Join(r.Owner, filepath.FromSlash(r.ChildPath))
}

// File is the absolute path of the reference file
func (r *Reference) File() string {
	return r.Path() + r.Kind.Ext()
}

// RelFile is the reference file relative to Owner
func (r *Reference) RelFile() string {
	return r.ChildPath + r.Kind.Ext()
}

// Read loads the reference file at file, which lives in owner
func Read(fs afero.Fs, owner, file string) (*Reference, error) {
	kind, ok := KindForFile(file)
	if !ok {
		return nil, errors.Newf(errors.ErrInvalidInput, "%s is not a reference file", file)
	}

	data, err := filesystem.ReadFile(fs, file)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read reference %s", file)
	}

	rel, err := filepath.Rel(owner, strings.TrimSuffix(file, kind.Ext()))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "%s is not below %s", file, owner)
	}

	line := strings.SplitN(string(data), "\n", 2)[0]
	ref, err := FromLine(owner, rel, line, kind)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid reference %s", file)
	}
	return ref, nil
}

// Write stores the reference, replacing the file atomically
func (r *Reference) Write(fs afero.Fs) error {
	if err := filesystem.WriteFileAtomic(fs, r.File(), []byte(r.Format()+"\n"), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write reference %s", r.File())
	}
	return nil
}

// Remove deletes the reference file
func (r *Reference) Remove(fs afero.Fs) error {
	if err := fs.Remove(r.File()); err != nil && filesystem.Exists(fs, r.File()) {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to remove reference %s", r.File())
	}
	return nil
}

// Equal compares the persisted fields of two references
func (r *Reference) Equal(o *Reference) bool {
	return r.ChildPath == o.ChildPath && r.Format() == o.Format()
}
