package filesystem

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// NewOS returns the real filesystem
func NewOS() afero.Fs {
	return afero.NewOsFs()
}

// NewMemory returns an in-memory filesystem
func NewMemory() afero.Fs {
	return afero.NewMemMapFs()
}

// Exists reports whether name exists
func Exists(fsys afero.Fs, name string) bool {
	_, err := fsys.Stat(name)
	return err == nil
}

// IsDir reports whether name exists and is a directory
func IsDir(fsys afero.Fs, name string) bool {
	info, err := fsys.Stat(name)
	return err == nil && info.IsDir()
}

// ReadFile reads name, refusing directories
func ReadFile(fsys afero.Fs, name string) ([]byte, error) {
	info, err := fsys.Stat(name)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid}
	}
	return afero.ReadFile(fsys, name)
}

// WriteFileAtomic writes data to a temporary sibling of name and renames it
// into place, so readers never observe a partially written file.
func WriteFileAtomic(fsys afero.Fs, name string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(name)
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%d.tmp", filepath.Base(name), time.Now().UnixNano()))
	if err := afero.WriteFile(fsys, tmp, data, perm); err != nil {
		_ = fsys.Remove(tmp)
		return err
	}
	if err := fsys.Rename(tmp, name); err != nil {
		_ = fsys.Remove(tmp)
		return err
	}
	return nil
}

// RemoveTree deletes path and everything below it. Read-only entries (git
// pack files) are made writable first.
func RemoveTree(fsys afero.Fs, path string) error {
	if !Exists(fsys, path) {
		return nil
	}
	_ = afero.Walk(fsys, path, func(p string, info os.FileInfo, err error) error {
		if err != nil || info == nil {
			return nil
		}
		if info.Mode().Perm()&0200 == 0 {
			_ = fsys.Chmod(p, info.Mode().Perm()|0200)
		}
		return nil
	})
	return fsys.RemoveAll(path)
}

// ReadDir lists the entries of a directory sorted by name
func ReadDir(fsys afero.Fs, name string) ([]fs.FileInfo, error) {
	return afero.ReadDir(fsys, name)
}

// IsHidden reports whether a base name is a dot entry
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// Rel returns target relative to base using forward slashes, or target
// unchanged when no relative form exists.
func Rel(base, target string) string {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return target
	}
	return filepath.ToSlash(rel)
}
