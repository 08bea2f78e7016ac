// Package vcs defines the version control capability used by the
// synchronizer and its two implementations: Git, backed by go-git, and
// Mercurial, backed by the hg command line.
//
// Callers never branch on the kind of a working copy. A Registry picks
// the adapter for a directory (Detect) or for a URL about to be cloned
// (ForURL) and everything else goes through the Adapter interface.
package vcs

import (
	"context"
	"path/filepath"

	"github.com/alios-things/aos-cube/pkg/filesystem"
	"github.com/spf13/afero"
)

// Kind names a version control system
type Kind string

const (
	KindGit       Kind = "git"
	KindMercurial Kind = "hg"
)

// CloneOptions controls Clone
type CloneOptions struct {
	// Rev is checked out by the caller afterwards; adapters may use it to
	// pick the branch to fetch.
	Rev string
	// Depth limits history for shallow clones, 0 means full history
	Depth int
	// Protocol rewrites the URL scheme before cloning (https, http, ssh, git)
	Protocol string
}

// UpdateOptions controls Update
type UpdateOptions struct {
	// Rev to check out after fetching; empty pulls the current branch
	Rev string
	// Clean discards local modifications
	Clean bool
	// CleanFiles also deletes untracked and ignored files
	CleanFiles bool
	// Depth limits fetched history
	Depth int
}

// Adapter is the set of operations the synchronizer performs on a working
// copy. Paths are absolute directories of working copies.
type Adapter interface {
	Kind() Kind
	IsRepository(path string) bool
	Init(ctx context.Context, path string) error
	Clone(ctx context.Context, url, path string, opts CloneOptions) error
	Checkout(ctx context.Context, path, rev string, clean bool) error
	Update(ctx context.Context, path string, opts UpdateOptions) error
	CurrentRevision(ctx context.Context, path string) (string, error)
	// CurrentBranch returns "" when no branch is checked out
	CurrentBranch(ctx context.Context, path string) (string, error)
	// RemoteURL returns "" when the working copy has no default remote
	RemoteURL(ctx context.Context, path string) (string, error)
	IsDirty(ctx context.Context, path string) (bool, error)
	Status(ctx context.Context, path string) (string, error)
	Commit(ctx context.Context, path, message string) error
	Push(ctx context.Context, path string, all bool) error
	// Outgoing counts local commits not yet on the default remote
	Outgoing(ctx context.Context, path string) (int, error)
	// Track and Untrack add or drop file (relative to path) from version control
	Track(ctx context.Context, path, file string) error
	Untrack(ctx context.Context, path, file string) error
	// Ignore and Unignore maintain the working copy's private ignore list
	Ignore(path, rel string) error
	Unignore(path, rel string) error
}

// Registry holds the available adapters in detection order
type Registry struct {
	adapters []Adapter
	fallback Adapter
}

// NewRegistry creates a registry. The first adapter is used for URLs no
// adapter claims.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: adapters}
	if len(adapters) > 0 {
		r.fallback = adapters[0]
	}
	return r
}

// Default returns a registry with the Git and Mercurial adapters
func Default(fs afero.Fs) *Registry {
	return NewRegistry(NewGit(fs), NewMercurial(fs, nil))
}

// Detect returns the adapter owning the working copy at path, or nil
func (r *Registry) Detect(path string) Adapter {
	for _, a := range r.adapters {
		if a.IsRepository(path) {
			return a
		}
	}
	return nil
}

// IsRepository reports whether any adapter recognises path
func (r *Registry) IsRepository(path string) bool {
	return r.Detect(path) != nil
}

// ForURL picks the adapter to clone url with
func (r *Registry) ForURL(url string) Adapter {
	kind := KindGit
	if looksLikeMercurial(url) {
		kind = KindMercurial
	}
	for _, a := range r.adapters {
		if a.Kind() == kind {
			return a
		}
	}
	return r.fallback
}

// Adapters returns the registered adapters
func (r *Registry) Adapters() []Adapter {
	return r.adapters
}

// markerExists checks for a working copy marker such as .git or .hg
func markerExists(fs afero.Fs, path, marker string) bool {
	return filesystem.Exists(fs, filepath.Join(path, marker))
}
