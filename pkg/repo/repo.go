// Package repo builds the runtime view of one checkout in the dependency
// tree: its version control state and the references it declares.
//
// Nodes are created on demand by scanning a directory and are never
// persisted; only their reference files are.
package repo

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/alios-things/aos-cube/pkg/errors"
	"github.com/alios-things/aos-cube/pkg/filesystem"
	"github.com/alios-things/aos-cube/pkg/logging"
	"github.com/alios-things/aos-cube/pkg/reference"
	"github.com/alios-things/aos-cube/pkg/vcs"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Env bundles what node construction needs
type Env struct {
	FS     afero.Fs
	VCS    *vcs.Registry
	logger zerolog.Logger
}

// NewEnv creates a node environment
func NewEnv(fs afero.Fs, registry *vcs.Registry) *Env {
	return &Env{
		FS:     fs,
		VCS:    registry,
		logger: logging.GetLogger("repo"),
	}
}

// Node is one directory of the dependency tree
type Node struct {
	Path string
	Name string
	// Adapter is nil when the directory is not a working copy
	Adapter vcs.Adapter
	URL     string
	Rev     string
	IsLocal bool
	Libs    []*reference.Reference
	Codes   []*reference.Reference
}

// IsRepo reports whether path is a working copy of any known kind
func (e *Env) IsRepo(path string) bool {
	return e.VCS.IsRepository(path)
}

// FromRepo loads the node at path. A directory that is neither a working
// copy nor holds reference files is rejected unless it is the tree root.
func (e *Env) FromRepo(ctx context.Context, path string, isRoot bool) (*Node, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve %s", path)
	}
	if !filesystem.IsDir(e.FS, abs) {
		return nil, errors.Newf(errors.ErrNotARepository, "%s does not exist", abs)
	}

	n := &Node{
		Path:    abs,
		Name:    filepath.Base(abs),
		Adapter: e.VCS.Detect(abs),
	}
	if err := e.loadState(ctx, n); err != nil {
		return nil, err
	}
	if err := e.scan(n); err != nil {
		return nil, err
	}

	if n.Adapter == nil && !isRoot && len(n.Libs) == 0 && len(n.Codes) == 0 {
		return nil, errors.Newf(errors.ErrNotARepository, "%s is not a working copy and declares no references", abs)
	}
	return n, nil
}

// FromURL describes the checkout of rawURL ([#rev]) at path. When path is
// already a working copy its adapter and local state are used; otherwise
// the adapter is chosen from the URL.
func (e *Env) FromURL(ctx context.Context, rawURL, path string) (*Node, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve %s", path)
	}

	url, rev := vcs.SplitRevision(rawURL)
	n := &Node{
		Path: abs,
		Name: filepath.Base(abs),
		URL:  url,
		Rev:  rev,
	}

	if adapter := e.VCS.Detect(abs); adapter != nil {
		n.Adapter = adapter
		remote, err := adapter.RemoteURL(ctx, abs)
		if err != nil {
			return nil, err
		}
		n.IsLocal = remote == ""
		if err := e.scan(n); err != nil {
			return nil, err
		}
		return n, nil
	}

	n.Adapter = e.VCS.ForURL(url)
	n.IsLocal = url == ""
	return n, nil
}

// FromReference describes the checkout a reference points at
func (e *Env) FromReference(ctx context.Context, ref *reference.Reference) (*Node, error) {
	if ref.IsLocal {
		n, err := e.FromURL(ctx, "", ref.Path())
		if err != nil {
			return nil, err
		}
		n.Rev = ref.Rev
		n.IsLocal = true
		return n, nil
	}
	return e.FromURL(ctx, ref.FullURL(), ref.Path())
}

// Refresh reloads the version control state and references of n
func (e *Env) Refresh(ctx context.Context, n *Node) error {
	n.Adapter = e.VCS.Detect(n.Path)
	n.Libs, n.Codes = nil, nil
	if err := e.loadState(ctx, n); err != nil {
		return err
	}
	return e.scan(n)
}

func (e *Env) loadState(ctx context.Context, n *Node) error {
	if n.Adapter == nil {
		n.IsLocal = true
		return nil
	}
	url, err := n.Adapter.RemoteURL(ctx, n.Path)
	if err != nil {
		return err
	}
	rev, err := n.Adapter.CurrentRevision(ctx, n.Path)
	if err != nil {
		return err
	}
	n.URL = url
	n.Rev = rev
	n.IsLocal = url == ""
	return nil
}

// scan collects reference files in the node directory and in sub
// directories that are neither hidden nor working copies of their own.
// A .lib wins over a .codes for the same child.
func (e *Env) scan(n *Node) error {
	libs := map[string]*reference.Reference{}
	codes := map[string]*reference.Reference{}

	var walk func(dir string) error
	walk = func(dir string) error {
		entries, err := afero.ReadDir(e.FS, dir)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to list %s", dir)
		}
		for _, entry := range entries {
			name := entry.Name()
			full := filepath.Join(dir, name)
			if filesystem.IsHidden(name) {
				continue
			}
			if entry.IsDir() {
				if e.IsRepo(full) {
					continue
				}
				if err := walk(full); err != nil {
					return err
				}
				continue
			}
			kind, ok := reference.KindForFile(name)
			if !ok {
				continue
			}
			ref, err := reference.Read(e.FS, n.Path, full)
			if err != nil {
				e.logger.Warn().Err(err).Str("file", full).Msg("Skipping unreadable reference")
				continue
			}
			if kind == reference.Lib {
				libs[ref.ChildPath] = ref
			} else {
				codes[ref.ChildPath] = ref
			}
		}
		return nil
	}

	if err := walk(n.Path); err != nil {
		return err
	}

	for child := range libs {
		delete(codes, child)
	}
	n.Libs = sortedRefs(libs)
	n.Codes = sortedRefs(codes)
	return nil
}

func sortedRefs(m map[string]*reference.Reference) []*reference.Reference {
	out := make([]*reference.Reference, 0, len(m))
	for _, r := range m {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChildPath < out[j].ChildPath })
	return out
}

// FindLib returns the lib reference for childPath
func (n *Node) FindLib(childPath string) *reference.Reference {
	for _, r := range n.Libs {
		if r.ChildPath == childPath {
			return r
		}
	}
	return nil
}

// FindCode returns the codes reference whose child is named name
func (n *Node) FindCode(name string) *reference.Reference {
	for _, r := range n.Codes {
		if r.ChildPath == name || r.Name() == name {
			return r
		}
	}
	return nil
}

// FullURL is url#rev of the node's checkout
func (n *Node) FullURL() string {
	if n.Rev != "" {
		return n.URL + "#" + n.Rev
	}
	return n.URL
}

// Reference is the reference the node's parent directory would hold for it
func (n *Node) Reference() *reference.Reference {
	ref := reference.New(filepath.Dir(n.Path), n.Name, n.URL, n.Rev, reference.Lib)
	ref.IsLocal = n.IsLocal
	return ref
}

// WriteReference stores the node's reference next to it
func (e *Env) WriteReference(n *Node) (*reference.Reference, error) {
	ref := n.Reference()
	if err := ref.Write(e.FS); err != nil {
		return nil, err
	}
	return ref, nil
}

// Remove deletes the node's directory
func (e *Env) Remove(n *Node) error {
	if err := filesystem.RemoveTree(e.FS, n.Path); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to remove %s", n.Path)
	}
	return nil
}
