package deps

import (
	"context"
	"path/filepath"

	"github.com/alios-things/aos-cube/pkg/errors"
	"github.com/alios-things/aos-cube/pkg/filesystem"
	"github.com/alios-things/aos-cube/pkg/logging"
	"github.com/alios-things/aos-cube/pkg/reference"
	"github.com/alios-things/aos-cube/pkg/repo"
	"github.com/spf13/afero"
)

// SyncOptions configures Sync
type SyncOptions struct {
	Path string
	// KeepRefs keeps references whose checkout is missing
	KeepRefs bool
}

// Sync makes the reference files below opts.Path describe the checkouts
// on disk: existing references are refreshed to the checked out revision,
// unrecorded checkouts get a new reference and references to missing
// directories are dropped.
func (s *Synchronizer) Sync(ctx context.Context, opts SyncOptions) (*Result, error) {
	defer logging.LogOperationStart(s.logger, "sync")()

	abs, err := filepath.Abs(opts.Path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve %s", opts.Path)
	}
	t := newTraversal(abs)
	t.keepRefs = opts.KeepRefs

	s.action("Synchronizing dependency references...")
	err = s.syncNode(ctx, t, abs, true, true)
	return t.result, err
}

func (s *Synchronizer) syncNode(ctx context.Context, t *traversal, path string, top, recursive bool) error {
	if !t.enter("sync", path) {
		return nil
	}
	n, err := s.loadNode(ctx, t, path)
	if err != nil {
		return err
	}

	for _, lib := range n.Libs {
		if filesystem.IsDir(s.fs, lib.Path()) {
			if err := s.checkWorkingCopy(ctx, lib); err != nil {
				return err
			}
			if err := s.rewriteReference(ctx, t, n, lib); err != nil {
				return err
			}
			continue
		}
		if t.keepRefs {
			continue
		}
		if err := s.dropReference(ctx, t, n, lib); err != nil {
			return err
		}
	}

	for _, code := range n.Codes {
		if !filesystem.IsDir(s.fs, code.Path()) {
			continue
		}
		if err := s.checkWorkingCopy(ctx, code); err != nil {
			return err
		}
		if err := s.rewriteReference(ctx, t, n, code); err != nil {
			return err
		}
	}

	if err := s.discover(ctx, t, n, n.Path); err != nil {
		return err
	}
	if err := s.env.Refresh(ctx, n); err != nil {
		return err
	}

	if recursive {
		for _, lib := range n.Libs {
			m, err := s.env.CheckRepo(ctx, lib, true)
			if err != nil {
				return err
			}
			if m != nil {
				continue
			}
			if err := s.syncNode(ctx, t, lib.Path(), false, true); err != nil {
				return err
			}
		}
	}

	if top {
		return s.refreshParentReference(ctx, t, n)
	}
	return nil
}

// checkWorkingCopy fails only when the checkout behind ref is not a
// working copy. A remote that differs from ref.URL is left for
// rewriteReference to record.
func (s *Synchronizer) checkWorkingCopy(ctx context.Context, ref *reference.Reference) error {
	m, err := s.env.CheckRepo(ctx, ref, true)
	if err != nil || m == nil {
		return err
	}
	if m.Code != errors.ErrNotARepository {
		s.logger.Debug().Str("path", ref.Path()).Str("reason", m.Reason).Msg("Recording checkout remote")
		return nil
	}
	return errors.New(m.Code, m.Error()).
		WithDetail("path", ref.Path()).
		WithDetail("reference", ref.File())
}

// childReference describes the checkout at childPath below owner
func (s *Synchronizer) childReference(ctx context.Context, owner *repo.Node, childPath string, kind reference.Kind) (*reference.Reference, error) {
	child, err := s.env.FromRepo(ctx, filepath.Join(owner.Path, filepath.FromSlash(childPath)), false)
	if err != nil {
		return nil, err
	}
	url := child.URL
	if child.IsLocal {
		url = ""
	}
	return reference.New(owner.Path, childPath, url, child.Rev, kind), nil
}

func (s *Synchronizer) rewriteReference(ctx context.Context, t *traversal, owner *repo.Node, ref *reference.Reference) error {
	updated, err := s.childReference(ctx, owner, ref.ChildPath, ref.Kind)
	if err != nil {
		return err
	}
	if !updated.Equal(ref) {
		if err := updated.Write(s.fs); err != nil {
			return err
		}
		t.add(EventReferenced, updated.Path(), updated.URL, updated.Rev, "reference refreshed")
	}
	return s.ignoreChild(owner, ref)
}

func (s *Synchronizer) dropReference(ctx context.Context, t *traversal, owner *repo.Node, ref *reference.Reference) error {
	target := ref.FullURL()
	if ref.IsLocal {
		target = reference.LocalURL
	}
	s.action("Removing reference %q -> %q", ref.Name(), target)

	if owner.Adapter != nil {
		if err := owner.Adapter.Untrack(ctx, owner.Path, filepath.FromSlash(ref.RelFile())); err != nil {
			s.logger.Debug().Err(err).Str("file", ref.File()).Msg("Reference was not tracked")
		}
	}
	if err := ref.Remove(s.fs); err != nil {
		return err
	}
	if err := s.unignoreChild(owner, ref); err != nil {
		return err
	}
	t.add(EventDereferenced, ref.Path(), ref.URL, ref.Rev, "")
	return nil
}

// discover writes references for working copies below dir that none
// records yet. It does not descend into working copies.
func (s *Synchronizer) discover(ctx context.Context, t *traversal, owner *repo.Node, dir string) error {
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to list %s", dir)
	}

	for _, e := range entries {
		if !e.IsDir() || filesystem.IsHidden(e.Name()) {
			continue
		}
		full := filepath.Join(dir, e.Name())
		if !s.env.IsRepo(full) {
			if err := s.discover(ctx, t, owner, full); err != nil {
				return err
			}
			continue
		}

		rel := filepath.ToSlash(filesystem.Rel(owner.Path, full))
		if filesystem.Exists(s.fs, full+reference.Lib.Ext()) || filesystem.Exists(s.fs, full+reference.Code.Ext()) {
			continue
		}

		ref, err := s.childReference(ctx, owner, rel, reference.Lib)
		if err != nil {
			return err
		}
		if err := ref.Write(s.fs); err != nil {
			return err
		}
		s.action("Adding reference %q -> %q", ref.ChildPath, ref.Format())
		if err := s.ignoreChild(owner, ref); err != nil {
			return err
		}
		if owner.Adapter != nil {
			if err := owner.Adapter.Track(ctx, owner.Path, filepath.FromSlash(ref.RelFile())); err != nil {
				return err
			}
		}
		t.add(EventReferenced, full, ref.URL, ref.Rev, "new reference")
	}
	return nil
}
