package deps

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/alios-things/aos-cube/pkg/errors"
	"github.com/alios-things/aos-cube/pkg/filesystem"
	"github.com/alios-things/aos-cube/pkg/logging"
	"github.com/alios-things/aos-cube/pkg/reference"
	"github.com/alios-things/aos-cube/pkg/repo"
	"github.com/alios-things/aos-cube/pkg/vcs"
)

// UpdateOptions configures Update
type UpdateOptions struct {
	Path string
	// Rev to update to; empty pulls the current branch
	Rev string
	// Clean discards uncommitted changes
	Clean bool
	// CleanFiles also deletes untracked and ignored files
	CleanFiles bool
	// CleanDeps allows removing local or unpublished libraries
	CleanDeps bool
	Ignore    bool
	Depth     int
	Protocol  string
}

// Update brings the checkout at opts.Path to opts.Rev, then reconciles
// its libraries with the references of the new revision: libraries that
// are no longer referenced or whose URL changed are removed when that is
// safe, missing ones are imported and the rest are updated recursively.
func (s *Synchronizer) Update(ctx context.Context, opts UpdateOptions) (*Result, error) {
	defer logging.LogOperationStart(s.logger, "update")()

	abs, err := filepath.Abs(opts.Path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve %s", opts.Path)
	}
	t := newTraversal(abs)
	t.ignore = opts.Ignore
	t.depth = opts.Depth
	t.protocol = s.walkProtocol(opts.Protocol)
	t.clean = opts.Clean
	t.cleanFiles = opts.CleanFiles
	t.cleanDeps = opts.CleanDeps

	if opts.Clean {
		if err := s.syncNode(ctx, t, abs, true, true); err != nil {
			return t.result, err
		}
	}

	err = s.updateNode(ctx, t, abs, opts.Rev, true)
	return t.result, err
}

func (s *Synchronizer) updateNode(ctx context.Context, t *traversal, path, rev string, top bool) error {
	if !t.enter("update", path) {
		return nil
	}
	n, err := s.loadNode(ctx, t, path)
	if err != nil {
		return err
	}
	before := append([]*reference.Reference(nil), n.Libs...)

	if top && rev == "" && n.Adapter != nil {
		branch, err := n.Adapter.CurrentBranch(ctx, n.Path)
		if err != nil {
			return err
		}
		if branch == "" {
			return errors.Newf(errors.ErrDetachedHead,
				"%s is in detached HEAD state and cannot receive updates; check out a branch or pass a revision",
				s.label(t, n)).WithDetail("path", n.Path)
		}
	}

	if n.Adapter == nil || (n.IsLocal && n.Rev == "") {
		s.action("Skipping unpublished empty %s", s.label(t, n))
		t.add(EventSkipped, n.Path, n.URL, n.Rev, "unpublished")
	} else {
		s.action("Updating %s to %s", s.label(t, n), revType(rev))
		err := n.Adapter.Update(ctx, n.Path, vcs.UpdateOptions{
			Rev:        rev,
			Clean:      t.clean,
			CleanFiles: t.cleanFiles,
			Depth:      t.depth,
		})
		if err != nil {
			msg := fmt.Sprintf("unable to update %q to %s", n.Name, revType(rev))
			if t.depth > 0 {
				msg += ", the --depth option might prevent fetching the whole revision tree"
			}
			if err := s.tolerate(t, errors.Wrap(err, errors.ErrVcsProcess, msg).WithDetail("path", n.Path)); err != nil {
				return err
			}
		} else {
			t.add(EventUpdated, n.Path, n.URL, rev, "")
		}
	}

	if err := s.env.Refresh(ctx, n); err != nil {
		return err
	}
	if top {
		if err := s.refreshParentReference(ctx, t, n); err != nil {
			return err
		}
	}

	// references gone from the new revision
	for _, lib := range before {
		if filesystem.Exists(s.fs, lib.File()) || !filesystem.IsDir(s.fs, lib.Path()) {
			continue
		}
		if err := s.removeChild(ctx, t, n, lib, "obsolete"); err != nil {
			return err
		}
	}

	// references whose URL changed
	for _, lib := range n.Libs {
		if lib.IsLocal || !filesystem.IsDir(s.fs, lib.Path()) || !s.env.IsRepo(lib.Path()) {
			continue
		}
		child, err := s.env.FromRepo(ctx, lib.Path(), false)
		if err != nil {
			return err
		}
		if child.IsLocal || vcs.SameRemote(lib.URL, child.URL) {
			continue
		}
		if err := s.removeChild(ctx, t, n, lib, "changed URL, it will be imported from the new URL"); err != nil {
			return err
		}
	}

	for _, lib := range n.Libs {
		if t.blocked[lib.Path()] {
			continue
		}
		if !filesystem.IsDir(s.fs, lib.Path()) {
			if err := s.importRef(ctx, t, n, lib); err != nil {
				return err
			}
			continue
		}
		if err := s.updateNode(ctx, t, lib.Path(), lib.Rev, false); err != nil {
			return err
		}
	}
	return nil
}

// removeChild deletes the checkout behind lib after verifying it holds no
// uncommitted or unpublished work. A refusal tolerated by --ignore leaves
// the checkout in place and marks it blocked.
func (s *Synchronizer) removeChild(ctx context.Context, t *traversal, owner *repo.Node, lib *reference.Reference, reason string) error {
	child, err := s.env.FromRepo(ctx, lib.Path(), true)
	if err != nil {
		return err
	}

	if err := s.env.CanUpdate(ctx, child, t.clean, t.cleanDeps); err != nil {
		t.add(EventConflict, child.Path, lib.URL, lib.Rev, err.Error())
		t.blocked[child.Path] = true
		return s.tolerate(t, err)
	}

	s.action("Removing component %q (%s)", filesystem.Rel(t.root, child.Path), reason)
	if err := s.env.Remove(child); err != nil {
		return err
	}
	if err := s.unignoreChild(owner, lib); err != nil {
		return err
	}
	t.add(EventRemoved, child.Path, lib.URL, lib.Rev, reason)
	return nil
}
