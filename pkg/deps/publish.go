package deps

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/alios-things/aos-cube/pkg/errors"
	"github.com/alios-things/aos-cube/pkg/logging"
)

// PublishOptions configures Publish
type PublishOptions struct {
	Path string
	// All pushes every branch instead of the current one
	All bool
	// Message for commits of uncommitted changes; asked for when empty
	Message string
}

// StatusOptions configures Status
type StatusOptions struct {
	Path   string
	Ignore bool
}

// Publish commits and pushes the tree below opts.Path, children first.
// Every checkout must have a remote.
func (s *Synchronizer) Publish(ctx context.Context, opts PublishOptions) (*Result, error) {
	defer logging.LogOperationStart(s.logger, "publish")()

	abs, err := filepath.Abs(opts.Path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve %s", opts.Path)
	}
	t := newTraversal(abs)

	s.action("Checking for local modifications...")
	err = s.publishNode(ctx, t, abs, true, opts)
	return t.result, err
}

func (s *Synchronizer) publishNode(ctx context.Context, t *traversal, path string, top bool, opts PublishOptions) error {
	if !t.enter("publish", path) {
		return nil
	}
	n, err := s.loadNode(ctx, t, path)
	if err != nil {
		return err
	}

	if n.Adapter == nil || n.IsLocal {
		kind := "component"
		if top {
			kind = "program"
		}
		return errors.Newf(errors.ErrLocalRepository,
			"%s %q in %q is a local repository, associate it with a remote repository URL before publishing",
			kind, n.Name, n.Path).WithDetail("path", n.Path)
	}

	for _, lib := range n.Libs {
		if _, err := s.env.CheckRepo(ctx, lib, false); err != nil {
			return err
		}
		if err := s.publishNode(ctx, t, lib.Path(), false, opts); err != nil {
			return err
		}
	}

	if err := s.syncNode(ctx, t, n.Path, false, false); err != nil {
		return err
	}

	dirty, err := n.Adapter.IsDirty(ctx, n.Path)
	if err != nil {
		return err
	}
	if dirty {
		s.action("Uncommitted changes in %s in %q", s.label(t, n), n.Path)
		msg := opts.Message
		if msg == "" {
			if s.prompter == nil {
				return errors.New(errors.ErrInvalidInput, "a commit message is required, pass --message")
			}
			msg, err = s.prompter.CommitMessage(ctx, n.Name)
			if err != nil {
				return err
			}
		}
		if err := n.Adapter.Commit(ctx, n.Path, msg); err != nil {
			return err
		}
		t.add(EventCommitted, n.Path, n.URL, "", msg)
	}

	outgoing, err := n.Adapter.Outgoing(ctx, n.Path)
	if err != nil {
		return err
	}
	if outgoing > 0 {
		s.action("Pushing local repository %q to remote %q", n.Name, n.URL)
		if err := n.Adapter.Push(ctx, n.Path, opts.All); err != nil {
			return err
		}
		t.add(EventPushed, n.Path, n.URL, "", "")
	} else if top {
		s.action("Nothing to publish to the remote repository (the source tree is unmodified)")
	}
	return nil
}

// Status reports uncommitted changes of every checkout below opts.Path
func (s *Synchronizer) Status(ctx context.Context, opts StatusOptions) (*Result, error) {
	defer logging.LogOperationStart(s.logger, "status")()

	abs, err := filepath.Abs(opts.Path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve %s", opts.Path)
	}
	t := newTraversal(abs)
	t.ignore = opts.Ignore

	err = s.statusNode(ctx, t, abs)
	return t.result, err
}

func (s *Synchronizer) statusNode(ctx context.Context, t *traversal, path string) error {
	if !t.enter("status", path) {
		return nil
	}
	n, err := s.loadNode(ctx, t, path)
	if err != nil {
		return err
	}

	if n.Adapter != nil {
		dirty, err := n.Adapter.IsDirty(ctx, n.Path)
		if err != nil {
			return err
		}
		if dirty {
			changes, err := n.Adapter.Status(ctx, n.Path)
			if err != nil {
				return err
			}
			changes = strings.TrimRight(changes, "\n")
			s.action("Status for %q:", n.Name)
			s.out.Detail(changes)
			t.result.Modified = append(t.result.Modified, NodeStatus{Name: n.Name, Path: n.Path, Changes: changes})
			t.add(EventModified, n.Path, n.URL, n.Rev, "")
		}
	}

	for _, lib := range n.Libs {
		ok, err := s.checkRef(ctx, t, lib)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := s.statusNode(ctx, t, lib.Path()); err != nil {
			return err
		}
	}
	return nil
}
