package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/alios-things/aos-cube/pkg/errors"
	"github.com/alios-things/aos-cube/pkg/filesystem"
	"github.com/alios-things/aos-cube/pkg/reference"
	"github.com/alios-things/aos-cube/pkg/vcs"
)

// Mismatch describes a reference whose checkout does not match it
type Mismatch struct {
	Ref    *reference.Reference
	Code   errors.ErrorCode
	Reason string
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("%s: %s", m.Ref.ChildPath, m.Reason)
}

// CheckRepo verifies the checkout behind ref exists, is a working copy and
// tracks the same remote. With ignore set a failure is returned as a
// Mismatch; otherwise it is returned as an error and Mismatch is nil.
func (e *Env) CheckRepo(ctx context.Context, ref *reference.Reference, ignore bool) (*Mismatch, error) {
	m, err := e.checkRepo(ctx, ref)
	if err != nil || m == nil {
		return nil, err
	}
	if ignore {
		return m, nil
	}
	return nil, errors.New(m.Code, m.Error()).
		WithDetail("path", ref.Path()).
		WithDetail("reference", ref.File())
}

func (e *Env) checkRepo(ctx context.Context, ref *reference.Reference) (*Mismatch, error) {
	path := ref.Path()
	if !filesystem.IsDir(e.FS, path) {
		return &Mismatch{
			Ref:    ref,
			Code:   errors.ErrNotARepository,
			Reason: fmt.Sprintf("reference points to a missing directory %s", path),
		}, nil
	}

	adapter := e.VCS.Detect(path)
	if adapter == nil {
		return &Mismatch{
			Ref:    ref,
			Code:   errors.ErrNotARepository,
			Reason: fmt.Sprintf("%s is not a working copy", path),
		}, nil
	}

	if ref.IsLocal {
		return nil, nil
	}
	remote, err := adapter.RemoteURL(ctx, path)
	if err != nil {
		return nil, err
	}
	if remote != "" && !vcs.SameRemote(remote, ref.URL) {
		return &Mismatch{
			Ref:    ref,
			Code:   errors.ErrReconciliationConflict,
			Reason: fmt.Sprintf("checkout tracks %s but the reference declares %s", remote, ref.URL),
		}, nil
	}
	return nil, nil
}

// CanUpdate reports whether the checkout at n may be removed or replaced.
// A local checkout (no remote) or one with unpublished commits needs
// cleanDeps, one with uncommitted changes needs clean. The returned error
// is a RECONCILIATION_CONFLICT naming every blocking condition.
func (e *Env) CanUpdate(ctx context.Context, n *Node, clean, cleanDeps bool) error {
	var reasons []string

	if n.Adapter == nil || n.IsLocal {
		if !cleanDeps {
			reasons = append(reasons, "it is a local repository with no remote")
		}
	}

	if n.Adapter != nil {
		dirty, err := n.Adapter.IsDirty(ctx, n.Path)
		if err != nil {
			return err
		}
		if dirty && !clean {
			reasons = append(reasons, "it has uncommitted changes")
		}

		if !n.IsLocal && !cleanDeps {
			outgoing, err := n.Adapter.Outgoing(ctx, n.Path)
			if err != nil {
				return err
			}
			if outgoing > 0 {
				reasons = append(reasons, fmt.Sprintf("it has %d unpublished commit(s)", outgoing))
			}
		}
	}

	if len(reasons) == 0 {
		return nil
	}
	return errors.Newf(errors.ErrReconciliationConflict,
		"cannot remove or replace %s because %s", n.Path, strings.Join(reasons, " and ")).
		WithDetail("path", n.Path)
}
