package deps

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alios-things/aos-cube/pkg/config"
	"github.com/alios-things/aos-cube/pkg/errors"
	"github.com/alios-things/aos-cube/pkg/filesystem"
	"github.com/alios-things/aos-cube/pkg/logging"
	"github.com/alios-things/aos-cube/pkg/paths"
	"github.com/alios-things/aos-cube/pkg/reference"
	"github.com/alios-things/aos-cube/pkg/repo"
	"github.com/alios-things/aos-cube/pkg/vcs"
)

// ImportOptions configures Import
type ImportOptions struct {
	// URL is url[#rev], a local path or a bare component name
	URL string
	// Path is the destination, defaults to the repository name
	Path   string
	Ignore bool
	Depth  int
	// Protocol overrides the configured transport protocol
	Protocol string
	// Nested imports skip the program checks and root marking, as done
	// when a component is added to an existing program
	Nested bool
}

// DeployOptions configures Deploy
type DeployOptions struct {
	Path     string
	Ignore   bool
	Depth    int
	Protocol string
}

// CodesOptions configures Codes
type CodesOptions struct {
	Path string
	// Name of the .codes reference without extension
	Name     string
	Ignore   bool
	Depth    int
	Protocol string
}

func (s *Synchronizer) walkProtocol(protocol string) string {
	if protocol != "" {
		return protocol
	}
	return s.protocol
}

// Import clones a repository and deploys its dependencies
func (s *Synchronizer) Import(ctx context.Context, opts ImportOptions) (*Result, error) {
	defer logging.LogOperationStart(s.logger, "import")()

	if opts.URL == "" {
		return nil, errors.New(errors.ErrInvalidInput, "a URL is required")
	}
	url := s.ExpandURL(opts.URL)
	dest := opts.Path
	if dest == "" {
		dest = vcs.RepoName(url)
	}
	abs, err := filepath.Abs(dest)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve %s", dest)
	}

	if !opts.Nested {
		if root, ok := paths.FindProgramRoot(s.fs, filepath.Dir(abs)); ok {
			return nil, errors.Newf(errors.ErrInvalidInput,
				"cannot import into %s because it is already part of the program %s, use \"aos add\" to add a component",
				abs, root).WithDetail("program", root)
		}
	}

	t := newTraversal(abs)
	t.ignore = opts.Ignore
	t.depth = opts.Depth
	t.protocol = s.walkProtocol(opts.Protocol)

	err = s.importRepo(ctx, t, url, abs, !opts.Nested)
	return t.result, err
}

// importRepo clones rawURL into path, checks out its revision and deploys
// its references
func (s *Synchronizer) importRepo(ctx context.Context, t *traversal, rawURL, path string, markRoot bool) error {
	n, err := s.env.FromURL(ctx, rawURL, path)
	if err != nil {
		return err
	}

	if s.isComponentDir(path) {
		s.action("Directory %q is a component", filesystem.Rel(t.root, path))
		t.add(EventSkipped, path, n.URL, n.Rev, "existing component directory")
		return nil
	}

	if n.URL == "" {
		return errors.Newf(errors.ErrLocalRepository, "%s has no URL to import from", path).
			WithDetail("path", path)
	}

	s.action("Importing %s %q from %q at %s", s.importKind(t, path), filepath.Base(path), n.URL, revType(n.Rev))
	cloneURL := vcs.FormatURL(n.URL, t.protocol)
	if err := s.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(path))
	}
	err = n.Adapter.Clone(ctx, cloneURL, path, vcs.CloneOptions{Rev: n.Rev, Depth: t.depth, Protocol: t.protocol})
	if err != nil {
		return s.tolerate(t, errors.Wrapf(err, errors.ErrVcsProcess, "unable to clone repository %s", n.URL).
			WithDetail("path", path))
	}

	if markRoot {
		if err := config.SetProgramValue(s.fs, filepath.Join(path, paths.ProgramConfigFile), config.KeyRoot, "."); err != nil {
			return err
		}
	}

	if n.Rev != "" {
		current, err := n.Adapter.CurrentRevision(ctx, path)
		if err != nil {
			return err
		}
		if current != n.Rev {
			if err := n.Adapter.Checkout(ctx, path, n.Rev, true); err != nil {
				msg := fmt.Sprintf("unable to update %q to %s", filepath.Base(path), revType(n.Rev))
				if t.depth > 0 {
					msg += ", the --depth option might prevent fetching the whole revision tree"
				}
				if t.depth > 0 || t.ignore {
					s.warn(t, msg)
					return nil
				}
				return errors.Wrap(err, errors.ErrVcsProcess, msg).WithDetail("path", path)
			}
		}
	}

	t.add(EventImported, path, n.URL, n.Rev, "")
	return s.deployNode(ctx, t, path)
}

func (s *Synchronizer) importKind(t *traversal, path string) string {
	if filepath.Clean(path) == t.root {
		return "program"
	}
	return "component"
}

// importRef materializes a missing reference and hides it from its owner's
// version control
func (s *Synchronizer) importRef(ctx context.Context, t *traversal, owner *repo.Node, ref *reference.Reference) error {
	t.add(EventMissing, ref.Path(), ref.URL, ref.Rev, "")
	if ref.IsLocal {
		s.warn(t, fmt.Sprintf("local component %q is missing and has no remote to import it from", ref.ChildPath))
		return nil
	}
	if ancestor := s.ancestorCheckout(ctx, t, ref); ancestor != "" {
		s.warn(t, fmt.Sprintf("skipping %q, it points back at %s", ref.ChildPath, ancestor))
		t.add(EventSkipped, ref.Path(), ref.URL, ref.Rev, "cycle")
		return nil
	}
	if err := s.importRepo(ctx, t, ref.FullURL(), ref.Path(), false); err != nil {
		return err
	}
	return s.ignoreChild(owner, ref)
}

// ancestorCheckout returns the directory above ref, up to the walk root,
// that is already a checkout of ref's remote
func (s *Synchronizer) ancestorCheckout(ctx context.Context, t *traversal, ref *reference.Reference) string {
	for dir := filepath.Clean(ref.Owner); ; dir = filepath.Dir(dir) {
		if adapter := s.env.VCS.Detect(dir); adapter != nil {
			if url, err := adapter.RemoteURL(ctx, dir); err == nil && url != "" && vcs.SameRemote(url, ref.URL) {
				return dir
			}
		}
		if dir == t.root || dir == filepath.Dir(dir) || !strings.HasPrefix(dir, t.root) {
			return ""
		}
	}
}

// Deploy imports every declared but missing library below opts.Path and
// brings existing ones to their recorded revision
func (s *Synchronizer) Deploy(ctx context.Context, opts DeployOptions) (*Result, error) {
	defer logging.LogOperationStart(s.logger, "deploy")()

	abs, err := filepath.Abs(opts.Path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve %s", opts.Path)
	}
	t := newTraversal(abs)
	t.ignore = opts.Ignore
	t.depth = opts.Depth
	t.protocol = s.walkProtocol(opts.Protocol)

	err = s.deployNode(ctx, t, abs)
	return t.result, err
}

func (s *Synchronizer) deployNode(ctx context.Context, t *traversal, path string) error {
	if !t.enter("deploy", path) {
		return nil
	}
	n, err := s.loadNode(ctx, t, path)
	if err != nil {
		return err
	}

	for _, lib := range n.Libs {
		if filesystem.IsDir(s.fs, lib.Path()) {
			if err := s.ignoreChild(n, lib); err != nil {
				return err
			}
			ok, err := s.checkRef(ctx, t, lib)
			if err != nil {
				return err
			}
			if ok {
				if err := s.updateNode(ctx, t, lib.Path(), lib.Rev, false); err != nil {
					return err
				}
			}
			continue
		}
		if err := s.importRef(ctx, t, n, lib); err != nil {
			return err
		}
	}
	return nil
}

// Codes materializes the optional code declared by <name>.codes in
// opts.Path, or updates it when already present
func (s *Synchronizer) Codes(ctx context.Context, opts CodesOptions) (*Result, error) {
	defer logging.LogOperationStart(s.logger, "codes")()

	if opts.Name == "" {
		return nil, errors.New(errors.ErrInvalidInput, "a component name is required")
	}
	abs, err := filepath.Abs(opts.Path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve %s", opts.Path)
	}
	t := newTraversal(abs)
	t.ignore = opts.Ignore
	t.depth = opts.Depth
	t.protocol = s.walkProtocol(opts.Protocol)

	n, err := s.loadNode(ctx, t, abs)
	if err != nil {
		return t.result, err
	}

	code := n.FindCode(opts.Name)
	if code == nil {
		file := filepath.Join(abs, opts.Name+paths.CodesExt)
		if !filesystem.Exists(s.fs, file) {
			return t.result, errors.Newf(errors.ErrNotFound, "no %s%s reference in %s", opts.Name, paths.CodesExt, abs).
				WithDetail("path", file)
		}
		code, err = reference.Read(s.fs, abs, file)
		if err != nil {
			return t.result, err
		}
	}

	if filesystem.IsDir(s.fs, code.Path()) {
		ok, err := s.checkRef(ctx, t, code)
		if err != nil || !ok {
			return t.result, err
		}
		return t.result, s.updateNode(ctx, t, code.Path(), code.Rev, false)
	}
	return t.result, s.importRef(ctx, t, n, code)
}
