package deps

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/alios-things/aos-cube/pkg/errors"
	"github.com/alios-things/aos-cube/pkg/filesystem"
	"github.com/alios-things/aos-cube/pkg/logging"
	"github.com/alios-things/aos-cube/pkg/paths"
	"github.com/alios-things/aos-cube/pkg/reference"
	"github.com/alios-things/aos-cube/pkg/repo"
	"github.com/alios-things/aos-cube/pkg/vcs"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// DefaultBaseURL is where bare component names are imported from
const DefaultBaseURL = "https://github.com/alios-things"

// Reporter receives the user facing progress of a walk
type Reporter interface {
	Action(msg string)
	Detail(msg string)
	Warning(msg string)
}

// Prompter asks for input the walk cannot proceed without
type Prompter interface {
	CommitMessage(ctx context.Context, name string) (string, error)
}

// Synchronizer runs the dependency operations
type Synchronizer struct {
	env      *repo.Env
	fs       afero.Fs
	out      Reporter
	prompter Prompter
	baseURL  string
	protocol string
	logger   zerolog.Logger
}

// Option configures a Synchronizer
type Option func(*Synchronizer)

// WithReporter sets where progress goes
func WithReporter(r Reporter) Option {
	return func(s *Synchronizer) { s.out = r }
}

// WithPrompter sets how commit messages are asked for
func WithPrompter(p Prompter) Option {
	return func(s *Synchronizer) { s.prompter = p }
}

// WithBaseURL sets the base URL for bare component names
func WithBaseURL(url string) Option {
	return func(s *Synchronizer) {
		if url != "" {
			s.baseURL = url
		}
	}
}

// WithProtocol sets the default transport protocol for clones
func WithProtocol(protocol string) Option {
	return func(s *Synchronizer) { s.protocol = protocol }
}

// New creates a synchronizer
func New(env *repo.Env, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		env:     env,
		fs:      env.FS,
		out:     nopReporter{},
		baseURL: DefaultBaseURL,
		logger:  logging.GetLogger("deps"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BaseURL is the base used for bare component names
func (s *Synchronizer) BaseURL() string { return s.baseURL }

type nopReporter struct{}

func (nopReporter) Action(string)  {}
func (nopReporter) Detail(string)  {}
func (nopReporter) Warning(string) {}

// ExpandURL turns a bare component name into a clone URL below the base
// URL. URLs and existing local paths are returned unchanged.
func (s *Synchronizer) ExpandURL(raw string) string {
	url, rev := vcs.SplitRevision(raw)
	if vcs.IsURL(url) || filesystem.Exists(s.fs, url) {
		return raw
	}
	expanded := s.baseURL + "/" + url + ".git"
	if rev != "" {
		expanded += "#" + rev
	}
	return expanded
}

func (s *Synchronizer) action(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	s.logger.Info().Msg(msg)
	s.out.Action(msg)
}

func (s *Synchronizer) warn(t *traversal, msg string) {
	s.logger.Warn().Msg(msg)
	t.result.Warnings = append(t.result.Warnings, msg)
	s.out.Warning(msg)
}

// tolerate turns recoverable errors into warnings when the walk ignores
// them
func (s *Synchronizer) tolerate(t *traversal, err error) error {
	if err == nil {
		return nil
	}
	if t.ignore && errors.IsRecoverable(err) {
		s.warn(t, err.Error())
		return nil
	}
	return err
}

func (s *Synchronizer) loadNode(ctx context.Context, t *traversal, path string) (*repo.Node, error) {
	return s.env.FromRepo(ctx, path, path == t.root)
}

// label names a node for messages: its name at the walk root, its path
// relative to the root below it
func (s *Synchronizer) label(t *traversal, n *repo.Node) string {
	rel := filesystem.Rel(t.root, n.Path)
	if rel == "." || rel == "" {
		return fmt.Sprintf("%s %q", s.pathType(n.Path), n.Name)
	}
	return fmt.Sprintf("%s %q", s.pathType(n.Path), rel)
}

// pathType tells programs from components
func (s *Synchronizer) pathType(path string) string {
	if filesystem.Exists(s.fs, filepath.Join(path, paths.ProgramConfigFile)) {
		return "program"
	}
	if s.env.IsRepo(path) {
		return "component"
	}
	return "directory"
}

var hashRev = regexp.MustCompile(`^[0-9a-fA-F]{7,40}$`)

func revType(rev string) string {
	switch {
	case rev == "":
		return "latest revision in the current branch"
	case hashRev.MatchString(rev):
		if len(rev) > 12 {
			rev = rev[:12]
		}
		return "rev #" + rev
	default:
		return fmt.Sprintf("%q", rev)
	}
}

// isComponentDir reports whether path already holds a component that was
// not cloned, a directory with <name>.mk and other content
func (s *Synchronizer) isComponentDir(path string) bool {
	entries, err := afero.ReadDir(s.fs, path)
	if err != nil || len(entries) <= 1 {
		return false
	}
	own := filepath.Base(path) + paths.MakefileExt
	for _, e := range entries {
		if !e.IsDir() && e.Name() == own {
			return true
		}
	}
	return false
}

// checkRef verifies the checkout behind ref. A mismatch tolerated by
// --ignore is reported and yields false.
func (s *Synchronizer) checkRef(ctx context.Context, t *traversal, ref *reference.Reference) (bool, error) {
	m, err := s.env.CheckRepo(ctx, ref, t.ignore)
	if err != nil {
		return false, err
	}
	if m != nil {
		t.add(EventConflict, ref.Path(), ref.URL, ref.Rev, m.Reason)
		s.warn(t, m.Error())
		return false, nil
	}
	return true, nil
}

func (s *Synchronizer) ignoreChild(owner *repo.Node, ref *reference.Reference) error {
	if owner.Adapter == nil {
		return nil
	}
	return owner.Adapter.Ignore(owner.Path, filepath.FromSlash(ref.ChildPath))
}

func (s *Synchronizer) unignoreChild(owner *repo.Node, ref *reference.Reference) error {
	if owner.Adapter == nil {
		return nil
	}
	return owner.Adapter.Unignore(owner.Path, filepath.FromSlash(ref.ChildPath))
}

// refreshParentReference rewrites the reference the parent directory
// holds for n, when there is one
func (s *Synchronizer) refreshParentReference(ctx context.Context, t *traversal, n *repo.Node) error {
	if n.Adapter == nil {
		return nil
	}
	for _, kind := range []reference.Kind{reference.Lib, reference.Code} {
		ref := n.Reference()
		ref.Kind = kind
		if !filesystem.Exists(s.fs, ref.File()) {
			continue
		}
		current, err := reference.Read(s.fs, ref.Owner, ref.File())
		if err == nil && current.Equal(ref) {
			return nil
		}
		if err := ref.Write(s.fs); err != nil {
			return err
		}
		t.add(EventReferenced, n.Path, ref.URL, ref.Rev, "parent reference refreshed")
		return nil
	}
	return nil
}
