package vcs

import (
	"bufio"
	"context"
	"path/filepath"
	"strings"

	"github.com/alios-things/aos-cube/pkg/errors"
	"github.com/alios-things/aos-cube/pkg/logging"
	"github.com/alios-things/aos-cube/pkg/process"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

const (
	hgDir      = ".hg"
	hgIgnore   = "hgignore"
	hgRC       = "hgrc"
	hgBinary   = "hg"
	hgSyntax   = "syntax: glob"
	hgUIIgnore = "ignore = .hg/hgignore"
)

// Mercurial implements Adapter by running the hg command line
type Mercurial struct {
	fs     afero.Fs
	runner process.Runner
	logger zerolog.Logger
}

// NewMercurial creates the hg adapter. A nil runner runs real commands.
func NewMercurial(fs afero.Fs, runner process.Runner) *Mercurial {
	if runner == nil {
		runner = process.New()
	}
	return &Mercurial{
		fs:     fs,
		runner: runner,
		logger: logging.GetLogger("vcs.hg"),
	}
}

func (h *Mercurial) Kind() Kind { return KindMercurial }

func (h *Mercurial) IsRepository(path string) bool {
	return markerExists(h.fs, path, hgDir)
}

func (h *Mercurial) run(ctx context.Context, dir string, args ...string) (*process.Result, error) {
	return h.runner.Run(ctx, process.Command{Name: hgBinary, Args: args, Dir: dir})
}

func (h *Mercurial) stream(ctx context.Context, dir string, args ...string) error {
	_, err := h.runner.Run(ctx, process.Command{Name: hgBinary, Args: args, Dir: dir, Stream: true})
	return err
}

func (h *Mercurial) Init(ctx context.Context, path string) error {
	_, err := h.run(ctx, "", "init", path)
	return err
}

func (h *Mercurial) Clone(ctx context.Context, url, path string, opts CloneOptions) error {
	url = FormatURL(strings.TrimPrefix(url, hgPrefix), opts.Protocol)
	if opts.Depth > 0 {
		h.logger.Debug().Int("depth", opts.Depth).Msg("Mercurial has no shallow clones, fetching full history")
	}
	parent := filepath.Dir(path)
	if err := h.fs.MkdirAll(parent, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", parent)
	}
	return h.stream(ctx, parent, "clone", url, path)
}

func (h *Mercurial) Checkout(ctx context.Context, path, rev string, clean bool) error {
	args := []string{"update"}
	if clean {
		args = append(args, "-C")
	}
	args = append(args, rev)
	return h.stream(ctx, path, args...)
}

func (h *Mercurial) Update(ctx context.Context, path string, opts UpdateOptions) error {
	if opts.CleanFiles {
		if err := h.stream(ctx, path, "purge", "--all", "--config", "extensions.purge="); err != nil {
			return err
		}
	}

	remote, err := h.RemoteURL(ctx, path)
	if err != nil {
		return err
	}
	if remote != "" {
		if err := h.stream(ctx, path, "pull"); err != nil {
			return err
		}
	}

	args := []string{"update"}
	if opts.Clean || opts.CleanFiles {
		args = append(args, "-C")
	}
	if opts.Rev != "" {
		args = append(args, opts.Rev)
	}
	return h.stream(ctx, path, args...)
}

func (h *Mercurial) CurrentRevision(ctx context.Context, path string) (string, error) {
	res, err := h.run(ctx, path, "id", "-i", "--debug")
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(strings.TrimSpace(res.Stdout), "+"), nil
}

func (h *Mercurial) CurrentBranch(ctx context.Context, path string) (string, error) {
	res, err := h.run(ctx, path, "branch")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

// RemoteURL reads the default path. hg exits 1 when none is configured.
func (h *Mercurial) RemoteURL(ctx context.Context, path string) (string, error) {
	res, err := h.run(ctx, path, "paths", "default")
	if err != nil {
		if res != nil && res.ExitCode == 1 {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

func (h *Mercurial) IsDirty(ctx context.Context, path string) (bool, error) {
	res, err := h.run(ctx, path, "status", "-q")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(res.Stdout) != "", nil
}

func (h *Mercurial) Status(ctx context.Context, path string) (string, error) {
	res, err := h.run(ctx, path, "status")
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}

func (h *Mercurial) Commit(ctx context.Context, path, message string) error {
	_, err := h.run(ctx, path, "commit", "-m", message)
	return err
}

// Push exits 1 when there is nothing to push
func (h *Mercurial) Push(ctx context.Context, path string, all bool) error {
	args := []string{"push"}
	if all {
		args = append(args, "--new-branch")
	}
	res, err := h.runner.Run(ctx, process.Command{Name: hgBinary, Args: args, Dir: path, Stream: true})
	if err != nil && res != nil && res.ExitCode == 1 {
		return nil
	}
	return err
}

// Outgoing exits 1 when no changesets are outgoing
func (h *Mercurial) Outgoing(ctx context.Context, path string) (int, error) {
	res, err := h.run(ctx, path, "outgoing", "-q")
	if err != nil {
		if res != nil && res.ExitCode == 1 {
			return 0, nil
		}
		return 0, err
	}

	count := 0
	scanner := bufio.NewScanner(strings.NewReader(res.Stdout))
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			count++
		}
	}
	return count, nil
}

func (h *Mercurial) Track(ctx context.Context, path, file string) error {
	_, err := h.run(ctx, path, "add", file)
	return err
}

func (h *Mercurial) Untrack(ctx context.Context, path, file string) error {
	_, err := h.run(ctx, path, "forget", file)
	return err
}

// Ignore adds rel to .hg/hgignore and points ui.ignore at it
func (h *Mercurial) Ignore(path, rel string) error {
	if err := h.ensureIgnoreConfigured(path); err != nil {
		return err
	}
	return addIgnoreLine(h.fs, filepath.Join(path, hgDir, hgIgnore), filepath.ToSlash(rel), hgSyntax)
}

func (h *Mercurial) Unignore(path, rel string) error {
	return removeIgnoreLine(h.fs, filepath.Join(path, hgDir, hgIgnore), filepath.ToSlash(rel))
}

func (h *Mercurial) ensureIgnoreConfigured(path string) error {
	rc := filepath.Join(path, hgDir, hgRC)
	lines, err := readIgnoreLines(h.fs, rc)
	if err != nil {
		return err
	}
	for _, l := range lines {
		if strings.TrimSpace(l) == hgUIIgnore {
			return nil
		}
	}
	return writeIgnoreLines(h.fs, rc, append(lines, "[ui]", hgUIIgnore))
}
