package vcs

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/alios-things/aos-cube/pkg/errors"
	"github.com/alios-things/aos-cube/pkg/logging"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

const (
	gitDir        = ".git"
	gitRemoteName = "origin"
	gitExclude    = "info/exclude"
	// objectCacheSize bounds the per-repository object LRU
	objectCacheSize = 96 * cache.MiByte
)

// Git implements Adapter with go-git. Repositories are opened through a
// billy osfs worktree and a filesystem storage with an LRU object cache.
type Git struct {
	fs       afero.Fs
	progress io.Writer
	logger   zerolog.Logger
}

// NewGit creates the git adapter. fs is used for the ignore list only.
func NewGit(fs afero.Fs) *Git {
	return &Git{
		fs:     fs,
		logger: logging.GetLogger("vcs.git"),
	}
}

// WithProgress streams clone and fetch progress to w
func (g *Git) WithProgress(w io.Writer) *Git {
	g.progress = w
	return g
}

func (g *Git) Kind() Kind { return KindGit }

func (g *Git) IsRepository(path string) bool {
	return markerExists(g.fs, path, gitDir)
}

func (g *Git) open(path string) (*git.Repository, error) {
	worktree := osfs.New(path)
	info, err := os.Stat(filepath.Join(path, gitDir))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrNotARepository, "%s is not a git working copy", path)
	}

	var repo *git.Repository
	if info.IsDir() {
		dot, chrootErr := worktree.Chroot(gitDir)
		if chrootErr != nil {
			return nil, gitError(chrootErr, "open", path)
		}
		storage := filesystem.NewStorage(dot, cache.NewObjectLRU(objectCacheSize))
		repo, err = git.Open(storage, worktree)
	} else {
		// .git file of a linked worktree or submodule
		repo, err = git.PlainOpenWithOptions(path, &git.PlainOpenOptions{EnableDotGitCommonDir: true})
	}
	if err != nil {
		return nil, gitError(err, "open", path)
	}
	return repo, nil
}

func (g *Git) Init(ctx context.Context, path string) error {
	if _, err := git.PlainInit(path, false); err != nil {
		return gitError(err, "init", path)
	}
	return nil
}

func (g *Git) Clone(ctx context.Context, url, path string, opts CloneOptions) error {
	url = FormatURL(url, opts.Protocol)
	g.logger.Debug().Str("url", url).Str("path", path).Int("depth", opts.Depth).Msg("Cloning")

	_, err := git.PlainCloneContext(ctx, path, false, &git.CloneOptions{
		URL:        url,
		RemoteName: gitRemoteName,
		Depth:      opts.Depth,
		Progress:   g.progress,
	})
	if err != nil {
		return gitError(err, "clone "+url, path)
	}
	return nil
}

func (g *Git) Checkout(ctx context.Context, path, rev string, clean bool) error {
	repo, err := g.open(path)
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return gitError(err, "checkout", path)
	}

	local := plumbing.NewBranchReferenceName(rev)
	if _, refErr := repo.Reference(local, true); refErr == nil {
		if err := wt.Checkout(&git.CheckoutOptions{Branch: local, Force: clean}); err != nil {
			return gitError(err, "checkout "+rev, path)
		}
		return nil
	}

	remote := plumbing.NewRemoteReferenceName(gitRemoteName, rev)
	if ref, refErr := repo.Reference(remote, true); refErr == nil {
		if err := repo.Storer.SetReference(plumbing.NewHashReference(local, ref.Hash())); err != nil {
			return gitError(err, "checkout "+rev, path)
		}
		if err := repo.CreateBranch(&config.Branch{Name: rev, Remote: gitRemoteName, Merge: local}); err != nil && !stderrors.Is(err, git.ErrBranchExists) {
			return gitError(err, "checkout "+rev, path)
		}
		if err := wt.Checkout(&git.CheckoutOptions{Branch: local, Force: clean}); err != nil {
			return gitError(err, "checkout "+rev, path)
		}
		return nil
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return gitError(err, "checkout "+rev, path)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: *hash, Force: clean}); err != nil {
		return gitError(err, "checkout "+rev, path)
	}
	return nil
}

func (g *Git) Update(ctx context.Context, path string, opts UpdateOptions) error {
	repo, err := g.open(path)
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return gitError(err, "update", path)
	}

	hasRemote := true
	if _, err := repo.Remote(gitRemoteName); err != nil {
		hasRemote = false
	}

	if hasRemote {
		err := repo.FetchContext(ctx, &git.FetchOptions{
			RemoteName: gitRemoteName,
			Depth:      opts.Depth,
			Tags:       git.AllTags,
			Progress:   g.progress,
		})
		if err != nil && !stderrors.Is(err, git.NoErrAlreadyUpToDate) {
			return gitError(err, "fetch", path)
		}
	}

	if opts.CleanFiles {
		if err := wt.Clean(&git.CleanOptions{Dir: true}); err != nil {
			return gitError(err, "clean", path)
		}
	}
	if opts.Clean || opts.CleanFiles {
		if err := wt.Reset(&git.ResetOptions{Mode: git.HardReset}); err != nil {
			return gitError(err, "reset --hard", path)
		}
	}

	if opts.Rev != "" {
		return g.Checkout(ctx, path, opts.Rev, opts.Clean)
	}

	branch, err := g.CurrentBranch(ctx, path)
	if err != nil {
		return err
	}
	if branch == "" || !hasRemote {
		g.logger.Debug().Str("path", path).Msg("Nothing to pull")
		return nil
	}

	err = wt.PullContext(ctx, &git.PullOptions{
		RemoteName:    gitRemoteName,
		ReferenceName: plumbing.NewBranchReferenceName(branch),
		Depth:         opts.Depth,
		Force:         opts.Clean,
		Progress:      g.progress,
	})
	if err != nil && !stderrors.Is(err, git.NoErrAlreadyUpToDate) {
		return gitError(err, "pull "+branch, path)
	}
	return nil
}

func (g *Git) CurrentRevision(ctx context.Context, path string) (string, error) {
	repo, err := g.open(path)
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		if stderrors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", nil
		}
		return "", gitError(err, "rev-parse HEAD", path)
	}
	return head.Hash().String(), nil
}

func (g *Git) CurrentBranch(ctx context.Context, path string) (string, error) {
	repo, err := g.open(path)
	if err != nil {
		return "", err
	}
	head, err := repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", gitError(err, "symbolic-ref HEAD", path)
	}
	if head.Type() == plumbing.SymbolicReference && head.Target().IsBranch() {
		return head.Target().Short(), nil
	}
	return "", nil
}

func (g *Git) RemoteURL(ctx context.Context, path string) (string, error) {
	repo, err := g.open(path)
	if err != nil {
		return "", err
	}
	remote, err := repo.Remote(gitRemoteName)
	if err != nil {
		if stderrors.Is(err, git.ErrRemoteNotFound) {
			return "", nil
		}
		return "", gitError(err, "remote get-url", path)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", nil
	}
	return urls[0], nil
}

// IsDirty reports modified or staged tracked files. Untracked files do not
// make a working copy dirty.
func (g *Git) IsDirty(ctx context.Context, path string) (bool, error) {
	status, err := g.status(path)
	if err != nil {
		return false, err
	}
	for _, s := range status {
		if isChange(s.Staging) || isChange(s.Worktree) {
			return true, nil
		}
	}
	return false, nil
}

func isChange(code git.StatusCode) bool {
	return code != git.Unmodified && code != git.Untracked
}

func (g *Git) status(path string) (git.Status, error) {
	repo, err := g.open(path)
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, gitError(err, "status", path)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, gitError(err, "status", path)
	}
	return status, nil
}

func (g *Git) Status(ctx context.Context, path string) (string, error) {
	status, err := g.status(path)
	if err != nil {
		return "", err
	}
	return status.String(), nil
}

func (g *Git) Commit(ctx context.Context, path, message string) error {
	repo, err := g.open(path)
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return gitError(err, "commit", path)
	}

	_, err = wt.Commit(message, &git.CommitOptions{
		All:    true,
		Author: g.signature(repo),
	})
	if err != nil {
		return gitError(err, "commit", path)
	}
	return nil
}

// signature uses the configured user or a placeholder identity
func (g *Git) signature(repo *git.Repository) *object.Signature {
	sig := &object.Signature{Name: "aos", Email: "aos@localhost", When: time.Now()}
	cfg, err := repo.ConfigScoped(config.GlobalScope)
	if err != nil {
		return sig
	}
	if cfg.User.Name != "" {
		sig.Name = cfg.User.Name
	}
	if cfg.User.Email != "" {
		sig.Email = cfg.User.Email
	}
	return sig
}

func (g *Git) Push(ctx context.Context, path string, all bool) error {
	repo, err := g.open(path)
	if err != nil {
		return err
	}

	opts := &git.PushOptions{RemoteName: gitRemoteName, Progress: g.progress}
	if all {
		opts.RefSpecs = []config.RefSpec{
			"refs/heads/*:refs/heads/*",
			"refs/tags/*:refs/tags/*",
		}
	} else {
		branch, err := g.CurrentBranch(ctx, path)
		if err != nil {
			return err
		}
		if branch == "" {
			return errors.Newf(errors.ErrDetachedHead, "%s has no branch checked out to push", path)
		}
		ref := plumbing.NewBranchReferenceName(branch)
		opts.RefSpecs = []config.RefSpec{config.RefSpec(fmt.Sprintf("%s:%s", ref, ref))}
	}

	if err := repo.PushContext(ctx, opts); err != nil && !stderrors.Is(err, git.NoErrAlreadyUpToDate) {
		return gitError(err, "push", path)
	}
	return nil
}

// Outgoing counts commits on the current branch that its remote tracking
// branch does not have. A branch that was never pushed counts all of its
// commits.
func (g *Git) Outgoing(ctx context.Context, path string) (int, error) {
	repo, err := g.open(path)
	if err != nil {
		return 0, err
	}
	branch, err := g.CurrentBranch(ctx, path)
	if err != nil || branch == "" {
		return 0, err
	}
	head, err := repo.Head()
	if err != nil {
		if stderrors.Is(err, plumbing.ErrReferenceNotFound) {
			return 0, nil
		}
		return 0, gitError(err, "log", path)
	}

	var upstream plumbing.Hash
	if ref, err := repo.Reference(plumbing.NewRemoteReferenceName(gitRemoteName, branch), true); err == nil {
		upstream = ref.Hash()
	}
	if upstream == head.Hash() {
		return 0, nil
	}

	published := map[plumbing.Hash]bool{}
	if !upstream.IsZero() {
		if err := walkLog(repo, upstream, func(c *object.Commit) { published[c.Hash] = true }); err != nil {
			return 0, gitError(err, "log", path)
		}
	}

	count := 0
	err = walkLog(repo, head.Hash(), func(c *object.Commit) {
		if !published[c.Hash] {
			count++
		}
	})
	if err != nil {
		return 0, gitError(err, "log", path)
	}
	return count, nil
}

// walkLog visits every commit reachable from hash
func walkLog(repo *git.Repository, hash plumbing.Hash, visit func(*object.Commit)) error {
	iter, err := repo.Log(&git.LogOptions{From: hash})
	if err != nil {
		return err
	}
	defer iter.Close()
	return iter.ForEach(func(c *object.Commit) error {
		visit(c)
		return nil
	})
}

func (g *Git) Track(ctx context.Context, path, file string) error {
	repo, err := g.open(path)
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return gitError(err, "add", path)
	}
	if _, err := wt.Add(filepath.ToSlash(file)); err != nil {
		return gitError(err, "add "+file, path)
	}
	return nil
}

// Untrack drops file from the index and leaves the working tree alone
func (g *Git) Untrack(ctx context.Context, path, file string) error {
	repo, err := g.open(path)
	if err != nil {
		return err
	}
	idx, err := repo.Storer.Index()
	if err != nil {
		return gitError(err, "rm --cached "+file, path)
	}
	if _, err := idx.Remove(filepath.ToSlash(file)); err != nil {
		// not tracked
		return nil
	}
	if err := repo.Storer.SetIndex(idx); err != nil {
		return gitError(err, "rm --cached "+file, path)
	}
	return nil
}

func (g *Git) Ignore(path, rel string) error {
	return addIgnoreLine(g.fs, filepath.Join(path, gitDir, gitExclude), "/"+filepath.ToSlash(rel), "")
}

func (g *Git) Unignore(path, rel string) error {
	return removeIgnoreLine(g.fs, filepath.Join(path, gitDir, gitExclude), "/"+filepath.ToSlash(rel))
}

func gitError(err error, op, dir string) error {
	return errors.Wrapf(err, errors.ErrVcsProcess, "git %s failed in %s", op, dir).
		WithDetail("command", "git "+op).
		WithDetail("dir", dir)
}
