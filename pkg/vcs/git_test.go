// pkg/vcs/git_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: go-git, real temp directories
// PURPOSE: Test the git adapter against repositories created with go-git

package vcs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alios-things/aos-cube/pkg/errors"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initRepo creates a repository with one commit on master
func initRepo(t *testing.T) (string, *git.Repository) {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	commitFile(t, repo, dir, "README.md", "hello\n", "initial")
	return dir, repo
}

func commitFile(t *testing.T, repo *git.Repository, dir, name, content, msg string) plumbing.Hash {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(name)
	require.NoError(t, err)

	hash, err := wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.org", When: time.Now()},
	})
	require.NoError(t, err)
	return hash
}

func TestGitIsRepository(t *testing.T) {
	dir, _ := initRepo(t)
	g := NewGit(afero.NewOsFs())

	assert.True(t, g.IsRepository(dir))
	assert.False(t, g.IsRepository(t.TempDir()))
	assert.Equal(t, KindGit, g.Kind())
}

func TestGitInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fresh")
	g := NewGit(afero.NewOsFs())

	require.NoError(t, g.Init(context.Background(), dir))
	assert.True(t, g.IsRepository(dir))

	branch, err := g.CurrentBranch(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "master", branch, "unborn branch is still reported")

	rev, err := g.CurrentRevision(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, rev)
}

func TestGitRevisionAndBranch(t *testing.T) {
	dir, repo := initRepo(t)
	g := NewGit(afero.NewOsFs())
	ctx := context.Background()

	head, err := repo.Head()
	require.NoError(t, err)

	rev, err := g.CurrentRevision(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, head.Hash().String(), rev)

	branch, err := g.CurrentBranch(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, "master", branch)
}

func TestGitCheckoutDetachesOnHash(t *testing.T) {
	dir, repo := initRepo(t)
	g := NewGit(afero.NewOsFs())
	ctx := context.Background()

	first, err := repo.Head()
	require.NoError(t, err)
	commitFile(t, repo, dir, "second.txt", "2\n", "second")

	require.NoError(t, g.Checkout(ctx, dir, first.Hash().String(), false))

	branch, err := g.CurrentBranch(ctx, dir)
	require.NoError(t, err)
	assert.Empty(t, branch, "checking out a hash detaches HEAD")

	rev, err := g.CurrentRevision(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, first.Hash().String(), rev)

	require.NoError(t, g.Checkout(ctx, dir, "master", false))
	branch, err = g.CurrentBranch(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, "master", branch)
}

func TestGitCheckoutTag(t *testing.T) {
	dir, repo := initRepo(t)
	g := NewGit(afero.NewOsFs())
	ctx := context.Background()

	head, err := repo.Head()
	require.NoError(t, err)
	_, err = repo.CreateTag("v1.0", head.Hash(), nil)
	require.NoError(t, err)
	commitFile(t, repo, dir, "later.txt", "x\n", "later")

	require.NoError(t, g.Checkout(ctx, dir, "v1.0", false))
	rev, err := g.CurrentRevision(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, head.Hash().String(), rev)
}

func TestGitCheckoutUnknownRevision(t *testing.T) {
	dir, _ := initRepo(t)
	g := NewGit(afero.NewOsFs())

	err := g.Checkout(context.Background(), dir, "no-such-rev", false)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrVcsProcess))
}

func TestGitRemoteURL(t *testing.T) {
	dir, repo := initRepo(t)
	g := NewGit(afero.NewOsFs())
	ctx := context.Background()

	url, err := g.RemoteURL(ctx, dir)
	require.NoError(t, err)
	assert.Empty(t, url, "no remote means local")

	_, err = repo.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{"https://example.org/foo.git"}})
	require.NoError(t, err)

	url, err = g.RemoteURL(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/foo.git", url)
}

func TestGitIsDirty(t *testing.T) {
	dir, _ := initRepo(t)
	g := NewGit(afero.NewOsFs())
	ctx := context.Background()

	dirty, err := g.IsDirty(ctx, dir)
	require.NoError(t, err)
	assert.False(t, dirty)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "untracked.txt"), []byte("u"), 0644))
	dirty, err = g.IsDirty(ctx, dir)
	require.NoError(t, err)
	assert.False(t, dirty, "untracked files do not count")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("changed\n"), 0644))
	dirty, err = g.IsDirty(ctx, dir)
	require.NoError(t, err)
	assert.True(t, dirty)
}

func TestGitCommitAndOutgoing(t *testing.T) {
	dir, _ := initRepo(t)
	g := NewGit(afero.NewOsFs())
	ctx := context.Background()

	n, err := g.Outgoing(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "never pushed branch counts all commits")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("changed\n"), 0644))
	require.NoError(t, g.Commit(ctx, dir, "update readme"))

	dirty, err := g.IsDirty(ctx, dir)
	require.NoError(t, err)
	assert.False(t, dirty)

	n, err = g.Outgoing(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestGitOutgoingAgainstTrackingBranch(t *testing.T) {
	dir, repo := initRepo(t)
	g := NewGit(afero.NewOsFs())
	ctx := context.Background()

	head, err := repo.Head()
	require.NoError(t, err)
	require.NoError(t, repo.Storer.SetReference(
		plumbing.NewHashReference(plumbing.NewRemoteReferenceName("origin", "master"), head.Hash())))

	n, err := g.Outgoing(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	c1 := commitFile(t, repo, dir, "new.txt", "n\n", "new")
	n, err = g.Outgoing(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// behind the tracking branch
	c2 := commitFile(t, repo, dir, "next.txt", "x\n", "next")
	require.NoError(t, repo.Storer.SetReference(
		plumbing.NewHashReference(plumbing.NewRemoteReferenceName("origin", "master"), c2)))
	require.NoError(t, repo.Storer.SetReference(
		plumbing.NewHashReference(plumbing.NewBranchReferenceName("master"), c1)))
	n, err = g.Outgoing(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// diverged: only the local commit counts
	commitFile(t, repo, dir, "local.txt", "l\n", "local")
	n, err = g.Outgoing(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGitTrackUntrack(t *testing.T) {
	dir, repo := initRepo(t)
	g := NewGit(afero.NewOsFs())
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "foo.lib"), []byte("https://h/foo#1\n"), 0644))
	require.NoError(t, g.Track(ctx, dir, "foo.lib"))

	idx, err := repo.Storer.Index()
	require.NoError(t, err)
	_, err = idx.Entry("foo.lib")
	assert.NoError(t, err)

	require.NoError(t, g.Untrack(ctx, dir, "foo.lib"))
	idx, err = repo.Storer.Index()
	require.NoError(t, err)
	_, err = idx.Entry("foo.lib")
	assert.Error(t, err)

	_, err = os.Stat(filepath.Join(dir, "foo.lib"))
	assert.NoError(t, err, "untrack keeps the file")

	assert.NoError(t, g.Untrack(ctx, dir, "never-tracked.lib"))
}

func TestGitIgnore(t *testing.T) {
	fs := afero.NewMemMapFs()
	g := NewGit(fs)

	require.NoError(t, g.Ignore("/prog", "components/foo"))
	require.NoError(t, g.Ignore("/prog", "components/foo"))
	require.NoError(t, g.Ignore("/prog", "bar"))

	data, err := afero.ReadFile(fs, "/prog/.git/info/exclude")
	require.NoError(t, err)
	assert.Equal(t, "/components/foo\n/bar\n", string(data))

	require.NoError(t, g.Unignore("/prog", "components/foo"))
	data, err = afero.ReadFile(fs, "/prog/.git/info/exclude")
	require.NoError(t, err)
	assert.Equal(t, "/bar\n", string(data))
}

func TestGitOpenNotARepository(t *testing.T) {
	g := NewGit(afero.NewOsFs())
	_, err := g.CurrentRevision(context.Background(), t.TempDir())
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotARepository))
}
