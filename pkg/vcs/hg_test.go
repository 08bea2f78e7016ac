// pkg/vcs/hg_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: scripted process runner, afero MemMapFs
// PURPOSE: Test the Mercurial adapter's command lines and output parsing

package vcs

import (
	"context"
	"strings"
	"testing"

	"github.com/alios-things/aos-cube/pkg/errors"
	"github.com/alios-things/aos-cube/pkg/process"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedRunner struct {
	calls   []process.Command
	replies map[string]scriptedReply
}

type scriptedReply struct {
	stdout   string
	exitCode int
}

func newScriptedRunner() *scriptedRunner {
	return &scriptedRunner{replies: map[string]scriptedReply{}}
}

func (s *scriptedRunner) on(cmdline string, stdout string, exitCode int) {
	s.replies[cmdline] = scriptedReply{stdout: stdout, exitCode: exitCode}
}

func (s *scriptedRunner) Run(ctx context.Context, cmd process.Command) (*process.Result, error) {
	s.calls = append(s.calls, cmd)
	reply := s.replies[cmd.String()]
	res := &process.Result{Stdout: reply.stdout, ExitCode: reply.exitCode}
	if reply.exitCode != 0 {
		return res, errors.New(errors.ErrVcsProcess, cmd.String()+" failed").WithDetail("exit_code", reply.exitCode)
	}
	return res, nil
}

func (s *scriptedRunner) lines() []string {
	var out []string
	for _, c := range s.calls {
		out = append(out, c.String()+" @"+c.Dir)
	}
	return out
}

func TestMercurialIsRepository(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/p/.hg", 0755))
	h := NewMercurial(fs, newScriptedRunner())

	assert.True(t, h.IsRepository("/p"))
	assert.False(t, h.IsRepository("/q"))
}

func TestMercurialCloneRunsInParent(t *testing.T) {
	r := newScriptedRunner()
	h := NewMercurial(afero.NewMemMapFs(), r)

	require.NoError(t, h.Clone(context.Background(), "hg::https://hg.example.org/foo", "/prog/foo", CloneOptions{Depth: 1}))
	assert.Equal(t, []string{"hg clone https://hg.example.org/foo /prog/foo @/prog"}, r.lines())
}

func TestMercurialUpdate(t *testing.T) {
	r := newScriptedRunner()
	r.on("hg paths default", "https://hg.example.org/foo\n", 0)
	h := NewMercurial(afero.NewMemMapFs(), r)

	require.NoError(t, h.Update(context.Background(), "/p", UpdateOptions{Rev: "v2", Clean: true, CleanFiles: true}))
	assert.Equal(t, []string{
		"hg purge --all --config extensions.purge= @/p",
		"hg paths default @/p",
		"hg pull @/p",
		"hg update -C v2 @/p",
	}, r.lines())
}

func TestMercurialUpdateWithoutRemoteSkipsPull(t *testing.T) {
	r := newScriptedRunner()
	r.on("hg paths default", "", 1)
	h := NewMercurial(afero.NewMemMapFs(), r)

	require.NoError(t, h.Update(context.Background(), "/p", UpdateOptions{}))
	assert.Equal(t, []string{"hg paths default @/p", "hg update @/p"}, r.lines())
}

func TestMercurialQueries(t *testing.T) {
	r := newScriptedRunner()
	r.on("hg id -i --debug", "0123abcd+\n", 0)
	r.on("hg branch", "default\n", 0)
	r.on("hg status -q", "M foo.c\n", 0)
	r.on("hg outgoing -q", "1:aaaa\n2:bbbb\n", 0)
	h := NewMercurial(afero.NewMemMapFs(), r)
	ctx := context.Background()

	rev, err := h.CurrentRevision(ctx, "/p")
	require.NoError(t, err)
	assert.Equal(t, "0123abcd", rev)

	branch, err := h.CurrentBranch(ctx, "/p")
	require.NoError(t, err)
	assert.Equal(t, "default", branch)

	dirty, err := h.IsDirty(ctx, "/p")
	require.NoError(t, err)
	assert.True(t, dirty)

	n, err := h.Outgoing(ctx, "/p")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMercurialExitOneMeansNothing(t *testing.T) {
	r := newScriptedRunner()
	r.on("hg outgoing -q", "", 1)
	r.on("hg push", "", 1)
	h := NewMercurial(afero.NewMemMapFs(), r)
	ctx := context.Background()

	n, err := h.Outgoing(ctx, "/p")
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.NoError(t, h.Push(ctx, "/p", false))
}

func TestMercurialRealFailurePropagates(t *testing.T) {
	r := newScriptedRunner()
	r.on("hg pull", "", 255)
	r.on("hg paths default", "https://hg.example.org/foo", 0)
	h := NewMercurial(afero.NewMemMapFs(), r)

	err := h.Update(context.Background(), "/p", UpdateOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsRecoverable(err))
}

func TestMercurialIgnore(t *testing.T) {
	fs := afero.NewMemMapFs()
	h := NewMercurial(fs, newScriptedRunner())

	require.NoError(t, h.Ignore("/p", "drivers/wifi"))
	require.NoError(t, h.Ignore("/p", "drivers/wifi"))

	data, err := afero.ReadFile(fs, "/p/.hg/hgignore")
	require.NoError(t, err)
	assert.Equal(t, "syntax: glob\ndrivers/wifi\n", string(data))

	rc, err := afero.ReadFile(fs, "/p/.hg/hgrc")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(rc), "ignore = .hg/hgignore"))

	require.NoError(t, h.Unignore("/p", "drivers/wifi"))
	data, err = afero.ReadFile(fs, "/p/.hg/hgignore")
	require.NoError(t, err)
	assert.Equal(t, "syntax: glob\n", string(data))
}
