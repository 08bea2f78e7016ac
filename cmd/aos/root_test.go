// cmd/aos/root_test.go
// TEST TYPE: CLI Integration
// DEPENDENCIES: FakeVCS, afero MemMapFs
// PURPOSE: Test command wiring, usage errors, exit codes and help topics

package aos_test

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/alios-things/aos-cube/cmd/aos"
	"github.com/alios-things/aos-cube/pkg/errors"
	"github.com/alios-things/aos-cube/pkg/logging"
	"github.com/alios-things/aos-cube/pkg/paths"
	"github.com/alios-things/aos-cube/pkg/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type run struct {
	stdout string
	stderr string
	err    error
}

func (r run) code() int { return aos.ExitCode(r.err) }

// execute runs the root command from workDir over fs and fake
func execute(t *testing.T, fs afero.Fs, fake *testutil.FakeVCS, workDir string, args ...string) run {
	t.Helper()
	var stdout, stderr bytes.Buffer
	opts := []aos.Option{
		aos.WithFS(fs),
		aos.WithWorkDir(workDir),
		aos.WithOutput(&stdout, &stderr),
	}
	if fake != nil {
		opts = append(opts, aos.WithRegistry(fake.Registry()))
	}
	root := aos.NewRootCmd(opts...)
	root.SetArgs(args)
	err := root.Execute()
	return run{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv(paths.EnvConfigDir, "/cfg")
	t.Setenv(paths.EnvDataDir, "/data")
	t.Setenv("NO_COLOR", "1")
	t.Setenv(logging.EnvLogFile, filepath.Join(t.TempDir(), "aos.log"))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, aos.ExitOK},
		{"usage", &aos.UsageError{Err: fmt.Errorf("bad flag")}, aos.ExitUsage},
		{"wrapped usage", fmt.Errorf("outer: %w", &aos.UsageError{Err: fmt.Errorf("x")}), aos.ExitUsage},
		{"unknown command", fmt.Errorf(`unknown command "frob" for "aos"`), aos.ExitUsage},
		{"synchronizer error", errors.New(errors.ErrNotARepository, "not a repository"), aos.ExitError},
		{"invalid input from a walk", errors.New(errors.ErrInvalidInput, "a URL is required"), aos.ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, aos.ExitCode(tt.err))
		})
	}
}

func TestUsageErrors(t *testing.T) {
	isolate(t)
	fs := testutil.NewTestFS()

	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"frob"}},
		{"unknown flag", []string{"sync", "--bogus"}},
		{"missing argument", []string{"rm"}},
		{"too many arguments", []string{"update", "a", "b"}},
		{"bad flag value", []string{"import", "x", "--depth", "deep"}},
		{"invalid shell", []string{"completion", "tcsh"}},
		{"unknown format", []string{"ls", "--format", "csv"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := execute(t, fs, nil, "/work", tt.args...)
			require.Error(t, r.err)
			assert.Equal(t, aos.ExitUsage, r.code(), r.err.Error())
		})
	}
}

func TestVersion(t *testing.T) {
	isolate(t)
	r := execute(t, testutil.NewTestFS(), nil, "/work", "version")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "aos version dev")
	assert.Contains(t, r.stdout, "commit:")
}

func TestCompletion(t *testing.T) {
	isolate(t)
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			r := execute(t, testutil.NewTestFS(), nil, "/work", "completion", shell)
			require.NoError(t, r.err)
			assert.Contains(t, r.stdout, "aos")
		})
	}
}

func TestTopics(t *testing.T) {
	isolate(t)

	r := execute(t, testutil.NewTestFS(), nil, "/work", "topics")
	require.NoError(t, r.err)
	for _, name := range []string{"references", "manifest", "remote-components", "configuration"} {
		assert.Contains(t, r.stdout, name)
	}
	assert.Contains(t, r.stdout, "--depth")

	r = execute(t, testutil.NewTestFS(), nil, "/work", "topics", "manifest")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "CUBE_ADD_COMPONENTS")

	r = execute(t, testutil.NewTestFS(), nil, "/work", "help", "references")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "url#revision")

	r = execute(t, testutil.NewTestFS(), nil, "/work", "topics", "ghost")
	assert.Equal(t, aos.ExitError, r.code())
}

func TestHelpListsCommandGroups(t *testing.T) {
	isolate(t)
	r := execute(t, testutil.NewTestFS(), nil, "/work", "--help")
	require.NoError(t, r.err)

	for _, want := range []string{"REPOSITORIES:", "COMPONENTS:", "MISC:", "import", "publish", "add", "topics"} {
		assert.Contains(t, r.stdout, want)
	}
}
