// pkg/commands/add/add_test.go
// TEST TYPE: Business Logic Integration
// DEPENDENCIES: FakeVCS, afero MemMapFs
// PURPOSE: Test adding SDK and remote components to a program's cube.mk

package add_test

import (
	"context"
	"testing"

	"github.com/alios-things/aos-cube/pkg/commands/add"
	"github.com/alios-things/aos-cube/pkg/config"
	"github.com/alios-things/aos-cube/pkg/deps"
	"github.com/alios-things/aos-cube/pkg/errors"
	"github.com/alios-things/aos-cube/pkg/repo"
	"github.com/alios-things/aos-cube/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sensorURL = "https://example.org/comps/sensor.git"
	driverURL = "https://example.org/comps/driver.git"
	wifiURL   = "https://example.org/alios/wifi.git"
	baseURL   = "https://example.org/alios"
)

var sdk = testutil.FileTree{
	"kernel": testutil.FileTree{
		"rhino": testutil.FileTree{"rhino.mk": testutil.Makefile("rhino")},
	},
	"network": testutil.FileTree{
		"lwip": testutil.FileTree{"lwip.mk": testutil.Makefile("lwip")},
	},
}

type recorder struct {
	actions []string
}

func (r *recorder) Action(msg string) { r.actions = append(r.actions, msg) }
func (r *recorder) Warning(string)    {}

func options(t *testing.T, env *testutil.ProgramEnv, name string) add.AddComponentOptions {
	t.Helper()
	sync := deps.New(repo.NewEnv(env.FS, env.VCS.Registry()), deps.WithBaseURL(baseURL))
	return add.AddComponentOptions{
		FS:     env.FS,
		Config: env.Config(t, testutil.ProgramRoot),
		Sync:   sync,
		Out:    &recorder{},
		Name:   name,
	}
}

func TestAddComponent_LocalName(t *testing.T) {
	env := testutil.NewProgramEnv(t, sdk)

	result, err := add.AddComponent(context.Background(), options(t, env, "lwip"))
	require.NoError(t, err)

	assert.Equal(t, []string{"network/lwip"}, result.Added)
	assert.True(t, result.Changed)
	assert.Equal(t,
		"CUBE_ADD_COMPONENTS := network/lwip\nCUBE_REMOVE_COMPONENTS :=\n",
		env.Manifest(t))
	assert.Equal(t, "1", env.ProgramValues(t)[config.KeyCubeModify])
}

func TestAddComponent_DottedName(t *testing.T) {
	env := testutil.NewProgramEnv(t, sdk)

	result, err := add.AddComponent(context.Background(), options(t, env, "kernel.rhino"))
	require.NoError(t, err)
	assert.Equal(t, []string{"kernel/rhino"}, result.Added)
}

func TestAddComponent_AlreadyAddedIsUnchanged(t *testing.T) {
	env := testutil.NewProgramEnv(t, sdk)
	_, err := add.AddComponent(context.Background(), options(t, env, "lwip"))
	require.NoError(t, err)
	require.NoError(t, env.FS.Remove(testutil.ProgramRoot+"/.aos"))
	testutil.WriteTree(t, env.FS, testutil.ProgramRoot, testutil.FileTree{
		".aos": "OS_PATH=/sdk\nREMOTE_PATH=/prog/remote\n",
	})

	result, err := add.AddComponent(context.Background(), options(t, env, "lwip"))
	require.NoError(t, err)

	assert.False(t, result.Changed)
	assert.NotContains(t, env.ProgramValues(t), config.KeyCubeModify)
}

func TestAddComponent_URLWithDependencies(t *testing.T) {
	env := testutil.NewProgramEnv(t, sdk)
	env.AddComponentRemote(sensorURL, "sensor", "lwip", "driver")
	env.AddComponentRemote(driverURL, "driver")

	opts := options(t, env, sensorURL)
	result, err := add.AddComponent(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"REMOTE_PATH/sensor", "network/lwip", "REMOTE_PATH/driver"}, result.Added)
	assert.Equal(t, []string{"/prog/remote/sensor", "/prog/remote/driver"}, result.Staged)
	assert.Equal(t,
		"#network/lwip=REMOTE_PATH/sensor\n"+
			"#REMOTE_PATH/driver=REMOTE_PATH/sensor\n"+
			"CUBE_ADD_COMPONENTS := REMOTE_PATH/sensor network/lwip REMOTE_PATH/driver\n"+
			"CUBE_REMOVE_COMPONENTS :=\n",
		env.Manifest(t))
	assert.True(t, testutil.Exists(env.FS, "/prog/remote/driver/driver.mk"))
	assert.Contains(t, opts.Out.(*recorder).actions, `Add local component "lwip" success`)
	assert.Equal(t, "1", env.ProgramValues(t)[config.KeyCubeModify])
}

func TestAddComponent_DependencyFallsBackToBaseURL(t *testing.T) {
	env := testutil.NewProgramEnv(t, sdk)
	env.AddComponentRemote(sensorURL, "sensor", "wifi")
	env.AddComponentRemote(wifiURL, "wifi")

	result, err := add.AddComponent(context.Background(), options(t, env, sensorURL))
	require.NoError(t, err)

	assert.Equal(t, []string{"REMOTE_PATH/sensor", "REMOTE_PATH/wifi"}, result.Added)
	assert.True(t, testutil.Exists(env.FS, "/prog/remote/wifi/wifi.mk"))
	assert.True(t, env.VCS.HasCall("clone /prog/remote/wifi "+wifiURL))
}

func TestAddComponent_UnresolvableDependency(t *testing.T) {
	env := testutil.NewProgramEnv(t, sdk)
	env.AddComponentRemote(sensorURL, "sensor", "ghost")

	_, err := add.AddComponent(context.Background(), options(t, env, sensorURL))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnresolvedComponent))
	assert.Equal(t, "ghost", errors.GetErrorDetails(err)["name"])
}

func TestAddComponent_DependencyCycle(t *testing.T) {
	env := testutil.NewProgramEnv(t, sdk)
	env.AddComponentRemote(sensorURL, "sensor", "driver")
	env.AddComponentRemote(driverURL, "driver", "sensor")

	result, err := add.AddComponent(context.Background(), options(t, env, sensorURL))
	require.NoError(t, err)
	assert.Equal(t, []string{"REMOTE_PATH/sensor", "REMOTE_PATH/driver"}, result.Added)
}

func TestAddComponent_StagedName(t *testing.T) {
	env := testutil.NewProgramEnv(t, sdk)
	testutil.WriteTree(t, env.FS, testutil.RemoteRoot, testutil.FileTree{
		"driver": testutil.FileTree{"driver.mk": testutil.Makefile("driver")},
	})

	result, err := add.AddComponent(context.Background(), options(t, env, "driver"))
	require.NoError(t, err)
	assert.Equal(t, []string{"REMOTE_PATH/driver"}, result.Added)
}

func TestAddComponent_Errors(t *testing.T) {
	t.Run("unknown name", func(t *testing.T) {
		env := testutil.NewProgramEnv(t, sdk)
		_, err := add.AddComponent(context.Background(), options(t, env, "nosuch"))
		assert.True(t, errors.IsErrorCode(err, errors.ErrUnresolvedComponent))
		assert.Equal(t, testutil.EmptyManifest, env.Manifest(t))
	})

	t.Run("outside a program", func(t *testing.T) {
		env := testutil.NewProgramEnv(t, sdk)
		opts := options(t, env, "lwip")
		opts.Config = env.Config(t, "/elsewhere")
		_, err := add.AddComponent(context.Background(), opts)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})

	t.Run("missing manifest", func(t *testing.T) {
		env := testutil.NewProgramEnv(t, sdk)
		require.NoError(t, env.FS.Remove("/prog/cube.mk"))
		_, err := add.AddComponent(context.Background(), options(t, env, "lwip"))
		assert.True(t, errors.IsErrorCode(err, errors.ErrManifestNotFound))
	})

	t.Run("empty name", func(t *testing.T) {
		env := testutil.NewProgramEnv(t, sdk)
		_, err := add.AddComponent(context.Background(), options(t, env, ""))
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})
}
