// pkg/commands/remove/remove_test.go
// TEST TYPE: Business Logic Integration
// DEPENDENCIES: afero MemMapFs
// PURPOSE: Test removing SDK and staged components from a program's cube.mk

package remove_test

import (
	"context"
	"testing"

	"github.com/alios-things/aos-cube/pkg/commands/remove"
	"github.com/alios-things/aos-cube/pkg/config"
	"github.com/alios-things/aos-cube/pkg/errors"
	"github.com/alios-things/aos-cube/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sdk = testutil.FileTree{
	"network": testutil.FileTree{
		"lwip": testutil.FileTree{"lwip.mk": testutil.Makefile("lwip")},
	},
}

var staged = testutil.FileTree{
	"sensor": testutil.FileTree{"sensor.mk": testutil.Makefile("sensor", "lwip", "driver")},
	"driver": testutil.FileTree{"driver.mk": testutil.Makefile("driver", "bus")},
	"bus":    testutil.FileTree{"bus.mk": testutil.Makefile("bus")},
}

const sensorManifest = "#network/lwip=REMOTE_PATH/sensor\n" +
	"#REMOTE_PATH/driver=REMOTE_PATH/sensor\n" +
	"#REMOTE_PATH/bus=REMOTE_PATH/driver\n" +
	"CUBE_ADD_COMPONENTS := REMOTE_PATH/sensor network/lwip REMOTE_PATH/driver REMOTE_PATH/bus\n" +
	"CUBE_REMOVE_COMPONENTS :=\n"

func options(t *testing.T, env *testutil.ProgramEnv, name string) remove.RemoveComponentOptions {
	t.Helper()
	return remove.RemoveComponentOptions{
		FS:     env.FS,
		Config: env.Config(t, testutil.ProgramRoot),
		Name:   name,
	}
}

func TestRemoveComponent_LocalIsDenyListed(t *testing.T) {
	env := testutil.NewProgramEnv(t, sdk)

	result, err := remove.RemoveComponent(context.Background(), options(t, env, "lwip"))
	require.NoError(t, err)

	assert.True(t, result.Local)
	assert.True(t, result.Changed)
	assert.Equal(t,
		"CUBE_ADD_COMPONENTS :=\nCUBE_REMOVE_COMPONENTS := network/lwip\n",
		env.Manifest(t))
	assert.Equal(t, "1", env.ProgramValues(t)[config.KeyCubeModify])
}

func TestRemoveComponent_LocalAddedIsReverted(t *testing.T) {
	env := testutil.NewProgramEnv(t, sdk)
	testutil.WriteTree(t, env.FS, testutil.ProgramRoot, testutil.FileTree{
		"cube.mk": "CUBE_ADD_COMPONENTS := network/lwip\nCUBE_REMOVE_COMPONENTS :=\n",
	})

	_, err := remove.RemoveComponent(context.Background(), options(t, env, "lwip"))
	require.NoError(t, err)
	assert.Equal(t, testutil.EmptyManifest, env.Manifest(t))
}

func TestRemoveComponent_RemoteTakesItsDependencies(t *testing.T) {
	env := testutil.NewProgramEnv(t, sdk)
	testutil.WriteTree(t, env.FS, testutil.RemoteRoot, staged)
	testutil.WriteTree(t, env.FS, testutil.ProgramRoot, testutil.FileTree{"cube.mk": sensorManifest})

	result, err := remove.RemoveComponent(context.Background(), options(t, env, "sensor"))
	require.NoError(t, err)

	assert.False(t, result.Local)
	assert.Equal(t,
		[]string{"REMOTE_PATH/sensor", "network/lwip", "REMOTE_PATH/driver", "REMOTE_PATH/bus"},
		result.Removed)
	assert.Equal(t, testutil.EmptyManifest, env.Manifest(t))
}

func TestRemoveComponent_UnstagedButRecorded(t *testing.T) {
	env := testutil.NewProgramEnv(t, sdk)
	testutil.WriteTree(t, env.FS, testutil.ProgramRoot, testutil.FileTree{
		"cube.mk": "CUBE_ADD_COMPONENTS := REMOTE_PATH/gone\nCUBE_REMOVE_COMPONENTS :=\n",
	})

	_, err := remove.RemoveComponent(context.Background(), options(t, env, "gone"))
	require.NoError(t, err)
	assert.Equal(t, testutil.EmptyManifest, env.Manifest(t))
}

func TestRemoveComponent_DependencyCycle(t *testing.T) {
	env := testutil.NewProgramEnv(t, sdk)
	testutil.WriteTree(t, env.FS, testutil.RemoteRoot, testutil.FileTree{
		"a": testutil.FileTree{"a.mk": testutil.Makefile("a", "b")},
		"b": testutil.FileTree{"b.mk": testutil.Makefile("b", "a")},
	})

	result, err := remove.RemoveComponent(context.Background(), options(t, env, "a"))
	require.NoError(t, err)
	assert.Equal(t, []string{"REMOTE_PATH/a", "REMOTE_PATH/b"}, result.Removed)
}

func TestRemoveComponent_Errors(t *testing.T) {
	t.Run("unresolved", func(t *testing.T) {
		env := testutil.NewProgramEnv(t, sdk)
		_, err := remove.RemoveComponent(context.Background(), options(t, env, "nosuch"))
		assert.True(t, errors.IsErrorCode(err, errors.ErrUnresolvedComponent))
		assert.Equal(t, testutil.EmptyManifest, env.Manifest(t))
	})

	t.Run("outside a program", func(t *testing.T) {
		env := testutil.NewProgramEnv(t, sdk)
		opts := options(t, env, "lwip")
		opts.Config = env.Config(t, "/elsewhere")
		_, err := remove.RemoveComponent(context.Background(), opts)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})
}
