// pkg/component/component_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: afero MemMapFs
// PURPOSE: Test identity resolution and component makefile parsing

package component_test

import (
	"testing"

	"github.com/alios-things/aos-cube/pkg/component"
	"github.com/alios-things/aos-cube/pkg/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sdk(t *testing.T) afero.Fs {
	t.Helper()
	fs := testutil.NewTestFS()
	testutil.WriteTree(t, fs, "/sdk", testutil.FileTree{
		"kernel": testutil.FileTree{
			"cli": testutil.FileTree{"cli.mk": "NAME := cli\n"},
		},
		"network": testutil.FileTree{
			"lwip": testutil.FileTree{"lwip.mk": "NAME := lwip\n"},
		},
		"platform": testutil.FileTree{
			"mcu": testutil.FileTree{
				"stm32": testutil.FileTree{"hal.mk": "NAME := stm32_hal\n"},
			},
		},
		"out": testutil.FileTree{
			"stale": testutil.FileTree{"stale.mk": "NAME := stale\n"},
		},
	})
	testutil.WriteTree(t, fs, "/remote", testutil.FileTree{
		"net": testutil.FileTree{"net.mk": "NAME := net\n"},
	})
	return fs
}

func TestLocalIdentity(t *testing.T) {
	r := component.NewResolver(sdk(t), "/sdk", "/remote")

	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"kernel/cli", "kernel/cli", true},
		{"kernel.cli", "kernel/cli", true},
		{"lwip", "network/lwip", true},
		{"stm32_hal", "platform/mcu/stm32", true},
		{"stale", "", false},
		{"missing", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.LocalIdentity(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRemoteIdentity(t *testing.T) {
	r := component.NewResolver(sdk(t), "/sdk", "/remote")

	got, ok := r.RemoteIdentity("net")
	assert.True(t, ok)
	assert.Equal(t, "REMOTE_PATH/net", got)

	_, ok = r.RemoteIdentity("cli")
	assert.False(t, ok)
}

func TestResolve_FallsBack(t *testing.T) {
	r := component.NewResolver(sdk(t), "/sdk", "/remote")

	got, ok := r.Resolve("net", true)
	assert.True(t, ok)
	assert.Equal(t, "REMOTE_PATH/net", got)

	got, ok = r.Resolve("lwip", false)
	assert.True(t, ok)
	assert.Equal(t, "network/lwip", got)

	_, ok = r.Resolve("nothing", true)
	assert.False(t, ok)
}

func TestResolver_Invalidate(t *testing.T) {
	fs := sdk(t)
	r := component.NewResolver(fs, "/sdk", "/remote")

	_, ok := r.LocalIdentity("ble")
	require.False(t, ok)

	testutil.WriteTree(t, fs, "/sdk/extra/bt", testutil.FileTree{"stack.mk": "NAME := ble\n"})
	_, ok = r.LocalIdentity("ble")
	assert.False(t, ok, "cached scan")

	r.Invalidate()
	got, ok := r.LocalIdentity("ble")
	assert.True(t, ok)
	assert.Equal(t, "extra/bt", got)
}

func TestDependencies(t *testing.T) {
	fs := testutil.NewTestFS()
	testutil.WriteTree(t, fs, "/c", testutil.FileTree{
		"net.mk": `NAME := net
# $(NAME)_COMPONENTS := ignored
$(NAME)_COMPONENTS := lwip \
    cli
$(NAME)_COMPONENTS += yloop
`,
		"net.c": "",
	})

	deps, err := component.Dependencies(fs, "/c/net.mk")
	require.NoError(t, err)
	assert.Equal(t, []string{"lwip", "cli", "yloop"}, deps)

	deps, err = component.Dependencies(fs, "/c/missing.mk")
	require.NoError(t, err)
	assert.Empty(t, deps)

	deps, err = component.Dependencies(fs, "/c/net.c")
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestComponents(t *testing.T) {
	found, err := component.Components(sdk(t), "/sdk")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"kernel/cli/cli.mk":         "cli",
		"network/lwip/lwip.mk":      "lwip",
		"platform/mcu/stm32/hal.mk": "stm32_hal",
	}, found)
}
