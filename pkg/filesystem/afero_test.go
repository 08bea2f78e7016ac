// pkg/filesystem/afero_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: afero MemMapFs
// PURPOSE: Test atomic writes and tree removal helpers

package filesystem_test

import (
	"testing"

	"github.com/alios-things/aos-cube/pkg/filesystem"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	fs := filesystem.NewMemory()

	require.NoError(t, filesystem.WriteFileAtomic(fs, "/prog/foo.lib", []byte("https://h/foo#1\n"), 0644))

	data, err := afero.ReadFile(fs, "/prog/foo.lib")
	require.NoError(t, err)
	assert.Equal(t, "https://h/foo#1\n", string(data))

	require.NoError(t, filesystem.WriteFileAtomic(fs, "/prog/foo.lib", []byte("https://h/foo#2\n"), 0644))
	data, err = afero.ReadFile(fs, "/prog/foo.lib")
	require.NoError(t, err)
	assert.Equal(t, "https://h/foo#2\n", string(data))

	entries, err := afero.ReadDir(fs, "/prog")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must not be left behind")
}

func TestRemoveTree(t *testing.T) {
	fs := filesystem.NewMemory()
	require.NoError(t, afero.WriteFile(fs, "/prog/foo/.git/objects/pack/p1", []byte("x"), 0444))
	require.NoError(t, afero.WriteFile(fs, "/prog/foo/foo.mk", []byte("NAME := foo"), 0644))

	require.NoError(t, filesystem.RemoveTree(fs, "/prog/foo"))
	assert.False(t, filesystem.Exists(fs, "/prog/foo"))
	assert.True(t, filesystem.IsDir(fs, "/prog"))

	assert.NoError(t, filesystem.RemoveTree(fs, "/prog/missing"))
}

func TestReadFileRejectsDirectory(t *testing.T) {
	fs := filesystem.NewMemory()
	require.NoError(t, fs.MkdirAll("/prog/dir", 0755))

	_, err := filesystem.ReadFile(fs, "/prog/dir")
	assert.Error(t, err)
}

func TestRel(t *testing.T) {
	assert.Equal(t, "a/b", filesystem.Rel("/root", "/root/a/b"))
	assert.Equal(t, ".", filesystem.Rel("/root", "/root"))
}
