package vcs

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryDetect(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/g/.git", 0755))
	require.NoError(t, fs.MkdirAll("/h/.hg", 0755))
	require.NoError(t, fs.MkdirAll("/plain", 0755))

	r := NewRegistry(NewGit(fs), NewMercurial(fs, newScriptedRunner()))

	assert.Equal(t, KindGit, r.Detect("/g").Kind())
	assert.Equal(t, KindMercurial, r.Detect("/h").Kind())
	assert.Nil(t, r.Detect("/plain"))
	assert.True(t, r.IsRepository("/g"))
	assert.False(t, r.IsRepository("/plain"))
}

func TestRegistryForURL(t *testing.T) {
	fs := afero.NewMemMapFs()
	r := NewRegistry(NewGit(fs), NewMercurial(fs, newScriptedRunner()))

	assert.Equal(t, KindGit, r.ForURL("https://github.com/org/foo.git").Kind())
	assert.Equal(t, KindMercurial, r.ForURL("hg::https://example.org/foo").Kind())

	gitOnly := NewRegistry(NewGit(fs))
	assert.Equal(t, KindGit, gitOnly.ForURL("hg::https://example.org/foo").Kind(), "falls back to the first adapter")
}
