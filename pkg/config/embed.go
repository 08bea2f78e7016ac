package config

import (
	_ "embed"
	"errors"

	"github.com/spf13/afero"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// DefaultsContent returns the embedded defaults file
func DefaultsContent() string {
	return string(defaultConfig)
}

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

// aferoProvider reads a config file through an afero filesystem
type aferoProvider struct {
	fs   afero.Fs
	path string
}

func (a *aferoProvider) ReadBytes() ([]byte, error) { return afero.ReadFile(a.fs, a.path) }
func (a *aferoProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}
