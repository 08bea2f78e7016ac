package config

import (
	"os"
	"strconv"

	"github.com/alios-things/aos-cube/pkg/errors"
	"github.com/alios-things/aos-cube/pkg/filesystem"
	"github.com/alios-things/aos-cube/pkg/logging"
	"github.com/alios-things/aos-cube/pkg/paths"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

// Scope selects which file a write goes to
type Scope int

const (
	// ScopeProgram is the .aos file of the current program
	ScopeProgram Scope = iota
	// ScopeGlobal is the user's global config.toml
	ScopeGlobal
)

func (s Scope) String() string {
	if s == ScopeGlobal {
		return "global"
	}
	return "program"
}

// Config is the merged view over every configuration layer
type Config struct {
	fs    afero.Fs
	paths paths.Paths
	k     *koanf.Koanf
}

// Load builds the layered configuration for the program located by p
func Load(fs afero.Fs, p paths.Paths) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. Global config file
	globalPath := p.GlobalConfigPath()
	if filesystem.Exists(fs, globalPath) {
		if err := k.Load(globalProvider(fs, globalPath), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load global config from %s", globalPath)
		}
		logger.Debug().Str("path", globalPath).Msg("Loaded global config")
	}

	// 3. Program config
	if !p.UsedFallback() {
		values, err := ReadProgramFile(fs, p.ProgramConfigPath())
		if err != nil {
			return nil, err
		}
		program := make(map[string]interface{}, len(values))
		for key, value := range values {
			program[key] = value
		}
		if err := k.Load(confmap.Provider(program, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load program config")
		}
		logger.Debug().Str("path", p.ProgramConfigPath()).Int("keys", len(values)).Msg("Loaded program config")
	}

	// 4. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
	}

	return &Config{fs: fs, paths: p, k: k}, nil
}

// globalProvider reads through the OS file provider on the real disk and
// through afero otherwise
func globalProvider(fs afero.Fs, path string) koanf.Provider {
	if _, ok := fs.(*afero.OsFs); ok {
		return file.Provider(path)
	}
	return &aferoProvider{fs: fs, path: path}
}

// Get returns the merged value of key, or "" when unset
func (c *Config) Get(key string) string {
	return c.k.String(key)
}

// GetInt returns key parsed as an integer, or 0 when unset or invalid
func (c *Config) GetInt(key string) int {
	n, err := strconv.Atoi(c.k.String(key))
	if err != nil {
		return 0
	}
	return n
}

// Has reports whether any layer sets key
func (c *Config) Has(key string) bool {
	return c.k.Exists(key)
}

// All returns every merged key with its string value
func (c *Config) All() map[string]string {
	out := make(map[string]string)
	for _, key := range c.k.Keys() {
		out[key] = c.k.String(key)
	}
	return out
}

// Paths returns the locations the configuration was loaded from
func (c *Config) Paths() paths.Paths {
	return c.paths
}

// ProgramRoot returns the directory holding the program's .aos file
func (c *Config) ProgramRoot() string {
	return c.paths.ProgramRoot()
}

// InProgram reports whether a .aos file was found above the start directory
func (c *Config) InProgram() bool {
	return !c.paths.UsedFallback()
}

// SDKRoot is the SDK used to resolve local component identities. The
// program's OS_PATH wins over the global AOS_SDK_PATH.
func (c *Config) SDKRoot() string {
	if v := c.Get(KeyOSPath); v != "" {
		return paths.ExpandHome(v)
	}
	return paths.ExpandHome(c.Get(KeySDKPath))
}

// RemoteRoot is the staging directory for components added by URL
func (c *Config) RemoteRoot() string {
	if v := c.Get(KeyRemotePath); v != "" {
		return paths.ExpandHome(v)
	}
	return c.paths.DefaultRemoteDir()
}

// Set writes key=value to the file selected by scope and updates the
// merged view
func (c *Config) Set(scope Scope, key, value string) error {
	if err := c.write(scope, func(values map[string]string) { values[key] = value }); err != nil {
		return err
	}
	return c.k.Set(key, value)
}

// Unset removes key from the file selected by scope
func (c *Config) Unset(scope Scope, key string) error {
	if err := c.write(scope, func(values map[string]string) { delete(values, key) }); err != nil {
		return err
	}
	c.k.Delete(key)
	return nil
}

func (c *Config) write(scope Scope, mutate func(map[string]string)) error {
	if scope == ScopeProgram {
		if !c.InProgram() {
			return errors.Newf(errors.ErrConfigWrite, "%s is not inside a program", c.paths.ProgramRoot())
		}
		values, err := ReadProgramFile(c.fs, c.paths.ProgramConfigPath())
		if err != nil {
			return err
		}
		mutate(values)
		return WriteProgramFile(c.fs, c.paths.ProgramConfigPath(), values)
	}

	values, err := c.readGlobal()
	if err != nil {
		return err
	}
	mutate(values)

	data, err := gotoml.Marshal(values)
	if err != nil {
		return errors.Wrap(err, errors.ErrConfigWrite, "failed to encode global config")
	}
	if err := filesystem.WriteFileAtomic(c.fs, c.paths.GlobalConfigPath(), data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrConfigWrite, "failed to write %s", c.paths.GlobalConfigPath())
	}
	return nil
}

func (c *Config) readGlobal() (map[string]string, error) {
	values := map[string]string{}
	data, err := afero.ReadFile(c.fs, c.paths.GlobalConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return values, nil
		}
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to read global config")
	}
	if err := gotoml.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to parse global config")
	}
	return values, nil
}
