// Package config handles configuration management for aos.
//
// Values are layered with koanf, later layers winning:
//
//  1. embedded defaults (embedded/defaults.toml)
//  2. the global config file, $XDG_CONFIG_HOME/aos/config.toml
//  3. the program config, the KEY=VALUE .aos file at the program root
//  4. AOS_* environment variables
//
// Keys are the upper-case names the build system also understands
// (AOS_SDK_PATH, OS_PATH, REMOTE_PATH, ...). Writes go either to the
// program file or to the global file, never to both.
package config
