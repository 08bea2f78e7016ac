// Package paths provides centralized path handling for aos.
//
// It knows the fixed file names the tool relies on (program config, cube
// manifest, reference files), locates the program root by walking up from
// a directory, and resolves the XDG directories used for the global config
// and the log file.
//
// # Environment Variables
//
//   - AOS_CONFIG_DIR: override the global config directory
//     (default: $XDG_CONFIG_HOME/aos)
//   - AOS_DATA_DIR: override the data directory holding staged remote
//     components (default: $XDG_DATA_HOME/aos)
//
// # Usage
//
//	p, err := paths.New(fs, "")  // walk up from the working directory
//	if err != nil {
//	    return err
//	}
//	root := p.ProgramRoot()       // /home/user/helloworld
//	manifest := p.ManifestPath()  // /home/user/helloworld/cube.mk
package paths
