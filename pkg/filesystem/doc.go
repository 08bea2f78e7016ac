// Package filesystem provides the afero-backed file helpers shared by the
// reference, repo, manifest and component packages.
//
// Production code uses NewOS; tests hand an afero.MemMapFs to the same
// helpers so no test touches the real disk unless it has to.
package filesystem
