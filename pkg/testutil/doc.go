// Package testutil provides utilities for testing aos components.
//
// Key components:
//   - NewTestFS: in-memory afero filesystem
//   - FileTree / WriteTree: declarative directory setup
//   - FakeVCS: a vcs.Adapter that keeps remotes and working copies in
//     memory and materializes checkouts on an afero filesystem
//
// Usage guidelines:
//   - Synchronizer, manifest and resolver tests run entirely in memory
//   - Only pkg/vcs and pkg/process tests touch the real filesystem
//   - All test data should be defined inline, not in external files
package testutil
