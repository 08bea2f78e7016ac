// Package component maps bare component names to the identities written
// into cube.mk.
//
// A component is local when its makefile lives under the SDK root; the
// identity is then the directory of that makefile relative to the SDK root
// (for example "kernel/cli"). A component is remote when it was staged by
// `aos add <url>` under the remote directory; its identity is
// "REMOTE_PATH/<name>", which the build system expands at build time.
package component
