// Package deps keeps a tree of version controlled checkouts consistent
// with the .lib and .codes references its directories declare.
//
// Every operation is a depth-first walk starting at one directory. A walk
// never changes the process working directory; each step receives the
// absolute path it acts on. Traversal state (visited directories,
// warnings, events) lives in a per-invocation context so sibling subtrees
// cannot affect each other and cycles terminate.
//
// Errors of kind RECONCILIATION_CONFLICT and VCS_PROCESS become warnings
// when the caller asked to ignore them. Every other error aborts the walk
// and leaves the filesystem as it was at the point of failure.
package deps
