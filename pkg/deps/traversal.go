package deps

import "path/filepath"

// EventKind classifies what happened to a checkout during a walk
type EventKind string

const (
	EventImported     EventKind = "imported"
	EventUpdated      EventKind = "updated"
	EventMissing      EventKind = "missing"
	EventRemoved      EventKind = "removed"
	EventConflict     EventKind = "conflict"
	EventSkipped      EventKind = "skipped"
	EventReferenced   EventKind = "referenced"
	EventDereferenced EventKind = "dereferenced"
	EventCommitted    EventKind = "committed"
	EventPushed       EventKind = "pushed"
	EventModified     EventKind = "modified"
)

// Event records one step of a walk
type Event struct {
	Kind   EventKind `json:"kind" yaml:"kind"`
	Path   string    `json:"path" yaml:"path"`
	URL    string    `json:"url,omitempty" yaml:"url,omitempty"`
	Rev    string    `json:"rev,omitempty" yaml:"rev,omitempty"`
	Detail string    `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// NodeStatus is the uncommitted state of one checkout
type NodeStatus struct {
	Name    string `json:"name" yaml:"name"`
	Path    string `json:"path" yaml:"path"`
	Changes string `json:"changes" yaml:"changes"`
}

// Result is what a walk did
type Result struct {
	Root     string       `json:"root" yaml:"root"`
	Warnings []string     `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Events   []Event      `json:"events,omitempty" yaml:"events,omitempty"`
	Modified []NodeStatus `json:"modified,omitempty" yaml:"modified,omitempty"`
}

// Has reports whether an event of kind was recorded for path
func (r *Result) Has(kind EventKind, path string) bool {
	for _, e := range r.Events {
		if e.Kind == kind && e.Path == path {
			return true
		}
	}
	return false
}

// EventsOf returns the events of kind in order
func (r *Result) EventsOf(kind EventKind) []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// traversal is the state of one invocation
type traversal struct {
	root       string
	ignore     bool
	depth      int
	protocol   string
	clean      bool
	cleanFiles bool
	cleanDeps  bool
	keepRefs   bool

	// visited is keyed by walk and directory; a directory is entered at
	// most once per walk kind
	visited map[string]bool
	// blocked children were kept after a refused removal and are not
	// descended into
	blocked map[string]bool
	result  *Result
}

func newTraversal(root string) *traversal {
	return &traversal{
		root:    filepath.Clean(root),
		visited: map[string]bool{},
		blocked: map[string]bool{},
		result:  &Result{Root: root},
	}
}

func (t *traversal) enter(walk, path string) bool {
	key := walk + ":" + filepath.Clean(path)
	if t.visited[key] {
		return false
	}
	t.visited[key] = true
	return true
}

func (t *traversal) add(kind EventKind, path, url, rev, detail string) {
	t.result.Events = append(t.result.Events, Event{Kind: kind, Path: path, URL: url, Rev: rev, Detail: detail})
}
