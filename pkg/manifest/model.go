// Package manifest reads and rewrites cube.mk, the build manifest holding
// the components a user explicitly added to or removed from a program.
//
// The file is modelled, never edited line by line: Parse turns it into a
// Model, the Add and Remove operations mutate the model, and Bytes writes
// it back with the two set lines always last.
package manifest

import (
	"bufio"
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/alios-things/aos-cube/pkg/errors"
)

const (
	addVar    = "CUBE_ADD_COMPONENTS"
	removeVar = "CUBE_REMOVE_COMPONENTS"
)

var (
	setLine        = regexp.MustCompile(`^\s*(CUBE_ADD_COMPONENTS|CUBE_REMOVE_COMPONENTS)\s*[:+]?=\s*(.*)$`)
	provenanceLine = regexp.MustCompile(`^#([^\s=]+)=(\S+)\s*$`)
)

// LineKind distinguishes provenance comments from other body lines
type LineKind int

const (
	TextLine LineKind = iota
	ProvenanceLine
)

// Line is one body line of the manifest
type Line struct {
	Kind LineKind
	Text string
	// Identity and Origin are set for provenance lines
	Identity string
	Origin   string
}

// Model is the typed form of cube.mk
type Model struct {
	Body   []Line
	Add    []string
	Remove []string
}

// Parse reads a manifest
func Parse(r io.Reader) (*Model, error) {
	m := &Model{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		text := strings.TrimRight(scanner.Text(), "\r")

		if sm := setLine.FindStringSubmatch(text); sm != nil {
			for _, id := range strings.Fields(sm[2]) {
				if sm[1] == addVar {
					m.Add = appendUnique(m.Add, id)
				} else {
					m.Remove = appendUnique(m.Remove, id)
				}
			}
			continue
		}

		if pm := provenanceLine.FindStringSubmatch(strings.TrimSpace(text)); pm != nil {
			m.Body = append(m.Body, Line{Kind: ProvenanceLine, Text: text, Identity: pm[1], Origin: pm[2]})
			continue
		}

		m.Body = append(m.Body, Line{Kind: TextLine, Text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrManifestInvalid, "failed to read manifest")
	}
	return m, nil
}

// Bytes serialises the model. Body lines keep their order; the add and
// remove set lines always come last.
func (m *Model) Bytes() []byte {
	var buf bytes.Buffer
	for _, l := range m.Body {
		buf.WriteString(l.Text)
		buf.WriteByte('\n')
	}
	buf.WriteString(formatSet(addVar, m.Add))
	buf.WriteString(formatSet(removeVar, m.Remove))
	return buf.Bytes()
}

func formatSet(name string, ids []string) string {
	if len(ids) == 0 {
		return name + " :=\n"
	}
	return name + " := " + strings.Join(ids, " ") + "\n"
}

// Provenance maps identities to the component that introduced them
func (m *Model) Provenance() map[string]string {
	out := map[string]string{}
	for _, l := range m.Body {
		if l.Kind == ProvenanceLine {
			out[l.Identity] = l.Origin
		}
	}
	return out
}

// IsAdded reports whether identity is in CUBE_ADD_COMPONENTS
func (m *Model) IsAdded(identity string) bool { return contains(m.Add, identity) }

// IsRemoved reports whether identity is in CUBE_REMOVE_COMPONENTS
func (m *Model) IsRemoved(identity string) bool { return contains(m.Remove, identity) }

// AddIdentity puts identity in the add set and takes it out of the remove
// set. A provenance line is appended when identity differs from origin
// and has none yet. It reports whether the model changed.
func (m *Model) AddIdentity(identity, origin string) bool {
	changed := false
	if !contains(m.Add, identity) {
		m.Add = append(m.Add, identity)
		changed = true
	}
	if contains(m.Remove, identity) {
		m.Remove = without(m.Remove, identity)
		changed = true
	}
	if _, ok := m.Provenance()[identity]; !ok && identity != origin {
		m.Body = append(m.Body, Line{
			Kind:     ProvenanceLine,
			Text:     "#" + identity + "=" + origin,
			Identity: identity,
			Origin:   origin,
		})
		changed = true
	}
	return changed
}

// RemoveIdentity takes identity out of the add set. If a provenance line
// exists it is deleted, reversing the add that wrote it. Otherwise, outside
// a recursive dependency expansion, identity goes to the remove set unless
// it had been explicitly added, in which case dropping it from the add set
// already reverses that add.
func (m *Model) RemoveIdentity(identity string, recursive bool) bool {
	changed := false
	wasAdded := contains(m.Add, identity)
	if wasAdded {
		m.Add = without(m.Add, identity)
		changed = true
	}

	if contains(m.Remove, identity) {
		return changed
	}

	if idx := m.provenanceIndex(identity); idx >= 0 {
		m.Body = append(m.Body[:idx], m.Body[idx+1:]...)
		return true
	}

	if !recursive && !wasAdded {
		m.Remove = append(m.Remove, identity)
		changed = true
	}
	return changed
}

func (m *Model) provenanceIndex(identity string) int {
	for i, l := range m.Body {
		if l.Kind == ProvenanceLine && l.Identity == identity {
			return i
		}
	}
	return -1
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func without(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

func appendUnique(list []string, s string) []string {
	if contains(list, s) {
		return list
	}
	return append(list, s)
}
