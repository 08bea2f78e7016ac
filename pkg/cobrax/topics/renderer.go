package topics

import "strings"

// Renderer turns a topic's file content into terminal text. ext is the
// topic file's extension, including the dot.
type Renderer interface {
	Render(content string, ext string) string
}

// PlainRenderer prints topics verbatim, ending them with a single newline
type PlainRenderer struct{}

func (r *PlainRenderer) Render(content string, ext string) string {
	return strings.TrimRight(content, "\n") + "\n"
}
