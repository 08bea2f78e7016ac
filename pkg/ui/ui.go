// Package ui renders command results in the format picked by --format:
// tables for people, JSON, YAML or XML for scripts.
package ui

import (
	"fmt"
	"io"

	"github.com/alios-things/aos-cube/pkg/ui/json"
	"github.com/alios-things/aos-cube/pkg/ui/terminal"
	"github.com/alios-things/aos-cube/pkg/ui/xml"
	"github.com/alios-things/aos-cube/pkg/ui/yaml"
)

// Renderer is the common interface for all output renderers.
type Renderer interface {
	// RenderResult renders a command result
	RenderResult(result interface{}) error

	// RenderError renders an error with appropriate formatting
	RenderError(err error) error

	// RenderMessage renders a simple message
	RenderMessage(msg string) error
}

// NewRenderer creates a renderer for format writing to output
func NewRenderer(format Format, output io.Writer) (Renderer, error) {
	switch format {
	case FormatTable:
		return terminal.New(output, ColorEnabled(output))
	case FormatJSON:
		return json.New(output)
	case FormatYAML:
		return yaml.New(output)
	case FormatXML:
		return xml.New(output)
	default:
		return nil, fmt.Errorf("unknown format: %v", format)
	}
}
