// Package yaml provides YAML output
package yaml

import (
	"io"

	"gopkg.in/yaml.v3"
)

// Renderer writes one YAML document per call
type Renderer struct {
	output io.Writer
}

// New creates a new YAML renderer
func New(output io.Writer) (*Renderer, error) {
	return &Renderer{output: output}, nil
}

// RenderResult encodes result with its yaml tags
func (r *Renderer) RenderResult(result interface{}) error {
	return r.flush(result)
}

// RenderError renders an error as YAML
func (r *Renderer) RenderError(err error) error {
	return r.flush(map[string]string{"error": err.Error()})
}

// RenderMessage renders a simple message as YAML
func (r *Renderer) RenderMessage(msg string) error {
	return r.flush(map[string]string{"message": msg})
}

func (r *Renderer) flush(v interface{}) error {
	encoder := yaml.NewEncoder(r.output)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	// Close ends the stream, the writer stays open
	return encoder.Close()
}
