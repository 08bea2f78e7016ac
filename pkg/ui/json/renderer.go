// Package json writes results as indented JSON for scripts
package json

import (
	"encoding/json"
	"io"

	"github.com/alios-things/aos-cube/pkg/errors"
)

type errorDoc struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type messageDoc struct {
	Message string `json:"message"`
}

// Renderer encodes one JSON document per call
type Renderer struct {
	encoder *json.Encoder
}

func New(output io.Writer) (*Renderer, error) {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	return &Renderer{encoder: encoder}, nil
}

// RenderResult encodes result with its json tags
func (r *Renderer) RenderResult(result interface{}) error {
	return r.encoder.Encode(result)
}

// RenderError encodes err, with its code when it carries one
func (r *Renderer) RenderError(err error) error {
	doc := errorDoc{Error: err.Error()}
	if code := errors.GetErrorCode(err); code != errors.ErrUnknown {
		doc.Code = string(code)
	}
	return r.encoder.Encode(doc)
}

func (r *Renderer) RenderMessage(msg string) error {
	return r.encoder.Encode(messageDoc{Message: msg})
}
