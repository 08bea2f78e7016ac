// Package xml provides XML output
package xml

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alios-things/aos-cube/pkg/commands/list"
	"github.com/alios-things/aos-cube/pkg/deps"
	"github.com/beevik/etree"
)

// Renderer writes one XML document per call
type Renderer struct {
	output io.Writer
}

// New creates a new XML renderer
func New(output io.Writer) (*Renderer, error) {
	return &Renderer{output: output}, nil
}

// RenderResult renders component listings and walk results
func (r *Renderer) RenderResult(result interface{}) error {
	doc := newDocument()
	switch v := result.(type) {
	case *list.ListComponentsResult:
		componentsElement(doc, v)
	case *deps.Result:
		resultElement(doc, v)
	default:
		return fmt.Errorf("no XML representation for %T", result)
	}
	return r.write(doc)
}

// RenderError renders an error as XML
func (r *Renderer) RenderError(err error) error {
	doc := newDocument()
	doc.CreateElement("error").SetText(err.Error())
	return r.write(doc)
}

// RenderMessage renders a simple message as XML
func (r *Renderer) RenderMessage(msg string) error {
	doc := newDocument()
	doc.CreateElement("message").SetText(msg)
	return r.write(doc)
}

func newDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	return doc
}

func (r *Renderer) write(doc *etree.Document) error {
	doc.Indent(2)
	_, err := doc.WriteTo(r.output)
	return err
}

func componentsElement(doc *etree.Document, result *list.ListComponentsResult) {
	root := doc.CreateElement("components")
	root.CreateAttr("sdk", result.SDKRoot)
	root.CreateAttr("program", strconv.FormatBool(result.InProgram))
	for _, c := range result.Components {
		el := root.CreateElement("component")
		el.CreateAttr("name", c.Name)
		el.CreateAttr("location", c.Location)
		el.CreateAttr("identity", c.Identity)
		el.CreateAttr("remote", strconv.FormatBool(c.Remote))
		el.CreateAttr("cube_add", strconv.FormatBool(c.CubeAdd))
		el.CreateAttr("cube_remove", strconv.FormatBool(c.CubeRemove))
	}
}

func resultElement(doc *etree.Document, result *deps.Result) {
	root := doc.CreateElement("result")
	root.CreateAttr("root", result.Root)

	for _, w := range result.Warnings {
		root.CreateElement("warning").SetText(w)
	}
	for _, e := range result.Events {
		el := root.CreateElement("event")
		el.CreateAttr("kind", string(e.Kind))
		el.CreateAttr("path", e.Path)
		if e.URL != "" {
			el.CreateAttr("url", e.URL)
		}
		if e.Rev != "" {
			el.CreateAttr("rev", e.Rev)
		}
		if e.Detail != "" {
			el.SetText(e.Detail)
		}
	}
	for _, m := range result.Modified {
		el := root.CreateElement("modified")
		el.CreateAttr("name", m.Name)
		el.CreateAttr("path", m.Path)
		el.SetText(m.Changes)
	}
}
