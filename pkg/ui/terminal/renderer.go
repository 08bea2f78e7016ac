// Package terminal renders results for people: prefixed lines and tables
package terminal

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alios-things/aos-cube/pkg/commands/list"
	"github.com/alios-things/aos-cube/pkg/deps"
	"github.com/alios-things/aos-cube/pkg/ui/output"
)

// MsgNotInProgram heads an SDK listing made outside a program
const MsgNotInProgram = "Current directory isn't a program, listing SDK components"

// Renderer writes through an output.Printer
type Renderer struct {
	printer *output.Printer
}

// New creates a terminal renderer writing to w
func New(w io.Writer, color bool) (*Renderer, error) {
	return &Renderer{printer: output.NewPrinter(w, w, output.WithColor(color))}, nil
}

// Printer exposes the underlying printer
func (r *Renderer) Printer() *output.Printer {
	return r.printer
}

// RenderResult renders component listings and walk results
func (r *Renderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case *list.ListComponentsResult:
		return r.renderComponents(v)
	case *deps.Result:
		return r.renderWalk(v)
	case fmt.Stringer:
		r.printer.Info(v.String())
		return nil
	default:
		return fmt.Errorf("no terminal representation for %T", result)
	}
}

// RenderError prints err on the error line
func (r *Renderer) RenderError(err error) error {
	r.printer.Error(err)
	return nil
}

// RenderMessage prints a plain line
func (r *Renderer) RenderMessage(msg string) error {
	r.printer.Info(msg)
	return nil
}

func (r *Renderer) renderComponents(result *list.ListComponentsResult) error {
	if !result.InProgram {
		r.printer.Info(MsgNotInProgram)
	}
	if len(result.Components) == 0 {
		r.printer.Info("No components found")
		return nil
	}

	rows := make([][]string, 0, len(result.Components))
	for _, c := range result.Components {
		rows = append(rows, []string{c.Name, c.Location, componentStatus(c)})
	}
	return r.printer.Table([]string{"NAME", "LOCATION", "STATUS"}, rows)
}

func componentStatus(c list.ComponentInfo) string {
	var flags []string
	if c.Remote {
		flags = append(flags, "remote")
	}
	if c.CubeAdd {
		flags = append(flags, "added")
	}
	if c.CubeRemove {
		flags = append(flags, "removed")
	}
	return strings.Join(flags, ",")
}

// Progress was already reported while walking; only the summary of
// modified checkouts remains.
func (r *Renderer) renderWalk(result *deps.Result) error {
	if len(result.Modified) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(result.Modified))
	for _, m := range result.Modified {
		rows = append(rows, []string{m.Name, m.Path, strconv.Itoa(countLines(m.Changes))})
	}
	return r.printer.Table([]string{"NAME", "PATH", "CHANGES"}, rows)
}

func countLines(s string) int {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
