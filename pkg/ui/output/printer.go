package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/alios-things/aos-cube/pkg/ui/output/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Prefix starts every progress line
const Prefix = "[aos]"

// Printer writes progress lines. Actions and details go to the output
// writer, warnings and errors to the error writer.
type Printer struct {
	out      io.Writer
	errOut   io.Writer
	renderer *lipgloss.Renderer
	styles   *styles.Registry
	quiet    bool
}

// PrinterOption configures a Printer
type PrinterOption func(*Printer)

// WithColor forces color on or off
func WithColor(enabled bool) PrinterOption {
	return func(p *Printer) {
		if enabled {
			p.renderer.SetColorProfile(termenv.ANSI256)
		} else {
			p.renderer.SetColorProfile(termenv.Ascii)
		}
	}
}

// WithQuiet drops actions and details, keeping warnings and errors
func WithQuiet(quiet bool) PrinterOption {
	return func(p *Printer) { p.quiet = quiet }
}

// WithStyles replaces the style registry
func WithStyles(r *styles.Registry) PrinterOption {
	return func(p *Printer) { p.styles = r }
}

// NewPrinter creates a printer. Color follows the output writer unless
// WithColor is given.
func NewPrinter(out, errOut io.Writer, opts ...PrinterOption) *Printer {
	p := &Printer{
		out:      out,
		errOut:   errOut,
		renderer: lipgloss.NewRenderer(out),
		styles:   styles.Default,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Style returns the named style bound to the printer's output
func (p *Printer) Style(name string) lipgloss.Style {
	return p.styles.Style(p.renderer, name)
}

// Action reports a step of the running operation
func (p *Printer) Action(msg string) {
	if p.quiet {
		return
	}
	p.line(p.out, "Action", msg)
}

// Detail prints indented supporting output, such as a status listing
func (p *Printer) Detail(msg string) {
	if p.quiet {
		return
	}
	detail := p.Style("Detail")
	for _, l := range strings.Split(strings.TrimRight(msg, "\n"), "\n") {
		fmt.Fprintln(p.out, detail.Render(l))
	}
}

// Info prints a plain line
func (p *Printer) Info(msg string) {
	p.line(p.out, "Info", msg)
}

// Warning reports a problem the operation continued past
func (p *Printer) Warning(msg string) {
	p.line(p.errOut, "Warning", "WARNING: "+msg)
}

// Error reports the error that ended the command
func (p *Printer) Error(err error) {
	p.line(p.errOut, "Error", "ERROR: "+err.Error())
}

func (p *Printer) line(w io.Writer, style, msg string) {
	fmt.Fprintf(w, "%s %s\n", p.Style("Prefix").Render(Prefix), p.Style(style).Render(msg))
}
