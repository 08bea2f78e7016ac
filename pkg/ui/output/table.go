package output

import (
	"fmt"

	"github.com/muesli/termenv"
	"github.com/pterm/pterm"
)

// Table writes rows under header as a boxed table
func (p *Printer) Table(header []string, rows [][]string) error {
	data := make([][]string, 0, len(rows)+1)
	data = append(data, header)
	data = append(data, rows...)

	rendered, err := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithData(data).
		Srender()
	if err != nil {
		return err
	}
	if !p.colored() {
		rendered = pterm.RemoveColorFromString(rendered)
	}
	_, err = fmt.Fprintln(p.out, rendered)
	return err
}

func (p *Printer) colored() bool {
	return p.renderer.ColorProfile() != termenv.Ascii
}
