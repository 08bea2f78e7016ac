// pkg/ui/output/printer_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: bytes.Buffer writers
// PURPOSE: Test progress lines, tables and the non-interactive prompt path

package output_test

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/alios-things/aos-cube/pkg/deps"
	"github.com/alios-things/aos-cube/pkg/errors"
	"github.com/alios-things/aos-cube/pkg/ui/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ deps.Reporter = (*output.Printer)(nil)
var _ deps.Prompter = (*output.Prompter)(nil)

func newPrinter(opts ...output.PrinterOption) (*output.Printer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return output.NewPrinter(&out, &errOut, opts...), &out, &errOut
}

func TestPrinter_Lines(t *testing.T) {
	p, out, errOut := newPrinter()

	p.Action(`Importing program "app"`)
	p.Detail(" M main.c\n?? new.c\n")
	p.Warning("something odd")
	p.Error(errors.New(errors.ErrNotFound, "gone"))

	assert.Equal(t,
		"[aos] Importing program \"app\"\n"+
			"     M main.c\n"+
			"    ?? new.c\n",
		out.String())
	assert.Equal(t,
		"[aos] WARNING: something odd\n"+
			"[aos] ERROR: [NOT_FOUND] gone\n",
		errOut.String())
}

func TestPrinter_Quiet(t *testing.T) {
	p, out, errOut := newPrinter(output.WithQuiet(true))

	p.Action("hidden")
	p.Detail("hidden")
	p.Warning("shown")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "WARNING: shown")
}

func TestPrinter_Color(t *testing.T) {
	p, out, _ := newPrinter(output.WithColor(true))
	p.Action("styled")
	assert.Contains(t, out.String(), "\x1b[", "forced color emits escape codes")

	p, out, _ = newPrinter(output.WithColor(false))
	p.Action("plain")
	assert.NotContains(t, out.String(), "\x1b[")
}

func TestPrinter_Table(t *testing.T) {
	p, out, _ := newPrinter()

	err := p.Table([]string{"NAME", "LOCATION"}, [][]string{
		{"lwip", "aos/network/lwip"},
		{"rhino", "aos/kernel/rhino"},
	})
	require.NoError(t, err)

	rendered := out.String()
	assert.Contains(t, rendered, "NAME")
	assert.Contains(t, rendered, "aos/network/lwip")
	assert.Contains(t, rendered, "rhino")
	assert.NotContains(t, rendered, "\x1b[")
}

func TestPrompter_NonInteractive(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)
	defer f.Close()

	orig := os.Stdin
	os.Stdin = f
	defer func() { os.Stdin = orig }()

	_, err = output.NewPrompter().CommitMessage(context.Background(), "app")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}
