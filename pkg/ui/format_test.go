// pkg/ui/format_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test output format parsing and color detection

package ui_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/alios-things/aos-cube/pkg/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatString(t *testing.T) {
	tests := []struct {
		format   ui.Format
		expected string
	}{
		{ui.FormatTable, "table"},
		{ui.FormatJSON, "json"},
		{ui.FormatYAML, "yaml"},
		{ui.FormatXML, "xml"},
		{ui.Format(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.format.String())
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected ui.Format
		wantErr  bool
	}{
		{input: "", expected: ui.FormatTable},
		{input: "table", expected: ui.FormatTable},
		{input: "JSON", expected: ui.FormatJSON},
		{input: "yaml", expected: ui.FormatYAML},
		{input: "yml", expected: ui.FormatYAML},
		{input: "xml", expected: ui.FormatXML},
		{input: "csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ui.ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestColorEnabled(t *testing.T) {
	t.Run("buffer", func(t *testing.T) {
		assert.False(t, ui.ColorEnabled(&bytes.Buffer{}))
	})

	t.Run("regular file", func(t *testing.T) {
		f, err := os.CreateTemp(t.TempDir(), "out")
		require.NoError(t, err)
		defer f.Close()
		assert.False(t, ui.ColorEnabled(f))
	})

	t.Run("NO_COLOR", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		assert.False(t, ui.ColorEnabled(os.Stdout))
	})
}
