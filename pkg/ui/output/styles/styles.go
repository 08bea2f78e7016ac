// Package styles defines the visual styling of aos terminal output.
//
// Styles have semantic names and adaptive colors that follow the light or
// dark terminal theme. They are loaded from the embedded styles.yaml.
package styles

import (
	_ "embed"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// ColorDef is an adaptive color definition
type ColorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// StyleDef is a style definition
type StyleDef struct {
	Bold         bool   `yaml:"bold,omitempty"`
	Italic       bool   `yaml:"italic,omitempty"`
	Underline    bool   `yaml:"underline,omitempty"`
	Foreground   string `yaml:"foreground,omitempty"`
	Background   string `yaml:"background,omitempty"`
	PaddingLeft  int    `yaml:"paddingLeft,omitempty"`
	PaddingRight int    `yaml:"paddingRight,omitempty"`
}

// Config is the content of a styles file
type Config struct {
	Colors map[string]ColorDef `yaml:"colors"`
	Styles map[string]StyleDef `yaml:"styles"`
}

// Registry maps semantic names to style definitions. Styles are bound to a
// lipgloss renderer on use so color can follow the output writer.
type Registry struct {
	colors map[string]lipgloss.AdaptiveColor
	defs   map[string]StyleDef
}

//go:embed styles.yaml
var embeddedStyles []byte

// Default is the registry built from the embedded styles
var Default = mustLoad(embeddedStyles)

func mustLoad(data []byte) *Registry {
	r, err := Load(data)
	if err != nil {
		// unparsable styles leave output unstyled
		return &Registry{colors: map[string]lipgloss.AdaptiveColor{}, defs: map[string]StyleDef{}}
	}
	return r
}

// Load parses a styles file
func Load(data []byte) (*Registry, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse styles: %w", err)
	}

	r := &Registry{
		colors: make(map[string]lipgloss.AdaptiveColor, len(config.Colors)),
		defs:   config.Styles,
	}
	if r.defs == nil {
		r.defs = map[string]StyleDef{}
	}
	for name, def := range config.Colors {
		r.colors[name] = lipgloss.AdaptiveColor{Light: def.Light, Dark: def.Dark}
	}
	for name, def := range r.defs {
		for _, ref := range []string{def.Foreground, def.Background} {
			if _, ok := r.colors[ref]; ref != "" && !ok {
				return nil, fmt.Errorf("style %s uses unknown color %q", name, ref)
			}
		}
	}
	return r, nil
}

// Has reports whether name is defined
func (r *Registry) Has(name string) bool {
	_, ok := r.defs[name]
	return ok
}

// Names returns the defined style names
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	return names
}

// Style builds name for renderer. Unknown names yield a plain style.
func (r *Registry) Style(renderer *lipgloss.Renderer, name string) lipgloss.Style {
	style := renderer.NewStyle()
	def, ok := r.defs[name]
	if !ok {
		return style
	}

	if def.Bold {
		style = style.Bold(true)
	}
	if def.Italic {
		style = style.Italic(true)
	}
	if def.Underline {
		style = style.Underline(true)
	}
	if color, ok := r.colors[def.Foreground]; ok {
		style = style.Foreground(color)
	}
	if color, ok := r.colors[def.Background]; ok {
		style = style.Background(color)
	}
	if def.PaddingLeft > 0 || def.PaddingRight > 0 {
		style = style.Padding(0, def.PaddingRight, 0, def.PaddingLeft)
	}
	return style
}

// Merge combines named styles, later ones winning
func (r *Registry) Merge(renderer *lipgloss.Renderer, names ...string) lipgloss.Style {
	result := renderer.NewStyle()
	for i := len(names) - 1; i >= 0; i-- {
		result = result.Inherit(r.Style(renderer, names[i]))
	}
	return result
}
