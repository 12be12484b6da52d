package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/aretw0/domino/internal/presentation/tui"
	"github.com/aretw0/domino/pkg/domain"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by Render.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMarkdown = "markdown"
)

// Formats lists the accepted output formats.
var Formats = []string{FormatText, FormatJSON, FormatYAML, FormatMarkdown}

// View is the serialized form of a domino for json and yaml output.
type View struct {
	ID         string        `json:"id" yaml:"id"`
	Values     domain.Values `json:"values" yaml:"values"`
	Defaults   domain.Values `json:"defaults" yaml:"defaults"`
	Mutations  domain.Values `json:"mutations" yaml:"mutations"`
	IsModified bool          `json:"is_modified" yaml:"is_modified"`
}

// Renderer writes dominoes to a terminal.
type Renderer struct {
	out     *termenv.Output
	profile *termenv.Profile
	width   int
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithProfile forces a color profile. termenv.Ascii disables styling.
func WithProfile(p termenv.Profile) RendererOption {
	return func(r *Renderer) {
		r.profile = &p
	}
}

// WithWidth sets the word wrap width for markdown output.
func WithWidth(width int) RendererOption {
	return func(r *Renderer) {
		r.width = width
	}
}

// NewRenderer creates a Renderer writing to w. The color profile is detected
// from w unless WithProfile is given.
func NewRenderer(w io.Writer, opts ...RendererOption) *Renderer {
	r := &Renderer{width: 80}
	for _, opt := range opts {
		opt(r)
	}
	if r.profile != nil {
		r.out = termenv.NewOutput(w, termenv.WithProfile(*r.profile))
	} else {
		r.out = termenv.NewOutput(w)
	}
	return r
}

// Render writes d in format.
func (r *Renderer) Render(format, id string, d *domain.Domino) error {
	view := View{
		ID:         id,
		Values:     d.Values(),
		Defaults:   d.Defaults(),
		Mutations:  d.Mutations(),
		IsModified: d.IsModified(),
	}

	switch format {
	case "", FormatText:
		return r.text(view, d.ComputedKeys())
	case FormatJSON:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	case FormatYAML:
		enc := yaml.NewEncoder(r.out)
		defer enc.Close()
		return enc.Encode(view)
	case FormatMarkdown:
		md, err := tui.NewRenderer(r.width).Render(markdown(view, d.ComputedKeys()))
		if err != nil {
			return err
		}
		_, err = io.WriteString(r.out, md)
		return err
	default:
		return fmt.Errorf("unknown output format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// text prints one field per line. Mutated fields are highlighted and show the
// default they override.
func (r *Renderer) text(view View, computed []string) error {
	status := r.styled("clean", "#22c55e")
	if view.IsModified {
		status = r.styled("modified", "#f59e0b")
	}
	if _, err := fmt.Fprintf(r.out, "%s (%s)\n", r.out.String(view.ID).Bold(), status); err != nil {
		return err
	}

	for _, key := range sortedKeys(view.Values) {
		line := fmt.Sprintf("  %s = %s", key, format(view.Values[key]))
		switch {
		case slices.Contains(computed, key):
			line = r.styled(line+"  (computed)", "#818cf8")
		case hasKey(view.Mutations, key):
			if def, ok := view.Defaults[key]; ok {
				line += fmt.Sprintf("  (default %s)", format(def))
			}
			line = r.styled(line, "#f59e0b")
		}
		if _, err := fmt.Fprintln(r.out, line); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) styled(s, hex string) string {
	return r.out.String(s).Foreground(r.out.Color(hex)).String()
}

func markdown(view View, computed []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", view.ID)
	if view.IsModified {
		b.WriteString("*modified*\n\n")
	}
	b.WriteString("| field | value | default | |\n|---|---|---|---|\n")
	for _, key := range sortedKeys(view.Values) {
		def := ""
		if v, ok := view.Defaults[key]; ok {
			def = format(v)
		}
		mark := ""
		switch {
		case slices.Contains(computed, key):
			mark = "computed"
		case hasKey(view.Mutations, key):
			mark = "**changed**"
		}
		fmt.Fprintf(&b, "| %s | `%s` | `%s` | %s |\n", key, format(view.Values[key]), def, mark)
	}
	return b.String()
}

func format(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

func hasKey(m domain.Values, key string) bool {
	_, ok := m[key]
	return ok
}

func sortedKeys(m domain.Values) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
