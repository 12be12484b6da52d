package tui

import (
	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer renders markdown for the terminal.
type MarkdownRenderer struct {
	width int
}

// NewRenderer returns a renderer wrapping lines at width.
func NewRenderer(width int) *MarkdownRenderer {
	return &MarkdownRenderer{width: width}
}

// Render renders markdown with the auto-detected light or dark style.
func (r *MarkdownRenderer) Render(markdown string) (string, error) {
	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(r.width),
	)
	if err != nil {
		return "", err
	}
	return tr.Render(markdown)
}
