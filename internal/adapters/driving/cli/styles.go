package cli

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
)

// Theme defines the colour palette for styled output.
type Theme struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

// DefaultTheme returns the default colour palette.
func DefaultTheme() *Theme {
	return &Theme{
		Primary: lipgloss.Color("#7C3AED"), // Purple
		Muted:   lipgloss.Color("#6C7086"), // Medium gray
		Success: lipgloss.Color("#A6E3A1"), // Green
		Warning: lipgloss.Color("#F9E2AF"), // Yellow
		Error:   lipgloss.Color("#F38BA8"), // Red
	}
}

// Styles contains pre-configured lipgloss styles. Plain styles render
// text unchanged, which keeps piped output and tests free of escapes.
type Styles struct {
	Title   lipgloss.Style
	Dir     lipgloss.Style
	File    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	return &Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(theme.Primary),
		Dir:     lipgloss.NewStyle().Bold(true).Foreground(theme.Primary),
		File:    lipgloss.NewStyle(),
		Muted:   lipgloss.NewStyle().Foreground(theme.Muted),
		Success: lipgloss.NewStyle().Foreground(theme.Success),
		Warning: lipgloss.NewStyle().Foreground(theme.Warning),
	}
}

// PlainStyles returns styles that add no formatting.
func PlainStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{Title: plain, Dir: plain, File: plain, Muted: plain, Success: plain, Warning: plain}
}

// stylesFor picks coloured styles only when w is a terminal.
func stylesFor(w io.Writer) *Styles {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return NewStyles(nil)
	}
	return PlainStyles()
}

// renderTree draws a directory tree with box-drawing connectors.
func renderTree(root *domain.DirNode, styles *Styles) string {
	if root == nil {
		return ""
	}
	var b strings.Builder
	name := root.Name
	if name == "" {
		name = "."
	}
	b.WriteString(styles.Dir.Render(name + "/"))
	b.WriteString("\n")
	writeChildren(&b, root.Children, "", styles)
	return b.String()
}

func writeChildren(b *strings.Builder, children []*domain.DirNode, prefix string, styles *Styles) {
	for i, child := range children {
		last := i == len(children)-1
		connector, indent := "├── ", "│   "
		if last {
			connector, indent = "└── ", "    "
		}
		b.WriteString(styles.Muted.Render(prefix + connector))
		if child.IsDir {
			b.WriteString(styles.Dir.Render(child.Name + "/"))
		} else {
			b.WriteString(styles.File.Render(child.Name))
		}
		b.WriteString("\n")
		if child.IsDir {
			writeChildren(b, child.Children, prefix+indent, styles)
		}
	}
}
