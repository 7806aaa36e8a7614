package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette. Styles refer to these names, never to inline colors.
var (
	// ColorCyan marks identifiable nouns: paths, workload names, namespaces.
	ColorCyan = lipgloss.Color("14")

	// ColorGreen marks created files.
	ColorGreen = lipgloss.Color("82")

	// ColorYellow marks updated files.
	ColorYellow = lipgloss.Color("220")

	// ColorRed marks removed files.
	ColorRed = lipgloss.Color("196")

	// ColorBoldRed marks failures.
	ColorBoldRed = lipgloss.Color("204")

	// ColorGreenCheck is the completion checkmark.
	ColorGreenCheck = lipgloss.Color("10")

	// ColorDimGray is used for borders and other chrome.
	ColorDimGray = lipgloss.Color("240")
)

// Semantic styles.
var (
	StyleNoun    = lipgloss.NewStyle().Foreground(ColorCyan)
	StyleDim     = lipgloss.NewStyle().Faint(true)
	StyleSummary = lipgloss.NewStyle().Bold(true)
)

// File statuses reported by Write and Diff.
const (
	StatusCreated   = "created"
	StatusUpdated   = "updated"
	StatusUnchanged = "unchanged"
	StatusRemoved   = "removed"
	StatusFailed    = "failed"
)

// StatusStyle returns the style for a file status. Unknown statuses are
// unstyled.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case StatusCreated:
		return lipgloss.NewStyle().Foreground(ColorGreen)
	case StatusUpdated:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	case StatusUnchanged:
		return lipgloss.NewStyle().Faint(true)
	case StatusRemoved:
		return lipgloss.NewStyle().Foreground(ColorRed)
	case StatusFailed:
		return lipgloss.NewStyle().Bold(true).Foreground(ColorBoldRed)
	default:
		return lipgloss.NewStyle()
	}
}

// minPathColumnWidth keeps status words aligned.
const minPathColumnWidth = 48

// FormatFileLine renders `f:<path>  <status>` with a right-aligned status.
func FormatFileLine(path, status string) string {
	padding := minPathColumnWidth - len(path)
	if padding < 2 {
		padding = 2
	}
	return StyleDim.Render("f:") + StyleNoun.Render(path) + strings.Repeat(" ", padding) + StatusStyle(status).Render(status)
}

// FormatCheckmark renders a green checkmark followed by msg.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(ColorGreenCheck).Render("✔")
	return check + " " + msg
}

// FormatCount renders "n label" with a plural s when n != 1.
func FormatCount(n int, label string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, label)
	}
	return fmt.Sprintf("%d %ss", n, label)
}

// Styles groups the styles used by the diff and tree renderers.
type Styles struct {
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
}

// DefaultStyles returns the colored styles.
func DefaultStyles() *Styles {
	return &Styles{
		Success: lipgloss.NewStyle().Foreground(ColorGreen),
		Warning: lipgloss.NewStyle().Foreground(ColorYellow),
		Error:   lipgloss.NewStyle().Foreground(ColorRed),
		Bold:    lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(ColorDimGray),
	}
}

// NoColorStyles returns unstyled styles for tests and piped output.
func NoColorStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{Success: plain, Warning: plain, Error: plain, Bold: plain, Muted: plain}
}
