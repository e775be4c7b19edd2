// Package style holds the terminal styles used by the puppetctl CLI.
package style

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorRed    = lipgloss.Color("#ef4444")
	colorYellow = lipgloss.Color("#eab308")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorDim    = lipgloss.Color("#6b7280")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	infoStyle    = lipgloss.NewStyle().Foreground(colorBlue)
	noteStyle    = lipgloss.NewStyle().Foreground(colorDim)
	successStyle = lipgloss.NewStyle().Foreground(colorGreen)
	warningStyle = lipgloss.NewStyle().Foreground(colorYellow)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
)

const (
	checkMark = "[OK]"
	crossMark = "[!!]"
	warnMark  = "[??]"
)

// Title renders a section heading.
func Title(s string) string { return titleStyle.Render(s) }

// Info renders an informational line.
func Info(s string) string { return infoStyle.Render(s) }

// Note renders secondary text.
func Note(s string) string { return noteStyle.Render(s) }

// Success renders s prefixed with a check mark.
func Success(s string) string { return successStyle.Render(checkMark + " " + s) }

// Warning renders s prefixed with a warning mark.
func Warning(s string) string { return warningStyle.Render(warnMark + " " + s) }

// Error renders s prefixed with a cross mark.
func Error(s string) string { return errorStyle.Render(crossMark + " " + s) }

// Fprintln writes a styled line to w.
func Fprintln(w io.Writer, render func(string) string, format string, args ...any) {
	fmt.Fprintln(w, render(fmt.Sprintf(format, args...)))
}
