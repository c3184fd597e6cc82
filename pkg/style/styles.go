// Package style renders rename results, previews and field listings for the
// terminal.
//
// Colours come from lipgloss adaptive colours; tables come from pterm. When
// output is not a terminal, Plain switches both libraries to plain text.
package style

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"
)

// Colours adapt to light and dark terminals
var (
	HeadingColor = lipgloss.AdaptiveColor{Light: "#007ACC", Dark: "#3D9EFF"}
	MutedColor   = lipgloss.AdaptiveColor{Light: "#6C757D", Dark: "#A0A8B0"}
	SuccessColor = lipgloss.AdaptiveColor{Light: "#28A745", Dark: "#4CDD76"}
	ErrorColor   = lipgloss.AdaptiveColor{Light: "#DC3545", Dark: "#FF6B7D"}
	WarningColor = lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFC107"}
	PathColor    = lipgloss.AdaptiveColor{Light: "#5A4FCF", Dark: "#B4A7FF"}
)

var (
	TitleStyle   = lipgloss.NewStyle().Foreground(HeadingColor).Bold(true)
	MutedStyle   = lipgloss.NewStyle().Foreground(MutedColor)
	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor).Bold(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ErrorColor).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
	PathStyle    = lipgloss.NewStyle().Foreground(PathColor)
)

// Row indicators
var (
	SuccessIndicator = SuccessStyle.Render("✓")
	ErrorIndicator   = ErrorStyle.Render("✗")
	WarningIndicator = WarningStyle.Render("!")
	PendingIndicator = MutedStyle.Render("○")
)

// IsTerminal reports whether f is an interactive terminal
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Plain disables colour and styling in lipgloss and pterm
func Plain() {
	lipgloss.SetColorProfile(termenv.Ascii)
	pterm.DisableStyling()
	refreshIndicators()
}

func refreshIndicators() {
	SuccessIndicator = SuccessStyle.Render("✓")
	ErrorIndicator = ErrorStyle.Render("✗")
	WarningIndicator = WarningStyle.Render("!")
	PendingIndicator = MutedStyle.Render("○")
}

// Bold renders s in bold
func Bold(s string) string {
	return lipgloss.NewStyle().Bold(true).Render(s)
}

// Indent pads s by two spaces per level
func Indent(s string, level int) string {
	return lipgloss.NewStyle().PaddingLeft(level * 2).Render(s)
}
