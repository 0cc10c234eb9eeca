// Package theme provides the Lip Gloss color palette and reusable styles
// for the shell. It is a leaf package with no internal imports to avoid
// import cycles.
package theme

import "github.com/charmbracelet/lipgloss"

// Brand colors.
var (
	ColorBrand       = lipgloss.Color("#2B9ACA")
	ColorOnBrand     = lipgloss.Color("#FFFFFF")
	ColorUserBg      = lipgloss.Color("#E0EFFF")
	ColorUserFg      = lipgloss.Color("#007AFF")
	ColorSignOutBg   = lipgloss.Color("#FFE0E0")
	ColorSignOutFg   = lipgloss.Color("#E84855")
	ColorTabActive   = lipgloss.Color("#2B9ACA")
	ColorTabInactive = lipgloss.Color("#8E8E93")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorBg      = lipgloss.Color("#111827")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
	ColorInfo    = lipgloss.Color("#2563eb")
	ColorNav     = lipgloss.Color("#7c3aed")
)

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	StyleSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorDanger)
)

// HeaderBar renders a full-width header. An empty bg renders a transparent
// header that only colors the title.
func HeaderBar(title string, width int, bg, fg string, bold bool) string {
	style := lipgloss.NewStyle().Width(max(width, 10)).Padding(0, 1).Bold(bold)
	if bg != "" {
		style = style.Background(lipgloss.Color(bg))
	}
	if fg != "" {
		style = style.Foreground(lipgloss.Color(fg))
	} else {
		style = style.Foreground(ColorBright)
	}
	return style.Render(title)
}

// Button renders a drawer item.
func Button(icon, label string, bg, fg lipgloss.Color, selected bool) string {
	style := lipgloss.NewStyle().
		Background(bg).
		Foreground(fg).
		Padding(0, 2).
		MarginTop(1)
	if selected {
		style = style.Bold(true).Underline(true)
	}
	return style.Render(icon + "  " + label)
}
