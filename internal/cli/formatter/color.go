package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/baseline/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// BaselineIndicator returns a colored marker for the baseline status.
func BaselineIndicator(s domain.BaselineStatus) string {
	switch s {
	case domain.BaselineValidated:
		return StyleGreen.Render("● VALIDATED")
	case domain.BaselineModified:
		return StyleYellow.Render("● MODIFIED")
	case domain.BaselineDraft:
		return StyleDim.Render("● DRAFT")
	default:
		return StyleDim.Render("● UNKNOWN")
	}
}

// RequestIndicator returns a colored marker for the request status.
func RequestIndicator(s domain.RequestStatus) string {
	switch s {
	case domain.RequestApproved:
		return StyleGreen.Render("APPROVED")
	case domain.RequestRejected:
		return StyleRed.Render("REJECTED")
	case domain.RequestPending:
		return StyleYellow.Render("PENDING")
	default:
		return StyleDim.Render(string(s))
	}
}

// VersionIndicator returns a colored marker for the version status.
func VersionIndicator(s domain.VersionStatus) string {
	switch s {
	case domain.VersionActive:
		return StyleGreen.Render("active")
	case domain.VersionArchived:
		return StyleDim.Render("archived")
	default:
		return StyleDim.Render(string(s))
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
