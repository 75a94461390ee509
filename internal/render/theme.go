package render

import (
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
)

// Colors
var (
	Primary = lipgloss.Color("#33A8FF")
	Muted   = lipgloss.Color("#6B7280")
	Success = lipgloss.Color("#10B981")
	Warning = lipgloss.Color("#F59E0B")
	Error   = lipgloss.Color("#EF4444")
)

// Theme holds the styles used for one output stream. The plain theme keeps
// layout (padding, widths) but emits no colors or attributes.
type Theme struct {
	Color  bool
	Header lipgloss.Style
	Cell   lipgloss.Style
	Border lipgloss.Style
	Label  lipgloss.Style
	Title  lipgloss.Style
}

func NewTheme(color bool) Theme {
	cell := lipgloss.NewStyle().Padding(0, 1)
	if !color {
		return Theme{
			Header: cell,
			Cell:   cell,
			Border: lipgloss.NewStyle(),
			Label:  lipgloss.NewStyle(),
			Title:  lipgloss.NewStyle(),
		}
	}
	return Theme{
		Color:  true,
		Header: cell.Bold(true).Foreground(Primary),
		Cell:   cell,
		Border: lipgloss.NewStyle().Foreground(Muted),
		Label:  lipgloss.NewStyle().Foreground(Muted),
		Title:  lipgloss.NewStyle().Bold(true).Foreground(Primary),
	}
}

// StatusColor maps ECS task, container and cluster statuses to theme colors.
func StatusColor(status string) color.Color {
	switch strings.ToLower(status) {
	case "running", "active":
		return Success
	case "stopped", "deprovisioning", "inactive", "failed":
		return Error
	case "pending", "provisioning", "activating", "deactivating", "stopping", "provisioning_failed":
		return Warning
	default:
		return Muted
	}
}

// Status renders a status with a colored bullet, or the bare status when
// the theme is plain.
func (t Theme) Status(status string) string {
	if !t.Color || status == "" {
		return status
	}
	bullet := lipgloss.NewStyle().Foreground(StatusColor(status)).Render("●")
	return bullet + " " + status
}
