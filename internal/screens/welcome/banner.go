package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cihui/internal/ui/theme"
)

const bannerArt = `
 ██████╗██╗██╗  ██╗██╗   ██╗██╗
██╔════╝██║██║  ██║██║   ██║██║
██║     ██║███████║██║   ██║██║
██║     ██║██╔══██║██║   ██║██║
╚██████╗██║██║  ██║╚██████╔╝██║
 ╚═════╝╚═╝╚═╝  ╚═╝ ╚═════╝ ╚═╝`

const bannerCompact = "C I H U I"

// RenderBanner returns the CIHUI banner styled in the primary color.
// Uses a compact fallback for terminals narrower than 40 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 40 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
