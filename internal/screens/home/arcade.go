package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/cihui/internal/ui/components"
	"github.com/abhisek/cihui/internal/ui/theme"
)

const titleFull = `╔═╗╦╦ ╦╦ ╦╦
║  ║╠═╣║ ║║
╚═╝╩╩ ╩╚═╝╩`

const titleCompact = "词汇 · C I H U I"

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 22

// statsBar carries the numbers shown under the title.
type statsBar struct {
	words, categories, speech int
	score, attempts           int
	accuracy                  float64
}

// renderTitle returns the styled title block or compact fallback.
func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Highlight).
		Bold(true)

	title := titleFull
	if compact {
		title = titleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(title))
}

// renderStatsBar renders the dashboard stats in a bordered box matching content width.
func renderStatsBar(sb statsBar, cw int, compact bool) string {
	wordStyle := lipgloss.NewStyle().Foreground(theme.Highlight).Bold(true)
	scoreStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	infoStyle := lipgloss.NewStyle().Foreground(theme.Info).Bold(true)

	var stats string
	if compact {
		stats = fmt.Sprintf("%s %s %s %s",
			wordStyle.Render(fmt.Sprintf("字%d", sb.words)),
			infoStyle.Render(fmt.Sprintf("▦%d", sb.categories)),
			infoStyle.Render(fmt.Sprintf("♪%d", sb.speech)),
			scoreStyle.Render(fmt.Sprintf("★%d/%d", sb.score, sb.attempts)),
		)
	} else {
		stats = fmt.Sprintf("%s  %s  %s\n%s  %s",
			wordStyle.Render(fmt.Sprintf("%d WORDS", sb.words)),
			infoStyle.Render(fmt.Sprintf("%d CATEGORIES", sb.categories)),
			infoStyle.Render(fmt.Sprintf("%d SENTENCES", sb.speech)),
			scoreStyle.Render(fmt.Sprintf("★ SCORE %d/%d", sb.score, sb.attempts)),
			scoreStyle.Render(fmt.Sprintf("%.1f%% ACCURACY", sb.accuracy)),
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Info).
		Width(cw - 2). // account for border chars
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

// renderMenu renders each menu item as a fixed-width button.
func renderMenu(items []string, selected int, cw int) string {
	var buttons []string
	for i, label := range items {
		buttons = append(buttons, components.Button(label, i == selected, buttonWidth))
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(buttons, "\n"))
}

// renderMenuCompact renders menu items as simple text lines (no borders)
// for small terminals where bordered buttons would overflow.
func renderMenuCompact(items []string, selected int, cw int) string {
	var lines []string
	for i, label := range items {
		if i == selected {
			lines = append(lines, lipgloss.NewStyle().
				Foreground(theme.BgDark).
				Background(theme.Highlight).
				Bold(true).
				Render(" "+theme.Pointer+label+" "))
		} else {
			lines = append(lines, theme.Unselected.Render("   "+label))
		}
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}

// renderSampleBanner warns that the built-in sample words are in use.
func renderSampleBanner(reason string, cw int) string {
	msg := "⚠ Word file not found, using sample words (see cihui --help)"
	if reason != "" {
		msg = "⚠ Word file could not be read, using sample words\n" + reason
	}
	return lipgloss.NewStyle().
		Foreground(theme.Accent).
		Width(cw).
		Align(lipgloss.Center).
		Render(msg)
}

// renderMascotBox renders the mascot centered in a box matching content width.
func renderMascotBox(variant MascotVariant, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(RenderMascot(variant))
}
