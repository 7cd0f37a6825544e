package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/cihui/internal/quiz"
	"github.com/abhisek/cihui/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24

	CompactWidthThreshold  = 100
	CompactHeightThreshold = 30
)

const (
	appName   = "詞彙 cihui"
	hintGap   = "   "
	framePadX = 4 // border plus one space each side
)

// KeyHint represents a key binding hint shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// Status is what the header shows besides the app name.
type Status struct {
	Title    string
	Score    int
	Attempts int
}

// IsCompactWidth returns true if the terminal width is in compact range.
func IsCompactWidth(width int) bool {
	return width < CompactWidthThreshold
}

// IsCompactHeight returns true if the terminal height is in compact range.
func IsCompactHeight(height int) bool {
	return height < CompactHeightThreshold
}

// IsTooSmall returns true if the terminal is below minimum size.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks the user to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.NewStyle().
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Text).
		Width(width).
		Height(height).
		Render(fmt.Sprintf(
			"Terminal too small!\n\n%s needs at least %d x %d\n\nCurrent: %d x %d",
			appName, MinWidth, MinHeight, width, height,
		))
}

// RenderHeader renders the app name, the screen title centered and the
// running quiz tally. Accuracy is added once something was answered and
// the terminal is wide enough.
func RenderHeader(st Status, width int) string {
	left := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(" " + appName)
	center := lipgloss.NewStyle().Foreground(theme.Text).Render(st.Title)

	tally := fmt.Sprintf("★ %d/%d", st.Score, st.Attempts)
	if st.Attempts > 0 && !IsCompactWidth(width) {
		tally += fmt.Sprintf("  %.1f%%", quiz.Accuracy(st.Score, st.Attempts))
	}
	right := lipgloss.NewStyle().Foreground(theme.Accent).Render(tally + " ")

	inner := max(width-framePadX, 0)
	leftGap := max((inner-lipgloss.Width(center))/2-lipgloss.Width(left), 1)
	rightGap := max(inner-lipgloss.Width(left)-leftGap-lipgloss.Width(center)-lipgloss.Width(right), 1)

	return bar(left+strings.Repeat(" ", leftGap)+center+strings.Repeat(" ", rightGap)+right, width)
}

// RenderFooter renders as many key hints as fit on one line, in order.
func RenderFooter(hints []KeyHint, width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)

	avail := max(width-framePadX-2, 0)
	var line string
	for i, h := range hints {
		part := key.Render(h.Key) + " " + desc.Render(h.Description)
		if i > 0 {
			part = hintGap + part
		}
		if lipgloss.Width(line)+lipgloss.Width(part) > avail {
			break
		}
		line += part
	}
	return bar("  "+line, width)
}

// RenderFrame stacks header, content and footer, giving the content
// whatever height is left.
func RenderFrame(header, content, footer string, width, height int) string {
	contentHeight := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	body := lipgloss.NewStyle().
		Width(width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func bar(content string, width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(content)
}
