package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/cihui/internal/quiz"
	"github.com/abhisek/cihui/internal/ui/theme"
)

const (
	accuracyLabelWidth = 14
	accuracyTallyWidth = 16 // "  12/20  60.0%"
)

// AccuracyBar shows how many answers in a category were correct.
type AccuracyBar struct {
	Label    string
	Correct  int
	Attempts int
	Width    int
}

// NewAccuracyBar creates a bar for correct out of attempts.
func NewAccuracyBar(label string, correct, attempts, width int) AccuracyBar {
	return AccuracyBar{Label: label, Correct: correct, Attempts: attempts, Width: width}
}

// Accuracy returns the rounded percentage shown next to the bar.
func (a AccuracyBar) Accuracy() float64 {
	return quiz.Accuracy(a.Correct, a.Attempts)
}

// View renders the label, the bar and the tally on one line.
func (a AccuracyBar) View() string {
	label := lipgloss.NewStyle().
		Width(accuracyLabelWidth).
		MaxWidth(accuracyLabelWidth).
		Foreground(theme.Text).
		Render(a.Label)

	barWidth := max(a.Width-accuracyLabelWidth-accuracyTallyWidth, 4)
	filled := 0
	if a.Attempts > 0 {
		filled = min(barWidth*a.Correct/a.Attempts, barWidth)
	}

	fill := theme.Error
	switch acc := a.Accuracy(); {
	case acc >= 80:
		fill = theme.Success
	case acc >= 50:
		fill = theme.Accent
	}

	bar := lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled))

	tally := theme.Hint.Width(accuracyTallyWidth).Render(fmt.Sprintf("  %d/%d  %.1f%%", a.Correct, a.Attempts, a.Accuracy()))
	return label + bar + tally
}
