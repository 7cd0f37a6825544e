package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/cihui/internal/ui/components"
	"github.com/abhisek/cihui/internal/ui/theme"
)

func (s *QuizScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	sections := []string{
		s.renderSelectors(),
		s.renderScore(),
	}

	switch {
	case s.empty:
		sections = append(sections, theme.Warning.Render("No words in this category"))
	case s.mcActive:
		sections = append(sections, s.renderQuestion(cw))
	default:
		sections = append(sections, theme.Hint.Render("Press space to get a question"))
	}

	if s.result != nil {
		if s.result.Correct {
			sections = append(sections, theme.Correct.Render(s.result.Message()))
		} else {
			sections = append(sections, theme.Incorrect.Render(s.result.Message()))
		}
	}
	if s.status != "" {
		sections = append(sections, theme.Hint.Render(s.status))
	}

	content := strings.Join(sections, "\n\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (s *QuizScreen) renderSelectors() string {
	label := lipgloss.NewStyle().Foreground(theme.TextDim)
	value := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	return fmt.Sprintf("%s %s    %s %s (%d options)",
		label.Render("Category:"), value.Render(s.Category()),
		label.Render("Difficulty:"), value.Render(s.difficulty.String()),
		s.difficulty.OptionCount(),
	)
}

func (s *QuizScreen) renderScore() string {
	st := s.env.State
	return lipgloss.NewStyle().Foreground(theme.Text).Render(
		fmt.Sprintf("Score: %d/%d  Accuracy: %.1f%%", st.Score(), st.Attempts(), st.Accuracy()))
}

func (s *QuizScreen) renderQuestion(cw int) string {
	e, ok := s.env.State.ActiveEntry()
	if !ok {
		return ""
	}
	prompt := lipgloss.JoinVertical(lipgloss.Center,
		theme.Body.Render("What does this mean?"),
		"",
		theme.Hanzi.Render(e.Word),
		theme.Pinyin.Render(e.Transcription),
	)
	card := components.Card(prompt, cw)
	return lipgloss.JoinVertical(lipgloss.Left, card, "", s.mc.View())
}
