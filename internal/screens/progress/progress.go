package progress

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/cihui/internal/notes"
	"github.com/abhisek/cihui/internal/quiz"
	"github.com/abhisek/cihui/internal/screen"
	"github.com/abhisek/cihui/internal/store"
	"github.com/abhisek/cihui/internal/ui/components"
	"github.com/abhisek/cihui/internal/ui/layout"
	"github.com/abhisek/cihui/internal/ui/theme"
)

const (
	missedLimit   = 5
	sessionLimit  = 5
	reviewTimeout = 45 * time.Second
)

type statsLoadedMsg struct {
	Stats    *store.AnswerStats
	Missed   []store.MissedWord
	Sessions []store.SessionSummary
	Err      error
}

type reviewLoadedMsg struct {
	Review *notes.Review
	Err    error
}

// ProgressScreen shows the running session tally and all-time statistics.
type ProgressScreen struct {
	env       *screen.Env
	stats     *store.AnswerStats
	missed    []store.MissedWord
	sessions  []store.SessionSummary
	loaded    bool
	errMsg    string
	review    *notes.Review
	reviewing bool
	reviewMsg string
}

var _ screen.Screen = (*ProgressScreen)(nil)
var _ screen.KeyHintProvider = (*ProgressScreen)(nil)

// New creates a ProgressScreen.
func New(env *screen.Env) *ProgressScreen {
	return &ProgressScreen{env: env}
}

func (s *ProgressScreen) Init() tea.Cmd {
	repo := s.env.Events
	if repo == nil {
		s.loaded = true
		return nil
	}
	return func() tea.Msg {
		ctx := context.Background()

		stats, err := repo.AnswerStats(ctx)
		if err != nil {
			return statsLoadedMsg{Err: err}
		}
		missed, err := repo.MostMissed(ctx, missedLimit)
		if err != nil {
			return statsLoadedMsg{Err: err}
		}
		sessions, err := repo.QuerySessionSummaries(ctx, store.QueryOpts{Limit: sessionLimit})
		if err != nil {
			return statsLoadedMsg{Err: err}
		}
		return statsLoadedMsg{Stats: stats, Missed: missed, Sessions: sessions}
	}
}

func (s *ProgressScreen) Title() string {
	return "Progress"
}

func (s *ProgressScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{}
	if len(s.missed) > 0 {
		hints = append(hints, layout.KeyHint{Key: "V", Description: "AI review"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (s *ProgressScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.env.Logger().Warn("failed to load progress", zap.Error(msg.Err))
			s.errMsg = "Could not load saved progress"
			return s, nil
		}
		s.stats = msg.Stats
		s.missed = msg.Missed
		s.sessions = msg.Sessions
		return s, nil

	case reviewLoadedMsg:
		s.reviewing = false
		switch {
		case errors.Is(msg.Err, notes.ErrUnavailable):
			s.reviewMsg = "AI notes unavailable"
		case errors.Is(msg.Err, notes.ErrNothingToReview):
			s.reviewMsg = "Nothing to review yet"
		case msg.Err != nil:
			s.env.Logger().Warn("review generation failed", zap.Error(msg.Err))
			s.reviewMsg = "Could not generate a review right now"
		default:
			s.review = msg.Review
			s.reviewMsg = ""
		}
		return s, nil

	case tea.KeyMsg:
		if msg.String() == "v" && !s.reviewing && len(s.missed) > 0 {
			s.reviewing = true
			s.reviewMsg = "Asking the tutor..."
			return s, s.loadReview()
		}
	}
	return s, nil
}

func (s *ProgressScreen) loadReview() tea.Cmd {
	svc := s.env.Notes
	missed, stats := s.missed, s.stats
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), reviewTimeout)
		defer cancel()
		r, err := svc.Review(ctx, missed, stats)
		return reviewLoadedMsg{Review: r, Err: err}
	}
}

func (s *ProgressScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	label := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)

	st := s.env.State
	sections := []string{
		label.Render("This session"),
		fmt.Sprintf("Score: %d/%d   Accuracy: %.1f%%", st.Score(), st.Attempts(), st.Accuracy()),
	}

	switch {
	case !s.loaded:
		sections = append(sections, "", theme.Hint.Render("Loading..."))
	case s.errMsg != "":
		sections = append(sections, "", theme.Warning.Render(s.errMsg))
	case s.stats != nil:
		sections = append(sections, "", s.renderAllTime(cw, label))
	}

	if len(s.missed) > 0 {
		sections = append(sections, "", label.Render("Most missed"))
		for _, m := range s.missed {
			sections = append(sections, fmt.Sprintf("%s  %s  ×%d",
				theme.Hanzi.Render(m.Word), m.English, m.Misses))
		}
	}

	if s.review != nil {
		sections = append(sections, "", label.Render("Tutor review"), renderReview(s.review, cw))
	} else if s.reviewMsg != "" {
		sections = append(sections, "", theme.Hint.Render(s.reviewMsg))
	}

	content := lipgloss.NewStyle().Width(cw).Render(strings.Join(sections, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (s *ProgressScreen) renderAllTime(cw int, label lipgloss.Style) string {
	lines := []string{
		label.Render("All time"),
		fmt.Sprintf("Answers: %d   Correct: %d   Accuracy: %.1f%%   Sessions: %d",
			s.stats.Attempts, s.stats.Correct,
			quiz.Accuracy(s.stats.Correct, s.stats.Attempts), s.stats.Sessions),
	}
	for _, c := range s.stats.Categories {
		lines = append(lines, components.NewAccuracyBar(c.Category, c.Correct, c.Attempts, cw).View())
	}
	if len(s.sessions) > 0 {
		lines = append(lines, "", label.Render("Recent sessions"))
		for _, ss := range s.sessions {
			lines = append(lines, fmt.Sprintf("%s  %-10s %-6s %d/%d",
				ss.Timestamp.Format("Jan 02 15:04"), ss.Category, ss.Difficulty,
				ss.CorrectAnswers, ss.QuestionsServed))
		}
	}
	return strings.Join(lines, "\n")
}

func renderReview(r *notes.Review, cw int) string {
	wrap := lipgloss.NewStyle().Width(cw)
	parts := []string{wrap.Render(r.Summary)}
	for _, c := range r.Confusions {
		parts = append(parts, wrap.Render("• "+c))
	}
	for _, tip := range r.Tips {
		parts = append(parts, wrap.Render("→ "+tip))
	}
	return strings.Join(parts, "\n")
}
