package random

import (
	"errors"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cihui/internal/router"
	"github.com/abhisek/cihui/internal/screen"
	notescreen "github.com/abhisek/cihui/internal/screens/notes"
	"github.com/abhisek/cihui/internal/speech"
	"github.com/abhisek/cihui/internal/ui/components"
	"github.com/abhisek/cihui/internal/ui/layout"
	"github.com/abhisek/cihui/internal/ui/theme"
	"github.com/abhisek/cihui/internal/vocab"
)

// RandomScreen shows one randomly drawn word as a flash card.
type RandomScreen struct {
	env    *screen.Env
	entry  vocab.Entry
	ok     bool
	status string
}

var _ screen.Screen = (*RandomScreen)(nil)
var _ screen.KeyHintProvider = (*RandomScreen)(nil)

// New creates a RandomScreen with a freshly drawn word.
func New(env *screen.Env) *RandomScreen {
	s := &RandomScreen{env: env}
	s.draw()
	return s
}

func (s *RandomScreen) draw() {
	s.entry, s.ok = s.env.Dataset.Random(s.env.Rand)
	s.status = ""
}

func (s *RandomScreen) Init() tea.Cmd {
	return nil
}

func (s *RandomScreen) Title() string {
	return "Random Word"
}

func (s *RandomScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Space", Description: "Another"},
		{Key: "P", Description: "Play"},
		{Key: "N", Description: "Notes"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *RandomScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.AudioDoneMsg:
		if errors.Is(msg.Err, speech.ErrUnavailable) {
			s.status = "Audio unavailable"
		} else if msg.Err != nil {
			s.status = "Audio failed"
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "space", "g":
			s.draw()
		case "p":
			if s.ok {
				return s, s.env.Say(s.entry.Word, false)
			}
		case "n":
			if s.ok {
				return s, func() tea.Msg {
					return router.PushScreenMsg{Screen: notescreen.New(s.env, s.entry)}
				}
			}
		}
	}
	return s, nil
}

func (s *RandomScreen) View(width, height int) string {
	if !s.ok {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("The word list is empty."))
	}
	cw := components.ContentWidth(width)
	card := components.EntryCard(s.entry.Word, s.entry.Transcription, s.entry.English, s.entry.Category, cw)
	parts := []string{card}
	if s.status != "" {
		parts = append(parts, "", theme.Warning.Render(s.status))
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, parts...))
}
