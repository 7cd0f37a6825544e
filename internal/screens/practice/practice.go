package practice

import (
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	drill "github.com/abhisek/cihui/internal/practice"
	"github.com/abhisek/cihui/internal/screen"
	"github.com/abhisek/cihui/internal/speech"
	"github.com/abhisek/cihui/internal/ui/components"
	"github.com/abhisek/cihui/internal/ui/layout"
	"github.com/abhisek/cihui/internal/ui/theme"
)

// PracticeScreen builds short speeches from the speech sentences and reads
// them aloud.
type PracticeScreen struct {
	env      *screen.Env
	settings drill.Settings
	speech   *drill.Speech
	errMsg   string
	status   string
	playing  bool
}

var _ screen.Screen = (*PracticeScreen)(nil)
var _ screen.KeyHintProvider = (*PracticeScreen)(nil)

// New creates a PracticeScreen with a first speech already built.
func New(env *screen.Env) *PracticeScreen {
	s := &PracticeScreen{env: env, settings: env.Practice.Normalize()}
	s.build()
	return s
}

// Settings returns the active practice settings.
func (s *PracticeScreen) Settings() drill.Settings {
	return s.settings
}

func (s *PracticeScreen) build() {
	s.errMsg = ""
	sp, err := drill.Build(s.env.Dataset, s.settings, s.env.Rand)
	if errors.Is(err, drill.ErrNoSpeechEntries) {
		s.speech = nil
		s.errMsg = "No speech sentences in the word list"
		return
	}
	if err != nil {
		s.speech = nil
		s.errMsg = err.Error()
		return
	}
	s.speech = sp
}

func (s *PracticeScreen) Init() tea.Cmd {
	return nil
}

func (s *PracticeScreen) Title() string {
	return "Speech Practice"
}

func (s *PracticeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Space", Description: "New speech"},
		{Key: "P", Description: "Play"},
		{Key: "S", Description: "Slow"},
		{Key: "T", Description: "Pinyin"},
		{Key: "+/-", Description: "Sentences"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *PracticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.AudioDoneMsg:
		s.playing = false
		switch {
		case errors.Is(msg.Err, speech.ErrUnavailable):
			s.status = "Audio unavailable"
		case msg.Err != nil:
			s.status = "Audio failed"
		default:
			s.status = ""
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "space", "g":
			s.build()
		case "s":
			s.settings.Slow = !s.settings.Slow
			s.syncSettings()
		case "t":
			s.settings.IncludeTranscription = !s.settings.IncludeTranscription
			s.syncSettings()
		case "+", "=":
			s.resize(1)
		case "-":
			s.resize(-1)
		case "p":
			if s.speech != nil && !s.playing {
				s.playing = true
				s.status = "Playing..."
				return s, s.env.Say(s.speech.Text(), s.settings.Slow)
			}
		}
	}
	return s, nil
}

// syncSettings applies display toggles to the current speech without
// drawing new sentences.
func (s *PracticeScreen) syncSettings() {
	if s.speech != nil {
		s.speech.Settings.Slow = s.settings.Slow
		s.speech.Settings.IncludeTranscription = s.settings.IncludeTranscription
	}
}

func (s *PracticeScreen) resize(delta int) {
	before := s.settings.Sentences
	s.settings.Sentences += delta
	s.settings = s.settings.Normalize()
	if s.settings.Sentences != before {
		s.build()
	}
}

func (s *PracticeScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	speed := "normal"
	if s.settings.Slow {
		speed = "slow"
	}
	pinyin := "off"
	if s.settings.IncludeTranscription {
		pinyin = "on"
	}
	settings := theme.Hint.Render(fmt.Sprintf("Sentences: %d   Speed: %s   Pinyin: %s",
		s.settings.Sentences, speed, pinyin))

	var body string
	if s.errMsg != "" {
		body = theme.Warning.Render(s.errMsg)
	} else {
		body = components.Card(s.renderSpeech(cw-6), cw)
	}

	parts := []string{settings, "", body}
	if s.status != "" {
		parts = append(parts, "", theme.Hint.Render(s.status))
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, parts...))
}

func (s *PracticeScreen) renderSpeech(w int) string {
	wrap := lipgloss.NewStyle().Width(w)
	var b strings.Builder
	for i, line := range s.speech.Lines() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(wrap.Render(theme.Hanzi.Render(line.Word)) + "\n")
		if line.Transcription != "" {
			b.WriteString(wrap.Render(theme.Pinyin.Render(line.Transcription)) + "\n")
		}
		b.WriteString(wrap.Render(theme.Body.Render(line.English)) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
