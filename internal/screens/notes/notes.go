package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	ainotes "github.com/abhisek/cihui/internal/notes"
	"github.com/abhisek/cihui/internal/screen"
	"github.com/abhisek/cihui/internal/ui/components"
	"github.com/abhisek/cihui/internal/ui/layout"
	"github.com/abhisek/cihui/internal/ui/theme"
	"github.com/abhisek/cihui/internal/vocab"
)

const explainTimeout = 45 * time.Second

type noteLoadedMsg struct {
	Note *ainotes.Note
	Err  error
}

// NotesScreen shows an AI-generated study note for one word.
type NotesScreen struct {
	env     *screen.Env
	entry   vocab.Entry
	note    *ainotes.Note
	loaded  bool
	errMsg  string
	playing bool
}

var _ screen.Screen = (*NotesScreen)(nil)
var _ screen.KeyHintProvider = (*NotesScreen)(nil)

// New creates a NotesScreen for entry.
func New(env *screen.Env, entry vocab.Entry) *NotesScreen {
	return &NotesScreen{env: env, entry: entry}
}

func (s *NotesScreen) Init() tea.Cmd {
	svc := s.env.Notes
	entry := s.entry
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), explainTimeout)
		defer cancel()
		n, err := svc.Explain(ctx, entry)
		return noteLoadedMsg{Note: n, Err: err}
	}
}

func (s *NotesScreen) Title() string {
	return "Notes"
}

func (s *NotesScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "P", Description: "Play word"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *NotesScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case noteLoadedMsg:
		s.loaded = true
		switch {
		case errors.Is(msg.Err, ainotes.ErrUnavailable):
			s.errMsg = "AI notes unavailable. Set an LLM API key (see cihui --help)."
		case msg.Err != nil:
			s.env.Logger().Warn("note generation failed", zap.String("word", s.entry.Word), zap.Error(msg.Err))
			s.errMsg = "Could not generate a note right now."
		default:
			s.note = msg.Note
		}
		return s, nil

	case screen.AudioDoneMsg:
		s.playing = false
		return s, nil

	case tea.KeyMsg:
		if msg.String() == "p" && !s.playing {
			s.playing = true
			return s, s.env.Say(s.entry.Word, false)
		}
	}
	return s, nil
}

func (s *NotesScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	head := components.EntryCard(s.entry.Word, s.entry.Transcription, s.entry.English, s.entry.Category, cw)

	var body string
	switch {
	case !s.loaded:
		body = theme.Hint.Render("Asking the tutor...")
	case s.errMsg != "":
		body = theme.Warning.Render(s.errMsg)
	default:
		body = renderNote(s.note, cw)
	}

	content := lipgloss.JoinVertical(lipgloss.Center, head, "", body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func renderNote(n *ainotes.Note, cw int) string {
	label := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	wrap := lipgloss.NewStyle().Width(cw).Foreground(theme.Text)

	var b strings.Builder
	b.WriteString(label.Render("Meaning") + "\n")
	b.WriteString(wrap.Render(n.Meaning) + "\n\n")
	if n.Usage != "" {
		b.WriteString(label.Render("Usage") + "\n")
		b.WriteString(wrap.Render(n.Usage) + "\n\n")
	}
	if len(n.Examples) > 0 {
		b.WriteString(label.Render("Examples") + "\n")
		for i, ex := range n.Examples {
			fmt.Fprintf(&b, "%d. %s\n", i+1, theme.Hanzi.Render(ex.Sentence))
			if ex.Transcription != "" {
				b.WriteString("   " + theme.Pinyin.Render(ex.Transcription) + "\n")
			}
			b.WriteString("   " + wrap.Width(cw-3).Render(ex.Translation) + "\n")
		}
		b.WriteString("\n")
	}
	if n.Mnemonic != "" {
		b.WriteString(label.Render("Remember it") + "\n")
		b.WriteString(wrap.Render(n.Mnemonic))
	}
	return lipgloss.NewStyle().Width(cw).Render(strings.TrimRight(b.String(), "\n"))
}
