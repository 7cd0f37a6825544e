package learn

import (
	"errors"
	"fmt"
	"strings"

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

// LearnScreen browses the word list with a category filter and search.
type LearnScreen struct {
	env        *screen.Env
	categories []string
	catIdx     int
	search     components.TextInput
	results    []vocab.Entry
	selected   int
	offset     int
	status     string
}

var _ screen.Screen = (*LearnScreen)(nil)
var _ screen.KeyHintProvider = (*LearnScreen)(nil)

// New creates a LearnScreen showing every word.
func New(env *screen.Env) *LearnScreen {
	s := &LearnScreen{
		env:        env,
		categories: append([]string{vocab.AllCategories}, env.Dataset.Categories()...),
		search:     components.NewTextInput("search words, pinyin or English", 40),
	}
	s.search.Blur()
	s.refresh()
	return s
}

func (s *LearnScreen) Init() tea.Cmd {
	return nil
}

func (s *LearnScreen) Title() string {
	return "Learn Words"
}

func (s *LearnScreen) KeyHints() []layout.KeyHint {
	if s.search.Focused() {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Done"},
			{Key: "Tab", Description: "Category"},
		}
	}
	return []layout.KeyHint{
		{Key: "/", Description: "Search"},
		{Key: "Tab", Description: "Category"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Play"},
		{Key: "N", Description: "Notes"},
		{Key: "Esc", Description: "Back"},
	}
}

// Category returns the active category filter.
func (s *LearnScreen) Category() string {
	return s.categories[s.catIdx]
}

// Results returns the entries currently listed.
func (s *LearnScreen) Results() []vocab.Entry {
	return s.results
}

func (s *LearnScreen) refresh() {
	s.results = s.env.Dataset.Filter(s.Category(), s.search.Value())
	s.selected = 0
	s.offset = 0
}

func (s *LearnScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.AudioDoneMsg:
		switch {
		case errors.Is(msg.Err, speech.ErrUnavailable):
			s.status = "Audio unavailable"
		case msg.Err != nil:
			s.status = "Audio failed"
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.search.Focused() {
		var cmd tea.Cmd
		s.search, cmd = s.search.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *LearnScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "tab":
		s.catIdx = (s.catIdx + 1) % len(s.categories)
		s.refresh()
		return s, nil
	case "shift+tab":
		s.catIdx = (s.catIdx - 1 + len(s.categories)) % len(s.categories)
		s.refresh()
		return s, nil
	}

	if s.search.Focused() {
		if msg.String() == "enter" {
			s.search.Blur()
			return s, nil
		}
		before := s.search.Value()
		var cmd tea.Cmd
		s.search, cmd = s.search.Update(msg)
		if s.search.Value() != before {
			s.refresh()
		}
		return s, cmd
	}

	switch msg.String() {
	case "/":
		return s, s.search.Focus()
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(s.results)-1 {
			s.selected++
		}
	case "enter", "p":
		if e, ok := s.current(); ok {
			s.status = ""
			return s, s.env.Say(e.Word, false)
		}
	case "n":
		if e, ok := s.current(); ok {
			return s, func() tea.Msg {
				return router.PushScreenMsg{Screen: notescreen.New(s.env, e)}
			}
		}
	}
	return s, nil
}

func (s *LearnScreen) current() (vocab.Entry, bool) {
	if s.selected < 0 || s.selected >= len(s.results) {
		return vocab.Entry{}, false
	}
	return s.results[s.selected], true
}

func (s *LearnScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString(s.renderTabs(width) + "\n\n")
	b.WriteString(s.search.View() + "\n\n")
	b.WriteString(theme.Hint.Render(fmt.Sprintf("Showing %d words", len(s.results))) + "\n\n")

	// tabs, search, count and status lines
	rows := height - 9
	if rows < 3 {
		rows = 3
	}
	if s.selected < s.offset {
		s.offset = s.selected
	}
	if s.selected >= s.offset+rows {
		s.offset = s.selected - rows + 1
	}

	end := min(s.offset+rows, len(s.results))
	for i := s.offset; i < end; i++ {
		b.WriteString(renderRow(s.results[i], i == s.selected, width) + "\n")
	}

	if s.status != "" {
		b.WriteString("\n" + theme.Warning.Render(s.status))
	}

	return lipgloss.NewStyle().Padding(0, 2).Render(b.String())
}

func (s *LearnScreen) renderTabs(width int) string {
	var tabs []string
	for i, c := range s.categories {
		if i == s.catIdx {
			tabs = append(tabs, theme.Selected.Render("["+c+"]"))
		} else {
			tabs = append(tabs, theme.Unselected.Render(" "+c+" "))
		}
	}
	return lipgloss.NewStyle().Width(width - 4).Render(strings.Join(tabs, " "))
}

func renderRow(e vocab.Entry, selected bool, width int) string {
	prefix := "  "
	if selected {
		prefix = theme.Pointer
	}
	word := lipgloss.NewStyle().Width(14).Render(theme.Hanzi.Render(e.Word))
	pinyin := lipgloss.NewStyle().Width(20).Render(theme.Pinyin.Render(e.Transcription))
	gloss := e.English
	if !layout.IsCompactWidth(width) {
		gloss += "  " + theme.Hint.Render(e.Category)
	}
	line := prefix + word + pinyin + gloss
	if selected {
		return lipgloss.NewStyle().Bold(true).Render(line)
	}
	return line
}
