package home

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/cihui/internal/router"
	"github.com/abhisek/cihui/internal/screen"
	"github.com/abhisek/cihui/internal/screens/learn"
	"github.com/abhisek/cihui/internal/screens/practice"
	"github.com/abhisek/cihui/internal/screens/progress"
	quizscreen "github.com/abhisek/cihui/internal/screens/quiz"
	"github.com/abhisek/cihui/internal/screens/random"
	"github.com/abhisek/cihui/internal/ui/components"
	"github.com/abhisek/cihui/internal/ui/layout"
)

// Menu labels in display order.
const (
	MenuLearn    = "LEARN WORDS"
	MenuQuiz     = "QUIZ"
	MenuPractice = "SPEECH PRACTICE"
	MenuProgress = "PROGRESS"
	MenuRandom   = "RANDOM WORD"
	MenuQuit     = "QUIT"
)

// HomeScreen is the main home screen of the application.
type HomeScreen struct {
	env  *screen.Env
	menu components.Menu
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(env *screen.Env) *HomeScreen {
	push := func(factory func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: factory()}
			}
		}
	}

	items := []components.MenuItem{
		{Label: MenuLearn, Hotkey: "l", Action: push(func() screen.Screen { return learn.New(env) })},
		{Label: MenuQuiz, Hotkey: "z", Action: push(func() screen.Screen { return quizscreen.New(env) })},
		{Label: MenuPractice, Hotkey: "s", Action: push(func() screen.Screen { return practice.New(env) })},
		{Label: MenuProgress, Hotkey: "p", Action: push(func() screen.Screen { return progress.New(env) })},
		{Label: MenuRandom, Hotkey: "r", Action: push(func() screen.Screen { return random.New(env) })},
		{Label: MenuQuit, Hotkey: "q", Action: func() tea.Cmd { return tea.Quit }},
	}

	return &HomeScreen{
		env:  env,
		menu: components.NewMenu(items),
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; estimate full terminal height
	// by adding back header (3) + footer (3) + frame gaps
	termHeight := height + 8
	compact := layout.IsCompactHeight(termHeight) || layout.IsCompactWidth(width)

	cw := components.ContentWidth(width)
	stats := h.env.Dataset.Stats()
	st := h.env.State

	var sections []string
	sections = append(sections, renderTitle(cw, compact))
	if !compact {
		sections = append(sections, renderMascotBox(mascotFor(st, h.env.UsedSample), cw))
	}
	if h.env.UsedSample {
		sections = append(sections, renderSampleBanner(h.env.SampleReason, cw))
	}
	sections = append(sections, renderStatsBar(statsBar{
		words:      stats.TotalWords,
		categories: stats.Categories,
		speech:     stats.SpeechSentences,
		score:      st.Score(),
		attempts:   st.Attempts(),
		accuracy:   st.Accuracy(),
	}, cw, compact))

	if compact {
		sections = append(sections, renderMenuCompact(h.menu.Labels(), h.menu.Selected, cw))
	} else {
		sections = append(sections, renderMenu(h.menu.Labels(), h.menu.Selected, cw))
	}

	return components.Frame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "L/Z/S/P/R", Description: "Jump"},
		{Key: "Q", Description: "Quit"},
	}
}
