package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/cihui/internal/router"
	"github.com/abhisek/cihui/internal/screen"
	"github.com/abhisek/cihui/internal/screens/home"
	quizscreen "github.com/abhisek/cihui/internal/screens/quiz"
	"github.com/abhisek/cihui/internal/screens/welcome"
	"github.com/abhisek/cihui/internal/store"
	"github.com/abhisek/cihui/internal/ui/layout"
)

// Options configures one TUI run.
type Options struct {
	Env          *screen.Env
	SnapshotRepo store.SnapshotRepo

	// StartInQuiz opens the quiz screen on top of home, skipping the splash.
	StartInQuiz bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	env    *screen.Env
	width  int
	height int
}

// newAppModel creates a new AppModel with the splash or quiz screen.
func newAppModel(opts Options) AppModel {
	env := opts.Env
	homeFactory := func() screen.Screen { return home.New(env) }

	m := AppModel{env: env}
	if opts.StartInQuiz {
		m.router = router.New(homeFactory())
		m.router.Push(quizscreen.New(env))
		return m
	}
	m.router = router.New(welcome.New(homeFactory, env.Dataset.Source()))
	return m
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render composes header, active screen and footer for the current size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := strings.Join(m.router.Trail(), " › ")

	header := layout.RenderHeader(layout.Status{
		Title:    title,
		Score:    m.env.State.Score(),
		Attempts: m.env.State.Attempts(),
	}, m.width)

	var footerHints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		footerHints = p.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run restores the saved quiz state, starts the Bubble Tea program and
// persists the session when it exits.
func Run(ctx context.Context, opts Options) error {
	env := opts.Env
	log := env.Logger()

	if env.State == nil {
		st, err := RestoreState(ctx, opts.SnapshotRepo)
		if err != nil {
			log.Warn("discarding saved quiz state", zap.Error(err))
		}
		env.State = st
	}

	p := tea.NewProgram(newAppModel(opts), tea.WithContext(ctx))
	_, runErr := p.Run()
	if runErr != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", runErr)
	}

	// The program has stopped, so session bookkeeping runs inline.
	if end := env.EndQuiz(); end != nil {
		end()
	}
	if err := SaveState(context.WithoutCancel(ctx), opts.SnapshotRepo, env.State); err != nil {
		log.Error("failed to save quiz state", zap.Error(err))
	}
	return runErr
}
