package quiz

import (
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	qz "github.com/abhisek/cihui/internal/quiz"
	"github.com/abhisek/cihui/internal/router"
	"github.com/abhisek/cihui/internal/screen"
	notescreen "github.com/abhisek/cihui/internal/screens/notes"
	"github.com/abhisek/cihui/internal/speech"
	"github.com/abhisek/cihui/internal/ui/components"
	"github.com/abhisek/cihui/internal/ui/layout"
	"github.com/abhisek/cihui/internal/vocab"
)

// QuizScreen runs multiple-choice questions against the shared quiz state.
type QuizScreen struct {
	env        *screen.Env
	categories []string
	catIdx     int
	difficulty qz.Difficulty

	mc       components.MultiChoice
	mcActive bool
	shownAt  time.Time
	result   *qz.Result
	empty    bool
	status   string
	now      func() time.Time
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)

// New creates a QuizScreen. The category and difficulty selectors start
// from the shared state's last selection, and an unanswered question
// carried over in that state is shown again.
func New(env *screen.Env) *QuizScreen {
	s := &QuizScreen{
		env:        env,
		categories: env.Dataset.QuizCategories(),
		difficulty: env.State.Difficulty(),
		now:        time.Now,
	}
	for i, c := range s.categories {
		if c == env.State.Category() {
			s.catIdx = i
		}
	}
	if q := env.State.Question(); q != nil {
		s.showQuestion(q)
		if env.State.Answered() {
			s.mc.Submitted = true
			s.mc.ChosenIndex = indexOf(q.Choices, env.State.Chosen())
			s.result = &qz.Result{
				Correct:       env.State.Chosen() == q.CorrectChoice,
				CorrectChoice: q.CorrectChoice,
			}
		}
	}
	return s
}

func (s *QuizScreen) Init() tea.Cmd {
	return nil
}

func (s *QuizScreen) Title() string {
	return "Quiz"
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "C", Description: "Category"},
		{Key: "D", Description: "Difficulty"},
		{Key: "Space", Description: "New question"},
	}
	switch s.env.State.Phase() {
	case qz.PhaseUnanswered:
		hints = append(hints,
			layout.KeyHint{Key: "1-4", Description: "Answer"},
			layout.KeyHint{Key: "P", Description: "Play"},
		)
	case qz.PhaseAnswered:
		hints = append(hints,
			layout.KeyHint{Key: "P", Description: "Play"},
			layout.KeyHint{Key: "N", Description: "Notes"},
		)
	}
	return append(hints,
		layout.KeyHint{Key: "R", Description: "Reset"},
		layout.KeyHint{Key: "Esc", Description: "Back"},
	)
}

// Category returns the selected category filter.
func (s *QuizScreen) Category() string {
	if len(s.categories) == 0 {
		return vocab.AllCategories
	}
	return s.categories[s.catIdx]
}

// Difficulty returns the selected difficulty.
func (s *QuizScreen) Difficulty() qz.Difficulty {
	return s.difficulty
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.AudioDoneMsg:
		switch {
		case errors.Is(msg.Err, speech.ErrUnavailable):
			s.status = "Audio unavailable"
		case msg.Err != nil:
			s.status = "Audio failed"
		}
		return s, nil

	case screen.PersistedMsg:
		if msg.Err != nil {
			s.status = "Could not save progress"
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "c":
		if len(s.categories) > 0 {
			s.catIdx = (s.catIdx + 1) % len(s.categories)
		}
		s.env.State.SetSelection(s.Category(), s.difficulty)
		return s, nil
	case "d":
		s.difficulty = s.difficulty.Next()
		s.env.State.SetSelection(s.Category(), s.difficulty)
		return s, nil
	case "space", "g":
		return s, s.newQuestion()
	case "r":
		qz.Reset(s.env.State)
		s.mcActive = false
		s.result = nil
		s.empty = false
		s.status = "Progress reset"
		return s, s.env.EndQuiz()
	case "p":
		if e, ok := s.env.State.ActiveEntry(); ok {
			s.status = ""
			return s, s.env.Say(e.Word, false)
		}
		return s, nil
	case "n":
		if s.env.State.Phase() == qz.PhaseAnswered {
			e, _ := s.env.State.ActiveEntry()
			return s, func() tea.Msg {
				return router.PushScreenMsg{Screen: notescreen.New(s.env, e)}
			}
		}
		return s, nil
	}

	if !s.mcActive || s.mc.Submitted {
		return s, nil
	}
	s.mc, _ = s.mc.Update(msg)
	if s.mc.Submitted {
		return s, s.submit(s.mc.Chosen())
	}
	return s, nil
}

func (s *QuizScreen) newQuestion() tea.Cmd {
	s.result = nil
	s.status = ""
	q, err := s.env.Engine.NewQuestion(s.env.State, s.env.Dataset.Entries(), s.Category(), s.difficulty)
	if errors.Is(err, qz.ErrEmptyPool) {
		s.empty = true
		s.mcActive = false
		return nil
	}
	if err != nil {
		s.env.Logger().Error("question generation failed", zap.Error(err))
		s.status = err.Error()
		return nil
	}
	s.empty = false
	s.showQuestion(q)
	return s.env.BeginQuiz(s.Category(), s.difficulty)
}

func (s *QuizScreen) showQuestion(q *qz.Question) {
	s.mc = components.NewMultiChoice("", q.Choices, q.CorrectIndex())
	s.mcActive = true
	s.shownAt = s.now()
}

func (s *QuizScreen) submit(chosen string) tea.Cmd {
	q := s.env.State.Question()
	res, err := qz.Submit(s.env.State, chosen)
	if err != nil {
		s.status = err.Error()
		return nil
	}
	s.result = &res
	return s.env.RecordAnswer(q, s.env.State.Difficulty(), chosen, res, s.now().Sub(s.shownAt))
}

func indexOf(items []string, v string) int {
	for i, it := range items {
		if it == v {
			return i
		}
	}
	return -1
}
