package screen

import (
	"context"
	"math/rand/v2"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/cihui/internal/notes"
	"github.com/abhisek/cihui/internal/practice"
	"github.com/abhisek/cihui/internal/quiz"
	"github.com/abhisek/cihui/internal/speech"
	"github.com/abhisek/cihui/internal/store"
	"github.com/abhisek/cihui/internal/vocab"
)

const (
	audioTimeout   = time.Minute
	persistTimeout = 5 * time.Second
)

// Env carries the services shared by every screen of one TUI run. The
// quiz state lives here so the header and the quiz screen see the same
// tally.
type Env struct {
	Dataset  *vocab.Dataset
	Engine   *quiz.Engine
	State    *quiz.State
	Speaker  *speech.Speaker
	Notes    *notes.Service
	Events   store.EventRepo
	Practice practice.Settings
	Rand     *rand.Rand
	Log      *zap.Logger

	// UsedSample is set when the word file is missing or could not be
	// read and the built-in sample list is in use. SampleReason holds the
	// read error in the latter case.
	UsedSample   bool
	SampleReason string

	session *quizSession
}

type quizSession struct {
	id         string
	started    time.Time
	category   string
	difficulty string
	served     int
	correct    int
}

// AudioDoneMsg reports the end of a playback started with Env.Say.
type AudioDoneMsg struct {
	Err error
}

// PersistedMsg reports the outcome of an event write.
type PersistedMsg struct {
	Err error
}

// Logger returns the configured logger or a no-op one.
func (e *Env) Logger() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}

// Say synthesizes and plays text in the background.
func (e *Env) Say(text string, slow bool) tea.Cmd {
	sp := e.Speaker
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), audioTimeout)
		defer cancel()
		return AudioDoneMsg{Err: sp.Say(ctx, speech.Request{Text: text, Slow: slow})}
	}
}

// SessionID returns the id of the open quiz session, or "".
func (e *Env) SessionID() string {
	if e.session == nil {
		return ""
	}
	return e.session.id
}

// BeginQuiz opens a quiz session if none is open and records its start.
func (e *Env) BeginQuiz(category string, d quiz.Difficulty) tea.Cmd {
	if e.session != nil {
		return nil
	}
	e.openSession(category, d)
	data := e.session.startEvent()
	return e.persist(func(ctx context.Context, repo store.EventRepo) error {
		return repo.AppendSessionEvent(ctx, data)
	})
}

func (e *Env) openSession(category string, d quiz.Difficulty) {
	e.session = &quizSession{
		id:         uuid.NewString(),
		started:    time.Now(),
		category:   category,
		difficulty: d.String(),
	}
}

func (s *quizSession) startEvent() store.SessionEventData {
	return store.SessionEventData{
		SessionID:  s.id,
		Action:     store.ActionStart,
		Category:   s.category,
		Difficulty: s.difficulty,
	}
}

// RecordAnswer counts a scored submission against the open session and
// persists it.
func (e *Env) RecordAnswer(q *quiz.Question, d quiz.Difficulty, chosen string, res quiz.Result, latency time.Duration) tea.Cmd {
	var start *store.SessionEventData
	if e.session == nil {
		e.openSession(q.Entry.Category, d)
		ev := e.session.startEvent()
		start = &ev
	}
	e.session.served++
	if res.Correct {
		e.session.correct++
	}
	data := store.AnswerEventData{
		SessionID:     e.session.id,
		Word:          q.Entry.Word,
		English:       q.Entry.English,
		Category:      q.Entry.Category,
		Difficulty:    d.String(),
		OptionCount:   len(q.Choices),
		CorrectChoice: res.CorrectChoice,
		Chosen:        chosen,
		Correct:       res.Correct,
		LatencyMs:     latency.Milliseconds(),
	}
	return e.persist(func(ctx context.Context, repo store.EventRepo) error {
		if start != nil {
			if err := repo.AppendSessionEvent(ctx, *start); err != nil {
				return err
			}
		}
		return repo.AppendAnswerEvent(ctx, data)
	})
}

// EndQuiz closes the open session and records its totals. It is a no-op
// when no session is open.
func (e *Env) EndQuiz() tea.Cmd {
	s := e.session
	if s == nil {
		return nil
	}
	e.session = nil
	data := store.SessionEventData{
		SessionID:       s.id,
		Action:          store.ActionEnd,
		Category:        s.category,
		Difficulty:      s.difficulty,
		QuestionsServed: s.served,
		CorrectAnswers:  s.correct,
		DurationSecs:    int(time.Since(s.started).Seconds()),
	}
	return e.persist(func(ctx context.Context, repo store.EventRepo) error {
		return repo.AppendSessionEvent(ctx, data)
	})
}

func (e *Env) persist(fn func(context.Context, store.EventRepo) error) tea.Cmd {
	repo := e.Events
	if repo == nil {
		return nil
	}
	log := e.Logger()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		err := fn(ctx, repo)
		if err != nil {
			log.Warn("failed to persist quiz event", zap.Error(err))
		}
		return PersistedMsg{Err: err}
	}
}
