// Package quiz generates multiple-choice vocabulary questions and keeps
// the running score. All operations take a caller-owned *State.
package quiz

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/abhisek/cihui/internal/vocab"
)

// Engine samples questions from a vocabulary pool. It is safe for
// concurrent use; states passed to it are not.
type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine creates an engine drawing from rng. A nil rng uses a
// time-seeded source.
func NewEngine(rng *rand.Rand) *Engine {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	return &Engine{rng: rng}
}

// Eligible returns the entries a question may be drawn from: speech
// entries are never quizzed, and unless category is "All" (or empty) only
// entries in exactly that category remain.
func Eligible(pool []vocab.Entry, category string) []vocab.Entry {
	all := category == "" || category == vocab.AllCategories
	var out []vocab.Entry
	for _, e := range pool {
		if e.IsSpeech() {
			continue
		}
		if !all && e.Category != category {
			continue
		}
		out = append(out, e)
	}
	return out
}

// NewQuestion replaces the active question in st with one drawn from pool.
//
// The correct entry is sampled uniformly. Distractors are sampled without
// replacement from the other eligible entries, skipping any whose gloss
// equals the correct gloss or one already chosen, until
// min(OptionCount-1, len(eligible)-1) are collected or candidates run
// out. Small pools therefore yield fewer choices than the difficulty
// names. On an empty pool the active question is cleared and ErrEmptyPool
// returned; score and attempts are never touched.
func (e *Engine) NewQuestion(st *State, pool []vocab.Entry, category string, d Difficulty) (*Question, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid difficulty %d", int(d))
	}
	st.SetSelection(category, d)

	eligible := Eligible(pool, category)
	if len(eligible) == 0 {
		st.clearQuestion()
		return nil, ErrEmptyPool
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ci := e.rng.IntN(len(eligible))
	correct := eligible[ci]

	want := min(d.OptionCount()-1, len(eligible)-1)
	choices := make([]string, 0, want+1)
	choices = append(choices, correct.English)
	used := map[string]bool{correct.English: true}

	for _, i := range e.rng.Perm(len(eligible)) {
		if len(choices)-1 >= want {
			break
		}
		if i == ci {
			continue
		}
		gloss := eligible[i].English
		if used[gloss] {
			continue
		}
		used[gloss] = true
		choices = append(choices, gloss)
	}

	e.rng.Shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})

	st.question = &Question{
		Entry:         correct,
		Choices:       choices,
		CorrectChoice: correct.English,
	}
	st.answered = false
	st.chosen = ""

	return st.Question(), nil
}

// Submit scores chosen against the active question. A question can be
// scored once; later submissions fail with ErrAlreadyAnswered and leave
// the counters unchanged.
func Submit(st *State, chosen string) (Result, error) {
	if st.question == nil {
		return Result{}, ErrNoActiveQuestion
	}
	if st.answered {
		return Result{}, ErrAlreadyAnswered
	}

	st.attempts++
	correct := chosen == st.question.CorrectChoice
	if correct {
		st.score++
	}
	st.answered = true
	st.chosen = chosen

	return Result{Correct: correct, CorrectChoice: st.question.CorrectChoice}, nil
}

// Reset zeroes the score and drops the active question. The category
// filter and difficulty are kept.
func Reset(st *State) {
	st.score = 0
	st.attempts = 0
	st.clearQuestion()
}

// Accuracy returns 100*score/attempts rounded to one decimal place, or 0
// when nothing was attempted.
func Accuracy(score, attempts int) float64 {
	if attempts <= 0 {
		return 0
	}
	return math.Round(1000*float64(score)/float64(attempts)) / 10
}
