package quiz

import (
	"encoding/json"
	"fmt"

	"github.com/abhisek/cihui/internal/vocab"
)

// Phase is the lifecycle position of the current question.
type Phase int

const (
	PhaseNoQuestion Phase = iota // nothing to answer
	PhaseUnanswered              // question shown, awaiting a choice
	PhaseAnswered                // choice submitted, awaiting next question
)

func (p Phase) String() string {
	switch p {
	case PhaseUnanswered:
		return "unanswered"
	case PhaseAnswered:
		return "answered"
	default:
		return "no_question"
	}
}

// Question is a generated multiple-choice question.
type Question struct {
	// Entry is the word being asked about.
	Entry vocab.Entry `json:"entry"`

	// Choices are the glosses offered, in display order.
	Choices []string `json:"choices"`

	// CorrectChoice is the gloss of Entry. Always a member of Choices.
	CorrectChoice string `json:"correct_choice"`
}

// CorrectIndex returns the position of the correct choice.
func (q *Question) CorrectIndex() int {
	for i, c := range q.Choices {
		if c == q.CorrectChoice {
			return i
		}
	}
	return -1
}

// Result is the outcome of a submission.
type Result struct {
	Correct       bool   `json:"correct"`
	CorrectChoice string `json:"correct_choice"`
}

// Message is the feedback shown to the learner after a submission.
func (r Result) Message() string {
	if r.Correct {
		return "Correct! Well done!"
	}
	return "Incorrect! The correct answer is: " + r.CorrectChoice
}

// State is the quiz progress owned by one learner. The zero value is not
// ready for use; call NewState. Only the functions in this package mutate
// it; callers read it through the accessors.
type State struct {
	question   *Question
	answered   bool
	chosen     string
	score      int
	attempts   int
	category   string
	difficulty Difficulty
}

// NewState returns a fresh state with the "All" filter and Easy difficulty.
func NewState() *State {
	return &State{category: vocab.AllCategories, difficulty: Easy}
}

// Question returns a copy of the active question, or nil.
func (s *State) Question() *Question {
	if s.question == nil {
		return nil
	}
	q := *s.question
	q.Choices = append([]string(nil), s.question.Choices...)
	return &q
}

// ActiveEntry returns the entry being asked about, if any.
func (s *State) ActiveEntry() (vocab.Entry, bool) {
	if s.question == nil {
		return vocab.Entry{}, false
	}
	return s.question.Entry, true
}

// Choices returns a copy of the current choices.
func (s *State) Choices() []string {
	if s.question == nil {
		return nil
	}
	return append([]string(nil), s.question.Choices...)
}

// CorrectChoice returns the current correct gloss, or "".
func (s *State) CorrectChoice() string {
	if s.question == nil {
		return ""
	}
	return s.question.CorrectChoice
}

// Answered reports whether the current question has been answered.
func (s *State) Answered() bool { return s.answered }

// Chosen returns the submitted choice for the current question, or "".
func (s *State) Chosen() string { return s.chosen }

// Score returns the number of correct submissions.
func (s *State) Score() int { return s.score }

// Attempts returns the number of submissions.
func (s *State) Attempts() int { return s.attempts }

// Category returns the filter used for the latest question.
func (s *State) Category() string { return s.category }

// Difficulty returns the level used for the latest question.
func (s *State) Difficulty() Difficulty { return s.difficulty }

// Accuracy returns the percentage of correct submissions.
func (s *State) Accuracy() float64 {
	return Accuracy(s.score, s.attempts)
}

// Phase reports the question lifecycle position.
func (s *State) Phase() Phase {
	switch {
	case s.question == nil:
		return PhaseNoQuestion
	case s.answered:
		return PhaseAnswered
	default:
		return PhaseUnanswered
	}
}

// SetSelection records the filter and level the next question should use
// without generating one.
func (s *State) SetSelection(category string, d Difficulty) {
	if category == "" {
		category = vocab.AllCategories
	}
	s.category = category
	if d.Valid() {
		s.difficulty = d
	}
}

func (s *State) clearQuestion() {
	s.question = nil
	s.answered = false
	s.chosen = ""
}

type stateJSON struct {
	Question   *Question  `json:"question,omitempty"`
	Answered   bool       `json:"answered"`
	Chosen     string     `json:"chosen,omitempty"`
	Score      int        `json:"score"`
	Attempts   int        `json:"attempts"`
	Category   string     `json:"category"`
	Difficulty Difficulty `json:"difficulty"`
}

// MarshalJSON implements json.Marshaler.
func (s *State) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateJSON{
		Question:   s.question,
		Answered:   s.answered,
		Chosen:     s.chosen,
		Score:      s.score,
		Attempts:   s.attempts,
		Category:   s.category,
		Difficulty: s.difficulty,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Inconsistent state is
// rejected rather than loaded.
func (s *State) UnmarshalJSON(b []byte) error {
	var raw stateJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if err := validateState(raw); err != nil {
		return fmt.Errorf("invalid quiz state: %w", err)
	}
	if raw.Category == "" {
		raw.Category = vocab.AllCategories
	}
	*s = State{
		question:   raw.Question,
		answered:   raw.Answered,
		chosen:     raw.Chosen,
		score:      raw.Score,
		attempts:   raw.Attempts,
		category:   raw.Category,
		difficulty: raw.Difficulty,
	}
	return nil
}

func validateState(raw stateJSON) error {
	if raw.Score < 0 || raw.Attempts < 0 {
		return fmt.Errorf("negative counters")
	}
	if raw.Score > raw.Attempts {
		return fmt.Errorf("score %d exceeds attempts %d", raw.Score, raw.Attempts)
	}
	if raw.Question == nil {
		if raw.Answered {
			return fmt.Errorf("answered without a question")
		}
		return nil
	}
	q := raw.Question
	if len(q.Choices) == 0 || len(q.Choices) > Hard.OptionCount() {
		return fmt.Errorf("%d choices", len(q.Choices))
	}
	seen := make(map[string]bool, len(q.Choices))
	for _, c := range q.Choices {
		if seen[c] {
			return fmt.Errorf("duplicate choice %q", c)
		}
		seen[c] = true
	}
	if !seen[q.CorrectChoice] {
		return fmt.Errorf("correct choice %q not among choices", q.CorrectChoice)
	}
	return nil
}
