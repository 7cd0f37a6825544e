package api

import (
	"github.com/abhisek/cihui/internal/notes"
	"github.com/abhisek/cihui/internal/practice"
	"github.com/abhisek/cihui/internal/quiz"
	"github.com/abhisek/cihui/internal/vocab"
)

// WordsResponse lists vocabulary entries.
type WordsResponse struct {
	Count int           `json:"count"`
	Words []vocab.Entry `json:"words"`
}

// CategoriesResponse lists dataset categories.
type CategoriesResponse struct {
	Categories     []string `json:"categories"`
	QuizCategories []string `json:"quiz_categories"`
}

// QuestionRequest is the body of POST /api/quiz/question.
type QuestionRequest struct {
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
}

// AnswerRequest is the body of POST /api/quiz/answer.
type AnswerRequest struct {
	Choice string `json:"choice"`
}

// QuestionResponse is a question without its answer.
type QuestionResponse struct {
	Word          string   `json:"word"`
	Transcription string   `json:"transcription"`
	Category      string   `json:"category"`
	Choices       []string `json:"choices"`
	Difficulty    string   `json:"difficulty"`
}

// AnswerResponse is the outcome of a submission plus the running tally.
type AnswerResponse struct {
	quiz.Result
	Message  string  `json:"message"`
	Score    int     `json:"score"`
	Attempts int     `json:"attempts"`
	Accuracy float64 `json:"accuracy"`
}

// QuizResponse is the session's tally and current question.
type QuizResponse struct {
	Score      int               `json:"score"`
	Attempts   int               `json:"attempts"`
	Accuracy   float64           `json:"accuracy"`
	Category   string            `json:"category"`
	Difficulty string            `json:"difficulty"`
	Phase      string            `json:"phase"`
	Question   *QuestionResponse `json:"question,omitempty"`
	Answer     *quiz.Result      `json:"answer,omitempty"`
}

// PracticeResponse is a generated speech.
type PracticeResponse struct {
	Text  string          `json:"text"`
	Slow  bool            `json:"slow"`
	Lines []practice.Line `json:"lines"`
}

// NoteResponse is an AI usage note.
type NoteResponse struct {
	Word     string `json:"word"`
	English  string `json:"english"`
	Meaning  string `json:"meaning"`
	Usage    string `json:"usage"`
	Examples []notes.Example `json:"examples"`
	Mnemonic string          `json:"mnemonic"`
}

func questionResponse(st *quiz.State) *QuestionResponse {
	q := st.Question()
	if q == nil {
		return nil
	}
	return &QuestionResponse{
		Word:          q.Entry.Word,
		Transcription: q.Entry.Transcription,
		Category:      q.Entry.Category,
		Choices:       q.Choices,
		Difficulty:    st.Difficulty().String(),
	}
}

func quizResponse(st *quiz.State) QuizResponse {
	resp := QuizResponse{
		Score:      st.Score(),
		Attempts:   st.Attempts(),
		Accuracy:   st.Accuracy(),
		Category:   st.Category(),
		Difficulty: st.Difficulty().String(),
		Phase:      st.Phase().String(),
		Question:   questionResponse(st),
	}
	if st.Answered() {
		resp.Answer = &quiz.Result{
			Correct:       st.Chosen() == st.CorrectChoice(),
			CorrectChoice: st.CorrectChoice(),
		}
	}
	return resp
}
