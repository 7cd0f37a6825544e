package notes

import (
	"time"

	"github.com/abhisek/cihui/internal/vocab"
)

// Note is an LLM-written explanation of one vocabulary entry.
type Note struct {
	Entry    vocab.Entry
	Meaning  string
	Usage    string
	Examples []Example
	Mnemonic string
}

// Example is a sentence that uses the word.
type Example struct {
	Sentence      string `json:"sentence"`
	Transcription string `json:"transcription"`
	Translation   string `json:"translation"`
}

// Review is a study plan built from the learner's most-missed words.
type Review struct {
	Summary     string
	Confusions  []string
	Tips        []string
	GeneratedAt time.Time
}
