// Package practice assembles short speeches from the dataset's speech rows
// for listening and read-aloud practice.
package practice

import (
	"errors"
	"math/rand/v2"
	"strings"

	"github.com/abhisek/cihui/internal/vocab"
)

const (
	DefaultSentences = 5
	MinSentences     = 1
	MaxSentences     = 20
)

// ErrNoSpeechEntries is returned when the dataset has no speech rows.
var ErrNoSpeechEntries = errors.New("no speech sentences in the dataset")

// Settings controls how a speech is built and presented.
type Settings struct {
	Sentences            int  `mapstructure:"sentences"`
	Slow                 bool `mapstructure:"slow"`
	IncludeTranscription bool `mapstructure:"include_transcription"`
}

// DefaultSettings returns 5 sentences at normal speed with transcription.
func DefaultSettings() Settings {
	return Settings{Sentences: DefaultSentences, IncludeTranscription: true}
}

// Normalize clamps Sentences into [MinSentences, MaxSentences].
func (s Settings) Normalize() Settings {
	s.Sentences = min(max(s.Sentences, MinSentences), MaxSentences)
	return s
}

// Speech is an ordered selection of speech rows.
type Speech struct {
	Sentences []vocab.Entry
	Settings  Settings
}

// Line is one rendered sentence.
type Line struct {
	Word          string `json:"word"`
	Transcription string `json:"transcription,omitempty"`
	English       string `json:"english"`
}

// Build samples distinct speech rows from ds in random order.
func Build(ds *vocab.Dataset, settings Settings, rng *rand.Rand) (*Speech, error) {
	settings = settings.Normalize()

	pool := ds.SpeechEntries()
	if len(pool) == 0 {
		return nil, ErrNoSpeechEntries
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	perm := rng.Perm(len(pool))
	n := min(settings.Sentences, len(pool))
	picked := make([]vocab.Entry, n)
	for i := range n {
		picked[i] = pool[perm[i]]
	}
	return &Speech{Sentences: picked, Settings: settings}, nil
}

// Text joins the target-language sentences for synthesis.
func (s *Speech) Text() string {
	parts := make([]string, len(s.Sentences))
	for i, e := range s.Sentences {
		parts[i] = strings.TrimSpace(e.Word)
	}
	return strings.Join(parts, " ")
}

// Lines returns one Line per sentence, dropping the transcription when
// the settings disable it.
func (s *Speech) Lines() []Line {
	lines := make([]Line, len(s.Sentences))
	for i, e := range s.Sentences {
		lines[i] = Line{Word: e.Word, English: e.English}
		if s.Settings.IncludeTranscription {
			lines[i].Transcription = e.Transcription
		}
	}
	return lines
}
