package practice

import (
	"math/rand/v2"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	drill "github.com/abhisek/cihui/internal/practice"
	"github.com/abhisek/cihui/internal/screen"
	"github.com/abhisek/cihui/internal/vocab"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func speechEnv(n int) *screen.Env {
	entries := []vocab.Entry{{English: "Hello", Word: "你好", Category: "Greetings"}}
	for i := range n {
		entries = append(entries, vocab.Entry{
			English:       "Sentence " + string(rune('A'+i)),
			Word:          "句子" + string(rune('A'+i)),
			Transcription: "jù zi",
			Category:      "Speech",
		})
	}
	return &screen.Env{
		Dataset:  vocab.NewDataset(entries, "test"),
		Practice: drill.Settings{Sentences: 2, IncludeTranscription: true},
		Rand:     rand.New(rand.NewPCG(1, 2)),
	}
}

func TestBuildsInitialSpeech(t *testing.T) {
	s := New(speechEnv(4))
	if s.speech == nil || len(s.speech.Sentences) != 2 {
		t.Fatalf("expected a 2-sentence speech, got %+v", s.speech)
	}
	view := s.View(100, 40)
	if !strings.Contains(view, "Sentences: 2") || !strings.Contains(view, "jù zi") {
		t.Errorf("expected settings and pinyin in view:\n%s", view)
	}
}

func TestSentenceCountClamped(t *testing.T) {
	s := New(speechEnv(4))

	s.Update(keyPress('+'))
	s.Update(keyPress('+'))
	if s.Settings().Sentences != 4 || len(s.speech.Sentences) != 4 {
		t.Errorf("expected 4 sentences, got %d (%d built)", s.Settings().Sentences, len(s.speech.Sentences))
	}

	for range 5 {
		s.Update(keyPress('-'))
	}
	if s.Settings().Sentences != drill.MinSentences {
		t.Errorf("expected clamp at %d, got %d", drill.MinSentences, s.Settings().Sentences)
	}
}

func TestToggles(t *testing.T) {
	s := New(speechEnv(3))

	s.Update(keyPress('t'))
	for _, line := range s.speech.Lines() {
		if line.Transcription != "" {
			t.Fatal("expected transcription hidden after toggle")
		}
	}
	s.Update(keyPress('s'))
	if !s.Settings().Slow {
		t.Error("expected slow mode on")
	}
	if !strings.Contains(s.View(100, 40), "Speed: slow") {
		t.Error("expected slow speed in view")
	}
}

func TestNoSpeechSentences(t *testing.T) {
	s := New(speechEnv(0))
	if !strings.Contains(s.View(100, 40), "No speech sentences") {
		t.Error("expected empty message")
	}
	if _, cmd := s.Update(keyPress('p')); cmd != nil {
		t.Error("expected no playback without a speech")
	}
}

func TestPlayReportsUnavailable(t *testing.T) {
	s := New(speechEnv(2))
	_, cmd := s.Update(keyPress('p'))
	if cmd == nil {
		t.Fatal("expected audio command")
	}
	// A second press while playing is ignored.
	if _, again := s.Update(keyPress('p')); again != nil {
		t.Error("expected no second playback while playing")
	}
	s.Update(cmd())
	if !strings.Contains(s.View(100, 40), "Audio unavailable") {
		t.Error("expected audio unavailable status")
	}
}
