package learn

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/cihui/internal/router"
	"github.com/abhisek/cihui/internal/screen"
	"github.com/abhisek/cihui/internal/vocab"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testEnv() *screen.Env {
	return &screen.Env{Dataset: vocab.NewDataset([]vocab.Entry{
		{English: "Hello", Word: "你好", Transcription: "nǐ hǎo", Category: "Greetings"},
		{English: "Thank you", Word: "謝謝", Transcription: "xiè xiè", Category: "Greetings"},
		{English: "Rice", Word: "米飯", Transcription: "mǐ fàn", Category: "Food"},
		{English: "I like tea", Word: "我喜歡茶", Transcription: "wǒ xǐ huān chá", Category: "Speech"},
	}, "test")}
}

func TestShowsAllWords(t *testing.T) {
	s := New(testEnv())
	if len(s.Results()) != 4 {
		t.Fatalf("expected 4 results, got %d", len(s.Results()))
	}
	if !strings.Contains(s.View(100, 30), "Showing 4 words") {
		t.Error("expected word count in view")
	}
}

func TestCategoryTabs(t *testing.T) {
	s := New(testEnv())

	// All, Food, Greetings, Speech
	s.Update(specialKey(tea.KeyTab))
	if s.Category() != "Food" || len(s.Results()) != 1 {
		t.Errorf("expected Food with 1 word, got %q with %d", s.Category(), len(s.Results()))
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	if s.Category() != "Speech" {
		t.Errorf("expected wrap back to Speech, got %q", s.Category())
	}
}

func TestSearch(t *testing.T) {
	s := New(testEnv())

	s.Update(keyPress('/'))
	for _, r := range "hao" {
		s.Update(keyPress(r))
	}
	if len(s.Results()) != 1 || s.Results()[0].English != "Hello" {
		t.Fatalf("expected only Hello, got %+v", s.Results())
	}

	// Leaving the search keeps the filter and re-enables shortcuts.
	s.Update(specialKey(tea.KeyEnter))
	if _, cmd := s.Update(keyPress('n')); cmd == nil {
		t.Fatal("expected notes command once search is closed")
	} else if _, ok := cmd().(router.PushScreenMsg); !ok {
		t.Error("expected push screen message")
	}
}

func TestSearchTypingDoesNotTriggerShortcuts(t *testing.T) {
	s := New(testEnv())
	s.Update(keyPress('/'))
	_, cmd := s.Update(keyPress('n'))
	if s.search.Value() != "n" {
		t.Errorf("expected 'n' typed into search, got %q", s.search.Value())
	}
	if cmd != nil {
		if _, ok := cmd().(router.PushScreenMsg); ok {
			t.Error("expected no notes screen while typing")
		}
	}
}

func TestNavigateAndPlay(t *testing.T) {
	s := New(testEnv())
	s.Update(specialKey(tea.KeyDown))
	s.Update(specialKey(tea.KeyDown))
	e, ok := s.current()
	if !ok || e.English != "Rice" {
		t.Fatalf("expected Rice selected, got %+v", e)
	}

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected audio command")
	}
	s.Update(cmd())
	if !strings.Contains(s.View(100, 30), "Audio unavailable") {
		t.Error("expected audio unavailable status without a speaker")
	}
}
