package random

import (
	"math/rand/v2"
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

func TestShowsWordFromDataset(t *testing.T) {
	ds := vocab.Sample()
	s := New(&screen.Env{Dataset: ds, Rand: rand.New(rand.NewPCG(3, 4))})
	if !s.ok {
		t.Fatal("expected a word")
	}
	if _, found := ds.Lookup(s.entry.Word); !found {
		t.Errorf("word %q not in dataset", s.entry.Word)
	}
	if !strings.Contains(s.View(100, 30), s.entry.English) {
		t.Error("expected gloss in view")
	}
}

func TestNotesAndPlay(t *testing.T) {
	s := New(&screen.Env{Dataset: vocab.Sample()})

	_, cmd := s.Update(keyPress('n'))
	if _, ok := cmd().(router.PushScreenMsg); !ok {
		t.Error("expected push screen for notes")
	}

	_, cmd = s.Update(keyPress('p'))
	s.Update(cmd())
	if !strings.Contains(s.View(100, 30), "Audio unavailable") {
		t.Error("expected audio unavailable status")
	}

	s.Update(keyPress('g'))
	if s.status != "" {
		t.Error("expected status cleared on a new word")
	}
}

func TestEmptyDataset(t *testing.T) {
	s := New(&screen.Env{Dataset: vocab.NewDataset(nil, "empty")})
	if !strings.Contains(s.View(100, 30), "empty") {
		t.Error("expected empty message")
	}
	if _, cmd := s.Update(keyPress('p')); cmd != nil {
		t.Error("expected no playback without a word")
	}
}
