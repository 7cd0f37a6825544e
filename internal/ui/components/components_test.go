package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestMultiChoice_NumberKeySubmits(t *testing.T) {
	mc := NewMultiChoice("", []string{"hello", "thank you", "goodbye"}, 1)

	mc, _ = mc.Update(keyPress('2'))
	if !mc.Submitted {
		t.Fatal("expected submission on number key")
	}
	if mc.Chosen() != "thank you" {
		t.Errorf("expected 'thank you', got %q", mc.Chosen())
	}
	if !mc.IsCorrect() {
		t.Error("expected correct answer")
	}

	// Further keys are ignored once submitted.
	mc, _ = mc.Update(keyPress('1'))
	if mc.ChosenIndex != 1 {
		t.Errorf("expected chosen index to stay 1, got %d", mc.ChosenIndex)
	}
}

func TestMultiChoice_OutOfRangeNumberIgnored(t *testing.T) {
	mc := NewMultiChoice("", []string{"a", "b"}, 0)
	mc, _ = mc.Update(keyPress('3'))
	if mc.Submitted {
		t.Error("expected key 3 to be ignored with two options")
	}
	if mc.Chosen() != "" {
		t.Errorf("expected no choice, got %q", mc.Chosen())
	}
}

func TestMultiChoice_ArrowsAndEnter(t *testing.T) {
	mc := NewMultiChoice("", []string{"a", "b", "c"}, 2)
	mc, _ = mc.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	mc, _ = mc.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	mc, _ = mc.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if mc.Selected != 2 {
		t.Fatalf("expected selection clamped at 2, got %d", mc.Selected)
	}
	mc, _ = mc.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !mc.IsCorrect() {
		t.Error("expected correct answer after enter")
	}
}

func TestMultiChoice_ViewNumbersOptions(t *testing.T) {
	mc := NewMultiChoice("Pick one", []string{"a", "b"}, 0)
	view := mc.View()
	for _, want := range []string{"Pick one", "1)  a", "2)  b"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestMenu_SkipsDisabled(t *testing.T) {
	m := NewMenu([]MenuItem{
		{Label: "Off", Disabled: true},
		{Label: "First"},
		{Label: "Second"},
	})
	if m.Current() != "First" {
		t.Fatalf("expected first enabled item, got %q", m.Current())
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if m.Current() != "First" {
		t.Errorf("expected disabled item to be skipped, got %q", m.Current())
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if m.Current() != "Second" {
		t.Errorf("expected 'Second', got %q", m.Current())
	}
}

func TestMenu_EnterRunsAction(t *testing.T) {
	ran := false
	m := NewMenu([]MenuItem{{Label: "Go", Action: func() tea.Cmd {
		ran = true
		return nil
	}}})
	m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !ran {
		t.Error("expected action to run")
	}
}

func TestAccuracyBar(t *testing.T) {
	bar := NewAccuracyBar("Food", 1, 2, 40)
	if got := bar.Accuracy(); got != 50 {
		t.Errorf("Accuracy() = %v, want 50", got)
	}
	view := bar.View()
	for _, want := range []string{"Food", "1/2  50.0%"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q: %q", want, view)
		}
	}
	if w := lipgloss.Width(view); w != 40 {
		t.Errorf("width = %d, want 40", w)
	}
}

func TestAccuracyBar_NoAttempts(t *testing.T) {
	view := NewAccuracyBar("Greetings", 0, 0, 10).View()
	if !strings.Contains(view, "0/0  0.0%") {
		t.Errorf("view = %q", view)
	}
}

func TestMenu_Hotkey(t *testing.T) {
	var ran string
	action := func(name string) func() tea.Cmd {
		return func() tea.Cmd {
			ran = name
			return nil
		}
	}
	m := NewMenu([]MenuItem{
		{Label: "Learn", Hotkey: "l", Action: action("learn")},
		{Label: "Quiz", Hotkey: "q", Action: action("quiz")},
		{Label: "Off", Hotkey: "o", Action: action("off"), Disabled: true},
	})

	m, _ = m.Update(keyPress('q'))
	if ran != "quiz" || m.Current() != "Quiz" {
		t.Errorf("hotkey ran %q with %q selected", ran, m.Current())
	}
	m.Update(keyPress('o'))
	if ran != "quiz" {
		t.Error("disabled item should not run")
	}
	if got := strings.Join(m.Labels(), ","); got != "Learn,Quiz,Off" {
		t.Errorf("Labels() = %q", got)
	}
}
