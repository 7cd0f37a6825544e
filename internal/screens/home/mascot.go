package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cihui/internal/quiz"
	"github.com/abhisek/cihui/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle        MascotVariant = iota // Default red
	MascotCelebrating                      // Gold, star eyes: strong session
	MascotAlert                            // Orange, exclamation: sample words in use
)

// celebrateAfter is the number of answers before accuracy can earn stars.
const celebrateAfter = 5

const mascotIdle = `┌─────┐
│ ◉ ◉ │
│  ▽  │
│ 词汇 │
└─────┘`

const mascotCelebrating = `┌─────┐
│ ★ ★ │
│  ▿  │
│ 词汇 │
└─╥═╥─┘
  ╚═╝`

const mascotAlert = `┌─────┐
│ ◉ ◉ │ !
│  ▽  │
│ 词汇 │
└─────┘`

// mascotFor picks the variant for the current session.
func mascotFor(st *quiz.State, usedSample bool) MascotVariant {
	switch {
	case usedSample:
		return MascotAlert
	case st != nil && st.Attempts() >= celebrateAfter && st.Accuracy() >= 80:
		return MascotCelebrating
	default:
		return MascotIdle
	}
}

// RenderMascot returns the mascot ASCII art for the given variant.
func RenderMascot(v MascotVariant) string {
	art := mascotIdle
	fg := theme.Primary

	switch v {
	case MascotCelebrating:
		art = mascotCelebrating
		fg = theme.Highlight
	case MascotAlert:
		art = mascotAlert
		fg = theme.Accent
	}

	return lipgloss.NewStyle().
		Foreground(fg).
		Render(art)
}
