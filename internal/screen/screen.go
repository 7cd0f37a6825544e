// Package screen defines the contract between TUI screens and the router,
// and the Env of services the screens share.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/cihui/internal/ui/layout"
)

// Screen is one page of the TUI. The app draws the header and footer; a
// screen draws only the area between them.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View(width, height int) string

	// Title names the screen in the header breadcrumb. An empty title
	// hides the screen from it.
	Title() string
}

// KeyHintProvider is implemented by screens with their own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}
