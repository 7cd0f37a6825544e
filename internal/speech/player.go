package speech

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"
)

// Players tried in order when no command is configured. The audio file
// path is appended to the arguments.
var knownPlayers = [][]string{
	{"mpv", "--no-video", "--really-quiet"},
	{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
	{"mpg123", "-q"},
	{"afplay"},
}

var lookPath = exec.LookPath

// Player plays MP3 audio through an external program.
type Player struct {
	path string
	args []string
}

// NewPlayer resolves command (e.g. "mpv --no-video") or, when empty, the
// first known player found on PATH.
func NewPlayer(command string) (*Player, error) {
	if fields := strings.Fields(command); len(fields) > 0 {
		path, err := lookPath(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%w: player %q not found", ErrUnavailable, fields[0])
		}
		return &Player{path: path, args: fields[1:]}, nil
	}

	for _, p := range knownPlayers {
		if path, err := lookPath(p[0]); err == nil {
			return &Player{path: path, args: p[1:]}, nil
		}
	}
	return nil, fmt.Errorf("%w: no audio player found (install mpv, ffplay or mpg123)", ErrUnavailable)
}

// Command returns the resolved program and its fixed arguments.
func (p *Player) Command() []string {
	return append([]string{p.path}, p.args...)
}

// Play writes audio to a temporary file and blocks until the player exits.
func (p *Player) Play(ctx context.Context, audio []byte) error {
	f, err := os.CreateTemp("", "cihui-*.mp3")
	if err != nil {
		return fmt.Errorf("create audio file: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(audio); err != nil {
		f.Close()
		return fmt.Errorf("write audio file: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, p.path, append(slices.Clone(p.args), f.Name())...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", p.path, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Speaker synthesizes and plays text in one step.
type Speaker struct {
	Synth  Synthesizer
	Player *Player
}

// Say synthesizes req and plays it. A Speaker without a player returns
// ErrUnavailable before any synthesis happens.
func (s *Speaker) Say(ctx context.Context, req Request) error {
	if s == nil || s.Synth == nil || s.Player == nil {
		return ErrUnavailable
	}
	audio, err := s.Synth.Synthesize(ctx, req)
	if err != nil {
		return err
	}
	return s.Player.Play(ctx, audio)
}
