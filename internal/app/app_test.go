package app

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/cihui/internal/quiz"
	"github.com/abhisek/cihui/internal/screen"
	"github.com/abhisek/cihui/internal/store"
	"github.com/abhisek/cihui/internal/vocab"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "cihui.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testEnv() *screen.Env {
	return &screen.Env{
		Dataset: vocab.Sample(),
		Engine:  quiz.NewEngine(nil),
		State:   quiz.NewState(),
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := openStore(t).SnapshotRepo()

	st := quiz.NewState()
	_, err := quiz.NewEngine(nil).NewQuestion(st, vocab.Sample().Entries(), vocab.AllCategories, quiz.Medium)
	require.NoError(t, err)
	_, err = quiz.Submit(st, st.CorrectChoice())
	require.NoError(t, err)

	require.NoError(t, SaveState(ctx, repo, st))

	got, err := RestoreState(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Score())
	assert.Equal(t, 1, got.Attempts())
	assert.Equal(t, quiz.Medium, got.Difficulty())
	assert.Equal(t, quiz.PhaseAnswered, got.Phase())
}

func TestSaveStatePrunes(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	repo := s.SnapshotRepo()

	for range snapshotsKept + 3 {
		require.NoError(t, SaveState(ctx, repo, quiz.NewState()))
	}

	var n int
	require.NoError(t, s.DB().Get(&n, "SELECT COUNT(*) FROM snapshots"))
	assert.Equal(t, snapshotsKept, n)
}

func TestRestoreState_Fallbacks(t *testing.T) {
	ctx := context.Background()

	st, err := RestoreState(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Attempts())

	repo := openStore(t).SnapshotRepo()
	st, err = RestoreState(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, quiz.PhaseNoQuestion, st.Phase())

	bad := json.RawMessage(`{"score":3,"attempts":1,"category":"All","difficulty":"Easy"}`)
	require.NoError(t, repo.Save(ctx, &store.Snapshot{Data: store.SnapshotData{Version: snapshotVersion, Quiz: bad}}))
	st, err = RestoreState(ctx, repo)
	assert.Error(t, err)
	require.NotNil(t, st)
	assert.Equal(t, 0, st.Score())

	require.NoError(t, repo.Save(ctx, &store.Snapshot{Data: store.SnapshotData{Version: 99, Quiz: json.RawMessage(`{}`)}}))
	_, err = RestoreState(ctx, repo)
	assert.ErrorContains(t, err, "version 99")
}

func TestModel_EscPopsToHome(t *testing.T) {
	m := newAppModel(Options{Env: testEnv(), StartInQuiz: true})
	require.Equal(t, 2, m.router.Depth())
	assert.Equal(t, "Quiz", m.router.Active().Title())

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	m.Update(cmd())
	assert.Equal(t, "Home", m.router.Active().Title())

	// Esc on the root screen does nothing.
	_, cmd = m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Nil(t, cmd)
}

func TestModel_WelcomeLeadsHome(t *testing.T) {
	m := newAppModel(Options{Env: testEnv()})
	assert.Equal(t, "", m.router.Active().Title())

	_, cmd := m.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})
	require.NotNil(t, cmd)
	m.Update(cmd())
	assert.Equal(t, "Home", m.router.Active().Title())
}

func TestModel_HeaderShowsScore(t *testing.T) {
	env := testEnv()
	m := newAppModel(Options{Env: env, StartInQuiz: true})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	m.Update(tea.KeyPressMsg{Code: 'g', Text: "g"})
	for i, c := range env.State.Choices() {
		if c == env.State.CorrectChoice() {
			m.Update(tea.KeyPressMsg{Code: rune('1' + i), Text: string(rune('1' + i))})
		}
	}

	m2, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	view := m2.(AppModel).render()
	assert.True(t, strings.Contains(view, "★ 1/1"), "header should show the score")
	assert.Contains(t, view, "Home › Quiz")
}

func TestModel_TooSmall(t *testing.T) {
	m := newAppModel(Options{Env: testEnv()})
	m2, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	assert.Contains(t, m2.(AppModel).render(), "Terminal too small")
}
