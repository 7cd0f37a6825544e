package api

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/cihui/internal/quiz"
)

func answeredState(t *testing.T) *quiz.State {
	t.Helper()
	st := quiz.NewState()
	eng := quiz.NewEngine(rand.New(rand.NewPCG(3, 4)))
	_, err := eng.NewQuestion(st, testDataset().Entries(), "Food", quiz.Medium)
	require.NoError(t, err)
	_, err = quiz.Submit(st, st.CorrectChoice())
	require.NoError(t, err)
	return st
}

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "cihui:session:abc", SessionKey("abc"))
}

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySessionStore()

	st, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, quiz.PhaseNoQuestion, st.Phase())

	saved := answeredState(t)
	require.NoError(t, s.Save(ctx, "a", saved))

	got, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Score())
	assert.Equal(t, saved.Question(), got.Question())

	// Loaded states are copies.
	quiz.Reset(got)
	again, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Score())

	require.NoError(t, s.Delete(ctx, "a"))
	st, err = s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 0, st.Attempts())
}

func TestRedisSessionStore_Load(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewRedisSessionStore(db, time.Hour)
	ctx := context.Background()
	key := SessionKey("id-1")

	t.Run("Hit", func(t *testing.T) {
		b, err := json.Marshal(answeredState(t))
		require.NoError(t, err)
		mock.ExpectGetEx(key, time.Hour).SetVal(string(b))

		st, err := s.Load(ctx, "id-1")
		require.NoError(t, err)
		assert.Equal(t, 1, st.Attempts())
		assert.Equal(t, "Food", st.Category())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Miss", func(t *testing.T) {
		mock.ExpectGetEx(key, time.Hour).SetErr(redis.Nil)
		st, err := s.Load(ctx, "id-1")
		require.NoError(t, err)
		assert.Equal(t, quiz.PhaseNoQuestion, st.Phase())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Corrupt", func(t *testing.T) {
		mock.ExpectGetEx(key, time.Hour).SetVal(`{"score":5,"attempts":1}`)
		_, err := s.Load(ctx, "id-1")
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RedisError", func(t *testing.T) {
		redisErr := errors.New("some redis error")
		mock.ExpectGetEx(key, time.Hour).SetErr(redisErr)
		_, err := s.Load(ctx, "id-1")
		assert.ErrorIs(t, err, redisErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedisSessionStore_SaveAndDelete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewRedisSessionStore(db, 30*time.Minute)
	ctx := context.Background()
	key := SessionKey("id-2")

	st := answeredState(t)
	b, err := json.Marshal(st)
	require.NoError(t, err)

	mock.ExpectSet(key, string(b), 30*time.Minute).SetVal("OK")
	require.NoError(t, s.Save(ctx, "id-2", st))

	redisErr := errors.New("readonly replica")
	mock.ExpectSet(key, string(b), 30*time.Minute).SetErr(redisErr)
	assert.ErrorIs(t, s.Save(ctx, "id-2", st), redisErr)

	mock.ExpectDel(key).SetVal(1)
	require.NoError(t, s.Delete(ctx, "id-2"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServerWithRedisSessions(t *testing.T) {
	db, mock := redismock.NewClientMock()
	srv := newTestServer(t, func(d *Deps) { d.Sessions = NewRedisSessionStore(db, time.Hour) })
	c := &client{t: t, srv: srv, session: "6f1c2d2e-8a47-4a43-9d55-0d5bb8e1b8a1"}

	mock.ExpectGetEx(SessionKey(c.session), time.Hour).SetErr(redis.Nil)
	_, body := c.do("GET", "/api/quiz", nil)
	assert.Equal(t, 0, decode[QuizResponse](t, body).Attempts)
	assert.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectGetEx(SessionKey(c.session), time.Hour).SetErr(errors.New("connection refused"))
	resp, body := c.do("GET", "/api/quiz", nil)
	assert.Equal(t, 500, resp.StatusCode)
	assert.Equal(t, CodeInternal, decode[ErrorResponse](t, body).Code)
}

func TestRedisSessionStore_Lock(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewRedisSessionStore(db, time.Hour)
	s.newToken = func() string { return "token-1" }
	ctx := context.Background()
	key := sessionLockKey("id-3")
	assert.Equal(t, "cihui:lock:session:id-3", key)

	t.Run("AcquireAndRelease", func(t *testing.T) {
		mock.ExpectSetNX(key, "token-1", sessionLockTTL).SetVal(true)
		unlock, err := s.Lock(ctx, "id-3")
		require.NoError(t, err)

		mock.ExpectEval(releaseLockScript, []string{key}, "token-1").SetVal(int64(1))
		require.NoError(t, unlock(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Busy", func(t *testing.T) {
		mock.ExpectSetNX(key, "token-1", sessionLockTTL).SetVal(false)
		lctx, cancel := context.WithTimeout(ctx, 5*time.Millisecond)
		defer cancel()

		_, err := s.Lock(lctx, "id-3")
		assert.ErrorIs(t, err, ErrSessionBusy)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RedisError", func(t *testing.T) {
		mock.ExpectSetNX(key, "token-1", sessionLockTTL).SetErr(errors.New("connection reset"))
		_, err := s.Lock(ctx, "id-3")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrSessionBusy)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestServerLocksRedisSessionOnAnswer(t *testing.T) {
	db, mock := redismock.NewClientMock()
	sessions := NewRedisSessionStore(db, time.Hour)
	sessions.newToken = func() string { return "token-2" }
	srv := newTestServer(t, func(d *Deps) { d.Sessions = sessions })
	c := &client{t: t, srv: srv, session: "0b5a4f5e-1f0c-4e55-9a11-6a3c5f0b9d27"}
	lockKey := sessionLockKey(c.session)

	mock.ExpectSetNX(lockKey, "token-2", sessionLockTTL).SetVal(false)
	mock.ExpectSetNX(lockKey, "token-2", sessionLockTTL).SetVal(true)
	mock.ExpectGetEx(SessionKey(c.session), time.Hour).SetErr(redis.Nil)
	mock.ExpectEval(releaseLockScript, []string{lockKey}, "token-2").SetVal(int64(1))

	resp, body := c.do("POST", "/api/quiz/answer", AnswerRequest{Choice: "Tea"})
	assert.Equal(t, 409, resp.StatusCode)
	assert.Equal(t, CodeNoActiveQuestion, decode[ErrorResponse](t, body).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
