package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const sessionLockWait = 5 * time.Second

// sessionLocks hands out one mutex per session key. Entries are dropped
// once nobody holds or waits on them.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

func (l *sessionLocks) lock(key string) func() {
	l.mu.Lock()
	sl, ok := l.locks[key]
	if !ok {
		sl = &sessionLock{}
		l.locks[key] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.mu.Lock()
	return func() {
		sl.mu.Unlock()
		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

// lockSession serializes load, change and save of one session's quiz state.
// Stores shared between processes are locked as well.
func (s *Server) lockSession(ctx context.Context, id string) (func(), error) {
	release := s.locks.lock(SessionKey(id))

	locker, ok := s.deps.Sessions.(SessionLocker)
	if !ok {
		return release, nil
	}

	lctx, cancel := context.WithTimeout(ctx, sessionLockWait)
	defer cancel()
	unlock, err := locker.Lock(lctx, id)
	if err != nil {
		release()
		return nil, err
	}

	return func() {
		uctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sessionLockWait)
		defer cancel()
		if err := unlock(uctx); err != nil {
			s.log.Warn("failed to release session lock", zap.String("session_id", id), zap.Error(err))
		}
		release()
	}, nil
}
