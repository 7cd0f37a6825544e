package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/abhisek/cihui/internal/config"
	"github.com/abhisek/cihui/internal/quiz"
)

const (
	sessionKeyPrefix = "cihui"

	sessionLockTTL   = 10 * time.Second
	sessionLockRetry = 25 * time.Millisecond
)

// ErrSessionBusy is returned when a session stays locked by another request
// for longer than the caller is willing to wait.
var ErrSessionBusy = errors.New("session is busy")

// SessionStore keeps one quiz.State per API client.
type SessionStore interface {
	// Load returns the stored state, or a fresh one for an unknown id.
	Load(ctx context.Context, id string) (*quiz.State, error)
	Save(ctx context.Context, id string, st *quiz.State) error
	Delete(ctx context.Context, id string) error
}

// SessionLocker is implemented by stores shared between processes. Lock
// blocks until the session is held or ctx ends; the returned func
// releases it.
type SessionLocker interface {
	Lock(ctx context.Context, id string) (unlock func(context.Context) error, err error)
}

// SessionKey builds the storage key for a session id.
func SessionKey(id string) string {
	return strings.Join([]string{sessionKeyPrefix, "session", id}, ":")
}

// MemorySessionStore keeps serialized states in process memory.
type MemorySessionStore struct {
	mu     sync.Mutex
	states map[string][]byte
}

// NewMemorySessionStore creates an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{states: make(map[string][]byte)}
}

func (m *MemorySessionStore) Load(_ context.Context, id string) (*quiz.State, error) {
	m.mu.Lock()
	b, ok := m.states[SessionKey(id)]
	m.mu.Unlock()
	if !ok {
		return quiz.NewState(), nil
	}
	return decodeState(b)
}

func (m *MemorySessionStore) Save(_ context.Context, id string, st *quiz.State) error {
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[SessionKey(id)] = b
	return nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, SessionKey(id))
	return nil
}

func sessionLockKey(id string) string {
	return strings.Join([]string{sessionKeyPrefix, "lock", "session", id}, ":")
}

// Deletes the lock only while it still holds our token.
const releaseLockScript = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) end return 0`

// RedisSessionStore keeps serialized states in Redis with a sliding TTL:
// every Load and Save pushes the expiry out again.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration

	lockTTL   time.Duration
	lockRetry time.Duration
	newToken  func() string
}

var _ SessionLocker = (*RedisSessionStore)(nil)

// NewRedisSessionStore wraps a connected client.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{
		client:    client,
		ttl:       ttl,
		lockTTL:   sessionLockTTL,
		lockRetry: sessionLockRetry,
		newToken:  uuid.NewString,
	}
}

// Load translates redis.Nil into a fresh state and refreshes the TTL of an
// existing one.
func (r *RedisSessionStore) Load(ctx context.Context, id string) (*quiz.State, error) {
	val, err := r.client.GetEx(ctx, SessionKey(id), r.ttl).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return quiz.NewState(), nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	return decodeState([]byte(val))
}

func (r *RedisSessionStore) Save(ctx context.Context, id string, st *quiz.State) error {
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, SessionKey(id), string(b), r.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, SessionKey(id)).Err()
}

// Lock takes a SET NX lock on the session. The lock expires on its own
// after lockTTL so a crashed holder cannot wedge the session.
func (r *RedisSessionStore) Lock(ctx context.Context, id string) (func(context.Context) error, error) {
	key := sessionLockKey(id)
	token := r.newToken()
	for {
		ok, err := r.client.SetNX(ctx, key, token, r.lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("lock session: %w", err)
		}
		if ok {
			return func(ctx context.Context) error {
				if err := r.client.Eval(ctx, releaseLockScript, []string{key}, token).Err(); err != nil {
					return fmt.Errorf("unlock session: %w", err)
				}
				return nil
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrSessionBusy, ctx.Err())
		case <-time.After(r.lockRetry):
		}
	}
}

func decodeState(b []byte) (*quiz.State, error) {
	st := quiz.NewState()
	if err := json.Unmarshal(b, st); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return st, nil
}

// NewRedisClient creates a client and pings the server to ensure connectivity.
func NewRedisClient(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}
