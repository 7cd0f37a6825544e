package speech

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "   ", nil},
		{"short", "你好", []string{"你好"}},
		{"keeps punctuation", "你好，我叫小明。", []string{"你好，我叫小明。"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitText(tt.text, maxChunkRunes))
		})
	}
}

func TestSplitText_LongText(t *testing.T) {
	sentence := strings.Repeat("我", 30) + "。"
	text := strings.Repeat(sentence, 5)

	chunks := splitText(text, maxChunkRunes)
	require.Len(t, chunks, 2)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), maxChunkRunes)
		assert.True(t, strings.HasSuffix(c, "。"), "chunk %q should end on a sentence", c)
	}
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplitText_NoBreaks(t *testing.T) {
	text := strings.Repeat("字", 250)
	chunks := splitText(text, maxChunkRunes)
	require.Len(t, chunks, 3)
	assert.Len(t, []rune(chunks[0]), 100)
	assert.Len(t, []rune(chunks[2]), 50)
}

func TestGoogleSynthesizer_Synthesize(t *testing.T) {
	var seen []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		mu.Lock()
		seen = append(seen, q.Get("q"))
		mu.Unlock()
		assert.Equal(t, "zh-TW", q.Get("tl"))
		assert.Equal(t, "tw-ob", q.Get("client"))
		assert.Equal(t, "0.24", q.Get("ttsspeed"))
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("mp3[" + q.Get("idx") + "]"))
	}))
	defer srv.Close()

	g := NewGoogleSynthesizerWithURL(srv.URL, nil)
	text := strings.Repeat(strings.Repeat("好", 60)+"。", 2)

	audio, err := g.Synthesize(context.Background(), Request{Text: text, Slow: true})
	require.NoError(t, err)
	assert.Equal(t, "mp3[0]mp3[1]", string(audio))
	assert.Len(t, seen, 2)
}

func TestGoogleSynthesizer_NormalSpeedOmitsTTSSpeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("ttsspeed"))
		assert.Equal(t, "ja", r.URL.Query().Get("tl"))
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	_, err := NewGoogleSynthesizerWithURL(srv.URL, nil).Synthesize(context.Background(), Request{Text: "こんにちは", Lang: "ja"})
	require.NoError(t, err)
}

func TestGoogleSynthesizer_RetryOn5xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("audio"))
	}))
	defer srv.Close()

	audio, err := NewGoogleSynthesizerWithURL(srv.URL, nil).Synthesize(context.Background(), Request{Text: "你好"})
	require.NoError(t, err)
	assert.Equal(t, "audio", string(audio))
	assert.Equal(t, int32(2), calls.Load())
}

func TestGoogleSynthesizer_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewGoogleSynthesizerWithURL(srv.URL, nil).Synthesize(context.Background(), Request{Text: "你好"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 400")
	assert.Equal(t, int32(1), calls.Load())
}

func TestGoogleSynthesizer_EmptyText(t *testing.T) {
	_, err := NewGoogleSynthesizer(nil).Synthesize(context.Background(), Request{Text: " "})
	assert.ErrorIs(t, err, ErrEmptyText)
}

type countingSynth struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
}

func (c *countingSynth) Synthesize(_ context.Context, req Request) ([]byte, error) {
	c.calls.Add(1)
	if c.release != nil {
		<-c.release
	}
	if c.err != nil {
		return nil, c.err
	}
	return []byte("audio:" + req.Text), nil
}

func TestCachedSynthesizer_HitsDisk(t *testing.T) {
	dir := t.TempDir()
	inner := &countingSynth{}
	c := NewCachedSynthesizer(inner, dir, nil)

	for range 3 {
		audio, err := c.Synthesize(context.Background(), Request{Text: "你好"})
		require.NoError(t, err)
		assert.Equal(t, "audio:你好", string(audio))
	}
	assert.Equal(t, int32(1), inner.calls.Load())

	_, err := c.Synthesize(context.Background(), Request{Text: "你好", Slow: true})
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls.Load(), "slow audio is cached separately")

	files, err := filepath.Glob(filepath.Join(dir, "*.mp3"))
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestCachedSynthesizer_CollapsesConcurrentRequests(t *testing.T) {
	inner := &countingSynth{release: make(chan struct{})}
	c := NewCachedSynthesizer(inner, t.TempDir(), nil)

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			audio, err := c.Synthesize(context.Background(), Request{Text: "謝謝"})
			assert.NoError(t, err)
			assert.Equal(t, "audio:謝謝", string(audio))
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(inner.release)
	wg.Wait()

	assert.Equal(t, int32(1), inner.calls.Load())
}

func TestCachedSynthesizer_ErrorsAreNotCached(t *testing.T) {
	dir := t.TempDir()
	inner := &countingSynth{err: errors.New("boom")}
	c := NewCachedSynthesizer(inner, dir, nil)

	_, err := c.Synthesize(context.Background(), Request{Text: "x"})
	require.Error(t, err)
	_, err = c.Synthesize(context.Background(), Request{Text: "x"})
	require.Error(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, cacheKey(Request{Text: "a"}), cacheKey(Request{Text: "a", Lang: DefaultLang}))
	assert.NotEqual(t, cacheKey(Request{Text: "a"}), cacheKey(Request{Text: "a", Lang: "ja"}))
	assert.NotEqual(t, cacheKey(Request{Text: "a"}), cacheKey(Request{Text: "a", Slow: true}))
}

func TestNew(t *testing.T) {
	s, err := New(Config{Engine: EngineNone}, nil)
	require.NoError(t, err)
	_, err = s.Synthesize(context.Background(), Request{Text: "x"})
	assert.ErrorIs(t, err, ErrUnavailable)

	s, err = New(DefaultConfig(), nil)
	require.NoError(t, err)
	assert.IsType(t, &GoogleSynthesizer{}, s)

	cfg := DefaultConfig()
	cfg.CacheDir = t.TempDir()
	s, err = New(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &CachedSynthesizer{}, s)

	_, err = New(Config{Engine: EngineOpenAI}, nil)
	assert.Error(t, err, "openai needs an API key")

	s, err = New(Config{Engine: EngineOpenAI, OpenAI: OpenAIConfig{APIKey: "k"}}, nil)
	require.NoError(t, err)
	assert.IsType(t, &OpenAISynthesizer{}, s)

	_, err = New(Config{Engine: "espeak"}, nil)
	assert.Error(t, err)
}

func TestNew_ConfiguredLanguage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "zh-CN", r.URL.Query().Get("tl"))
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	s, err := New(Config{Engine: EngineGoogle, GoogleURL: srv.URL, Lang: "zh-CN"}, nil)
	require.NoError(t, err)
	_, err = s.Synthesize(context.Background(), Request{Text: "你好"})
	require.NoError(t, err)
}

func TestNewPlayer(t *testing.T) {
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })

	lookPath = func(name string) (string, error) {
		if name == "ffplay" {
			return "/usr/bin/ffplay", nil
		}
		return "", exec.ErrNotFound
	}
	p, err := NewPlayer("")
	require.NoError(t, err)
	assert.Equal(t, []string{"/usr/bin/ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"}, p.Command())

	_, err = NewPlayer("vlc --intf dummy")
	assert.ErrorIs(t, err, ErrUnavailable)

	lookPath = func(string) (string, error) { return "", exec.ErrNotFound }
	_, err = NewPlayer("")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestPlayer_Play(t *testing.T) {
	p, err := NewPlayer("true")
	if err != nil {
		t.Skip("true(1) not available")
	}
	require.NoError(t, p.Play(context.Background(), []byte("audio")))
}

func TestSpeaker_NoPlayer(t *testing.T) {
	inner := &countingSynth{}
	s := &Speaker{Synth: inner}
	assert.ErrorIs(t, s.Say(context.Background(), Request{Text: "x"}), ErrUnavailable)
	assert.Equal(t, int32(0), inner.calls.Load())

	var nilSpeaker *Speaker
	assert.ErrorIs(t, nilSpeaker.Say(context.Background(), Request{Text: "x"}), ErrUnavailable)
}
