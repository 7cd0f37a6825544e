// Package speech turns text into MP3 audio and plays it back.
package speech

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultLang is the language tag used when a Request leaves Lang empty.
const DefaultLang = "zh-TW"

// Engine names accepted in Config.Engine.
const (
	EngineGoogle = "google"
	EngineOpenAI = "openai"
	EngineNone   = "none"
)

var (
	// ErrUnavailable is returned when no speech engine or player is usable.
	ErrUnavailable = errors.New("audio unavailable")

	// ErrEmptyText is returned for a request with nothing to say.
	ErrEmptyText = errors.New("nothing to synthesize")
)

// Request is one synthesis request.
type Request struct {
	Text string
	Lang string
	Slow bool
}

func (r Request) lang() string {
	if r.Lang == "" {
		return DefaultLang
	}
	return r.Lang
}

// Synthesizer converts text into MP3 bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) ([]byte, error)
}

// Config selects and configures the speech engine.
type Config struct {
	Engine    string        `mapstructure:"engine"`
	Lang      string        `mapstructure:"lang"`
	CacheDir  string        `mapstructure:"cache_dir"`
	Player    string        `mapstructure:"player"`
	Timeout   time.Duration `mapstructure:"timeout"`
	GoogleURL string        `mapstructure:"google_url"`
	OpenAI    OpenAIConfig  `mapstructure:"openai"`
}

// OpenAIConfig configures the OpenAI speech endpoint.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	Voice   string `mapstructure:"voice"`
	BaseURL string `mapstructure:"base_url"`
}

// DefaultConfig returns the Google engine with the Taiwanese Mandarin voice.
func DefaultConfig() Config {
	return Config{
		Engine:    EngineGoogle,
		Lang:      DefaultLang,
		Timeout:   10 * time.Second,
		GoogleURL: defaultGoogleURL,
		OpenAI: OpenAIConfig{
			Model: "tts-1",
			Voice: "alloy",
		},
	}
}

// New builds the configured synthesizer. When CacheDir is set the result
// is wrapped in a CachedSynthesizer. EngineNone yields a synthesizer that
// always fails with ErrUnavailable.
func New(cfg Config, log *zap.Logger) (Synthesizer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("speech")

	var s Synthesizer
	switch cfg.Engine {
	case "", EngineGoogle:
		g := NewGoogleSynthesizerWithURL(cfg.GoogleURL, log)
		if cfg.Timeout > 0 {
			g.httpClient.Timeout = cfg.Timeout
		}
		s = g
	case EngineOpenAI:
		o, err := NewOpenAISynthesizer(cfg.OpenAI)
		if err != nil {
			return nil, err
		}
		s = o
	case EngineNone:
		return Unavailable{}, nil
	default:
		return nil, fmt.Errorf("unknown speech engine: %q", cfg.Engine)
	}

	if cfg.CacheDir != "" {
		s = NewCachedSynthesizer(s, cfg.CacheDir, log)
	}
	return withLang(s, cfg.Lang), nil
}

// Unavailable is a Synthesizer that always fails with ErrUnavailable.
type Unavailable struct{}

func (Unavailable) Synthesize(context.Context, Request) ([]byte, error) {
	return nil, ErrUnavailable
}

// langDefault fills in the configured language for requests without one.
type langDefault struct {
	inner Synthesizer
	lang  string
}

func withLang(s Synthesizer, lang string) Synthesizer {
	if lang == "" || lang == DefaultLang {
		return s
	}
	return &langDefault{inner: s, lang: lang}
}

func (l *langDefault) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	if req.Lang == "" {
		req.Lang = l.lang
	}
	return l.inner.Synthesize(ctx, req)
}
