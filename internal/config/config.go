// Package config loads cihui settings from cihui.yaml, the environment
// and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/abhisek/cihui/internal/llm"
	"github.com/abhisek/cihui/internal/practice"
	"github.com/abhisek/cihui/internal/speech"
	"github.com/abhisek/cihui/internal/vocab"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "CIHUI"

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env      string            `mapstructure:"env"`  // development or production
	Data     string            `mapstructure:"data"` // vocabulary file (.xlsx, .csv, .json)
	DB       string            `mapstructure:"db"`   // SQLite path, empty for the default location
	Log      Log               `mapstructure:"log"`
	Quiz     Quiz              `mapstructure:"quiz"`
	Practice practice.Settings `mapstructure:"practice"`
	TTS      speech.Config     `mapstructure:"tts"`
	LLM      llm.Config        `mapstructure:"llm"`
	Redis    Redis             `mapstructure:"redis"`
	Serve    Serve             `mapstructure:"serve"`
}

// Log configures the zap logger.
type Log struct {
	Level  string `mapstructure:"level"`
	File   string `mapstructure:"file"`   // TUI log file, empty for <data dir>/cihui.log
	Format string `mapstructure:"format"` // console or json; empty follows Env
}

// Quiz holds the initial quiz selectors.
type Quiz struct {
	Category   string `mapstructure:"category"`
	Difficulty string `mapstructure:"difficulty"`
}

// Redis configures the HTTP session store. An empty Addr keeps sessions in memory.
type Redis struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Serve configures the HTTP API server.
type Serve struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// IsProduction reports whether Env is "production".
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"data":      "data",
	"db":        "db",
	"log-level": "log.level",
}

// Load reads configuration from configFile (or cihui.yaml in the working
// directory and $XDG_CONFIG_HOME/cihui), the environment and flags, in
// increasing order of precedence. A .env file in the working directory is
// loaded into the environment first.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("cihui")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Provider keys are also read from their conventional names.
	_ = v.BindEnv("llm.anthropic.api_key", "CIHUI_LLM_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("llm.openai.api_key", "CIHUI_LLM_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("llm.gemini.api_key", "CIHUI_LLM_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY")
	_ = v.BindEnv("llm.openrouter.api_key", "CIHUI_LLM_OPENROUTER_API_KEY", "OPENROUTER_API_KEY")
	_ = v.BindEnv("tts.openai.api_key", "CIHUI_TTS_OPENAI_API_KEY", "OPENAI_API_KEY")

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("error binding flag %q: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.TTS.Engine {
	case speech.EngineGoogle, speech.EngineOpenAI, speech.EngineNone:
	default:
		return fmt.Errorf("invalid tts.engine %q (want google, openai or none)", c.TTS.Engine)
	}
	switch c.LLM.Provider {
	case "", llm.ProviderAnthropic, llm.ProviderOpenAI, llm.ProviderGemini,
		llm.ProviderOpenRouter, llm.ProviderMock, llm.ProviderNone:
	default:
		return fmt.Errorf("invalid llm.provider %q", c.LLM.Provider)
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("invalid log.format %q (want console or json)", c.Log.Format)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("data", vocab.DefaultFile)
	v.SetDefault("db", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.format", "")

	v.SetDefault("quiz.category", vocab.AllCategories)
	v.SetDefault("quiz.difficulty", "medium")

	ps := practice.DefaultSettings()
	v.SetDefault("practice.sentences", ps.Sentences)
	v.SetDefault("practice.slow", ps.Slow)
	v.SetDefault("practice.include_transcription", ps.IncludeTranscription)

	tts := speech.DefaultConfig()
	v.SetDefault("tts.engine", tts.Engine)
	v.SetDefault("tts.lang", tts.Lang)
	v.SetDefault("tts.cache_dir", "")
	v.SetDefault("tts.player", "")
	v.SetDefault("tts.timeout", tts.Timeout)
	v.SetDefault("tts.google_url", tts.GoogleURL)
	v.SetDefault("tts.openai.api_key", "")
	v.SetDefault("tts.openai.model", tts.OpenAI.Model)
	v.SetDefault("tts.openai.voice", tts.OpenAI.Voice)
	v.SetDefault("tts.openai.base_url", "")

	l := llm.DefaultConfig()
	v.SetDefault("llm.provider", l.Provider)
	for name, pc := range map[string]llm.ProviderConfig{
		"anthropic":  l.Anthropic,
		"openai":     l.OpenAI,
		"gemini":     l.Gemini,
		"openrouter": l.OpenRouter,
	} {
		v.SetDefault("llm."+name+".api_key", "")
		v.SetDefault("llm."+name+".model", pc.Model)
		v.SetDefault("llm."+name+".base_url", pc.BaseURL)
	}
	v.SetDefault("llm.retry.max_attempts", l.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", l.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", l.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", l.Retry.Multiplier)
	v.SetDefault("llm.timeout", l.Timeout)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)

	v.SetDefault("serve.addr", ":8080")
	v.SetDefault("serve.read_timeout", 10*time.Second)
	v.SetDefault("serve.write_timeout", 30*time.Second)
	v.SetDefault("serve.shutdown_timeout", 10*time.Second)
}

func configDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "cihui"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "cihui"), nil
}
