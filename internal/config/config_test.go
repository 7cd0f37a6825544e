package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with no inherited
// configuration in the environment.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	for _, k := range []string{
		"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY", "OPENROUTER_API_KEY",
		"CIHUI_DATA", "CIHUI_DB", "CIHUI_ENV", "CIHUI_LLM_PROVIDER", "CIHUI_TTS_ENGINE", "CIHUI_LOG_LEVEL",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "china.xlsx", cfg.Data)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "All", cfg.Quiz.Category)
	assert.Equal(t, "medium", cfg.Quiz.Difficulty)

	assert.Equal(t, 5, cfg.Practice.Sentences)
	assert.True(t, cfg.Practice.IncludeTranscription)

	assert.Equal(t, "google", cfg.TTS.Engine)
	assert.Equal(t, "zh-TW", cfg.TTS.Lang)
	assert.Equal(t, 10*time.Second, cfg.TTS.Timeout)

	assert.Empty(t, cfg.LLM.Provider)
	assert.Equal(t, "claude-haiku", cfg.LLM.Anthropic.Model)
	assert.Equal(t, 3, cfg.LLM.Retry.MaxAttempts)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)

	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
	assert.Equal(t, ":8080", cfg.Serve.Addr)
}

func TestLoad_ConfigFileInWorkingDir(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "cihui.yaml"), `
env: production
data: words.csv
quiz:
  category: Greetings
  difficulty: hard
tts:
  engine: none
llm:
  provider: anthropic
  anthropic:
    api_key: from-file
    model: claude-sonnet
  timeout: 20s
redis:
  addr: localhost:6379
  ttl: 1h
`)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "words.csv", cfg.Data)
	assert.Equal(t, "Greetings", cfg.Quiz.Category)
	assert.Equal(t, "hard", cfg.Quiz.Difficulty)
	assert.Equal(t, "none", cfg.TTS.Engine)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "from-file", cfg.LLM.Anthropic.APIKey)
	assert.Equal(t, "claude-sonnet", cfg.LLM.Anthropic.Model)
	assert.Equal(t, 20*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
}

func TestLoad_XDGConfigDir(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "xdg", "cihui", "cihui.yaml"), "data: xdg.json\n")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "xdg.json", cfg.Data)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "missing.yaml"), nil)
	assert.Error(t, err)

	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, "data: custom.xlsx\n")
	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "custom.xlsx", cfg.Data)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "cihui.yaml"), "data: file.xlsx\ntts:\n  engine: google\n")

	t.Setenv("CIHUI_DATA", "env.xlsx")
	t.Setenv("CIHUI_TTS_ENGINE", "none")
	t.Setenv("CIHUI_LLM_RETRY_MAX_ATTEMPTS", "5")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "env.xlsx", cfg.Data)
	assert.Equal(t, "none", cfg.TTS.Engine)
	assert.Equal(t, 5, cfg.LLM.Retry.MaxAttempts)
}

func TestLoad_ConventionalAPIKeys(t *testing.T) {
	isolate(t)
	t.Setenv("GEMINI_API_KEY", "gem")
	t.Setenv("OPENAI_API_KEY", "oai")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "gem", cfg.LLM.Gemini.APIKey)
	assert.Equal(t, "oai", cfg.LLM.OpenAI.APIKey)
	assert.Equal(t, "oai", cfg.TTS.OpenAI.APIKey)

	t.Setenv("CIHUI_LLM_OPENAI_API_KEY", "prefixed")
	cfg, err = Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.LLM.OpenAI.APIKey)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".env"), "CIHUI_DB=/tmp/from-dotenv.db\n")
	t.Cleanup(func() { os.Unsetenv("CIHUI_DB") })

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-dotenv.db", cfg.DB)
}

func TestLoad_FlagsWin(t *testing.T) {
	isolate(t)
	t.Setenv("CIHUI_DATA", "env.xlsx")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("data", "", "")
	flags.String("db", "", "")
	flags.String("log-level", "", "")
	require.NoError(t, flags.Parse([]string{"--data", "flag.xlsx", "--log-level", "debug"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "flag.xlsx", cfg.Data)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Empty(t, cfg.DB, "unset flag keeps the default")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"tts engine", map[string]string{"CIHUI_TTS_ENGINE": "espeak"}},
		{"llm provider", map[string]string{"CIHUI_LLM_PROVIDER": "bard"}},
		{"log format", map[string]string{"CIHUI_LOG_FORMAT": "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("", nil)
			assert.Error(t, err)
		})
	}
}
