package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/cihui/internal/app"
	"github.com/abhisek/cihui/internal/config"
	"github.com/abhisek/cihui/internal/llm"
	"github.com/abhisek/cihui/internal/logger"
	"github.com/abhisek/cihui/internal/notes"
	"github.com/abhisek/cihui/internal/quiz"
	"github.com/abhisek/cihui/internal/screen"
	"github.com/abhisek/cihui/internal/speech"
	"github.com/abhisek/cihui/internal/store"
	"github.com/abhisek/cihui/internal/vocab"
)

// services holds the services one command invocation works with.
type services struct {
	cfg     *config.Config
	log     *zap.Logger
	dataDir string
	dataset *vocab.Dataset
	store   *store.Store
	notes   *notes.Service
	synth   speech.Synthesizer

	usedSample bool
	// sampleReason is the load error when an existing word file was rejected.
	sampleReason string

	closers []io.Closer
}

type serviceOptions struct {
	// logToStdout sends logs to the terminal instead of <data dir>/cihui.log.
	logToStdout bool
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// openServices loads configuration and the word list, opens the store and
// builds the optional AI and speech services. Missing LLM keys or audio
// support are logged, not returned.
func openServices(cmd *cobra.Command, opts serviceOptions) (*services, error) {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	dataDir, err := store.DataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	rt := &services{cfg: cfg, dataDir: dataDir}
	if opts.logToStdout {
		rt.log, err = logger.NewStdout(cfg)
	} else {
		var closer io.Closer
		rt.log, closer, err = logger.NewFile(cfg, filepath.Join(dataDir, "cihui.log"))
		if closer != nil {
			rt.closers = append(rt.closers, closer)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	var loadErr error
	rt.dataset, rt.usedSample, loadErr = vocab.LoadOrSample(cfg.Data)
	switch {
	case loadErr != nil:
		rt.sampleReason = loadErr.Error()
		rt.log.Warn("word file could not be read, using sample words",
			zap.String("path", cfg.Data), zap.Error(loadErr))
		if !opts.logToStdout {
			fmt.Fprintf(os.Stderr, "warning: %v; using sample words\n", loadErr)
		}
	case rt.usedSample:
		rt.log.Warn("word file not found, using sample words", zap.String("path", cfg.Data))
	}
	rt.log.Info("words loaded",
		zap.String("source", rt.dataset.Source()),
		zap.Int("count", rt.dataset.Len()))

	dbPath, err := resolveDBPath(cfg.DB)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	rt.store, err = store.Open(dbPath)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	rt.closers = append(rt.closers, rt.store)

	provider, err := llm.NewProvider(ctx, cfg.LLM, rt.store.EventRepo(), rt.log)
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		rt.log.Info("LLM provider not configured, AI notes disabled")
	case err != nil:
		rt.log.Warn("LLM provider unavailable, AI notes disabled", zap.Error(err))
		provider = nil
	}
	rt.notes = notes.NewService(provider, notes.DefaultConfig())

	ttsCfg := cfg.TTS
	if ttsCfg.CacheDir == "" {
		ttsCfg.CacheDir = filepath.Join(dataDir, "audio")
	}
	rt.synth, err = speech.New(ttsCfg, rt.log)
	if err != nil {
		rt.log.Warn("speech engine unavailable", zap.Error(err))
		rt.synth = speech.Unavailable{}
	}

	return rt, nil
}

// speaker pairs the synthesizer with a local player. Without a player the
// speaker reports speech.ErrUnavailable.
func (rt *services) speaker() *speech.Speaker {
	player, err := speech.NewPlayer(rt.cfg.TTS.Player)
	if err != nil {
		rt.log.Info("audio playback disabled", zap.Error(err))
	}
	return &speech.Speaker{Synth: rt.synth, Player: player}
}

func (rt *services) env() *screen.Env {
	return &screen.Env{
		Dataset:      rt.dataset,
		Engine:       quiz.NewEngine(nil),
		Speaker:      rt.speaker(),
		Notes:        rt.notes,
		Events:       rt.store.EventRepo(),
		Practice:     rt.cfg.Practice.Normalize(),
		Log:          rt.log,
		UsedSample:   rt.usedSample,
		SampleReason: rt.sampleReason,
	}
}

func (rt *services) Close() {
	if rt.log != nil {
		_ = rt.log.Sync()
	}
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i].Close()
	}
}

// runApp opens the services and launches the TUI.
func runApp(cmd *cobra.Command, startInQuiz bool) error {
	rt, err := openServices(cmd, serviceOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	env := rt.env()
	if startInQuiz {
		if env.State, err = quizSelection(cmd, rt); err != nil {
			return err
		}
	}

	return app.Run(cmd.Context(), app.Options{
		Env:          env,
		SnapshotRepo: rt.store.SnapshotRepo(),
		StartInQuiz:  startInQuiz,
	})
}
