// Package api serves the vocabulary trainer over a JSON HTTP API.
package api

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/cihui/internal/config"
	"github.com/abhisek/cihui/internal/notes"
	"github.com/abhisek/cihui/internal/practice"
	"github.com/abhisek/cihui/internal/quiz"
	"github.com/abhisek/cihui/internal/speech"
	"github.com/abhisek/cihui/internal/store"
	"github.com/abhisek/cihui/internal/vocab"
)

// Deps are the collaborators the handlers use. Speech, Notes and Events
// may be nil.
type Deps struct {
	Dataset  *vocab.Dataset
	Engine   *quiz.Engine
	Sessions SessionStore
	Speech   speech.Synthesizer
	Notes    *notes.Service
	Events   store.EventRepo
	Practice practice.Settings
	Rand     *rand.Rand
	Log      *zap.Logger
}

// Server is the HTTP API.
type Server struct {
	app  *fiber.App
	deps Deps
	log  *zap.Logger

	locks *sessionLocks

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New builds the Fiber app and registers every route.
func New(deps Deps, cfg config.Serve) *Server {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("api")

	if deps.Engine == nil {
		deps.Engine = quiz.NewEngine(deps.Rand)
	}
	if deps.Sessions == nil {
		deps.Sessions = NewMemorySessionStore()
	}
	if deps.Speech == nil {
		deps.Speech = speech.Unavailable{}
	}
	rng := deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	}

	s := &Server{deps: deps, log: log, rng: rng, locks: newSessionLocks()}
	s.app = fiber.New(fiber.Config{
		AppName:               "cihui",
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		ErrorHandler:          ErrorHandler(log),
		DisableStartupMessage: true,
	})

	s.app.Use(recover.New())
	s.app.Use(requestLogger(log))
	s.app.Use(sessionMiddleware())
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.app.Group("/api")

	api.Get("/words", s.listWords)
	api.Get("/words/random", s.randomWord)
	api.Get("/categories", s.listCategories)
	api.Get("/stats", s.stats)

	api.Get("/quiz", s.getQuiz)
	api.Post("/quiz/question", s.newQuestion)
	api.Post("/quiz/answer", s.submitAnswer)
	api.Post("/quiz/reset", s.resetQuiz)

	api.Get("/audio", s.audio)
	api.Get("/practice", s.speechPractice)
	api.Get("/notes", s.wordNotes)
}

// App exposes the Fiber app, mainly for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
// within shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("starting server", zap.String("addr", addr))
		return s.app.Listen(addr)
	})

	g.Go(func() error {
		<-gctx.Done()
		s.log.Info("shutting down server")
		if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			return err
		}
		s.log.Info("server exited gracefully")
		return nil
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Server) withRand(fn func(*rand.Rand)) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	fn(s.rng)
}
