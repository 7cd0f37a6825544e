package api

import (
	"errors"
	"math/rand/v2"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/abhisek/cihui/internal/notes"
	"github.com/abhisek/cihui/internal/practice"
	"github.com/abhisek/cihui/internal/quiz"
	"github.com/abhisek/cihui/internal/speech"
	"github.com/abhisek/cihui/internal/store"
	"github.com/abhisek/cihui/internal/vocab"
)

// listWords handles GET /api/words?category=&search=
func (s *Server) listWords(c *fiber.Ctx) error {
	words := s.deps.Dataset.Filter(c.Query("category", vocab.AllCategories), c.Query("search"))
	if words == nil {
		words = []vocab.Entry{}
	}
	return c.JSON(WordsResponse{Count: len(words), Words: words})
}

// randomWord handles GET /api/words/random
func (s *Server) randomWord(c *fiber.Ctx) error {
	var (
		e  vocab.Entry
		ok bool
	)
	s.withRand(func(r *rand.Rand) { e, ok = s.deps.Dataset.Random(r) })
	if !ok {
		return &Error{Status: http.StatusNotFound, Code: CodeWordNotFound, Message: "The dataset is empty"}
	}
	return c.JSON(e)
}

func (s *Server) listCategories(c *fiber.Ctx) error {
	return c.JSON(CategoriesResponse{
		Categories:     s.deps.Dataset.Categories(),
		QuizCategories: s.deps.Dataset.QuizCategories(),
	})
}

func (s *Server) stats(c *fiber.Ctx) error {
	return c.JSON(s.deps.Dataset.Stats())
}

// getQuiz handles GET /api/quiz
func (s *Server) getQuiz(c *fiber.Ctx) error {
	st, err := s.deps.Sessions.Load(c.UserContext(), sessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(quizResponse(st))
}

// newQuestion handles POST /api/quiz/question. Omitted fields keep the
// session's current selection.
func (s *Server) newQuestion(c *fiber.Ctx) error {
	var req QuestionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest("Invalid request body")
		}
	}

	ctx := c.UserContext()
	id := sessionID(c)
	unlock, err := s.lockSession(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	st, err := s.deps.Sessions.Load(ctx, id)
	if err != nil {
		return err
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = st.Category()
	}
	difficulty := st.Difficulty()
	if req.Difficulty != "" {
		if difficulty, err = quiz.ParseDifficulty(req.Difficulty); err != nil {
			return badRequest(err.Error())
		}
	}

	_, genErr := s.deps.Engine.NewQuestion(st, s.deps.Dataset.Entries(), category, difficulty)
	if genErr != nil && !errors.Is(genErr, quiz.ErrEmptyPool) {
		return genErr
	}
	// An empty pool clears the previous question, which must be persisted too.
	if err := s.deps.Sessions.Save(ctx, id, st); err != nil {
		return err
	}
	if genErr != nil {
		return genErr
	}
	return c.JSON(questionResponse(st))
}

// submitAnswer handles POST /api/quiz/answer
func (s *Server) submitAnswer(c *fiber.Ctx) error {
	var req AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid request body")
	}

	ctx := c.UserContext()
	id := sessionID(c)
	unlock, err := s.lockSession(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	st, err := s.deps.Sessions.Load(ctx, id)
	if err != nil {
		return err
	}

	res, err := quiz.Submit(st, req.Choice)
	if err != nil {
		return err
	}
	if err := s.deps.Sessions.Save(ctx, id, st); err != nil {
		return err
	}

	if s.deps.Events != nil {
		q := st.Question()
		if err := s.deps.Events.AppendAnswerEvent(ctx, store.AnswerEventData{
			SessionID:     id,
			Word:          q.Entry.Word,
			English:       q.Entry.English,
			Category:      q.Entry.Category,
			Difficulty:    st.Difficulty().String(),
			OptionCount:   len(q.Choices),
			CorrectChoice: res.CorrectChoice,
			Chosen:        req.Choice,
			Correct:       res.Correct,
		}); err != nil {
			s.log.Warn("failed to record answer event", zap.Error(err))
		}
	}

	return c.JSON(AnswerResponse{
		Result:   res,
		Message:  res.Message(),
		Score:    st.Score(),
		Attempts: st.Attempts(),
		Accuracy: st.Accuracy(),
	})
}

// resetQuiz handles POST /api/quiz/reset
func (s *Server) resetQuiz(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id := sessionID(c)
	unlock, err := s.lockSession(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	st, err := s.deps.Sessions.Load(ctx, id)
	if err != nil {
		return err
	}
	quiz.Reset(st)
	if err := s.deps.Sessions.Save(ctx, id, st); err != nil {
		return err
	}
	return c.JSON(quizResponse(st))
}

// audio handles GET /api/audio?text=&slow=
func (s *Server) audio(c *fiber.Ctx) error {
	text := strings.TrimSpace(c.Query("text"))
	if text == "" {
		return badRequest("text is required")
	}

	audio, err := s.deps.Speech.Synthesize(c.UserContext(), speech.Request{Text: text, Slow: c.QueryBool("slow")})
	if err != nil {
		if errors.Is(err, speech.ErrUnavailable) {
			return err
		}
		return &Error{Status: http.StatusServiceUnavailable, Code: CodeTTSUnavailable, Message: "Audio unavailable", Cause: err}
	}

	c.Set(fiber.HeaderContentType, "audio/mpeg")
	return c.Send(audio)
}

// speechPractice handles GET /api/practice?sentences=&slow=&transcription=
func (s *Server) speechPractice(c *fiber.Ctx) error {
	def := s.deps.Practice
	settings := practice.Settings{
		Sentences:            c.QueryInt("sentences", def.Sentences),
		Slow:                 c.QueryBool("slow", def.Slow),
		IncludeTranscription: c.QueryBool("transcription", def.IncludeTranscription),
	}

	var (
		sp  *practice.Speech
		err error
	)
	s.withRand(func(r *rand.Rand) { sp, err = practice.Build(s.deps.Dataset, settings, r) })
	if err != nil {
		return err
	}

	return c.JSON(PracticeResponse{
		Text:  sp.Text(),
		Slow:  sp.Settings.Slow,
		Lines: sp.Lines(),
	})
}

// wordNotes handles GET /api/notes?word=
func (s *Server) wordNotes(c *fiber.Ctx) error {
	word := strings.TrimSpace(c.Query("word"))
	if word == "" {
		return badRequest("word is required")
	}
	if !s.deps.Notes.Available() {
		return notes.ErrUnavailable
	}

	entry, ok := s.deps.Dataset.Lookup(word)
	if !ok {
		return &Error{Status: http.StatusNotFound, Code: CodeWordNotFound, Message: "Word not found: " + word}
	}

	n, err := s.deps.Notes.Explain(c.UserContext(), entry)
	if err != nil {
		if mapped := mapError(err); mapped != nil {
			return mapped
		}
		return &Error{Status: http.StatusBadGateway, Code: CodeUpstreamUnavailable, Message: "Could not generate notes", Cause: err}
	}

	return c.JSON(NoteResponse{
		Word:     entry.Word,
		English:  entry.English,
		Meaning:  n.Meaning,
		Usage:    n.Usage,
		Examples: n.Examples,
		Mnemonic: n.Mnemonic,
	})
}
