package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/cihui/internal/config"
	"github.com/abhisek/cihui/internal/llm"
	"github.com/abhisek/cihui/internal/notes"
	"github.com/abhisek/cihui/internal/practice"
	"github.com/abhisek/cihui/internal/quiz"
	"github.com/abhisek/cihui/internal/speech"
	"github.com/abhisek/cihui/internal/store"
	"github.com/abhisek/cihui/internal/vocab"
)

func testDataset() *vocab.Dataset {
	return vocab.NewDataset([]vocab.Entry{
		{English: "Hello", Word: "你好", Transcription: "nǐ hǎo", Category: "Greetings"},
		{English: "Thank you", Word: "謝謝", Transcription: "xiè xiè", Category: "Greetings"},
		{English: "Goodbye", Word: "再見", Transcription: "zài jiàn", Category: "Greetings"},
		{English: "Rice", Word: "米飯", Transcription: "mǐ fàn", Category: "Food"},
		{English: "Tea", Word: "茶", Transcription: "chá", Category: "Food"},
		{English: "I like tea.", Word: "我喜歡茶。", Transcription: "wǒ xǐhuān chá.", Category: "Speech"},
	}, "test")
}

type fakeSynth struct {
	audio []byte
	err   error
	req   speech.Request
}

func (f *fakeSynth) Synthesize(_ context.Context, req speech.Request) ([]byte, error) {
	f.req = req
	return f.audio, f.err
}

type fakeEvents struct {
	store.EventRepo
	answers []store.AnswerEventData
}

func (f *fakeEvents) AppendAnswerEvent(_ context.Context, data store.AnswerEventData) error {
	f.answers = append(f.answers, data)
	return nil
}

func newTestServer(t *testing.T, mutate func(*Deps)) *Server {
	t.Helper()
	deps := Deps{
		Dataset:  testDataset(),
		Practice: practice.DefaultSettings(),
		Rand:     rand.New(rand.NewPCG(1, 2)),
	}
	if mutate != nil {
		mutate(&deps)
	}
	return New(deps, config.Serve{})
}

type client struct {
	t       *testing.T
	srv     *Server
	session string
}

func (c *client) do(method, path string, body any) (*http.Response, []byte) {
	c.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session != "" {
		req.Header.Set(SessionHeader, c.session)
	}

	resp, err := c.srv.App().Test(req, -1)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	if id := resp.Header.Get(SessionHeader); id != "" {
		c.session = id
	}
	out, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, out
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(b, &v), string(b))
	return v
}

func TestWords(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t, nil)}

	resp, body := c.do(http.MethodGet, "/api/words", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 6, decode[WordsResponse](t, body).Count)

	_, body = c.do(http.MethodGet, "/api/words?category=Food", nil)
	assert.Equal(t, 2, decode[WordsResponse](t, body).Count)

	_, body = c.do(http.MethodGet, "/api/words?search=THANK", nil)
	words := decode[WordsResponse](t, body)
	require.Equal(t, 1, words.Count)
	assert.Equal(t, "謝謝", words.Words[0].Word)

	_, body = c.do(http.MethodGet, "/api/words?category=Colors", nil)
	assert.JSONEq(t, `{"count":0,"words":[]}`, string(body))
}

func TestCategoriesAndStats(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t, nil)}

	_, body := c.do(http.MethodGet, "/api/categories", nil)
	cats := decode[CategoriesResponse](t, body)
	assert.Equal(t, []string{"Food", "Greetings", "Speech"}, cats.Categories)
	assert.Equal(t, []string{"All", "Food", "Greetings"}, cats.QuizCategories)

	_, body = c.do(http.MethodGet, "/api/stats", nil)
	assert.JSONEq(t, `{"total_words":6,"categories":3,"speech_sentences":1}`, string(body))
}

func TestRandomWord(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t, nil)}
	resp, body := c.do(http.MethodGet, "/api/words/random", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, decode[vocab.Entry](t, body).Word)

	empty := newTestServer(t, func(d *Deps) { d.Dataset = vocab.NewDataset(nil, "empty") })
	resp, _ = (&client{t: t, srv: empty}).do(http.MethodGet, "/api/words/random", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSessionHeader(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t, nil)}

	c.do(http.MethodGet, "/api/quiz", nil)
	_, err := uuid.Parse(c.session)
	require.NoError(t, err, "server assigns a uuid session id")

	first := c.session
	c.do(http.MethodGet, "/api/quiz", nil)
	assert.Equal(t, first, c.session, "a valid id is echoed back")

	c.session = "not-a-uuid"
	c.do(http.MethodGet, "/api/quiz", nil)
	assert.NotEqual(t, "not-a-uuid", c.session)
}

func TestQuizFlow(t *testing.T) {
	events := &fakeEvents{}
	c := &client{t: t, srv: newTestServer(t, func(d *Deps) { d.Events = events })}

	resp, body := c.do(http.MethodPost, "/api/quiz/question", QuestionRequest{Category: "Greetings", Difficulty: "hard"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	q := decode[QuestionResponse](t, body)
	assert.Len(t, q.Choices, 3, "three greetings cap a hard question at three choices")
	assert.Equal(t, "Greetings", q.Category)
	assert.Equal(t, "Hard", q.Difficulty)
	assert.NotContains(t, string(body), "correct_choice")

	answers := map[string]string{"你好": "Hello", "謝謝": "Thank you", "再見": "Goodbye"}
	resp, body = c.do(http.MethodPost, "/api/quiz/answer", AnswerRequest{Choice: answers[q.Word]})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	ans := decode[AnswerResponse](t, body)
	assert.True(t, ans.Correct)
	assert.Equal(t, "Correct! Well done!", ans.Message)
	assert.Equal(t, 1, ans.Score)
	assert.Equal(t, 1, ans.Attempts)
	assert.Equal(t, 100.0, ans.Accuracy)

	resp, body = c.do(http.MethodPost, "/api/quiz/answer", AnswerRequest{Choice: "Hello"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, CodeAlreadyAnswered, decode[ErrorResponse](t, body).Code)

	_, body = c.do(http.MethodGet, "/api/quiz", nil)
	state := decode[QuizResponse](t, body)
	assert.Equal(t, 1, state.Attempts)
	assert.Equal(t, "answered", state.Phase)
	require.NotNil(t, state.Answer)
	assert.True(t, state.Answer.Correct)

	require.Len(t, events.answers, 1)
	assert.Equal(t, c.session, events.answers[0].SessionID)
	assert.Equal(t, "Hard", events.answers[0].Difficulty)
	assert.Equal(t, 3, events.answers[0].OptionCount)
}

// slowSessions delays Load so overlapping requests interleave the way
// they would against a remote store.
type slowSessions struct {
	SessionStore
	delay time.Duration
}

func (s slowSessions) Load(ctx context.Context, id string) (*quiz.State, error) {
	time.Sleep(s.delay)
	return s.SessionStore.Load(ctx, id)
}

func TestConcurrentAnswersScoreOnce(t *testing.T) {
	events := &fakeEvents{}
	srv := newTestServer(t, func(d *Deps) {
		d.Events = events
		d.Sessions = slowSessions{SessionStore: NewMemorySessionStore(), delay: 50 * time.Millisecond}
	})
	c := &client{t: t, srv: srv}

	resp, body := c.do(http.MethodPost, "/api/quiz/question", QuestionRequest{Category: "Food"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	choice := decode[QuestionResponse](t, body).Choices[0]

	const n = 2
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, _ := json.Marshal(AnswerRequest{Choice: choice})
			req := httptest.NewRequest(http.MethodPost, "/api/quiz/answer", bytes.NewReader(b))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set(SessionHeader, c.session)
			resp, err := srv.App().Test(req, -1)
			if assert.NoError(t, err) {
				codes[i] = resp.StatusCode
				resp.Body.Close()
			}
		}()
	}
	wg.Wait()

	assert.ElementsMatch(t, []int{http.StatusOK, http.StatusConflict}, codes)
	assert.Len(t, events.answers, 1)

	_, body = c.do(http.MethodGet, "/api/quiz", nil)
	state := decode[QuizResponse](t, body)
	assert.Equal(t, 1, state.Attempts)
	assert.Equal(t, "answered", state.Phase)
}

func TestSessionLocksAreReleased(t *testing.T) {
	l := newSessionLocks()
	unlock := l.lock("a")

	done := make(chan struct{})
	go func() {
		l.lock("a")()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("second holder acquired a held lock")
	case <-time.After(20 * time.Millisecond):
	}

	unlock()
	<-done
	assert.Empty(t, l.locks)
}

func TestQuizWrongAnswerAndReset(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t, nil)}

	c.do(http.MethodPost, "/api/quiz/question", QuestionRequest{Category: "Food", Difficulty: "easy"})
	_, body := c.do(http.MethodPost, "/api/quiz/answer", AnswerRequest{Choice: "definitely wrong"})
	ans := decode[AnswerResponse](t, body)
	assert.False(t, ans.Correct)
	assert.Equal(t, "Incorrect! The correct answer is: "+ans.CorrectChoice, ans.Message)
	assert.Equal(t, 0.0, ans.Accuracy)

	_, body = c.do(http.MethodPost, "/api/quiz/reset", nil)
	state := decode[QuizResponse](t, body)
	assert.Equal(t, 0, state.Score)
	assert.Equal(t, 0, state.Attempts)
	assert.Equal(t, "no_question", state.Phase)
	assert.Equal(t, "Food", state.Category, "reset keeps the selection")
	assert.Equal(t, "Easy", state.Difficulty)
}

func TestQuizErrors(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t, nil)}

	resp, body := c.do(http.MethodPost, "/api/quiz/answer", AnswerRequest{Choice: "Hello"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, ErrorResponse{Code: CodeNoActiveQuestion, Message: "No active question", Status: 409}, decode[ErrorResponse](t, body))

	resp, body = c.do(http.MethodPost, "/api/quiz/question", QuestionRequest{Difficulty: "impossible"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, CodeInvalidRequest, decode[ErrorResponse](t, body).Code)

	resp, _ = c.do(http.MethodPost, "/api/quiz/answer", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestQuizEmptyPoolClearsQuestion(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t, nil)}

	resp, _ := c.do(http.MethodPost, "/api/quiz/question", QuestionRequest{Category: "Food"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := c.do(http.MethodPost, "/api/quiz/question", QuestionRequest{Category: "Speech"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, CodeEmptyPool, decode[ErrorResponse](t, body).Code)

	_, body = c.do(http.MethodGet, "/api/quiz", nil)
	state := decode[QuizResponse](t, body)
	assert.Nil(t, state.Question)
	assert.Equal(t, "Speech", state.Category)
}

func TestQuestionDefaultsToSessionSelection(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t, nil)}

	_, body := c.do(http.MethodPost, "/api/quiz/question", nil)
	q := decode[QuestionResponse](t, body)
	assert.Len(t, q.Choices, 2, "a fresh session starts on easy")
	assert.NotEqual(t, "Speech", q.Category)
}

func TestSessionsAreIsolated(t *testing.T) {
	srv := newTestServer(t, nil)
	a := &client{t: t, srv: srv}
	b := &client{t: t, srv: srv}

	a.do(http.MethodPost, "/api/quiz/question", nil)
	a.do(http.MethodPost, "/api/quiz/answer", AnswerRequest{Choice: "x"})

	_, body := b.do(http.MethodGet, "/api/quiz", nil)
	assert.Equal(t, 0, decode[QuizResponse](t, body).Attempts)
	_, body = a.do(http.MethodGet, "/api/quiz", nil)
	assert.Equal(t, 1, decode[QuizResponse](t, body).Attempts)
}

func TestAudio(t *testing.T) {
	synth := &fakeSynth{audio: []byte("ID3mp3")}
	c := &client{t: t, srv: newTestServer(t, func(d *Deps) { d.Speech = synth })}

	resp, body := c.do(http.MethodGet, "/api/audio?text=%E4%BD%A0%E5%A5%BD&slow=true", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "audio/mpeg", resp.Header.Get("Content-Type"))
	assert.Equal(t, "ID3mp3", string(body))
	assert.Equal(t, speech.Request{Text: "你好", Slow: true}, synth.req)

	resp, _ = c.do(http.MethodGet, "/api/audio", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAudioUnavailable(t *testing.T) {
	tests := []struct {
		name  string
		synth speech.Synthesizer
	}{
		{"no engine", nil},
		{"engine failure", &fakeSynth{err: errors.New("connection refused")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &client{t: t, srv: newTestServer(t, func(d *Deps) { d.Speech = tt.synth })}
			resp, body := c.do(http.MethodGet, "/api/audio?text=hi", nil)
			assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
			assert.Equal(t, CodeTTSUnavailable, decode[ErrorResponse](t, body).Code)
		})
	}
}

func TestPractice(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t, nil)}

	resp, body := c.do(http.MethodGet, "/api/practice?sentences=3&transcription=false", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	p := decode[PracticeResponse](t, body)
	require.Len(t, p.Lines, 1, "only one speech row exists")
	assert.Equal(t, "我喜歡茶。", p.Text)
	assert.Empty(t, p.Lines[0].Transcription)

	noSpeech := newTestServer(t, func(d *Deps) { d.Dataset = vocab.Sample() })
	resp, body = (&client{t: t, srv: noSpeech}).do(http.MethodGet, "/api/practice", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, CodeNoSpeechEntries, decode[ErrorResponse](t, body).Code)
}

func TestNotes(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{
		"meaning": "Tea, the drink.",
		"usage": "杯 is the usual measure word.",
		"examples": [{"sentence": "我喝茶。", "transcription": "wǒ hē chá.", "translation": "I drink tea."}],
		"mnemonic": "Grass on top, a person under a roof."
	}`)})
	c := &client{t: t, srv: newTestServer(t, func(d *Deps) { d.Notes = notes.NewService(mock, notes.DefaultConfig()) })}

	resp, body := c.do(http.MethodGet, "/api/notes?word=%E8%8C%B6", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	n := decode[NoteResponse](t, body)
	assert.Equal(t, "Tea", n.English)
	assert.Equal(t, "Tea, the drink.", n.Meaning)
	require.Len(t, n.Examples, 1)

	resp, body = c.do(http.MethodGet, "/api/notes?word=nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, CodeWordNotFound, decode[ErrorResponse](t, body).Code)

	resp, _ = c.do(http.MethodGet, "/api/notes", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNotesUnavailableAndUpstreamFailure(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t, nil)}
	resp, body := c.do(http.MethodGet, "/api/notes?word=Tea", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, CodeNotesUnavailable, decode[ErrorResponse](t, body).Code)

	failing := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}})
	c = &client{t: t, srv: newTestServer(t, func(d *Deps) { d.Notes = notes.NewService(failing, notes.DefaultConfig()) })}
	resp, body = c.do(http.MethodGet, "/api/notes?word=Tea", nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, CodeUpstreamUnavailable, decode[ErrorResponse](t, body).Code)
}

func TestUnknownRoute(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t, nil)}
	resp, body := c.do(http.MethodGet, "/api/nothing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, CodeHTTP, decode[ErrorResponse](t, body).Code)
}
