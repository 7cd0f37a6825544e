package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
)

const (
	defaultGoogleURL = "https://translate.google.com/translate_tts"

	// maxChunkRunes is the longest text the endpoint accepts per request.
	maxChunkRunes = 100

	slowSpeed = "0.24"
)

// GoogleSynthesizer talks to the translate_tts endpoint used by gTTS.
type GoogleSynthesizer struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// NewGoogleSynthesizer creates a GoogleSynthesizer for the public endpoint.
func NewGoogleSynthesizer(log *zap.Logger) *GoogleSynthesizer {
	return NewGoogleSynthesizerWithURL(defaultGoogleURL, log)
}

// NewGoogleSynthesizerWithURL creates a GoogleSynthesizer with a custom
// endpoint (for testing).
func NewGoogleSynthesizerWithURL(baseURL string, log *zap.Logger) *GoogleSynthesizer {
	if baseURL == "" {
		baseURL = defaultGoogleURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &GoogleSynthesizer{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log.With(zap.String("engine", EngineGoogle)),
	}
}

// Synthesize splits the text into chunks the endpoint accepts and
// concatenates the MP3 frames of every chunk.
func (g *GoogleSynthesizer) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	chunks := splitText(req.Text, maxChunkRunes)
	if len(chunks) == 0 {
		return nil, ErrEmptyText
	}

	var out bytes.Buffer
	for i, chunk := range chunks {
		audio, err := g.fetch(ctx, chunk, i, len(chunks), req.lang(), req.Slow)
		if err != nil {
			g.log.Error("google tts request failed", zap.Int("chunk", i), zap.Error(err))
			return nil, err
		}
		out.Write(audio)
	}

	g.log.Debug("google tts response",
		zap.Int("chunks", len(chunks)),
		zap.Int("bytes", out.Len()),
		zap.Bool("slow", req.Slow))
	return out.Bytes(), nil
}

func (g *GoogleSynthesizer) fetch(ctx context.Context, text string, idx, total int, lang string, slow bool) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", lang)
	q.Set("q", text)
	q.Set("idx", strconv.Itoa(idx))
	q.Set("total", strconv.Itoa(total))
	q.Set("textlen", strconv.Itoa(len([]rune(text))))
	if slow {
		q.Set("ttsspeed", slowSpeed)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("google tts: create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := g.doWithRetry(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("google tts: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google tts: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("google tts: read body: %w", err)
	}
	return body, nil
}

// doWithRetry executes the request with a single retry on 5xx or network errors.
func (g *GoogleSynthesizer) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := g.httpClient.Do(req)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry || ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	g.log.Warn("google tts retry", zap.String("reason", reason))

	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(500 * time.Millisecond):
	}
	return g.httpClient.Do(req)
}

// splitText breaks text into chunks of at most max runes, preferring to
// cut after whitespace or punctuation.
func splitText(text string, max int) []string {
	var pieces []string
	var cur []rune
	for _, r := range strings.TrimSpace(text) {
		cur = append(cur, r)
		if unicode.IsSpace(r) || unicode.IsPunct(r) {
			pieces = append(pieces, string(cur))
			cur = cur[:0]
		}
	}
	if len(cur) > 0 {
		pieces = append(pieces, string(cur))
	}

	var chunks []string
	var buf []rune
	flush := func() {
		if s := strings.TrimSpace(string(buf)); s != "" {
			chunks = append(chunks, s)
		}
		buf = buf[:0]
	}
	for _, p := range pieces {
		pr := []rune(p)
		if len(buf)+len(pr) > max {
			flush()
		}
		for len(pr) > max {
			buf = append(buf, pr[:max]...)
			flush()
			pr = pr[max:]
		}
		buf = append(buf, pr...)
	}
	flush()
	return chunks
}
