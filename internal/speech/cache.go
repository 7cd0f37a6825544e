package speech

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CachedSynthesizer keeps synthesized audio on disk and collapses
// concurrent identical requests into one upstream call.
type CachedSynthesizer struct {
	inner   Synthesizer
	dir     string
	sfGroup singleflight.Group
	log     *zap.Logger
}

// NewCachedSynthesizer wraps inner with a cache rooted at dir.
func NewCachedSynthesizer(inner Synthesizer, dir string, log *zap.Logger) *CachedSynthesizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedSynthesizer{inner: inner, dir: dir, log: log}
}

func (c *CachedSynthesizer) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	key := cacheKey(req)
	path := filepath.Join(c.dir, key+".mp3")

	if audio, err := os.ReadFile(path); err == nil && len(audio) > 0 {
		c.log.Debug("audio cache hit", zap.String("key", key))
		return audio, nil
	}

	res, err, _ := c.sfGroup.Do(key, func() (any, error) {
		audio, err := c.inner.Synthesize(ctx, req)
		if err != nil {
			return nil, err
		}
		if err := c.store(path, audio); err != nil {
			// The audio is still good; only the cache write failed.
			c.log.Warn("failed to cache audio", zap.String("key", key), zap.Error(err))
		}
		return audio, nil
	})
	if err != nil {
		return nil, err
	}
	return res.([]byte), nil
}

func (c *CachedSynthesizer) store(path string, audio []byte) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(c.dir, "audio-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(audio); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func cacheKey(req Request) string {
	h := sha256.New()
	h.Write([]byte(req.lang()))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatBool(req.Slow)))
	h.Write([]byte{0})
	h.Write([]byte(req.Text))
	return hex.EncodeToString(h.Sum(nil))
}
