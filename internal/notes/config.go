package notes

// Config holds note generation settings.
type Config struct {
	MaxTokens       int
	ReviewMaxTokens int
	Temperature     float64
}

// DefaultConfig returns sensible defaults for note generation.
func DefaultConfig() Config {
	return Config{
		MaxTokens:       512,
		ReviewMaxTokens: 512,
		Temperature:     0.4,
	}
}
