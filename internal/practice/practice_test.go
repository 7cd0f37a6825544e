package practice

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/cihui/internal/vocab"
)

func dataset(speechRows int) *vocab.Dataset {
	entries := []vocab.Entry{
		{English: "Hello", Word: "你好", Transcription: "nǐ hǎo", Category: "Greetings"},
		{English: "Water", Word: "水", Transcription: "shuǐ", Category: "Basic"},
	}
	sentences := []vocab.Entry{
		{English: "I am a student.", Word: "我是學生。", Transcription: "wǒ shì xuéshēng.", Category: "Speech"},
		{English: "I like tea.", Word: "我喜歡茶。", Transcription: "wǒ xǐhuān chá.", Category: "Speech"},
		{English: "Today is hot.", Word: "今天很熱。", Transcription: "jīntiān hěn rè.", Category: "Daily speech"},
		{English: "Where is the station?", Word: "車站在哪裡？", Transcription: "chēzhàn zài nǎlǐ?", Category: "Speech"},
	}
	return vocab.NewDataset(append(entries, sentences[:speechRows]...), "test")
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

func TestSettings_Normalize(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 1},
		{-3, 1},
		{5, 5},
		{20, 20},
		{99, 20},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Settings{Sentences: tt.in}.Normalize().Sentences)
	}
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, 5, s.Sentences)
	assert.False(t, s.Slow)
	assert.True(t, s.IncludeTranscription)
}

func TestBuild(t *testing.T) {
	sp, err := Build(dataset(4), Settings{Sentences: 3, IncludeTranscription: true}, seeded(1))
	require.NoError(t, err)
	require.Len(t, sp.Sentences, 3)

	seen := map[string]bool{}
	for _, e := range sp.Sentences {
		assert.True(t, e.IsSpeech(), "%s is not a speech row", e.Word)
		assert.False(t, seen[e.Word], "duplicate sentence %s", e.Word)
		seen[e.Word] = true
	}
}

func TestBuild_ClampsToAvailableRows(t *testing.T) {
	sp, err := Build(dataset(2), DefaultSettings(), seeded(7))
	require.NoError(t, err)
	assert.Len(t, sp.Sentences, 2)
	assert.Equal(t, 5, sp.Settings.Sentences)
}

func TestBuild_NoSpeechRows(t *testing.T) {
	_, err := Build(dataset(0), DefaultSettings(), seeded(1))
	assert.ErrorIs(t, err, ErrNoSpeechEntries)

	_, err = Build(vocab.Sample(), DefaultSettings(), nil)
	assert.ErrorIs(t, err, ErrNoSpeechEntries)
}

func TestBuild_Deterministic(t *testing.T) {
	a, err := Build(dataset(4), Settings{Sentences: 4}, seeded(42))
	require.NoError(t, err)
	b, err := Build(dataset(4), Settings{Sentences: 4}, seeded(42))
	require.NoError(t, err)
	assert.Equal(t, a.Sentences, b.Sentences)
}

func TestSpeech_TextAndLines(t *testing.T) {
	sp := &Speech{
		Sentences: []vocab.Entry{
			{English: "I like tea.", Word: "我喜歡茶。", Transcription: "wǒ xǐhuān chá.", Category: "Speech"},
			{English: "Today is hot.", Word: " 今天很熱。 ", Transcription: "jīntiān hěn rè.", Category: "Speech"},
		},
		Settings: Settings{Sentences: 2, IncludeTranscription: true},
	}

	assert.Equal(t, "我喜歡茶。 今天很熱。", sp.Text())

	lines := sp.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, Line{Word: "我喜歡茶。", Transcription: "wǒ xǐhuān chá.", English: "I like tea."}, lines[0])

	sp.Settings.IncludeTranscription = false
	for _, l := range sp.Lines() {
		assert.Empty(t, l.Transcription)
	}
}
