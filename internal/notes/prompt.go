package notes

import (
	"fmt"
	"strings"

	"github.com/abhisek/cihui/internal/store"
	"github.com/abhisek/cihui/internal/vocab"
)

const noteSystemPrompt = `You are a friendly Mandarin Chinese teacher helping an English-speaking adult learn Traditional Chinese vocabulary as used in Taiwan.`

func buildNoteUserMessage(e vocab.Entry) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Word: %s\n", e.Word)
	fmt.Fprintf(&b, "Pinyin: %s\n", e.Transcription)
	fmt.Fprintf(&b, "English: %s\n", e.English)
	if e.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", e.Category)
	}

	b.WriteString(`
Instructions:
1. Explain the meaning in 1-2 sentences, including nuances the short English gloss misses.
2. Describe usage: register, typical collocations and measure words where relevant.
3. Give 1-3 short example sentences a beginner can read. Use Traditional characters, tone-marked pinyin and an English translation.
4. Suggest one short mnemonic based on the characters' components or sound.
Keep everything brief. Do not repeat the word's gloss as the meaning.`)

	return b.String()
}

const reviewSystemPrompt = `You are reviewing a vocabulary learner's quiz mistakes. Identify patterns and suggest how to study the troublesome words.`

func buildReviewUserMessage(missed []store.MissedWord, stats *store.AnswerStats) string {
	var b strings.Builder

	if stats != nil && stats.Attempts > 0 {
		fmt.Fprintf(&b, "Overall: %d answers, %d correct (%.0f%%)\n\n",
			stats.Attempts, stats.Correct, float64(stats.Correct)/float64(stats.Attempts)*100)
	}

	b.WriteString("Most missed words:\n")
	for _, m := range missed {
		fmt.Fprintf(&b, "- %s (%s) [%s]: missed %d times\n", m.Word, m.English, m.Category, m.Misses)
	}

	if stats != nil && len(stats.Categories) > 0 {
		b.WriteString("\nAccuracy by category:\n")
		for _, c := range stats.Categories {
			var pct float64
			if c.Attempts > 0 {
				pct = float64(c.Correct) / float64(c.Attempts) * 100
			}
			fmt.Fprintf(&b, "- %s: %d/%d (%.0f%%)\n", c.Category, c.Correct, c.Attempts, pct)
		}
	}

	b.WriteString(`
Instructions:
1. Summarize in 2-3 sentences which words or categories cause the most trouble.
2. List 1-4 likely confusions, such as words with similar characters, sounds or meanings.
3. List 2-4 concrete study tips aimed at these specific words.
Be concise and specific. Do not include generic encouragement.`)

	return b.String()
}
