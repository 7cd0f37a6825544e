package vocab

import "strings"

// Entry is a single vocabulary record.
type Entry struct {
	// English is the gloss shown as an answer choice.
	English string `json:"english"`

	// Word is the target-language text (Traditional Chinese).
	Word string `json:"word"`

	// Transcription is the phonetic spelling (Pinyin).
	Transcription string `json:"transcription"`

	// Category groups entries for filtering. Categories containing
	// "speech" hold practice sentences rather than quiz words.
	Category string `json:"category"`
}

// IsSpeech reports whether the entry belongs to a speech-practice category.
func (e Entry) IsSpeech() bool {
	return IsSpeech(e.Category)
}

// Key identifies an entry by its content. Duplicate rows share a key.
func (e Entry) Key() string {
	return e.Word + "\x1f" + e.English
}

// Matches reports whether query is a case-insensitive substring of the
// gloss, the word or the transcription. An empty query matches everything.
func (e Entry) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.English), q) ||
		strings.Contains(strings.ToLower(e.Word), q) ||
		strings.Contains(strings.ToLower(e.Transcription), q)
}

// IsSpeech reports whether category marks speech-practice content.
func IsSpeech(category string) bool {
	return strings.Contains(strings.ToLower(category), "speech")
}
