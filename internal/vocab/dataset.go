package vocab

import (
	"math/rand/v2"
	"sort"
)

// AllCategories is the category filter value that disables filtering.
const AllCategories = "All"

// Dataset is an ordered, read-only sequence of entries.
type Dataset struct {
	entries []Entry
	source  string
}

// Stats summarizes a dataset for the home screen stats bar.
type Stats struct {
	TotalWords      int `json:"total_words"`
	Categories      int `json:"categories"`
	SpeechSentences int `json:"speech_sentences"`
}

// NewDataset creates a dataset from entries. The slice is copied.
func NewDataset(entries []Entry, source string) *Dataset {
	cp := make([]Entry, len(entries))
	copy(cp, entries)
	return &Dataset{entries: cp, source: source}
}

// Source describes where the dataset was loaded from.
func (d *Dataset) Source() string {
	return d.source
}

// Entries returns a copy of all entries in load order.
func (d *Dataset) Entries() []Entry {
	cp := make([]Entry, len(d.entries))
	copy(cp, d.entries)
	return cp
}

// Len returns the number of entries.
func (d *Dataset) Len() int {
	return len(d.entries)
}

// Categories returns the distinct categories in sorted order.
func (d *Dataset) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range d.entries {
		if !seen[e.Category] {
			seen[e.Category] = true
			out = append(out, e.Category)
		}
	}
	sort.Strings(out)
	return out
}

// QuizCategories returns the sorted categories that contain at least one
// non-speech entry, prefixed with AllCategories.
func (d *Dataset) QuizCategories() []string {
	out := []string{AllCategories}
	for _, c := range d.Categories() {
		if !IsSpeech(c) {
			out = append(out, c)
		}
	}
	return out
}

// SpeechEntries returns the entries whose category marks speech content.
func (d *Dataset) SpeechEntries() []Entry {
	var out []Entry
	for _, e := range d.entries {
		if e.IsSpeech() {
			out = append(out, e)
		}
	}
	return out
}

// Filter returns entries in the given category ("All" or "" for every
// category) whose fields match search.
func (d *Dataset) Filter(category, search string) []Entry {
	var out []Entry
	for _, e := range d.entries {
		if category != "" && category != AllCategories && e.Category != category {
			continue
		}
		if !e.Matches(search) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Lookup returns the first entry whose word or gloss equals term.
func (d *Dataset) Lookup(term string) (Entry, bool) {
	for _, e := range d.entries {
		if e.Word == term || e.English == term {
			return e, true
		}
	}
	return Entry{}, false
}

// Random returns a uniformly sampled entry from the whole dataset.
func (d *Dataset) Random(rng *rand.Rand) (Entry, bool) {
	if len(d.entries) == 0 {
		return Entry{}, false
	}
	var i int
	if rng != nil {
		i = rng.IntN(len(d.entries))
	} else {
		i = rand.IntN(len(d.entries))
	}
	return d.entries[i], true
}

// Stats returns word, category and speech sentence counts.
func (d *Dataset) Stats() Stats {
	return Stats{
		TotalWords:      len(d.entries),
		Categories:      len(d.Categories()),
		SpeechSentences: len(d.SpeechEntries()),
	}
}
