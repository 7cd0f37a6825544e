package notes

import "github.com/abhisek/cihui/internal/llm"

// NoteSchema defines the JSON schema for a vocabulary note.
var NoteSchema = &llm.Schema{
	Name:        "vocab-note",
	Description: "Meaning, usage, example sentences and a memory aid for one word",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"meaning": map[string]any{
				"type":        "string",
				"description": "What the word means, including nuances the short gloss misses (1-2 sentences)",
			},
			"usage": map[string]any{
				"type":        "string",
				"description": "When and how the word is used: register, measure words, common collocations (1-3 sentences)",
			},
			"examples": map[string]any{
				"type":     "array",
				"minItems": 1,
				"maxItems": 3,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"sentence":      map[string]any{"type": "string", "description": "Example sentence in the target script"},
						"transcription": map[string]any{"type": "string", "description": "Romanization of the sentence"},
						"translation":   map[string]any{"type": "string", "description": "English translation"},
					},
					"required":             []any{"sentence", "transcription", "translation"},
					"additionalProperties": false,
				},
			},
			"mnemonic": map[string]any{
				"type":        "string",
				"description": "A short memory aid based on the characters' shapes or sounds",
			},
		},
		"required":             []any{"meaning", "usage", "examples", "mnemonic"},
		"additionalProperties": false,
	},
}

// ReviewSchema defines the JSON schema for a mistake review.
var ReviewSchema = &llm.Schema{
	Name:        "mistake-review",
	Description: "Summary of the learner's recurring vocabulary mistakes with study tips",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"description": "2-3 sentence overview of which words and categories cause trouble",
			},
			"confusions": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "1-4 likely confusions between similar words (5-12 words each)",
			},
			"tips": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "2-4 concrete study tips (5-15 words each)",
			},
		},
		"required":             []any{"summary", "confusions", "tips"},
		"additionalProperties": false,
	},
}
