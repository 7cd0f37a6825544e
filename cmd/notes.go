package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/cihui/internal/notes"
	"github.com/abhisek/cihui/internal/vocab"
)

const notesTimeout = time.Minute

var notesCmd = &cobra.Command{
	Use:   "notes <word>",
	Short: "Ask the AI tutor for usage notes on a word",
	Long: `Print meaning, usage, example sentences and a mnemonic for a word.

The word may be given in Chinese, pinyin or English. An LLM provider must be
configured (see cihui --help).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openServices(cmd, serviceOptions{})
		if err != nil {
			return err
		}
		defer rt.Close()

		term := strings.Join(args, " ")
		entry, err := resolveEntry(rt.dataset, term)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), notesTimeout)
		defer cancel()

		note, err := rt.notes.Explain(ctx, entry)
		if errors.Is(err, notes.ErrUnavailable) {
			return fmt.Errorf("%w\n\nSet ANTHROPIC_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY or OPENROUTER_API_KEY", err)
		}
		if err != nil {
			return fmt.Errorf("generate notes: %w", err)
		}

		printNote(note)
		return nil
	},
}

// resolveEntry finds the word by exact Chinese or English match first, then
// by a search that must match exactly one entry.
func resolveEntry(ds *vocab.Dataset, term string) (vocab.Entry, error) {
	if e, ok := ds.Lookup(term); ok {
		return e, nil
	}
	matches := ds.Filter(vocab.AllCategories, term)
	switch len(matches) {
	case 0:
		return vocab.Entry{}, fmt.Errorf("no word matches %q", term)
	case 1:
		return matches[0], nil
	}
	var words []string
	for _, m := range matches[:min(len(matches), 5)] {
		words = append(words, fmt.Sprintf("%s (%s)", m.Word, m.English))
	}
	return vocab.Entry{}, fmt.Errorf("%q matches %d words: %s", term, len(matches), strings.Join(words, ", "))
}

func printNote(n *notes.Note) {
	sep := strings.Repeat("─", 60)

	fmt.Printf("%s  %s  %s\n", n.Entry.Word, n.Entry.Transcription, n.Entry.English)
	fmt.Println(sep)
	fmt.Println("Meaning")
	fmt.Printf("  %s\n\n", n.Meaning)
	fmt.Println("Usage")
	fmt.Printf("  %s\n", n.Usage)
	if len(n.Examples) > 0 {
		fmt.Println()
		fmt.Println("Examples")
		for _, ex := range n.Examples {
			fmt.Printf("  %s\n", ex.Sentence)
			if ex.Transcription != "" {
				fmt.Printf("  %s\n", ex.Transcription)
			}
			fmt.Printf("  %s\n\n", ex.Translation)
		}
	}
	if n.Mnemonic != "" {
		fmt.Println("Remember it")
		fmt.Printf("  %s\n", n.Mnemonic)
	}
}
