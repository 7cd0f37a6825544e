package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/cihui/internal/vocab"
)

var wordsCmd = &cobra.Command{
	Use:   "words",
	Short: "List words, optionally filtered by category and search text",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		search, _ := cmd.Flags().GetString("search")
		export, _ := cmd.Flags().GetString("export")
		asJSON, _ := cmd.Flags().GetBool("json")

		rt, err := openServices(cmd, serviceOptions{})
		if err != nil {
			return err
		}
		defer rt.Close()

		if category != "" && !strings.EqualFold(category, vocab.AllCategories) {
			if category, err = findCategory(rt.dataset, category); err != nil {
				return err
			}
		}
		entries := rt.dataset.Filter(category, search)

		switch {
		case export != "":
			if err := exportEntries(export, entries); err != nil {
				return err
			}
			fmt.Printf("Exported %d words to %s\n", len(entries), export)
			return nil
		case asJSON:
			return vocab.EncodeJSON(os.Stdout, entries)
		}

		if len(entries) == 0 {
			fmt.Println("No words found.")
			return nil
		}
		printEntries(entries)
		fmt.Printf("\nShowing %d words\n", len(entries))
		return nil
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories with their word counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openServices(cmd, serviceOptions{})
		if err != nil {
			return err
		}
		defer rt.Close()

		categories := rt.dataset.Categories()
		if len(categories) == 0 {
			fmt.Println("No categories found.")
			return nil
		}

		fmt.Printf("%-24s  %6s  %s\n", "Category", "Words", "Kind")
		fmt.Println(strings.Repeat("─", 44))
		for _, c := range categories {
			kind := "quiz"
			if vocab.IsSpeech(c) {
				kind = "speech"
			}
			fmt.Printf("%s  %6d  %s\n", pad(c, 24), len(rt.dataset.Filter(c, "")), kind)
		}
		return nil
	},
}

var randomCmd = &cobra.Command{
	Use:   "random",
	Short: "Show a random word",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openServices(cmd, serviceOptions{})
		if err != nil {
			return err
		}
		defer rt.Close()

		e, ok := rt.dataset.Random(nil)
		if !ok {
			fmt.Println("The word list is empty.")
			return nil
		}
		fmt.Printf("Word:      %s\n", e.Word)
		fmt.Printf("Pinyin:    %s\n", e.Transcription)
		fmt.Printf("English:   %s\n", e.English)
		fmt.Printf("Category:  %s\n", e.Category)
		return nil
	},
}

func init() {
	wordsCmd.Flags().StringP("category", "c", "", "Only list words in this category")
	wordsCmd.Flags().StringP("search", "s", "", "Case-insensitive match on the word, pinyin or English")
	wordsCmd.Flags().Bool("json", false, "Print the words as a JSON word file")
	wordsCmd.Flags().String("export", "", "Write the words to a .json or .xlsx file")
}

// findCategory resolves name against every category of ds, ignoring case.
func findCategory(ds *vocab.Dataset, name string) (string, error) {
	for _, c := range ds.Categories() {
		if strings.EqualFold(c, name) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q (available: %s)", name, strings.Join(ds.Categories(), ", "))
}

func printEntries(entries []vocab.Entry) {
	fmt.Printf("%s  %s  %s  %s\n", pad("Word", 12), pad("Pinyin", 20), pad("English", 24), "Category")
	fmt.Println(strings.Repeat("─", 80))
	for _, e := range entries {
		fmt.Printf("%s  %s  %s  %s\n", pad(e.Word, 12), pad(e.Transcription, 20), pad(e.English, 24), e.Category)
	}
}

func exportEntries(path string, entries []vocab.Entry) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext != "json" && ext != "xlsx" {
		return fmt.Errorf("%w: %q (want .json or .xlsx)", vocab.ErrUnsupportedFormat, ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if ext == "json" {
		err = vocab.EncodeJSON(f, entries)
	} else {
		err = vocab.EncodeXLSX(f, entries)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("export words: %w", err)
	}
	return f.Close()
}

// pad right-pads s to width terminal cells. Han characters take two cells.
func pad(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
