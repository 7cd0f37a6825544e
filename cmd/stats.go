package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/cihui/internal/notes"
	"github.com/abhisek/cihui/internal/quiz"
	"github.com/abhisek/cihui/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		review, _ := cmd.Flags().GetBool("review")
		limit, _ := cmd.Flags().GetInt("limit")

		rt, err := openServices(cmd, serviceOptions{})
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		repo := rt.store.EventRepo()

		ds := rt.dataset.Stats()
		fmt.Printf("Words:       %d in %d categories, %d speech sentences\n",
			ds.TotalWords, ds.Categories, ds.SpeechSentences)

		stats, err := repo.AnswerStats(ctx)
		if err != nil {
			return fmt.Errorf("query answer stats: %w", err)
		}
		if stats.Attempts == 0 {
			fmt.Println("\nNo answers recorded yet. Run `cihui quiz` to start.")
			return nil
		}

		fmt.Printf("Answers:     %d\n", stats.Attempts)
		fmt.Printf("Correct:     %d\n", stats.Correct)
		fmt.Printf("Accuracy:    %.1f%%\n", quiz.Accuracy(stats.Correct, stats.Attempts))
		fmt.Printf("Sessions:    %d\n", stats.Sessions)

		fmt.Println()
		fmt.Printf("%-24s  %8s  %8s  %8s\n", "Category", "Answers", "Correct", "Accuracy")
		fmt.Println(strings.Repeat("─", 56))
		for _, c := range stats.Categories {
			fmt.Printf("%s  %8d  %8d  %7.1f%%\n",
				pad(c.Category, 24), c.Attempts, c.Correct, quiz.Accuracy(c.Correct, c.Attempts))
		}

		sessions, err := repo.QuerySessionSummaries(ctx, store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}
		if len(sessions) > 0 {
			fmt.Println()
			fmt.Printf("%-19s  %-16s  %-10s  %7s  %8s\n", "Finished", "Category", "Difficulty", "Score", "Duration")
			fmt.Println(strings.Repeat("─", 68))
			for _, s := range sessions {
				fmt.Printf("%-19s  %s  %-10s  %7s  %7ds\n",
					s.Timestamp.Local().Format("2006-01-02 15:04:05"),
					pad(s.Category, 16),
					s.Difficulty,
					fmt.Sprintf("%d/%d", s.CorrectAnswers, s.QuestionsServed),
					s.DurationSecs)
			}
		}

		missed, err := repo.MostMissed(ctx, limit)
		if err != nil {
			return fmt.Errorf("query missed words: %w", err)
		}
		if len(missed) > 0 {
			fmt.Println()
			fmt.Println("Most missed")
			fmt.Println(strings.Repeat("─", 56))
			for _, m := range missed {
				fmt.Printf("%s  %s  %dx\n", pad(m.Word, 12), pad(m.English, 24), m.Misses)
			}
		}

		if review {
			return printReview(ctx, rt.notes, missed, stats)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().Bool("review", false, "Ask the AI tutor to review your most missed words")
	statsCmd.Flags().IntP("limit", "n", 5, "Number of recent sessions and missed words to show")
}

func printReview(ctx context.Context, svc *notes.Service, missed []store.MissedWord, stats *store.AnswerStats) error {
	ctx, cancel := context.WithTimeout(ctx, notesTimeout)
	defer cancel()

	r, err := svc.Review(ctx, missed, stats)
	switch {
	case errors.Is(err, notes.ErrNothingToReview):
		fmt.Println("\nNothing to review yet.")
		return nil
	case errors.Is(err, notes.ErrUnavailable):
		return fmt.Errorf("%w\n\nSet an LLM API key to get a review", err)
	case err != nil:
		return fmt.Errorf("generate review: %w", err)
	}

	fmt.Println()
	fmt.Println("Tutor review")
	fmt.Println(strings.Repeat("─", 56))
	fmt.Println(r.Summary)
	for _, c := range r.Confusions {
		fmt.Printf("  • %s\n", c)
	}
	if len(r.Tips) > 0 {
		fmt.Println()
		for _, t := range r.Tips {
			fmt.Printf("  → %s\n", t)
		}
	}
	return nil
}
