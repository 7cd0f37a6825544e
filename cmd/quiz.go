package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/cihui/internal/app"
	"github.com/abhisek/cihui/internal/quiz"
	"github.com/abhisek/cihui/internal/vocab"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Start the quiz straight away",
	Long: `Open the TUI on the quiz screen.

The category and difficulty default to quiz.category and quiz.difficulty
from the config, or to the selection saved by the previous run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, true)
	},
}

func init() {
	quizCmd.Flags().StringP("category", "c", "", "Category to quiz on (\"All\" for every category)")
	quizCmd.Flags().StringP("difficulty", "d", "", "Difficulty: easy, medium or hard")
}

// quizSelection restores the saved quiz state and applies the requested
// category and difficulty to it.
func quizSelection(cmd *cobra.Command, rt *services) (*quiz.State, error) {
	st, err := app.RestoreState(cmd.Context(), rt.store.SnapshotRepo())
	if err != nil {
		rt.log.Warn("could not restore quiz state", zap.Error(err))
	}

	// A fresh state takes its selection from the config.
	fresh := st.Attempts() == 0 && st.Question() == nil

	category := st.Category()
	if fresh {
		category = rt.cfg.Quiz.Category
	}
	if cmd.Flags().Changed("category") {
		category, _ = cmd.Flags().GetString("category")
	}
	if category, err = matchCategory(rt.dataset, category); err != nil {
		return nil, err
	}

	difficulty := st.Difficulty()
	if fresh || cmd.Flags().Changed("difficulty") {
		raw := rt.cfg.Quiz.Difficulty
		if cmd.Flags().Changed("difficulty") {
			raw, _ = cmd.Flags().GetString("difficulty")
		}
		if difficulty, err = quiz.ParseDifficulty(raw); err != nil {
			return nil, err
		}
	}

	st.SetSelection(category, difficulty)
	return st, nil
}

// matchCategory resolves name against the quiz categories of ds, ignoring
// case. An empty name selects every category.
func matchCategory(ds *vocab.Dataset, name string) (string, error) {
	if name == "" {
		return vocab.AllCategories, nil
	}
	available := ds.QuizCategories()
	for _, c := range available {
		if strings.EqualFold(c, name) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q (available: %s)", name, strings.Join(available, ", "))
}
