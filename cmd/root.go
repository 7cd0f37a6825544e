package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/cihui/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "cihui",
	Short: "Terminal vocabulary trainer for Traditional Chinese",
	Long: `cihui (詞彙) is a terminal vocabulary trainer for Traditional Chinese.

Words are read from an Excel, CSV or JSON file with the columns
"English Word", "Traditional Chinese Word", "Pinyin" and "Category".
Without a word file a small built-in sample is used.

AI usage notes need an LLM key, e.g. ANTHROPIC_API_KEY, OPENAI_API_KEY,
GEMINI_API_KEY or OPENROUTER_API_KEY. Settings can also be placed in
cihui.yaml or CIHUI_* environment variables.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, false)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ./cihui.yaml or $XDG_CONFIG_HOME/cihui/cihui.yaml)")
	rootCmd.PersistentFlags().String("data", "", "Path to the word file (.xlsx, .csv or .json)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides CIHUI_DB env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(wordsCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(randomCmd)
	rootCmd.AddCommand(speakCmd)
	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(notesCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db or the db config key
// (highest priority), then CIHUI_DB env var, then the default XDG path.
func resolveDBPath(configured string) (string, error) {
	if configured != "" {
		return configured, store.EnsureDir(configured)
	}
	return store.DefaultDBPath()
}
