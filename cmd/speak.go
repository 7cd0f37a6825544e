package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/cihui/internal/practice"
	"github.com/abhisek/cihui/internal/speech"
)

const speakTimeout = 2 * time.Minute

var speakCmd = &cobra.Command{
	Use:   "speak <text>",
	Short: "Read text aloud, or save it as MP3 with --out",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slow, _ := cmd.Flags().GetBool("slow")
		out, _ := cmd.Flags().GetString("out")

		rt, err := openServices(cmd, serviceOptions{})
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), speakTimeout)
		defer cancel()

		req := speech.Request{Text: strings.Join(args, " "), Slow: slow}
		if out != "" {
			audio, err := rt.synth.Synthesize(ctx, req)
			if err != nil {
				return speechError(err)
			}
			if err := os.WriteFile(out, audio, 0o644); err != nil {
				return fmt.Errorf("write audio: %w", err)
			}
			fmt.Printf("Saved %d bytes to %s\n", len(audio), out)
			return nil
		}
		return speechError(rt.speaker().Say(ctx, req))
	},
}

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Print a short speech built from the speech sentences",
	RunE: func(cmd *cobra.Command, args []string) error {
		play, _ := cmd.Flags().GetBool("play")

		rt, err := openServices(cmd, serviceOptions{})
		if err != nil {
			return err
		}
		defer rt.Close()

		settings := rt.cfg.Practice
		if cmd.Flags().Changed("sentences") {
			settings.Sentences, _ = cmd.Flags().GetInt("sentences")
		}
		if cmd.Flags().Changed("slow") {
			settings.Slow, _ = cmd.Flags().GetBool("slow")
		}
		if noTranscription, _ := cmd.Flags().GetBool("no-transcription"); noTranscription {
			settings.IncludeTranscription = false
		}

		sp, err := practice.Build(rt.dataset, settings, nil)
		if errors.Is(err, practice.ErrNoSpeechEntries) {
			fmt.Println("No speech sentences in the word list.")
			return nil
		}
		if err != nil {
			return err
		}

		for i, l := range sp.Lines() {
			fmt.Printf("%d. %s\n", i+1, l.Word)
			if l.Transcription != "" {
				fmt.Printf("   %s\n", l.Transcription)
			}
			fmt.Printf("   %s\n", l.English)
		}

		if !play {
			return nil
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), speakTimeout)
		defer cancel()
		return speechError(rt.speaker().Say(ctx, speech.Request{Text: sp.Text(), Slow: sp.Settings.Slow}))
	},
}

func init() {
	speakCmd.Flags().Bool("slow", false, "Speak slowly")
	speakCmd.Flags().StringP("out", "o", "", "Write the MP3 to this file instead of playing it")

	practiceCmd.Flags().IntP("sentences", "n", practice.DefaultSentences,
		fmt.Sprintf("Number of sentences (%d-%d)", practice.MinSentences, practice.MaxSentences))
	practiceCmd.Flags().Bool("slow", false, "Play at slow speed")
	practiceCmd.Flags().Bool("no-transcription", false, "Hide the pinyin")
	practiceCmd.Flags().Bool("play", false, "Read the speech aloud")
}

func speechError(err error) error {
	if errors.Is(err, speech.ErrUnavailable) {
		return fmt.Errorf("%w\n\nCheck tts.engine and install mpv, ffplay or mpg123", err)
	}
	return err
}
