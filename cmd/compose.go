package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jkalivoda/moodreel/internal/compose"
	"github.com/jkalivoda/moodreel/internal/emotion"
)

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Synthesize a soundtrack for an emotion",
	Long: `Compose synthesizes the musical theme for one of the supported
emotions (angry, disgust, fear, happy, sad, surprise, neutral) and
writes it as a WAV file.`,
	RunE: runCompose,
}

func init() {
	rootCmd.AddCommand(composeCmd)

	composeCmd.Flags().String("emotion", "", "Emotion to compose for (required)")
	composeCmd.Flags().Duration("duration", 30*time.Second, "Soundtrack length")
	composeCmd.Flags().String("out", "soundtrack.wav", "Output WAV path")
	_ = composeCmd.MarkFlagRequired("emotion")
}

func runCompose(cmd *cobra.Command, args []string) error {
	name := mustGetString(cmd, "emotion")
	duration := mustGetDuration(cmd, "duration")
	outPath := mustGetString(cmd, "out")

	label, ok := emotion.Parse(name)
	if !ok {
		return fmt.Errorf("unknown emotion %q (supported: angry, disgust, fear, happy, sad, surprise, neutral)", name)
	}

	wave := compose.Compose(label, duration)
	if err := wave.WriteWAV(outPath); err != nil {
		return err
	}

	theme := compose.ThemeFor(label)
	fmt.Printf("Composed %s (%s) to %s, %s at %d Hz\n",
		theme.Name, theme.Style, outPath, wave.Duration(), wave.SampleRate)
	return nil
}
