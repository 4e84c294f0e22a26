package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jkalivoda/moodreel/internal/config"
	"github.com/jkalivoda/moodreel/internal/emotion"
	"github.com/jkalivoda/moodreel/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: match, compose, and render the slideshow",
	Long: `Run searches the candidate photos for the person shown in the
reference images, composes a soundtrack from the dominant emotion of
the matched photos, and renders the annotated photos into a slideshow
video with the soundtrack muxed in.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("refs", "", "Directory with reference images of the person (required)")
	runCmd.Flags().String("photos", "", "Directory with candidate photos (required)")
	runCmd.Flags().String("out", "output", "Output directory")
	_ = runCmd.MarkFlagRequired("refs")
	_ = runCmd.MarkFlagRequired("photos")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log := newLogger()

	refsDir := mustGetString(cmd, "refs")
	photosDir := mustGetString(cmd, "photos")
	outDir := mustGetString(cmd, "out")

	refPaths, err := listImages(refsDir)
	if err != nil {
		return err
	}
	photoPaths, err := listImages(photosDir)
	if err != nil {
		return err
	}

	// Set up context with signal handling for graceful cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle Ctrl+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal...")
		cancel()
	}()

	runner, err := pipeline.NewRunner(cfg, log)
	if err != nil {
		return err
	}

	matched, diag, err := runner.RunMatching(ctx, refPaths, photoPaths)
	if err != nil {
		return err
	}
	if len(matched) == 0 {
		return fmt.Errorf("no photos matched the reference set (%d candidates)", len(photoPaths))
	}

	wave, dominant, tally := runner.ComposeSoundtrack(matched)

	videoPath, err := runner.BuildSlideshow(ctx, matched, wave, outDir, diag)
	if err != nil {
		return err
	}

	analysis := pipeline.BuildAnalysis(len(photoPaths), matched, dominant, tally, diag)
	analysisPath, err := pipeline.WriteAnalysis(outDir, analysis)
	if err != nil {
		return err
	}

	fmt.Printf("Matched %d of %d photos\n", len(matched), len(photoPaths))
	fmt.Printf("Dominant emotion: %s\n", dominant)
	for _, label := range emotion.Vocabulary {
		if n := tally[label]; n > 0 {
			fmt.Printf("  %-9s %d\n", label, n)
		}
	}
	if summary := diag.Summary(); summary != "" {
		fmt.Printf("Recoverable failures:\n%s", summary)
	}
	fmt.Printf("Slideshow: %s\n", videoPath)
	fmt.Printf("Analysis:  %s\n", analysisPath)
	return nil
}
