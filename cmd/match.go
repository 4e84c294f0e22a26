package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jkalivoda/moodreel/internal/config"
	"github.com/jkalivoda/moodreel/internal/pipeline"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Find the person in the candidate photos without rendering a video",
	Long: `Match evaluates every candidate photo against the reference images and
prints a report of the photos the person appears in, with the detected
emotion and confidence per face. Annotated copies of the matched photos
are written to the output directory.`,
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().String("refs", "", "Directory with reference images of the person (required)")
	matchCmd.Flags().String("photos", "", "Directory with candidate photos (required)")
	matchCmd.Flags().String("out", "output", "Output directory for annotated photos")
	_ = matchCmd.MarkFlagRequired("refs")
	_ = matchCmd.MarkFlagRequired("photos")
}

func runMatch(cmd *cobra.Command, args []string) error {
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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
		fmt.Printf("No matches in %d candidate photos\n", len(photoPaths))
		return nil
	}

	if _, err := pipeline.WriteMarkedPhotos(outDir, matched); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PHOTO\tFACES\tEMOTION\tCONFIDENCE")
	for _, p := range matched {
		best := p.Regions[0]
		for _, r := range p.Regions[1:] {
			if r.Confidence > best.Confidence {
				best = r
			}
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%.1f%%\n", p.Photo.ID, len(p.Regions), best.Emotion, best.Confidence)
	}
	w.Flush()

	fmt.Printf("\nMatched %d of %d photos, annotated copies in %s\n", len(matched), len(photoPaths), outDir)
	if summary := diag.Summary(); summary != "" {
		fmt.Printf("Recoverable failures:\n%s", summary)
	}
	return nil
}
