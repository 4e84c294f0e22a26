// Package scheduler fans candidate photos across a bounded worker pool
// in fixed-size batches, isolating slow or failing photos from their
// siblings.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"github.com/jkalivoda/moodreel/internal/facematch"
)

// Matcher evaluates one photo against the reference set. Satisfied by
// *facematch.Matcher.
type Matcher interface {
	Match(ctx context.Context, photo facematch.Photo, refs []facematch.Reference) ([]facematch.AnnotatedRegion, error)
}

// Options configure a scheduler run.
type Options struct {
	BatchSize      int           // photos per batch
	WorkerCount    int           // concurrent matcher invocations within a batch
	PerItemTimeout time.Duration // budget per photo
	BatchDelay     time.Duration // pacing delay after each batch
	ShowProgress   bool          // render a progress bar on stderr
	Recorder       facematch.Recorder
	Log            *logrus.Logger
}

func (o *Options) fillDefaults() {
	if o.BatchSize <= 0 {
		o.BatchSize = 5
	}
	if o.WorkerCount <= 0 {
		o.WorkerCount = 4
	}
	if o.PerItemTimeout <= 0 {
		o.PerItemTimeout = 5 * time.Minute
	}
	if o.BatchDelay < 0 {
		o.BatchDelay = 0
	}
	if o.Recorder == nil {
		o.Recorder = facematch.NopRecorder{}
	}
	if o.Log == nil {
		o.Log = logrus.New()
	}
}

type itemResult struct {
	index   int
	regions []facematch.AnnotatedRegion
	err     error
}

// Run processes photos in consecutive batches. Within a batch each
// photo gets one matcher invocation on a bounded pool, awaited under
// the per-item timeout; a timed-out or failed photo is recorded and
// excluded without affecting its siblings. The next batch starts only
// after every task of the current batch has settled and the pacing
// delay elapsed. Output keeps only photos with at least one annotated
// region, re-sorted by photo ID at batch granularity since worker
// completion order is not deterministic.
//
// The per-item context cancels in-flight HTTP capability calls; a
// compute-bound matcher (local detection) keeps running past its
// deadline with the result discarded.
func Run(ctx context.Context, photos []facematch.Photo, refs []facematch.Reference, m Matcher, opts Options) ([]facematch.AnnotatedPhoto, error) {
	opts.fillDefaults()

	var bar *progressbar.ProgressBar
	if opts.ShowProgress {
		bar = progressbar.NewOptions(len(photos),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription(fmt.Sprintf("Matching photos (%d workers)", opts.WorkerCount)),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("photos"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
	}

	var out []facematch.AnnotatedPhoto
	for start := 0; start < len(photos); start += opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		end := start + opts.BatchSize
		if end > len(photos) {
			end = len(photos)
		}
		batch := photos[start:end]

		matched := runBatch(ctx, batch, refs, m, opts, bar)

		// Deterministic order within the batch; worker completion
		// order is arbitrary.
		sort.Slice(matched, func(i, j int) bool {
			return matched[i].Photo.ID < matched[j].Photo.ID
		})
		out = append(out, matched...)

		if end < len(photos) && opts.BatchDelay > 0 {
			select {
			case <-ctx.Done():
				return out, ctx.Err()
			case <-time.After(opts.BatchDelay):
			}
		}
	}

	if bar != nil {
		fmt.Fprintln(os.Stderr)
	}
	return out, ctx.Err()
}

// runBatch fans one batch across the worker pool and blocks until
// every task has settled. This wait is the synchronization barrier
// between batches.
func runBatch(ctx context.Context, batch []facematch.Photo, refs []facematch.Reference, m Matcher, opts Options, bar *progressbar.ProgressBar) []facematch.AnnotatedPhoto {
	results := make(chan itemResult, len(batch))
	semaphore := make(chan struct{}, opts.WorkerCount)
	var wg sync.WaitGroup

	for i := range batch {
		wg.Add(1)
		go func(idx int, photo facematch.Photo) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			itemCtx, cancel := context.WithTimeout(ctx, opts.PerItemTimeout)
			defer cancel()

			done := make(chan itemResult, 1)
			go func() {
				regions, err := m.Match(itemCtx, photo, refs)
				done <- itemResult{index: idx, regions: regions, err: err}
			}()

			select {
			case r := <-done:
				results <- r
			case <-itemCtx.Done():
				// The matcher goroutine may still finish; its result
				// is discarded.
				results <- itemResult{index: idx, err: itemCtx.Err()}
			}

			if bar != nil {
				bar.Add(1)
			}
		}(i, batch[i])
	}

	wg.Wait()
	close(results)

	var matched []facematch.AnnotatedPhoto
	for r := range results {
		photo := batch[r.index]
		switch {
		case errors.Is(r.err, context.DeadlineExceeded):
			opts.Recorder.Record(facematch.StageTimeout, photo.ID)
			opts.Log.WithFields(logrus.Fields{"photo": photo.ID, "stage": facematch.StageTimeout}).Warn("photo timed out")
		case r.err != nil:
			opts.Recorder.Record(facematch.StageMatch, photo.ID)
			opts.Log.WithFields(logrus.Fields{"photo": photo.ID, "stage": facematch.StageMatch}).WithError(r.err).Warn("photo failed")
		case len(r.regions) > 0:
			matched = append(matched, facematch.AnnotatedPhoto{Photo: photo, Regions: r.regions})
		}
	}
	return matched
}
