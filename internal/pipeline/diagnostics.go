package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jkalivoda/moodreel/internal/facematch"
)

// Diagnostics counts recoverable failures by stage and remembers which
// photos were dropped entirely. It satisfies facematch.Recorder and is
// safe for concurrent use.
type Diagnostics struct {
	mu      sync.Mutex
	counts  map[string]int
	skipped []string
}

func NewDiagnostics() *Diagnostics {
	return &Diagnostics{counts: make(map[string]int)}
}

func (d *Diagnostics) Record(stage, photoID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.counts[stage]++
	// Timeouts and match failures drop the whole photo; the other
	// stages only degrade a single region.
	if stage == facematch.StageTimeout || stage == facematch.StageMatch {
		d.skipped = append(d.skipped, photoID)
	}
}

// Count returns the number of failures recorded for a stage.
func (d *Diagnostics) Count(stage string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counts[stage]
}

// Total returns the number of failures across all stages.
func (d *Diagnostics) Total() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	total := 0
	for _, n := range d.counts {
		total += n
	}
	return total
}

// Counts returns a copy of the per-stage failure counts.
func (d *Diagnostics) Counts() map[string]int {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]int, len(d.counts))
	for stage, n := range d.counts {
		out[stage] = n
	}
	return out
}

// Skipped returns the IDs of photos dropped from the run, sorted.
func (d *Diagnostics) Skipped() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.skipped))
	copy(out, d.skipped)
	sort.Strings(out)
	return out
}

// Summary renders one line per stage with a non-zero count, sorted by
// stage name. Empty when the run had no failures.
func (d *Diagnostics) Summary() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	stages := make([]string, 0, len(d.counts))
	for stage, n := range d.counts {
		if n > 0 {
			stages = append(stages, stage)
		}
	}
	sort.Strings(stages)

	var b strings.Builder
	for _, stage := range stages {
		fmt.Fprintf(&b, "%s: %d\n", stage, d.counts[stage])
	}
	return b.String()
}
