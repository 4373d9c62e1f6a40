// Package pipeline sequences one classification run: load rules,
// enumerate inputs, classify, report. Per-file failures become
// warnings; only configuration, zero-input, and output errors fail
// the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/atikulmunna/canlens/internal/classify"
	"github.com/atikulmunna/canlens/internal/ingest"
	"github.com/atikulmunna/canlens/internal/matcher"
	"github.com/atikulmunna/canlens/internal/model"
	"github.com/atikulmunna/canlens/internal/report"
	"github.com/atikulmunna/canlens/internal/source"
)

// ErrNoInput is returned when enumeration finds nothing to classify.
var ErrNoInput = errors.New("no log files found")

// State tracks the orchestrator's progress through a run.
type State int

const (
	StateIdle State = iota
	StateConfigLoaded
	StateEnumerating
	StateClassifying
	StateReporting
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConfigLoaded:
		return "config-loaded"
	case StateEnumerating:
		return "enumerating"
	case StateClassifying:
		return "classifying"
	case StateReporting:
		return "reporting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Options configures one run.
type Options struct {
	Dir             string
	Rules           model.Configuration
	Builders        []report.Builder
	IncludeArchives bool
	Workers         int // concurrent classification workers; <1 means 1
}

// Orchestrator drives the run and exposes its current state.
type Orchestrator struct {
	opts  Options
	state State
}

// New creates an Orchestrator for the given options.
func New(opts Options) *Orchestrator {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Orchestrator{opts: opts}
}

// State returns the orchestrator's current state.
func (o *Orchestrator) State() State { return o.state }

// Run executes the pipeline. The returned summary is complete for
// Done runs and best-effort for Failed ones; err is non-nil exactly
// when the run failed.
func (o *Orchestrator) Run(ctx context.Context) (model.RunSummary, error) {
	summary := model.RunSummary{PerFile: make(map[string]model.FileStats)}

	rules, err := matcher.CompileAll(o.opts.Rules)
	if err != nil {
		return o.fail(summary, err)
	}
	o.state = StateConfigLoaded

	// Extraction scope covers the whole run; Close runs on every
	// return path so no temp files survive the process.
	ing, err := ingest.New()
	if err != nil {
		return o.fail(summary, err)
	}
	defer func() {
		if err := ing.Close(); err != nil {
			log.Printf("warning: extraction cleanup: %v", err)
		}
	}()

	o.state = StateEnumerating
	files, warnings, err := source.Enumerate(o.opts.Dir, o.opts.IncludeArchives, ing)
	if err != nil {
		return o.fail(summary, err)
	}
	summary.Warnings = append(summary.Warnings, warnings...)

	if len(files) == 0 {
		return o.fail(summary, fmt.Errorf("%w in %s", ErrNoInput, o.opts.Dir))
	}

	o.state = StateClassifying
	results, warnings := o.classifyAll(ctx, rules, files)
	summary.Warnings = append(summary.Warnings, warnings...)

	if ctx.Err() != nil {
		return o.fail(summary, ctx.Err())
	}

	o.state = StateReporting
	classified := 0
	for i, recs := range results {
		if recs == nil {
			continue // skipped file, already warned
		}
		classified++
		record(&summary, files[i].Name, recs)
		for _, b := range o.opts.Builders {
			if err := b.Append(recs); err != nil {
				return o.fail(summary, err)
			}
		}
	}

	if classified == 0 {
		return o.fail(summary, fmt.Errorf("%w: every file was skipped", ErrNoInput))
	}

	for i, b := range o.opts.Builders {
		if err := b.Finalize(); err != nil {
			// The artifacts are two renderings of one stream; when one
			// cannot be committed, retract the ones that already were
			// so a failed run leaves no complete-looking artifact.
			for _, done := range o.opts.Builders[:i] {
				if rmErr := os.Remove(done.Path()); rmErr != nil {
					log.Printf("warning: removing %s: %v", done.Path(), rmErr)
				}
			}
			return o.fail(summary, err)
		}
	}

	o.state = StateDone
	return summary, nil
}

// classifyAll fans classification out over a bounded worker pool and
// collects results indexed by enumeration position, so reporting sees
// them in enumeration order no matter how workers were scheduled.
func (o *Orchestrator) classifyAll(ctx context.Context, rules []matcher.CompiledRule, files []model.LogFile) ([][]model.ClassifiedRecord, []string) {
	results := make([][]model.ClassifiedRecord, len(files))
	warnings := make([]string, len(files))

	sem := make(chan struct{}, o.opts.Workers)
	var wg sync.WaitGroup

	for i, lf := range files {
		wg.Add(1)
		go func(i int, lf model.LogFile) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}

			lines, err := classify.ReadLines(lf.Path)
			if err != nil {
				warnings[i] = fmt.Sprintf("skipping %s: %v", lf.Name, err)
				return
			}
			results[i] = classify.Classify(rules, lf, lines)
		}(i, lf)
	}
	wg.Wait()

	var nonEmpty []string
	for _, w := range warnings {
		if w != "" {
			nonEmpty = append(nonEmpty, w)
		}
	}
	return results, nonEmpty
}

// record folds one file's records into the summary counts.
func record(summary *model.RunSummary, name string, recs []model.ClassifiedRecord) {
	stats := model.FileStats{Lines: len(recs)}
	for _, r := range recs {
		switch r.Category {
		case model.CategoryMatch:
			stats.Match++
		case model.CategoryMismatch:
			stats.Mismatch++
		default:
			stats.Neutral++
		}
	}
	summary.PerFile[name] = stats
	summary.Files++
	summary.Lines += stats.Lines
	summary.Match += stats.Match
	summary.Mismatch += stats.Mismatch
	summary.Neutral += stats.Neutral
}

func (o *Orchestrator) fail(summary model.RunSummary, err error) (model.RunSummary, error) {
	o.state = StateFailed
	summary.Failed = true
	return summary, err
}
