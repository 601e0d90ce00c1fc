// Package executor schedules independent subreddit units onto a bounded
// worker pool. Pool size is the only dial for peak memory: at most
// `workers` forests are resident at once.
package executor

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/vk/threadforge/internal/ctxlog"
	"github.com/vk/threadforge/internal/pipeline"
)

// ErrAborted marks units never dispatched because the run tripped the
// malformed-input threshold. In-flight units still ran to completion.
var ErrAborted = errors.New("run aborted before dispatch")

// Executor owns the worker pool for one run.
type Executor struct {
	workers int
	// maxMalformed aborts further dispatches once the process-wide
	// malformed-line count exceeds it. Zero disables the check.
	maxMalformed int64
}

// New returns an executor with the given pool size. workers < 1 is pinned
// to 1.
func New(workers int, maxMalformed int64) *Executor {
	if workers < 1 {
		workers = 1
	}
	return &Executor{workers: workers, maxMalformed: maxMalformed}
}

// Report aggregates every unit's outcome for the final summary.
type Report struct {
	Outcomes []pipeline.Outcome
	Totals   *pipeline.Totals
}

// Success reports whether every unit reached Done.
func (r *Report) Success() bool {
	for _, o := range r.Outcomes {
		if o.Err != nil {
			return false
		}
	}
	return true
}

// Failed returns the outcomes of units that did not reach Done.
func (r *Report) Failed() []pipeline.Outcome {
	var failed []pipeline.Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// Run processes all units and returns the aggregated report. A unit's
// failure never cancels the others; the abort threshold is consulted only
// between dispatches.
func (e *Executor) Run(ctx context.Context, units []*pipeline.Unit, opts pipeline.Options) *Report {
	logger := ctxlog.FromContext(ctx)

	totals := opts.Totals
	if totals == nil {
		totals = &pipeline.Totals{}
		opts.Totals = totals
	}

	unitCh := make(chan *pipeline.Unit)
	outCh := make(chan pipeline.Outcome, len(units))

	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go e.worker(ctx, i, unitCh, outCh, opts, &wg)
	}

	dispatched := 0
	for _, u := range units {
		if e.maxMalformed > 0 && totals.MalformedLines.Load() > e.maxMalformed {
			logger.Error("malformed-input threshold exceeded, aborting remaining units",
				"threshold", e.maxMalformed, "remaining", len(units)-dispatched)
			break
		}
		unitCh <- u
		dispatched++
	}
	close(unitCh)
	wg.Wait()
	close(outCh)

	report := &Report{Totals: totals, Outcomes: make([]pipeline.Outcome, 0, len(units))}
	for o := range outCh {
		report.Outcomes = append(report.Outcomes, o)
	}
	for _, u := range units[dispatched:] {
		report.Outcomes = append(report.Outcomes, pipeline.Outcome{Subreddit: u.Subreddit, Err: ErrAborted})
	}
	sort.Slice(report.Outcomes, func(i, j int) bool {
		return report.Outcomes[i].Subreddit < report.Outcomes[j].Subreddit
	})
	return report
}
