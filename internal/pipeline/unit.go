package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/vk/threadforge/internal/ctxlog"
	"github.com/vk/threadforge/internal/dedup"
	"github.com/vk/threadforge/internal/filter"
	"github.com/vk/threadforge/internal/forest"
	"github.com/vk/threadforge/internal/loader"
	"github.com/vk/threadforge/internal/policy"
	"github.com/vk/threadforge/internal/record"
	"github.com/vk/threadforge/internal/tokenize"
	"github.com/vk/threadforge/internal/writer"
)

// State is a unit's position in its lifecycle, managed atomically so the
// orchestrator can observe in-flight units.
type State int32

const (
	Pending State = iota
	Loading
	Building
	Filtering
	Writing
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Loading:
		return "loading"
	case Building:
		return "building"
	case Filtering:
		return "filtering"
	case Writing:
		return "writing"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options carries the run-wide settings every unit shares.
type Options struct {
	OutDir    string
	Safe      bool
	Policy    policy.Policy
	Tokenizer tokenize.Capability
	Totals    *Totals
}

// Unit processes one subreddit directory.
type Unit struct {
	Subreddit string
	Dir       string

	state atomic.Int32
}

// State atomically reads the unit's current lifecycle position.
func (u *Unit) State() State { return State(u.state.Load()) }

func (u *Unit) setState(s State) { u.state.Store(int32(s)) }

// Run drives the unit to Done or Failed and returns its outcome. A failure
// here never affects any other unit.
func (u *Unit) Run(ctx context.Context, opts Options) Outcome {
	logger := ctxlog.FromContext(ctx).With("subreddit", u.Subreddit)
	ctx = ctxlog.WithLogger(ctx, logger)

	out := Outcome{Subreddit: u.Subreddit}
	defer func() {
		if opts.Totals != nil {
			out.addTo(opts.Totals)
		}
	}()

	u.setState(Loading)
	builder := forest.NewBuilder()
	loadStats, err := loader.Each(ctx, u.Dir, func(rec *record.Record) error {
		builder.Add(ctx, rec)
		return nil
	})
	out.MalformedLines = loadStats.MalformedLines
	out.UnreadableFiles = loadStats.UnreadableFiles
	if err != nil {
		u.setState(Failed)
		out.Err = fmt.Errorf("load %s: %w", u.Dir, err)
		return out
	}

	u.setState(Building)
	f, buildStats := builder.Finish(ctx)
	out.Records = buildStats.Nodes
	out.DuplicateIDs = buildStats.DuplicateIDs
	out.CycleEdges = buildStats.CycleEdges
	out.Orphans = buildStats.Orphans

	u.setState(Filtering)
	out.DedupPruned = dedup.Run(ctx, f, opts.Policy.Dedup)
	filterStats := filter.Run(ctx, f, opts.Policy.Filter, opts.Tokenizer)
	out.FilterPruned = filterStats.Pruned
	out.TokenizeErrors = filterStats.TokenizeErrors

	u.setState(Writing)
	written, err := writer.Write(f, opts.OutDir, u.Subreddit, opts.Safe)
	out.Written = written
	if err != nil {
		u.setState(Failed)
		out.Err = fmt.Errorf("write %s: %w", u.Subreddit, err)
		return out
	}

	u.setState(Done)
	logger.Info("subreddit done",
		"records", out.Records,
		"written", out.Written,
		"dedup_pruned", out.DedupPruned,
		"filter_pruned", out.FilterPruned,
		"malformed", out.MalformedLines,
		"orphans", out.Orphans,
	)
	return out
}
