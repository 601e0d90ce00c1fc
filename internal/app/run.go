package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/vk/threadforge/internal/ctxlog"
	"github.com/vk/threadforge/internal/executor"
	"github.com/vk/threadforge/internal/fsutil"
	"github.com/vk/threadforge/internal/pipeline"
	"github.com/vk/threadforge/internal/policy"
	"github.com/vk/threadforge/internal/tokenize"
)

// ErrPartialFailure is returned when at least one subreddit did not reach
// Done. The per-subreddit detail has already been logged by then.
var ErrPartialFailure = errors.New("one or more subreddits failed")

// Run executes the full batch pass. Only startup problems (bad directories,
// policy parse errors, tokenizer load failures) abort before the pool
// starts; after that every failure is isolated to its subreddit.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	pol := policy.Default()
	if a.cfg.PolicyPath != "" {
		var err error
		pol, err = policy.Load(a.cfg.PolicyPath)
		if err != nil {
			return err
		}
		a.logger.Info("policy loaded", "path", a.cfg.PolicyPath,
			"dedup_scope", string(pol.Dedup.Scope),
			"min_tokens", pol.Filter.MinTokens, "max_tokens", pol.Filter.MaxTokens)
	}

	// The tokenizer loads exactly once, before any unit runs. A load
	// failure is fatal to the whole process; there is no per-unit retry.
	tok, err := tokenize.Load(a.cfg.TokenizerPath)
	if err != nil {
		return err
	}
	a.logger.Info("tokenizer ready", "name", tok.Name())

	if err := a.prepareOutputDir(); err != nil {
		return err
	}

	dirs, err := fsutil.DiscoverSubreddits(a.cfg.InputDir)
	if err != nil {
		return err
	}
	a.logger.Info("discovered subreddits", "count", len(dirs), "workers", a.cfg.Workers)

	units := make([]*pipeline.Unit, len(dirs))
	for i, d := range dirs {
		units[i] = &pipeline.Unit{Subreddit: d.Name, Dir: d.Path}
	}

	exec := executor.New(a.cfg.Workers, a.cfg.MaxMalformed)
	report := exec.Run(ctx, units, pipeline.Options{
		OutDir:    a.cfg.OutputDir,
		Safe:      a.cfg.Safe,
		Policy:    pol,
		Tokenizer: tok,
	})

	a.logReport(report)
	if !report.Success() {
		return ErrPartialFailure
	}
	return nil
}

// prepareOutputDir creates the output directory in overwrite mode; in safe
// mode it must already exist, mirroring the per-file refusal to clobber.
func (a *App) prepareOutputDir() error {
	if a.cfg.Safe {
		info, err := os.Stat(a.cfg.OutputDir)
		if err != nil {
			return fmt.Errorf("output directory: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("output path %s is not a directory", a.cfg.OutputDir)
		}
		return nil
	}
	return os.MkdirAll(a.cfg.OutputDir, 0o755)
}

func (a *App) logReport(report *executor.Report) {
	t := report.Totals
	done := len(report.Outcomes) - len(report.Failed())

	a.logger.Info("run summary",
		"subreddits_done", done,
		"subreddits_failed", len(report.Failed()),
		"records", t.Records.Load(),
		"written", t.Written.Load(),
		"malformed_lines", t.MalformedLines.Load(),
		"unreadable_files", t.UnreadableFiles.Load(),
		"duplicate_ids", t.DuplicateIDs.Load(),
		"cycle_edges", t.CycleEdges.Load(),
		"orphans", t.Orphans.Load(),
		"dedup_pruned", t.DedupPruned.Load(),
		"filter_pruned", t.FilterPruned.Load(),
		"tokenize_errors", t.TokenizeErrors.Load(),
	)

	for _, o := range report.Failed() {
		a.logger.Error("subreddit failed", "subreddit", o.Subreddit, "error", o.Err)
	}
}
