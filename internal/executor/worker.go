package executor

import (
	"context"
	"sync"

	"github.com/vk/threadforge/internal/ctxlog"
	"github.com/vk/threadforge/internal/pipeline"
)

// worker is the processing loop for one pool slot. Each unit it picks up
// runs its whole pipeline, loader through writer, on this goroutine.
func (e *Executor) worker(ctx context.Context, id int, unitCh <-chan *pipeline.Unit, outCh chan<- pipeline.Outcome, opts pipeline.Options, wg *sync.WaitGroup) {
	defer wg.Done()
	logger := ctxlog.FromContext(ctx).With("worker", id)
	logger.Debug("worker started")

	for u := range unitCh {
		logger.Debug("worker picked up subreddit", "subreddit", u.Subreddit)
		out := u.Run(ctx, opts)
		if out.Err != nil {
			logger.Error("subreddit failed", "subreddit", u.Subreddit, "error", out.Err)
		}
		outCh <- out
	}
	logger.Debug("worker finished")
}
