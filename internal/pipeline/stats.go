package pipeline

import "sync/atomic"

// Totals are the process-wide aggregate counters. Units on different
// workers update them concurrently, hence the atomics.
type Totals struct {
	Records        atomic.Int64
	MalformedLines atomic.Int64
	UnreadableFiles atomic.Int64
	DuplicateIDs   atomic.Int64
	CycleEdges     atomic.Int64
	Orphans        atomic.Int64
	DedupPruned    atomic.Int64
	FilterPruned   atomic.Int64
	TokenizeErrors atomic.Int64
	Written        atomic.Int64
}

// Outcome is what one unit produced, copied into the final report.
type Outcome struct {
	Subreddit string

	Records         int
	MalformedLines  int
	UnreadableFiles int
	DuplicateIDs    int
	CycleEdges      int
	Orphans         int
	DedupPruned     int
	FilterPruned    int
	TokenizeErrors  int
	Written         int

	Err error
}

func (o *Outcome) addTo(t *Totals) {
	t.Records.Add(int64(o.Records))
	t.MalformedLines.Add(int64(o.MalformedLines))
	t.UnreadableFiles.Add(int64(o.UnreadableFiles))
	t.DuplicateIDs.Add(int64(o.DuplicateIDs))
	t.CycleEdges.Add(int64(o.CycleEdges))
	t.Orphans.Add(int64(o.Orphans))
	t.DedupPruned.Add(int64(o.DedupPruned))
	t.FilterPruned.Add(int64(o.FilterPruned))
	t.TokenizeErrors.Add(int64(o.TokenizeErrors))
	t.Written.Add(int64(o.Written))
}
