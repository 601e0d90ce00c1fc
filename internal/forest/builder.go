package forest

import (
	"context"

	"github.com/vk/threadforge/internal/ctxlog"
	"github.com/vk/threadforge/internal/record"
)

// BuildStats counts the graph conflicts a build resolved.
type BuildStats struct {
	Nodes        int
	DuplicateIDs int
	CycleEdges   int
	Orphans      int
}

// Builder assembles a flat record stream into a Forest. Records may arrive
// in any order: a child seen before its parent waits in the pending-edge
// table and is attached the moment the parent materializes.
type Builder struct {
	forest *Forest

	// pending maps a not-yet-seen parent id to the child ids waiting on it.
	pending map[string][]string

	seq   int
	stats BuildStats
}

// NewBuilder returns a Builder writing into a fresh Forest.
func NewBuilder() *Builder {
	return &Builder{
		forest:  New(),
		pending: make(map[string][]string),
	}
}

// Add materializes one record as a node and resolves whatever edges it
// unblocks. Duplicate ids are first-seen-wins: the later record is dropped.
func (b *Builder) Add(ctx context.Context, rec *record.Record) {
	if b.forest.Get(rec.ID) != nil {
		b.stats.DuplicateIDs++
		ctxlog.FromContext(ctx).Debug("dropping duplicate record id", "id", rec.ID)
		return
	}

	n := &Node{Record: rec, Seq: b.seq}
	b.seq++
	b.forest.nodes[rec.ID] = n
	b.stats.Nodes++

	switch {
	case rec.ParentID == "":
		// Provisional root.
	case rec.ParentID == rec.ID:
		// Self-reference, the smallest possible cycle.
		b.stats.CycleEdges++
	case b.forest.Get(rec.ParentID) != nil:
		b.attach(ctx, rec.ParentID, rec.ID)
	default:
		b.pending[rec.ParentID] = append(b.pending[rec.ParentID], rec.ID)
	}

	// The new node may be the parent a batch of earlier records waited on.
	if waiting, ok := b.pending[rec.ID]; ok {
		delete(b.pending, rec.ID)
		for _, childID := range waiting {
			b.attach(ctx, rec.ID, childID)
		}
	}
}

// attach links child under parent unless doing so would close a cycle, in
// which case the edge is dropped and the child stays a root.
func (b *Builder) attach(ctx context.Context, parentID, childID string) {
	if b.forest.isAncestor(childID, parentID) {
		b.stats.CycleEdges++
		ctxlog.FromContext(ctx).Debug("dropping cyclic edge", "parent", parentID, "child", childID)
		return
	}
	child := b.forest.Get(childID)
	child.Parent = parentID
	parent := b.forest.Get(parentID)
	parent.Children = append(parent.Children, childID)
}

// Finish resolves every remaining pending edge by promoting the waiting
// children to roots (their parent never appeared in this subreddit's data)
// and returns the completed forest. The pending table is empty afterwards.
func (b *Builder) Finish(ctx context.Context) (*Forest, BuildStats) {
	logger := ctxlog.FromContext(ctx)
	for parentID, waiting := range b.pending {
		b.stats.Orphans += len(waiting)
		logger.Debug("promoting orphans, parent never seen", "parent", parentID, "count", len(waiting))
	}
	b.pending = make(map[string][]string)
	return b.forest, b.stats
}
