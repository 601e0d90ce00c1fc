package forest

import "github.com/vk/threadforge/internal/record"

// Node wraps one record inside exactly one tree. Children are owned by
// their parent; no node ever has more than one parent.
type Node struct {
	Record *record.Record

	// Parent is the owning node's id, or "" for roots.
	Parent string
	// Children holds owned child ids in attachment order.
	Children []string

	// Seq is the creation sequence number within the subreddit, used for
	// deterministic root ordering and dedup traversal order.
	Seq int

	// Pruned marks a node removed by dedup or filtering. Its children have
	// already been spliced under its parent; the writer skips it.
	Pruned bool
	// Duplicate marks why a pruned node was removed, for counting.
	Duplicate bool
}

// ID returns the wrapped record's id.
func (n *Node) ID() string { return n.Record.ID }
