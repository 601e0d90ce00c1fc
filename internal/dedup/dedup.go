// Package dedup removes content-duplicate nodes from a forest while keeping
// every non-duplicate descendant reachable.
package dedup

import (
	"context"
	"hash/fnv"
	"regexp"
	"sort"
	"strings"

	"github.com/vk/threadforge/internal/ctxlog"
	"github.com/vk/threadforge/internal/forest"
)

// Scope selects the window within which two bodies count as duplicates.
type Scope string

const (
	// ScopeSubreddit dedups across all trees of the subreddit.
	ScopeSubreddit Scope = "subreddit"
	// ScopeTree dedups only within each conversation tree.
	ScopeTree Scope = "tree"
)

// Config tunes fingerprinting. The zero value is not valid; use Default.
type Config struct {
	Scope Scope
	// StripMarkup additionally removes dash/equals runs, URLs, @-mentions
	// and #hashtags before fingerprinting.
	StripMarkup bool
}

// Default is subreddit-wide dedup with plain normalization.
func Default() Config { return Config{Scope: ScopeSubreddit} }

// markupRE matches the noise classes stripped under StripMarkup.
var markupRE = regexp.MustCompile(`-{2,}|={2,}|http\S+|(?:[\w.-]+)?@\S+|#\S+`)

// Fingerprint returns the normalized-content hash for body. Normalization
// is lower-casing, optional markup stripping, and collapsing every
// whitespace run to a single space with the ends trimmed.
func Fingerprint(body string, cfg Config) uint64 {
	s := strings.ToLower(body)
	if cfg.StripMarkup {
		s = markupRE.ReplaceAllString(s, " ")
	}
	s = strings.Join(strings.Fields(s), " ")

	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

// Run prunes every node whose fingerprint was already seen earlier in
// creation order, splicing its children under its parent. Returns the
// number of nodes pruned.
func Run(ctx context.Context, f *forest.Forest, cfg Config) int {
	nodes := liveNodesBySeq(f)

	type key struct {
		fp   uint64
		tree string
	}
	seen := make(map[key]struct{}, len(nodes))
	pruned := 0

	for _, n := range nodes {
		if n.Pruned {
			continue
		}
		k := key{fp: Fingerprint(n.Record.Body, cfg)}
		if cfg.Scope == ScopeTree {
			k.tree = rootOf(f, n)
		}
		if _, dup := seen[k]; dup {
			n.Duplicate = true
			f.Prune(n)
			pruned++
			continue
		}
		seen[k] = struct{}{}
	}

	if pruned > 0 {
		ctxlog.FromContext(ctx).Debug("dedup pass done", "pruned", pruned, "scope", string(cfg.Scope))
	}
	return pruned
}

func liveNodesBySeq(f *forest.Forest) []*forest.Node {
	nodes := make([]*forest.Node, 0, f.Len())
	_ = f.Walk(func(n *forest.Node) error {
		nodes = append(nodes, n)
		return nil
	})
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Seq < nodes[j].Seq })
	return nodes
}

func rootOf(f *forest.Forest, n *forest.Node) string {
	cur := n
	for cur.Parent != "" {
		cur = f.Get(cur.Parent)
	}
	return cur.ID()
}
