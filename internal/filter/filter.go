// Package filter prunes low-value nodes: deletion markers, empty bodies,
// bot authors, and bodies outside the configured token window.
package filter

import (
	"context"
	"sort"
	"strings"

	"github.com/vk/threadforge/internal/ctxlog"
	"github.com/vk/threadforge/internal/forest"
	"github.com/vk/threadforge/internal/tokenize"
)

// Config is the effective quality policy for one run.
type Config struct {
	// DeletedMarkers are bodies treated as removed content, compared after
	// trimming surrounding whitespace.
	DeletedMarkers []string
	// BotAuthors are author names pruned outright; a trailing '*' makes the
	// entry a prefix match ("*bot" style suffix matching is not supported).
	BotAuthors []string
	// MinTokens/MaxTokens bound the token count; MaxTokens <= 0 means
	// unbounded above.
	MinTokens int
	MaxTokens int
}

// Default mirrors the markers reddit dumps actually contain.
func Default() Config {
	return Config{
		DeletedMarkers: []string{"[deleted]", "[removed]"},
		MinTokens:      1,
	}
}

// Stats counts what one filter pass removed.
type Stats struct {
	Pruned         int
	TokenizeErrors int
}

// Run applies the quality rules to every live node using tok for length
// scoring. A per-node tokenizer failure counts the node as zero tokens.
func Run(ctx context.Context, f *forest.Forest, cfg Config, tok tokenize.Capability) Stats {
	var stats Stats
	logger := ctxlog.FromContext(ctx)

	for _, n := range liveNodesBySeq(f) {
		if n.Pruned {
			continue
		}
		if !cfg.keep(n, tok, &stats) {
			f.Prune(n)
			stats.Pruned++
		}
	}

	if stats.Pruned > 0 {
		logger.Debug("filter pass done", "pruned", stats.Pruned, "tokenize_errors", stats.TokenizeErrors)
	}
	return stats
}

func (cfg Config) keep(n *forest.Node, tok tokenize.Capability, stats *Stats) bool {
	rec := n.Record
	body := strings.TrimSpace(rec.Body)

	if body == "" || rec.Deleted {
		return false
	}
	for _, marker := range cfg.DeletedMarkers {
		if body == marker {
			return false
		}
	}
	for _, bot := range cfg.BotAuthors {
		if matchAuthor(rec.Author, bot) {
			return false
		}
	}

	count, err := tok.Count(body)
	if err != nil {
		stats.TokenizeErrors++
		count = 0
	}
	if count < cfg.MinTokens {
		return false
	}
	if cfg.MaxTokens > 0 && count > cfg.MaxTokens {
		return false
	}
	return true
}

func matchAuthor(author, pattern string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return prefix != "" && strings.HasPrefix(author, prefix)
	}
	return author == pattern
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
