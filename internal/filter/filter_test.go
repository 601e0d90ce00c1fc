package filter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/threadforge/internal/ctxlog"
	"github.com/vk/threadforge/internal/forest"
	"github.com/vk/threadforge/internal/record"
	"github.com/vk/threadforge/internal/tokenize"
)

func testCtx() context.Context {
	return ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func buildForest(t *testing.T, recs ...*record.Record) *forest.Forest {
	t.Helper()
	b := forest.NewBuilder()
	for _, r := range recs {
		b.Add(testCtx(), r)
	}
	f, _ := b.Finish(testCtx())
	return f
}

func surviving(t *testing.T, f *forest.Forest) []string {
	t.Helper()
	var ids []string
	require.NoError(t, f.Walk(func(n *forest.Node) error {
		ids = append(ids, n.ID())
		return nil
	}))
	return ids
}

func TestPrunesDeletionMarkersAndEmptyBodies(t *testing.T) {
	f := buildForest(t,
		&record.Record{ID: "s1", Body: "a real post"},
		&record.Record{ID: "c1", ParentID: "s1", Body: "[deleted]"},
		&record.Record{ID: "c2", ParentID: "s1", Body: "   "},
		&record.Record{ID: "c3", ParentID: "s1", Body: "[removed]"},
		&record.Record{ID: "c4", ParentID: "s1", Body: "kept"},
	)

	stats := Run(testCtx(), f, Default(), tokenize.WordCount{})

	assert.Equal(t, 3, stats.Pruned)
	assert.ElementsMatch(t, []string{"s1", "c4"}, surviving(t, f))
}

func TestPrunesDeletedFlag(t *testing.T) {
	f := buildForest(t,
		&record.Record{ID: "s1", Body: "fine"},
		&record.Record{ID: "c1", ParentID: "s1", Body: "text still here", Deleted: true},
	)

	stats := Run(testCtx(), f, Default(), tokenize.WordCount{})

	assert.Equal(t, 1, stats.Pruned)
	assert.Equal(t, []string{"s1"}, surviving(t, f))
}

func TestPrunesBotAuthors(t *testing.T) {
	cfg := Default()
	cfg.BotAuthors = []string{"AutoModerator", "transcriber*"}

	f := buildForest(t,
		&record.Record{ID: "s1", Body: "post", Author: "human"},
		&record.Record{ID: "c1", ParentID: "s1", Body: "I am a bot", Author: "AutoModerator"},
		&record.Record{ID: "c2", ParentID: "s1", Body: "beep", Author: "transcriber_9000"},
		&record.Record{ID: "c3", ParentID: "s1", Body: "not a bot", Author: "transcribing_fan"},
	)

	stats := Run(testCtx(), f, cfg, tokenize.WordCount{})

	assert.Equal(t, 2, stats.Pruned)
	assert.ElementsMatch(t, []string{"s1", "c3"}, surviving(t, f))
}

func TestTokenWindow(t *testing.T) {
	cfg := Default()
	cfg.MinTokens = 2
	cfg.MaxTokens = 4

	f := buildForest(t,
		&record.Record{ID: "s1", Body: "just enough words here"},
		&record.Record{ID: "c1", ParentID: "s1", Body: "short"},
		&record.Record{ID: "c2", ParentID: "s1", Body: "way too many words in this particular comment"},
		&record.Record{ID: "c3", ParentID: "s1", Body: "two words"},
	)

	stats := Run(testCtx(), f, cfg, tokenize.WordCount{})

	assert.Equal(t, 2, stats.Pruned)
	assert.ElementsMatch(t, []string{"s1", "c3"}, surviving(t, f))
}

func TestPruningReattachesChildren(t *testing.T) {
	f := buildForest(t,
		&record.Record{ID: "s1", Body: "root post"},
		&record.Record{ID: "c1", ParentID: "s1", Body: "[deleted]"},
		&record.Record{ID: "g1", ParentID: "c1", Body: "still a good reply"},
	)

	Run(testCtx(), f, Default(), tokenize.WordCount{})

	assert.ElementsMatch(t, []string{"s1", "g1"}, surviving(t, f))
	assert.Equal(t, "s1", f.Get("g1").Parent)
}

// failingCapability errors on every call, standing in for a tokenizer that
// loaded fine but chokes on individual texts.
type failingCapability struct{}

func (failingCapability) Count(string) (int, error) { return 0, errors.New("bad input bytes") }
func (failingCapability) Name() string              { return "failing" }

func TestTokenizerInvokeFailureCountsAsZero(t *testing.T) {
	cfg := Default()
	cfg.MinTokens = 1

	f := buildForest(t,
		&record.Record{ID: "s1", Body: "real words"},
	)

	stats := Run(testCtx(), f, cfg, failingCapability{})

	// Zero tokens is below MinTokens, so the node goes, and the failure is
	// counted separately from ordinary prunes.
	assert.Equal(t, 1, stats.Pruned)
	assert.Equal(t, 1, stats.TokenizeErrors)
	assert.Empty(t, surviving(t, f))
}

func TestRunIsIdempotent(t *testing.T) {
	f := buildForest(t,
		&record.Record{ID: "s1", Body: "a real post"},
		&record.Record{ID: "c1", ParentID: "s1", Body: "[deleted]"},
	)

	first := Run(testCtx(), f, Default(), tokenize.WordCount{})
	second := Run(testCtx(), f, Default(), tokenize.WordCount{})

	assert.Equal(t, 1, first.Pruned)
	assert.Zero(t, second.Pruned)
}
