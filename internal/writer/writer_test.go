package writer

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/threadforge/internal/ctxlog"
	"github.com/vk/threadforge/internal/forest"
	"github.com/vk/threadforge/internal/record"
)

func buildForest(t *testing.T, recs ...*record.Record) *forest.Forest {
	t.Helper()
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	b := forest.NewBuilder()
	for _, r := range recs {
		b.Add(ctx, r)
	}
	f, _ := b.Finish(ctx)
	return f
}

func TestWriteEmitsPreOrderLines(t *testing.T) {
	f := buildForest(t,
		&record.Record{ID: "s1", Body: "root"},
		&record.Record{ID: "c1", ParentID: "s1", Body: "reply"},
		&record.Record{ID: "c2", ParentID: "c1", Body: "nested"},
	)
	dir := t.TempDir()

	written, err := Write(f, dir, "test", true)
	require.NoError(t, err)
	assert.Equal(t, 3, written)

	data, err := os.ReadFile(filepath.Join(dir, "test.jsonl"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"id":"s1"`)
	assert.Contains(t, lines[1], `"id":"c1"`)
	assert.Contains(t, lines[2], `"id":"c2"`)
}

func TestWriteSkipsPrunedNodes(t *testing.T) {
	f := buildForest(t,
		&record.Record{ID: "s1", Body: "root"},
		&record.Record{ID: "c1", ParentID: "s1", Body: "pruned away"},
	)
	f.Prune(f.Get("c1"))
	dir := t.TempDir()

	written, err := Write(f, dir, "test", true)
	require.NoError(t, err)
	assert.Equal(t, 1, written)
}

func TestSafeModeLeavesExistingFileUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.jsonl")
	original := []byte("precious bytes\n")
	require.NoError(t, os.WriteFile(path, original, 0o644))

	f := buildForest(t, &record.Record{ID: "s1", Body: "new data"})

	_, err := Write(f, dir, "test", true)
	require.ErrorIs(t, err, ErrAlreadyExists)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, data)
}

func TestUnsafeModeOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("old content that is longer than the new one\n"), 0o644))

	f := buildForest(t, &record.Record{ID: "s1", Body: "new"})

	written, err := Write(f, dir, "test", false)
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id":"s1"`)
	assert.NotContains(t, string(data), "old content")
}

func TestWriteEmptyForestProducesEmptyFile(t *testing.T) {
	f := buildForest(t)
	dir := t.TempDir()

	written, err := Write(f, dir, "empty", true)
	require.NoError(t, err)
	assert.Zero(t, written)

	data, err := os.ReadFile(filepath.Join(dir, "empty.jsonl"))
	require.NoError(t, err)
	assert.Empty(t, data)
}
