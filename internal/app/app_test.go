package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeInput(t *testing.T, root string, subreddits map[string][]string) {
	t.Helper()
	for name, lines := range subreddits {
		dir := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		content := strings.Join(lines, "\n") + "\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "dump.jsonl"), []byte(content), 0o644))
	}
}

func newTestApp(t *testing.T, cfg Config) *App {
	t.Helper()
	full, err := NewConfig(cfg)
	require.NoError(t, err)
	return New(full, io.Discard)
}

func TestRunProcessesAllSubreddits(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	makeInput(t, inDir, map[string][]string{
		"golang": {`{"id":"a","body":"generics are fine"}`},
		"zig":    {`{"id":"b","body":"comptime"}`, `{"id":"c","parent_id":"b","body":"indeed"}`},
	})

	a := newTestApp(t, Config{InputDir: inDir, OutputDir: outDir, Safe: true, Workers: 2})
	require.NoError(t, a.Run(context.Background()))

	for _, name := range []string{"golang", "zig"} {
		_, err := os.Stat(filepath.Join(outDir, name+".jsonl"))
		assert.NoError(t, err, "output for %s", name)
	}
}

func TestRunReportsPartialFailure(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	makeInput(t, inDir, map[string][]string{
		"ok":      {`{"id":"a","body":"text"}`},
		"blocked": {`{"id":"b","body":"text"}`},
	})
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "blocked.jsonl"), []byte("old\n"), 0o644))

	a := newTestApp(t, Config{InputDir: inDir, OutputDir: outDir, Safe: true, Workers: 1})
	err := a.Run(context.Background())
	require.ErrorIs(t, err, ErrPartialFailure)

	// The healthy subreddit still completed.
	_, statErr := os.Stat(filepath.Join(outDir, "ok.jsonl"))
	assert.NoError(t, statErr)
	// The blocked file is untouched.
	data, readErr := os.ReadFile(filepath.Join(outDir, "blocked.jsonl"))
	require.NoError(t, readErr)
	assert.Equal(t, "old\n", string(data))
}

func TestRunTokenizerLoadFailureIsFatal(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	makeInput(t, inDir, map[string][]string{"sub": {`{"id":"a","body":"x"}`}})

	a := newTestApp(t, Config{
		InputDir:      inDir,
		OutputDir:     outDir,
		TokenizerPath: filepath.Join(t.TempDir(), "missing.json"),
		Safe:          true,
	})
	err := a.Run(context.Background())
	require.Error(t, err)

	// Fatal before any unit ran: no outputs at all.
	entries, readErr := os.ReadDir(outDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestRunUnsafeCreatesOutputDir(t *testing.T) {
	inDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "fresh", "nested")
	makeInput(t, inDir, map[string][]string{"sub": {`{"id":"a","body":"x"}`}})

	a := newTestApp(t, Config{InputDir: inDir, OutputDir: outDir, Safe: false})
	require.NoError(t, a.Run(context.Background()))

	_, err := os.Stat(filepath.Join(outDir, "sub.jsonl"))
	assert.NoError(t, err)
}

func TestRunSafeRequiresExistingOutputDir(t *testing.T) {
	inDir := t.TempDir()
	makeInput(t, inDir, map[string][]string{"sub": {`{"id":"a","body":"x"}`}})

	a := newTestApp(t, Config{
		InputDir:  inDir,
		OutputDir: filepath.Join(t.TempDir(), "does-not-exist"),
		Safe:      true,
	})
	require.Error(t, a.Run(context.Background()))
}

func TestRunAppliesPolicyFile(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	makeInput(t, inDir, map[string][]string{
		"sub": {
			`{"id":"a","body":"one two three four five"}`,
			`{"id":"b","parent_id":"a","body":"too short"}`,
		},
	})

	policyPath := filepath.Join(t.TempDir(), "cleanup.hcl")
	require.NoError(t, os.WriteFile(policyPath, []byte("filter {\n  min_tokens = 3\n}\n"), 0o644))

	a := newTestApp(t, Config{
		InputDir:   inDir,
		OutputDir:  outDir,
		PolicyPath: policyPath,
		Safe:       true,
	})
	require.NoError(t, a.Run(context.Background()))

	data, err := os.ReadFile(filepath.Join(outDir, "sub.jsonl"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id":"a"`)
	assert.NotContains(t, string(data), `"id":"b"`)
}

func TestNewConfigValidation(t *testing.T) {
	_, err := NewConfig(Config{OutputDir: "out"})
	require.Error(t, err)

	_, err = NewConfig(Config{InputDir: "in"})
	require.Error(t, err)

	cfg, err := NewConfig(Config{InputDir: "in", OutputDir: "out"})
	require.NoError(t, err)
	assert.Greater(t, cfg.Workers, 0)
}
