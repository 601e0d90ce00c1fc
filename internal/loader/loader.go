package loader

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vk/threadforge/internal/ctxlog"
	"github.com/vk/threadforge/internal/record"
)

// Reddit bodies routinely exceed bufio.Scanner's 64KiB default.
const maxLineBytes = 16 * 1024 * 1024

// Stats counts what the loader absorbed while streaming one directory.
type Stats struct {
	Lines          int
	MalformedLines int
	UnreadableFiles int
}

// Each streams every record under dir to fn, visiting *.jsonl files in
// lexical order and lines in file order. A malformed line is skipped and
// counted; an unreadable file is counted and its lines are simply absent.
// fn returning an error stops the stream and surfaces that error.
func Each(ctx context.Context, dir string, fn func(*record.Record) error) (Stats, error) {
	var stats Stats
	logger := ctxlog.FromContext(ctx)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return stats, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)

	for _, path := range files {
		if err := eachFile(path, fn, &stats); err != nil {
			if errors.Is(err, errStopped) {
				return stats, errors.Unwrap(err)
			}
			logger.Warn("skipping unreadable file", "file", path, "error", err)
			stats.UnreadableFiles++
		}
	}
	return stats, nil
}

// errStopped wraps a callback error so it can be told apart from file I/O
// failures, which are recoverable.
var errStopped = errors.New("loader: stopped by callback")

type stopError struct{ err error }

func (e *stopError) Error() string { return errStopped.Error() + ": " + e.err.Error() }
func (e *stopError) Is(target error) bool { return target == errStopped }
func (e *stopError) Unwrap() error { return e.err }

func eachFile(path string, fn func(*record.Record) error, stats *Stats) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		stats.Lines++

		rec, err := record.Decode(line, lineNo)
		if err != nil {
			stats.MalformedLines++
			continue
		}
		if err := fn(rec); err != nil {
			return &stopError{err: err}
		}
	}
	return sc.Err()
}
