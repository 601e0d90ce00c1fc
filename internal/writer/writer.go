// Package writer serializes a forest to one JSONL file per subreddit,
// honoring the safe-overwrite policy.
package writer

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/threadforge/internal/forest"
)

// ErrAlreadyExists is returned under safe mode when the destination file is
// already present. The existing file is left untouched.
var ErrAlreadyExists = errors.New("output file already exists")

// Write emits every surviving node of f to <dir>/<subreddit>.jsonl, one
// encoded record per line, trees in root creation order and nodes in
// pre-order within each tree. Returns the number of records written.
func Write(f *forest.Forest, dir, subreddit string, safe bool) (int, error) {
	path := filepath.Join(dir, subreddit+".jsonl")

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if safe {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	out, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if safe && errors.Is(err, os.ErrExist) {
			return 0, fmt.Errorf("%s: %w", path, ErrAlreadyExists)
		}
		return 0, err
	}

	bw := bufio.NewWriterSize(out, 1<<20)
	written := 0
	walkErr := f.Walk(func(n *forest.Node) error {
		line, err := n.Record.Encode()
		if err != nil {
			return err
		}
		if _, err := bw.Write(line); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
		written++
		return nil
	})

	if walkErr != nil {
		out.Close()
		return written, walkErr
	}
	if err := bw.Flush(); err != nil {
		out.Close()
		return written, err
	}
	return written, out.Close()
}
