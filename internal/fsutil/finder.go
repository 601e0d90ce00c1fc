// Package fsutil provides file system discovery helpers.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SubredditDir is one unit of work found under the input root.
type SubredditDir struct {
	// Name is the directory basename, which becomes the output file stem.
	Name string
	Path string
	// Bytes is the summed size of the directory's *.jsonl files.
	Bytes int64
}

// DiscoverSubreddits lists the immediate subdirectories of root, largest
// dump first so the pool's tail stays short. Non-directories at the top
// level are ignored; an empty root is an error because it almost always
// means a mistyped path.
func DiscoverSubreddits(root string) ([]SubredditDir, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var dirs []SubredditDir
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(root, e.Name())
		dirs = append(dirs, SubredditDir{
			Name:  e.Name(),
			Path:  path,
			Bytes: jsonlBytes(path),
		})
	}
	if len(dirs) == 0 {
		return nil, fmt.Errorf("no subreddit directories under %s", root)
	}

	sort.Slice(dirs, func(i, j int) bool {
		if dirs[i].Bytes != dirs[j].Bytes {
			return dirs[i].Bytes > dirs[j].Bytes
		}
		return dirs[i].Name < dirs[j].Name
	})
	return dirs, nil
}

// jsonlBytes sums the dump sizes in one subreddit directory. Errors here
// only cost scheduling quality, never correctness, so they degrade to zero.
func jsonlBytes(dir string) int64 {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	var total int64
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		if info, err := e.Info(); err == nil {
			total += info.Size()
		}
	}
	return total
}
