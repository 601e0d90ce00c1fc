// Package pipeline runs one subreddit end to end: load, build the forest,
// dedup, filter, write. Each unit is fully independent of every other; the
// only shared state is the process-wide aggregate counters.
package pipeline
