// Package loader streams records out of one subreddit directory in
// file-then-line order. Malformed lines and unreadable files are absorbed
// and counted rather than propagated.
package loader
