// Package forest reconstructs conversation trees from a flat, possibly
// out-of-order record stream. Nodes live in an arena addressed by stable
// ids, so parent links never form reference cycles in memory and cycle
// detection is a bounded ancestor walk over ids.
package forest
