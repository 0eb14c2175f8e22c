// Package domain holds the pure model of the recent-files registry.
//
// A List is an immutable, MRU-ordered sequence of at most Capacity entries
// keyed by exact path. Touch, Remove and Retain return new Lists and never
// do I/O; loading, existence checks and persistence live in the
// infrastructure and application layers.
package domain
