// Package infrastructure binds the recent-files registry to the filesystem:
// a JSON record written atomically, and a per-record single-writer lock.
package infrastructure
