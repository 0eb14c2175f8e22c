// Package application runs the registry's operations: each one takes the
// record lock, loads the record, drops entries whose files are gone,
// applies its change, persists and releases the lock.
package application
