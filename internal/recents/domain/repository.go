package domain

import "context"

// Store reads and writes the durable record for one registry.
type Store interface {
	// Load parses the record. A missing record is an empty List. A record
	// that cannot be parsed returns ErrCorruptState. Load does not check
	// the filesystem for stale entries.
	Load(ctx context.Context) (List, error)

	// Save atomically replaces the whole record with l. On failure the
	// previous record is left as it was and the error wraps ErrPersist.
	Save(ctx context.Context, l List) error

	// Path returns the location of the record.
	Path() string
}

// Locker serializes load-mutate-persist cycles on one record.
type Locker interface {
	// Lock blocks until the caller holds the record exclusively or ctx is
	// done. The returned func releases the lock.
	Lock(ctx context.Context) (unlock func(), err error)
}
