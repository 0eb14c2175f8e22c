package domain

import "errors"

// Registry errors. Every error returned by the registry wraps exactly one
// of these.
var (
	// ErrNotFound means the path being added does not exist on disk.
	ErrNotFound = errors.New("file not found")
	// ErrIO means a read, write or metadata call failed.
	ErrIO = errors.New("i/o failure")
	// ErrCorruptState means the durable record exists but cannot be parsed.
	// It is never treated as an empty registry.
	ErrCorruptState = errors.New("recent files record is corrupt")
	// ErrPersist means writing the record back failed. The previous record
	// is left intact.
	ErrPersist = errors.New("persisting recent files failed")
)
