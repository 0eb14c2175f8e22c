package infrastructure

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/zjrosen/recents/internal/atomicfile"
	"github.com/zjrosen/recents/internal/log"
	"github.com/zjrosen/recents/internal/recents/domain"
)

// lockRetryDelay is how often a blocked cross-process lock is retried.
const lockRetryDelay = 10 * time.Millisecond

// gates holds one in-process gate per record path, shared by every
// FileLocker in the process. Entries are never removed, so the map grows by
// one small channel per distinct record path for the life of the process.
// The CLI touches a single record; a long-lived host locking many records
// would need reference counting here.
var gates sync.Map // map[string]chan struct{}

func gateFor(key string) chan struct{} {
	g, _ := gates.LoadOrStore(key, make(chan struct{}, 1))
	return g.(chan struct{})
}

// FileLocker serializes access to one record. Within a process it uses a
// gate keyed by the record's absolute path; across processes it also takes
// an advisory lock on "<record>.lock".
type FileLocker struct {
	key          string
	lockPath     string
	crossProcess bool
}

var _ domain.Locker = (*FileLocker)(nil)

// LockerOption configures a FileLocker.
type LockerOption func(*FileLocker)

// WithoutProcessLock keeps locking in-process only.
func WithoutProcessLock() LockerOption {
	return func(l *FileLocker) { l.crossProcess = false }
}

// NewFileLocker returns a locker for the record at recordPath.
func NewFileLocker(recordPath string, opts ...LockerOption) *FileLocker {
	key := filepath.Clean(recordPath)
	if abs, err := filepath.Abs(key); err == nil {
		key = abs
	}
	l := &FileLocker{
		key:          key,
		lockPath:     key + ".lock",
		crossProcess: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock acquires the in-process gate and, if enabled, the file lock.
func (l *FileLocker) Lock(ctx context.Context) (func(), error) {
	gate := gateFor(l.key)
	select {
	case gate <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	release := func() { <-gate }

	if !l.crossProcess {
		return release, nil
	}

	if err := os.MkdirAll(filepath.Dir(l.lockPath), atomicfile.DirPerm); err != nil {
		release()
		return nil, fmt.Errorf("%w: creating data directory: %w", domain.ErrIO, err)
	}

	fl := flock.New(l.lockPath)
	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		release()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: locking %s: %w", domain.ErrIO, l.lockPath, err)
	}
	if !locked {
		release()
		return nil, fmt.Errorf("%w: could not lock %s", domain.ErrIO, l.lockPath)
	}

	log.Debug(log.CatStore, "Acquired record lock", "path", l.lockPath)
	return func() {
		if err := fl.Unlock(); err != nil {
			log.ErrorErr(log.CatStore, "Failed to release record lock", err, "path", l.lockPath)
		}
		release()
	}, nil
}
