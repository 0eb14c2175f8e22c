package infrastructure

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/recents/internal/recents/domain"
)

func TestFileLocker_SerializesHolders(t *testing.T) {
	record := filepath.Join(t.TempDir(), RecordFileName)

	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Separate lockers on the same path must still exclude each other.
			unlock, err := NewFileLocker(record).Lock(context.Background())
			if !assert.NoError(t, err) {
				return
			}
			n := inside.Add(1)
			for {
				m := maxInside.Load()
				if n <= m || maxInside.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			inside.Add(-1)
			unlock()
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), maxInside.Load())
}

func TestFileLocker_ContextCancelledWhileWaiting(t *testing.T) {
	record := filepath.Join(t.TempDir(), RecordFileName)
	locker := NewFileLocker(record, WithoutProcessLock())

	unlock, err := locker.Lock(context.Background())
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = NewFileLocker(record, WithoutProcessLock()).Lock(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFileLocker_DifferentRecordsDoNotBlock(t *testing.T) {
	dir := t.TempDir()
	a := NewFileLocker(filepath.Join(dir, "a", RecordFileName))
	b := NewFileLocker(filepath.Join(dir, "b", RecordFileName))

	unlockA, err := a.Lock(context.Background())
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := b.Lock(ctx)
	require.NoError(t, err)
	unlockB()
}

func TestFileLocker_CreatesLockFileDirectory(t *testing.T) {
	record := filepath.Join(t.TempDir(), "fresh", "dir", RecordFileName)

	unlock, err := NewFileLocker(record).Lock(context.Background())
	require.NoError(t, err)
	unlock()

	require.FileExists(t, record+".lock")
}

func TestFileLocker_WaitsForLockHeldByAnotherProcess(t *testing.T) {
	record := filepath.Join(t.TempDir(), RecordFileName)

	// A separate file handle on the lock file stands in for another process.
	other := flock.New(record + ".lock")
	require.NoError(t, other.Lock())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	unlock, err := NewFileLocker(record).Lock(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Nil(t, unlock)

	require.NoError(t, other.Unlock())

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	unlock, err = NewFileLocker(record).Lock(ctx2)
	require.NoError(t, err)
	unlock()
}

func TestFileLocker_ReleasesGateWhenProcessLockFails(t *testing.T) {
	record := filepath.Join(t.TempDir(), RecordFileName)
	// The lock file cannot be opened when a directory sits at its path.
	require.NoError(t, os.MkdirAll(record+".lock", 0o750))

	_, err := NewFileLocker(record).Lock(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrIO)
	require.False(t, errors.Is(err, context.Canceled))
	require.False(t, errors.Is(err, context.DeadlineExceeded))
	require.Contains(t, err.Error(), "locking")

	// The failed attempt must not keep the in-process gate.
	unlock, err := NewFileLocker(record, WithoutProcessLock()).Lock(context.Background())
	require.NoError(t, err)
	unlock()
}
