package application

import (
	"context"
	"io/fs"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/recents/internal/recents/domain"
)

// memStore keeps the record in memory.
type memStore struct {
	mu sync.Mutex
	l  domain.List
}

func (m *memStore) Load(context.Context) (domain.List, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.l, nil
}

func (m *memStore) Save(_ context.Context, l domain.List) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.l = l
	return nil
}

func (m *memStore) Path() string { return "mem://recent_files.json" }

type mutexLocker struct{ mu sync.Mutex }

func (m *mutexLocker) Lock(context.Context) (func(), error) {
	m.mu.Lock()
	return m.mu.Unlock, nil
}

// fakeFS answers stat calls from a set of existing paths.
type fakeFS struct {
	files map[string]bool
}

func (f *fakeFS) stat(path string) (fs.FileInfo, error) {
	if !f.files[path] {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
	}
	return fakeInfo{name: path}, nil
}

type fakeInfo struct{ name string }

func (i fakeInfo) Name() string       { return i.name }
func (i fakeInfo) Size() int64        { return 0 }
func (i fakeInfo) Mode() fs.FileMode  { return 0o644 }
func (i fakeInfo) ModTime() time.Time { return time.Unix(1700000000, 0) }
func (i fakeInfo) IsDir() bool        { return false }
func (i fakeInfo) Sys() any           { return nil }

// cleaned drops paths whose files are gone, keeping order.
func cleaned(model []string, files map[string]bool) []string {
	out := make([]string, 0, len(model))
	for _, p := range model {
		if files[p] {
			out = append(out, p)
		}
	}
	return out
}

// TestService_MatchesModel drives random operation sequences against a
// plain slice model of the persisted record.
func TestService_MatchesModel(t *testing.T) {
	pool := []string{"/a", "/b", "/c", "/d", "/e", "/f", "/g", "/h", "/i", "/j", "/k", "/l", "/m"}

	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		ffs := &fakeFS{files: map[string]bool{}}
		for _, p := range pool {
			ffs.files[p] = true
		}
		store := &memStore{}
		svc := NewService(store, &mutexLocker{}, WithStat(ffs.stat))
		defer svc.Close()

		var model []string // persisted record, MRU first

		steps := rapid.IntRange(1, 60).Draw(rt, "steps")
		for step := 0; step < steps; step++ {
			path := rapid.SampledFrom(pool).Draw(rt, "path")
			switch rapid.IntRange(0, 4).Draw(rt, "op") {
			case 0:
				_, err := svc.Add(ctx, path, nil)
				if !ffs.files[path] {
					require.ErrorIs(rt, err, domain.ErrNotFound)
					break
				}
				require.NoError(rt, err)
				next := []string{path}
				for _, p := range cleaned(model, ffs.files) {
					if p != path && len(next) < domain.Capacity {
						next = append(next, p)
					}
				}
				model = next
			case 1:
				require.NoError(rt, svc.Remove(ctx, path))
				model = slices.DeleteFunc(cleaned(model, ffs.files), func(p string) bool { return p == path })
			case 2:
				ffs.files[path] = !ffs.files[path]
			case 3:
				dropped, err := svc.Prune(ctx)
				require.NoError(rt, err)
				want := cleaned(model, ffs.files)
				require.Len(rt, dropped, len(model)-len(want))
				model = want
			case 4:
				require.NoError(rt, svc.Clear(ctx))
				model = nil
			}

			entries, err := svc.List(ctx)
			require.NoError(rt, err)
			got := pathsOf(entries)
			require.Equal(rt, cleaned(model, ffs.files), got)
			require.LessOrEqual(rt, len(got), domain.Capacity)
			require.Len(rt, distinct(got), len(got))

			stored, _ := store.Load(ctx)
			require.Equal(rt, len(model), stored.Len())
			if len(model) > 0 {
				require.Equal(rt, model, stored.Paths())
			}
		}
	})
}

func distinct(paths []string) map[string]struct{} {
	out := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		out[p] = struct{}{}
	}
	return out
}
