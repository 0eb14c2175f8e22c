package infrastructure

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zjrosen/recents/internal/atomicfile"
	"github.com/zjrosen/recents/internal/log"
	"github.com/zjrosen/recents/internal/recents/domain"
)

// RecordFileName is the fixed name of the durable record.
const RecordFileName = "recent_files.json"

// FileStore keeps a registry in a single JSON file.
type FileStore struct {
	path string
}

var _ domain.Store = (*FileStore)(nil)

// NewFileStore returns a store for the record at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: filepath.Clean(path)}
}

// NewDirStore returns a store for RecordFileName inside dataDir.
func NewDirStore(dataDir string) *FileStore {
	return NewFileStore(filepath.Join(dataDir, RecordFileName))
}

// Path returns the record location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads and parses the record. It does not touch the filesystem
// beyond the record itself.
func (s *FileStore) Load(ctx context.Context) (domain.List, error) {
	if err := ctx.Err(); err != nil {
		return domain.List{}, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug(log.CatStore, "No record yet, starting empty", "path", s.path)
			return domain.List{}, nil
		}
		log.ErrorErr(log.CatStore, "Failed to read record", err, "path", s.path)
		return domain.List{}, fmt.Errorf("%w: reading %s: %w", domain.ErrIO, s.path, err)
	}

	l, err := decodeRecord(data)
	if err != nil {
		log.ErrorErr(log.CatStore, "Record is corrupt", err, "path", s.path, "bytes", len(data))
		return domain.List{}, fmt.Errorf("%w: %s: %w", domain.ErrCorruptState, s.path, err)
	}

	log.Debug(log.CatStore, "Loaded record", "path", s.path, "entries", l.Len())
	return l, nil
}

// Save writes l to a temp file in the record's directory and renames it
// over the record, so readers see either the old or the new record.
func (s *FileStore) Save(ctx context.Context, l domain.List) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeRecord(l)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersist, err)
	}

	if err := atomicfile.Write(s.path, data); err != nil {
		log.ErrorErr(log.CatStore, "Failed to persist record", err, "path", s.path)
		return fmt.Errorf("%w: %w", domain.ErrPersist, err)
	}

	log.Debug(log.CatStore, "Persisted record", "path", s.path, "entries", l.Len())
	return nil
}
