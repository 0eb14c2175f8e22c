package application

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/recents/internal/log"
	"github.com/zjrosen/recents/internal/pubsub"
	"github.com/zjrosen/recents/internal/recents/domain"
	"github.com/zjrosen/recents/internal/tracing"
)

// trackedFilePerm is the mode for files created by TrackedWrite.
const trackedFilePerm = 0o644

// StatFunc returns metadata for path. os.Stat in production.
type StatFunc func(path string) (fs.FileInfo, error)

// Change is the payload of registry events.
type Change struct {
	OpID string
	// Path is the entry that was touched or removed; empty for clear and prune.
	Path string
	// Entries is the registry after the change, most recent first.
	Entries []domain.Entry
	// Dropped holds stale entries removed by cleanup during the operation.
	Dropped []domain.Entry
}

// Service is the registry for one record.
type Service struct {
	store          domain.Store
	locker         domain.Locker
	stat           StatFunc
	persistCleanup bool
	tracer         trace.Tracer
	broker         *pubsub.Broker[Change]
	newOpID        func() string
}

// Option configures a Service.
type Option func(*Service)

// WithStat replaces os.Stat for existence checks.
func WithStat(fn StatFunc) Option {
	return func(s *Service) { s.stat = fn }
}

// WithPersistCleanup makes List write the record back when it dropped
// stale entries.
func WithPersistCleanup(enabled bool) Option {
	return func(s *Service) { s.persistCleanup = enabled }
}

// WithTracer sets the tracer used for operation spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// NewService returns a registry service over store, serialized by locker.
func NewService(store domain.Store, locker domain.Locker, opts ...Option) *Service {
	s := &Service{
		store:   store,
		locker:  locker,
		stat:    os.Stat,
		broker:  pubsub.NewBroker[Change](),
		newOpID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe returns a channel of change events published after each
// successful persist. The channel closes when ctx is done or Close is called.
func (s *Service) Subscribe(ctx context.Context) <-chan pubsub.Event[Change] {
	return s.broker.Subscribe(ctx)
}

// Close stops event delivery.
func (s *Service) Close() {
	s.broker.Close()
}

// List returns the registry, most recent first, without entries whose
// files no longer exist.
func (s *Service) List(ctx context.Context) (entries []domain.Entry, err error) {
	ctx, o := s.start(ctx, "list")
	defer func() { o.end(err) }()

	err = s.withLock(ctx, o, func() error {
		l, dropped, err := s.loadClean(ctx, o)
		if err != nil {
			return err
		}
		if len(dropped) > 0 && s.persistCleanup {
			if err := s.persist(ctx, o, l); err != nil {
				log.Warn(log.CatRegistry, "Could not persist cleanup", "op", o.id, "error", err)
			} else {
				s.publish(pubsub.PrunedEvent, o, "", l, dropped)
			}
		}
		entries = l.Entries()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Add records path as the most recently used entry. The file must exist;
// its modification time is captured now.
func (s *Service) Add(ctx context.Context, path string, preview *string) (entry domain.Entry, err error) {
	ctx, o := s.start(ctx, "add", attribute.String(tracing.AttrFilePath, path))
	defer func() { o.end(err) }()

	return s.touch(ctx, o, path, preview)
}

// Remove drops path from the registry. Removing an absent path succeeds.
func (s *Service) Remove(ctx context.Context, path string) (err error) {
	ctx, o := s.start(ctx, "remove", attribute.String(tracing.AttrFilePath, path))
	defer func() { o.end(err) }()

	return s.withLock(ctx, o, func() error {
		l, dropped, err := s.loadClean(ctx, o)
		if err != nil {
			return err
		}
		existed := l.Contains(path)
		l = l.Remove(path)
		if err := s.persist(ctx, o, l); err != nil {
			return err
		}
		log.Info(log.CatRegistry, "Removed entry", "op", o.id, "path", path, "existed", existed)
		s.publish(pubsub.RemovedEvent, o, path, l, dropped)
		return nil
	})
}

// Clear empties the registry. The record is replaced without being read,
// so a corrupt record is repaired.
func (s *Service) Clear(ctx context.Context) (err error) {
	ctx, o := s.start(ctx, "clear")
	defer func() { o.end(err) }()

	return s.withLock(ctx, o, func() error {
		if err := s.persist(ctx, o, domain.List{}); err != nil {
			return err
		}
		log.Info(log.CatRegistry, "Cleared registry", "op", o.id)
		s.publish(pubsub.ClearedEvent, o, "", domain.List{}, nil)
		return nil
	})
}

// Prune writes the registry back without stale entries and returns the
// entries it dropped. Nothing is written when nothing was stale.
func (s *Service) Prune(ctx context.Context) (dropped []domain.Entry, err error) {
	ctx, o := s.start(ctx, "prune")
	defer func() { o.end(err) }()

	err = s.withLock(ctx, o, func() error {
		l, stale, err := s.loadClean(ctx, o)
		if err != nil {
			return err
		}
		if len(stale) == 0 {
			return nil
		}
		if err := s.persist(ctx, o, l); err != nil {
			return err
		}
		dropped = stale
		log.Info(log.CatRegistry, "Pruned stale entries", "op", o.id, "dropped", len(stale))
		s.publish(pubsub.PrunedEvent, o, "", l, stale)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dropped, nil
}

// TrackedWrite writes content to path and then records path in the
// registry. A write failure wraps ErrIO and leaves the registry alone.
// A registry failure after a good write is returned as *TrackingError;
// the written file is kept.
func (s *Service) TrackedWrite(ctx context.Context, path string, content []byte) (err error) {
	ctx, o := s.start(ctx, "tracked_write", attribute.String(tracing.AttrFilePath, path))
	defer func() { o.end(err) }()

	if err := os.WriteFile(path, content, trackedFilePerm); err != nil { //nolint:gosec // G306: tracked files are user documents
		log.ErrorErr(log.CatTrack, "Write failed", err, "op", o.id, "path", path)
		return fmt.Errorf("%w: writing %s: %w", domain.ErrIO, path, err)
	}
	o.span.AddEvent(tracing.EventFileIO, trace.WithAttributes(attribute.Int("bytes", len(content))))
	log.Debug(log.CatTrack, "Wrote file", "op", o.id, "path", path, "bytes", len(content))

	if _, err := s.touch(ctx, o, path, nil); err != nil {
		log.Warn(log.CatTrack, "File written but not tracked", "op", o.id, "path", path, "error", err)
		return &TrackingError{Op: OpWrite, Path: path, Err: err}
	}
	return nil
}

// TrackedRead reads path and then records it in the registry. A read
// failure wraps ErrIO and leaves the registry alone. If the registry update
// fails the content is still returned, together with a *TrackingError.
func (s *Service) TrackedRead(ctx context.Context, path string) (content []byte, err error) {
	ctx, o := s.start(ctx, "tracked_read", attribute.String(tracing.AttrFilePath, path))
	defer func() { o.end(err) }()

	content, err = os.ReadFile(path) //nolint:gosec // G304: path is chosen by the user
	if err != nil {
		log.ErrorErr(log.CatTrack, "Read failed", err, "op", o.id, "path", path)
		return nil, fmt.Errorf("%w: reading %s: %w", domain.ErrIO, path, err)
	}
	o.span.AddEvent(tracing.EventFileIO, trace.WithAttributes(attribute.Int("bytes", len(content))))
	log.Debug(log.CatTrack, "Read file", "op", o.id, "path", path, "bytes", len(content))

	if _, err := s.touch(ctx, o, path, nil); err != nil {
		log.Warn(log.CatTrack, "File read but not tracked", "op", o.id, "path", path, "error", err)
		return content, &TrackingError{Op: OpRead, Path: path, Err: err}
	}
	return content, nil
}

// touch stats path and moves it to the front of the registry.
func (s *Service) touch(ctx context.Context, o *op, path string, preview *string) (domain.Entry, error) {
	info, err := s.stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Entry{}, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return domain.Entry{}, fmt.Errorf("%w: stat %s: %w", domain.ErrIO, path, err)
	}
	entry := domain.NewEntry(path, info.ModTime(), preview)

	err = s.withLock(ctx, o, func() error {
		l, dropped, err := s.loadClean(ctx, o)
		if err != nil {
			return err
		}
		l = l.Touch(entry)
		if err := s.persist(ctx, o, l); err != nil {
			return err
		}
		log.Info(log.CatRegistry, "Touched entry", "op", o.id, "path", path, "entries", l.Len())
		s.publish(pubsub.TouchedEvent, o, path, l, dropped)
		return nil
	})
	if err != nil {
		return domain.Entry{}, err
	}
	return entry, nil
}

func (s *Service) withLock(ctx context.Context, o *op, fn func() error) error {
	unlock, err := s.locker.Lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	o.span.AddEvent(tracing.EventLockAcquired)
	return fn()
}

// loadClean loads the record and filters out entries whose files are gone.
func (s *Service) loadClean(ctx context.Context, o *op) (domain.List, []domain.Entry, error) {
	raw, err := s.store.Load(ctx)
	if err != nil {
		return domain.List{}, nil, err
	}
	o.span.AddEvent(tracing.EventLoaded, trace.WithAttributes(attribute.Int(tracing.AttrEntries, raw.Len())))

	l, dropped := raw.Retain(s.exists)
	if len(dropped) > 0 {
		o.span.AddEvent(tracing.EventCleaned, trace.WithAttributes(attribute.Int(tracing.AttrDropped, len(dropped))))
		log.Debug(log.CatRegistry, "Dropped stale entries", "op", o.id, "dropped", len(dropped))
	}
	return l, dropped, nil
}

func (s *Service) exists(e domain.Entry) bool {
	_, err := s.stat(e.Path)
	return err == nil
}

func (s *Service) persist(ctx context.Context, o *op, l domain.List) error {
	if err := s.store.Save(ctx, l); err != nil {
		return err
	}
	o.span.AddEvent(tracing.EventPersisted, trace.WithAttributes(attribute.Int(tracing.AttrEntries, l.Len())))
	return nil
}

func (s *Service) publish(t pubsub.EventType, o *op, path string, l domain.List, dropped []domain.Entry) {
	s.broker.Publish(t, Change{
		OpID:    o.id,
		Path:    path,
		Entries: l.Entries(),
		Dropped: dropped,
	})
}

// op carries the identity and span of one public operation.
type op struct {
	id   string
	name string
	span trace.Span
}

func (s *Service) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, *op) {
	id := s.newOpID()
	attrs = append(attrs,
		attribute.String(tracing.AttrOpID, id),
		attribute.String(tracing.AttrRecordPath, s.store.Path()),
	)
	ctx, span := tracing.Start(ctx, s.tracer, name, attrs...)
	log.Debug(log.CatRegistry, "Operation started", "op", id, "name", name)
	return ctx, &op{id: id, name: name, span: span}
}

func (o *op) end(err error) {
	tracing.End(o.span, err, errorKind(err))
	if err != nil {
		log.ErrorErr(log.CatRegistry, "Operation failed", err, "op", o.id, "name", o.name)
		return
	}
	log.Debug(log.CatRegistry, "Operation finished", "op", o.id, "name", o.name)
}

// errorKind classifies err for span attributes.
func errorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsTrackingError(err):
		return "tracking"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrCorruptState):
		return "corrupt_state"
	case errors.Is(err, domain.ErrPersist):
		return "persist"
	case errors.Is(err, domain.ErrIO):
		return "io"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "unknown"
	}
}
