// Package pubsub provides a small typed publish/subscribe broker. The
// registry service publishes change notifications on it and the debug
// logger publishes formatted lines.
package pubsub

import (
	"context"
	"time"
)

// EventType names what happened.
type EventType string

const (
	// TouchedEvent is published when an entry is inserted or moved to the front.
	TouchedEvent EventType = "touched"
	// RemovedEvent is published when an entry is removed by path.
	RemovedEvent EventType = "removed"
	// ClearedEvent is published when the whole registry is emptied.
	ClearedEvent EventType = "cleared"
	// PrunedEvent is published when stale entries are written out of the record.
	PrunedEvent EventType = "pruned"
	// LoggedEvent carries a formatted log line.
	LoggedEvent EventType = "logged"
)

// Event is a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher publishes events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T) int
}
