package pubsub

import "context"

// Next blocks until the next event arrives on ch. It returns false when ctx
// is done or ch has been closed.
func Next[T any](ctx context.Context, ch <-chan Event[T]) (Event[T], bool) {
	select {
	case <-ctx.Done():
		return Event[T]{}, false
	case event, ok := <-ch:
		return event, ok
	}
}

// Listener is a long-lived subscription that can be polled with Next.
type Listener[T any] struct {
	ctx context.Context
	ch  <-chan Event[T]
}

// NewListener subscribes to s for the lifetime of ctx.
func NewListener[T any](ctx context.Context, s Subscriber[T]) *Listener[T] {
	return &Listener[T]{ctx: ctx, ch: s.Subscribe(ctx)}
}

// Next waits for the next event on the subscription.
func (l *Listener[T]) Next() (Event[T], bool) {
	return Next(l.ctx, l.ch)
}
