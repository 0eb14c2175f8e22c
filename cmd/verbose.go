package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/zjrosen/recents/internal/log"
	"github.com/zjrosen/recents/internal/pubsub"
	"github.com/zjrosen/recents/internal/recents/application"
)

// lockedWriter serializes writes from the command and the --verbose pumps.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// echoLog copies debug log lines to stderr until the log is shut down.
func (o *rootOptions) echoLog(ctx context.Context) {
	listener := log.NewListener(ctx)
	if listener == nil {
		return
	}
	o.pumps.Add(1)
	go func() {
		defer o.pumps.Done()
		for {
			event, ok := listener.Next()
			if !ok {
				return
			}
			_, _ = io.WriteString(o.stderr, event.Payload)
		}
	}()
}

// reportChanges prints one line per registry change until the service is
// closed.
func (o *rootOptions) reportChanges(events <-chan pubsub.Event[application.Change]) {
	o.pumps.Add(1)
	go func() {
		defer o.pumps.Done()
		for event := range events {
			fmt.Fprintln(o.stderr, describeChange(event))
		}
	}()
}

// describeChange renders e.g. "touched /home/me/a.md entries=3 stale=1".
func describeChange(event pubsub.Event[application.Change]) string {
	c := event.Payload
	parts := []string{string(event.Type)}
	if c.Path != "" {
		parts = append(parts, c.Path)
	}
	parts = append(parts, fmt.Sprintf("entries=%d", len(c.Entries)))
	if len(c.Dropped) > 0 {
		parts = append(parts, fmt.Sprintf("stale=%d", len(c.Dropped)))
	}
	return strings.Join(parts, " ")
}
