// Package lifecycle exposes store watch events as a lifecycle.Source.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/tessera/pkg/core"
)

// TicketEvent is a store event stamped with the time it was observed.
type TicketEvent struct {
	core.Event
	At time.Time
}

func (e TicketEvent) String() string {
	return fmt.Sprintf("%s %s %s", e.At.Format(core.TimestampLayout), e.Type, e.ID)
}

// Option configures a ticket source.
type Option func(*ticketSource)

// WithTypes only forwards events of the given types. No types means all.
func WithTypes(types ...core.EventType) Option {
	return func(s *ticketSource) {
		for _, t := range types {
			s.types[t] = true
		}
	}
}

type ticketSource struct {
	events <-chan core.Event
	out    chan lifecycle.Event
	types  map[core.EventType]bool
}

// NewSource creates a lifecycle.Source over the events of a store watch.
func NewSource(events <-chan core.Event, opts ...Option) lifecycle.Source {
	s := &ticketSource{
		events: events,
		out:    make(chan lifecycle.Event),
		types:  make(map[core.EventType]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ticketSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start forwards TicketEvents until ctx is done or the watch channel closes,
// then closes Events().
func (s *ticketSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				if len(s.types) > 0 && !s.types[e.Type] {
					continue
				}
				select {
				case s.out <- stamp(e):
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}

func stamp(e core.Event) TicketEvent {
	at := time.Now().UTC()
	if e.Timestamp > 0 {
		at = time.Unix(e.Timestamp, 0).UTC()
	}
	return TicketEvent{Event: e, At: at}
}
