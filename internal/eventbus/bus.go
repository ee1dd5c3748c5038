// Package eventbus fans session store transitions out to the terminal
// sessions watching them, so a forced logout is observed by the UI loop on
// its next turn rather than by polling.
package eventbus

import (
	"context"
	"sync"

	"pkt.systems/bloggx/schema"
	"pkt.systems/pslog"
)

// EventType identifies the event payload.
type EventType string

const (
	// EventSession carries a session store transition.
	EventSession EventType = "session"
)

// Event represents a UI-facing event.
type Event struct {
	Type    EventType
	Session schema.SessionEvent
}

// Bus fanouts events to per-session subscribers.
type Bus struct {
	mu    sync.Mutex
	subs  map[schema.SessionKey]map[chan Event]struct{}
	log   pslog.Logger
	depth int
}

// New constructs a Bus.
func New(logger pslog.Logger) *Bus {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Bus{
		subs:  make(map[schema.SessionKey]map[chan Event]struct{}),
		log:   logger,
		depth: 16,
	}
}

// Subscribe registers a subscriber for the session and returns a channel + cancel.
func (b *Bus) Subscribe(key schema.SessionKey) (<-chan Event, func()) {
	if b == nil {
		return nil, func() {}
	}
	ch := make(chan Event, b.depth)
	b.mu.Lock()
	keySubs := b.subs[key]
	if keySubs == nil {
		keySubs = make(map[chan Event]struct{})
		b.subs[key] = keySubs
	}
	keySubs[ch] = struct{}{}
	count := len(keySubs)
	b.mu.Unlock()
	if b.log != nil {
		b.log.With("session", key).Debug("eventbus subscribe", "subs", count)
	}
	return ch, func() {
		// Close under the lock so a concurrent publish cannot send on a
		// closed channel.
		b.mu.Lock()
		if subs := b.subs[key]; subs != nil {
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}
			if len(subs) == 0 {
				delete(b.subs, key)
			}
		}
		b.mu.Unlock()
		if b.log != nil {
			b.log.With("session", key).Debug("eventbus unsubscribe")
		}
	}
}

// OnSessionEvent publishes a session transition. Sends are non-blocking and
// happen under the lock, so subscribers can never be closed mid-publish.
func (b *Bus) OnSessionEvent(event schema.SessionEvent) {
	if b == nil {
		return
	}
	dropped := 0
	b.mu.Lock()
	for sub := range b.subs[event.Key] {
		select {
		case sub <- Event{Type: EventSession, Session: event}:
		default:
			dropped++
		}
	}
	b.mu.Unlock()
	if dropped > 0 && b.log != nil {
		b.log.With("session", event.Key).Debug("eventbus dropped", "count", dropped)
	}
}
