package bloggx

import (
	"github.com/google/uuid"

	"pkt.systems/bloggx/core"
	"pkt.systems/bloggx/internal/eventbus"
	"pkt.systems/bloggx/internal/rest"
	"pkt.systems/bloggx/internal/session"
	"pkt.systems/bloggx/schema"
	"pkt.systems/pslog"
)

// SessionHandle bundles the pieces one terminal session needs: its session
// store, the service bound to it, and its slice of the event bus.
type SessionHandle struct {
	Key     schema.SessionKey
	Store   *session.Store
	Service core.Service
	Events  <-chan eventbus.Event
	close   func()
}

// Close unsubscribes the session from the bus.
func (h SessionHandle) Close() {
	if h.close != nil {
		h.close()
	}
}

// OpenSession assembles a fresh unauthenticated session against the shared
// REST client and bus.
func OpenSession(client *rest.Client, bus *eventbus.Bus, logger pslog.Logger, opts ...core.ServiceOption) (SessionHandle, error) {
	key := schema.SessionKey(uuid.NewString())
	store := session.NewStore(key, bus, logger)
	svc, err := core.NewService(client, store, logger, opts...)
	if err != nil {
		return SessionHandle{}, err
	}
	var events <-chan eventbus.Event
	unsubscribe := func() {}
	if bus != nil {
		events, unsubscribe = bus.Subscribe(key)
	}
	return SessionHandle{
		Key:     key,
		Store:   store,
		Service: svc,
		Events:  events,
		close:   unsubscribe,
	}, nil
}
