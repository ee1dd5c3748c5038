package bloggx

import (
	"testing"

	"pkt.systems/bloggx/internal/eventbus"
	"pkt.systems/bloggx/internal/rest"
	"pkt.systems/bloggx/schema"
)

func TestOpenSessionAssignsDistinctKeys(t *testing.T) {
	logger := testLogger()
	client, err := rest.New(rest.Config{BaseURL: "http://127.0.0.1:1"}, logger)
	if err != nil {
		t.Fatalf("rest client: %v", err)
	}
	bus := eventbus.New(logger)

	a, err := OpenSession(client, bus, logger)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	defer a.Close()
	b, err := OpenSession(client, bus, logger)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	defer b.Close()

	if a.Key == b.Key {
		t.Fatalf("expected distinct session keys, both %q", a.Key)
	}
	if a.Service == nil || a.Store == nil || a.Events == nil {
		t.Fatal("expected a fully assembled session handle")
	}
	if a.Store.Authenticated() {
		t.Fatal("expected a fresh session to be unauthenticated")
	}
}

func TestSessionEventsReachHandle(t *testing.T) {
	logger := testLogger()
	client, err := rest.New(rest.Config{BaseURL: "http://127.0.0.1:1"}, logger)
	if err != nil {
		t.Fatalf("rest client: %v", err)
	}
	bus := eventbus.New(logger)

	h, err := OpenSession(client, bus, logger)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	defer h.Close()

	if err := h.Store.Login(schema.User{ID: 1, Login: "root@root.com"}, "tok"); err != nil {
		t.Fatalf("login: %v", err)
	}
	select {
	case ev := <-h.Events:
		if !ev.Session.Authenticated {
			t.Fatal("expected an authenticated session event")
		}
	default:
		t.Fatal("expected a buffered session event")
	}
}
