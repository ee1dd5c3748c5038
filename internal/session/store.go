// Package session holds the per-terminal-session authentication context:
// the logged-in identity and its bearer token. The store lives for the
// lifetime of the terminal session and is mutated only through Login and
// Logout; the empty token marks the unauthenticated state.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"pkt.systems/bloggx/schema"
	"pkt.systems/pslog"
)

// EventSink receives session transitions. Satisfied by *eventbus.Bus.
type EventSink interface {
	OnSessionEvent(event schema.SessionEvent)
}

// Session is a snapshot of the authentication context.
type Session struct {
	User  schema.User
	Token string
}

// Store manages one session. Safe for concurrent use; fetch goroutines read
// the token while the UI loop may be logging out.
type Store struct {
	mu    sync.RWMutex
	key   schema.SessionKey
	user  schema.User
	token string
	sink  EventSink
	log   pslog.Logger
}

// NewStore constructs an unauthenticated store for the given session key.
// The sink may be nil.
func NewStore(key schema.SessionKey, sink EventSink, logger pslog.Logger) *Store {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Store{
		key:  key,
		sink: sink,
		log:  logger.With("session", key),
	}
}

// Login stores the result of a successful authentication request. The token
// must be non-empty; the store never performs the login call itself.
func (s *Store) Login(user schema.User, token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("token is required")
	}
	s.mu.Lock()
	s.user = user
	s.user.Password = ""
	s.user.Token = ""
	s.token = token
	s.mu.Unlock()
	s.log.Info("session login", "user", user.Login)
	s.publish(true, user.Login)
	return nil
}

// Logout resets identity and token to empty values. Idempotent: logging out
// an unauthenticated store is a no-op and publishes nothing.
func (s *Store) Logout() {
	s.mu.Lock()
	wasAuthenticated := s.token != ""
	login := s.user.Login
	s.user = schema.User{}
	s.token = ""
	s.mu.Unlock()
	if !wasAuthenticated {
		return
	}
	s.log.Info("session logout", "user", login)
	s.publish(false, "")
}

// Authenticated reports whether a token is present.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Token returns the stored token, empty when unauthenticated.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the stored identity, zero when unauthenticated.
func (s *Store) User() schema.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Snapshot returns the full session state.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Session{User: s.user, Token: s.token}
}

// Key returns the session key the store was built with.
func (s *Store) Key() schema.SessionKey {
	return s.key
}

func (s *Store) publish(authenticated bool, login string) {
	if s.sink == nil {
		return
	}
	s.sink.OnSessionEvent(schema.SessionEvent{
		Key:           s.key,
		Authenticated: authenticated,
		Login:         login,
	})
}
