// Package guard implements the two checks every protected screen shares:
// the activation gate that sends unauthenticated sessions back to the
// landing screen, and the single classification rule for failed remote
// calls. Screens must never duplicate the 401 check themselves.
package guard

import (
	"context"
	"errors"
	"fmt"

	"pkt.systems/bloggx/internal/logx"
	"pkt.systems/bloggx/internal/rest"
	"pkt.systems/bloggx/schema"
)

// LoginNotice is shown when an unauthenticated session hits a protected screen.
const LoginNotice = "you need to be logged in"

// SessionStore is the narrow session surface the guard needs.
type SessionStore interface {
	Authenticated() bool
	Logout()
}

// Navigator redirects the UI and surfaces notices. Implemented by the
// terminal loop.
type Navigator interface {
	Navigate(screen schema.ScreenName)
	Notice(text string)
}

// Check gates a protected screen activation. When the session holds no
// token it surfaces LoginNotice, redirects to the landing screen, and
// returns false; callers must not schedule any fetch in that case. The
// check runs before fetches are scheduled, not after, so a fetch can never
// race a redirect.
func Check(ctx context.Context, sessions SessionStore, nav Navigator) bool {
	if sessions != nil && sessions.Authenticated() {
		return true
	}
	logx.Ctx(ctx).Debug("guard rejected", "reason", "no token")
	if nav != nil {
		nav.Notice(LoginNotice)
		nav.Navigate(schema.ScreenLanding)
	}
	return false
}

// Classify applies the classification rule to a failed remote call and
// returns the notice to surface, empty when none is needed. Rule 1: an
// unauthorized status forces logout, regardless of which entity or
// operation produced the failure; the redirect the logout provokes is the
// only user-visible signal. Rule 2: every other failure yields an
// operation-specific notice and leaves the session untouched.
func Classify(ctx context.Context, sessions SessionStore, op string, err error) string {
	if err == nil {
		return ""
	}
	log := logx.Ctx(ctx).With("op", op)
	if rest.IsUnauthorized(err) || errors.Is(err, schema.ErrSessionExpired) || errors.Is(err, schema.ErrNotLoggedIn) {
		log.Info("guard forced logout", "status", rest.StatusOf(err))
		if sessions != nil {
			sessions.Logout()
		}
		return ""
	}
	log.Warn("guard classified failure", "status", rest.StatusOf(err), "err", err)
	return fmt.Sprintf("failed to %s", op)
}
