package logx

import (
	"context"

	"pkt.systems/bloggx/schema"
	"pkt.systems/pslog"
)

type contextKey int

const (
	sessionKey contextKey = iota
	screenKey
)

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithSession annotates the logger with the session key if present.
func WithSession(ctx context.Context, key schema.SessionKey) pslog.Logger {
	log := pslog.Ctx(ctx)
	if key != "" {
		if current, ok := ctx.Value(sessionKey).(schema.SessionKey); ok && current == key {
			return log
		}
		log = log.With("session", key)
	}
	return log
}

// WithScreen annotates the logger with session and screen identifiers.
func WithScreen(ctx context.Context, key schema.SessionKey, screen schema.ScreenName) pslog.Logger {
	log := WithSession(ctx, key)
	if screen != "" {
		if current, ok := ctx.Value(screenKey).(schema.ScreenName); ok && current == screen {
			return log
		}
		log = log.With("screen", screen)
	}
	return log
}

// ContextWithSession stores the session marker on the context for log de-duplication.
func ContextWithSession(ctx context.Context, key schema.SessionKey) context.Context {
	if ctx == nil || key == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionKey, key)
}

// ContextWithScreen stores the screen marker on the context for log de-duplication.
func ContextWithScreen(ctx context.Context, screen schema.ScreenName) context.Context {
	if ctx == nil || screen == "" {
		return ctx
	}
	return context.WithValue(ctx, screenKey, screen)
}

// ContextWithSessionLogger attaches the logger and session marker to the context.
func ContextWithSessionLogger(ctx context.Context, log pslog.Logger, key schema.SessionKey) context.Context {
	ctx = pslog.ContextWithLogger(ctx, log)
	return ContextWithSession(ctx, key)
}
