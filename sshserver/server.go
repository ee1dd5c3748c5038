// Package sshserver exposes the blog client over SSH. Connections are not
// authenticated at the SSH layer; each session gets its own empty session
// store and logs into the backend from the landing screen.
package sshserver

import (
	"context"
	"errors"
	"io"
	"net"

	gliderssh "github.com/gliderlabs/ssh"
	"github.com/google/uuid"

	"pkt.systems/bloggx/core"
	"pkt.systems/bloggx/internal/eventbus"
	"pkt.systems/bloggx/internal/logx"
	"pkt.systems/bloggx/internal/rest"
	"pkt.systems/bloggx/internal/session"
	"pkt.systems/bloggx/schema"
	"pkt.systems/bloggx/tui"
	"pkt.systems/pslog"
)

// Server serves the blog TUI over SSH.
type Server struct {
	Addr        string
	HostKeyPath string
	Listener    net.Listener
	Client      *rest.Client
	EventBus    *eventbus.Bus
	// DisableAuditLogging turns off audit trail debug logs for backend
	// mutations made from SSH sessions.
	DisableAuditLogging bool
	logger              pslog.Logger
}

// ListenAndServe starts the SSH server and shuts down on context cancellation.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.Client == nil {
		return errors.New("rest client is required")
	}
	if s.logger == nil {
		s.logger = pslog.Ctx(ctx)
	}

	signer, err := EnsureHostKey(s.HostKeyPath)
	if err != nil {
		return err
	}

	server := &gliderssh.Server{
		Addr:    s.Addr,
		Handler: s.handleSession,
	}
	server.AddHostKey(signer)

	errCh := make(chan error, 1)
	go func() {
		if s.Listener != nil {
			errCh <- server.Serve(s.Listener)
			return
		}
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		_ = server.Close()
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleSession(sess gliderssh.Session) {
	log := s.logger
	if log == nil {
		log = pslog.Ctx(sess.Context())
	}
	remote := sess.RemoteAddr().String()
	sessionKey := schema.SessionKey(uuid.NewString())
	log = log.With("session", sessionKey, "remote", remote)
	ctx := logx.ContextWithSessionLogger(sess.Context(), log, sessionKey)

	pty, winCh, ok := sess.Pty()
	if !ok {
		log.Info("ssh session rejected", "reason", "pty required")
		_, _ = io.WriteString(sess, "pty required\n")
		return
	}

	log.Info("ssh session opened", "term", pty.Term, "ssh_user", sess.User())

	store := session.NewStore(sessionKey, s.EventBus, log)
	var svcOpts []core.ServiceOption
	if s.DisableAuditLogging {
		svcOpts = append(svcOpts, core.DisableAuditLogging())
	}
	svc, err := core.NewService(s.Client, store, log, svcOpts...)
	if err != nil {
		log.Warn("ssh session setup failed", "err", err)
		_, _ = io.WriteString(sess, "internal error\n")
		return
	}

	var events <-chan eventbus.Event
	var unsubscribe func()
	if s.EventBus != nil {
		events, unsubscribe = s.EventBus.Subscribe(sessionKey)
	}
	if unsubscribe != nil {
		defer unsubscribe()
	}

	ui := tui.New(tui.Config{
		Input:    sess,
		Output:   sess,
		Service:  svc,
		Sessions: store,
		Events:   events,
		Width:    pty.Window.Width,
		Height:   pty.Window.Height,
	})

	resize := make(chan tui.Resize, 1)
	go func() {
		defer close(resize)
		for win := range winCh {
			resize <- tui.Resize{Width: win.Width, Height: win.Height}
		}
	}()

	_ = ui.Run(ctx, resize)
	log.Info("ssh session closed", "term", pty.Term)
}
