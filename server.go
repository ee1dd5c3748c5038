// Package bloggx composes the blog client stack: the REST access layer,
// the session event bus, and the SSH front end that serves the terminal UI.
package bloggx

import (
	"context"
	"errors"
	"sync"
	"time"

	"pkt.systems/bloggx/internal/appconfig"
	"pkt.systems/bloggx/internal/eventbus"
	"pkt.systems/bloggx/internal/rest"
	"pkt.systems/bloggx/sshserver"
	"pkt.systems/pslog"
)

// Server composes the serving-side components.
type Server interface {
	Start(ctx context.Context) error
	Wait() error
	Stop(ctx context.Context) error
}

// ServerConfig configures the compositor.
type ServerConfig struct {
	API     appconfig.APIConfig
	SSH     appconfig.SSHConfig
	Logging appconfig.LoggingConfig
}

// ServerOption toggles compositor components.
type ServerOption func(*serverOptions)

type serverOptions struct {
	enableSSH bool
}

// WithSSH enables the SSH server.
func WithSSH() ServerOption {
	return func(o *serverOptions) { o.enableSSH = true }
}

// New constructs a composable bloggx server.
func New(cfg ServerConfig, logger pslog.Logger, opts ...ServerOption) (Server, error) {
	options := serverOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if !options.enableSSH {
		return nil, errors.New("no services enabled")
	}
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}

	client, err := rest.New(rest.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: time.Duration(cfg.API.TimeoutSeconds) * time.Second,
	}, logger)
	if err != nil {
		return nil, err
	}

	sshSrv := &sshserver.Server{
		Addr:                cfg.SSH.Addr,
		HostKeyPath:         cfg.SSH.HostKeyPath,
		Client:              client,
		EventBus:            eventbus.New(logger),
		DisableAuditLogging: cfg.Logging.DisableAuditTrails,
	}

	return &compositeServer{
		cfg:    cfg,
		sshSrv: sshSrv,
	}, nil
}

type compositeServer struct {
	cfg    ServerConfig
	sshSrv *sshserver.Server
	logger pslog.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	errCh   chan error
	started bool
}

func (s *compositeServer) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		pslog.Ctx(ctx).Warn("server start rejected", "reason", "already started")
		return errors.New("server already started")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.errCh = make(chan error, 1)
	s.started = true
	s.logger = pslog.Ctx(s.ctx)
	s.mu.Unlock()

	log := s.logger
	log.Info("server start", "ssh_addr", s.cfg.SSH.Addr, "backend", s.cfg.API.BaseURL)
	go func() {
		if err := s.sshSrv.ListenAndServe(s.ctx); err != nil {
			log.Error("ssh server failed", "err", err)
			s.errCh <- err
		}
	}()
	return nil
}

func (s *compositeServer) Wait() error {
	s.mu.Lock()
	ctx := s.ctx
	errCh := s.errCh
	started := s.started
	s.mu.Unlock()
	if !started {
		return errors.New("server not started")
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		if err != nil {
			pslog.Ctx(ctx).Error("server stopped", "err", err)
			_ = s.Stop(context.Background())
			return err
		}
		return nil
	}
}

func (s *compositeServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancel
	started := s.started
	log := s.logger
	runCtx := s.ctx
	s.mu.Unlock()
	if !started {
		return nil
	}
	if log == nil {
		log = pslog.Ctx(context.Background())
	}
	log.Info("server stop requested")
	if cancel != nil {
		cancel()
	}
	if ctx == nil {
		log.Info("server stop completed")
		return nil
	}
	select {
	case <-ctx.Done():
		log.Warn("server stop timed out", "err", ctx.Err())
		return ctx.Err()
	case <-runCtx.Done():
		log.Info("server stopped")
		return nil
	}
}
