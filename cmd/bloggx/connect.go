package main

import (
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pkt.systems/bloggx"
	"pkt.systems/bloggx/core"
	"pkt.systems/bloggx/internal/appconfig"
	"pkt.systems/bloggx/internal/eventbus"
	"pkt.systems/bloggx/internal/rest"
	"pkt.systems/bloggx/tui"
	"pkt.systems/pslog"
)

func newConnectCmd() *cobra.Command {
	var cfgPath string
	var baseURL string
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Open the blog client in this terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			if baseURL != "" {
				cfg.API.BaseURL = baseURL
			}

			// The alternate screen owns stdout while connected; console
			// logging would tear the frame, so log to a file when asked
			// and stay silent otherwise.
			logger := pslog.NewWithOptions(io.Discard, pslog.Options{Mode: pslog.ModeStructured})
			if logPath := os.Getenv("BLOGGX_LOG_FILE"); logPath != "" {
				file, err := os.OpenFile(logPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
				if err != nil {
					return err
				}
				defer func() { _ = file.Close() }()
				logger = pslog.NewWithOptions(file, pslog.Options{Mode: pslog.ModeStructured})
			}
			ctx := pslog.ContextWithLogger(cmd.Context(), logger)

			client, err := rest.New(rest.Config{
				BaseURL: cfg.API.BaseURL,
				Timeout: time.Duration(cfg.API.TimeoutSeconds) * time.Second,
			}, logger)
			if err != nil {
				return err
			}

			var svcOpts []core.ServiceOption
			if cfg.Logging.DisableAuditTrails {
				svcOpts = append(svcOpts, core.DisableAuditLogging())
			}
			handle, err := bloggx.OpenSession(client, eventbus.New(logger), logger, svcOpts...)
			if err != nil {
				return err
			}
			defer handle.Close()

			fd := int(os.Stdin.Fd())
			if !term.IsTerminal(fd) {
				return errors.New("stdin is not a terminal")
			}
			oldState, err := term.MakeRaw(fd)
			if err != nil {
				return err
			}
			defer func() { _ = term.Restore(fd, oldState) }()

			width, height, err := term.GetSize(fd)
			if err != nil {
				width, height = 80, 24
			}

			resize := make(chan tui.Resize, 1)
			winch := make(chan os.Signal, 1)
			signal.Notify(winch, syscall.SIGWINCH)
			defer signal.Stop(winch)
			go func() {
				for range winch {
					if w, h, err := term.GetSize(fd); err == nil {
						select {
						case resize <- tui.Resize{Width: w, Height: h}:
						default:
						}
					}
				}
			}()

			ui := tui.New(tui.Config{
				Input:    os.Stdin,
				Output:   os.Stdout,
				Service:  handle.Service,
				Sessions: handle.Store,
				Events:   handle.Events,
				Width:    width,
				Height:   height,
			})

			runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return ui.Run(runCtx, resize)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "backend base URL (overrides config)")
	return cmd
}
