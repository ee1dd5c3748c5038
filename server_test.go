package bloggx

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"pkt.systems/bloggx/internal/appconfig"
	"pkt.systems/pslog"
)

func testLogger() pslog.Logger {
	return pslog.NewWithOptions(io.Discard, pslog.Options{Mode: pslog.ModeStructured})
}

func testServerConfig(t *testing.T) ServerConfig {
	t.Helper()
	return ServerConfig{
		API: appconfig.APIConfig{BaseURL: "http://127.0.0.1:1", TimeoutSeconds: 1},
		SSH: appconfig.SSHConfig{
			Addr:        "127.0.0.1:0",
			HostKeyPath: filepath.Join(t.TempDir(), "ssh_host_key"),
		},
	}
}

func TestNewRequiresService(t *testing.T) {
	if _, err := New(testServerConfig(t), testLogger()); err == nil {
		t.Fatal("expected error when no services are enabled")
	}
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	cfg := testServerConfig(t)
	cfg.API.BaseURL = "not a url"
	if _, err := New(cfg, testLogger(), WithSSH()); err == nil {
		t.Fatal("expected error for invalid backend url")
	}
}

func TestServerLifecycle(t *testing.T) {
	srv, err := New(testServerConfig(t), testLogger(), WithSSH())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := srv.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	cancel()
	if err := srv.Wait(); err != nil {
		t.Fatalf("wait after cancel: %v", err)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := srv.Stop(stopCtx); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestWaitBeforeStartErrors(t *testing.T) {
	srv, err := New(testServerConfig(t), testLogger(), WithSSH())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	if err := srv.Wait(); err == nil {
		t.Fatal("expected wait before start to fail")
	}
}
