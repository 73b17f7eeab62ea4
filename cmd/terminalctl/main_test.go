package main

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"attendterm/internal/auth"
	"attendterm/internal/config"
)

func testConfig(t *testing.T) config.App {
	t.Helper()
	return config.App{
		JWTIssuer:       "attendterm",
		JWTSigningKey:   "secret",
		AccessTTL:       time.Hour,
		QueueBackend:    "file",
		QueuePath:       filepath.Join(t.TempDir(), "offline.txt"),
		SyncDelay:       0,
		ConnectivityTTL: time.Second,
		IngestTimeout:   time.Second,
	}
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestTokenCommand(t *testing.T) {
	var out bytes.Buffer
	cfg := testConfig(t)
	if err := run([]string{"token", "-sub", "alice", "-role", "operator"}, cfg, &out, quiet); err != nil {
		t.Fatal(err)
	}
	tok := strings.SplitN(out.String(), "\n", 2)[0]
	claims, err := auth.Parse(tok, "secret", "attendterm")
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != "alice" || claims.Role != auth.RoleOperator {
		t.Fatalf("claims %+v", claims)
	}

	if err := run([]string{"token", "-role", "root"}, cfg, &out, quiet); err == nil {
		t.Fatal("unknown role accepted")
	}
}

func TestQueueCommandEmpty(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"queue"}, testConfig(t), &out, quiet); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "# 0 pending (file)") {
		t.Fatalf("output %q", out.String())
	}
}

func TestProbeCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.SensorBridgeURL = srv.URL
	cfg.IngestURL = srv.URL + "/api/attendance"

	var out bytes.Buffer
	if err := run([]string{"probe"}, cfg, &out, quiet); err != nil {
		t.Fatalf("probe: %v\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "true") {
		t.Fatalf("output %q", out.String())
	}
}

func TestUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"reboot"}, testConfig(t), &out, quiet); err == nil {
		t.Fatal("expected error")
	}
	if err := run(nil, testConfig(t), &out, quiet); err == nil {
		t.Fatal("expected error without command")
	}
}
