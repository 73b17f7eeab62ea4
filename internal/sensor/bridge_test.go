package sensor

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestBridgeCommands(t *testing.T) {
	var stored map[string]int
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.HandleFunc("/capture", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":0}`))
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":0,"id":23}`))
	})
	mux.HandleFunc("/store", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&stored)
		_, _ = w.Write([]byte(`{"code":6}`))
	})
	mux.HandleFunc("/delete", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "module busy", http.StatusServiceUnavailable)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	b := NewBridge(srv.URL, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if !b.VerifyLink(ctx) {
		t.Fatal("expected link ok")
	}
	if code := b.CaptureImage(ctx); code != OK {
		t.Fatalf("capture: %s", code)
	}
	if id, code := b.Search(ctx); code != OK || id != 23 {
		t.Fatalf("search: %d %s", id, code)
	}
	if code := b.StoreTemplate(ctx, 9); code != StoreFail {
		t.Fatalf("store: %s", code)
	}
	if stored["id"] != 9 {
		t.Fatalf("store args: %v", stored)
	}
	if code := b.DeleteTemplate(ctx, 9); code != CommError {
		t.Fatalf("delete on 503: %s", code)
	}
	if code := b.CreateTemplate(ctx); code != CommError {
		t.Fatalf("unknown route should be a comm error, got %s", code)
	}
}

func TestBridgeLinkDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	b := NewBridge(url, 200*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if b.VerifyLink(context.Background()) {
		t.Fatal("expected link failure")
	}
	if code := b.CaptureImage(context.Background()); code != CommError {
		t.Fatalf("expected comm error, got %s", code)
	}
}
