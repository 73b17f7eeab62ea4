package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"attendterm/internal/attendance"
)

func testClient(url string) *Client {
	return New(url, "secret-key", 2*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSubmitSendsUIDAndTimestamp(t *testing.T) {
	var got map[string]any
	var headers http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		headers = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message":"Success"}`))
	}))
	defer srv.Close()

	rec, _ := attendance.NewRecord(17, attendance.CheckOut, time.Date(2026, 7, 8, 9, 10, 11, 0, time.UTC))
	if !testClient(srv.URL).Submit(context.Background(), rec) {
		t.Fatal("expected submit to succeed")
	}

	if headers.Get("Content-Type") != "application/json" {
		t.Errorf("content type: %q", headers.Get("Content-Type"))
	}
	if headers.Get("x-api-key") != "secret-key" {
		t.Errorf("api key header: %q", headers.Get("x-api-key"))
	}
	if headers.Get("X-Request-Id") == "" {
		t.Error("missing request id")
	}
	if len(got) != 2 || got["uid"] != float64(17) || got["timestamp"] != "2026-07-08T09:10:11.000Z" {
		t.Fatalf("unexpected body: %v", got)
	}
}

func TestPostOnlyAcceptsStatusOK(t *testing.T) {
	for _, status := range []int{http.StatusCreated, http.StatusAccepted, http.StatusUnauthorized, http.StatusNotFound, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		err := testClient(srv.URL).Post(context.Background(), 1, "2026-01-01T00:00:00.000Z")
		srv.Close()
		if !errors.Is(err, ErrRejected) {
			t.Errorf("status %d: expected ErrRejected, got %v", status, err)
		}
	}
}

func TestSubmitTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	rec, _ := attendance.NewRecord(2, attendance.CheckIn, time.Now())
	if testClient(url).Submit(context.Background(), rec) {
		t.Fatal("expected failure against a closed server")
	}
}

func TestPostRequiresURL(t *testing.T) {
	if err := testClient("").Post(context.Background(), 1, "x"); err == nil {
		t.Fatal("expected error without url")
	}
}

func TestSubmitMakesExactlyOneAttempt(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	rec, _ := attendance.NewRecord(3, attendance.CheckIn, time.Now())
	if testClient(srv.URL).Submit(context.Background(), rec) {
		t.Fatal("expected failure")
	}
	if calls != 1 {
		t.Fatalf("expected one attempt, got %d", calls)
	}
}
