package queue

import (
	"context"
	"path/filepath"
	"testing"

	"attendterm/internal/store"
)

func exerciseBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()
	drain(t, b)
	in := []string{
		"1,2026-01-01T08:00:00.000Z,Check-In",
		"2,2026-01-01T08:00:05.000Z,Check-In",
		"1,2026-01-01T17:00:00.000Z,Check-Out",
	}
	for _, line := range in {
		if err := b.Append(ctx, line); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	out, err := b.Lines(ctx)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d lines, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("line %d: got %q want %q", i, out[i], in[i])
		}
	}

	taken, commit, err := b.Take(ctx)
	if err != nil || len(taken) != len(in) {
		t.Fatalf("take: %v %v", taken, err)
	}
	late := "3,2026-01-01T17:05:00.000Z,Check-Out"
	if err := b.Append(ctx, late); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}
	out, _ = b.Lines(ctx)
	if len(out) != 1 || out[0] != late {
		t.Fatalf("expected only the late line, got %v", out)
	}
	drain(t, b)
	if out, _ := b.Lines(ctx); len(out) != 0 {
		t.Fatalf("expected empty queue, got %v", out)
	}
}

func drain(t *testing.T, b Backend) {
	t.Helper()
	_, commit, err := b.Take(context.Background())
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	if err := commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	db, err := store.NewSQLite(ctx, filepath.Join(t.TempDir(), "queue.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	b, err := NewSQLBackend(ctx, db, DialectSQLite)
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	exerciseBackend(t, b)
}

func TestSQLBackendRejectsUnknownDialect(t *testing.T) {
	if _, err := NewSQLBackend(context.Background(), nil, Dialect("mysql")); err == nil {
		t.Fatal("expected error for unknown dialect")
	}
}
