package attendance

import (
	"errors"
	"testing"
	"time"
)

func TestRecordLineRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 14, 8, 5, 9, 123456789, time.FixedZone("WIB", 7*3600))
	for _, status := range []Status{CheckIn, CheckOut, Overtime} {
		rec, err := NewRecord(42, status, at)
		if err != nil {
			t.Fatalf("new record: %v", err)
		}
		got, err := ParseLine(rec.Line())
		if err != nil {
			t.Fatalf("parse %q: %v", rec.Line(), err)
		}
		if got.IdentityID != rec.IdentityID || got.Status != rec.Status || !got.Timestamp.Equal(rec.Timestamp) {
			t.Fatalf("round trip mismatch: got %+v want %+v", got, rec)
		}
	}
}

func TestRecordLineFormat(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec, _ := NewRecord(7, CheckOut, at)
	want := "7,2026-01-02T03:04:05.000Z,Check-Out"
	if rec.Line() != want {
		t.Fatalf("unexpected line: %s", rec.Line())
	}
	if rec.FormatTimestamp() != "2026-01-02T03:04:05.000Z" {
		t.Fatalf("unexpected timestamp: %s", rec.FormatTimestamp())
	}
}

func TestNewRecordRejectsNonPositiveID(t *testing.T) {
	for _, id := range []int{0, -3} {
		if _, err := NewRecord(id, CheckIn, time.Now()); err == nil {
			t.Fatalf("expected error for id %d", id)
		}
	}
}

func TestParseLineMalformed(t *testing.T) {
	cases := []string{
		"",
		"12",
		"12,2026-01-02T03:04:05.000Z",
		"abc,2026-01-02T03:04:05.000Z,Check-In",
		"0,2026-01-02T03:04:05.000Z,Check-In",
		"5,,Check-In",
		"5,yesterday,Check-In",
		"5,2026-01-02T03:04:05.000Z,Lunch",
	}
	for _, line := range cases {
		if _, err := ParseLine(line); !errors.Is(err, ErrMalformedLine) {
			t.Errorf("ParseLine(%q): expected ErrMalformedLine, got %v", line, err)
		}
	}
}

func TestSplitLineIgnoresStatusLabel(t *testing.T) {
	uid, ts, err := SplitLine("3,2025-12-31T23:59:59.000Z,Lembur\r")
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if uid != 3 || ts != "2025-12-31T23:59:59.000Z" {
		t.Fatalf("unexpected fields: %d %s", uid, ts)
	}
}

func TestStatusCycle(t *testing.T) {
	if CheckIn.Next() != CheckOut || Overtime.Next() != CheckIn {
		t.Fatal("next does not wrap forward")
	}
	if CheckIn.Prev() != Overtime || CheckOut.Prev() != CheckIn {
		t.Fatal("prev does not wrap backward")
	}
	if s, err := ParseStatus("overtime"); err != nil || s != Overtime {
		t.Fatalf("parse status: %v %v", s, err)
	}
}
