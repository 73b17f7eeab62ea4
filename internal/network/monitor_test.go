package network

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestTargetFromURL(t *testing.T) {
	cases := []struct {
		raw, want string
		wantErr   bool
	}{
		{"https://ingest.example.com/api/attendance", "ingest.example.com:443", false},
		{"http://10.0.0.2/hook", "10.0.0.2:80", false},
		{"http://localhost:8080/x", "localhost:8080", false},
		{"not a url", "", true},
	}
	for _, tc := range cases {
		got, err := TargetFromURL(tc.raw)
		if (err != nil) != tc.wantErr {
			t.Fatalf("%q: err %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("%q: got %q want %q", tc.raw, got, tc.want)
		}
	}
}

func TestProbe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			c.Close()
		}
	}()

	m := NewMonitor(ln.Addr().String(), time.Second, nil)
	if !m.Probe(context.Background()) || !m.Online() {
		t.Fatal("expected online with a listener")
	}

	ln.Close()
	if m.Probe(context.Background()) || m.Online() {
		t.Fatal("expected offline after listener closed")
	}
}

func TestEmptyTargetIsOffline(t *testing.T) {
	m := NewMonitor("", time.Second, nil)
	if m.Probe(context.Background()) {
		t.Fatal("empty target must be offline")
	}
}
