// Package network tracks whether the ingestion endpoint is reachable.
package network

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"sync/atomic"
	"time"

	"attendterm/internal/metrics"
)

// Monitor probes a TCP endpoint in the background and caches the result so
// the controller loop can read connectivity without blocking.
type Monitor struct {
	target   string
	interval time.Duration
	timeout  time.Duration
	online   atomic.Bool
	dial     func(ctx context.Context, network, addr string) (net.Conn, error)
	logger   *slog.Logger
}

// TargetFromURL returns host:port for an http(s) URL, defaulting the port
// from the scheme.
func TargetFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", raw, err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("url %q has no host", raw)
	}
	port := u.Port()
	if port == "" {
		port = "443"
		if u.Scheme == "http" {
			port = "80"
		}
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}

// NewMonitor probes target every interval.
func NewMonitor(target string, interval time.Duration, logger *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	var d net.Dialer
	return &Monitor{
		target:   target,
		interval: interval,
		timeout:  interval,
		dial:     d.DialContext,
		logger:   logger.With(slog.String("component", "network")),
	}
}

// Online returns the last probe result.
func (m *Monitor) Online() bool { return m.online.Load() }

// Probe dials the target once and records the result.
func (m *Monitor) Probe(ctx context.Context) bool {
	ok := false
	if m.target != "" {
		ctx, cancel := context.WithTimeout(ctx, m.timeout)
		conn, err := m.dial(ctx, "tcp", m.target)
		cancel()
		if err == nil {
			_ = conn.Close()
			ok = true
		}
	}
	if prev := m.online.Swap(ok); prev != ok {
		m.logger.Info("connectivity changed", slog.Bool("online", ok), slog.String("target", m.target))
	}
	metrics.Online.Set(metrics.Bool(ok))
	return ok
}

// Run probes until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	t := time.NewTicker(m.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Probe(ctx)
		}
	}
}

// Address returns the first non-loopback IPv4 address of this host, or
// "0.0.0.0" when there is none.
func Address() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "0.0.0.0"
	}
	for _, a := range addrs {
		if ipn, ok := a.(*net.IPNet); ok && !ipn.IP.IsLoopback() {
			if v4 := ipn.IP.To4(); v4 != nil {
				return v4.String()
			}
		}
	}
	return "0.0.0.0"
}
