// Package backlight powers the display down after a period without input.
package backlight

import (
	"log/slog"
	"time"

	"attendterm/internal/metrics"
)

// Light is the physical backlight switch.
type Light interface {
	SetBacklight(on bool) error
}

// Manager tracks the last activity time. It is driven from the controller
// loop and is not safe for concurrent use.
type Manager struct {
	light    Light
	timeout  time.Duration
	settle   time.Duration
	on       bool
	lastSeen time.Time
	sleep    func(time.Duration)
	logger   *slog.Logger
}

const wakeSettle = 200 * time.Millisecond

// New starts with the backlight on and the activity clock at now.
func New(light Light, timeout time.Duration, now time.Time, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		light:    light,
		timeout:  timeout,
		settle:   wakeSettle,
		lastSeen: now,
		sleep:    time.Sleep,
		logger:   logger.With(slog.String("component", "backlight")),
	}
	m.set(true)
	return m
}

// On reports whether the backlight is lit.
func (m *Manager) On() bool { return m.on }

// Tick switches the backlight off once the timeout elapsed since the last
// activity. It reports whether it changed state.
func (m *Manager) Tick(now time.Time) bool {
	if !m.on || m.timeout <= 0 || now.Sub(m.lastSeen) < m.timeout {
		return false
	}
	m.set(false)
	m.logger.Debug("backlight off", slog.Duration("idle", now.Sub(m.lastSeen)))
	return true
}

// Activity records input at now. If the backlight was off it is switched on,
// followed by a short settle delay, and Activity reports true.
func (m *Manager) Activity(now time.Time) bool {
	m.lastSeen = now
	if m.on {
		return false
	}
	m.set(true)
	m.sleep(m.settle)
	m.logger.Debug("backlight on")
	return true
}

func (m *Manager) set(on bool) {
	if err := m.light.SetBacklight(on); err != nil {
		m.logger.Warn("backlight switch failed", slog.Bool("on", on), slog.Any("err", err))
	}
	m.on = on
	metrics.BacklightOn.Set(metrics.Bool(on))
}
