// Package matcher turns the fingerprint module command sequence into a
// tri-state poll result and runs the blocking enroll/delete flows.
package matcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"attendterm/internal/sensor"
)

var (
	ErrCaptureTimeout = errors.New("matcher: no finger within timeout")
	ErrEnrollFailed   = errors.New("matcher: enrollment failed")
	ErrDeleteFailed   = errors.New("matcher: delete failed")
)

// Kind is the outcome of one poll.
type Kind int

const (
	None Kind = iota
	Matched
	Rejected
)

func (k Kind) String() string {
	switch k {
	case Matched:
		return "matched"
	case Rejected:
		return "rejected"
	default:
		return "none"
	}
}

// Result of Poll. ID is set only for Matched.
type Result struct {
	Kind Kind
	ID   int
}

// Config holds the timing knobs.
type Config struct {
	// ScanInterval is the minimum spacing between module interactions.
	ScanInterval time.Duration
	// CaptureYield is the pause between capture attempts in WaitForCapture.
	CaptureYield time.Duration
	// EnrollPause separates the two enrollment captures.
	EnrollPause time.Duration
}

// Matcher wraps a sensor.Sensor. Not safe for concurrent use.
type Matcher struct {
	sensor sensor.Sensor
	cfg    Config
	last   time.Time
	now    func() time.Time
	sleep  func(time.Duration)
	logger *slog.Logger
}

// New creates a matcher with defaults for zero config values.
func New(s sensor.Sensor, cfg Config, logger *slog.Logger) *Matcher {
	if cfg.ScanInterval <= 0 {
		cfg.ScanInterval = 200 * time.Millisecond
	}
	if cfg.CaptureYield <= 0 {
		cfg.CaptureYield = 50 * time.Millisecond
	}
	if cfg.EnrollPause < 0 {
		cfg.EnrollPause = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{
		sensor: s,
		cfg:    cfg,
		now:    time.Now,
		sleep:  time.Sleep,
		logger: logger.With(slog.String("component", "matcher")),
	}
}

// Poll runs at most one capture cycle per ScanInterval and is safe to call
// every tick. onCapture, if set, runs once an image was acquired and before
// feature extraction, so the UI can signal that a scan is in progress.
//
// A failed capture or extraction yields None; only a failed search is Rejected.
func (m *Matcher) Poll(ctx context.Context, onCapture func()) Result {
	now := m.now()
	if !m.last.IsZero() && now.Sub(m.last) < m.cfg.ScanInterval {
		return Result{}
	}
	m.last = now

	if code := m.sensor.CaptureImage(ctx); code != sensor.OK {
		return Result{}
	}
	if onCapture != nil {
		onCapture()
	}
	if code := m.sensor.ExtractFeatures(ctx, sensor.SlotFirst); code != sensor.OK {
		m.logger.Debug("feature extraction failed", slog.String("code", code.String()))
		return Result{}
	}
	id, code := m.sensor.Search(ctx)
	if code != sensor.OK {
		m.logger.Debug("no template match", slog.String("code", code.String()))
		return Result{Kind: Rejected}
	}
	if id <= 0 {
		m.logger.Warn("sensor matched reserved template id", slog.Int("id", id))
		return Result{Kind: Rejected}
	}
	return Result{Kind: Matched, ID: id}
}

// WaitForCapture blocks until an image is acquired or timeout elapses,
// yielding CaptureYield between attempts. Nothing else runs meanwhile.
func (m *Matcher) WaitForCapture(ctx context.Context, timeout time.Duration) bool {
	deadline := m.now().Add(timeout)
	for m.now().Before(deadline) {
		if ctx.Err() != nil {
			return false
		}
		if m.sensor.CaptureImage(ctx) == sensor.OK {
			return true
		}
		m.sleep(m.cfg.CaptureYield)
	}
	return false
}

// EnrollStep identifies which prompt the operator should see.
type EnrollStep int

const (
	StepFirstTouch EnrollStep = iota
	StepSecondTouch
)

// Enroll takes two captures, fuses them and stores the template under id.
// Nothing is stored unless every step succeeds.
func (m *Matcher) Enroll(ctx context.Context, id int, timeout time.Duration, prompt func(EnrollStep)) error {
	steps := []struct {
		step EnrollStep
		slot int
	}{
		{StepFirstTouch, sensor.SlotFirst},
		{StepSecondTouch, sensor.SlotSecond},
	}
	for i, s := range steps {
		if i > 0 {
			m.sleep(m.cfg.EnrollPause)
		}
		if prompt != nil {
			prompt(s.step)
		}
		if !m.WaitForCapture(ctx, timeout) {
			return ErrCaptureTimeout
		}
		if code := m.sensor.ExtractFeatures(ctx, s.slot); code != sensor.OK {
			return fmt.Errorf("%w: extract slot %d: %s", ErrEnrollFailed, s.slot, code)
		}
	}
	if code := m.sensor.CreateTemplate(ctx); code != sensor.OK {
		return fmt.Errorf("%w: create template: %s", ErrEnrollFailed, code)
	}
	if code := m.sensor.StoreTemplate(ctx, id); code != sensor.OK {
		return fmt.Errorf("%w: store id %d: %s", ErrEnrollFailed, id, code)
	}
	m.logger.Info("template enrolled", slog.Int("id", id))
	return nil
}

// Delete removes the template stored under id.
func (m *Matcher) Delete(ctx context.Context, id int) error {
	if code := m.sensor.DeleteTemplate(ctx, id); code != sensor.OK {
		return fmt.Errorf("%w: id %d: %s", ErrDeleteFailed, id, code)
	}
	m.logger.Info("template deleted", slog.Int("id", id))
	return nil
}
