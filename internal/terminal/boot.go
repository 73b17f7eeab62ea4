package terminal

import (
	"context"
	"log/slog"
	"time"
)

// BootSteps are the checks run once before the loop starts.
type BootSteps struct {
	VerifyLink func(ctx context.Context) bool
	Probe      func(ctx context.Context) bool
	SyncClock  func() error
	// Pause holds each boot message on screen.
	Pause time.Duration
	Sleep func(time.Duration)
}

// Boot checks the sensor link and connectivity and sets the clock when
// online. It reports whether the sensor answered; a missing sensor is not
// fatal.
func Boot(ctx context.Context, v View, b BootSteps, logger *slog.Logger) bool {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "boot"))
	if b.Sleep == nil {
		b.Sleep = time.Sleep
	}
	show := func(msg string) {
		v.Message(msg)
		b.Sleep(b.Pause)
	}

	show("BOOTING")
	sensorOK := b.VerifyLink(ctx)
	if sensorOK {
		show("SENSOR OK")
	} else {
		logger.Error("fingerprint sensor not responding, scanning disabled")
		show("SENSOR ERROR")
	}

	show("CONNECTING...")
	if !b.Probe(ctx) {
		logger.Warn("starting offline, clock not synced")
		show("OFFLINE MODE")
		v.Enter()
		return sensorOK
	}
	show("SYNCING TIME...")
	if err := b.SyncClock(); err != nil {
		logger.Warn("clock sync failed, keeping current time", slog.Any("err", err))
	}
	v.Enter()
	return sensorOK
}
