package terminal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"attendterm/internal/attendance"
	"attendterm/internal/display"
	"attendterm/internal/input"
	"attendterm/internal/matcher"
	"attendterm/internal/metrics"
	"attendterm/internal/queue"
	"attendterm/internal/telemetry"
)

// Keys is the debounced input source.
type Keys interface {
	Poll(longPress bool) input.Events
}

// Scanner is the identity matcher.
type Scanner interface {
	Poll(ctx context.Context, onCapture func()) matcher.Result
	Enroll(ctx context.Context, id int, timeout time.Duration, prompt func(matcher.EnrollStep)) error
	Delete(ctx context.Context, id int) error
}

// Store is the durable offline queue.
type Store interface {
	Enqueue(ctx context.Context, rec attendance.Record) error
	Pending(ctx context.Context) ([]string, error)
	DrainAndSync(ctx context.Context, poster queue.Poster, online bool) (queue.SyncReport, error)
}

// Uplink is the remote ingestion client.
type Uplink interface {
	Submit(ctx context.Context, rec attendance.Record) bool
	queue.Poster
}

// Backlight is the idle manager.
type Backlight interface {
	Tick(now time.Time) bool
	Activity(now time.Time) bool
	On() bool
}

// View draws the UI.
type View interface {
	Enter()
	Standby(v display.StandbyView)
	Scanning()
	PinEntry(entered, digit, length int)
	Menu(items []string, selected int)
	Picker(title string, id int)
	Message(msg string)
	Flash(c display.Color, msg, detail string)
}

// Deps are the controller's collaborators.
type Deps struct {
	Keys      Keys
	Scanner   Scanner
	Store     Store
	Uplink    Uplink
	Online    func() bool
	Now       func() time.Time
	Location  *time.Location
	Address   func() string
	Backlight Backlight
	Beep      func(long bool)
	View      View
	// CaptureTimeout bounds each finger wait during enrollment.
	CaptureTimeout time.Duration
	Logger         *slog.Logger
}

// Controller runs the tick loop. Tick and Run must be called from one
// goroutine; Board may be read from any.
type Controller struct {
	d      Deps
	c      *Context
	board  atomic.Pointer[StatusBoard]
	logger *slog.Logger
}

// New creates a controller around c.
func New(c *Context, d Deps) *Controller {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Location == nil {
		d.Location = time.Local
	}
	if d.Beep == nil {
		d.Beep = func(bool) {}
	}
	if d.Address == nil {
		d.Address = func() string { return "" }
	}
	ctl := &Controller{d: d, c: c, logger: d.Logger.With(slog.String("component", "terminal"))}
	ctl.publish(d.Now())
	return ctl
}

// Context exposes the controller state for inspection.
func (ctl *Controller) Context() *Context { return ctl.c }

// Run ticks every interval until ctx is done.
func (ctl *Controller) Run(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		ctl.Tick(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

// Tick polls inputs and the sensor once, advances the state machine and
// carries out the resulting effect. Effects may block for seconds.
func (ctl *Controller) Tick(ctx context.Context) {
	c := ctl.c
	keys := ctl.d.Keys.Poll(c.State.Mode == Standby)
	now := ctl.d.Now()

	in := Input{Keys: keys, Now: now}
	if !keys.Any() && c.State.Mode == Standby && c.SensorOK {
		in.Match = ctl.d.Scanner.Poll(ctx, func() {
			ctl.d.Beep(false)
			ctl.d.View.Scanning()
		})
		now = ctl.d.Now()
		in.Now = now
	}

	if keys.Activity || keys.Any() || in.Match.Kind != matcher.None {
		ctl.d.Backlight.Activity(now)
	} else {
		ctl.d.Backlight.Tick(now)
	}

	from := c.State.Mode
	eff := Step(c, in)
	if c.State.FirstEntry {
		metrics.Transitions.WithLabelValues(c.State.Mode.String()).Inc()
		ctl.logger.Debug("mode transition", slog.String("from", from.String()), slog.String("to", c.State.Mode.String()))
		ctl.d.View.Enter()
	}
	if eff.Kind != NoEffect {
		ctl.apply(ctx, eff, now)
	}
	ctl.render()
	ctl.publish(ctl.d.Now())
}

func (ctl *Controller) apply(ctx context.Context, eff Effect, now time.Time) {
	v := ctl.d.View
	idText := fmt.Sprintf("ID %d", eff.ID)

	switch eff.Kind {
	case RecordAttendance:
		rec, err := attendance.NewRecord(eff.ID, ctl.c.Status, now)
		if err != nil {
			metrics.Matches.WithLabelValues("rejected").Inc()
			ctl.logger.Error("invalid match id", slog.Int("uid", eff.ID), slog.Any("err", err))
			ctl.d.Beep(true)
			v.Flash(display.Red, "UNKNOWN FINGER", "")
			return
		}
		metrics.Matches.WithLabelValues("new").Inc()
		v.Flash(display.Green, "RECORDED", idText)
		ctl.record(ctx, rec)
	case DuplicateScan:
		metrics.Matches.WithLabelValues("duplicate").Inc()
		ctl.logger.Info("duplicate scan suppressed", slog.Int("uid", eff.ID))
		v.Flash(display.Yellow, "ALREADY RECORDED", idText)
	case UnknownFinger:
		metrics.Matches.WithLabelValues("rejected").Inc()
		ctl.d.Beep(true)
		v.Flash(display.Red, "UNKNOWN FINGER", "")
	case SyncQueue:
		ctl.sync(ctx)
	case PinRejected:
		ctl.logger.Info("admin pin rejected")
		v.Flash(display.Red, "WRONG PIN", "")
	case RunEnroll:
		ctl.enroll(ctx, eff.ID)
	case RunDelete:
		if err := ctl.d.Scanner.Delete(ctx, eff.ID); err != nil {
			ctl.logger.Warn("delete failed", slog.Int("id", eff.ID), slog.Any("err", err))
			v.Flash(display.Red, "DELETE FAILED", idText)
			break
		}
		v.Flash(display.Green, "DELETED", idText)
	case NoSensor:
		v.Flash(display.Red, "NO SENSOR", "")
	}
	v.Enter()
}

// record transmits when online and falls back to the queue otherwise, so a
// record always ends up either accepted by the endpoint or queued.
func (ctl *Controller) record(ctx context.Context, rec attendance.Record) {
	ctx, span := telemetry.Tracer().Start(ctx, "terminal.record")
	defer span.End()

	id := rec.IdentityID
	span.SetAttributes(attribute.Int("uid", id), attribute.String("status", rec.Status.String()))

	if ctl.d.Online() && ctl.d.Uplink.Submit(ctx, rec) {
		span.SetAttributes(attribute.String("outcome", "sent"))
		ctl.logger.Info("attendance sent", slog.Int("uid", id), slog.String("status", rec.Status.String()))
		return
	}
	span.SetAttributes(attribute.String("outcome", "queued"))
	if err := ctl.d.Store.Enqueue(ctx, rec); err != nil {
		span.RecordError(err)
		ctl.logger.Error("offline queue append failed, record lost",
			slog.Int("uid", id),
			slog.String("timestamp", rec.FormatTimestamp()),
			slog.Any("err", err),
		)
	}
}

func (ctl *Controller) sync(ctx context.Context) {
	v := ctl.d.View
	if !ctl.d.Online() {
		v.Flash(display.Red, "OFFLINE", "")
		return
	}

	ctx, span := telemetry.Tracer().Start(ctx, "terminal.sync")
	defer span.End()

	v.Message("SYNCING...")
	report, err := ctl.d.Store.DrainAndSync(ctx, ctl.d.Uplink, true)
	span.SetAttributes(
		attribute.Int("total", report.Total),
		attribute.Int("sent", report.Sent),
		attribute.Int("failed", report.Failed),
	)
	switch {
	case errors.Is(err, queue.ErrOffline):
		v.Flash(display.Red, "OFFLINE", "")
	case err != nil:
		span.RecordError(err)
		ctl.logger.Error("sync pass failed", slog.Any("err", err))
		v.Flash(display.Red, "SYNC FAILED", "")
	default:
		v.Flash(display.Green, "SYNC OK", fmt.Sprintf("%d/%d", report.Sent, report.Total))
	}
}

func (ctl *Controller) enroll(ctx context.Context, id int) {
	v := ctl.d.View
	err := ctl.d.Scanner.Enroll(ctx, id, ctl.d.CaptureTimeout, func(step matcher.EnrollStep) {
		if step == matcher.StepFirstTouch {
			v.Message("Place finger")
			return
		}
		v.Message("Place again")
	})
	idText := fmt.Sprintf("ID %d", id)
	if err != nil {
		ctl.logger.Warn("enroll failed", slog.Int("id", id), slog.Any("err", err))
		ctl.d.Beep(true)
		v.Flash(display.Red, "ENROLL FAILED", idText)
		return
	}
	v.Flash(display.Green, "ENROLLED", idText)
}

func (ctl *Controller) render() {
	c := ctl.c
	v := ctl.d.View
	switch c.State.Mode {
	case Standby:
		t := ctl.d.Now().In(ctl.d.Location)
		v.Standby(display.StandbyView{
			Hour:     t.Hour(),
			Minute:   t.Minute(),
			Second:   t.Second(),
			Status:   c.Status.String(),
			SensorOK: c.SensorOK,
			Online:   ctl.d.Online(),
			Address:  ctl.d.Address(),
		})
	case InputPin:
		v.PinEntry(len(c.State.Entered), c.State.Digit, PinLength)
	case Menu:
		v.Menu(MenuItems, c.State.MenuIndex)
	case Enroll:
		v.Picker("ENROLL", c.State.CandidateID)
	case Delete:
		v.Picker("DELETE", c.State.CandidateID)
	}
	c.State.FirstEntry = false
}
