package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"attendterm/internal/attendance"
	"attendterm/internal/metrics"
)

// ErrOffline is returned by DrainAndSync when there is no connectivity.
var ErrOffline = errors.New("queue: no connectivity")

// Backend persists queued lines. Implementations must make Append durable
// before returning. Take hands out the current lines together with a commit
// func that removes exactly those lines; anything appended after Take must
// survive the commit.
type Backend interface {
	Append(ctx context.Context, line string) error
	Lines(ctx context.Context) ([]string, error)
	Take(ctx context.Context) (lines []string, commit func(context.Context) error, err error)
}

// Poster transmits one queued record.
type Poster interface {
	Post(ctx context.Context, uid int, timestamp string) error
}

// SyncReport summarises one sync pass.
type SyncReport struct {
	Total   int
	Sent    int
	Failed  int
	Skipped int
}

// Queue is the store-and-forward log of attendance records awaiting delivery.
type Queue struct {
	backend Backend
	delay   time.Duration
	sleep   func(time.Duration)
	logger  *slog.Logger
}

// New wraps a backend. delay is the pause after each submission during sync.
func New(backend Backend, delay time.Duration, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		backend: backend,
		delay:   delay,
		sleep:   time.Sleep,
		logger:  logger.With(slog.String("component", "queue")),
	}
}

// Enqueue appends one record line.
func (q *Queue) Enqueue(ctx context.Context, rec attendance.Record) error {
	if err := q.backend.Append(ctx, rec.Line()); err != nil {
		metrics.QueueAppendErrors.Inc()
		return fmt.Errorf("queue append: %w", err)
	}
	metrics.QueueAppends.Inc()
	q.logger.Info("record queued",
		slog.Int("uid", rec.IdentityID),
		slog.String("timestamp", rec.FormatTimestamp()),
		slog.String("status", rec.Status.String()),
	)
	return nil
}

// Pending returns the queued lines in append order.
func (q *Queue) Pending(ctx context.Context) ([]string, error) {
	lines, err := q.backend.Lines(ctx)
	if err != nil {
		return nil, fmt.Errorf("queue read: %w", err)
	}
	return lines, nil
}

// DrainAndSync submits every queued line once, one at a time, then drops
// the lines it read whatever the individual results were. Records enqueued
// while the pass runs are left for the next one.
//
// This is lossy: a line whose submission failed is dropped, not re-queued.
// Delivery is best effort per pass; only removal of the lines read is
// guaranteed.
func (q *Queue) DrainAndSync(ctx context.Context, poster Poster, online bool) (SyncReport, error) {
	var report SyncReport
	if !online {
		return report, ErrOffline
	}

	lines, commit, err := q.backend.Take(ctx)
	if err != nil {
		return report, fmt.Errorf("queue read: %w", err)
	}
	report.Total = len(lines)

	for _, line := range lines {
		uid, ts, err := attendance.SplitLine(line)
		if err != nil {
			report.Skipped++
			metrics.SyncRecords.WithLabelValues("skipped").Inc()
			q.logger.Warn("skipping malformed queue line", slog.String("line", line))
			continue
		}
		if err := poster.Post(ctx, uid, ts); err != nil {
			report.Failed++
			metrics.SyncRecords.WithLabelValues("failed").Inc()
			q.logger.Warn("sync submission failed",
				slog.Int("uid", uid),
				slog.String("timestamp", ts),
				slog.String("error", err.Error()),
			)
		} else {
			report.Sent++
			metrics.SyncRecords.WithLabelValues("sent").Inc()
		}
		q.sleep(q.delay)
	}

	if err := commit(ctx); err != nil {
		return report, fmt.Errorf("queue clear: %w", err)
	}
	metrics.SyncPasses.Inc()

	level := slog.LevelInfo
	if report.Failed > 0 {
		level = slog.LevelWarn
	}
	q.logger.Log(ctx, level, "sync pass complete, batch cleared",
		slog.Int("total", report.Total),
		slog.Int("sent", report.Sent),
		slog.Int("failed_dropped", report.Failed),
		slog.Int("skipped", report.Skipped),
	)
	return report, nil
}
