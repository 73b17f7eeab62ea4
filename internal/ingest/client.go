package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"attendterm/internal/attendance"
	"attendterm/internal/metrics"
)

// ErrRejected is returned when the endpoint answers with anything but 200.
var ErrRejected = errors.New("ingest: endpoint rejected record")

// Client submits attendance records to the remote ingestion endpoint.
// Each call is exactly one attempt; retrying is the caller's business.
type Client struct {
	URL    string
	APIKey string
	HTTP   *http.Client
	logger *slog.Logger
}

// New creates a client with a bounded per-request timeout.
func New(url, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		URL:    url,
		APIKey: apiKey,
		HTTP: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.With(slog.String("component", "ingest")),
	}
}

type payload struct {
	UID       int    `json:"uid"`
	Timestamp string `json:"timestamp"`
}

// Submit sends one record and reports whether the endpoint accepted it.
func (c *Client) Submit(ctx context.Context, rec attendance.Record) bool {
	err := c.Post(ctx, rec.IdentityID, rec.FormatTimestamp())
	if err != nil {
		metrics.Submissions.WithLabelValues("failed").Inc()
		c.logger.Warn("submission failed",
			slog.Int("uid", rec.IdentityID),
			slog.String("error", err.Error()),
		)
		return false
	}
	metrics.Submissions.WithLabelValues("sent").Inc()
	return true
}

// Post performs a single POST of {uid, timestamp}. Only HTTP 200 is success.
func (c *Client) Post(ctx context.Context, uid int, timestamp string) error {
	if c.URL == "" {
		return errors.New("ingest url not configured")
	}

	body, err := json.Marshal(payload{UID: uid, Timestamp: timestamp})
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("ingest request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s: %s", ErrRejected, resp.Status, bytes.TrimSpace(msg))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	c.logger.Debug("record submitted", slog.Int("uid", uid), slog.String("timestamp", timestamp))
	return nil
}
