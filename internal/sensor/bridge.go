package sensor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Bridge talks to the fingerprint module through a local serial-to-HTTP
// bridge daemon. Every command is a POST returning {"code": n, "id": n}.
type Bridge struct {
	BaseURL string
	HTTP    *http.Client
	logger  *slog.Logger
}

// NewBridge creates a bridge client. The timeout bounds every module command.
func NewBridge(baseURL string, timeout time.Duration, logger *slog.Logger) *Bridge {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: timeout},
		logger:  logger.With(slog.String("component", "sensor-bridge")),
	}
}

type bridgeReply struct {
	Code Code `json:"code"`
	ID   int  `json:"id"`
}

// VerifyLink checks the bridge health endpoint, which handshakes with the module.
func (b *Bridge) VerifyLink(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.BaseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := b.HTTP.Do(req)
	if err != nil {
		b.logger.Warn("sensor bridge unavailable", slog.String("error", err.Error()))
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 300
}

func (b *Bridge) CaptureImage(ctx context.Context) Code {
	r, _ := b.call(ctx, "/capture", nil)
	return r.Code
}

func (b *Bridge) ExtractFeatures(ctx context.Context, slot int) Code {
	r, _ := b.call(ctx, "/extract", map[string]int{"slot": slot})
	return r.Code
}

func (b *Bridge) Search(ctx context.Context) (int, Code) {
	r, _ := b.call(ctx, "/search", nil)
	return r.ID, r.Code
}

func (b *Bridge) CreateTemplate(ctx context.Context) Code {
	r, _ := b.call(ctx, "/model", nil)
	return r.Code
}

func (b *Bridge) StoreTemplate(ctx context.Context, id int) Code {
	r, _ := b.call(ctx, "/store", map[string]int{"id": id})
	return r.Code
}

func (b *Bridge) DeleteTemplate(ctx context.Context, id int) Code {
	r, _ := b.call(ctx, "/delete", map[string]int{"id": id})
	return r.Code
}

// call posts one command. Transport and decode failures map to CommError.
func (b *Bridge) call(ctx context.Context, path string, args map[string]int) (bridgeReply, error) {
	var body []byte
	if args != nil {
		body, _ = json.Marshal(args)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return bridgeReply{Code: CommError}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.HTTP.Do(req)
	if err != nil {
		b.logger.Debug("sensor command failed", slog.String("path", path), slog.String("error", err.Error()))
		return bridgeReply{Code: CommError}, fmt.Errorf("sensor bridge request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return bridgeReply{Code: CommError}, fmt.Errorf("sensor bridge error %s", resp.Status)
	}

	var out bridgeReply
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return bridgeReply{Code: CommError}, fmt.Errorf("failed to decode response: %w", err)
	}
	return out, nil
}
