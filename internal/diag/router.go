// Package diag serves the read-only diagnostics HTTP surface of a terminal.
package diag

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"attendterm/internal/auth"
	"attendterm/internal/httpmiddleware"
	"attendterm/internal/terminal"
)

// Options wires the router to the running terminal.
type Options struct {
	Board   func() terminal.StatusBoard
	Pending func(ctx context.Context) ([]string, error)
	// Checks are named health probes reported by /healthz.
	Checks map[string]func(ctx context.Context) bool

	SigningKey      string
	Issuer          string
	RateLimitPerMin int
	Logger          *slog.Logger
}

// NewRouter builds the gin engine.
func NewRouter(o Options) *gin.Engine {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(o.Logger.With(slog.String("component", "diag")), "/healthz", "/metrics"))
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewTokenBucket(o.RateLimitPerMin, o.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{"status": "ok"}
		for name, check := range o.Checks {
			ok := check(c.Request.Context())
			body[name] = ok
			if !ok {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
			}
		}
		c.JSON(status, body)
	})

	v1 := r.Group("/v1",
		auth.BearerAuth(o.SigningKey, o.Issuer),
		auth.RequireRole(auth.RoleViewer, auth.RoleOperator),
	)

	v1.GET("/status", func(c *gin.Context) {
		board := o.Board()
		pending := -1
		if lines, err := o.Pending(c.Request.Context()); err == nil {
			pending = len(lines)
		}
		c.JSON(http.StatusOK, gin.H{"terminal": board, "pending": pending})
	})

	v1.GET("/queue", func(c *gin.Context) {
		lines, err := o.Pending(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queue unavailable"})
			return
		}
		if lines == nil {
			lines = []string{}
		}
		c.JSON(http.StatusOK, gin.H{"count": len(lines), "lines": lines})
	})

	return r
}

// Server wraps the router in an http.Server with the usual timeouts.
func Server(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func requestLogger(logger *slog.Logger, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]bool, len(skip))
	for _, p := range skip {
		skipped[p] = true
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if skipped[c.Request.URL.Path] {
			return
		}
		logger.Debug("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
			slog.String("client", c.ClientIP()),
		)
	}
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
