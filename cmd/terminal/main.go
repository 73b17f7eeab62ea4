package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"attendterm/internal/attendance"
	"attendterm/internal/backlight"
	"attendterm/internal/clock"
	"attendterm/internal/config"
	"attendterm/internal/diag"
	"attendterm/internal/display"
	"attendterm/internal/hw"
	"attendterm/internal/ingest"
	"attendterm/internal/input"
	"attendterm/internal/matcher"
	"attendterm/internal/network"
	"attendterm/internal/queue"
	"attendterm/internal/sensor"
	"attendterm/internal/telemetry"
	"attendterm/internal/terminal"
)

func main() {
	cfg := config.Load()
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("terminal failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func newLogger(cfg config.App) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if strings.EqualFold(cfg.LogFormat, "json") {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(h)
}

// peripherals are the board outputs and inputs, real or stand-ins.
type peripherals struct {
	pins  input.Pins
	light backlight.Light
	beep  func(long bool)
}

func openPeripherals(cfg config.App, logger *slog.Logger) (peripherals, error) {
	if cfg.InputBackend == "none" {
		logger.Info("running without gpio peripherals")
		return peripherals{pins: input.Idle{}, light: hw.Silent{}, beep: hw.Silent{}.Beep}, nil
	}
	if err := hw.Init(); err != nil {
		return peripherals{}, err
	}
	buttons, err := hw.OpenButtons(cfg.GPIOUp, cfg.GPIODown, cfg.GPIOConfirm)
	if err != nil {
		return peripherals{}, err
	}
	light, err := hw.OpenBacklight(cfg.GPIOBacklight)
	if err != nil {
		return peripherals{}, err
	}
	buzzer, err := hw.OpenBuzzer(cfg.GPIOBuzzer)
	if err != nil {
		return peripherals{}, err
	}
	return peripherals{pins: buttons, light: light, beep: buzzer.Beep}, nil
}

func openSensor(cfg config.App, logger *slog.Logger) sensor.Sensor {
	if cfg.SensorBackend == "sim" {
		logger.Warn("using simulated fingerprint sensor", slog.Any("enrolled", cfg.SensorSimIDs))
		return sensor.NewSimulated(cfg.SensorSimIDs...)
	}
	return sensor.NewBridge(cfg.SensorBridgeURL, 3*time.Second, logger)
}

func run(cfg config.App, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger = logger.With(slog.String("boot_id", uuid.NewString()))
	logger.Info("terminal starting", slog.String("env", cfg.Env), slog.String("queue", cfg.QueueBackend))

	shutdownTracing := telemetry.Setup("attendterm", cfg.OTLPEndpoint, cfg.OTLPInsecure, logger)
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	backend, closeQueue, queueHealthy, err := queue.Open(ctx, queue.Settings{
		Backend:     cfg.QueueBackend,
		Path:        cfg.QueuePath,
		SQLitePath:  cfg.QueueSQLitePath,
		DatabaseURL: cfg.DatabaseURL,
		RedisAddr:   cfg.RedisAddr,
		RedisKey:    cfg.QueueRedisKey,
	})
	if err != nil {
		return err
	}
	defer closeQueue()
	q := queue.New(backend, cfg.SyncDelay, logger)

	if cfg.IngestURL == "" {
		logger.Warn("INGEST_URL not set, every record will be queued")
	}
	uplink := ingest.New(cfg.IngestURL, cfg.IngestAPIKey, cfg.IngestTimeout, logger)

	target, err := network.TargetFromURL(cfg.IngestURL)
	if err != nil {
		target = ""
	}
	mon := network.NewMonitor(target, cfg.ConnectivityTTL, logger)

	periph, err := openPeripherals(cfg, logger)
	if err != nil {
		return err
	}
	sens := openSensor(cfg, logger)
	rtc := clock.NewRTC()
	view := display.NewPresenter(display.NewConsole(os.Stdout), "ATTENDANCE", cfg.FlashDwell)

	sensorOK := terminal.Boot(ctx, view, terminal.BootSteps{
		VerifyLink: sens.VerifyLink,
		Probe:      mon.Probe,
		SyncClock: func() error {
			return rtc.Sync(clock.QueryNTP, cfg.NTPServer, 5*time.Second)
		},
		Pause: 500 * time.Millisecond,
	}, logger)
	go mon.Run(ctx)

	ctl := terminal.New(
		terminal.NewContext(cfg.AdminPIN, sensorOK, attendance.NewDeduper(cfg.DuplicateWindow)),
		terminal.Deps{
			Keys: input.NewSource(periph.pins, input.Config{Debounce: cfg.Debounce, LongPress: cfg.LongPress}),
			Scanner: matcher.New(sens, matcher.Config{
				ScanInterval: cfg.ScanInterval,
				EnrollPause:  cfg.EnrollPause,
			}, logger),
			Store:          q,
			Uplink:         uplink,
			Online:         mon.Online,
			Now:            rtc.Now,
			Location:       cfg.Location(),
			Address:        network.Address,
			Backlight:      backlight.New(periph.light, cfg.BacklightTimeout, rtc.Now(), logger),
			Beep:           periph.beep,
			View:           view,
			CaptureTimeout: cfg.CaptureTimeout,
			Logger:         logger,
		},
	)

	if cfg.DiagAddr != "" {
		srv := diag.Server(cfg.DiagAddr, diag.NewRouter(diag.Options{
			Board:   ctl.Board,
			Pending: q.Pending,
			Checks: map[string]func(context.Context) bool{
				"queue":  queueHealthy,
				"online": func(context.Context) bool { return mon.Online() },
			},
			SigningKey:      cfg.JWTSigningKey,
			Issuer:          cfg.JWTIssuer,
			RateLimitPerMin: cfg.RateLimitPerMin,
			Logger:          logger,
		}))
		go func() {
			logger.Info("diagnostics listening", slog.String("addr", cfg.DiagAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("diagnostics server failed", slog.Any("err", err))
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				logger.Warn("diagnostics forced shutdown", slog.Any("err", err))
			}
		}()
	}

	err = ctl.Run(ctx, cfg.TickInterval)
	logger.Info("terminal stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
