package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	httpapi "github.com/i474232898/weather-station-grabber/internal/api/http"
	"github.com/i474232898/weather-station-grabber/internal/app"
	"github.com/i474232898/weather-station-grabber/internal/config"
	"github.com/i474232898/weather-station-grabber/internal/geo"
	"github.com/i474232898/weather-station-grabber/internal/logging"
	"github.com/i474232898/weather-station-grabber/internal/scheduler"
)

const (
	appName = "weapi"
	version = "0.2.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(os.Stdout, cfg, version, appName)
	slog.SetDefault(log)
	log.Info("starting", "port", cfg.Port, "telemetry", cfg.TelemetryEnabled())

	service := app.NewService(cfg, log)

	// Initial directory build; an empty result only means every lookup misses.
	buildCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	n := service.Refresh(buildCtx, true)
	cancel()
	log.Info("station directory ready", "stations", n)

	sched := scheduler.New(cfg.RefreshInterval, 2*time.Minute, service, log.With("component", "scheduler"))
	if err := sched.Start(); err != nil {
		log.Error("failed to start scheduler", "err", err)
		os.Exit(1)
	}
	defer sched.Stop()

	var geocoder geo.Geocoder
	if g := geo.NewGoogleGeocoder(cfg.GeocoderAPIKey); g != nil {
		geocoder = g
	}

	fiberApp := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	fiberApp.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	fiberApp.Use(logger.New())
	fiberApp.Use(recover.New())

	fiberApp.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  appName,
			"version":  version,
			"stations": service.Directory().Len(),
		})
	})

	httpapi.RegisterRoutes(fiberApp, service, geocoder)

	go func() {
		if err := fiberApp.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "err", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := fiberApp.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "err", err)
	}
	log.Info("shutting down")
}
