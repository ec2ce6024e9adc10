package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-analyzer/internal/analysis"
)

// ServerConfig configures NewApp.
type ServerConfig struct {
	MaxUploadMB int
	Version     string
}

// NewApp builds the fiber application with its routes, a private
// Prometheus registry and the recover and CORS middleware.
func NewApp(a *analysis.Analyzer, cfg ServerConfig, log zerolog.Logger) *fiber.App {
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 32
	}

	app := fiber.New(fiber.Config{
		AppName:               "statement-analyzer",
		BodyLimit:             cfg.MaxUploadMB << 20,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	h := &Handler{
		Analyzer: a,
		Metrics:  NewMetrics(reg),
		Log:      log,
		Version:  cfg.Version,
	}
	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/analyze", h.HandleAnalyze)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	return app
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, app *fiber.App, addr string, log zerolog.Logger) error {
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		errc <- app.Listen(addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down server")
		if err := app.Shutdown(); err != nil {
			return err
		}
		if err := <-errc; err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
}
