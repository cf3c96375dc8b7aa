package http

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jhoicas/papeleria-api/internal/application/dto"
	"github.com/jhoicas/papeleria-api/internal/infrastructure/metrics"
)

// ServerConfig opciones del servidor HTTP.
type ServerConfig struct {
	AppName     string
	SwaggerFile string                          // vacío = sin /docs
	Metrics     *metrics.Metrics                // nil = sin /metrics
	HealthCheck func(ctx context.Context) error // nil = siempre ok
}

// NewServer arma la app Fiber con middlewares, /health, /metrics, /docs y las rutas de la API.
func NewServer(cfg ServerConfig, deps RouterDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			if code == fiber.StatusInternalServerError {
				deps.Log.Error().Err(err).Str("path", c.Path()).Msg("error no controlado")
				return c.Status(code).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
			}
			return c.Status(code).JSON(dto.ErrorResponse{Code: "HTTP_" + strconv.Itoa(code), Message: err.Error()})
		},
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(RequestLogger(deps.Log))
	if cfg.Metrics != nil {
		app.Use(cfg.Metrics.Middleware())
		app.Get("/metrics", cfg.Metrics.Handler())
	}

	// Swagger UI: http://localhost:<port>/docs
	if cfg.SwaggerFile != "" {
		if _, err := os.Stat(cfg.SwaggerFile); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: cfg.SwaggerFile,
				Path:     "docs",
				Title:    "Papelería API",
			}))
		} else {
			deps.Log.Warn().Str("file", cfg.SwaggerFile).Msg("swagger deshabilitado: archivo no encontrado")
		}
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if cfg.HealthCheck != nil {
			if err := cfg.HealthCheck(c.UserContext()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.AppName, "error": err.Error()})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.AppName})
	})

	Router(app, deps)
	return app
}
