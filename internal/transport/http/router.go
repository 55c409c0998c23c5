package http

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/taskflow/backend/internal/config"
	"github.com/taskflow/backend/internal/core/ports"
	"github.com/taskflow/backend/internal/infrastructure/cache"
	"github.com/taskflow/backend/internal/infrastructure/logger"
	"github.com/taskflow/backend/internal/transport/http/dto"
	"github.com/taskflow/backend/internal/transport/http/handlers"
	httpmw "github.com/taskflow/backend/internal/transport/http/middleware"
	"github.com/taskflow/backend/internal/transport/ws"
)

const apiVersion = "1.0.0"

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// CacheStatus is the read-through cache reported by /health.
type CacheStatus interface {
	Ping(ctx context.Context) error
	GetStats() cache.StatsSnapshot
}

type RouterConfig struct {
	Service ports.TaskService
	Health  HealthChecker
	// Cache is nil when caching is disabled.
	Cache  CacheStatus
	Hub    *ws.Hub
	Logger *logger.Logger
	Config *config.Config
}

// NewApp builds the fiber application with the global middleware stack and
// every route registered.
func NewApp(cfg RouterConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.Config.Server.ReadTimeout,
		WriteTimeout:          cfg.Config.Server.WriteTimeout,
		IdleTimeout:           cfg.Config.Server.IdleTimeout,
		ErrorHandler:          ErrorHandler(cfg.Logger, !cfg.Config.Server.IsProduction()),
		DisableStartupMessage: true,
	})

	app.Use(recover.New(recover.Config{
		EnableStackTrace: !cfg.Config.Server.IsProduction(),
	}))

	allowedOrigins := "http://localhost:5173"
	if len(cfg.Config.Auth.AllowedOrigins) > 0 {
		allowedOrigins = strings.Join(cfg.Config.Auth.AllowedOrigins, ",")
	}
	allowHeaders := "Origin, Content-Type, Accept, Authorization"
	if h := cfg.Config.Features.RequestIDHeader; h != "" {
		allowHeaders += ", " + h
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowHeaders: allowHeaders,
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
		// fiber refuses credentials with a wildcard origin.
		AllowCredentials: allowedOrigins != "*",
	}))

	app.Use(httpmw.RequestID(cfg.Config.Features.RequestIDHeader))
	if cfg.Config.Features.EnableRequestLogging {
		app.Use(httpmw.AccessLog(cfg.Logger))
	}

	SetupRoutes(app, cfg)
	return app
}

func SetupRoutes(app *fiber.App, cfg RouterConfig) {
	taskHandler := handlers.NewTaskHandler(cfg.Service, cfg.Logger, !cfg.Config.Server.IsProduction())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Task Management API is running",
			"version": apiVersion,
			"endpoints": fiber.Map{
				"tasks":      "/api/tasks",
				"singleTask": "/api/tasks/:id",
			},
		})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if cfg.Health != nil {
			if err := cfg.Health.Ping(ctx); err != nil {
				cfg.Logger.Warnw("health_check_failed", "error", err)
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
			}
		}
		resp := fiber.Map{"status": "ok"}
		if cfg.Cache != nil {
			// Reads fall through to the store, so a dead cache only degrades.
			cacheStatus := "ok"
			if err := cfg.Cache.Ping(ctx); err != nil {
				cfg.Logger.Warnw("health_cache_unavailable", "error", err)
				cacheStatus = "unavailable"
			}
			resp["cache"] = fiber.Map{
				"status": cacheStatus,
				"stats":  cfg.Cache.GetStats(),
			}
		}
		return c.JSON(resp)
	})

	if cfg.Hub != nil && cfg.Config.Features.EnableEvents {
		eventsHandler := handlers.NewEventsHandler(cfg.Hub, cfg.Logger)
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return c.SendStatus(fiber.StatusUpgradeRequired)
		})
		app.Get("/ws/tasks", websocket.New(eventsHandler.Handle))
	}

	tasks := app.Group("/api/tasks", httpmw.BearerAuth(cfg.Config.Auth.JWTSecret))
	tasks.Get("/", taskHandler.ListTasks)
	tasks.Post("/", taskHandler.CreateTask)
	tasks.Get("/:id", taskHandler.GetTask)
	tasks.Put("/:id", taskHandler.UpdateTask)
	tasks.Delete("/:id", taskHandler.DeleteTask)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(dto.Failure("Route not found"))
	})
}

// ErrorHandler renders errors that escape the handlers, including recovered
// panics, as an envelope.
func ErrorHandler(log *logger.Logger, exposeErrors bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}

		if code < fiber.StatusInternalServerError {
			log.Warnw("request failed",
				"method", c.Method(),
				"path", c.Path(),
				"status", code,
				"error", err.Error(),
				"request_id", httpmw.GetRequestID(c),
			)
			return c.Status(code).JSON(dto.Failure(err.Error()))
		}

		log.Errorw("request error",
			"method", c.Method(),
			"path", c.Path(),
			"status", code,
			"error", err.Error(),
			"request_id", httpmw.GetRequestID(c),
		)
		resp := dto.Failure("Internal Server Error")
		if exposeErrors {
			resp.Error = err.Error()
		}
		return c.Status(code).JSON(resp)
	}
}
