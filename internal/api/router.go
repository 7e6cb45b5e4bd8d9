package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/quillpost/blog/docs"
	"github.com/quillpost/blog/internal/api/handler"
	"github.com/quillpost/blog/internal/api/middleware"
	"github.com/quillpost/blog/internal/core/ports"
	"github.com/quillpost/blog/internal/infrastructure/http/handlers"
	"github.com/quillpost/blog/internal/infrastructure/session"
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	AuthService ports.AuthService
	PostService ports.PostService
	Sessions    *session.Manager
	Checks      []handlers.Check
	Logger      zerolog.Logger

	// Registry receives the HTTP metrics. Nil means the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "blog",
		Registerer: registerer,
	}))
	e.Use(deps.Sessions.Middleware())
	e.Use(middleware.LoadUser(deps.Sessions, deps.AuthService, deps.Logger))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.AuthService, deps.Sessions, deps.Logger)
	postHandler := handler.NewPostHandler(deps.PostService)
	requireAuth := middleware.RequireAuth(handler.LoginPath)

	// --- Operational endpoints (no auth required) ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	e.GET("/health/ready", handlers.NewReadinessHandler(deps.Checks...).Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/logout", authHandler.Logout)
	auth.POST("/logout", authHandler.Logout)

	// --- Posts ---
	e.GET("/", postHandler.Index)
	e.POST("/create", postHandler.Create, requireAuth)
	e.GET("/:id", postHandler.Show)
	e.GET("/:id/update", postHandler.Edit, requireAuth)
	e.POST("/:id/update", postHandler.Update, requireAuth)
	e.POST("/:id/delete", postHandler.Delete, requireAuth)

	return e
}

// requestLogger writes one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Error != nil {
				event = log.Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
