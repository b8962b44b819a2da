package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/estetica/salon-booking/internal/api/handler"
	"github.com/estetica/salon-booking/internal/api/middleware"
	"github.com/estetica/salon-booking/internal/core/domain"
	"github.com/estetica/salon-booking/internal/core/ports"
)

// Options carries the dependencies of the HTTP layer.
type Options struct {
	Identity     ports.IdentityService
	Appointments ports.AppointmentService
	Catalog      domain.Catalog
	JWTSecret    string

	// AuthLimiter throttles /auth per client IP. Nil disables throttling.
	AuthLimiter *middleware.RateLimiter

	StorageDriver string
	Dependencies  map[string]handler.Pinger

	// Registerer and Gatherer default to the prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Logger)

	registerer := opts.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(opts.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:                 "salon",
		Subsystem:                 "http",
		Registerer:                registerer,
		DoNotUseRequestPathFor404: true,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(opts.Identity)
	appointmentHandler := handler.NewAppointmentHandler(opts.Appointments)
	catalogHandler := handler.NewCatalogHandler(opts.Catalog)
	healthHandler := handler.NewHealthHandler(opts.StorageDriver, opts.Dependencies)

	// --- Auth routes ---
	auth := e.Group("/auth")
	if opts.AuthLimiter != nil {
		auth.Use(middleware.RateLimit(opts.AuthLimiter))
	}
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// --- API v1 ---
	v1 := e.Group("/v1")
	v1.GET("/services", catalogHandler.List)

	requireAuth := middleware.Auth(opts.JWTSecret)
	v1.GET("/me", authHandler.Me, requireAuth)
	v1.POST("/appointments", appointmentHandler.Create, requireAuth, middleware.RBAC(domain.RoleClient))
	v1.GET("/appointments", appointmentHandler.List, requireAuth)
	v1.PATCH("/appointments/:id/status", appointmentHandler.UpdateStatus, requireAuth)
	v1.GET("/appointments/:id/history", appointmentHandler.History, requireAuth)

	// --- Health probes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
