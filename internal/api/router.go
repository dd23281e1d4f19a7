package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/zetas/barbershop/internal/api/handler"
	"github.com/zetas/barbershop/internal/api/middleware"
	"github.com/zetas/barbershop/internal/core/ports"
)

// Deps are the already-wired use cases and settings the router needs.
type Deps struct {
	Appointments ports.AppointmentService
	Catalog      ports.CatalogService
	Auth         ports.AuthService
	Sessions     ports.SessionVerifier
	SMS          ports.SMSGateway
	Checks       map[string]handler.DependencyCheck

	// UploadsURLPrefix is served from UploadsDir, e.g. /uploads/services.
	UploadsURLPrefix string
	UploadsDir       string
	CORSOrigins      []string
	BodyLimit        string
	Logger           zerolog.Logger
	// Registerer receives the HTTP metrics; nil means the default registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: d.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	if d.BodyLimit != "" {
		e.Use(echomiddleware.BodyLimit(d.BodyLimit))
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "barbershop",
		Registerer: d.Registerer,
	}))
	e.Use(middleware.Auth(d.Sessions))

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	if d.UploadsURLPrefix != "" && d.UploadsDir != "" {
		e.Static(d.UploadsURLPrefix, d.UploadsDir)
	}

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness: is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness: are dependencies up?

	// --- API ---
	admin := middleware.RequireAdmin()
	api := e.Group("/api")

	authHandler := handler.NewAuthHandler(d.Auth)
	api.POST("/admin/login", authHandler.Login)

	appointments := handler.NewAppointmentHandler(d.Appointments)
	api.GET("/appointments", appointments.List)
	api.POST("/appointments", appointments.Create)
	api.PATCH("/appointments/:id", appointments.Update, admin)
	api.DELETE("/appointments/:id", appointments.Delete, admin)
	api.GET("/availability", appointments.Availability)
	api.POST("/bookings", appointments.Book)

	catalog := handler.NewCatalogHandler(d.Catalog)
	api.GET("/services", catalog.List)
	api.POST("/services", catalog.Create, admin)
	api.PATCH("/services/:id", catalog.Update, admin)
	api.DELETE("/services/:id", catalog.Delete, admin)

	sms := handler.NewSMSHandler(d.SMS)
	api.POST("/sms", sms.Send, admin)

	return e
}

// requestLogger emits one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
