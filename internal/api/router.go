package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/kontakty/contacts-api/internal/api/handler"
	"github.com/kontakty/contacts-api/internal/api/middleware"
	"github.com/kontakty/contacts-api/internal/core/domain"
	"github.com/kontakty/contacts-api/internal/core/ports"
)

// Dependencies are the services and probes the HTTP surface is built from.
type Dependencies struct {
	Log        zerolog.Logger
	Accounts   ports.AccountService
	Contacts   ports.ContactService
	Categories ports.CategoryService
	Tokens     middleware.TokenParser
	Readiness  map[string]handler.Pinger

	CORSAllowedOrigins []string
	// Registry receives the HTTP metrics. Nil means the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:  deps.CORSAllowedOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderAuthorization, echo.HeaderContentType},
		ExposeHeaders: []string{echo.HeaderLocation, "Retry-After"},
	}))
	e.Use(echomiddleware.BodyLimit("1M"))
	e.Use(metricsMiddleware(deps.Registry))

	// --- Dependencies ---
	accountHandler := handler.NewAccountHandler(deps.Accounts)
	contactHandler := handler.NewContactHandler(deps.Contacts)
	categoryHandler := handler.NewCategoryHandler(deps.Categories)
	authMiddleware := middleware.Auth(deps.Tokens)
	writers := middleware.RBAC(domain.RoleAdministrator, domain.RoleUser)

	api := e.Group("/api")

	// --- Account routes ---
	api.POST("/account/login", accountHandler.Login)
	api.POST("/account/register", accountHandler.Register)

	// --- Contact routes (reads are anonymous) ---
	contacts := api.Group("/contact")
	contacts.GET("", contactHandler.List)
	contacts.GET("/search", contactHandler.Search)
	contacts.GET("/:id", contactHandler.Get)
	contacts.POST("", contactHandler.Create, authMiddleware, writers)
	contacts.PUT("/:id", contactHandler.Update, authMiddleware, writers)
	contacts.DELETE("/:id", contactHandler.Delete, authMiddleware, writers)

	api.GET("/category", categoryHandler.List)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Readiness)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", metricsHandler(deps.Registry))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func metricsMiddleware(reg *prometheus.Registry) echo.MiddlewareFunc {
	cfg := echoprometheus.MiddlewareConfig{
		Namespace: "kontakty",
		Subsystem: "http",
		Skipper: func(c echo.Context) bool {
			switch c.Path() {
			case "/metrics", "/health", "/health/ready", "/swagger/*":
				return true
			}
			return false
		},
	}
	if reg != nil {
		cfg.Registerer = reg
	}
	return echoprometheus.NewMiddlewareWithConfig(cfg)
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
}

// requestLogger writes one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= http.StatusInternalServerError {
				evt = log.Error()
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
