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

	_ "github.com/wisdombase/wisdombase-api/docs"
	"github.com/wisdombase/wisdombase-api/internal/api/handler"
	"github.com/wisdombase/wisdombase-api/internal/api/middleware"
	"github.com/wisdombase/wisdombase-api/internal/core/domain"
	"github.com/wisdombase/wisdombase-api/internal/core/ports"
)

// RouterConfig holds the HTTP-facing settings.
type RouterConfig struct {
	AppName     string
	AppVersion  string
	APIPrefix   string
	CORSOrigins []string
}

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Guard     middleware.Authenticator
	Auth      ports.AuthService
	Users     ports.UserService
	Logs      ports.OperationLogService
	Documents ports.DocumentService

	// Readiness lists the dependencies checked by /health/ready.
	Readiness map[string]handler.Pinger
	// Registerer receives the HTTP metrics. Defaults to prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
	// Gatherer backs /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig, deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	registerer := deps.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderXRequestID},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "wisdombase",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Health probes, docs and metrics (no auth required) ---
	docsURL := "/swagger/index.html"
	health := handler.NewHealthHandler(handler.AppInfo{Name: cfg.AppName, Version: cfg.AppVersion, DocsURL: docsURL})
	readiness := handler.NewReadinessHandler(deps.Readiness)

	e.GET("/", health.Root)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", readiness.Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group(cfg.APIPrefix)
	authn := middleware.Auth(deps.Guard)

	// --- Auth ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh-token", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout, authn)
	api.GET("/auth/me", authHandler.Me, authn)

	// --- Users (admin) ---
	userHandler := handler.NewUserHandler(deps.Users)
	users := api.Group("/users", authn, middleware.RequireRole(domain.RoleAdmin))
	users.GET("", userHandler.List)
	users.POST("", userHandler.Create)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)
	users.PUT("/:id/status", userHandler.ToggleStatus)

	// --- Operation logs (admin) ---
	logHandler := handler.NewOperationLogHandler(deps.Logs)
	logs := api.Group("/logs", authn, middleware.RequireRole(domain.RoleAdmin))
	logs.GET("", logHandler.List)
	logs.DELETE("", logHandler.DeleteBatch)
	logs.GET("/user/:user_id", logHandler.ListByUser)
	logs.GET("/:id", logHandler.Get)
	logs.DELETE("/:id", logHandler.Delete)

	// --- Documents (permission gated) ---
	docHandler := handler.NewDocumentHandler(deps.Documents)
	docs := api.Group("/documents", authn)
	docs.GET("", docHandler.List, middleware.RequirePermission(domain.PermDocumentRead))
	docs.POST("", docHandler.Create, middleware.RequirePermission(domain.PermDocumentCreate))
	docs.GET("/:id", docHandler.Get, middleware.RequirePermission(domain.PermDocumentRead))
	docs.PUT("/:id", docHandler.Update, middleware.RequirePermission(domain.PermDocumentUpdate))
	docs.DELETE("/:id", docHandler.Delete, middleware.RequirePermission(domain.PermDocumentDelete))

	// --- Frontend routes ---
	api.GET("/routes/async", handler.AsyncRoutes, authn)

	return e
}

// requestLogger emits one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= http.StatusInternalServerError {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

