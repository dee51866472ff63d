package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alasharulary/alash/internal/adapters/http/handlers"
	"github.com/alasharulary/alash/internal/adapters/http/middleware"
	"github.com/alasharulary/alash/internal/platform/config"
	"github.com/alasharulary/alash/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default timeout for API requests.
const DefaultRequestTimeout = 5 * time.Second

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is the structured logger for request logging.
	Logger *slog.Logger

	// AppConfig contains application configuration.
	AppConfig *config.AppConfig

	// Session configures the visitor cookie.
	Session *config.SessionConfig

	// Sessions resolves and creates visitor sessions.
	Sessions middleware.SessionProvider

	HealthHandler  *handlers.HealthHandler
	CatalogHandler *handlers.CatalogHandler
	SessionHandler *handlers.SessionHandler
	PageHandler    *handlers.PageHandler

	// Timeout is the API request timeout. Zero disables it.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. Request ID - generate/extract request ID
//  3. Correlation ID - handle distributed tracing correlation
//  4. OpenTelemetry - tracing, then metrics
//  5. Logging - request logging (skips internal endpoints and assets)
//
// Route groups:
//   - /-/ (internal): probes, build info and metrics
//   - /static/: embedded assets
//   - /api/v1/ (JSON API): catalog reads and /session commands
//   - / (pages): server-rendered views and their form actions
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.TracingMiddleware(cfg.AppConfig.Name),
		telemetry.Middleware(),
		middleware.Logging(cfg.Logger),
	)

	engine.HandleMethodNotAllowed = true
	engine.NoRoute(notFound)
	engine.NoMethod(methodNotAllowed)

	engine.SetHTMLTemplate(handlers.Templates())
	engine.StaticFS("/static", handlers.StaticFS())

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutes(engine.Group("/-"))
	}

	sessionCfg, hasSessions := sessionConfig(cfg)

	apiV1 := engine.Group("/api/v1")
	if cfg.Timeout > 0 {
		apiV1.Use(middleware.Timeout(cfg.Timeout))
	}

	if cfg.CatalogHandler != nil {
		catalog := apiV1.Group("")
		if hasSessions {
			catalog.Use(middleware.AttachSession(sessionCfg))
		}
		cfg.CatalogHandler.RegisterRoutes(catalog)
	}

	if !hasSessions {
		return
	}

	withSession := middleware.Session(sessionCfg)

	if cfg.SessionHandler != nil {
		cfg.SessionHandler.RegisterRoutes(apiV1.Group("/session", withSession))
	}

	if cfg.PageHandler != nil {
		cfg.PageHandler.RegisterRoutes(engine.Group("", withSession))
	}
}

// sessionConfig reports false when no session store is configured; the
// session routes are then left out.
func sessionConfig(cfg RouterConfig) (middleware.SessionConfig, bool) {
	if cfg.Sessions == nil || cfg.Session == nil {
		return middleware.SessionConfig{}, false
	}

	return middleware.SessionConfig{
		Store:  cfg.Sessions,
		Cookie: cfg.Session.Cookie,
		MaxAge: cfg.Session.TTL,
		Secure: cfg.Session.Secure,
	}, true
}
