package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/geocoder89/coursehub/internal/config"
	"github.com/geocoder89/coursehub/internal/http/handlers"
	"github.com/geocoder89/coursehub/internal/http/middlewares"
	"github.com/geocoder89/coursehub/internal/observability"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps are the collaborators the router needs. Metrics and MetricsHandler may
// be nil, in which case no metrics are collected or exposed.
type Deps struct {
	Users          handlers.UserStore
	Courses        handlers.CourseStore
	Ping           func(ctx context.Context) error
	Metrics        *observability.Prom
	MetricsHandler http.Handler
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.OTELServiceName))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	if cfg.MaxBodyBytes > 0 {
		r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	}

	// health
	h := handlers.NewHealthHandler(deps.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	r.GET("/", handlers.Welcome)
	r.NoRoute(handlers.RouteNotFound)

	// wire up auth and handlers
	auth := middlewares.NewBasicAuth(middlewares.NewCredentialVerifier(deps.Users), cfg.DBTimeout)
	usersHandler := handlers.NewUsersHandler(deps.Users, cfg.DBTimeout)
	coursesHandler := handlers.NewCoursesHandler(deps.Courses, cfg.DBTimeout)

	// anonymous traffic is limited per IP, authenticated traffic per user
	ipLimiter := middlewares.NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow)
	userLimiter := middlewares.NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow)

	api := r.Group("/api")
	api.Use(ipLimiter.RateLimiterMiddleware(middlewares.KeyByIP))

	api.POST("/users", handlers.Handle(log, usersHandler.Create))
	api.GET("/courses", handlers.Handle(log, coursesHandler.List))
	api.GET("/courses/:id", handlers.Handle(log, coursesHandler.GetByID))

	authed := api.Group("")
	authed.Use(auth.RequireAuth(), userLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP))

	authed.GET("/users", handlers.Handle(log, usersHandler.Me))
	authed.POST("/courses", handlers.Handle(log, coursesHandler.Create))
	authed.PUT("/courses/:id", handlers.Handle(log, coursesHandler.Update))
	authed.DELETE("/courses/:id", handlers.Handle(log, coursesHandler.Delete))

	return r
}
