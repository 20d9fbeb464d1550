// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mudi-match-api/internal/config"
	"mudi-match-api/internal/interfaces/http/handler"
	"mudi-match-api/internal/interfaces/http/middleware"
)

// Handlers 路由用到的全部处理器
type Handlers struct {
	Health         *handler.HealthHandler
	Recommendation *handler.RecommendationHandler
	Feed           *handler.FeedHandler
	Saved          *handler.SavedHandler
	Watched        *handler.WatchedHandler
	Mood           *handler.MoodHandler
}

// Options 中间件依赖，均可为 nil
type Options struct {
	Verifier    middleware.TokenVerifier
	RateLimiter middleware.RateLimiter
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers Handlers
	opts     Options
}

// New 创建路由器
func New(cfg *config.Config, handlers Handlers, opts Options) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:   gin.New(),
		cfg:      cfg,
		handlers: handlers,
		opts:     opts,
	}
	r.setupMiddleware()
	r.setupRoutes()
	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics(r.metricsPath()))
	}
}

func (r *Router) metricsPath() string {
	if p := r.cfg.Observability.Metrics.Path; p != "" {
		return p
	}
	return "/metrics"
}

func (r *Router) setupRoutes() {
	if h := r.handlers.Health; h != nil {
		r.engine.GET("/health", h.Health)
		r.engine.GET("/ready", h.Ready)
		r.engine.GET("/live", h.Live)
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.metricsPath(), gin.WrapH(promhttp.Handler()))
	}

	v1 := r.engine.Group("/v1")
	if r.handlers.Mood != nil {
		v1.GET("/moods", r.handlers.Mood.List)
	}

	var verifier middleware.TokenVerifier
	if r.cfg.Security.JWT.Enabled {
		verifier = r.opts.Verifier
	}
	authed := v1.Group("")
	authed.Use(middleware.Identity(middleware.IdentityConfig{Verifier: verifier}))
	authed.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:           r.cfg.Security.RateLimit.Enabled,
		RequestsPerWindow: r.cfg.Security.RateLimit.RequestsPerWindow,
		Window:            r.cfg.Security.RateLimit.Window,
	}, r.opts.RateLimiter))

	RegisterV1Routes(authed, r.handlers)
}
