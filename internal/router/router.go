package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/hospital-api/internal/handler/prometheus"
	"github.com/jwalitptl/hospital-api/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	Mode        string
	RateLimit   RateLimit
	CORS        middleware.CORSConfig
	Security    middleware.SecurityConfig
	MaxBodySize int64
}

type RateLimit struct {
	Enabled bool
	PerSec  float64
	Burst   int
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	metrics  *prometheus.Handler
	health   Handler
	handlers []Handler
}

// NewRouter installs the global middleware chain. Handlers are mounted by
// Setup, in the order given.
func NewRouter(
	logger zerolog.Logger,
	auth *middleware.AuthMiddleware,
	metrics *prometheus.Handler,
	health Handler,
	config Config,
	handlers ...Handler,
) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	engine := gin.New()
	engine.RedirectTrailingSlash = true

	r := &Router{
		engine:   engine,
		auth:     auth,
		metrics:  metrics,
		health:   health,
		handlers: handlers,
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		metrics.Middleware(),
		middleware.CORS(config.CORS),
		middleware.SecurityHeaders(config.Security),
		middleware.SizeLimit(config.MaxBodySize),
	)
	if config.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  rate.Limit(config.RateLimit.PerSec),
			Burst: config.RateLimit.Burst,
			Idle:  10 * time.Minute,
		})
		engine.Use(limiter.RateLimit())
	}
	engine.Use(middleware.ErrorHandler(logger))

	return r
}

func (r *Router) Setup() {
	root := &r.engine.RouterGroup

	// Ops endpoints stay outside session handling.
	r.health.RegisterRoutes(root)
	root.GET("/metrics", r.metrics.Handler())

	site := r.engine.Group("", r.auth.Authenticate())
	for _, h := range r.handlers {
		h.RegisterRoutes(site)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
