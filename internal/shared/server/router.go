package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tire-backend/internal/analyses"
	"tire-backend/internal/photos"
	"tire-backend/internal/services/health"
	"tire-backend/internal/shared/config"
	"tire-backend/internal/shared/metrics"
	"tire-backend/internal/shared/server/middleware"
)

const (
	defaultRateLimitRPS   = 5
	defaultRateLimitBurst = 30
)

// Deps are the handlers the router mounts. Nil handlers are skipped.
type Deps struct {
	Config   config.Config
	Analyses *analyses.Handler
	Photos   *photos.Handler
	Health   *health.Service
	Limiter  *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Identity(),
		middleware.RateLimit(rateLimitConfig(deps)),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	registerMeRoutes(api)
	if deps.Health != nil {
		deps.Health.RegisterRoutes(api)
	}
	if deps.Photos != nil {
		deps.Photos.RegisterRoutes(api)
	}
	if deps.Analyses != nil {
		deps.Analyses.RegisterRoutes(api)
	}
	return r
}

func rateLimitConfig(deps Deps) middleware.RateLimitConfig {
	analyze := middleware.RateLimitRule{Rate: deps.Config.RateLimitAnalyzeRPS, Burst: deps.Config.RateLimitAnalyzeBurst}
	rules := map[string]middleware.RateLimitRule{
		middleware.GroupDefault: {Rate: defaultRateLimitRPS, Burst: defaultRateLimitBurst},
	}
	if analyze.Rate > 0 && analyze.Burst > 0 {
		rules[middleware.GroupAnalyze] = analyze
	}
	return middleware.RateLimitConfig{
		Rules:        rules,
		DefaultGroup: middleware.GroupDefault,
		GroupFor:     rateLimitGroup,
		Limiter:      deps.Limiter,
	}
}

func rateLimitGroup(c *gin.Context) string {
	if c.Request.Method == http.MethodPost && strings.HasSuffix(c.Request.URL.Path, "/analyze") {
		return middleware.GroupAnalyze
	}
	return middleware.GroupDefault
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
