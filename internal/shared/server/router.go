package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skillsearch-backend/internal/process"
	"skillsearch-backend/internal/services/health"
	"skillsearch-backend/internal/shared/config"
	"skillsearch-backend/internal/shared/metrics"
	"skillsearch-backend/internal/shared/server/middleware"
	"skillsearch-backend/internal/shared/server/respond"
	"skillsearch-backend/internal/skills"
)

const rateLimitGroupProcess = "PROCESS"

// RouterDeps carries the handlers mounted by NewRouter.
type RouterDeps struct {
	Config         config.Config
	Health         *health.Service
	SkillsHandler  *skills.Handler
	ProcessHandler *process.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.MaxMultipartMemory = deps.Config.MaxUploadBytes + (1 << 20)

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}
	r.GET("/", func(c *gin.Context) {
		respond.OK(c, healthSvc.Status())
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	api.Use(middleware.RateLimit(middleware.RateLimitConfig{
		GroupFor: func(c *gin.Context) string {
			if c.FullPath() == "/api/process" {
				return rateLimitGroupProcess
			}
			return ""
		},
		Rules: map[string]middleware.RateLimitRule{
			"DEFAULT":             {Rate: deps.Config.RateLimitRPS, Burst: deps.Config.RateLimitBurst},
			rateLimitGroupProcess: {Rate: deps.Config.RateLimitRPS, Burst: deps.Config.RateLimitBurst},
		},
	}))
	if deps.SkillsHandler != nil {
		deps.SkillsHandler.RegisterRoutes(api)
	}
	if deps.ProcessHandler != nil {
		deps.ProcessHandler.RegisterRoutes(api)
	}

	r.NoRoute(notFound)
	r.NoMethod(notFound)
	return r
}

func notFound(c *gin.Context) {
	respond.Error(c, http.StatusNotFound, "NOT_FOUND", "Route not found", "")
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
