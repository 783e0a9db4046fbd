// Package http wires the gin router and HTTP server for the maintenance API.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/Mattsantos541/ArcTecFox-Mono/internal/infrastructure/auth/identity"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/infrastructure/monitoring/logging"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/infrastructure/monitoring/prometheus"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/interfaces/http/handlers"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/interfaces/http/middleware"
)

// RouterDeps carries everything the router needs.
type RouterDeps struct {
	Mode     string // gin mode: "debug" | "release" | "test"
	Logger   logging.Logger
	Metrics  *prometheus.Metrics
	Verifier identity.Verifier
	Signoffs *handlers.SignoffHandler
	Health   *handlers.HealthHandler
}

// NewRouter assembles the full route table.
//
//	GET  /healthz                        liveness
//	GET  /readyz                         readiness incl. dependencies
//	GET  /metrics                        Prometheus exposition
//	POST /api/v1/plans/:planID/signoffs  seed initial signoffs   (auth)
//	PUT  /api/v1/tasks/:taskID/due-date  move the open signoff   (auth)
//	POST /api/v1/tasks/:taskID/complete  complete and advance    (auth)
//	GET  /api/v1/signoffs/pending        pending dashboard view  (auth)
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(ginMode(deps.Mode))

	r := gin.New()
	r.Use(
		middleware.Recovery(deps.Logger),
		middleware.RequestLogger(deps.Logger, deps.Metrics),
		middleware.CORS(),
	)
	r.NoRoute(handlers.NoRoute(deps.Logger))

	r.GET("/healthz", deps.Health.Live)
	r.GET("/readyz", deps.Health.Ready)
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	api := r.Group("/api/v1", middleware.Auth(deps.Verifier, deps.Logger))
	{
		api.POST("/plans/:planID/signoffs", deps.Signoffs.Seed)
		api.PUT("/tasks/:taskID/due-date", deps.Signoffs.UpdateDueDate)
		api.POST("/tasks/:taskID/complete", deps.Signoffs.Complete)
		api.GET("/signoffs/pending", deps.Signoffs.ListPending)
	}

	return r
}

func ginMode(mode string) string {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return mode
	default:
		return gin.ReleaseMode
	}
}
