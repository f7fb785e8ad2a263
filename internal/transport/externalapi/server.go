// Package externalapi implements the LAN-bound "external" control plane:
// a bearer-token-authenticated REST surface an operator UI drives over
// the network. Router shape mirrors internalapi's, with security-header
// middleware added for the network-facing listener.
package externalapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"

	"github.com/ottoassistant/otto/internal/audit"
	"github.com/ottoassistant/otto/internal/health"
	"github.com/ottoassistant/otto/internal/httpmiddleware"
	"github.com/ottoassistant/otto/internal/modelcatalog"
	"github.com/ottoassistant/otto/internal/repository"
	"github.com/ottoassistant/otto/internal/restartctl"
	"github.com/ottoassistant/otto/internal/taskmutation"
)

// Deps bundles every collaborator the external plane's handlers need.
type Deps struct {
	Token     string
	Health    *health.Checker
	Runtime   restartctl.Runtime
	Profiles  repository.ProfileRepository
	Catalog   modelcatalog.Catalog // may be nil
	Jobs      repository.JobRepository
	Runs      repository.JobRunRepository
	Audit     *audit.Log
	Tasks     *taskmutation.Service
	Logger    *slog.Logger
	Version   string
	StartedAt time.Time
}

const controlPlaneActor = "control_plane"

// NewRouter builds the gin engine backing the external control plane.
func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestID("external"))
	r.Use(sloggin.New(deps.Logger))
	r.Use(httpmiddleware.Metrics("external"))
	r.Use(httpmiddleware.Security())

	h := &handlers{deps: deps}

	r.GET("/external/health", h.healthCheck)

	auth := r.Group("/external")
	auth.Use(httpmiddleware.BearerAuth(deps.Token))

	auth.GET("/system/status", h.systemStatus)
	auth.POST("/system/restart", h.systemRestart)

	auth.GET("/settings/notification-profile", h.getProfile)
	auth.PUT("/settings/notification-profile", h.putProfile)

	auth.GET("/models/catalog", h.modelsCatalog)
	auth.POST("/models/refresh", h.modelsRefresh)
	auth.GET("/models/defaults", h.modelsGetDefaults)
	auth.PUT("/models/defaults", h.modelsPutDefaults)

	auth.GET("/jobs", h.listJobs)
	auth.GET("/jobs/:id", h.getJob)
	auth.POST("/jobs", h.createJob)
	auth.PATCH("/jobs/:id", h.updateJob)
	auth.DELETE("/jobs/:id", h.deleteJob)
	auth.POST("/jobs/:id/run-now", h.runJobNow)
	auth.GET("/jobs/:id/audit", h.jobAudit)
	auth.GET("/jobs/:id/runs", h.jobRuns)
	auth.GET("/jobs/:id/runs/:runId", h.jobRun)

	return r
}

// NewServer wraps the router in an *http.Server bound to a LAN address.
func NewServer(addr string, router http.Handler) *http.Server {
	return &http.Server{Addr: addr, Handler: router}
}

type handlers struct {
	deps Deps
}

func (h *handlers) healthCheck(c *gin.Context) {
	result := h.deps.Health.Liveness(c.Request.Context())
	c.JSON(http.StatusOK, result)
}
