// Package internalapi implements the loopback "internal" control plane:
// a bearer-token-authenticated HTTP surface in-process tool plugins
// call to queue outbound messages and mutate tasks. Router shape uses
// gin with a RequestID + Recovery + slog-gin + Metrics middleware
// chain, authenticated with a single static bearer token.
package internalapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"

	"github.com/ottoassistant/otto/internal/audit"
	"github.com/ottoassistant/otto/internal/httpmiddleware"
	"github.com/ottoassistant/otto/internal/repository"
	"github.com/ottoassistant/otto/internal/taskmutation"
)

// Deps bundles every collaborator the internal plane's handlers need.
type Deps struct {
	Token           string
	Outbound        repository.OutboundRepository
	Sessions        repository.SessionBindingRepository
	Jobs            repository.JobRepository
	Runs            repository.JobRunRepository
	Profiles        repository.ProfileRepository
	Tasks           *taskmutation.Service
	Audit           *audit.Log
	Logger          *slog.Logger
}

// NewRouter builds the gin engine backing the internal control plane.
func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestID("internal"))
	r.Use(sloggin.New(deps.Logger))
	r.Use(httpmiddleware.Metrics("internal"))
	r.Use(httpmiddleware.BearerAuth(deps.Token))

	h := &handlers{deps: deps}

	tools := r.Group("/internal/tools")
	tools.POST("/queue-telegram-message", h.queueTelegramMessage)
	tools.POST("/tasks/create", h.tasksCreate)
	tools.POST("/tasks/update", h.tasksUpdate)
	tools.POST("/tasks/delete", h.tasksDelete)
	tools.POST("/tasks/list", h.tasksList)
	tools.POST("/notification-profile/set", h.notificationProfileSet)
	tools.POST("/background-jobs/show", h.backgroundJobsShow)

	return r
}

// NewServer wraps the router in an *http.Server. Callers should bind it
// to a loopback address only.
func NewServer(addr string, router http.Handler) *http.Server {
	return &http.Server{Addr: addr, Handler: router}
}

type handlers struct {
	deps Deps
}
