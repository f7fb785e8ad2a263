package externalapi

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ottoassistant/otto/internal/domain"
)

type serviceStatus struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type runtimeInfo struct {
	Version   string `json:"version"`
	PID       int    `json:"pid"`
	StartedAt int64  `json:"startedAt"`
	UptimeSec int64  `json:"uptimeSec"`
}

type systemStatusResponse struct {
	Status    string          `json:"status"`
	CheckedAt int64           `json:"checkedAt"`
	Runtime   runtimeInfo     `json:"runtime"`
	Services  []serviceStatus `json:"services"`
}

func (h *handlers) systemStatus(c *gin.Context) {
	readiness := h.deps.Health.Readiness(c.Request.Context())

	services := make([]serviceStatus, 0, len(readiness.Checks)+1)
	overall := "ok"
	for name, check := range readiness.Checks {
		status := "ok"
		if check.Status != "up" {
			status = "degraded"
			overall = "degraded"
		}
		services = append(services, serviceStatus{ID: name, Label: name, Status: status, Message: check.Error})
	}

	catalogStatus := "ok"
	catalogMessage := ""
	if h.deps.Catalog == nil {
		catalogStatus = "disabled"
		catalogMessage = "no model catalog collaborator configured"
	}
	services = append(services, serviceStatus{ID: "model_catalog", Label: "model catalog", Status: catalogStatus, Message: catalogMessage})
	if catalogStatus == "degraded" {
		overall = "degraded"
	}

	now := time.Now()
	resp := systemStatusResponse{
		Status:    overall,
		CheckedAt: now.UnixMilli(),
		Runtime: runtimeInfo{
			Version:   h.deps.Version,
			PID:       os.Getpid(),
			StartedAt: h.deps.StartedAt.UnixMilli(),
			UptimeSec: int64(now.Sub(h.deps.StartedAt).Seconds()),
		},
		Services: services,
	}
	c.JSON(http.StatusOK, resp)
}

type systemRestartResponse struct {
	Status      string `json:"status"`
	RequestedAt int64  `json:"requestedAt"`
	Message     string `json:"message"`
}

func (h *handlers) systemRestart(c *gin.Context) {
	now := time.Now().UnixMilli()
	err := h.deps.Runtime.Restart(c.Request.Context())
	if err != nil {
		h.deps.Logger.Error("restart runtime", "error", err)
		h.recordCommand(c, "system.restart", domain.CommandFailed, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to initiate restart"})
		return
	}

	h.recordCommand(c, "system.restart", domain.CommandSuccess, nil)
	c.JSON(http.StatusAccepted, systemRestartResponse{
		Status:      "accepted",
		RequestedAt: now,
		Message:     "restart requested",
	})
}
