package internalapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ottoassistant/otto/internal/domain"
)

type notificationProfileSetRequest struct {
	Timezone              *string `json:"timezone"`
	QuietHoursStart       *string `json:"quietHoursStart"`
	QuietHoursEnd         *string `json:"quietHoursEnd"`
	QuietMode             *string `json:"quietMode" binding:"omitempty,oneof=critical_only off"`
	MuteUntil             *int64  `json:"muteUntil"`
	HeartbeatTime1        *string `json:"heartbeatTime1"`
	HeartbeatTime2        *string `json:"heartbeatTime2"`
	HeartbeatTime3        *string `json:"heartbeatTime3"`
	HeartbeatCadenceMin   *int    `json:"heartbeatCadenceMinutes"`
	HeartbeatOnlyIfSignal *bool   `json:"heartbeatOnlyIfSignal"`
}

// notificationProfileSet reads the singleton profile, merges only
// submitted fields, and writes it back.
func (h *handlers) notificationProfileSet(c *gin.Context) {
	var req notificationProfileSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	existing, err := h.deps.Profiles.Get(c.Request.Context())
	if err != nil {
		h.deps.Logger.Error("load profile", "error", err)
		h.recordCommand(c, "notification-profile.set", domain.CommandFailed, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to load profile"})
		return
	}

	updated := *existing
	if req.Timezone != nil {
		updated.Timezone = *req.Timezone
	}
	if req.QuietHoursStart != nil {
		updated.QuietHoursStart = *req.QuietHoursStart
	}
	if req.QuietHoursEnd != nil {
		updated.QuietHoursEnd = *req.QuietHoursEnd
	}
	if req.QuietMode != nil {
		updated.QuietMode = domain.QuietMode(*req.QuietMode)
	}
	if req.MuteUntil != nil {
		updated.MuteUntil = req.MuteUntil
	}
	if req.HeartbeatTime1 != nil {
		updated.HeartbeatTime1 = *req.HeartbeatTime1
	}
	if req.HeartbeatTime2 != nil {
		updated.HeartbeatTime2 = *req.HeartbeatTime2
	}
	if req.HeartbeatTime3 != nil {
		updated.HeartbeatTime3 = *req.HeartbeatTime3
	}
	if req.HeartbeatCadenceMin != nil {
		updated.HeartbeatCadenceMin = *req.HeartbeatCadenceMin
	}
	if req.HeartbeatOnlyIfSignal != nil {
		updated.HeartbeatOnlyIfSignal = *req.HeartbeatOnlyIfSignal
	}
	updated.UpdatedAt = time.Now().UnixMilli()

	saved, err := h.deps.Profiles.Update(c.Request.Context(), &updated)
	if err != nil {
		h.deps.Logger.Error("update profile", "error", err)
		h.recordCommand(c, "notification-profile.set", domain.CommandFailed, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to update profile"})
		return
	}

	h.recordCommand(c, "notification-profile.set", domain.CommandSuccess, nil)
	c.JSON(http.StatusOK, saved)
}
