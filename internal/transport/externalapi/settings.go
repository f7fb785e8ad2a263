package externalapi

import (
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ottoassistant/otto/internal/domain"
)

var hhmmPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

func (h *handlers) getProfile(c *gin.Context) {
	profile, err := h.deps.Profiles.Get(c.Request.Context())
	if err != nil {
		h.deps.Logger.Error("load profile", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

type putProfileRequest struct {
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

type putProfileResponse struct {
	Profile *domain.UserProfile `json:"profile"`
	Changed []string            `json:"changed"`
}

// putProfile merge-writes the singleton profile, validating HH:MM time
// fields and heartbeat cadence bounds per field before any write.
func (h *handlers) putProfile(c *gin.Context) {
	var req putProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	var details []domain.FieldError
	checkTime := func(field string, v *string) {
		if v != nil && !hhmmPattern.MatchString(*v) {
			details = append(details, domain.FieldError{Field: field, Message: "must match HH:MM"})
		}
	}
	checkTime("quietHoursStart", req.QuietHoursStart)
	checkTime("quietHoursEnd", req.QuietHoursEnd)
	checkTime("heartbeatTime1", req.HeartbeatTime1)
	checkTime("heartbeatTime2", req.HeartbeatTime2)
	checkTime("heartbeatTime3", req.HeartbeatTime3)
	if req.HeartbeatCadenceMin != nil && (*req.HeartbeatCadenceMin < 30 || *req.HeartbeatCadenceMin > 1440) {
		details = append(details, domain.FieldError{Field: "heartbeatCadenceMinutes", Message: "must be between 30 and 1440"})
	}
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			details = append(details, domain.FieldError{Field: "timezone", Message: "must be a valid IANA timezone"})
		}
	}
	if len(details) > 0 {
		h.recordCommand(c, "settings.notification-profile.put", domain.CommandDenied, domain.NewValidationError(details...))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "request failed validation", "details": details})
		return
	}

	existing, err := h.deps.Profiles.Get(c.Request.Context())
	if err != nil {
		h.deps.Logger.Error("load profile", "error", err)
		h.recordCommand(c, "settings.notification-profile.put", domain.CommandFailed, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to load profile"})
		return
	}

	updated := *existing
	var changed []string
	setString := func(field string, dst *string, v *string) {
		if v != nil && *dst != *v {
			*dst = *v
			changed = append(changed, field)
		}
	}
	setString("timezone", &updated.Timezone, req.Timezone)
	setString("quietHoursStart", &updated.QuietHoursStart, req.QuietHoursStart)
	setString("quietHoursEnd", &updated.QuietHoursEnd, req.QuietHoursEnd)
	setString("heartbeatTime1", &updated.HeartbeatTime1, req.HeartbeatTime1)
	setString("heartbeatTime2", &updated.HeartbeatTime2, req.HeartbeatTime2)
	setString("heartbeatTime3", &updated.HeartbeatTime3, req.HeartbeatTime3)
	if req.QuietMode != nil && updated.QuietMode != domain.QuietMode(*req.QuietMode) {
		updated.QuietMode = domain.QuietMode(*req.QuietMode)
		changed = append(changed, "quietMode")
	}
	if req.MuteUntil != nil {
		updated.MuteUntil = req.MuteUntil
		changed = append(changed, "muteUntil")
	}
	if req.HeartbeatCadenceMin != nil && updated.HeartbeatCadenceMin != *req.HeartbeatCadenceMin {
		updated.HeartbeatCadenceMin = *req.HeartbeatCadenceMin
		changed = append(changed, "heartbeatCadenceMinutes")
	}
	if req.HeartbeatOnlyIfSignal != nil && updated.HeartbeatOnlyIfSignal != *req.HeartbeatOnlyIfSignal {
		updated.HeartbeatOnlyIfSignal = *req.HeartbeatOnlyIfSignal
		changed = append(changed, "heartbeatOnlyIfSignal")
	}
	updated.UpdatedAt = time.Now().UnixMilli()

	saved, err := h.deps.Profiles.Update(c.Request.Context(), &updated)
	if err != nil {
		h.deps.Logger.Error("update profile", "error", err)
		h.recordCommand(c, "settings.notification-profile.put", domain.CommandFailed, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to update profile"})
		return
	}

	h.recordCommand(c, "settings.notification-profile.put", domain.CommandSuccess, nil)
	c.JSON(http.StatusOK, putProfileResponse{Profile: saved, Changed: changed})
}
