package externalapi

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ottoassistant/otto/internal/domain"
)

func (h *handlers) recordCommand(c *gin.Context, command string, status domain.CommandStatus, cmdErr error) {
	var errMsg *string
	if cmdErr != nil {
		msg := cmdErr.Error()
		errMsg = &msg
	}
	if err := h.deps.Audit.RecordCommand(c.Request.Context(), command, domain.LaneOperatorAPI, status, errMsg, nil); err != nil {
		h.deps.Logger.Error("record command audit", "command", command, "error", err)
	}
}

func isForbidden(err error) bool {
	return errors.Is(err, domain.ErrForbiddenMutation) || errors.Is(err, domain.ErrUnauthorized)
}

// jobProjection is the job list/detail wire shape for external callers:
// lock and payload fields are never exposed outside the process.
type jobProjection struct {
	ID             string                `json:"id"`
	Type           string                `json:"type"`
	ScheduleType   domain.ScheduleType   `json:"scheduleType"`
	ProfileID      *string               `json:"profileId"`
	ModelRef       *string               `json:"modelRef"`
	Status         domain.JobStatus      `json:"status"`
	RunAt          *int64                `json:"runAt"`
	CadenceMinutes *int                  `json:"cadenceMinutes"`
	NextRunAt      *int64                `json:"nextRunAt"`
	TerminalState  *domain.TerminalState `json:"terminalState"`
	TerminalReason *string               `json:"terminalReason"`
	UpdatedAt      int64                 `json:"updatedAt"`
	ManagedBy      domain.ManagedBy      `json:"managedBy"`
	IsMutable      bool                  `json:"isMutable"`
}

func toJobProjection(j *domain.Job) jobProjection {
	return jobProjection{
		ID:             j.ID,
		Type:           j.Type,
		ScheduleType:   j.ScheduleType,
		ProfileID:      j.ProfileID,
		ModelRef:       j.ModelRef,
		Status:         j.Status,
		RunAt:          j.RunAt,
		CadenceMinutes: j.CadenceMinutes,
		NextRunAt:      j.NextRunAt,
		TerminalState:  j.TerminalState,
		TerminalReason: j.TerminalReason,
		UpdatedAt:      j.UpdatedAt,
		ManagedBy:      j.ManagedBy,
		IsMutable:      j.IsMutable(),
	}
}
