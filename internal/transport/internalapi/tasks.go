package internalapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ottoassistant/otto/internal/apierror"
	"github.com/ottoassistant/otto/internal/domain"
	"github.com/ottoassistant/otto/internal/repository"
	"github.com/ottoassistant/otto/internal/taskmutation"
)

const interactiveActor = "internal_tool"

type createTaskRequest struct {
	Type           string  `json:"type" binding:"required"`
	ScheduleType   string  `json:"scheduleType" binding:"required,oneof=recurring oneshot"`
	ProfileID      *string `json:"profileId"`
	ModelRef       *string `json:"modelRef"`
	Payload        *string `json:"payload"`
	RunAt          *int64  `json:"runAt"`
	CadenceMinutes *int    `json:"cadenceMinutes"`
}

type updateTaskRequest struct {
	ID             string  `json:"id" binding:"required"`
	ScheduleType   *string `json:"scheduleType"`
	ProfileID      *string `json:"profileId"`
	ModelRef       *string `json:"modelRef"`
	Payload        *string `json:"payload"`
	RunAt          *int64  `json:"runAt"`
	CadenceMinutes *int    `json:"cadenceMinutes"`
	Status         *string `json:"status"`
}

type deleteTaskRequest struct {
	ID     string `json:"id" binding:"required"`
	Reason string `json:"reason"`
}

type listTasksRequest struct {
	Type       string `json:"type"`
	Status     string `json:"status"`
	OnlyActive bool   `json:"onlyActive"`
}

type taskMutationResponse struct {
	Outcome      string  `json:"outcome"`
	Job          any     `json:"job,omitempty"`
	ScheduledFor *int64  `json:"scheduledFor,omitempty"`
}

func (h *handlers) tasksCreate(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	result, err := h.deps.Tasks.CreateTask(c.Request.Context(), taskmutation.CreateInput{
		Type:           req.Type,
		ScheduleType:   domain.ScheduleType(req.ScheduleType),
		ProfileID:      req.ProfileID,
		ModelRef:       req.ModelRef,
		Payload:        req.Payload,
		RunAt:          req.RunAt,
		CadenceMinutes: req.CadenceMinutes,
	}, domain.LaneInteractive, interactiveActor)
	h.respondMutation(c, "tasks.create", result, err)
}

func (h *handlers) tasksUpdate(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	in := taskmutation.UpdateInput{
		ProfileID:      req.ProfileID,
		ModelRef:       req.ModelRef,
		Payload:        req.Payload,
		RunAt:          req.RunAt,
		CadenceMinutes: req.CadenceMinutes,
	}
	if req.ScheduleType != nil {
		st := domain.ScheduleType(*req.ScheduleType)
		in.ScheduleType = &st
	}
	if req.Status != nil {
		st := domain.JobStatus(*req.Status)
		in.Status = &st
	}

	result, err := h.deps.Tasks.UpdateTask(c.Request.Context(), req.ID, in, domain.LaneInteractive, interactiveActor)
	h.respondMutation(c, "tasks.update", result, err)
}

func (h *handlers) tasksDelete(c *gin.Context) {
	var req deleteTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	result, err := h.deps.Tasks.DeleteTask(c.Request.Context(), req.ID, req.Reason, domain.LaneInteractive, interactiveActor)
	h.respondMutation(c, "tasks.delete", result, err)
}

func (h *handlers) tasksList(c *gin.Context) {
	var req listTasksRequest
	_ = c.ShouldBindJSON(&req)

	jobs, err := h.deps.Jobs.List(c.Request.Context(), repository.ListJobsFilter{
		Type:       req.Type,
		Status:     domain.JobStatus(req.Status),
		OnlyActive: req.OnlyActive,
	})
	if err != nil {
		h.deps.Logger.Error("list tasks", "error", err)
		h.recordCommand(c, "tasks.list", domain.CommandFailed, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to list tasks"})
		return
	}

	items := make([]jobListItem, len(jobs))
	for i, j := range jobs {
		items[i] = toJobListItem(j)
	}
	h.recordCommand(c, "tasks.list", domain.CommandSuccess, nil)
	c.JSON(http.StatusOK, gin.H{"tasks": items})
}

func (h *handlers) respondMutation(c *gin.Context, command string, result *taskmutation.Result, err error) {
	if err != nil {
		status := domain.CommandFailed
		if isForbidden(err) {
			status = domain.CommandDenied
		}
		h.recordCommand(c, command, status, err)
		apierror.Write(c, err)
		return
	}
	h.recordCommand(c, command, domain.CommandSuccess, nil)

	resp := taskMutationResponse{Outcome: result.Outcome, ScheduledFor: result.ScheduledFor}
	if result.Job != nil {
		item := toJobListItem(result.Job)
		resp.Job = item
	}
	c.JSON(http.StatusOK, resp)
}
