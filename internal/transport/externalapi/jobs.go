package externalapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ottoassistant/otto/internal/apierror"
	"github.com/ottoassistant/otto/internal/domain"
	"github.com/ottoassistant/otto/internal/repository"
	"github.com/ottoassistant/otto/internal/taskmutation"
)

func (h *handlers) listJobs(c *gin.Context) {
	filter := repository.ListJobsFilter{
		Type:   c.Query("type"),
		Status: domain.JobStatus(c.Query("status")),
	}
	jobs, err := h.deps.Jobs.List(c.Request.Context(), filter)
	if err != nil {
		h.deps.Logger.Error("list jobs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to list jobs"})
		return
	}
	items := make([]jobProjection, len(jobs))
	for i, j := range jobs {
		items[i] = toJobProjection(j)
	}
	c.JSON(http.StatusOK, gin.H{"jobs": items})
}

func (h *handlers) getJob(c *gin.Context) {
	job, err := h.deps.Jobs.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": err.Error()})
			return
		}
		h.deps.Logger.Error("get job", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to load job"})
		return
	}
	c.JSON(http.StatusOK, toJobProjection(job))
}

type createJobRequest struct {
	Type           string  `json:"type" binding:"required"`
	ScheduleType   string  `json:"scheduleType" binding:"required,oneof=recurring oneshot"`
	ProfileID      *string `json:"profileId"`
	ModelRef       *string `json:"modelRef"`
	Payload        *string `json:"payload"`
	RunAt          *int64  `json:"runAt"`
	CadenceMinutes *int    `json:"cadenceMinutes"`
}

func (h *handlers) createJob(c *gin.Context) {
	var req createJobRequest
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
	}, domain.LaneOperatorAPI, controlPlaneActor)
	h.respondJobMutation(c, "jobs.create", http.StatusCreated, result, err)
}

type updateJobRequest struct {
	ScheduleType   *string `json:"scheduleType"`
	ProfileID      *string `json:"profileId"`
	ModelRef       *string `json:"modelRef"`
	Payload        *string `json:"payload"`
	RunAt          *int64  `json:"runAt"`
	CadenceMinutes *int    `json:"cadenceMinutes"`
	Status         *string `json:"status"`
}

func (h *handlers) updateJob(c *gin.Context) {
	var req updateJobRequest
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

	result, err := h.deps.Tasks.UpdateTask(c.Request.Context(), c.Param("id"), in, domain.LaneOperatorAPI, controlPlaneActor)
	h.respondJobMutation(c, "jobs.update", http.StatusOK, result, err)
}

func (h *handlers) deleteJob(c *gin.Context) {
	result, err := h.deps.Tasks.DeleteTask(c.Request.Context(), c.Param("id"), c.Query("reason"), domain.LaneOperatorAPI, controlPlaneActor)
	h.respondJobMutation(c, "jobs.delete", http.StatusOK, result, err)
}

func (h *handlers) runJobNow(c *gin.Context) {
	result, err := h.deps.Tasks.RunTaskNow(c.Request.Context(), c.Param("id"), domain.LaneOperatorAPI, controlPlaneActor)
	h.respondJobMutation(c, "jobs.run-now", http.StatusOK, result, err)
}

func (h *handlers) respondJobMutation(c *gin.Context, command string, okStatus int, result *taskmutation.Result, err error) {
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

	resp := gin.H{"outcome": result.Outcome, "scheduledFor": result.ScheduledFor}
	if result.Job != nil {
		resp["job"] = toJobProjection(result.Job)
	}
	c.JSON(okStatus, resp)
}

func (h *handlers) jobAudit(c *gin.Context) {
	limit := parseLimit(c.Query("limit"), 50)
	entries, err := h.deps.Audit.ListForTask(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		h.deps.Logger.Error("list job audit", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to load audit history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"audit": entries})
}

func (h *handlers) jobRuns(c *gin.Context) {
	id := c.Param("id")
	limit := parseLimit(c.Query("limit"), 20)
	offset := parseOffset(c.Query("offset"))

	runs, err := h.deps.Runs.ListByJobID(c.Request.Context(), id, limit, offset)
	if err != nil {
		h.deps.Logger.Error("list job runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to load run history"})
		return
	}
	total, err := h.deps.Runs.CountByJobID(c.Request.Context(), id)
	if err != nil {
		h.deps.Logger.Error("count job runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to load run history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "total": total})
}

func (h *handlers) jobRun(c *gin.Context) {
	run, err := h.deps.Runs.GetByID(c.Request.Context(), c.Param("runId"))
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": err.Error()})
			return
		}
		h.deps.Logger.Error("get job run", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to load run"})
		return
	}
	if run.JobID != c.Param("id") {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "run not found for this job"})
		return
	}
	c.JSON(http.StatusOK, run)
}

func parseLimit(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func parseOffset(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
