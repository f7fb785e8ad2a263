package internalapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ottoassistant/otto/internal/domain"
)

type backgroundJobsShowRequest struct {
	ID        string `json:"id" binding:"required"`
	RunsLimit int    `json:"runsLimit"`
}

type backgroundJobsShowResponse struct {
	Job  jobListItem      `json:"job"`
	Runs []*domain.JobRun `json:"runs"`
}

// backgroundJobsShow reports a job's current state plus its recent run
// history, for an assistant tool asking "what's going on with X".
func (h *handlers) backgroundJobsShow(c *gin.Context) {
	var req backgroundJobsShowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	limit := req.RunsLimit
	if limit <= 0 {
		limit = 10
	}

	job, err := h.deps.Jobs.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		h.recordCommand(c, "background-jobs.show", domain.CommandFailed, err)
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": err.Error()})
			return
		}
		h.deps.Logger.Error("load job", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to load job"})
		return
	}

	runs, err := h.deps.Runs.ListByJobID(c.Request.Context(), req.ID, limit, 0)
	if err != nil {
		h.deps.Logger.Error("list job runs", "error", err)
		h.recordCommand(c, "background-jobs.show", domain.CommandFailed, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to load run history"})
		return
	}

	h.recordCommand(c, "background-jobs.show", domain.CommandSuccess, nil)
	c.JSON(http.StatusOK, backgroundJobsShowResponse{Job: toJobListItem(job), Runs: runs})
}
