package externalapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ottoassistant/otto/internal/domain"
	"github.com/ottoassistant/otto/internal/modelcatalog"
)

func (h *handlers) catalogUnavailable(c *gin.Context) bool {
	if h.deps.Catalog != nil {
		return false
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service_unavailable", "message": "no model catalog collaborator configured"})
	return true
}

func (h *handlers) modelsCatalog(c *gin.Context) {
	if h.catalogUnavailable(c) {
		return
	}
	models, err := h.deps.Catalog.List(c.Request.Context())
	if err != nil {
		h.deps.Logger.Error("list model catalog", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to load model catalog"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"models": models})
}

func (h *handlers) modelsRefresh(c *gin.Context) {
	if h.catalogUnavailable(c) {
		return
	}
	if err := h.deps.Catalog.Refresh(c.Request.Context()); err != nil {
		h.deps.Logger.Error("refresh model catalog", "error", err)
		h.recordCommand(c, "models.refresh", domain.CommandFailed, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to refresh model catalog"})
		return
	}
	h.recordCommand(c, "models.refresh", domain.CommandSuccess, nil)
	c.JSON(http.StatusOK, gin.H{"status": "refreshed"})
}

func (h *handlers) modelsGetDefaults(c *gin.Context) {
	if h.catalogUnavailable(c) {
		return
	}
	defaults, err := h.deps.Catalog.Defaults(c.Request.Context())
	if err != nil {
		h.deps.Logger.Error("load model defaults", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to load model defaults"})
		return
	}
	c.JSON(http.StatusOK, defaults)
}

func (h *handlers) modelsPutDefaults(c *gin.Context) {
	if h.catalogUnavailable(c) {
		return
	}
	var req modelcatalog.Defaults
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	saved, err := h.deps.Catalog.SetDefaults(c.Request.Context(), req)
	if err != nil {
		h.deps.Logger.Error("set model defaults", "error", err)
		h.recordCommand(c, "models.defaults.put", domain.CommandFailed, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to set model defaults"})
		return
	}
	h.recordCommand(c, "models.defaults.put", domain.CommandSuccess, nil)
	c.JSON(http.StatusOK, saved)
}
