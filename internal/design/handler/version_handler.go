package handler

import (
	"github.com/axelgear/design-integration/internal/design/service"
	"github.com/gin-gonic/gin"
)

type VersionHandler struct {
	svc *service.VersionService
}

func NewVersionHandler(svc *service.VersionService) *VersionHandler {
	return &VersionHandler{svc: svc}
}

// Meta GET /api/v1/design-versions/meta
func (h *VersionHandler) Meta(c *gin.Context) {
	Success(c, gin.H{"fields": h.svc.Meta()})
}

// NextTag GET /api/v1/design-items/:id/versions/next-tag
func (h *VersionHandler) NextTag(c *gin.Context) {
	tag, err := h.svc.NextTag(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err, "get next version tag")
		return
	}
	Success(c, gin.H{"version_tag": tag})
}

// List GET /api/v1/design-items/:id/versions
func (h *VersionHandler) List(c *gin.Context) {
	cards, err := h.svc.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err, "list versions")
		return
	}
	Success(c, gin.H{"items": cards})
}

// Create POST /api/v1/design-items/:id/versions
func (h *VersionHandler) Create(c *gin.Context) {
	var req service.CreateVersionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	version, err := h.svc.Create(c.Request.Context(), GetActor(c), c.Param("id"), req)
	if err != nil {
		RespondError(c, err, "create version")
		return
	}
	Created(c, version)
}

// Delete DELETE /api/v1/design-items/:id/versions/:versionId
func (h *VersionHandler) Delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), c.Param("id"), c.Param("versionId"))
	if err != nil {
		RespondError(c, err, "delete version")
		return
	}
	Success(c, gin.H{"message": "version deleted"})
}
