package handler

import (
	"github.com/axelgear/design-integration/internal/design/service"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	svc *service.DashboardService
}

func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Get GET /api/v1/dashboard
func (h *DashboardHandler) Get(c *gin.Context) {
	dashboard, err := h.svc.Get(c.Request.Context(), GetUserID(c))
	if err != nil {
		InternalError(c, "get dashboard: "+err.Error())
		return
	}
	Success(c, dashboard)
}

// Overdue GET /api/v1/dashboard/overdue
func (h *DashboardHandler) Overdue(c *gin.Context) {
	items, err := h.svc.OverdueItems(c.Request.Context())
	if err != nil {
		InternalError(c, "list overdue items: "+err.Error())
		return
	}
	Success(c, gin.H{"items": items})
}
