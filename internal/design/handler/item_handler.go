package handler

import (
	"github.com/axelgear/design-integration/internal/design/repository"
	"github.com/axelgear/design-integration/internal/design/service"
	"github.com/gin-gonic/gin"
)

type ItemHandler struct {
	svc *service.ItemService
}

func NewItemHandler(svc *service.ItemService) *ItemHandler {
	return &ItemHandler{svc: svc}
}

// List GET /api/v1/design-items
func (h *ItemHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filter := repository.ItemListFilter{
		DesignStatus:   c.Query("design_status"),
		ApprovalStatus: c.Query("approval_status"),
		AssignedTo:     c.Query("assigned_to"),
		RequestID:      c.Query("design_request"),
		ItemCode:       c.Query("item_code"),
		SortBy:         c.Query("sort_by"),
		SortDesc:       c.Query("sort_order") == "desc",
	}

	rows, total, err := h.svc.List(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		InternalError(c, "list design items: "+err.Error())
		return
	}

	Success(c, ListResponse{
		Items: rows,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages(total, pageSize),
		},
	})
}

// Get GET /api/v1/design-items/:id
func (h *ItemHandler) Get(c *gin.Context) {
	item, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err, "get design item")
		return
	}
	Success(c, item)
}

// UpdateDesignStatus PUT /api/v1/design-items/:id/design-status
func (h *ItemHandler) UpdateDesignStatus(c *gin.Context) {
	var req struct {
		DesignStatus string `json:"design_status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "design_status is required")
		return
	}

	item, err := h.svc.UpdateDesignStatus(c.Request.Context(), GetActor(c), c.Param("id"), req.DesignStatus)
	if err != nil {
		RespondError(c, err, "update design status")
		return
	}
	Success(c, item)
}

// UpdateApprovalStatus PUT /api/v1/design-items/:id/approval-status
// Without confirm=true the pending effect is returned and nothing is
// written; the caller confirms and re-submits to commit.
func (h *ItemHandler) UpdateApprovalStatus(c *gin.Context) {
	var req struct {
		ApprovalStatus string `json:"approval_status" binding:"required"`
		Confirm        bool   `json:"confirm"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "approval_status is required")
		return
	}

	if !req.Confirm {
		pending, err := h.svc.ProposeApproval(c.Request.Context(), c.Param("id"), req.ApprovalStatus)
		if err != nil {
			RespondError(c, err, "propose approval change")
			return
		}
		Success(c, pending)
		return
	}

	item, err := h.svc.ApplyApproval(c.Request.Context(), GetActor(c), c.Param("id"), req.ApprovalStatus)
	if err != nil {
		RespondError(c, err, "apply approval change")
		return
	}
	Success(c, item)
}

// MarkRevision POST /api/v1/design-items/:id/revision
func (h *ItemHandler) MarkRevision(c *gin.Context) {
	var req struct {
		Reason  string `json:"reason" binding:"required"`
		Remarks string `json:"remarks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "reason is required")
		return
	}

	item, err := h.svc.MarkRevision(c.Request.Context(), GetActor(c), c.Param("id"), req.Reason, req.Remarks)
	if err != nil {
		RespondError(c, err, "mark revision")
		return
	}
	Success(c, item)
}

// SetNewItemCode PUT /api/v1/design-items/:id/new-item-code
func (h *ItemHandler) SetNewItemCode(c *gin.Context) {
	var req struct {
		NewItemCode string `json:"new_item_code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	item, err := h.svc.SetNewItemCode(c.Request.Context(), GetActor(c), c.Param("id"), req.NewItemCode)
	if err != nil {
		RespondError(c, err, "set new item code")
		return
	}
	Success(c, item)
}

// SetBOMName PUT /api/v1/design-items/:id/bom-name
func (h *ItemHandler) SetBOMName(c *gin.Context) {
	var req struct {
		BOMName string `json:"bom_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	item, err := h.svc.SetBOMName(c.Request.Context(), GetActor(c), c.Param("id"), req.BOMName)
	if err != nil {
		RespondError(c, err, "set bom name")
		return
	}
	Success(c, item)
}

// Assign POST /api/v1/design-items/:id/assign
func (h *ItemHandler) Assign(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "user_id is required")
		return
	}

	item, err := h.svc.Assign(c.Request.Context(), GetActor(c), c.Param("id"), req.UserID)
	if err != nil {
		RespondError(c, err, "assign item")
		return
	}
	Success(c, item)
}

// SetApprovalRemarks PUT /api/v1/design-items/:id/approval-remarks
func (h *ItemHandler) SetApprovalRemarks(c *gin.Context) {
	var req struct {
		Remarks string `json:"remarks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	item, err := h.svc.SetApprovalRemarks(c.Request.Context(), c.Param("id"), req.Remarks)
	if err != nil {
		RespondError(c, err, "set approval remarks")
		return
	}
	Success(c, item)
}

// Transitions GET /api/v1/design-items/:id/transitions
func (h *ItemHandler) Transitions(c *gin.Context) {
	transitions, err := h.svc.Transitions(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err, "list transitions")
		return
	}
	Success(c, gin.H{"items": transitions})
}
