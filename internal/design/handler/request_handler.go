package handler

import (
	"github.com/axelgear/design-integration/internal/design/entity"
	"github.com/axelgear/design-integration/internal/design/repository"
	"github.com/axelgear/design-integration/internal/design/service"
	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	svc *service.RequestService
}

func NewRequestHandler(svc *service.RequestService) *RequestHandler {
	return &RequestHandler{svc: svc}
}

// EligibleItems GET /api/v1/sales-orders/:orderId/eligible-items
func (h *RequestHandler) EligibleItems(c *gin.Context) {
	items, err := h.svc.EligibleItems(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		RespondError(c, err, "list eligible items")
		return
	}
	Success(c, gin.H{"items": items})
}

// CreateFromOrder POST /api/v1/sales-orders/:orderId/design-requests
func (h *RequestHandler) CreateFromOrder(c *gin.Context) {
	var req struct {
		Items []service.ItemSelection `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	created, err := h.svc.CreateFromOrder(c.Request.Context(), GetActor(c), c.Param("orderId"), req.Items)
	if err != nil {
		RespondError(c, err, "create design request")
		return
	}
	Created(c, created)
}

// List GET /api/v1/design-requests
func (h *RequestHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filter := repository.RequestListFilter{
		Status:     c.Query("status"),
		Customer:   c.Query("customer"),
		AssignedTo: c.Query("assigned_to"),
		SalesOrder: c.Query("sales_order"),
	}

	requests, total, err := h.svc.List(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		InternalError(c, "list design requests: "+err.Error())
		return
	}

	Success(c, ListResponse{
		Items: requests,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages(total, pageSize),
		},
	})
}

// Get GET /api/v1/design-requests/:id
func (h *RequestHandler) Get(c *gin.Context) {
	details, err := h.svc.Details(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err, "get design request")
		return
	}
	Success(c, details)
}

// Close POST /api/v1/design-requests/:id/close
func (h *RequestHandler) Close(c *gin.Context) {
	h.updateStatus(c, entity.RequestStatusClosed)
}

// Reopen POST /api/v1/design-requests/:id/reopen
func (h *RequestHandler) Reopen(c *gin.Context) {
	h.updateStatus(c, entity.RequestStatusOpen)
}

func (h *RequestHandler) updateStatus(c *gin.Context, newStatus string) {
	var req struct {
		Remark string `json:"remark" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "a remark is required")
		return
	}

	updated, err := h.svc.UpdateStatus(c.Request.Context(), GetActor(c), c.Param("id"), newStatus, req.Remark)
	if err != nil {
		RespondError(c, err, "update request status")
		return
	}
	Success(c, updated)
}

// Assign POST /api/v1/design-requests/:id/assign
func (h *RequestHandler) Assign(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "user_id is required")
		return
	}

	updated, err := h.svc.Assign(c.Request.Context(), GetActor(c), c.Param("id"), req.UserID)
	if err != nil {
		RespondError(c, err, "assign request")
		return
	}
	Success(c, updated)
}

// AddComment POST /api/v1/design-requests/:id/comments
func (h *RequestHandler) AddComment(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "content is required")
		return
	}

	comment, err := h.svc.AddComment(c.Request.Context(), GetActor(c), c.Param("id"), req.Content)
	if err != nil {
		RespondError(c, err, "add comment")
		return
	}
	Created(c, comment)
}
