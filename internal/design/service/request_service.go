package service

import (
	"context"
	"fmt"
	"time"

	"github.com/axelgear/design-integration/internal/design/entity"
	"github.com/axelgear/design-integration/internal/design/repository"
	"github.com/axelgear/design-integration/internal/design/status"
	"github.com/axelgear/design-integration/internal/shared/cliq"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestService owns the design request header: creation from a sales
// order, close/reopen/assign/comment and the detail view.
type RequestService struct {
	repos    *repository.Repositories
	notifier *cliq.Client
	logger   *zap.Logger
}

func NewRequestService(repos *repository.Repositories, notifier *cliq.Client, logger *zap.Logger) *RequestService {
	return &RequestService{repos: repos, notifier: notifier, logger: logger}
}

// canWrite mirrors the write permission set of the request document.
func canWrite(roles []string) bool {
	for _, role := range roles {
		switch role {
		case status.RoleDesignManager, status.RoleDesignUser,
			status.RoleProjectManager, status.RoleSystemManager:
			return true
		}
	}
	return false
}

// EligibleItem is one order line still available for a design request.
type EligibleItem struct {
	SalesOrderItem string  `json:"sales_order_item"`
	Idx            int     `json:"idx"`
	ItemCode       string  `json:"item_code"`
	ItemName       string  `json:"item_name"`
	Description    string  `json:"description,omitempty"`
	OrderedQty     float64 `json:"ordered_qty"`
	RemainingQty   float64 `json:"remaining_qty"`
	UOM            string  `json:"uom"`
}

// EligibleItems lists the fabricated-equipment lines of a submitted order
// with quantity still unconsumed by earlier requests.
func (s *RequestService) EligibleItems(ctx context.Context, orderID string) ([]EligibleItem, error) {
	order, err := s.repos.SalesOrder.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.DocStatus != entity.DocStatusSubmitted {
		return nil, ErrOrderNotSubmitted
	}

	lines, err := s.repos.SalesOrder.FabricatedItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	used, err := s.repos.Request.UsedQuantities(ctx, orderID)
	if err != nil {
		return nil, err
	}

	eligible := make([]EligibleItem, 0, len(lines))
	for _, line := range lines {
		remaining := line.Qty - used[line.ID]
		if remaining <= 0 {
			continue
		}
		eligible = append(eligible, EligibleItem{
			SalesOrderItem: line.ID,
			Idx:            line.Idx,
			ItemCode:       line.ItemCode,
			ItemName:       line.ItemName,
			Description:    line.Description,
			OrderedQty:     line.Qty,
			RemainingQty:   remaining,
			UOM:            line.UOM,
		})
	}
	return eligible, nil
}

// ItemSelection picks one order line and quantity for a new request.
type ItemSelection struct {
	SalesOrderItem string  `json:"sales_order_item" binding:"required"`
	Qty            float64 `json:"qty"`
}

// CreateFromOrder raises a design request for the selected lines of a
// submitted sales order. The request id is the order id plus a suffix.
func (s *RequestService) CreateFromOrder(ctx context.Context, actor Actor, orderID string, selections []ItemSelection) (*entity.DesignRequest, error) {
	if len(selections) == 0 {
		return nil, ErrNoItemsSelected
	}

	order, err := s.repos.SalesOrder.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.DocStatus != entity.DocStatusSubmitted {
		return nil, ErrOrderNotSubmitted
	}

	eligible, err := s.EligibleItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	byLine := make(map[string]EligibleItem, len(eligible))
	for _, e := range eligible {
		byLine[e.SalesOrderItem] = e
	}

	for _, sel := range selections {
		line, ok := byLine[sel.SalesOrderItem]
		if !ok {
			return nil, fmt.Errorf("%w: line %s", ErrNoItemsSelected, sel.SalesOrderItem)
		}
		if sel.Qty <= 0 || sel.Qty > line.RemainingQty {
			return nil, fmt.Errorf("%w: line %s", ErrQtyExceeds, sel.SalesOrderItem)
		}
	}

	requestID, err := s.repos.Request.NextID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	req := &entity.DesignRequest{
		ID:           requestID,
		SalesOrderID: order.ID,
		Customer:     order.Customer,
		CustomerName: order.CustomerName,
		Project:      order.Project,
		ProjectName:  order.ProjectName,
		Status:       entity.RequestStatusOpen,
		DocStatus:    entity.DocStatusDraft,
		RequestDate:  &now,
		CreatedBy:    actor.UserID,
	}
	if err := s.repos.Request.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for _, sel := range selections {
		line := byLine[sel.SalesOrderItem]
		itemID, err := s.repos.Item.NextID(ctx)
		if err != nil {
			return nil, err
		}
		item := &entity.DesignRequestItem{
			ID:             itemID,
			RequestID:      req.ID,
			SalesOrderID:   order.ID,
			SalesOrderItem: line.SalesOrderItem,
			ItemCode:       line.ItemCode,
			ItemName:       line.ItemName,
			Description:    line.Description,
			Qty:            sel.Qty,
			UOM:            line.UOM,
			DesignStatus:   status.Pending,
			ApprovalStatus: status.ApprovalPending,
			CurrentStage:   status.Pending,
			RequestDate:    &now,
			CreatedBy:      actor.UserID,
		}
		if err := s.repos.Item.Create(ctx, item); err != nil {
			return nil, fmt.Errorf("create request item: %w", err)
		}
	}

	return s.repos.Request.FindByID(ctx, req.ID)
}

func (s *RequestService) Get(ctx context.Context, id string) (*entity.DesignRequest, error) {
	return s.repos.Request.FindByID(ctx, id)
}

func (s *RequestService) List(ctx context.Context, filter repository.RequestListFilter, page, pageSize int) ([]entity.DesignRequest, int64, error) {
	return s.repos.Request.List(ctx, filter, page, pageSize)
}

// RequestDetails is the full detail view.
type RequestDetails struct {
	Request     *entity.DesignRequest    `json:"request"`
	Comments    []entity.Comment         `json:"comments"`
	Transitions []entity.StageTransition `json:"transitions"`
}

func (s *RequestService) Details(ctx context.Context, id string) (*RequestDetails, error) {
	req, err := s.repos.Request.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.repos.Comment.ListByRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	transitions, err := s.repos.Transition.ListByEntity(ctx, entity.EntityDesignRequest, id)
	if err != nil {
		return nil, err
	}
	return &RequestDetails{Request: req, Comments: comments, Transitions: transitions}, nil
}

// guard enforces the draft-only, write-role precondition shared by the
// request actions.
func (s *RequestService) guard(ctx context.Context, actor Actor, requestID string) (*entity.DesignRequest, error) {
	if !canWrite(actor.Roles) {
		return nil, ErrRoleNotAllowed
	}
	req, err := s.repos.Request.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.DocStatus != entity.DocStatusDraft {
		return nil, ErrNotDraft
	}
	return req, nil
}

// UpdateStatus closes or reopens a request. The remark is mandatory and
// recorded as a comment.
func (s *RequestService) UpdateStatus(ctx context.Context, actor Actor, requestID, newStatus, remark string) (*entity.DesignRequest, error) {
	if newStatus != entity.RequestStatusOpen && newStatus != entity.RequestStatusClosed {
		return nil, fmt.Errorf("invalid request status %q", newStatus)
	}
	if remark == "" {
		return nil, ErrReasonRequired
	}

	req, err := s.guard(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}

	prev := req.Status
	req.Status = newStatus
	now := time.Now()
	if newStatus == entity.RequestStatusClosed {
		req.ActualCompletion = &now
	} else {
		req.ActualCompletion = nil
	}
	if err := s.repos.Request.Update(ctx, req); err != nil {
		return nil, fmt.Errorf("update request: %w", err)
	}

	s.repos.Transition.Log(ctx, &entity.StageTransition{
		ID:         uuid.New().String()[:32],
		EntityType: entity.EntityDesignRequest,
		EntityID:   req.ID,
		Field:      "status",
		FromValue:  prev,
		ToValue:    newStatus,
		Remarks:    remark,
		ChangedBy:  actor.UserID,
	})
	s.repos.Comment.Create(ctx, &entity.Comment{
		ID:          uuid.New().String()[:32],
		RequestID:   req.ID,
		Content:     remark,
		CommentedBy: actor.UserID,
	})

	return req, nil
}

// Assign sets the request assignee and fires the notification card.
func (s *RequestService) Assign(ctx context.Context, actor Actor, requestID, userID string) (*entity.DesignRequest, error) {
	req, err := s.guard(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}

	assignee, err := s.repos.User.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	req.AssignedTo = assignee.ID
	req.AssignedDate = &now
	if err := s.repos.Request.Update(ctx, req); err != nil {
		return nil, fmt.Errorf("update request: %w", err)
	}

	if s.notifier != nil {
		msg := cliq.AssignmentMessage(req.ID, assignee.Name, req.CustomerName, req.Priority)
		go func() {
			sendCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := s.notifier.Send(sendCtx, msg); err != nil {
				s.logger.Warn("assignment notification failed",
					zap.String("request_id", req.ID),
					zap.Error(err))
			}
		}()
	}

	return req, nil
}

// AddComment appends a comment to the request.
func (s *RequestService) AddComment(ctx context.Context, actor Actor, requestID, content string) (*entity.Comment, error) {
	if content == "" {
		return nil, ErrReasonRequired
	}
	req, err := s.guard(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}

	comment := &entity.Comment{
		ID:          uuid.New().String()[:32],
		RequestID:   req.ID,
		Content:     content,
		CommentedBy: actor.UserID,
	}
	if err := s.repos.Comment.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}
