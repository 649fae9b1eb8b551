package service

import (
	"context"
	"fmt"
	"time"

	"github.com/axelgear/design-integration/internal/design/entity"
	"github.com/axelgear/design-integration/internal/design/repository"
	"github.com/axelgear/design-integration/internal/design/status"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OverdueAfterDays is how long an item may stay open before it counts as
// overdue.
const OverdueAfterDays = 7

// ItemService owns the per-item design workflow: status transitions with
// their side effects, the two-phase approval flow, revisions and the
// derived-field cascades.
type ItemService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

func NewItemService(repos *repository.Repositories, logger *zap.Logger) *ItemService {
	return &ItemService{repos: repos, logger: logger}
}

func (s *ItemService) Get(ctx context.Context, id string) (*entity.DesignRequestItem, error) {
	return s.repos.Item.FindByID(ctx, id)
}

// ItemRow is a work-list row with age fields computed at read time.
type ItemRow struct {
	entity.DesignRequestItem
	DaysSinceRequest int  `json:"days_since_request"`
	IsOverdue        bool `json:"is_overdue"`
}

func (s *ItemService) List(ctx context.Context, filter repository.ItemListFilter, page, pageSize int) ([]ItemRow, int64, error) {
	items, total, err := s.repos.Item.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now()
	rows := make([]ItemRow, 0, len(items))
	for _, item := range items {
		since := item.CreatedAt
		if item.RequestDate != nil {
			since = *item.RequestDate
		}
		days := int(now.Sub(since).Hours() / 24)
		open := item.DesignStatus != status.Completed && item.DesignStatus != status.Cancelled
		rows = append(rows, ItemRow{
			DesignRequestItem: item,
			DaysSinceRequest:  days,
			IsOverdue:         open && days > OverdueAfterDays,
		})
	}
	return rows, total, nil
}

// UpdateDesignStatus moves an item to a new design status, running the
// stage side effects and the request completion cascade.
func (s *ItemService) UpdateDesignStatus(ctx context.Context, actor Actor, itemID, newStatus string) (*entity.DesignRequestItem, error) {
	item, err := s.repos.Item.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if status.Locked(item.DesignStatus) {
		return nil, ErrLocked
	}
	if !status.Member(status.Allowed(item.ApprovalStatus), newStatus) {
		return nil, ErrStatusNotAllowed
	}
	if !status.RoleAllowed(actor.Roles, newStatus) {
		return nil, ErrRoleNotAllowed
	}

	prev := item.DesignStatus
	item.DesignStatus = newStatus
	item.CurrentStage = newStatus

	switch newStatus {
	case status.SKUGeneration:
		if err := s.ensureItemMaster(ctx, item); err != nil {
			return nil, err
		}
	case status.BOMStage:
		if err := s.ensureBOM(ctx, actor, item); err != nil {
			return nil, err
		}
	case status.Nesting:
		item.NestingCompleted = true
	case status.Completed:
		now := time.Now()
		item.CompletionDate = &now
	}

	if err := s.repos.Item.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	s.logTransition(ctx, actor, item.ID, "design_status", prev, newStatus, "")

	if newStatus == status.Completed {
		if err := s.closeRequestIfDone(ctx, actor, item.RequestID); err != nil {
			s.logger.Warn("completion cascade failed",
				zap.String("item_id", item.ID),
				zap.String("request_id", item.RequestID),
				zap.Error(err))
		}
	}

	return item, nil
}

// ensureItemMaster links the item to an item master, creating a finished
// goods record when none exists for the ordered item code.
func (s *ItemService) ensureItemMaster(ctx context.Context, item *entity.DesignRequestItem) error {
	if item.NewItemCode != "" {
		item.SKUGenerated = true
		item.ItemCreated = true
		return nil
	}

	master, err := s.repos.ItemMaster.FindByCode(ctx, item.ItemCode)
	if err == nil {
		item.NewItemCode = master.Code
		item.NewItemName = master.Name
		item.SKUGenerated = true
		item.ItemCreated = true
		return nil
	}
	if err != repository.ErrNotFound {
		return err
	}

	master = &entity.Item{
		Code:        fmt.Sprintf("FG-%s", item.ID),
		Name:        item.ItemName,
		Description: item.Description,
		ItemGroup:   entity.FabricatedEquipmentGroup,
		StockUOM:    item.UOM,
		IsStockItem: true,
	}
	if master.StockUOM == "" {
		master.StockUOM = "Nos"
	}
	if err := s.repos.ItemMaster.Create(ctx, master); err != nil {
		return fmt.Errorf("create item master: %w", err)
	}

	item.NewItemCode = master.Code
	item.NewItemName = master.Name
	item.SKUGenerated = true
	item.ItemCreated = true
	return nil
}

// ensureBOM creates a BOM for the generated item when the stage is reached
// without one.
func (s *ItemService) ensureBOM(ctx context.Context, actor Actor, item *entity.DesignRequestItem) error {
	if item.NewItemCode == "" {
		return ErrSKURequired
	}
	if item.BOMName != "" {
		item.BOMCreated = true
		return nil
	}

	count, err := s.repos.BOM.CountByItem(ctx, item.NewItemCode)
	if err != nil {
		return err
	}

	bom := &entity.BOM{
		ID:        fmt.Sprintf("BOM-%s-%03d", item.NewItemCode, count+1),
		ItemCode:  item.NewItemCode,
		ItemName:  item.NewItemName,
		Quantity:  1,
		IsDefault: count == 0,
		IsActive:  true,
		CreatedBy: actor.UserID,
	}
	if err := s.repos.BOM.Create(ctx, bom); err != nil {
		return fmt.Errorf("create bom: %w", err)
	}

	item.BOMName = bom.ID
	item.BOMCreated = true

	if bom.IsDefault {
		if master, err := s.repos.ItemMaster.FindByCode(ctx, item.NewItemCode); err == nil && master.DefaultBOM == "" {
			master.DefaultBOM = bom.ID
			s.repos.ItemMaster.Update(ctx, master)
		}
	}
	return nil
}

// closeRequestIfDone closes the parent request once every item is Completed.
func (s *ItemService) closeRequestIfDone(ctx context.Context, actor Actor, requestID string) error {
	done, err := s.repos.Item.AllCompleted(ctx, requestID)
	if err != nil || !done {
		return err
	}

	req, err := s.repos.Request.FindByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req.Status == entity.RequestStatusClosed {
		return nil
	}

	now := time.Now()
	prev := req.Status
	req.Status = entity.RequestStatusClosed
	req.ActualCompletion = &now
	if err := s.repos.Request.Update(ctx, req); err != nil {
		return err
	}

	s.repos.Transition.Log(ctx, &entity.StageTransition{
		ID:         uuid.New().String()[:32],
		EntityType: entity.EntityDesignRequest,
		EntityID:   req.ID,
		Field:      "status",
		FromValue:  prev,
		ToValue:    entity.RequestStatusClosed,
		Remarks:    "all items completed",
		ChangedBy:  actor.UserID,
	})
	return nil
}

// PendingApproval describes the effect an approval change would have. It is
// returned to the caller for confirmation; nothing is written.
type PendingApproval struct {
	ConfirmationRequired bool          `json:"confirmation_required"`
	Effect               status.Effect `json:"effect"`
}

// ProposeApproval computes the pending effect of an approval-status change
// without committing anything.
func (s *ItemService) ProposeApproval(ctx context.Context, itemID, newStatus string) (*PendingApproval, error) {
	item, err := s.repos.Item.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if status.Locked(item.DesignStatus) {
		return nil, ErrLocked
	}

	eff, hasEffect := status.ApprovalEffect(newStatus)
	if !hasEffect {
		// No automatic design-status effect; the design status is
		// reconciled against the new allowed set on commit.
		ds, reset := status.Reconcile(item.DesignStatus, newStatus)
		eff.DesignStatus = ds
		if reset {
			eff.Prompt = fmt.Sprintf("Design status will reset to %s. Continue?", ds)
		}
	}
	return &PendingApproval{
		ConfirmationRequired: true,
		Effect:               eff,
	}, nil
}

// ApplyApproval commits a confirmed approval-status change together with its
// effect. Approving an item with a pending revision request is restricted to
// planning roles and sends the item back to Modelling.
func (s *ItemService) ApplyApproval(ctx context.Context, actor Actor, itemID, newStatus string) (*entity.DesignRequestItem, error) {
	item, err := s.repos.Item.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if status.Locked(item.DesignStatus) {
		return nil, ErrLocked
	}

	prevApproval := item.ApprovalStatus
	prevDesign := item.DesignStatus
	now := time.Now()

	if newStatus == status.Approved && item.RevisionRequested {
		if !status.RevisionApprovalAllowed(actor.Roles) {
			return nil, ErrRoleNotAllowed
		}
		item.ApprovalStatus = status.Approved
		item.ApprovalDate = &now
		item.DesignStatus = status.Modelling
		item.CurrentStage = status.Modelling
		item.RevisionRequested = false
		item.RevisionCount++
	} else {
		item.ApprovalStatus = newStatus
		if eff, hasEffect := status.ApprovalEffect(newStatus); hasEffect {
			item.DesignStatus = eff.DesignStatus
			item.CurrentStage = eff.DesignStatus
			if eff.StampApprovalDate {
				item.ApprovalDate = &now
			}
		} else {
			ds, _ := status.Reconcile(item.DesignStatus, newStatus)
			item.DesignStatus = ds
			item.CurrentStage = ds
		}
	}

	if err := s.repos.Item.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	s.logTransition(ctx, actor, item.ID, "approval_status", prevApproval, item.ApprovalStatus, "")
	if item.DesignStatus != prevDesign {
		s.logTransition(ctx, actor, item.ID, "design_status", prevDesign, item.DesignStatus, "approval side effect")
	}
	return item, nil
}

// MarkRevision raises a revision request against an item.
func (s *ItemService) MarkRevision(ctx context.Context, actor Actor, itemID, reason, remarks string) (*entity.DesignRequestItem, error) {
	if reason == "" {
		return nil, ErrReasonRequired
	}

	item, err := s.repos.Item.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !status.RevisionAllowed(item.DesignStatus) {
		return nil, ErrRevisionNotAllowed
	}

	prev := item.ApprovalStatus
	item.RevisionReason = reason
	item.ApprovalStatus = status.Revised
	item.ApprovalRemarks = remarks
	item.RevisionRequested = true

	if err := s.repos.Item.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	s.logTransition(ctx, actor, item.ID, "approval_status", prev, status.Revised, reason)
	return item, nil
}

// SetNewItemCode links or clears the generated item code, cascading the
// derived fields. A missing item master rejects the change without any
// mutation.
func (s *ItemService) SetNewItemCode(ctx context.Context, actor Actor, itemID, code string) (*entity.DesignRequestItem, error) {
	item, err := s.repos.Item.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if code == "" {
		item.NewItemCode = ""
		item.NewItemName = ""
		item.SKUGenerated = false
		item.ItemCreated = false
	} else {
		master, err := s.repos.ItemMaster.FindByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		item.NewItemCode = master.Code
		item.NewItemName = master.Name
		item.SKUGenerated = true
		item.ItemCreated = true
	}

	if err := s.repos.Item.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return item, nil
}

// SetBOMName links or clears the item's BOM, cascading bom_created.
func (s *ItemService) SetBOMName(ctx context.Context, actor Actor, itemID, bomID string) (*entity.DesignRequestItem, error) {
	item, err := s.repos.Item.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if bomID == "" {
		item.BOMName = ""
		item.BOMCreated = false
	} else {
		bom, err := s.repos.BOM.FindByID(ctx, bomID)
		if err != nil {
			return nil, err
		}
		if item.NewItemCode != "" && bom.ItemCode != item.NewItemCode {
			return nil, ErrBOMItemMismatch
		}
		item.BOMName = bom.ID
		item.BOMCreated = true
	}

	if err := s.repos.Item.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return item, nil
}

// Assign sets the item assignee.
func (s *ItemService) Assign(ctx context.Context, actor Actor, itemID, userID string) (*entity.DesignRequestItem, error) {
	item, err := s.repos.Item.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.User.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	now := time.Now()
	item.AssignedTo = userID
	item.AssignedDate = &now
	if err := s.repos.Item.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return item, nil
}

// SetApprovalRemarks updates the free-form approval remarks.
func (s *ItemService) SetApprovalRemarks(ctx context.Context, itemID, remarks string) (*entity.DesignRequestItem, error) {
	item, err := s.repos.Item.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	item.ApprovalRemarks = remarks
	if err := s.repos.Item.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return item, nil
}

// Transitions returns the audit trail for an item.
func (s *ItemService) Transitions(ctx context.Context, itemID string) ([]entity.StageTransition, error) {
	if _, err := s.repos.Item.FindByID(ctx, itemID); err != nil {
		return nil, err
	}
	return s.repos.Transition.ListByEntity(ctx, entity.EntityDesignRequestItem, itemID)
}

func (s *ItemService) logTransition(ctx context.Context, actor Actor, itemID, field, from, to, remarks string) {
	err := s.repos.Transition.Log(ctx, &entity.StageTransition{
		ID:         uuid.New().String()[:32],
		EntityType: entity.EntityDesignRequestItem,
		EntityID:   itemID,
		Field:      field,
		FromValue:  from,
		ToValue:    to,
		Remarks:    remarks,
		ChangedBy:  actor.UserID,
	})
	if err != nil {
		s.logger.Warn("failed to log stage transition",
			zap.String("item_id", itemID),
			zap.String("field", field),
			zap.Error(err))
	}
}
