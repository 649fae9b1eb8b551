package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/axelgear/design-integration/internal/design/entity"
	"gorm.io/gorm"
)

type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) Create(ctx context.Context, item *entity.DesignRequestItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *ItemRepository) FindByID(ctx context.Context, id string) (*entity.DesignRequestItem, error) {
	var item entity.DesignRequestItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (r *ItemRepository) Update(ctx context.Context, item *entity.DesignRequestItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *ItemRepository) ListByRequest(ctx context.Context, requestID string) ([]entity.DesignRequestItem, error) {
	var items []entity.DesignRequestItem
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// AllCompleted reports whether every item of a request reached Completed.
// False when the request has no items.
func (r *ItemRepository) AllCompleted(ctx context.Context, requestID string) (bool, error) {
	var total, completed int64
	if err := r.db.WithContext(ctx).
		Model(&entity.DesignRequestItem{}).
		Where("request_id = ?", requestID).
		Count(&total).Error; err != nil {
		return false, err
	}
	if total == 0 {
		return false, nil
	}
	if err := r.db.WithContext(ctx).
		Model(&entity.DesignRequestItem{}).
		Where("request_id = ? AND design_status = ?", requestID, "Completed").
		Count(&completed).Error; err != nil {
		return false, err
	}
	return total == completed, nil
}

// NextID generates the next item id in the DES-IT-000001 series.
func (r *ItemRepository) NextID(ctx context.Context) (string, error) {
	var last string
	err := r.db.WithContext(ctx).
		Model(&entity.DesignRequestItem{}).
		Select("id").
		Where("id LIKE ?", "DES-IT-%").
		Order("id DESC").
		Limit(1).
		Scan(&last).Error
	if err != nil {
		return "", err
	}

	next := 1
	if last != "" {
		if n, err := strconv.Atoi(strings.TrimPrefix(last, "DES-IT-")); err == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("DES-IT-%06d", next), nil
}

// ItemListFilter narrows the item work list.
type ItemListFilter struct {
	DesignStatus   string
	ApprovalStatus string
	AssignedTo     string
	RequestID      string
	ItemCode       string
	SortBy         string
	SortDesc       bool
}

var itemSortColumns = map[string]string{
	"created_at":    "created_at",
	"request_date":  "request_date",
	"item_code":     "item_code",
	"design_status": "design_status",
}

func (r *ItemRepository) List(ctx context.Context, filter ItemListFilter, page, pageSize int) ([]entity.DesignRequestItem, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.DesignRequestItem{})

	if filter.DesignStatus != "" {
		q = q.Where("design_status = ?", filter.DesignStatus)
	}
	if filter.ApprovalStatus != "" {
		q = q.Where("approval_status = ?", filter.ApprovalStatus)
	}
	if filter.AssignedTo != "" {
		q = q.Where("assigned_to = ?", filter.AssignedTo)
	}
	if filter.RequestID != "" {
		q = q.Where("request_id = ?", filter.RequestID)
	}
	if filter.ItemCode != "" {
		q = q.Where("item_code ILIKE ?", "%"+filter.ItemCode+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	if col, ok := itemSortColumns[filter.SortBy]; ok {
		order = col + " ASC"
		if filter.SortDesc {
			order = col + " DESC"
		}
	}

	var items []entity.DesignRequestItem
	err := q.Order(order).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	return items, total, err
}
