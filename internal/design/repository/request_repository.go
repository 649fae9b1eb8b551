package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/axelgear/design-integration/internal/design/entity"
	"gorm.io/gorm"
)

type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) Create(ctx context.Context, req *entity.DesignRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *RequestRepository) FindByID(ctx context.Context, id string) (*entity.DesignRequest, error) {
	var req entity.DesignRequest
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &req, nil
}

func (r *RequestRepository) Update(ctx context.Context, req *entity.DesignRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

// RequestListFilter narrows the request list.
type RequestListFilter struct {
	Status     string
	Customer   string
	AssignedTo string
	SalesOrder string
}

func (r *RequestRepository) List(ctx context.Context, filter RequestListFilter, page, pageSize int) ([]entity.DesignRequest, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.DesignRequest{})

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Customer != "" {
		q = q.Where("customer = ?", filter.Customer)
	}
	if filter.AssignedTo != "" {
		q = q.Where("assigned_to = ?", filter.AssignedTo)
	}
	if filter.SalesOrder != "" {
		q = q.Where("sales_order_id = ?", filter.SalesOrder)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []entity.DesignRequest
	err := q.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&requests).Error
	return requests, total, err
}

// NextID generates the next request id for a sales order, e.g. SO-00042-2.
// Scans existing suffixes rather than counting so deleted requests never
// cause a collision.
func (r *RequestRepository) NextID(ctx context.Context, salesOrderID string) (string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&entity.DesignRequest{}).
		Where("sales_order_id = ?", salesOrderID).
		Pluck("id", &ids).Error
	if err != nil {
		return "", err
	}

	max := 0
	prefix := salesOrderID + "-"
	for _, id := range ids {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(id, prefix)); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s-%d", salesOrderID, max+1), nil
}

// UsedQuantities returns the qty already consumed per sales order line by
// existing design request items, excluding cancelled items.
func (r *RequestRepository) UsedQuantities(ctx context.Context, salesOrderID string) (map[string]float64, error) {
	rows, err := r.db.WithContext(ctx).
		Model(&entity.DesignRequestItem{}).
		Select("sales_order_item, COALESCE(SUM(qty), 0) AS used").
		Where("sales_order_id = ? AND design_status <> ?", salesOrderID, "Cancelled").
		Group("sales_order_item").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	used := make(map[string]float64)
	for rows.Next() {
		var soItem string
		var qty float64
		if err := rows.Scan(&soItem, &qty); err != nil {
			return nil, err
		}
		used[soItem] = qty
	}
	return used, rows.Err()
}
