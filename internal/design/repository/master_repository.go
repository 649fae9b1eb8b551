package repository

import (
	"context"
	"time"

	"github.com/axelgear/design-integration/internal/design/entity"
	"gorm.io/gorm"
)

// ============================================================
// Sales Order
// ============================================================

type SalesOrderRepository struct {
	db *gorm.DB
}

func NewSalesOrderRepository(db *gorm.DB) *SalesOrderRepository {
	return &SalesOrderRepository{db: db}
}

func (r *SalesOrderRepository) FindByID(ctx context.Context, id string) (*entity.SalesOrder, error) {
	var order entity.SalesOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

// FabricatedItems returns the order lines whose item master belongs to the
// Fabricated Equipment group, in line order.
func (r *SalesOrderRepository) FabricatedItems(ctx context.Context, orderID string) ([]entity.SalesOrderItem, error) {
	var lines []entity.SalesOrderItem
	err := r.db.WithContext(ctx).
		Joins("JOIN items ON items.code = sales_order_items.item_code").
		Where("sales_order_items.order_id = ? AND items.item_group = ?",
			orderID, entity.FabricatedEquipmentGroup).
		Order("sales_order_items.idx ASC").
		Find(&lines).Error
	return lines, err
}

func (r *SalesOrderRepository) Create(ctx context.Context, order *entity.SalesOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// ============================================================
// Item master
// ============================================================

type ItemMasterRepository struct {
	db *gorm.DB
}

func NewItemMasterRepository(db *gorm.DB) *ItemMasterRepository {
	return &ItemMasterRepository{db: db}
}

func (r *ItemMasterRepository) FindByCode(ctx context.Context, code string) (*entity.Item, error) {
	var item entity.Item
	err := r.db.WithContext(ctx).First(&item, "code = ?", code).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (r *ItemMasterRepository) Create(ctx context.Context, item *entity.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *ItemMasterRepository) Update(ctx context.Context, item *entity.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// ============================================================
// BOM master
// ============================================================

type BOMRepository struct {
	db *gorm.DB
}

func NewBOMRepository(db *gorm.DB) *BOMRepository {
	return &BOMRepository{db: db}
}

func (r *BOMRepository) FindByID(ctx context.Context, id string) (*entity.BOM, error) {
	var bom entity.BOM
	err := r.db.WithContext(ctx).First(&bom, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &bom, nil
}

func (r *BOMRepository) Create(ctx context.Context, bom *entity.BOM) error {
	return r.db.WithContext(ctx).Create(bom).Error
}

func (r *BOMRepository) CountByItem(ctx context.Context, itemCode string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.BOM{}).
		Where("item_code = ?", itemCode).
		Count(&count).Error
	return count, err
}

// ============================================================
// User
// ============================================================

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *UserRepository) ListActive(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Where("status = ?", "active").
		Order("name ASC").
		Find(&users).Error
	return users, err
}

func (r *UserRepository) TouchLogin(ctx context.Context, id string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", id).
		Update("last_login_at", &now).Error
}

// ============================================================
// Comment
// ============================================================

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *CommentRepository) ListByRequest(ctx context.Context, requestID string) ([]entity.Comment, error) {
	var comments []entity.Comment
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

// ============================================================
// Stage transition log
// ============================================================

type TransitionRepository struct {
	db *gorm.DB
}

func NewTransitionRepository(db *gorm.DB) *TransitionRepository {
	return &TransitionRepository{db: db}
}

func (r *TransitionRepository) Log(ctx context.Context, t *entity.StageTransition) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TransitionRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]entity.StageTransition, error) {
	var transitions []entity.StageTransition
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at ASC").
		Find(&transitions).Error
	return transitions, err
}
