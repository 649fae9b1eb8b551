package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/axelgear/design-integration/internal/design/entity"
	"gorm.io/gorm"
)

type VersionRepository struct {
	db *gorm.DB
}

func NewVersionRepository(db *gorm.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

// ListByItem returns an item's versions oldest-first for timeline rendering.
func (r *VersionRepository) ListByItem(ctx context.Context, itemID string) ([]entity.DesignVersion, error) {
	var versions []entity.DesignVersion
	err := r.db.WithContext(ctx).
		Where("design_request_item_id = ?", itemID).
		Order("created_at ASC").
		Find(&versions).Error
	return versions, err
}

func (r *VersionRepository) FindByID(ctx context.Context, id string) (*entity.DesignVersion, error) {
	var version entity.DesignVersion
	err := r.db.WithContext(ctx).First(&version, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &version, nil
}

func (r *VersionRepository) Create(ctx context.Context, version *entity.DesignVersion) error {
	return r.db.WithContext(ctx).Create(version).Error
}

func (r *VersionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.DesignVersion{}, "id = ?", id).Error
}

// TagExists reports whether the tag is already taken on the item.
func (r *VersionRepository) TagExists(ctx context.Context, itemID, tag string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.DesignVersion{}).
		Where("design_request_item_id = ? AND version_tag = ?", itemID, tag).
		Count(&count).Error
	return count > 0, err
}

// NextTag returns the next version tag for an item. It parses the stored
// tags and takes max+1, so tags stay unique and monotonic even after a
// version in the middle is deleted.
func (r *VersionRepository) NextTag(ctx context.Context, itemID string) (string, error) {
	var tags []string
	err := r.db.WithContext(ctx).
		Model(&entity.DesignVersion{}).
		Where("design_request_item_id = ?", itemID).
		Pluck("version_tag", &tags).Error
	if err != nil {
		return "", err
	}

	max := 0
	for _, tag := range tags {
		t := strings.TrimPrefix(strings.ToUpper(tag), "V")
		if n, err := strconv.Atoi(t); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("V%d", max+1), nil
}
