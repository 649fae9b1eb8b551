package service

import (
	"context"
	"fmt"
	"time"

	"github.com/axelgear/design-integration/internal/design/entity"
	"github.com/axelgear/design-integration/internal/design/repository"
	"github.com/axelgear/design-integration/internal/design/timeline"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// versionLockTTL bounds how long a create/delete lock can linger if a
// request dies mid-flight.
const versionLockTTL = 10 * time.Second

// VersionService owns the version timeline of a design item.
type VersionService struct {
	repos  *repository.Repositories
	rdb    *redis.Client
	logger *zap.Logger
}

func NewVersionService(repos *repository.Repositories, rdb *redis.Client, logger *zap.Logger) *VersionService {
	return &VersionService{repos: repos, rdb: rdb, logger: logger}
}

// FieldDescriptor describes one input of the version creation dialog.
type FieldDescriptor struct {
	Fieldname string `json:"fieldname"`
	Label     string `json:"label"`
	Fieldtype string `json:"fieldtype"`
	ReadOnly  bool   `json:"read_only"`
	Required  bool   `json:"reqd"`
}

// Meta returns the creation dialog schema. The parent item reference is
// deliberately absent: it is always forced from the request path.
func (s *VersionService) Meta() []FieldDescriptor {
	return []FieldDescriptor{
		{Fieldname: "version_tag", Label: "Version Tag", Fieldtype: "Data", ReadOnly: true, Required: true},
		{Fieldname: "description", Label: "Description", Fieldtype: "Text"},
		{Fieldname: "file_url", Label: "Attachment", Fieldtype: "Attach"},
		{Fieldname: "posting_date", Label: "Posting Date", Fieldtype: "Date"},
	}
}

// NextTag returns the next free version tag for an item.
func (s *VersionService) NextTag(ctx context.Context, itemID string) (string, error) {
	if _, err := s.repos.Item.FindByID(ctx, itemID); err != nil {
		return "", err
	}
	return s.repos.Version.NextTag(ctx, itemID)
}

// CreateVersionInput is the dialog submission.
type CreateVersionInput struct {
	VersionTag  string     `json:"version_tag"`
	Description string     `json:"description"`
	FileURL     string     `json:"file_url"`
	FileName    string     `json:"file_name"`
	PostingDate *time.Time `json:"posting_date"`
}

// Create inserts a version against the item named in the path. The parent
// reference is never taken from the payload. On success the item's
// revision_reason is cleared.
func (s *VersionService) Create(ctx context.Context, actor Actor, itemID string, in CreateVersionInput) (*entity.DesignVersion, error) {
	if err := s.acquireLock(ctx, "design:lock:version-create:"+itemID); err != nil {
		return nil, err
	}
	defer s.releaseLock(ctx, "design:lock:version-create:"+itemID)

	item, err := s.repos.Item.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	tag := in.VersionTag
	if tag == "" {
		tag, err = s.repos.Version.NextTag(ctx, itemID)
		if err != nil {
			return nil, err
		}
	} else {
		exists, err := s.repos.Version.TagExists(ctx, itemID, tag)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrDuplicateTag
		}
	}

	description := in.Description
	if description == "" {
		description = item.RevisionReason
	}

	postingDate := in.PostingDate
	if postingDate == nil {
		now := time.Now()
		postingDate = &now
	}

	version := &entity.DesignVersion{
		ID:          uuid.New().String()[:32],
		ItemID:      item.ID,
		VersionTag:  tag,
		Description: description,
		FileURL:     in.FileURL,
		FileName:    in.FileName,
		PostingDate: postingDate,
		CreatedBy:   actor.UserID,
	}
	if err := s.repos.Version.Create(ctx, version); err != nil {
		return nil, fmt.Errorf("create version: %w", err)
	}

	if item.RevisionReason != "" {
		item.RevisionReason = ""
		if err := s.repos.Item.Update(ctx, item); err != nil {
			s.logger.Warn("failed to clear revision reason",
				zap.String("item_id", item.ID),
				zap.Error(err))
		}
	}

	return version, nil
}

// List returns the rendered timeline, oldest version first.
func (s *VersionService) List(ctx context.Context, itemID string) ([]timeline.Card, error) {
	if _, err := s.repos.Item.FindByID(ctx, itemID); err != nil {
		return nil, err
	}
	versions, err := s.repos.Version.ListByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return timeline.Build(versions), nil
}

// Delete removes one version of the item. No undo.
func (s *VersionService) Delete(ctx context.Context, itemID, versionID string) error {
	if err := s.acquireLock(ctx, "design:lock:version-delete:"+versionID); err != nil {
		return err
	}
	defer s.releaseLock(ctx, "design:lock:version-delete:"+versionID)

	version, err := s.repos.Version.FindByID(ctx, versionID)
	if err != nil {
		return err
	}
	if version.ItemID != itemID {
		return repository.ErrNotFound
	}

	return s.repos.Version.Delete(ctx, versionID)
}

// acquireLock guards against double submission of the same action. Without
// redis the guard is skipped.
func (s *VersionService) acquireLock(ctx context.Context, key string) error {
	if s.rdb == nil {
		return nil
	}
	ok, err := s.rdb.SetNX(ctx, key, "1", versionLockTTL).Result()
	if err != nil {
		s.logger.Warn("version lock unavailable", zap.String("key", key), zap.Error(err))
		return nil
	}
	if !ok {
		return ErrActionInProgress
	}
	return nil
}

func (s *VersionService) releaseLock(ctx context.Context, key string) {
	if s.rdb != nil {
		s.rdb.Del(ctx, key)
	}
}
