package service

import (
	"errors"

	"github.com/axelgear/design-integration/internal/config"
	"github.com/axelgear/design-integration/internal/design/repository"
	"github.com/axelgear/design-integration/internal/shared/cliq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Validation and policy errors surfaced to handlers.
var (
	ErrLocked             = errors.New("item is completed and locked against status changes")
	ErrStatusNotAllowed   = errors.New("design status not permitted under current approval status")
	ErrRoleNotAllowed     = errors.New("caller role does not permit this change")
	ErrRevisionNotAllowed = errors.New("revision cannot be raised from current design status")
	ErrReasonRequired     = errors.New("a reason is required")
	ErrNotDraft           = errors.New("request is not in draft state")
	ErrOrderNotSubmitted  = errors.New("sales order is not submitted")
	ErrNoItemsSelected    = errors.New("at least one item must be selected")
	ErrQtyExceeds         = errors.New("quantity exceeds remaining order quantity")
	ErrDuplicateTag       = errors.New("version tag already exists for this item")
	ErrActionInProgress   = errors.New("another submission for this resource is in progress")
	ErrBOMItemMismatch    = errors.New("bom does not belong to the generated item")
	ErrSKURequired        = errors.New("generate the item sku before creating a bom")
)

// Actor identifies the calling user for audit and role checks.
type Actor struct {
	UserID string
	Name   string
	Roles  []string
}

// Services bundles the domain services behind one constructor.
type Services struct {
	Auth      *AuthService
	Request   *RequestService
	Item      *ItemService
	Version   *VersionService
	Dashboard *DashboardService
}

func NewServices(db *gorm.DB, repos *repository.Repositories, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *Services {
	var notifier *cliq.Client
	if cfg.Cliq.WebhookURL != "" {
		notifier = cliq.NewClient(cfg.Cliq.WebhookURL, cfg.Cliq.APIKey, cfg.Cliq.BotName)
	}

	return &Services{
		Auth:      NewAuthService(repos.User, rdb, cfg),
		Request:   NewRequestService(repos, notifier, logger),
		Item:      NewItemService(repos, logger),
		Version:   NewVersionService(repos, rdb, logger),
		Dashboard: NewDashboardService(db, notifier, logger),
	}
}
