package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories bundles all repositories behind one constructor.
type Repositories struct {
	Request    *RequestRepository
	Item       *ItemRepository
	Version    *VersionRepository
	SalesOrder *SalesOrderRepository
	ItemMaster *ItemMasterRepository
	BOM        *BOMRepository
	User       *UserRepository
	Comment    *CommentRepository
	Transition *TransitionRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Request:    NewRequestRepository(db),
		Item:       NewItemRepository(db),
		Version:    NewVersionRepository(db),
		SalesOrder: NewSalesOrderRepository(db),
		ItemMaster: NewItemMasterRepository(db),
		BOM:        NewBOMRepository(db),
		User:       NewUserRepository(db),
		Comment:    NewCommentRepository(db),
		Transition: NewTransitionRepository(db),
	}
}

// notFound maps gorm's sentinel to the package error.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
