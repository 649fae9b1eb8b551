package entity

import "time"

// FabricatedEquipmentGroup marks items eligible for design requests.
const FabricatedEquipmentGroup = "Fabricated Equipment"

// Item is an item master record.
type Item struct {
	Code        string    `json:"code" gorm:"primaryKey;size:64;column:code"`
	Name        string    `json:"name" gorm:"size:256;not null"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	ItemGroup   string    `json:"item_group" gorm:"size:64;index"`
	StockUOM    string    `json:"stock_uom" gorm:"size:32;default:Nos"`
	IsStockItem bool      `json:"is_stock_item" gorm:"default:true"`
	DefaultBOM  string    `json:"default_bom,omitempty" gorm:"size:64"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Item) TableName() string {
	return "items"
}

// BOM is a bill of materials header for a finished item.
type BOM struct {
	ID        string    `json:"id" gorm:"primaryKey;size:64"`
	ItemCode  string    `json:"item_code" gorm:"size:64;not null;index"`
	ItemName  string    `json:"item_name" gorm:"size:256"`
	Quantity  float64   `json:"quantity" gorm:"default:1"`
	IsDefault bool      `json:"is_default" gorm:"default:false"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (BOM) TableName() string {
	return "boms"
}
