package entity

import "time"

// Sales order docstatus values.
const (
	DocStatusDraft     = 0
	DocStatusSubmitted = 1
	DocStatusCancelled = 2
)

// SalesOrder is the upstream order a design request is raised against.
type SalesOrder struct {
	ID              string     `json:"id" gorm:"primaryKey;size:64"`
	Customer        string     `json:"customer" gorm:"size:64;index"`
	CustomerName    string     `json:"customer_name" gorm:"size:256"`
	Project         string     `json:"project,omitempty" gorm:"size:64"`
	ProjectName     string     `json:"project_name,omitempty" gorm:"size:256"`
	DocStatus       int        `json:"docstatus" gorm:"default:0"`
	TransactionDate *time.Time `json:"transaction_date,omitempty"`
	DeliveryDate    *time.Time `json:"delivery_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Items []SalesOrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

func (SalesOrder) TableName() string {
	return "sales_orders"
}

// SalesOrderItem is a line of a sales order.
type SalesOrderItem struct {
	ID          string  `json:"id" gorm:"primaryKey;size:32"`
	OrderID     string  `json:"order_id" gorm:"size:64;not null;index"`
	Idx         int     `json:"idx" gorm:"default:0"`
	ItemCode    string  `json:"item_code" gorm:"size:64;not null;index"`
	ItemName    string  `json:"item_name" gorm:"size:256"`
	Description string  `json:"description,omitempty" gorm:"type:text"`
	Qty         float64 `json:"qty" gorm:"default:0"`
	UOM         string  `json:"uom" gorm:"size:32"`
}

func (SalesOrderItem) TableName() string {
	return "sales_order_items"
}
