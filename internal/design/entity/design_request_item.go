package entity

import "time"

// DesignRequestItem tracks one ordered item through the design workflow.
// IDs follow the DES-IT-000001 series.
type DesignRequestItem struct {
	ID             string  `json:"id" gorm:"primaryKey;size:32"`
	RequestID      string  `json:"design_request" gorm:"size:80;not null;index"`
	SalesOrderID   string  `json:"sales_order" gorm:"size:64;index"`
	SalesOrderItem string  `json:"sales_order_item" gorm:"size:32;index"`
	ItemCode       string  `json:"item_code" gorm:"size:64;not null;index"`
	ItemName       string  `json:"item_name" gorm:"size:256"`
	Description    string  `json:"description,omitempty" gorm:"type:text"`
	Qty            float64 `json:"qty" gorm:"default:0"`
	UOM            string  `json:"uom" gorm:"size:32"`

	DesignStatus   string `json:"design_status" gorm:"size:32;default:Pending;index"`
	ApprovalStatus string `json:"approval_status" gorm:"size:32;default:Pending;index"`
	CurrentStage   string `json:"current_stage" gorm:"size:32"`

	ApprovalDate    *time.Time `json:"approval_date,omitempty"`
	ApprovalRemarks string     `json:"approval_remarks,omitempty" gorm:"type:text"`

	RevisionReason    string `json:"revision_reason,omitempty" gorm:"type:text"`
	RevisionRequested bool   `json:"revision_requested" gorm:"default:false"`
	RevisionCount     int    `json:"revision_count" gorm:"default:0"`

	NewItemCode  string `json:"new_item_code,omitempty" gorm:"size:64"`
	NewItemName  string `json:"new_item_name,omitempty" gorm:"size:256"`
	SKUGenerated bool   `json:"sku_generated" gorm:"default:false"`
	ItemCreated  bool   `json:"item_created" gorm:"default:false"`

	BOMName    string `json:"bom_name,omitempty" gorm:"size:64"`
	BOMCreated bool   `json:"bom_created" gorm:"default:false"`

	NestingCompleted bool       `json:"nesting_completed" gorm:"default:false"`
	CompletionDate   *time.Time `json:"completion_date,omitempty"`

	AssignedTo   string     `json:"assigned_to,omitempty" gorm:"size:32;index"`
	AssignedDate *time.Time `json:"assigned_date,omitempty"`
	RequestDate  *time.Time `json:"request_date,omitempty"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Request  *DesignRequest  `json:"request,omitempty" gorm:"foreignKey:RequestID"`
	Versions []DesignVersion `json:"versions,omitempty" gorm:"foreignKey:ItemID"`
}

func (DesignRequestItem) TableName() string {
	return "design_request_items"
}
