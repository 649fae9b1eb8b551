package entity

import "time"

// Design request header states.
const (
	RequestStatusOpen   = "Open"
	RequestStatusClosed = "Closed"
)

// DesignRequest is the header raised against a sales order. Its ID is the
// sales order id plus a numeric suffix, e.g. SO-00042-2.
type DesignRequest struct {
	ID                 string     `json:"id" gorm:"primaryKey;size:80"`
	SalesOrderID       string     `json:"sales_order" gorm:"size:64;not null;index"`
	Customer           string     `json:"customer" gorm:"size:64"`
	CustomerName       string     `json:"customer_name" gorm:"size:256"`
	Project            string     `json:"project,omitempty" gorm:"size:64"`
	ProjectName        string     `json:"project_name,omitempty" gorm:"size:256"`
	Status             string     `json:"status" gorm:"size:16;default:Open;index"`
	Priority           string     `json:"priority,omitempty" gorm:"size:16"`
	DocStatus          int        `json:"docstatus" gorm:"default:0"`
	RequestDate        *time.Time `json:"request_date,omitempty"`
	ExpectedCompletion *time.Time `json:"expected_completion,omitempty"`
	ActualCompletion   *time.Time `json:"actual_completion,omitempty"`
	AssignedTo         string     `json:"assigned_to,omitempty" gorm:"size:32;index"`
	AssignedDate       *time.Time `json:"assigned_date,omitempty"`
	Remarks            string     `json:"remarks,omitempty" gorm:"type:text"`
	CreatedBy          string     `json:"created_by" gorm:"size:32"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	Items []DesignRequestItem `json:"items,omitempty" gorm:"foreignKey:RequestID"`
}

func (DesignRequest) TableName() string {
	return "design_requests"
}
