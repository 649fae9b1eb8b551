package entity

import "time"

// Entity types recorded in the transition log.
const (
	EntityDesignRequest     = "design_request"
	EntityDesignRequestItem = "design_request_item"
)

// StageTransition is an audit row written on every status field change.
type StageTransition struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	EntityType string    `json:"entity_type" gorm:"size:32;not null;index:idx_stage_transitions_entity"`
	EntityID   string    `json:"entity_id" gorm:"size:80;not null;index:idx_stage_transitions_entity"`
	Field      string    `json:"field" gorm:"size:32;not null"`
	FromValue  string    `json:"from_value,omitempty" gorm:"size:32"`
	ToValue    string    `json:"to_value" gorm:"size:32;not null"`
	Remarks    string    `json:"remarks,omitempty" gorm:"type:text"`
	ChangedBy  string    `json:"changed_by" gorm:"size:32"`
	CreatedAt  time.Time `json:"created_at"`
}

func (StageTransition) TableName() string {
	return "stage_transitions"
}

// Comment is a free-form note on a design request.
type Comment struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	RequestID   string    `json:"design_request" gorm:"size:80;not null;index"`
	Content     string    `json:"content" gorm:"type:text;not null"`
	CommentedBy string    `json:"commented_by" gorm:"size:32"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Comment) TableName() string {
	return "design_request_comments"
}
