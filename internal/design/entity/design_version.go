package entity

import "time"

// DesignVersion is one entry in an item's version timeline. Tags are V1, V2,
// ... and unique per item.
type DesignVersion struct {
	ID          string     `json:"id" gorm:"primaryKey;size:32"`
	ItemID      string     `json:"design_request_item" gorm:"column:design_request_item_id;size:32;not null;index"`
	VersionTag  string     `json:"version_tag" gorm:"size:16;not null"`
	Description string     `json:"description,omitempty" gorm:"type:text"`
	FileURL     string     `json:"file_url,omitempty" gorm:"size:512"`
	FileName    string     `json:"file_name,omitempty" gorm:"size:256"`
	PostingDate *time.Time `json:"posting_date,omitempty"`
	CreatedBy   string     `json:"created_by" gorm:"size:32"`
	CreatedAt   time.Time  `json:"created_at"`

	Creator *User `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
}

func (DesignVersion) TableName() string {
	return "design_versions"
}
